package services

import (
	"context"
	"fmt"

	kaf "github.com/reybrally/notification-service/internal/adapters/kafka"
	"github.com/reybrally/notification-service/internal/bus"
)

// RecipientChecker — проверка "получатель существует" у владеющего
// домена. В чужой стор напрямую не ходим: только request/reply через
// correlation-слой.
type RecipientChecker interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

const usersService = "users"

type busRecipientChecker struct {
	client *bus.Client
}

func NewRecipientChecker(client *bus.Client) RecipientChecker {
	return &busRecipientChecker{client: client}
}

func (c *busRecipientChecker) Exists(ctx context.Context, userID string) (bool, error) {
	reply, err := c.client.Call(ctx, usersService, kaf.EventUserExists, kaf.UserExistsRequest{UserID: userID})
	if err != nil {
		return false, err
	}
	parsed, err := bus.UnmarshalReply[kaf.UserExistsReply](reply)
	if err != nil {
		return false, fmt.Errorf("decode user.exists reply: %w", err)
	}
	return parsed.Exists, nil
}
