package bus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reybrally/notification-service/internal/bus"
)

func testRouter() *bus.Router {
	return bus.NewRouter(
		bus.ServiceIdentity{
			LogicalName:     "users",
			ClientID:        "users-service",
			ConsumerGroupID: "users-service",
			RequestTopic:    "users-requests",
			ReplyTopic:      "users-replies",
			Events:          []string{"user.exists"},
		},
		bus.ServiceIdentity{
			LogicalName:     "notifications",
			ClientID:        "notification-service",
			ConsumerGroupID: "notification-service",
			RequestTopic:    "notifications-events",
			ReplyTopic:      "notification-service-replies",
			Events:          []string{"notification.create"},
		},
	)
}

func TestRouterResolve(t *testing.T) {
	r := testRouter()

	id, err := r.Resolve("users")
	require.NoError(t, err)
	assert.Equal(t, "users-service", id.ClientID)
	assert.Equal(t, "users-requests", id.RequestTopic)
}

func TestRouterUnknownService(t *testing.T) {
	r := testRouter()

	_, err := r.Resolve("ghosts")
	assert.ErrorIs(t, err, bus.ErrUnknownService)
}

func TestRouterValidateEvent(t *testing.T) {
	r := testRouter()

	require.NoError(t, r.ValidateEvent("users", "user.exists"))
	assert.ErrorIs(t, r.ValidateEvent("users", "user.delete"), bus.ErrUnknownEvent)
	assert.ErrorIs(t, r.ValidateEvent("ghosts", "user.exists"), bus.ErrUnknownService)
}
