// cmd/seeder/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	segmentio "github.com/segmentio/kafka-go"

	kaf "github.com/reybrally/notification-service/internal/adapters/kafka"
	"github.com/reybrally/notification-service/internal/config"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

var kinds = []string{
	"friend.request", "friend.accepted", "post.liked",
	"post.commented", "story.viewed", "message.received",
}

// Шлём пачку notification.create в топик событий — дальше пайплайн
// сам: persist → fan-out → push подключенным клиентам.
func main() {
	ctx := context.Background()
	cfg := config.Load()

	eventsN, _ := strconv.Atoi(getenv("SEED_EVENTS", "200"))
	usersN, _ := strconv.Atoi(getenv("SEED_USERS", "20"))

	prod, err := kaf.NewProducer(kaf.ProducerConfig{
		Brokers:                cfg.Kafka.Brokers,
		ClientID:               "notification-seeder",
		RequiredAcks:           segmentio.RequireOne,
		BatchBytes:             1 << 20,
		BatchTimeout:           50 * time.Millisecond,
		Compression:            segmentio.Snappy,
		AllowAutoTopicCreation: true,
	})
	if err != nil {
		log.Fatalf("kafka producer: %v", err)
	}
	defer prod.Close()

	users := make([]string, usersN)
	for i := range users {
		users[i] = fmt.Sprintf("user-%03d", i+1)
	}

	for i := 0; i < eventsN; i++ {
		recipient := users[rand.Intn(len(users))]
		sender := users[rand.Intn(len(users))]
		kind := kinds[rand.Intn(len(kinds))]
		entityID := uuid.New().String()

		env := kaf.Envelope[kaf.NotificationCreate]{
			EventType:  kaf.EventNotificationCreate,
			Version:    1,
			OccurredAt: time.Now().UTC(),
			EntityID:   entityID,
			Payload: kaf.NotificationCreate{
				RecipientID: recipient,
				SenderID:    sender,
				Kind:        kind,
				Content:     fmt.Sprintf("%s from %s (#%d)", kind, sender, i+1),
				Metadata:    map[string]string{"seed": "true"},
			},
			Meta: kaf.Meta{Producer: "notification-seeder", Source: "seeder"},
		}

		if err := prod.PublishJSON(ctx, cfg.Kafka.EventsTopic, []byte(recipient), env, nil); err != nil {
			log.Fatalf("publish %d: %v", i+1, err)
		}
	}

	log.Printf("seeded %d events for %d users into %s", eventsN, usersN, cfg.Kafka.EventsTopic)
}
