package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	segmentio "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/reybrally/notification-service/internal/adapters/cache"
	httpHandlers "github.com/reybrally/notification-service/internal/adapters/http/handlers"
	kaf "github.com/reybrally/notification-service/internal/adapters/kafka"
	"github.com/reybrally/notification-service/internal/adapters/redispub"
	repoPkg "github.com/reybrally/notification-service/internal/adapters/repo"
	"github.com/reybrally/notification-service/internal/app/notifications"
	"github.com/reybrally/notification-service/internal/bus"
	"github.com/reybrally/notification-service/internal/config"
	"github.com/reybrally/notification-service/internal/logging"
	"github.com/reybrally/notification-service/internal/push"
	svcPkg "github.com/reybrally/notification-service/internal/services"
)

const clientID = "notification-service"

func main() {
	cfg := config.Load()
	logging.InitLogger()
	logging.LogInfo("starting notification-service", logrus.Fields{
		"pid":  os.Getpid(),
		"port": cfg.HTTP.Port,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := mustPG(ctx, cfg)
	defer pool.Close()

	repo := repoPkg.NewNotificationRepo(pool)

	var cacheService cache.Cache
	if cfg.App.CacheBackend == "redis" {
		cacheService = cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.CachePrefix,
			TTL:      cfg.Redis.TTL,
		})
		logging.LogInfo("redis cache enabled", logrus.Fields{"addr": cfg.Redis.Addr, "ttl": cfg.Redis.TTL.String()})
	} else {
		cacheService = cache.NewCacheService(1000)
		logging.LogInfo("lru cache enabled", logrus.Fields{"capacity": 1000})
	}

	prod := mustKafkaProducer(cfg)
	defer prod.Close()

	consumer := kaf.NewConsumer(kaf.ConsumerConfig{
		Brokers:           cfg.Kafka.Brokers,
		ClientID:          clientID,
		MinBytes:          1 << 10,
		MaxBytes:          10 << 20,
		MaxWait:           100 * time.Millisecond,
		SessionTimeout:    10 * time.Second,
		RebalanceTimeout:  10 * time.Second,
		HeartbeatInterval: 3 * time.Second,
		StartOffset:       segmentio.LastOffset,
		MaxRetries:        5,
		Backoff:           200 * time.Millisecond,
	})

	// Статическая таблица wire-идентичностей. Неизвестное имя здесь —
	// ошибка конфигурации и падение на старте, не тихий hang в рантайме.
	self := bus.ServiceIdentity{
		LogicalName:     "notifications",
		ClientID:        clientID,
		ConsumerGroupID: cfg.Kafka.Group,
		RequestTopic:    cfg.Kafka.EventsTopic,
		ReplyTopic:      cfg.Bus.ReplyTopic,
		Events:          []string{kaf.EventNotificationCreate, kaf.EventNotificationRead, kaf.EventNotificationDelete},
	}
	router := bus.NewRouter(
		self,
		bus.ServiceIdentity{
			LogicalName:     "users",
			ClientID:        "users-service",
			ConsumerGroupID: "users-service",
			RequestTopic:    cfg.Bus.UsersTopic,
			Events:          []string{kaf.EventUserExists},
		},
	)

	// Подписка на reply-топик оформляется внутри конструктора, до
	// любого Call.
	busClient := bus.NewClient(ctx, self, router, prod, consumer, cfg.Bus.CallTimeout)

	registry := push.NewRegistry(cfg.Push.StreamBuffer)
	fanout := redispub.NewRedisPublisher(redispub.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Prefix:   cfg.Redis.ChannelPrefix,
	})
	defer fanout.Close()

	fanoutSub := redispub.NewRedisSubscriber(redispub.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Prefix:   cfg.Redis.ChannelPrefix,
	})
	defer fanoutSub.Close()

	dispatcher := push.NewDispatcher(registry, fanoutSub)
	go func() {
		if err := dispatcher.Run(ctx); err != nil {
			logging.LogError("push dispatcher stopped", err, logrus.Fields{})
		}
	}()

	svc := svcPkg.NewNotificationService(repo, cacheService, fanout, svcPkg.NewRecipientChecker(busClient))
	h := httpHandlers.NewNotificationHandlers(svc, registry)

	go func() {
		logging.LogInfo("kafka consumer subscribing", logrus.Fields{
			"topic": cfg.Kafka.EventsTopic, "group": cfg.Kafka.Group, "brokers": cfg.Kafka.Brokers,
		})

		if err := consumer.Subscribe(ctx, cfg.Kafka.EventsTopic, cfg.Kafka.Group, func(ctx context.Context, msg kaf.Message) error {
			switch msg.Envelope.EventType {
			case kaf.EventNotificationCreate:
				var p kaf.NotificationCreate
				if err := json.Unmarshal(msg.Envelope.Payload, &p); err != nil {
					logging.LogError("ingest bad payload (create)", err, logrus.Fields{})
					return nil
				}
				n, err := svc.Ingest(ctx, notifications.IncomingEvent{
					RecipientID: p.RecipientID,
					SenderID:    p.SenderID,
					Kind:        p.Kind,
					Content:     p.Content,
					Metadata:    p.Metadata,
				})
				if err != nil {
					// невалидные события не ретраим, остальное — наверх для ретрая
					if isPermanent(err) {
						logging.LogError("ingest rejected event", err, logrus.Fields{"recipient_id": p.RecipientID})
						return nil
					}
					return err
				}
				logging.LogInfo("ingest persisted", logrus.Fields{"id": n.ID, "recipient_id": n.RecipientID})
				return nil

			case kaf.EventNotificationRead:
				var p kaf.NotificationRead
				if err := json.Unmarshal(msg.Envelope.Payload, &p); err != nil {
					logging.LogError("ingest bad payload (read)", err, logrus.Fields{})
					return nil
				}
				if _, err := svc.MarkRead(ctx, p.NotificationID); err != nil && !isPermanent(err) {
					return err
				}
				return nil

			case kaf.EventNotificationDelete:
				var p kaf.NotificationDelete
				if err := json.Unmarshal(msg.Envelope.Payload, &p); err != nil {
					logging.LogError("ingest bad payload (delete)", err, logrus.Fields{})
					return nil
				}
				if err := svc.DeleteNotification(ctx, p.NotificationID); err != nil && !isPermanent(err) {
					return err
				}
				return nil

			default:
				logging.LogDebug("unknown event type skipped", logrus.Fields{"event_type": msg.Envelope.EventType})
				return nil
			}
		}); err != nil {
			logging.LogError("kafka consumer stopped", err, logrus.Fields{
				"topic": cfg.Kafka.EventsTopic, "group": cfg.Kafka.Group,
			})
		} else {
			logging.LogInfo("kafka consumer exited gracefully", logrus.Fields{
				"topic": cfg.Kafka.EventsTopic, "group": cfg.Kafka.Group,
			})
		}
	}()

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.StripSlashes)
	r.Get("/health", httpHandlers.HealthHandler)
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			logging.LogError("readiness: db not ready", err, logrus.Fields{})
			http.Error(w, "db not ready: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Route("/notifications", func(r chi.Router) {
		// SSE-стрим живёт дольше любого request-таймаута, поэтому
		// Timeout-мидлварь вешаем только на обычные ручки
		r.Get("/stream", h.StreamHandler)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(5 * time.Second))
			r.Post("/", h.IngestHandler)
			r.Get("/", h.ListHandler)
			r.Get("/unread-count", h.UnreadCountHandler)
			r.Get("/{id}", h.GetHandler)
			r.Post("/{id}/read", h.MarkReadHandler)
			r.Delete("/{id}", h.DeleteHandler)
		})
	})

	srv := &http.Server{
		Addr:        ":" + cfg.HTTP.Port,
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logging.LogInfo("http server listening", logrus.Fields{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.LogError("http server ListenAndServe failed", err, logrus.Fields{"addr": srv.Addr})
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	logging.LogInfo("shutdown signal received", logrus.Fields{"signal": sig.String()})

	cancel()

	if err := consumer.Close(); err != nil {
		logging.LogError("kafka consumer close failed", err, logrus.Fields{})
	} else {
		logging.LogInfo("kafka consumer closed", logrus.Fields{})
	}

	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logging.LogError("http server shutdown failed", err, logrus.Fields{})
	} else {
		logging.LogInfo("http server shutdown complete", logrus.Fields{})
	}
	logging.LogInfo("bye", logrus.Fields{})
}

// isPermanent: ошибки, по которым ретрай бессмыслен — событие
// пропускается с логом (at-least-once, обработчики идемпотентны
// только для state transitions, не для create).
func isPermanent(err error) bool {
	return errorsIsAny(err,
		notifications.ErrInvalidData,
		notifications.ErrRecipientUnknown,
		notifications.ErrNotFound,
	)
}

func errorsIsAny(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

func mustPG(ctx context.Context, cfg config.Config) *pgxpool.Pool {
	dbURL := os.Getenv("DATABASE_URL")
	fields := logrus.Fields{}
	if dbURL == "" {
		dbURL = "postgres://" + cfg.DB.User + ":" + cfg.DB.Password + "@" +
			cfg.DB.Host + ":" + cfg.DB.Port + "/" + cfg.DB.Name + "?sslmode=" + cfg.DB.SSLMode
		fields = logrus.Fields{
			"source":  "env/defaults",
			"host":    cfg.DB.Host,
			"port":    cfg.DB.Port,
			"db_name": cfg.DB.Name,
			"user":    cfg.DB.User,
			"sslmode": cfg.DB.SSLMode,
		}
	} else {
		fields = logrus.Fields{"source": "DATABASE_URL"}
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logging.LogError("pgxpool.New failed", err, fields)
		os.Exit(1)
	}
	logging.LogInfo("pgx pool created", fields)
	return pool
}

func mustKafkaProducer(cfg config.Config) kaf.Producer {
	p, err := kaf.NewProducer(kaf.ProducerConfig{
		Brokers:                cfg.Kafka.Brokers,
		ClientID:               clientID,
		RequiredAcks:           segmentio.RequireAll,
		BatchBytes:             1 << 20,
		BatchTimeout:           50 * time.Millisecond,
		Compression:            segmentio.Snappy,
		Async:                  false,
		WriteTimeout:           5 * time.Second,
		AllowAutoTopicCreation: true,
	})
	if err != nil {
		log.Fatalf("kafka producer: %v", err)
	}
	logging.LogInfo("kafka producer created", logrus.Fields{"brokers": cfg.Kafka.Brokers, "client_id": clientID})
	return p
}
