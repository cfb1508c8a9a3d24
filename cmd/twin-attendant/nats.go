// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/infrastructure/messaging"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/infrastructure/store"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/logging"
)

const natsDrainTimeout = 25 * time.Second

// setupNATS connects to the NATS server and registers a closed handler that
// participates in graceful shutdown.
func setupNATS(ctx context.Context, env environment, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	gracefulCloseWG.Add(1)

	natsConn, err := nats.Connect(
		env.NatsURL,
		nats.Name("twin-attendant-service"),
		nats.Timeout(10*time.Second),
		nats.DrainTimeout(natsDrainTimeout),
		nats.ClosedHandler(func(_ *nats.Conn) {
			slog.InfoContext(ctx, "NATS connection closed")
			gracefulCloseWG.Done()
			// If the connection dropped outside of shutdown, trigger one.
			select {
			case done <- os.Interrupt:
			default:
			}
		}),
	)
	if err != nil {
		gracefulCloseWG.Done()
		return nil, err
	}

	slog.InfoContext(ctx, "connected to NATS", "url", env.NatsURL)
	return natsConn, nil
}

// repositories holds the key-value backed repositories of the service.
type repositories struct {
	Meeting         *store.NatsMeetingRepository
	BotRegistration *store.NatsBotRegistrationRepository
}

// getKeyValueStores creates or binds the JetStream key-value buckets and
// wraps them in repositories.
func getKeyValueStores(ctx context.Context, natsConn *nats.Conn) (*repositories, error) {
	js, err := jetstream.New(natsConn)
	if err != nil {
		return nil, err
	}

	meetingsKV, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: store.KVStoreNameMeetings,
	})
	if err != nil {
		return nil, err
	}

	registrationsKV, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: store.KVStoreNameBotRegistrations,
	})
	if err != nil {
		return nil, err
	}

	return &repositories{
		Meeting:         store.NewNatsMeetingRepository(meetingsKV),
		BotRegistration: store.NewNatsBotRegistrationRepository(registrationsKV),
	}, nil
}

// createNatsSubscriptions subscribes the message handler to all subjects the
// service consumes, using a queue group so replicas share the load.
func createNatsSubscriptions(ctx context.Context, handler domain.MessageHandler, natsConn *nats.Conn) error {
	if !handler.HandlerReady() {
		return domain.NewUnavailableError("message handler is not ready")
	}

	subjects := []string{
		models.MeetingGetStatusSubject,
		models.MeetingForceJoinSubject,
		models.MeetingAutoJoinToggleSubject,
		models.TranscriptReadySubject,
	}

	for _, subject := range subjects {
		_, err := natsConn.QueueSubscribe(subject, models.TwinAttendantQueue, func(m *nats.Msg) {
			handler.HandleMessage(ctx, messaging.NewNatsMessage(m))
		})
		if err != nil {
			slog.ErrorContext(ctx, "error subscribing to subject", logging.ErrKey, err, "subject", subject)
			return err
		}
		slog.InfoContext(ctx, "subscribed to subject", "subject", subject, "queue", models.TwinAttendantQueue)
	}

	return nil
}
