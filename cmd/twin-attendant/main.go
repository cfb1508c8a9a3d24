// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package main is the twin attendant service that joins meetings on behalf of
// a user's digital twin, collects transcripts, and summarizes them. It handles
// NATS messages for the service and runs the auto-join scheduler and reaper.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/handlers"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/infrastructure/messaging"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/infrastructure/provider"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/infrastructure/summarizer"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/service"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/summarize"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/telemetry"
)

func main() {
	env := parseEnv()
	flags := parseFlags(env.Port)

	logging.InitStructureLogConfig()
	telemetry.Init()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	// Setup NATS connection
	natsConn, err := setupNATS(ctx, env, &gracefulCloseWG, done)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up NATS")
		return
	}

	// Get the key-value stores for the service.
	repos, err := getKeyValueStores(ctx, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error getting key-value stores")
		return
	}

	// Initialize the bot provider and summarization clients.
	botProvider := provider.NewClient(provider.Config{
		BaseURL: env.Provider.BaseURL,
		APIKey:  env.Provider.APIKey,
	})
	summarizerClient := summarizer.NewClient(summarizer.Config{
		BaseURL: env.SummarizerURL,
	})

	// Probe the summarization backend once at startup. When it is down the
	// service still runs: meetings are finalized with a transcript but no
	// summary.
	capability := summarizerClient.Probe(ctx)
	if !capability.Available {
		slog.WarnContext(ctx, "summarization backend unavailable, meetings will be finalized without summaries",
			"reason", capability.Reason)
	}

	// Initialize services
	messageBuilder := messaging.NewMessageBuilder(natsConn)
	meetingService := service.NewMeetingService(repos.Meeting, env.Service)
	orchestrator := service.NewJoinOrchestrator(
		repos.Meeting,
		repos.BotRegistration,
		botProvider,
		env.Service,
	)
	finalizer := service.NewTranscriptFinalizer(
		repos.Meeting,
		repos.BotRegistration,
		botProvider,
		summarize.NewChunkedSummarizer(summarizerClient, summarize.Options{}),
		capability,
		messageBuilder,
	)
	scheduler := service.NewAutoJoinScheduler(repos.Meeting, meetingService, orchestrator, env.Service)
	reaper := service.NewReaper(repos.Meeting, env.ReaperSchedule, env.Service)

	// Initialize handlers
	meetingHandler := handlers.NewMeetingHandler(meetingService, orchestrator, finalizer)

	httpServer := setupHTTPServer(flags, meetingHandler, &gracefulCloseWG)

	// Create NATS subscriptions for the service.
	err = createNatsSubscriptions(ctx, meetingHandler, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error creating NATS subscriptions")
		return
	}

	// Start the background loops. Start returns only after in-flight joins
	// have drained, so the scheduler participates in graceful shutdown.
	gracefulCloseWG.Add(1)
	go func() {
		defer gracefulCloseWG.Done()
		scheduler.Start(ctx)
	}()
	if err := reaper.Start(ctx); err != nil {
		slog.With(logging.ErrKey, err).Error("error starting reaper")
		return
	}

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, natsConn, reaper, &gracefulCloseWG, cancel)
}

// gracefulShutdown stops the HTTP server, the reaper, and drains the NATS
// connection, waiting for in-flight work to finish.
func gracefulShutdown(httpServer *http.Server, natsConn *nats.Conn, reaper *service.Reaper, gracefulCloseWG *sync.WaitGroup, cancel context.CancelFunc) {
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.With(logging.ErrKey, err).Error("error shutting down http server")
	}
	gracefulCloseWG.Done()

	reaper.Stop()

	// Cancel the background loops before draining so queued handlers exit.
	cancel()

	if err := natsConn.Drain(); err != nil {
		slog.With(logging.ErrKey, err).Error("error draining NATS connection")
	}

	gracefulCloseWG.Wait()
	slog.Info("shutdown complete")
}
