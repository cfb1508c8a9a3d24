// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/service"
)

// flags are the command line flags for the twin attendant service.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the twin attendant service.
type environment struct {
	Port           string
	NatsURL        string
	Provider       providerEnv
	SummarizerURL  string
	ReaperSchedule string
	Service        service.ServiceConfig
}

// providerEnv holds bot provider API configuration.
type providerEnv struct {
	BaseURL string
	APIKey  string
}

// parseFlags parses command line flags for the twin attendant service.
func parseFlags(defaultPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", defaultPort, "listen port")
	var bind = flag.String("bind", "*", "interface to bind on")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug: *debug,
		Port:  *port,
		Bind:  *bind,
	}
}

// parseEnv parses environment variables for the twin attendant service.
func parseEnv() environment {
	// A .env file is optional; environment variables take precedence.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.With(logging.ErrKey, err).Warn("error loading .env file")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	return environment{
		Port:           port,
		NatsURL:        natsURL,
		Provider:       parseProviderEnv(),
		SummarizerURL:  os.Getenv("SUMMARIZER_URL"),
		ReaperSchedule: os.Getenv("REAPER_SCHEDULE"),
		Service: service.ServiceConfig{
			CheckInterval:      envDuration("AUTO_JOIN_CHECK_INTERVAL", 0),
			JoinAdvance:        envDuration("AUTO_JOIN_ADVANCE", 0),
			JoinWorkers:        envInt("AUTO_JOIN_WORKERS", 0),
			ReaperSafetyMargin: envDuration("REAPER_SAFETY_MARGIN", 0),
			ReaperQuiescence:   envDuration("REAPER_QUIESCENCE", 0),
			BotDisplayName:     os.Getenv("BOT_DISPLAY_NAME"),
			TranscriptProvider: os.Getenv("TRANSCRIPT_PROVIDER"),
		},
	}
}

// parseProviderEnv parses bot provider configuration from environment variables.
func parseProviderEnv() providerEnv {
	apiKey := os.Getenv("RECALL_API_KEY")
	if apiKey == "" {
		slog.Error("RECALL_API_KEY environment variable is required but not set")
		os.Exit(1)
	}

	baseURL := os.Getenv("RECALL_BASE_URL")
	if baseURL == "" {
		baseURL = "https://us-west-2.recall.ai/api/v1"
	}

	return providerEnv{
		BaseURL: baseURL,
		APIKey:  apiKey,
	}
}

// envDuration reads a duration environment variable, falling back to the
// given default when unset or unparseable.
func envDuration(name string, fallback time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		slog.With(logging.ErrKey, err, "name", name, "value", raw).Warn("invalid duration environment variable, using default")
		return fallback
	}
	return value
}

// envInt reads an integer environment variable, falling back to the given
// default when unset or unparseable.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		slog.With(logging.ErrKey, err, "name", name, "value", raw).Warn("invalid integer environment variable, using default")
		return fallback
	}
	return value
}
