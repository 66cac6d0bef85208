package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/avialab/toolkiosk/internal/config"
	"github.com/avialab/toolkiosk/internal/recognition"
	"github.com/avialab/toolkiosk/internal/reconcile"
	"github.com/avialab/toolkiosk/internal/server"
	"github.com/avialab/toolkiosk/internal/session"
	"github.com/avialab/toolkiosk/internal/storage"
)

const logFileName = "toolkiosk.log"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	config.LoadEnvFile()

	// JOURNAL_STREAM is set by systemd when running as a service. Skip
	// file logging under systemd (journald handles it).
	if _, underSystemd := os.LookupEnv("JOURNAL_STREAM"); underSystemd {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open log file")
		}
		defer logFile.Close()

		consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr}
		fileWriter := zerolog.ConsoleWriter{Out: logFile, NoColor: true}
		log.Logger = log.Output(io.MultiWriter(consoleWriter, fileWriter))

		log.Info().Str("logFile", logFileName).Msg("logging to file")
	}

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer store.Close()
	log.Info().Str("dbPath", cfg.DBPath).Msg("store initialized")

	recognizer := recognition.NewClient(recognition.ClientOpts{BaseURL: cfg.PredictURL})
	log.Info().Str("predictURL", cfg.PredictURL).Msg("recognition gateway initialized")

	var comparer server.Comparer
	if cfg.CompareURL != "" {
		comparer = reconcile.NewClient(reconcile.ClientOpts{BaseURL: cfg.CompareURL})
		log.Info().Str("compareURL", cfg.CompareURL).Msg("remote comparison enabled")
	}

	srv := server.New(server.Opts{
		Sessions:   session.NewManager(),
		Recognizer: recognizer,
		Confidence: store,
		Comparer:   comparer,
		TxLog:      store,
		ToolkitID:  cfg.ToolkitID,
	})

	// Cancel on SIGINT or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx, cfg.ListenAddr)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("shutdown with error")
	} else {
		log.Info().Msg("shutdown complete")
	}
}
