package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/raid-guild/x402-agent-go/api"
	"github.com/raid-guild/x402-agent-go/config"
	"github.com/raid-guild/x402-agent-go/verify"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.LoadServer()

	verifier, err := verify.New(verify.Config{
		Mode:         verify.Mode(cfg.ProofMode),
		RPCURL:       cfg.RPCURL,
		TokenAddress: cfg.TokenAddress,
		DatabaseURL:  cfg.DatabaseURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build proof verifier")
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.NewServer(verifier, cfg.PayTo).Router(),
	}

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		log.Info().Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("proof_mode", cfg.ProofMode).Msg("serving paid resources")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}
}
