package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"epigrid/internal/config"
	"epigrid/internal/logging"

	"github.com/rs/zerolog/log"
)

func main() {
	logger := logging.New("sirgrid", os.Stderr)

	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	if _, err := run(ctx, cfg, os.Stdout, logger); err != nil {
		log.Fatal().Err(err).Msg("batch failed")
	}
}
