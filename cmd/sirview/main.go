//go:build ebiten

package main

import (
	"errors"
	"flag"
	"os"

	"epigrid/internal/app"
	"epigrid/internal/logging"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog/log"
)

func main() {
	logger := logging.New("sirview", os.Stderr)

	cfg, err := app.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	session, err := cfg.NewSession()
	if err != nil {
		log.Fatal().Err(err).Msg("cannot start session")
	}

	ctrl := app.NewController(session, cfg.SPS, logger)
	game := app.New(ctrl, cfg, logger)
	w, h := game.Layout(0, 0)

	ebiten.SetWindowTitle("epigrid - SIR " + session.Name())
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(w, h)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal().Err(err).Msg("viewer stopped")
	}
}
