package main

import (
	"flag"
	"log/slog"
	"os"

	"ctchen222/Connect-Four/internal/config"
	"ctchen222/Connect-Four/internal/logger"
	"ctchen222/Connect-Four/internal/session"
	"ctchen222/Connect-Four/internal/terminal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel)

	var players [2]string
	flag.StringVar(&players[0], "p1", "", "name of the first player")
	flag.StringVar(&players[1], "p2", "", "name of the second player")
	flag.Parse()

	s, err := session.New(cfg.BoardWidth, cfg.BoardHeight, players)
	if err != nil {
		slog.Error("failed to start session", "error", err)
		os.Exit(1)
	}

	if err := terminal.Play(os.Stdin, os.Stdout, s); err != nil {
		slog.Error("game aborted", "error", err)
		os.Exit(1)
	}
}
