// main.go
//
// Entry point.
//
// Usage:
//   boardrules                 serve the HTTP API
//   boardrules check FILE...   load and check rule documents, then exit
//
// Serving wires config -> catalog -> library -> session store -> HTTP server
// and shuts down cleanly on SIGINT/SIGTERM.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/boardrules/internal/catalog"
	"github.com/robalobadob/boardrules/internal/config"
	"github.com/robalobadob/boardrules/internal/httpserver"
	"github.com/robalobadob/boardrules/internal/library"
	"github.com/robalobadob/boardrules/internal/rules"
	"github.com/robalobadob/boardrules/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if !cfg.Production() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if len(os.Args) > 1 && os.Args[1] == "check" {
		os.Exit(checkFiles(os.Args[2:]))
	}

	cat, err := catalog.Load(cfg.RulesDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load rule catalog")
	}
	lib, err := library.Open(cfg.DBPath, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open library")
	}
	defer lib.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := httpserver.New(cfg, cat, lib, store.NewMemoryStore())
	log.Info().Str("port", cfg.Port).Strs("rules", cat.Names()).Msg("starting boardrules")
	if err := srv.Start(ctx, ":"+cfg.Port); err != nil {
		log.Error().Err(err).Msg("server exited")
		return
	}
	log.Info().Msg("shut down")
}

// checkFiles reports every document that fails to load or check and returns
// the process exit code.
func checkFiles(paths []string) int {
	if len(paths) == 0 {
		log.Error().Msg("usage: boardrules check FILE...")
		return 2
	}
	code := 0
	for _, p := range paths {
		u, err := rules.LoadFile(p)
		if err == nil {
			_, err = u.Check()
		}
		if err != nil {
			log.Error().Err(err).Str("file", p).Msg("invalid")
			code = 1
			continue
		}
		log.Info().Str("file", p).Str("name", u.Name).Msg("ok")
	}
	return code
}
