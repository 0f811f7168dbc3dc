// Command palaced is the Palace session server process: it parses
// flags into a config.Config, opens the store, loads room files, and
// serves the wire protocol until interrupted. No protocol logic lives
// here — it wires config/logging/metrics/store/session together the way
// the teacher's example/*/main.go files wire flags to nodefs.Mount
// (SPEC_FULL §4.Q).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/inconshreveable/log15"
	"github.com/urfave/cli/v2"

	"github.com/palace-core/palace/config"
	"github.com/palace-core/palace/session"
	"github.com/palace-core/palace/store"
)

func main() {
	app := &cli.App{
		Name:  "palaced",
		Usage: "Palace visual-chat session server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "listen", Value: config.Default().ListenAddr, Usage: "TCP address to listen on"},
			&cli.StringFlag{Name: "name", Value: config.Default().ServerName, Usage: "server name sent in ServerInfo"},
			&cli.StringFlag{Name: "db", Value: config.Default().DBPath, Usage: "path to the sqlite store"},
			&cli.StringFlag{Name: "rooms", Value: "", Usage: "directory of room-script files (*.pdc) to load at startup"},
			&cli.IntFlag{Name: "cyborg-max-instructions", Value: config.Default().CyborgMaxInstructions, Usage: "instruction ceiling for sandboxed scripts"},
			&cli.DurationFlag{Name: "cyborg-max-duration", Value: config.Default().CyborgMaxDuration, Usage: "wall-clock ceiling for sandboxed scripts"},
			&cli.StringFlag{Name: "log-level", Value: config.Default().LogLevel, Usage: "log15 level: crit,error,warn,info,debug"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "palaced:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg := config.Config{
		ListenAddr:            c.String("listen"),
		ServerName:            c.String("name"),
		DBPath:                c.String("db"),
		RoomsDir:              c.String("rooms"),
		CyborgMaxInstructions: c.Int("cyborg-max-instructions"),
		CyborgMaxDuration:     c.Duration("cyborg-max-duration"),
		LogLevel:              c.String("log-level"),
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.DBPath, log)
	if err != nil {
		return fmt.Errorf("palaced: open store: %w", err)
	}
	defer st.Close()

	srv := session.NewServer(cfg.ListenAddr, cfg.ServerName, st, log)
	srv.CyborgLimits.MaxInstructions = cfg.CyborgMaxInstructions
	srv.CyborgLimits.MaxDuration = cfg.CyborgMaxDuration

	if cfg.RoomsDir != "" {
		n, err := loadRoomDir(srv, cfg.RoomsDir)
		if err != nil {
			return fmt.Errorf("palaced: load rooms: %w", err)
		}
		log.Info("loaded room files", "dir", cfg.RoomsDir, "files", n)
	}

	return srv.ListenAndServe(ctx)
}

// loadRoomDir feeds every *.pdc file under dir through Server.LoadRoomFile
// (spec.md §4.G/§6.5 — room templates are "loaded from room-template
// files at startup").
func loadRoomDir(srv *session.Server, dir string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.pdc"))
	if err != nil {
		return 0, err
	}
	for _, path := range matches {
		src, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", path, err)
		}
		if err := srv.LoadRoomFile(string(src)); err != nil {
			return 0, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return len(matches), nil
}

func newLogger(level string) (log15.Logger, error) {
	lvl, err := log15.LvlFromString(level)
	if err != nil {
		return nil, fmt.Errorf("palaced: invalid log level %q: %w", level, err)
	}
	log := log15.New()
	handler := log15.LvlFilterHandler(lvl, log15.StreamHandler(os.Stderr, log15.LogfmtFormat()))
	log.SetHandler(log15.CallerFileHandler(handler))
	return log, nil
}
