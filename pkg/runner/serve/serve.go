package serve

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"

	"tableflip.dev/flip/pkg/server"
)

// Serve runs the card service.
type Serve struct {
	Config *server.Config
}

func (n *Serve) Do(ctx context.Context) error {
	cfg := n.Config
	if cfg == nil {
		cfg = server.LoadConfig()
	}

	log := setupLogger(cfg.LogLevel)

	storage, err := server.OpenStorage(cfg.DataDir)
	if err != nil {
		return err
	}

	return server.New(cfg, log, storage).ListenAndServe()
}

func setupLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
