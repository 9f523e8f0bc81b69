package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/templui/vows/internal/app"
	"github.com/templui/vows/internal/config"
	"github.com/templui/vows/internal/logger"
)

// openApp loads config, sets up logging to out and wires the full app.
func openApp(ctx context.Context, out io.Writer) (*app.App, error) {
	cfg := config.Load()
	logger.Setup(logger.Options{
		Dev:       cfg.IsDevelopment(),
		SentryDSN: cfg.SentryDSN,
		AppEnv:    cfg.AppEnv,
		Output:    out,
	})

	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize app: %w", err)
	}
	return a, nil
}

func closeApp(a *app.App) {
	err := a.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to close app:", err)
	}
	logger.Flush()
}
