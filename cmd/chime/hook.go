package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kolapsis/chime/internal/config"
	"github.com/kolapsis/chime/internal/hook"
	"github.com/kolapsis/chime/internal/logging"
	"github.com/kolapsis/chime/internal/notify"
	"github.com/kolapsis/chime/internal/store"
	"github.com/kolapsis/chime/internal/summary"
)

func newHookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hook",
		Short: "Process one hook event from stdin",
		RunE:  runHook,
	}
}

// runHook is the hook entrypoint. Exit code discipline is strict: the only
// failure the invoking tool may ever see is an unreadable stdin. Everything
// past that point degrades internally and exits zero.
func runHook(_ *cobra.Command, _ []string) error {
	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		// A broken config file must not break the invoking tool; run on
		// defaults and say so in the log.
		cfg = config.Defaults()
		cfg.Log.File = config.ExpandHome(cfg.Log.File)
		cfg.History.Path = config.ExpandHome(cfg.History.Path)
	}

	closeLog := logging.Setup(cfg.Log)
	defer closeLog()

	if cfgErr != nil {
		slog.Warn("running on default configuration", "error", cfgErr)
	}

	logging.Housekeep(cfg.Log.File, cfg.Log.MaxSizeBytes, cfg.Log.RetentionDays)

	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		slog.Error("reading stdin failed", "error", err)
		return fmt.Errorf("reading stdin: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	var summarizer summary.Summarizer
	if cfg.Summary.Enabled {
		summarizer = &summary.ClaudeSummarizer{
			ClaudePath: cfg.Summary.ClaudePath,
			Timeout:    cfg.Summary.Timeout,
			MaxLength:  cfg.Summary.MaxLength,
		}
	}

	senders := []notify.Sender{notify.NewPushoverSender(cfg.Pushover)}
	if cfg.Desktop.Enabled {
		senders = append(senders, notify.NewDesktopSender(cfg.Desktop))
	}
	dispatcher := notify.NewDispatcher(cfg.Dispatch.ChannelTimeout, senders...)

	var history store.Store
	if cfg.History.Enabled {
		if s, err := store.NewSQLiteStore(cfg.History.Path); err != nil {
			slog.Warn("history store unavailable", "path", cfg.History.Path, "error", err)
		} else {
			defer func() { _ = s.Close() }()
			if err := s.Cleanup(cfg.History.RetentionDays); err != nil {
				slog.Warn("history cleanup failed", "error", err)
			}
			history = s
		}
	}

	hook.NewRunner(cfg, summarizer, dispatcher, history).Run(ctx, raw)
	return nil
}
