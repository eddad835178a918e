package main

import (
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kolapsis/chime/internal/config"
	"github.com/kolapsis/chime/internal/store"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently dispatched notifications",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			s, err := store.NewSQLiteStore(cfg.History.Path)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			deliveries, err := s.List(limit)
			if err != nil {
				return err
			}

			if len(deliveries) == 0 {
				cmd.Println("no deliveries recorded")
				return nil
			}

			for _, d := range deliveries {
				cmd.Printf("%s  %-16s  %-20s  %s  [%s]\n",
					d.CreatedAt.Local().Format(time.DateTime),
					d.EventKind,
					d.Project,
					d.Title,
					formatOutcome(d.Outcome))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of entries")

	return cmd
}

func formatOutcome(outcome map[string]bool) string {
	if len(outcome) == 0 {
		return "all disabled"
	}

	channels := make([]string, 0, len(outcome))
	for name := range outcome {
		channels = append(channels, name)
	}
	sort.Strings(channels)

	parts := make([]string, 0, len(channels))
	for _, name := range channels {
		status := "failed"
		if outcome[name] {
			status = "ok"
		}
		parts = append(parts, name+": "+status)
	}
	return strings.Join(parts, ", ")
}
