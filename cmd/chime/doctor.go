package main

import (
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/kolapsis/chime/internal/config"
	"github.com/kolapsis/chime/internal/install"
	"github.com/kolapsis/chime/internal/notify"
)

func newDoctorCmd() *cobra.Command {
	var projectDir string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and environment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			cmd.Printf("pushover endpoint:   %s\n", cfg.Pushover.Endpoint)
			cmd.Printf("pushover token set:  %s\n", yesNo(cfg.Pushover.Token != ""))
			cmd.Printf("pushover user set:   %s\n", yesNo(cfg.Pushover.User != ""))
			cmd.Printf("desktop supported:   %s\n", yesNo(notify.DesktopSupported()))
			cmd.Printf("desktop enabled:     %s\n", yesNo(cfg.Desktop.Enabled))

			claudeStatus := "found"
			if _, err := exec.LookPath(cfg.Summary.ClaudePath); err != nil {
				claudeStatus = "not found (summaries fall back to last prompt)"
			}
			cmd.Printf("claude CLI (%s): %s\n", cfg.Summary.ClaudePath, claudeStatus)

			cmd.Printf("log file:            %s\n", cfg.Log.File)
			cmd.Printf("history db:          %s (enabled: %s)\n", cfg.History.Path, yesNo(cfg.History.Enabled))

			if v := install.InstalledVersion(projectDir); v != "" {
				cmd.Printf("installed in %s: chime %s\n", projectDir, v)
			} else {
				cmd.Printf("installed in %s: no\n", projectDir)
			}

			cmd.Printf("pushover disabled here: %s\n", yesNo(notify.Disabled(projectDir, notify.ChannelPushover)))
			cmd.Printf("desktop disabled here:  %s\n", yesNo(notify.Disabled(projectDir, notify.ChannelDesktop)))

			return nil
		},
	}

	cmd.Flags().StringVarP(&projectDir, "dir", "d", ".", "project directory to inspect")

	return cmd
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
