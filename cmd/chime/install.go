package main

import (
	"github.com/spf13/cobra"

	"github.com/kolapsis/chime/internal/install"
)

func newInstallCmd() *cobra.Command {
	var targetDir string

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install or upgrade the hook in a target project",
		Long: `Copies the chime binary into <target>/.claude/hooks/chime, writes a
VERSION descriptor and wires the UserPromptSubmit, Stop and Notification
events into <target>/.claude/settings.json. Existing settings are backed up
first and hooks owned by other tools are preserved.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			action, err := install.Run(install.Options{
				TargetDir: targetDir,
				Version:   version,
				Revision:  revision,
			})
			if err != nil {
				return err
			}

			cmd.Printf("%s completed (chime %s)\n", action, version)
			cmd.Printf("hook directory: %s\n", install.HookDir(targetDir))
			cmd.Println("set PUSHOVER_TOKEN and PUSHOVER_USER in Claude Code's environment to enable push notifications")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetDir, "dir", "d", ".", "target project directory")

	return cmd
}
