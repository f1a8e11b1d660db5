package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"sitephoto/internal/config"
	"sitephoto/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var opts logs.Options
	var folder string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent log lines, optionally for one run or folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if folder != "" {
				if opts.Folder, err = config.ExpandPath(folder); err != nil {
					return fmt.Errorf("resolve folder: %w", err)
				}
			}
			lines, err := logs.Recent(filepath.Join(cfg.Paths.LogDir, logs.FileName), opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "Only lines from this run ID")
	cmd.Flags().StringVar(&folder, "folder", "", "Only lines for this photo folder")
	cmd.Flags().StringVar(&opts.Level, "level", "", "Only lines containing this level (e.g. WARN)")
	return cmd
}
