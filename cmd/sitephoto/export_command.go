package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"sitephoto/internal/config"
	"sitephoto/internal/photostore"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export <folder>",
		Short: "Write photo-groups.json from the last grouping run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := ctx.openFolder(cmd, args[0], false)
			if err != nil {
				return err
			}
			defer func() { _ = session.Close(cmd) }()

			last, err := session.store.LastRun(session.ctx, photostore.RunGroup)
			if err != nil {
				return err
			}
			if last == nil {
				return errors.New("no grouping run in this folder; run `sitephoto group` first")
			}
			photos, err := session.store.Current(session.ctx)
			if err != nil {
				return err
			}

			target := filepath.Join(session.folder, photostore.GroupsFileName)
			if outPath != "" {
				target, err = config.ExpandPath(outPath)
				if err != nil {
					return fmt.Errorf("resolve output path: %w", err)
				}
			}
			if err := photostore.ExportGroups(target, photos); err != nil {
				return err
			}
			session.timer.mark("export")
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d photos in %d groups (run %s) to %s\n", len(photos), last.Groups, last.ID, target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output path (default <folder>/photo-groups.json)")
	return cmd
}
