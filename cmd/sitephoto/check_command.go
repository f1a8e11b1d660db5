package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"sitephoto/internal/config"
	"sitephoto/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check <folder>",
		Short: "Check that a folder and the configured override files are usable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			folder, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve folder: %w", err)
			}
			results := preflight.RunAll(cfg, folder)
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				status := "ok"
				if !r.Passed {
					status = "FAIL"
				}
				rows = append(rows, []string{r.Name, status, r.Detail})
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, renderTable(w, []string{"Check", "Status", "Detail"}, rows, nil))
			if _, failed := preflight.FirstFailure(results); failed {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
}
