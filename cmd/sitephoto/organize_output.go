package main

import (
	"fmt"
	"io"
	"path/filepath"

	"sitephoto/internal/organizer"
)

type organizeOutput struct {
	Plan    organizer.Plan `json:"plan"`
	Applied bool           `json:"applied"`
	Moved   int            `json:"moved"`
	Failed  []string       `json:"failed,omitempty"`
}

// runOrganize applies plan when apply is set; otherwise it only reports it.
func runOrganize(session *folderSession, plan organizer.Plan, apply bool) (*organizeOutput, error) {
	out := &organizeOutput{Plan: plan, Applied: apply}
	if !apply {
		return out, nil
	}
	res, err := organizer.New(session.logger).Apply(session.ctx, plan)
	if err != nil {
		return nil, err
	}
	out.Moved = res.Moved
	for _, failed := range res.Failed {
		out.Failed = append(out.Failed, failed.Error())
	}
	session.timer.mark("organize")
	return out, nil
}

func printOrganize(w io.Writer, out organizeOutput) {
	rows := make([][]string, 0, len(out.Plan.Moves))
	for _, m := range out.Plan.Moves {
		rows = append(rows, []string{m.File, filepath.Join(m.Folder, filepath.Base(m.Target))})
	}
	if len(rows) > 0 {
		fmt.Fprintln(w, renderTable(w, []string{"File", "Destination"}, rows, nil))
	}
	if len(out.Plan.Missing) > 0 {
		fmt.Fprintf(w, "%d photos not found in the folder\n", len(out.Plan.Missing))
	}
	if !out.Applied {
		fmt.Fprintf(w, "Dry run: %d moves into %d folders planned; rerun with --apply to move files\n",
			len(out.Plan.Moves), len(out.Plan.Folders()))
		return
	}
	fmt.Fprintf(w, "Moved %d photos into %d folders\n", out.Moved, len(out.Plan.Folders()))
	for _, failed := range out.Failed {
		fmt.Fprintf(w, "  failed: %s\n", failed)
	}
}
