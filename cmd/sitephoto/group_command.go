package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"sitephoto/internal/config"
	"sitephoto/internal/grouping"
	"sitephoto/internal/identity"
	"sitephoto/internal/organizer"
	"sitephoto/internal/photostore"
)

// errNoAnnotations is returned by passes run before import.
var errNoAnnotations = errors.New("no annotations in this folder; run `sitephoto import` first")

type groupOutput struct {
	RunID    string                    `json:"run_id"`
	Profile  string                    `json:"profile"`
	Groups   []grouping.GroupSummary   `json:"groups"`
	Changes  []grouping.IdentityChange `json:"identity_changes"`
	Regroup  bool                      `json:"regrouped"`
	DryRun   bool                      `json:"dry_run,omitempty"`
	Organize *organizeOutput           `json:"organize,omitempty"`
}

func newGroupCommand(ctx *commandContext) *cobra.Command {
	var profile string
	var showChanges bool
	var organize bool
	var apply bool
	var dryRun bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "group <folder>",
		Short: "Normalize identities and assign group numbers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if apply && !organize {
				return errors.New("--apply requires --organize")
			}
			if apply && dryRun {
				return errors.New("--apply cannot be combined with --dry-run")
			}
			session, err := ctx.openFolder(cmd, args[0], true)
			if err != nil {
				return err
			}
			defer func() { _ = session.Close(cmd) }()

			profile = strings.ToLower(strings.TrimSpace(profile))
			if profile == "" {
				profile = session.cfg.Grouping.Profile
			}
			if profile != config.ProfileMachine && profile != config.ProfileActivity {
				return fmt.Errorf("unknown profile %q (want %s or %s)", profile, config.ProfileMachine, config.ProfileActivity)
			}

			photos, err := session.store.Annotations(session.ctx)
			if err != nil {
				return err
			}
			if len(photos) == 0 {
				return errNoAnnotations
			}
			session.timer.mark("load")

			run := photostore.NewRun(photostore.RunGroup, profile)
			session.withRun(run.ID)
			opts := grouping.Options{
				Rules: identity.Rules{
					Keyword: session.cfg.Grouping.AttachmentKeyword,
					Prefix:  session.cfg.Grouping.AttachmentPrefix,
				},
				GapSeconds: session.cfg.SegmentGapSeconds(profile),
			}
			result := grouping.NewPipeline(opts, session.logger).Run(photos)
			session.timer.mark("group")

			if dryRun {
				session.logger.Info("dry run; assignments not saved")
			} else {
				if err := session.store.SaveAssignments(session.ctx, run, result.Photos, len(result.Segments), result.Changes); err != nil {
					return err
				}
				session.timer.mark("store")
			}

			out := groupOutput{
				RunID:   run.ID,
				Profile: profile,
				Groups:  grouping.Summarize(result.Photos),
				Changes: result.Changes,
				Regroup: result.Regrouped,
				DryRun:  dryRun,
			}
			if organize {
				plan := organizer.NewPlan(session.folder, result.Photos, organizer.GroupNames(groupDigits(len(result.Segments))), "ungrouped")
				out.Organize, err = runOrganize(session, plan, apply)
				if err != nil {
					return err
				}
			}

			if jsonOut {
				return writeJSON(cmd, out)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Run %s (%s profile): %d photos in %d groups\n", run.ID, profile, len(result.Photos), len(out.Groups))
			if dryRun {
				fmt.Fprintln(w, "Dry run: assignments not saved")
			}
			fmt.Fprintln(w, renderTable(w, []string{"Group", "Identity", "Machine", "Photos", "Files"}, groupRows(out.Groups),
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft}))
			if len(result.Changes) > 0 {
				fmt.Fprintf(w, "%d identity rewrites\n", len(result.Changes))
				if showChanges {
					fmt.Fprintln(w, renderTable(w, []string{"File", "From", "To", "Pass"}, changeRows(result.Changes), nil))
				}
			}
			if out.Organize != nil {
				printOrganize(w, *out.Organize)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&profile, "profile", "", "Grouping profile: machine or activity (default from config)")
	cmd.Flags().BoolVar(&showChanges, "changes", false, "List every identity rewrite")
	cmd.Flags().BoolVar(&organize, "organize", false, "Plan moving photos into <group>_<identity> folders")
	cmd.Flags().BoolVar(&apply, "apply", false, "Perform the planned moves")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute groups without saving them")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func groupRows(groups []grouping.GroupSummary) [][]string {
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		files := make([]string, 0, len(g.Members))
		for _, m := range g.Members {
			if m.Role != "" {
				files = append(files, m.File+" ("+m.Role+")")
				continue
			}
			files = append(files, m.File)
		}
		rows = append(rows, []string{
			strconv.Itoa(g.Group),
			displayOr(g.Identity, "-"),
			displayOr(g.MachineType, "-"),
			strconv.Itoa(len(g.Members)),
			strings.Join(files, ", "),
		})
	}
	return rows
}

func changeRows(changes []grouping.IdentityChange) [][]string {
	rows := make([][]string, 0, len(changes))
	for _, c := range changes {
		rows = append(rows, []string{c.File, displayOr(c.From, "-"), c.To, c.Pass})
	}
	return rows
}

func groupDigits(n int) int {
	return max(3, len(strconv.Itoa(n)))
}

func displayOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
