package grouping

import (
	"log/slog"

	"sitephoto/internal/annotation"
	"sitephoto/internal/logging"
)

// Result is the outcome of a full grouping run.
type Result struct {
	Photos   []annotation.Photo `json:"photos"`
	Segments []Segment          `json:"segments"`
	Changes  []IdentityChange   `json:"identity_changes,omitempty"`
	// Regrouped is true when propagation rewrote identities and clustering ran
	// a second time.
	Regrouped bool `json:"regrouped"`
}

// Pipeline runs normalize → cluster → propagate → re-cluster over an
// immutable snapshot. Each pass returns a new snapshot.
type Pipeline struct {
	Options Options
	Logger  *slog.Logger
}

// NewPipeline builds a pipeline with a component logger.
func NewPipeline(opts Options, logger *slog.Logger) *Pipeline {
	return &Pipeline{Options: opts, Logger: logging.NewComponentLogger(logger, "grouping")}
}

// Run groups the full photo set. The input slice is never modified.
func (p *Pipeline) Run(photos []annotation.Photo) Result {
	logger := p.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	normalized := annotation.Clone(photos)
	var changes []IdentityChange
	for i := range normalized {
		next := p.Options.Rules.Normalize(normalized[i])
		if next == normalized[i].Identity {
			continue
		}
		changes = append(changes, IdentityChange{
			File: normalized[i].File,
			From: normalized[i].Identity,
			To:   next,
			Pass: PassNormalize,
		})
		normalized[i].Identity = next
	}

	grouped, segments := AssignGroups(normalized, p.Options)
	propagated, propChanges := PropagateAttachment(grouped, p.Options)
	changes = append(changes, propChanges...)

	result := Result{Photos: grouped, Segments: segments, Changes: changes}
	if len(propChanges) > 0 {
		result.Photos, result.Segments = AssignGroups(propagated, p.Options)
		result.Regrouped = true
	}

	for _, change := range changes {
		logger.Debug("identity rewritten", logging.DecisionAttrs("identity", change.To, change.Pass,
			logging.String(logging.FieldFile, change.File),
			logging.String("from", change.From),
		)...)
	}
	logger.Info("grouping complete",
		logging.Int("photos", len(result.Photos)),
		logging.Int("groups", len(result.Segments)),
		logging.Int("identity_changes", len(changes)),
		logging.Bool("regrouped", result.Regrouped),
		logging.Int64("gap_seconds", p.Options.GapSeconds),
	)
	return result
}
