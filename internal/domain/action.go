package domain

import "time"

// ActionKind is the terminal disposition of one entry.
type ActionKind string

const (
	ActionMoved     ActionKind = "moved"
	ActionWouldMove ActionKind = "would_move"
	ActionSkipped   ActionKind = "skipped"
	ActionFailed    ActionKind = "failed"
)

// Action records what happened to a single entry during organization.
type Action struct {
	Source      string     `json:"source"`
	Destination string     `json:"destination,omitempty"`
	Kind        ActionKind `json:"kind"`
	Category    Category   `json:"category,omitempty"`
	Duplicate   bool       `json:"duplicate,omitempty"`
	KeeperPath  string     `json:"keeper,omitempty"`
	Reason      string     `json:"reason,omitempty"`
}

// ActionCounts tallies actions per kind.
type ActionCounts struct {
	Moved     int `json:"moved"`
	WouldMove int `json:"would_move"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// OrganizationSummary aggregates every action of one organize pass.
type OrganizationSummary struct {
	Root              string             `json:"root"`
	DryRun            bool               `json:"dry_run"`
	RunID             string             `json:"run_id,omitempty"`
	FoldersCreated    []string           `json:"folders_created"`
	Actions           []Action           `json:"actions"`
	Duplicates        []DuplicateGroup   `json:"-"`
	DetectionFailures []DetectionFailure `json:"-"`
	StartedAt         time.Time          `json:"started_at"`
	FinishedAt        time.Time          `json:"finished_at"`
}

// Counts tallies the summary's actions per kind.
func (s OrganizationSummary) Counts() ActionCounts {
	var c ActionCounts
	for _, a := range s.Actions {
		switch a.Kind {
		case ActionMoved:
			c.Moved++
		case ActionWouldMove:
			c.WouldMove++
		case ActionSkipped:
			c.Skipped++
		case ActionFailed:
			c.Failed++
		}
	}
	return c
}

// Failed returns the actions that ended in failure.
func (s OrganizationSummary) Failed() []Action {
	var out []Action
	for _, a := range s.Actions {
		if a.Kind == ActionFailed {
			out = append(out, a)
		}
	}
	return out
}
