package enrollment

import (
	"context"
	"time"
)

// Metadata is the optional envelope header of the dataset document.
type Metadata struct {
	GeneratedAt string `json:"generated_at,omitempty"`
}

// Snapshot is one loaded dataset together with where it came from.
type Snapshot struct {
	Dataset  Dataset
	Metadata Metadata

	// Fingerprint identifies the dataset content; equal content gives equal fingerprints.
	Fingerprint string

	Source   string
	LoadedAt time.Time
}

// Source loads the dataset. Implementations perform a single read or GET and
// never retry.
type Source interface {
	Load(ctx context.Context) (*Snapshot, error)
	Describe() string
}

// SnapshotStore holds the current snapshot and the last load error.
type SnapshotStore interface {
	// Current returns the loaded snapshot, or the last load error if none is loaded.
	Current() (*Snapshot, error)
	Replace(s *Snapshot)
	Fail(err error)
}

// ClassifiedStudent pairs a student ID with its (optional) classification.
type ClassifiedStudent struct {
	StudentID      string          `json:"student_id"`
	Classification *Classification `json:"classification,omitempty"`
}

// RosterKey identifies one memoized classification run. Rules is the name of
// the rule set applied to School, so instances configured with different
// strict schools never share entries.
type RosterKey struct {
	Fingerprint string
	School      string
	Program     string
	CurrentYear YearLabel
	Rules       string
}

// RosterCache memoizes classification results. A miss returns ok=false with a nil error.
type RosterCache interface {
	Get(ctx context.Context, key RosterKey) ([]ClassifiedStudent, bool, error)
	Set(ctx context.Context, key RosterKey, students []ClassifiedStudent) error
}
