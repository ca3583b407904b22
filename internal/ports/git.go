package ports

import (
	"context"
)

// GitInfo holds git repository context information.
type GitInfo struct {
	Branch     string
	Commit     string
	CommitMsg  string
	IsClean    bool
	Repository string
}

// GitDetector reads the git context a run happened in.
type GitDetector interface {
	// Detect scans workingDir (or the process working directory) for git context.
	Detect(ctx context.Context, workingDir string) (*GitInfo, error)

	// IsAvailable reports whether detection can be attempted.
	IsAvailable() bool
}
