// Package git reads the git context a timebox run happened in.
package git

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/xvierd/timebox-cli/internal/ports"
)

// Detector implements the ports.GitDetector interface using go-git.
type Detector struct {
	// dir is used when Detect is called without a working directory.
	dir string
}

// NewDetector creates a detector rooted at dir. An empty dir means the
// process working directory.
func NewDetector(dir string) *Detector {
	return &Detector{dir: dir}
}

// Ensure Detector implements ports.GitDetector.
var _ ports.GitDetector = (*Detector)(nil)

// Detect opens the repository containing workingDir and reads HEAD.
func (d *Detector) Detect(ctx context.Context, workingDir string) (*ports.GitInfo, error) {
	repo, err := d.open(workingDir)
	if err != nil {
		return nil, err
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	branch := head.Name().Short()
	if !head.Name().IsBranch() {
		branch = "HEAD detached"
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get commit: %w", err)
	}

	info := &ports.GitInfo{
		Branch:    branch,
		Commit:    head.Hash().String(),
		CommitMsg: strings.SplitN(commit.Message, "\n", 2)[0],
	}

	if remotes, err := repo.Remotes(); err == nil && len(remotes) > 0 {
		if urls := remotes[0].Config().URLs; len(urls) > 0 {
			info.Repository = extractRepoName(urls[0])
		}
	}

	if ctx.Err() != nil {
		return info, nil
	}
	if worktree, err := repo.Worktree(); err == nil {
		if status, err := worktree.Status(); err == nil {
			info.IsClean = status.IsClean()
		}
	}

	return info, nil
}

// IsAvailable reports whether the detector's directory is inside a repository.
func (d *Detector) IsAvailable() bool {
	_, err := d.open("")
	return err == nil
}

func (d *Detector) open(workingDir string) (*git.Repository, error) {
	if workingDir == "" {
		workingDir = d.dir
	}
	if workingDir == "" {
		var err error
		workingDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
	}

	repo, err := git.PlainOpenWithOptions(workingDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("git repository not found: %w", err)
	}
	return repo, nil
}

// extractRepoName extracts "owner/repo" from a git remote URL.
func extractRepoName(url string) string {
	url = strings.TrimSuffix(url, ".git")

	// git@github.com:user/repo
	if strings.HasPrefix(url, "git@") {
		if i := strings.LastIndex(url, ":"); i >= 0 {
			return url[i+1:]
		}
	}

	// https://github.com/user/repo
	if strings.HasPrefix(url, "http") {
		parts := strings.Split(url, "/")
		if len(parts) >= 2 {
			return parts[len(parts)-2] + "/" + parts[len(parts)-1]
		}
	}

	return url
}

// ShortCommit returns a shortened commit hash.
func ShortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
