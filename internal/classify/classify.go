// Package classify decides what a failed git command means for the merge
// workflow.
package classify

import (
	"errors"
	"strings"
)

// ConflictDetector recognises merge conflicts in gateway errors.
type ConflictDetector interface {
	IsConflict(err error) bool
	// Files returns the conflicted paths carried by err, if any.
	Files(err error) []string
}

// conflictCarrier is satisfied by errors that expose parsed conflict metadata,
// such as *git.GitError.
type conflictCarrier interface {
	ConflictedPaths() []string
}

// outputCarrier exposes git's own output so the command line, which holds
// branch names and paths, is not matched against markers.
type outputCarrier interface {
	GitOutput() string
}

var conflictMarkers = []string{
	"conflict",
	"automatic merge failed",
	"merge conflict",
	"needs merge",
}

var missingUpstreamMarkers = []string{
	"no tracking information",
	"couldn't find remote ref",
}

// Heuristic checks structured conflict data first and falls back to matching
// git's output text.
type Heuristic struct{}

func (Heuristic) IsConflict(err error) bool {
	if err == nil {
		return false
	}
	if len(structuredFiles(err)) > 0 {
		return true
	}
	return containsAny(gitText(err), conflictMarkers)
}

func (Heuristic) Files(err error) []string {
	return structuredFiles(err)
}

// MissingUpstream reports whether a pull failed because the branch has no
// upstream to pull from.
func MissingUpstream(err error) bool {
	if err == nil {
		return false
	}
	return containsAny(gitText(err), missingUpstreamMarkers)
}

func structuredFiles(err error) []string {
	var carrier conflictCarrier
	if errors.As(err, &carrier) {
		return carrier.ConflictedPaths()
	}
	return nil
}

// gitText is git's output when err carries it, otherwise the error message.
func gitText(err error) string {
	var carrier outputCarrier
	if errors.As(err, &carrier) {
		return carrier.GitOutput()
	}
	return err.Error()
}

func containsAny(text string, markers []string) bool {
	text = strings.ToLower(text)
	for _, marker := range markers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
