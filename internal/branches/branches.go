package branches

import (
	"errors"
	"slices"
	"strings"
)

// IsHeadRef reports whether name is a HEAD pseudo-ref such as "HEAD" or
// "origin/HEAD" rather than a real branch.
func IsHeadRef(name string) bool {
	return strings.Contains(name, "HEAD")
}

// TargetCandidates returns the branches a merge may target: every local branch
// except HEAD pseudo-refs and the current branch, deduplicated and sorted.
func TargetCandidates(all []string, current string) []string {
	current = Normalize(current)
	candidates := make([]string, 0, len(all))

	for _, name := range all {
		branch := Normalize(name)
		if branch == "" || branch == current || IsHeadRef(branch) {
			continue
		}
		candidates = append(candidates, branch)
	}

	slices.Sort(candidates)
	return slices.Compact(candidates)
}

// Updatable returns the local branches to refresh, in listed order, with HEAD
// pseudo-refs and duplicates removed.
func Updatable(all []string) []string {
	result := make([]string, 0, len(all))
	seen := make(map[string]struct{})

	for _, name := range all {
		branch := Normalize(name)
		if branch == "" || IsHeadRef(branch) {
			continue
		}
		if _, ok := seen[branch]; ok {
			continue
		}
		seen[branch] = struct{}{}
		result = append(result, branch)
	}

	return result
}

// Contains reports whether branch appears in list after normalization.
func Contains(list []string, branch string) bool {
	return slices.Contains(list, Normalize(branch))
}

// Validate applies the subset of git's ref-format rules that matter for names
// supplied on the command line.
func Validate(branch string) error {
	if branch == "" {
		return errors.New("branch cannot be empty")
	}

	if strings.ContainsAny(branch, " \t\n\r") {
		return errors.New("branch cannot contain whitespace")
	}

	if strings.Contains(branch, "..") {
		return errors.New("branch cannot contain '..'")
	}

	if strings.ContainsAny(branch, "~^:?*[]@{\\") {
		return errors.New("branch contains forbidden git characters")
	}

	return nil
}

// Normalize trims whitespace, removes leading/trailing slashes, and strips
// refs/heads prefixes from a branch name. It returns an empty string when the
// normalized branch would otherwise be empty.
func Normalize(branch string) string {
	branch = strings.TrimSpace(branch)
	branch = strings.Trim(branch, "/")

	if len(branch) >= len("refs/heads/") && strings.EqualFold(branch[:len("refs/heads/")], "refs/heads/") {
		branch = branch[len("refs/heads/"):]
	}

	branch = strings.TrimSpace(branch)
	branch = strings.Trim(branch, "/")

	return strings.TrimSpace(branch)
}
