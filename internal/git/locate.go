package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	gogit "github.com/go-git/go-git/v5"
)

// ErrNoRepository indicates no git repository contains the requested path.
var ErrNoRepository = errors.New("no git repository found")

// Location identifies the repository a workflow runs against.
type Location struct {
	// Path is the worktree root.
	Path string
	// Name is the display name (the root directory's base name).
	Name string
}

// Locate walks up from start (a file or directory) to the enclosing worktree root.
// An empty start means the current working directory.
func Locate(start string) (Location, error) {
	if start == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return Location{}, fmt.Errorf("resolve working directory: %w", err)
		}
		start = cwd
	}

	abs, err := filepath.Abs(start)
	if err != nil {
		return Location{}, fmt.Errorf("resolve %s: %w", start, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return Location{}, fmt.Errorf("stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	repo, err := openDetect(abs)
	if err != nil {
		return Location{}, err
	}

	wt, err := repo.Worktree()
	if err != nil {
		if errors.Is(err, gogit.ErrIsBareRepository) {
			return Location{}, fmt.Errorf("%w: %s is a bare repository", ErrNoRepository, abs)
		}
		return Location{}, fmt.Errorf("open worktree: %w", err)
	}

	root := wt.Filesystem.Root()
	return Location{Path: root, Name: filepath.Base(root)}, nil
}

func openDetect(path string) (*gogit.Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNoRepository, path)
		}
		return nil, fmt.Errorf("open repository %s: %w", path, err)
	}
	return repo, nil
}

// listRemotes reads the configured remotes, sorted by name.
func listRemotes(path string) ([]Remote, error) {
	repo, err := openDetect(path)
	if err != nil {
		return nil, err
	}

	remotes, err := repo.Remotes()
	if err != nil {
		return nil, fmt.Errorf("list remotes: %w", err)
	}

	result := make([]Remote, 0, len(remotes))
	for _, r := range remotes {
		cfg := r.Config()
		remote := Remote{Name: cfg.Name}
		if len(cfg.URLs) > 0 {
			remote.FetchURL = cfg.URLs[0]
		}
		result = append(result, remote)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result, nil
}
