package orchestrator

import "github.com/gitquickmerge/quickmerge/internal/classify"

// Config captures the runtime controls the orchestrator needs.
type Config struct {
	// DryRun only changes messaging; the gateway decorator skips the commands.
	DryRun bool

	// Detector classifies merge failures. Defaults to classify.Heuristic.
	Detector classify.ConflictDetector

	// Locker guards workflow entry per repository path. Defaults to a
	// process-local MemoryLocker.
	Locker Locker
}
