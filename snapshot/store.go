package snapshot

import (
	"log/slog"

	"github.com/dillycone/ai-tutorial-gen/core"
	"github.com/dillycone/ai-tutorial-gen/storage"
)

// Store is an append-only snapshot collection. A nil Store is valid and
// discards everything, which is how unset paths are disabled.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a snapshot store at path, or a disabled one when path is
// empty.
func NewStore(path string, logger *slog.Logger) *Store {
	if path == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// BestFromEnv resolves the high-quality snapshot store from
// TUTORGEN_BEST_PATH.
func BestFromEnv(logger *slog.Logger) *Store {
	return NewStore(storage.ResolvePath("TUTORGEN_BEST_PATH", "best_prompts.jsonl"), logger)
}

// EmergencyFromEnv resolves the guaranteed-persistence store from
// TUTORGEN_EMERGENCY_BEST_PATH.
func EmergencyFromEnv(logger *slog.Logger) *Store {
	return NewStore(storage.ResolvePath("TUTORGEN_EMERGENCY_BEST_PATH", "emergency_best_prompts.jsonl"), logger)
}

// DebugFromEnv resolves the improvement debug log from
// TUTORGEN_DEBUG_LOG_PATH.
func DebugFromEnv(logger *slog.Logger) *Store {
	return NewStore(storage.ResolvePath("TUTORGEN_DEBUG_LOG_PATH", "optimizer_debug_prompts.jsonl"), logger)
}

// Path returns the backing file path, empty for a disabled store.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Append persists one snapshot. Failures are logged, never returned:
// snapshot persistence must not break the run it protects.
func (s *Store) Append(snap core.BestSnapshot) {
	if s == nil {
		return
	}
	if err := storage.Append(s.path, snap); err != nil {
		s.logger.Warn("snapshot not persisted", "path", s.path, "err", err)
	}
}

// ReadAll returns every snapshot in append order.
func (s *Store) ReadAll() ([]core.BestSnapshot, error) {
	if s == nil {
		return []core.BestSnapshot{}, nil
	}
	return storage.ReadAll[core.BestSnapshot](s.path)
}
