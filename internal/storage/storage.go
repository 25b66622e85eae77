// Package storage persists the current identity between runs, the single
// durable piece of client state. It is deliberately a one-key store: the
// serialized identity object, restored verbatim without revalidation.
package storage

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"storefront/config"
	"storefront/internal/domain/entity"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Params holds dependencies for the session store, injected by Fx.
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// SessionStorage reads and writes the persisted identity file.
type SessionStorage struct {
	path   string
	logger *slog.Logger
}

// New is the constructor for SessionStorage.
func New(params Params) *SessionStorage {
	return &SessionStorage{
		path:   params.Config.Session.StoragePath,
		logger: params.Logger,
	}
}

// NewWithPath builds a storage rooted at an explicit file path.
func NewWithPath(path string, logger *slog.Logger) *SessionStorage {
	return &SessionStorage{path: path, logger: logger}
}

// Save writes the identity to the storage file, replacing any previous one.
func (s *SessionStorage) Save(user *entity.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "failed to serialize session")
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "failed to create session directory")
		}
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return errors.Wrap(err, "failed to write session file")
	}

	return nil
}

// Load restores the persisted identity. A missing file means no session and
// is not an error.
func (s *SessionStorage) Load() (*entity.User, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, errors.Wrap(err, "failed to read session file")
	}

	var user entity.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, errors.Wrap(err, "failed to decode session file")
	}

	return &user, nil
}

// Clear removes the persisted identity. Clearing an absent session is a no-op.
func (s *SessionStorage) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove session file")
	}

	return nil
}
