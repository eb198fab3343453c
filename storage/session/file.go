// Package sessionstore persists the session principal across process
// restarts. Durable storage holds exactly two values — the bearer
// token and the serialized user profile — always written and cleared
// together.
package sessionstore

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/tomeducation/admin/core"
	"github.com/tomeducation/admin/core/session"
)

const (
	dirName  = ".tomadmin"
	fileName = "session.json"
)

type FileRepository struct {
	path string
}

var _ session.Repository = (*FileRepository)(nil)

// NewFileRepository stores the session under core.Conf.Session.Dir,
// defaulting to ~/.tomadmin/session.json.
func NewFileRepository() (*FileRepository, error) {
	dir := core.Conf.Session.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "resolving home directory")
		}
		dir = filepath.Join(home, dirName)
	}
	return &FileRepository{path: filepath.Join(dir, fileName)}, nil
}

func (r *FileRepository) Load() (*session.Principal, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading session file")
	}
	var principal session.Principal
	if err := json.Unmarshal(data, &principal); err != nil {
		// a corrupt session file is as good as no session
		_ = os.Remove(r.path)
		return nil, nil
	}
	if principal.Token == "" {
		return nil, nil
	}
	return &principal, nil
}

func (r *FileRepository) Save(principal session.Principal) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return errors.Wrap(err, "creating session directory")
	}
	data, err := json.MarshalIndent(principal, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}
	if err := os.WriteFile(r.path, data, 0o600); err != nil {
		return errors.Wrap(err, "writing session file")
	}
	return nil
}

func (r *FileRepository) Clear() error {
	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "removing session file")
	}
	return nil
}
