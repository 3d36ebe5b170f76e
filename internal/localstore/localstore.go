// Package localstore persists the on-device copies of the user's data:
// a Guest document slot, a User-cache document slot (last-known-good copy
// for the signed-in session) and the AuthState slot. Each slot is a JSON
// file; an unreadable or unparsable slot is treated as absent.
package localstore

import (
	"encoding/json"
	"os"
	"path/filepath"

	"timekeep/internal/model"
	"timekeep/internal/utils"
)

const (
	guestFile     = "guest.json"
	userCacheFile = "user_cache.json"
	authFile      = "auth.json"

	dirPerm  = 0755
	filePerm = 0644
)

// Store owns the slot files under a single data directory.
type Store struct {
	dir string
}

// DefaultDir returns the XDG-compliant data directory path.
func DefaultDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "timekeep"), nil
}

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// GuestPath returns the path of the guest document slot.
func (s *Store) GuestPath() string {
	return filepath.Join(s.dir, guestFile)
}

// UserCachePath returns the path of the user-cache document slot.
func (s *Store) UserCachePath() string {
	return filepath.Join(s.dir, userCacheFile)
}

// LoadGuest loads the guest document slot. ok is false when the slot is
// absent or unparsable.
func (s *Store) LoadGuest() (*model.Document, bool) {
	return s.loadDocument(s.GuestPath())
}

// SaveGuest writes the guest document slot.
func (s *Store) SaveGuest(doc *model.Document) error {
	return s.saveJSON(s.GuestPath(), doc)
}

// LoadUserCache loads the user-cache document slot.
func (s *Store) LoadUserCache() (*model.Document, bool) {
	return s.loadDocument(s.UserCachePath())
}

// SaveUserCache writes the user-cache document slot.
func (s *Store) SaveUserCache(doc *model.Document) error {
	return s.saveJSON(s.UserCachePath(), doc)
}

// ClearUserCache removes the user-cache slot. Missing files are fine.
func (s *Store) ClearUserCache() error {
	err := os.Remove(s.UserCachePath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// LoadAuth loads the persisted AuthState. Absent or corrupt slots yield
// the guest state.
func (s *Store) LoadAuth() model.AuthState {
	data, err := os.ReadFile(filepath.Join(s.dir, authFile))
	if err != nil {
		return model.GuestAuth()
	}
	var auth model.AuthState
	if err := json.Unmarshal(data, &auth); err != nil {
		utils.Debugf("discarding corrupt auth slot: %v", err)
		return model.GuestAuth()
	}
	if auth.Mode != model.AuthModeUser {
		return model.GuestAuth()
	}
	return auth
}

// SaveAuth writes the AuthState slot.
func (s *Store) SaveAuth(auth model.AuthState) error {
	return s.saveJSON(filepath.Join(s.dir, authFile), auth)
}

func (s *Store) loadDocument(path string) (*model.Document, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	doc, err := model.MergeOntoDefaults(data)
	if err != nil {
		utils.Debugf("discarding corrupt slot %s: %v", filepath.Base(path), err)
		return nil, false
	}
	return doc, true
}

// saveJSON writes through a temp file and renames it into place so a
// crash mid-write can never leave a half-written slot behind.
func (s *Store) saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, filePerm); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
