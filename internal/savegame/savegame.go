package savegame

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"devstudio/internal/game"
)

const currentVersion = 1

// ErrNoSave is returned by Load when nothing has been saved at the path yet.
var ErrNoSave = errors.New("no saved game")

type File struct {
	Version int        `json:"version"`
	SavedAt time.Time  `json:"saved_at"`
	State   game.State `json:"state"`
}

func Load(path string) (game.State, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return game.State{}, ErrNoSave
		}
		return game.State{}, err
	}
	if len(raw) == 0 {
		return game.State{}, ErrNoSave
	}
	var f File
	if err := json.Unmarshal(raw, &f); err != nil {
		return game.State{}, fmt.Errorf("decode save %s: %w", path, err)
	}
	if f.Version != currentVersion {
		return game.State{}, fmt.Errorf("save %s has version %d, want %d", path, f.Version, currentVersion)
	}
	if f.State.Portfolio.Holdings == nil {
		f.State.Portfolio.Holdings = make(map[string]game.Holding)
	}
	return f.State, nil
}

// Save writes through a temp file so a crash never leaves a half-written save.
func Save(path string, st game.State, now time.Time) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(File{Version: currentVersion, SavedAt: now.UTC(), State: st}, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadOrNew falls back to a fresh studio when there is no save yet.
func LoadOrNew(path string, cfg game.Config) (game.State, bool, error) {
	st, err := Load(path)
	if errors.Is(err, ErrNoSave) {
		return game.NewGame(cfg), false, nil
	}
	if err != nil {
		return game.State{}, false, err
	}
	return st, true, nil
}

func Remove(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return os.Remove(path)
}
