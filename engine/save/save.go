// Package save implements JSON serialization and deserialization of a table.
package save

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/nathoo/rulecore/engine/state"
	"github.com/nathoo/rulecore/types"
)

// FormatVersion is written into every save.
const FormatVersion = "1"

// ErrVersion is returned for a save written by an unknown format.
var ErrVersion = errors.New("unsupported save version")

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Version     string                     `json:"version"`
	Title       string                     `json:"title"`
	PlayerID    string                     `json:"player_id"`
	Turn        int                        `json:"turn"`
	Entities    map[string]types.Character `json:"entities"`
	Initiative  []string                   `json:"initiative"`
	RNGSeed     int64                      `json:"rng_seed"`
	RNGPosition int64                      `json:"rng_position"`
	CommandLog  []string                   `json:"command_log"`
	SessionID   string                     `json:"session_id,omitempty"`
}

// Save serializes a table to JSON bytes.
func Save(t *types.Table) ([]byte, error) {
	data := SaveData{
		Version:     FormatVersion,
		Title:       t.Title,
		PlayerID:    t.PlayerID,
		Turn:        t.TurnCount,
		Entities:    t.Entities,
		Initiative:  t.Initiative,
		RNGSeed:     t.RNGSeed,
		RNGPosition: t.RNGPosition,
		CommandLog:  t.CommandLog,
		SessionID:   t.SessionID,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	if sd.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %q", ErrVersion, sd.Version)
	}
	// Ensure collections are never nil after load.
	if sd.Entities == nil {
		sd.Entities = map[string]types.Character{}
	}
	if sd.CommandLog == nil {
		sd.CommandLog = []string{}
	}
	return &sd, nil
}

// ApplySave replaces the table's contents with loaded save data.
func ApplySave(t *types.Table, sd *SaveData) {
	t.Title = sd.Title
	t.PlayerID = sd.PlayerID
	t.TurnCount = sd.Turn
	t.Entities = make(map[string]types.Character, len(sd.Entities))
	for id, c := range sd.Entities {
		c.ID = id
		t.Entities[id] = state.CloneCharacter(c)
	}
	t.Initiative = append([]string(nil), sd.Initiative...)
	t.RNGSeed = sd.RNGSeed
	t.RNGPosition = sd.RNGPosition
	t.CommandLog = append([]string{}, sd.CommandLog...)
	if sd.SessionID != "" {
		t.SessionID = sd.SessionID
	}
}

// WriteFile saves t to path on fs, creating parent directories.
func WriteFile(fs afero.Fs, path string, t *types.Table) error {
	data, err := Save(t)
	if err != nil {
		return fmt.Errorf("encoding save: %w", err)
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating save directory: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("writing save: %w", err)
	}
	return nil
}

// ReadFile loads a save from path on fs.
func ReadFile(fs afero.Fs, path string) (*SaveData, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no save at %s: %w", path, err)
		}
		return nil, fmt.Errorf("reading save: %w", err)
	}
	sd, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return sd, nil
}
