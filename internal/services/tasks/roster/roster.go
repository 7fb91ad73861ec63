// Package roster loads the character directory and the session selection
// from a YAML or JSON file.
package roster

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/campaignledger/sessiontasks/internal/platform/errors"
	"github.com/campaignledger/sessiontasks/internal/services/tasks/domain"
	"gopkg.in/yaml.v3"
)

// Format identifies a roster file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Snapshot is a validated roster ready for assignment.
type Snapshot struct {
	Title      string
	Characters []domain.Character
	Selection  []domain.ParticipationEntry
}

type fileCharacter struct {
	ID     string `yaml:"id" json:"id"`
	Name   string `yaml:"name" json:"name"`
	Active *bool  `yaml:"active" json:"active"`
}

type fileEntry struct {
	CharacterID string `yaml:"character_id" json:"character_id"`
	Selected    *bool  `yaml:"selected" json:"selected"`
	LateArrival bool   `yaml:"late_arrival" json:"late_arrival"`
}

type file struct {
	Title      string          `yaml:"title" json:"title"`
	Characters []fileCharacter `yaml:"characters" json:"characters"`
	Selection  []fileEntry     `yaml:"selection" json:"selection"`
}

// FormatFromPath picks the encoding from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported roster extension %q", filepath.Ext(path))
	}
}

// Load reads and validates a roster file.
func Load(path string) (Snapshot, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Snapshot{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read roster: %w", err)
	}
	snapshot, err := Parse(data, format)
	if err != nil {
		return Snapshot{}, fmt.Errorf("roster %s: %w", filepath.Base(path), err)
	}
	return snapshot, nil
}

// Parse decodes and validates roster bytes.
//
// Characters default to active and selection entries default to selected.
// A selected entry must name a known, active character; unselected entries
// are kept but never checked.
func Parse(data []byte, format Format) (Snapshot, error) {
	var raw file
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&raw); err != nil {
			return Snapshot{}, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&raw); err != nil {
			return Snapshot{}, fmt.Errorf("decode json: %w", err)
		}
	default:
		return Snapshot{}, fmt.Errorf("unsupported roster format %q", format)
	}
	return raw.validate()
}

func (f file) validate() (Snapshot, error) {
	snapshot := Snapshot{
		Title:      strings.TrimSpace(f.Title),
		Characters: make([]domain.Character, 0, len(f.Characters)),
		Selection:  make([]domain.ParticipationEntry, 0, len(f.Selection)),
	}

	byID := make(map[string]domain.Character, len(f.Characters))
	names := make(map[string]string, len(f.Characters))
	for i, c := range f.Characters {
		id := strings.TrimSpace(c.ID)
		name := strings.TrimSpace(c.Name)
		if id == "" {
			return Snapshot{}, fmt.Errorf("character %d: id is required", i)
		}
		if name == "" {
			return Snapshot{}, fmt.Errorf("character %s: name is required", id)
		}
		if name == domain.VirtualParticipantName {
			return Snapshot{}, fmt.Errorf("character %s: name %q is reserved", id, name)
		}
		if _, ok := byID[id]; ok {
			return Snapshot{}, fmt.Errorf("character %s: duplicate id", id)
		}
		if other, ok := names[name]; ok {
			return Snapshot{}, fmt.Errorf("character %s: name %q already used by %s", id, name, other)
		}
		character := domain.Character{ID: id, Name: name, Active: c.Active == nil || *c.Active}
		byID[id] = character
		names[name] = id
		snapshot.Characters = append(snapshot.Characters, character)
	}

	seen := make(map[string]bool, len(f.Selection))
	for _, e := range f.Selection {
		id := strings.TrimSpace(e.CharacterID)
		selected := e.Selected == nil || *e.Selected
		if selected {
			character, ok := byID[id]
			if !ok {
				return Snapshot{}, apperrors.WithMetadata(apperrors.CodeUnknownCharacter,
					fmt.Sprintf("selected character %q is not in the roster", id),
					map[string]string{"CharacterID": id})
			}
			if !character.Active {
				return Snapshot{}, apperrors.WithMetadata(apperrors.CodeInactiveCharacter,
					fmt.Sprintf("selected character %q is inactive", character.Name),
					map[string]string{"Name": character.Name})
			}
			if seen[id] {
				return Snapshot{}, fmt.Errorf("character %s: selected more than once", id)
			}
			seen[id] = true
		}
		snapshot.Selection = append(snapshot.Selection, domain.ParticipationEntry{
			CharacterID: id,
			Selected:    selected,
			LateArrival: e.LateArrival,
		})
	}
	return snapshot, nil
}
