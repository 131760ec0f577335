// Package roster reads candidate rosters from YAML or JSON files.
package roster

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fadilmartias/cv-screener/internal/model"
	"gopkg.in/yaml.v3"
)

var ErrDuplicateName = errors.New("duplicate candidate name")

type document struct {
	Candidates []model.Candidate `yaml:"candidates"`
}

// Load reads a roster file. JSON is accepted as well, since it parses as YAML.
func Load(path string) ([]model.Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", path, err)
	}
	roster, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("roster %s: %w", path, err)
	}
	return roster, nil
}

// Parse accepts either a top-level list of candidates or a mapping with a
// "candidates" key. Names are trimmed and must be unique and non-empty.
func Parse(data []byte) ([]model.Candidate, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []model.Candidate{}, nil
	}

	var roster []model.Candidate
	if data[0] == '[' || data[0] == '-' {
		if err := yaml.Unmarshal(data, &roster); err != nil {
			return nil, fmt.Errorf("parse candidate list: %w", err)
		}
	} else {
		var doc document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse roster: %w", err)
		}
		roster = doc.Candidates
	}
	if roster == nil {
		roster = []model.Candidate{}
	}

	seen := make(map[string]int, len(roster))
	for i := range roster {
		roster[i].Name = strings.TrimSpace(roster[i].Name)
		name := roster[i].Name
		if name == "" {
			return nil, fmt.Errorf("candidate %d has no name", i+1)
		}
		if prev, ok := seen[name]; ok {
			return nil, fmt.Errorf("%w: %q at entries %d and %d", ErrDuplicateName, name, prev+1, i+1)
		}
		seen[name] = i
	}
	return roster, nil
}
