package ui

import (
	"log"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/treeselect/pkg/model"
)

// CollapseState is the persisted collapse set of each option source.
// It is saved to $XDG_STATE_HOME/treeselect/collapse-state.json.
//
// File format (JSON):
//
//	{
//	  "version": 1,
//	  "collapsed": {
//	    "/home/me/tech.yaml": ["be", 7]
//	  }
//	}
//
// Sources are keyed by whatever string the host chooses, usually the
// absolute path of the option file. A missing or corrupted file means
// nothing is collapsed.
type CollapseState struct {
	Version   int                      `json:"version"`
	Collapsed map[string][]model.Value `json:"collapsed"`
}

// CollapseStateVersion is the current schema version.
const CollapseStateVersion = 1

const collapseStateFileName = "collapse-state.json"

// CollapseStatePath returns the state file path inside stateDir.
func CollapseStatePath(stateDir string) string {
	return filepath.Join(stateDir, collapseStateFileName)
}

// LoadCollapseState reads the collapse set stored for key. Errors are logged
// and yield an empty set.
func LoadCollapseState(path, key string) []model.Value {
	state := readCollapseState(path)
	if state == nil {
		return nil
	}
	return state.Collapsed[key]
}

// SaveCollapseState stores values for key, keeping other sources' entries.
// Errors are logged but do not interrupt the user experience.
func SaveCollapseState(path, key string, values []model.Value) {
	state := readCollapseState(path)
	if state == nil {
		state = &CollapseState{Collapsed: make(map[string][]model.Value)}
	}
	state.Version = CollapseStateVersion
	if len(values) == 0 {
		delete(state.Collapsed, key)
	} else {
		state.Collapsed[key] = values
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		log.Printf("warning: failed to marshal collapse state: %v", err)
		return
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("warning: failed to create state directory %s: %v", dir, err)
		return
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Printf("warning: failed to write collapse state to %s: %v", path, err)
	}
}

func readCollapseState(path string) *CollapseState {
	data, err := os.ReadFile(path)
	if err != nil {
		// First run
		return nil
	}

	var state CollapseState
	if err := json.Unmarshal(data, &state); err != nil {
		log.Printf("warning: invalid collapse state file, ignoring: %v", err)
		return nil
	}
	if state.Version > CollapseStateVersion {
		log.Printf("warning: collapse state version %d is newer than supported %d, ignoring", state.Version, CollapseStateVersion)
		return nil
	}
	if state.Collapsed == nil {
		state.Collapsed = make(map[string][]model.Value)
	}
	return &state
}
