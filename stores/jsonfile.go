package stores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/csmith/biglittle/model"
)

// JSONFiles is a store backed by a pair of preference files, one for Bigs
// and one for Littles, each mapping a name to that person's ranked list.
// The files hold a single chapter, so the chapter passed in is only used
// to key saved results.
type JSONFiles struct {
	BigsPath    string
	LittlesPath string
	ResultsPath string

	mu sync.Mutex
}

// Preferences reads both preference files. A missing file is treated as
// having no profiles.
func (j *JSONFiles) Preferences(_ context.Context, chapter model.Chapter) (model.Preferences, model.Preferences, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	bigs, err := readPreferences(j.BigsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read bigs: %w", err)
	}

	littles, err := readPreferences(j.LittlesPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read littles: %w", err)
	}

	if len(bigs) == 0 && len(littles) == 0 {
		return nil, nil, model.ErrNoProfiles
	}

	slog.Debug("Loaded preferences", "store", "json", "chapter", chapter.Key(), "bigs", len(bigs), "littles", len(littles))
	return bigs, littles, nil
}

// SaveProfile adds or replaces a person in the file for their role
func (j *JSONFiles) SaveProfile(_ context.Context, profile model.Profile) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	var path string
	switch profile.Role {
	case model.RoleBig:
		path = j.BigsPath
	case model.RoleLittle:
		path = j.LittlesPath
	default:
		return fmt.Errorf("unknown role: %q", profile.Role)
	}

	prefs, err := readPreferences(path)
	if err != nil {
		return err
	}

	list := profile.Preferences
	if list == nil {
		list = []string{}
	}
	prefs[profile.Name] = list

	return writeJSON(path, prefs)
}

// SaveResult stores the result in the results file, replacing any earlier
// result for the same chapter
func (j *JSONFiles) SaveResult(_ context.Context, result model.Result) error {
	if j.ResultsPath == "" {
		return fmt.Errorf("no results file configured")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	results, err := j.readResults()
	if err != nil {
		return err
	}

	results[result.Chapter.Key()] = result
	if err := writeJSON(j.ResultsPath, results); err != nil {
		return err
	}

	slog.Debug("Saved result", "store", "json", "chapter", result.Chapter.Key(), "id", result.ID)
	return nil
}

// Result returns the last result saved for the chapter
func (j *JSONFiles) Result(_ context.Context, chapter model.Chapter) (model.Result, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	results, err := j.readResults()
	if err != nil {
		return model.Result{}, err
	}

	result, ok := results[chapter.Key()]
	if !ok {
		return model.Result{}, model.ErrNoResult
	}
	return result, nil
}

func (j *JSONFiles) readResults() (map[string]model.Result, error) {
	results := make(map[string]model.Result)
	if err := readJSON(j.ResultsPath, &results); err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}
	return results, nil
}

func readPreferences(path string) (model.Preferences, error) {
	prefs := make(model.Preferences)
	if err := readJSON(path, &prefs); err != nil {
		return nil, err
	}
	for name, list := range prefs {
		if list == nil {
			prefs[name] = []string{}
		}
	}
	return prefs, nil
}

func readJSON(path string, v any) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return err
	}

	return json.Unmarshal(data, v)
}

func writeJSON(path string, v any) error {
	if path == "" {
		return fmt.Errorf("no file configured")
	}

	data, err := json.MarshalIndent(v, "", "   ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
