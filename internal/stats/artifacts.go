package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const runIndexFile = "run_index.json"

var ErrRunIDRequired = errors.New("run id is required")

type SampleConfig struct {
	RunID        string  `json:"run_id"`
	Trail        string  `json:"trail"`
	Count        int     `json:"count"`
	Workers      int     `json:"workers"`
	Seed         int64   `json:"seed"`
	MinLength    int     `json:"min_length"`
	MaxLength    int     `json:"max_length"`
	BranchRate   float64 `json:"branch_rate"`
	MaximumMoves int     `json:"maximum_moves"`
}

type BestProgram struct {
	ID            string  `json:"id"`
	Program       string  `json:"program"`
	Fitness       float64 `json:"fitness"`
	Outcome       string  `json:"outcome"`
	Passes        int     `json:"passes"`
	MovesMade     int     `json:"moves_made"`
	FoodRemaining int     `json:"food_remaining"`
}

type SampleArtifacts struct {
	Config   SampleConfig
	Fitness  FitnessStats
	Outcomes map[string]int
	Best     BestProgram
}

type RunIndexEntry struct {
	RunID        string  `json:"run_id"`
	Trail        string  `json:"trail"`
	Count        int     `json:"count"`
	Seed         int64   `json:"seed"`
	Workers      int     `json:"workers"`
	BestFitness  float64 `json:"best_fitness"`
	Cleared      int     `json:"cleared"`
	CreatedAtUTC string  `json:"created_at_utc"`
}

// WriteSampleArtifacts writes one directory per run under baseDir and
// returns its path.
func WriteSampleArtifacts(baseDir string, artifacts SampleArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", ErrRunIDRequired
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "config.json"), artifacts.Config); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "fitness.json"), map[string]any{"fitness": artifacts.Fitness, "outcomes": artifacts.Outcomes}); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "best.json"), artifacts.Best); err != nil {
		return "", err
	}
	return runDir, nil
}

func ReadSampleConfig(baseDir, runID string) (SampleConfig, bool, error) {
	var cfg SampleConfig
	ok, err := readJSON(filepath.Join(baseDir, runID, "config.json"), &cfg)
	return cfg, ok, err
}

func ReadBestProgram(baseDir, runID string) (BestProgram, bool, error) {
	var best BestProgram
	ok, err := readJSON(filepath.Join(baseDir, runID, "best.json"), &best)
	return best, ok, err
}

// AppendRunIndex adds entry to the index, replacing an entry with the same
// run id.
func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return ErrRunIDRequired
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns entries newest first. A missing index is empty.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	var entries []RunIndexEntry
	ok, err := readJSON(filepath.Join(baseDir, runIndexFile), &entries)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []RunIndexEntry{}, nil
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Later appends first on equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func readJSON(path string, out any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return true, nil
}
