package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	antapi "anttrail/pkg/anttrail"
)

// fileConfig is the union of keys accepted by eval and sample config files.
type fileConfig struct {
	StoreKind string
	DBPath    string
	Evaluate  antapi.EvaluateRequest
	Sample    antapi.SampleRequest
	// Keys holds every top-level key present in the file.
	Keys map[string]bool
}

func loadConfig(path string) (fileConfig, error) {
	raw, err := readConfigMap(path)
	if err != nil {
		return fileConfig{}, err
	}

	cfg := fileConfig{Keys: make(map[string]bool, len(raw))}
	for k := range raw {
		cfg.Keys[k] = true
	}
	if v, ok := asString(raw["store"]); ok {
		cfg.StoreKind = v
	}
	if v, ok := asString(raw["db_path"]); ok {
		cfg.DBPath = v
	}
	if v, ok := asString(raw["run_id"]); ok {
		cfg.Evaluate.RunID = v
		cfg.Sample.RunID = v
	}
	if v, ok := asString(raw["trail"]); ok {
		cfg.Evaluate.Trail = v
		cfg.Sample.Trail = v
	}
	if v, ok := asInt(raw["max_moves"]); ok {
		cfg.Evaluate.MaximumMoves = v
		cfg.Sample.MaximumMoves = v
	}
	if v, ok := asBool(raw["save"]); ok {
		cfg.Evaluate.Save = v
		cfg.Sample.Save = v
	}
	if v, ok := raw["program"]; ok {
		program, err := programText(v)
		if err != nil {
			return fileConfig{}, err
		}
		cfg.Evaluate.Program = program
	}
	if v, ok := asInt(raw["count"]); ok {
		cfg.Sample.Count = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		cfg.Sample.Workers = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		cfg.Sample.Seed = v
	}
	if v, ok := asInt(raw["min_length"]); ok {
		cfg.Sample.MinLength = v
	}
	if v, ok := asInt(raw["max_length"]); ok {
		cfg.Sample.MaxLength = v
	}
	if v, ok := asFloat64(raw["branch_rate"]); ok {
		cfg.Sample.BranchRate = v
	}
	return cfg, nil
}

func readConfigMap(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// programText accepts either a single string or a list of instruction names.
func programText(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []any:
		names := make([]string, len(x))
		for i, item := range x {
			s, ok := item.(string)
			if !ok {
				return "", fmt.Errorf("program entry %d is not a string", i)
			}
			names[i] = s
		}
		return strings.Join(names, " "), nil
	default:
		return "", fmt.Errorf("program must be a string or list of strings, got %T", v)
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}
