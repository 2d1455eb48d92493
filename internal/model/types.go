package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// EvaluationRecord is one scored execution of a program on a trail.
type EvaluationRecord struct {
	VersionedRecord
	ID            string    `json:"id"`
	RunID         string    `json:"run_id"`
	Trail         string    `json:"trail"`
	Program       string    `json:"program"`
	MaximumMoves  int       `json:"maximum_moves"`
	Fitness       float64   `json:"fitness"`
	FoodEaten     int       `json:"food_eaten"`
	FoodRemaining int       `json:"food_remaining"`
	MovesMade     int       `json:"moves_made"`
	Passes        int       `json:"passes"`
	Outcome       string    `json:"outcome"`
	Row           int       `json:"row"`
	Column        int       `json:"column"`
	Heading       string    `json:"heading"`
	CreatedAt     time.Time `json:"created_at"`
}

type TrailSummary struct {
	VersionedRecord
	Name             string  `json:"name"`
	Rows             int     `json:"rows"`
	Columns          int     `json:"columns"`
	FoodCount        int     `json:"food_count"`
	Evaluations      int     `json:"evaluations"`
	BestFitness      float64 `json:"best_fitness"`
	BestEvaluationID string  `json:"best_evaluation_id"`
}
