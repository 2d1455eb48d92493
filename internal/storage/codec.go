package storage

import (
	"encoding/json"
	"errors"
	"sort"

	"anttrail/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func CurrentVersion() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func EncodeEvaluation(r model.EvaluationRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeEvaluation(data []byte) (model.EvaluationRecord, error) {
	var record model.EvaluationRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.EvaluationRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.EvaluationRecord{}, err
	}
	return record, nil
}

func EncodeTrailSummary(s model.TrailSummary) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeTrailSummary(data []byte) (model.TrailSummary, error) {
	var summary model.TrailSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return model.TrailSummary{}, err
	}
	if err := checkVersion(summary.VersionedRecord); err != nil {
		return model.TrailSummary{}, err
	}
	return summary, nil
}

func sortEvaluations(records []model.EvaluationRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
