package storage

import (
	"errors"
	"testing"
	"time"

	"anttrail/internal/model"
)

func TestEvaluationCodecRoundTrip(t *testing.T) {
	input := evaluation("e1", "run-1", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	input.Heading = "west"
	input.Row, input.Column = 2, 0

	data, err := EncodeEvaluation(input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	output, err := DecodeEvaluation(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !output.CreatedAt.Equal(input.CreatedAt) {
		t.Fatalf("created_at mismatch: want %s, got %s", input.CreatedAt, output.CreatedAt)
	}
	output.CreatedAt = input.CreatedAt
	if output != input {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", input, output)
	}
}

func TestDecodeRejectsVersionMismatch(t *testing.T) {
	record := evaluation("e1", "run-1", time.Unix(0, 0))
	record.SchemaVersion = CurrentSchemaVersion + 1
	data, err := EncodeEvaluation(record)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeEvaluation(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("want ErrVersionMismatch, got %v", err)
	}

	summary := model.TrailSummary{Name: "x"}
	data, err = EncodeTrailSummary(summary)
	if err != nil {
		t.Fatalf("encode summary: %v", err)
	}
	if _, err := DecodeTrailSummary(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("want ErrVersionMismatch for unversioned summary, got %v", err)
	}
}

func TestDecodeRejectsMalformedPayload(t *testing.T) {
	if _, err := DecodeEvaluation([]byte("{not json")); err == nil {
		t.Fatal("expected decode error")
	}
}
