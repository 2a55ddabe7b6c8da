package store

import (
	"database/sql"
	"testing"

	"github.com/keepsake-ai/keepsake/internal/model"
)

func TestEncodeVector(t *testing.T) {
	if encodeVector(nil) != nil {
		t.Error("nil vector must encode as NULL")
	}
	if encodeVector(model.Vector{}) != nil {
		t.Error("empty vector must encode as NULL")
	}
	if got := encodeVector(model.Vector{0.5, -1}); got != "[0.5,-1]" {
		t.Errorf("unexpected encoding: %v", got)
	}
}

func TestDecodeVector(t *testing.T) {
	tests := []struct {
		name string
		in   sql.NullString
		want model.Vector
	}{
		{"null", sql.NullString{}, nil},
		{"empty string", sql.NullString{Valid: true}, nil},
		{"malformed", sql.NullString{String: "{not json", Valid: true}, nil},
		{"wrong type", sql.NullString{String: `"hello"`, Valid: true}, nil},
		{"empty array", sql.NullString{String: "[]", Valid: true}, nil},
		{"valid", sql.NullString{String: "[0.5,-1]", Valid: true}, model.Vector{0.5, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeVector(tt.in)
			if !vectorsEqual(got, tt.want) {
				t.Errorf("decodeVector(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
