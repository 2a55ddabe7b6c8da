package store

import (
	"database/sql"
	"encoding/json"

	"github.com/keepsake-ai/keepsake/internal/model"
)

// The canonical on-disk embedding encoding is a JSON array in a TEXT column.
// Decoding is tolerant: anything that is not a JSON float array loads as "no
// embedding" instead of failing the row, so one bad payload never aborts a
// bulk reload.

// encodeVector renders the embedding for storage. A nil, empty, or
// unencodable vector stores as NULL.
func encodeVector(v model.Vector) any {
	if len(v) == 0 {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return string(b)
}

// decodeVector parses a stored embedding, degrading to nil on malformed or
// absent input.
func decodeVector(s sql.NullString) model.Vector {
	if !s.Valid || s.String == "" {
		return nil
	}
	var v model.Vector
	if err := json.Unmarshal([]byte(s.String), &v); err != nil {
		return nil
	}
	if len(v) == 0 {
		return nil
	}
	return v
}
