package model

import (
	"bytes"
	"encoding/gob"
	"io"

	"github.com/ezoic/tsreg/pkg/errors"
)

// SaveModelToWriter gob-encodes m to w. m is usually a pointer to a fitted
// estimator; only exported fields are written.
func SaveModelToWriter(m interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(m); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadModelFromReader decodes a model written by SaveModelToWriter into m,
// which must be a pointer of the same type.
func LoadModelFromReader(m interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(m); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}
	return nil
}

// Marshal returns the gob blob for m.
func Marshal(m interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := SaveModelToWriter(m, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a blob produced by Marshal into m.
func Unmarshal(data []byte, m interface{}) error {
	if len(data) == 0 {
		return errors.NewModelError("model.Unmarshal", "empty model blob", errors.ErrEmptyData)
	}
	return LoadModelFromReader(m, bytes.NewReader(data))
}
