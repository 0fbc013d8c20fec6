// Package bundle persists collections of tracks, CRT hits and match
// candidates as columnar bundles: one file per collection, one column per
// attribute keyed by attribute name.
//
// A bundle file is a gob-encoded Bundle compressed with gzip. Gob keeps
// float64 values bit-exact, so a write/read cycle reproduces every field.
package bundle

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"errors"
	"fmt"
)

// ErrEmptyCollection is returned when asked to persist an empty match
// candidate collection.
var ErrEmptyCollection = errors.New("empty collection")

// ErrMalformedBundle is returned when a bundle cannot be decoded into the
// expected entity collection.
var ErrMalformedBundle = errors.New("malformed bundle")

// Kind names the entity collection stored in a bundle.
type Kind string

const (
	KindTracks          Kind = "tracks"
	KindCRTHits         Kind = "crthits"
	KindMatchCandidates Kind = "match_candidates"
)

// FileName returns the on-disk name of the bundle for k.
func (k Kind) FileName() string {
	return string(k) + ".bundle"
}

// Column holds one attribute for every row. Exactly one slice is set.
type Column struct {
	Float64       []float64
	Int64         []int64
	String        []string
	// Float64Arrays holds one variable-length array per row. Point arrays
	// are stored flattened as x0,y0,z0,x1,y1,z1,...
	Float64Arrays [][]float64
}

func (c Column) len() int {
	switch {
	case c.Float64 != nil:
		return len(c.Float64)
	case c.Int64 != nil:
		return len(c.Int64)
	case c.String != nil:
		return len(c.String)
	case c.Float64Arrays != nil:
		return len(c.Float64Arrays)
	}
	return 0
}

// Bundle is the serialized form of one entity collection.
type Bundle struct {
	Kind             Kind
	RunID            string
	CreatedUnixNanos int64
	Rows             int
	Columns          map[string]Column
}

// Validate checks that every column has Rows entries.
func (b *Bundle) Validate() error {
	for name, col := range b.Columns {
		if n := col.len(); n != b.Rows {
			return fmt.Errorf("%w: %s column %q has %d rows, want %d", ErrMalformedBundle, b.Kind, name, n, b.Rows)
		}
	}
	return nil
}

// Encode serializes b with gob and compresses it with gzip.
func Encode(b *Bundle) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	enc := gob.NewEncoder(gz)
	if err := enc.Encode(b); err != nil {
		gz.Close()
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode decompresses and decodes a bundle blob.
func Decode(blob []byte) (*Bundle, error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("%w: empty blob", ErrMalformedBundle)
	}
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create gzip reader: %v", ErrMalformedBundle, err)
	}
	defer gz.Close()

	var b Bundle
	if err := gob.NewDecoder(gz).Decode(&b); err != nil {
		return nil, fmt.Errorf("%w: failed to decode: %v", ErrMalformedBundle, err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

func (b *Bundle) column(name string) (Column, error) {
	col, ok := b.Columns[name]
	if !ok && b.Rows > 0 {
		return Column{}, fmt.Errorf("%w: %s bundle has no %q column", ErrMalformedBundle, b.Kind, name)
	}
	return col, nil
}

func (b *Bundle) float64s(name string) ([]float64, error) {
	col, err := b.column(name)
	if err != nil {
		return nil, err
	}
	if col.Float64 == nil && b.Rows > 0 {
		return nil, fmt.Errorf("%w: %s column %q is not float64", ErrMalformedBundle, b.Kind, name)
	}
	return col.Float64, nil
}

func (b *Bundle) int64s(name string) ([]int64, error) {
	col, err := b.column(name)
	if err != nil {
		return nil, err
	}
	if col.Int64 == nil && b.Rows > 0 {
		return nil, fmt.Errorf("%w: %s column %q is not int64", ErrMalformedBundle, b.Kind, name)
	}
	return col.Int64, nil
}

func (b *Bundle) strings(name string) ([]string, error) {
	col, err := b.column(name)
	if err != nil {
		return nil, err
	}
	if col.String == nil && b.Rows > 0 {
		return nil, fmt.Errorf("%w: %s column %q is not string", ErrMalformedBundle, b.Kind, name)
	}
	return col.String, nil
}

func (b *Bundle) float64Arrays(name string) ([][]float64, error) {
	col, err := b.column(name)
	if err != nil {
		return nil, err
	}
	if col.Float64Arrays == nil && b.Rows > 0 {
		return nil, fmt.Errorf("%w: %s column %q is not a float64 array", ErrMalformedBundle, b.Kind, name)
	}
	return col.Float64Arrays, nil
}

