package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// If you need custom encoding (e.g. protobuf/msgpack), implement Codec and
// pass it to the vector via its codec option.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the default codec used by the library.
//
// NOTE: This affects newly-written chunks. Data persisted with a different
// codec must be opened with that codec.
var Default Codec = GoJSON{}
