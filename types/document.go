package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ValueKind enumerates the scalar kinds a metadata value may hold.
type ValueKind int

const (
	ValueKindString ValueKind = iota
	ValueKindNumber
	ValueKindBool
)

// Value is a metadata scalar restricted to string, number, or bool.
// Source systems hand back loosely typed attribute maps; restricting the
// kinds here keeps every consumer free of nested-object handling.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
}

func StringValue(s string) Value {
	return Value{kind: ValueKindString, str: s}
}

func NumberValue(n float64) Value {
	return Value{kind: ValueKindNumber, num: n}
}

func BoolValue(b bool) Value {
	return Value{kind: ValueKindBool, b: b}
}

func (v Value) Kind() ValueKind { return v.kind }

// AsString returns the string content and whether the value is a string.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == ValueKindString
}

// AsNumber returns the numeric content and whether the value is a number.
func (v Value) AsNumber() (float64, bool) {
	return v.num, v.kind == ValueKindNumber
}

// AsBool returns the boolean content and whether the value is a bool.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == ValueKindBool
}

// Interface returns the underlying scalar as an untyped value, for handing
// into clients that take map[string]interface{} properties.
func (v Value) Interface() interface{} {
	switch v.kind {
	case ValueKindNumber:
		return v.num
	case ValueKindBool:
		return v.b
	default:
		return v.str
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case string:
		*v = StringValue(t)
	case bool:
		*v = BoolValue(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return err
		}
		*v = NumberValue(n)
	default:
		return fmt.Errorf("unsupported metadata value: %s", string(data))
	}
	return nil
}

// Metadata carries provenance attributes from the source system.
type Metadata map[string]Value

// Clone returns an independent copy of the metadata map.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// GetString returns the string value for key, or empty string when the key
// is absent or holds a non-string value.
func (m Metadata) GetString(key string) string {
	s, _ := m[key].AsString()
	return s
}

// Document is one unit of content fetched from a source system. It is
// created by a connector, consumed exactly once by the parser, and never
// persisted itself.
type Document struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	URL          string   `json:"url"`
	Author       string   `json:"author"`
	Source       string   `json:"source"`
	CreatedDate  string   `json:"created_date"`
	ModifiedDate string   `json:"modified_date"`
	Tags         []string `json:"tags"`
	Metadata     Metadata `json:"metadata"`
}

// ProcessedChunk is one bounded slice of a document's cleaned content, the
// atomic unit stored in and retrieved from the index. Its ID is
// "{document id}_chunk_{index}" and is stable across reruns for identical
// input and chunking parameters.
type ProcessedChunk struct {
	ID           string   `json:"id"`
	Content      string   `json:"content"`
	Title        string   `json:"title"`
	URL          string   `json:"url"`
	Author       string   `json:"author"`
	Source       string   `json:"source"`
	CreatedDate  string   `json:"created_date"`
	ModifiedDate string   `json:"modified_date"`
	Tags         []string `json:"tags"`
	SpaceKey     string   `json:"space_key"`
	Metadata     Metadata `json:"metadata,omitempty"`
	ChunkIndex   int      `json:"chunk_index"`
	TotalChunks  int      `json:"total_chunks"`
}

// EmbeddedChunk pairs a chunk with its embedding vector. The vector has no
// identity of its own.
type EmbeddedChunk struct {
	Chunk  ProcessedChunk
	Vector []float32
}

// RetrievedChunk is a chunk as returned by the search store at query time,
// with its relevance score (higher is better).
type RetrievedChunk struct {
	ID           string   `json:"id"`
	Content      string   `json:"content"`
	Title        string   `json:"title"`
	URL          string   `json:"url"`
	Author       string   `json:"author"`
	Source       string   `json:"source"`
	CreatedDate  string   `json:"created_date"`
	ModifiedDate string   `json:"modified_date"`
	Tags         []string `json:"tags"`
	SpaceKey     string   `json:"space_key"`
	ChunkIndex   int      `json:"chunk_index"`
	TotalChunks  int      `json:"total_chunks"`
	Score        float64  `json:"score"`
}
