package backend

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
)

// ShapeKind names the envelope variants the backend may answer with.
type ShapeKind int

const (
	ShapeRaw ShapeKind = iota
	ShapeArray
	ShapeEnvelope
	ShapePaginated
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeArray:
		return "array"
	case ShapeEnvelope:
		return "envelope"
	case ShapePaginated:
		return "paginated"
	default:
		return "raw"
	}
}

// Page is the pagination metadata of a paginated envelope.
type Page struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	LastPage    int `json:"last_page"`
}

// Payload is a classified response body. Data is always the innermost
// value once every envelope layer has been removed.
type Payload struct {
	Kind ShapeKind
	Data json.RawMessage
	Page *Page
}

var pageKeys = []string{"current_page", "last_page", "per_page", "total"}

// classify inspects a single layer, in precedence order:
// paginated envelope, bare envelope, array, raw.
func classify(raw json.RawMessage) Payload {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Payload{Kind: ShapeRaw, Data: json.RawMessage("null")}
	}
	switch trimmed[0] {
	case '[':
		return Payload{Kind: ShapeArray, Data: trimmed}
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return Payload{Kind: ShapeRaw, Data: trimmed}
		}
		data, ok := obj["data"]
		if !ok {
			return Payload{Kind: ShapeRaw, Data: trimmed}
		}
		if isArray(data) && hasAny(obj, pageKeys) {
			var pg Page
			_ = json.Unmarshal(trimmed, &pg)
			return Payload{Kind: ShapePaginated, Data: bytes.TrimSpace(data), Page: &pg}
		}
		return Payload{Kind: ShapeEnvelope, Data: bytes.TrimSpace(data)}
	default:
		return Payload{Kind: ShapeRaw, Data: trimmed}
	}
}

// Unwrap classifies raw and strips envelopes until a fixpoint. Kind and
// Page describe the outermost layer that carried meaning. Each layer is
// strictly shorter than the one around it, so any depth terminates.
func Unwrap(raw json.RawMessage) Payload {
	out := classify(raw)
	cur := out
	for cur.Kind == ShapeEnvelope {
		cur = classify(cur.Data)
		if cur.Page != nil && out.Page == nil {
			out.Page = cur.Page
			out.Kind = ShapePaginated
		}
	}
	out.Data = cur.Data
	return out
}

// Normalize returns the innermost value of raw. It is idempotent:
// Normalize(Normalize(x)) equals Normalize(x).
func Normalize(raw json.RawMessage) json.RawMessage {
	return Unwrap(raw).Data
}

// DecodeList decodes a collection response. Every envelope variant yields
// a non-nil slice; a non-array body is logged and treated as empty.
func DecodeList[T any](raw json.RawMessage, log zerolog.Logger) ([]T, error) {
	p := Unwrap(raw)
	out := make([]T, 0)
	if isNull(p.Data) {
		return out, nil
	}
	if !isArray(p.Data) {
		log.Warn().Str("shape", p.Kind.String()).Msg("collection response is not a list, using empty list")
		return out, nil
	}
	if err := json.Unmarshal(p.Data, &out); err != nil {
		return make([]T, 0), &domain.TransportError{Err: fmt.Errorf("decode list: %w", err)}
	}
	return out, nil
}

// DecodeRecord decodes a single-record response. When the innermost object
// wraps the record under one of keys (e.g. "restaurant"), that value is used.
// A null body returns (nil, nil).
func DecodeRecord[T any](raw json.RawMessage, keys ...string) (*T, error) {
	data := Normalize(raw)
	if isNull(data) {
		return nil, nil
	}
	if len(keys) > 0 && bytes.HasPrefix(data, []byte("{")) {
		var obj map[string]json.RawMessage
		if json.Unmarshal(data, &obj) == nil {
			for _, k := range keys {
				if inner, ok := obj[k]; ok && bytes.HasPrefix(bytes.TrimSpace(inner), []byte("{")) {
					data = Normalize(inner)
					break
				}
			}
		}
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, &domain.TransportError{Err: fmt.Errorf("decode record: %w", err)}
	}
	return &v, nil
}

func isArray(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == '['
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func hasAny(obj map[string]json.RawMessage, keys []string) bool {
	for _, k := range keys {
		if _, ok := obj[k]; ok {
			return true
		}
	}
	return false
}
