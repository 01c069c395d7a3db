package model

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// RenditionKind selects how a metadatum value is rendered.
type RenditionKind uint8

const (
	MapJSON RenditionKind = iota
	ArrayJSON
	IntScalar
	TextScalar
	BytesHex
)

var renditionKeys = [...]string{
	MapJSON:    "map_json",
	ArrayJSON:  "array_json",
	IntScalar:  "int_scalar",
	TextScalar: "text_scalar",
	BytesHex:   "bytes_hex",
}

func (k RenditionKind) String() string {
	if int(k) < len(renditionKeys) {
		return renditionKeys[k]
	}
	return fmt.Sprintf("RenditionKind(%d)", uint8(k))
}

// MetadatumRendition is one of: a JSON document (map or array), an
// arbitrary-precision integer, a text string or a hex byte string.
type MetadatumRendition struct {
	Kind RenditionKind
	JSON json.RawMessage
	Int  *big.Int
	Text string
}

func MapRendition(doc json.RawMessage) MetadatumRendition {
	return MetadatumRendition{Kind: MapJSON, JSON: doc}
}

func ArrayRendition(doc json.RawMessage) MetadatumRendition {
	return MetadatumRendition{Kind: ArrayJSON, JSON: doc}
}

func IntRendition(v *big.Int) MetadatumRendition {
	return MetadatumRendition{Kind: IntScalar, Int: new(big.Int).Set(v)}
}

func TextRendition(s string) MetadatumRendition {
	return MetadatumRendition{Kind: TextScalar, Text: s}
}

func BytesRendition(b []byte) MetadatumRendition {
	return MetadatumRendition{Kind: BytesHex, Text: ToHex(b)}
}

func (r MetadatumRendition) value() (any, error) {
	switch r.Kind {
	case MapJSON, ArrayJSON:
		if r.JSON == nil {
			return json.RawMessage("null"), nil
		}
		return r.JSON, nil
	case IntScalar:
		if r.Int == nil {
			return nil, fmt.Errorf("int rendition without value")
		}
		return json.RawMessage(r.Int.String()), nil
	case TextScalar, BytesHex:
		return r.Text, nil
	}
	return nil, fmt.Errorf("invalid rendition kind %d", r.Kind)
}

func (r MetadatumRendition) String() string {
	switch r.Kind {
	case MapJSON, ArrayJSON:
		return string(r.JSON)
	case IntScalar:
		if r.Int != nil {
			return r.Int.String()
		}
	case TextScalar, BytesHex:
		return r.Text
	}
	return ""
}

// MetadataRecord is one auxiliary-data label with its rendered content. The
// content is flattened into the record: {"label": "721", "map_json": {...}}.
type MetadataRecord struct {
	Label   string
	Content MetadatumRendition
}

func (m MetadataRecord) MarshalJSON() ([]byte, error) {
	v, err := m.Content.value()
	if err != nil {
		return nil, err
	}
	doc := map[string]any{"label": m.Label}
	doc[m.Content.Kind.String()] = v
	return json.Marshal(doc)
}
