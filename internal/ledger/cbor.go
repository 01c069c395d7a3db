package ledger

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var (
	// ErrMalformed reports a structurally invalid block encoding.
	ErrMalformed = errors.New("ledger: malformed cbor")
	// ErrUnsupportedEra reports an era tag this decoder does not handle.
	ErrUnsupportedEra = errors.New("ledger: unsupported era")
)

const (
	majorUint   = 0
	majorNegInt = 1
	majorBytes  = 2
	majorText   = 3
	majorArray  = 4
	majorMap    = 5
	majorTag    = 6
	majorSimple = 7

	breakByte = 0xff
)

func malformed(what string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrMalformed, what)
	}
	return fmt.Errorf("%w: %s: %w", ErrMalformed, what, err)
}

// wrapMalformed adds context to err and makes sure it matches ErrMalformed.
func wrapMalformed(what string, err error) error {
	if errors.Is(err, ErrMalformed) {
		return fmt.Errorf("%s: %w", what, err)
	}
	return malformed(what, err)
}

// KeepRaw decodes a value and keeps the exact bytes it was decoded from.
type KeepRaw[T any] struct {
	Value T
	raw   []byte
}

func (k *KeepRaw[T]) UnmarshalCBOR(data []byte) error {
	k.raw = bytes.Clone(data)
	return cbor.Unmarshal(data, &k.Value)
}

// Raw returns the original encoding.
func (k KeepRaw[T]) Raw() []byte {
	return k.raw
}

type head struct {
	major      byte
	arg        uint64
	size       int
	indefinite bool
}

func readHead(data []byte) (head, error) {
	if len(data) == 0 {
		return head{}, malformed("unexpected end of input", nil)
	}
	h := head{major: data[0] >> 5}
	ai := data[0] & 0x1f
	switch {
	case ai < 24:
		h.arg, h.size = uint64(ai), 1
	case ai == 24 && len(data) >= 2:
		h.arg, h.size = uint64(data[1]), 2
	case ai == 25 && len(data) >= 3:
		h.arg, h.size = uint64(binary.BigEndian.Uint16(data[1:])), 3
	case ai == 26 && len(data) >= 5:
		h.arg, h.size = uint64(binary.BigEndian.Uint32(data[1:])), 5
	case ai == 27 && len(data) >= 9:
		h.arg, h.size = binary.BigEndian.Uint64(data[1:]), 9
	case ai == 31 && h.major >= majorBytes && h.major <= majorMap:
		h.indefinite, h.size = true, 1
	default:
		return head{}, malformed(fmt.Sprintf("invalid initial byte 0x%02x", data[0]), nil)
	}
	return h, nil
}

// untag strips any leading tags and returns the tag numbers with the content.
func untag(data []byte) ([]uint64, []byte, error) {
	var tags []uint64
	for {
		h, err := readHead(data)
		if err != nil {
			return nil, nil, err
		}
		if h.major != majorTag {
			return tags, data, nil
		}
		tags = append(tags, h.arg)
		data = data[h.size:]
	}
}

// majorType reports the CBOR major type of the first item after any tags.
func majorType(data []byte) (byte, error) {
	_, content, err := untag(data)
	if err != nil {
		return 0, err
	}
	return content[0] >> 5, nil
}

// decodePairs walks a CBOR map in encoding order.
func decodePairs(data []byte, fn func(key, value cbor.RawMessage) error) error {
	_, content, err := untag(data)
	if err != nil {
		return err
	}
	h, err := readHead(content)
	if err != nil {
		return err
	}
	if h.major != majorMap {
		return malformed(fmt.Sprintf("expected map, got major type %d", h.major), nil)
	}
	rest := content[h.size:]
	next := func() (cbor.RawMessage, error) {
		var item cbor.RawMessage
		r, err := cbor.UnmarshalFirst(rest, &item)
		if err != nil {
			return nil, malformed("map entry", err)
		}
		rest = r
		return item, nil
	}
	for i := uint64(0); h.indefinite || i < h.arg; i++ {
		if h.indefinite {
			if len(rest) == 0 {
				return malformed("unterminated map", nil)
			}
			if rest[0] == breakByte {
				break
			}
		}
		k, err := next()
		if err != nil {
			return err
		}
		v, err := next()
		if err != nil {
			return err
		}
		if err := fn(k, v); err != nil {
			return err
		}
	}
	return nil
}

// decodeItems splits a CBOR array (optionally tagged, e.g. as a set) into its
// raw elements.
func decodeItems(data []byte) ([]cbor.RawMessage, error) {
	var items []cbor.RawMessage
	if err := cbor.Unmarshal(data, &items); err != nil {
		return nil, malformed("array", err)
	}
	return items, nil
}

// unwrapEncoded returns the payload of a tag-24 embedded CBOR byte string.
func unwrapEncoded(data []byte) ([]byte, error) {
	var tag cbor.RawTag
	if err := cbor.Unmarshal(data, &tag); err != nil {
		return nil, malformed("embedded cbor", err)
	}
	if tag.Number != 24 {
		return nil, malformed(fmt.Sprintf("expected tag 24, got %d", tag.Number), nil)
	}
	var payload []byte
	if err := cbor.Unmarshal(tag.Content, &payload); err != nil {
		return nil, malformed("embedded cbor payload", err)
	}
	return payload, nil
}
