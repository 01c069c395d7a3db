// Package ledgertest builds deterministic block encodings for tests.
package ledgertest

import (
	"bytes"
	"encoding/binary"

	"github.com/fxamacker/cbor/v2"
)

// Pair is one map entry.
type Pair struct {
	K any
	V any
}

// Map encodes as a definite-length CBOR map in slice order.
type Map []Pair

func (m Map) MarshalCBOR() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(Head(5, uint64(len(m))))
	for _, p := range m {
		for _, item := range []any{p.K, p.V} {
			b, err := cbor.Marshal(item)
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
	}
	return buf.Bytes(), nil
}

// Head encodes a CBOR initial byte with its argument.
func Head(major byte, arg uint64) []byte {
	m := major << 5
	switch {
	case arg < 24:
		return []byte{m | byte(arg)}
	case arg <= 0xff:
		return []byte{m | 24, byte(arg)}
	case arg <= 0xffff:
		return binary.BigEndian.AppendUint16([]byte{m | 25}, uint16(arg))
	case arg <= 0xffffffff:
		return binary.BigEndian.AppendUint32([]byte{m | 26}, uint32(arg))
	}
	return binary.BigEndian.AppendUint64([]byte{m | 27}, arg)
}

// MustMarshal encodes v or panics.
func MustMarshal(v any) []byte {
	b, err := cbor.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// Raw wraps v as pre-encoded CBOR.
func Raw(v any) cbor.RawMessage {
	return MustMarshal(v)
}

// Embedded wraps v as tag-24 encoded CBOR.
func Embedded(v any) cbor.Tag {
	return cbor.Tag{Number: 24, Content: MustMarshal(v)}
}

// Set wraps items in tag 258.
func Set(items ...any) cbor.Tag {
	if items == nil {
		items = []any{}
	}
	return cbor.Tag{Number: 258, Content: items}
}

// Bytes returns n copies of b.
func Bytes(b byte, n int) []byte {
	return bytes.Repeat([]byte{b}, n)
}

func Hash32(b byte) []byte { return Bytes(b, 32) }
func Hash28(b byte) []byte { return Bytes(b, 28) }

// Input is [tx_id, index].
func Input(txID []byte, idx uint64) []any {
	return []any{txID, idx}
}

// Tx is one transaction of a block under construction.
type Tx struct {
	Body    Map
	Witness Map
	Aux     any
}

// Block describes a block to encode. Invalid is only written when
// WithInvalid is set. A non-nil WitnessSets limits the block to the witness
// sets of its first *WitnessSets transactions.
type Block struct {
	EraTag       uint64
	Number       uint64
	Slot         uint64
	LegacyHeader bool
	Txs          []Tx
	WithInvalid  bool
	Invalid      []uint64
	WitnessSets  *int
}

// HeaderBody returns the encoded header body.
func (b Block) HeaderBody() []any {
	if b.LegacyHeader {
		return []any{
			b.Number, b.Slot, Hash32(0xa0), Bytes(0xa1, 32), Bytes(0xa2, 32),
			[]any{Bytes(1, 32), Bytes(2, 80)}, []any{Bytes(3, 32), Bytes(4, 80)},
			uint64(1024), Hash32(0xa3),
			Bytes(5, 32), uint64(1), uint64(2), Bytes(6, 64),
			uint64(4), uint64(0),
		}
	}
	return []any{
		b.Number, b.Slot, Hash32(0xa0), Bytes(0xa1, 32), Bytes(0xa2, 32),
		[]any{Bytes(1, 32), Bytes(2, 80)},
		uint64(2048), Hash32(0xa3),
		[]any{Bytes(5, 32), uint64(1), uint64(2), Bytes(6, 64)},
		[]any{uint64(9), uint64(0)},
	}
}

// Header returns the encoded header, the input of the block hash.
func (b Block) Header() []byte {
	return MustMarshal([]any{b.HeaderBody(), Bytes(7, 448)})
}

// Encode returns the block without the era envelope.
func (b Block) Encode() []byte {
	bodies := make([]any, 0, len(b.Txs))
	witnesses := make([]any, 0, len(b.Txs))
	aux := Map{}
	for i, tx := range b.Txs {
		bodies = append(bodies, tx.Body)
		w := tx.Witness
		if w == nil {
			w = Map{}
		}
		witnesses = append(witnesses, w)
		if tx.Aux != nil {
			aux = append(aux, Pair{uint64(i), tx.Aux})
		}
	}
	if b.WitnessSets != nil && *b.WitnessSets < len(witnesses) {
		witnesses = witnesses[:*b.WitnessSets]
	}
	items := []any{cbor.RawMessage(b.Header()), bodies, witnesses, aux}
	if b.WithInvalid {
		invalid := b.Invalid
		if invalid == nil {
			invalid = []uint64{}
		}
		items = append(items, invalid)
	}
	return MustMarshal(items)
}

// Envelope returns [era_tag, block].
func (b Block) Envelope() []byte {
	return MustMarshal([]any{b.EraTag, cbor.RawMessage(b.Encode())})
}

// SimpleBody is a minimal body spending one input into one output.
func SimpleBody(fee uint64) Map {
	return Map{
		{uint64(0), []any{Input(Hash32(0x11), 0)}},
		{uint64(1), []any{[]any{ShelleyAddress(), uint64(1_000_000)}}},
		{uint64(2), fee},
	}
}

// ShelleyAddress is a mainnet base address with fixed key hashes.
func ShelleyAddress() []byte {
	return append([]byte{0x01}, append(Hash28(0x21), Hash28(0x22)...)...)
}

// ByronAddress is a structurally plausible bootstrap address.
func ByronAddress() []byte {
	payload := MustMarshal([]any{Hash28(0x31), Map{}, uint64(0)})
	return MustMarshal([]any{cbor.Tag{Number: 24, Content: payload}, uint64(12345)})
}

// Credential is a key hash stake credential.
func Credential(b byte) []any { return []any{uint64(0), Hash28(b)} }

// PoolRegistration is a pool registration certificate with one relay of
// each kind.
func PoolRegistration() []any {
	relays := []any{
		[]any{uint64(0), uint64(3001), []byte{10, 0, 0, 1}, nil},
		[]any{uint64(1), nil, "relay.example.org"},
		[]any{uint64(2), "srv.example.org"},
	}
	return []any{uint64(3), Hash28(3), Hash32(5), uint64(500), uint64(340),
		cbor.Tag{Number: 30, Content: []any{uint64(1), uint64(50)}},
		append([]byte{0xe1}, Hash28(6)...), Set(Hash28(7)), relays,
		[]any{"https://pool.example", Hash32(8)}}
}

// Certificates returns one encoded certificate per certificate tag.
func Certificates() map[uint64][]any {
	cred := Credential(1)
	script := []any{uint64(1), Hash28(2)}
	pool := Hash28(3)
	anchor := []any{"https://example.org/a.json", Hash32(4)}
	return map[uint64][]any{
		0:  {uint64(0), cred},
		1:  {uint64(1), script},
		2:  {uint64(2), cred, pool},
		3:  PoolRegistration(),
		4:  {uint64(4), pool, uint64(300)},
		5:  {uint64(5), Hash28(9), Hash28(10), Hash32(11)},
		6:  {uint64(6), []any{uint64(1), Map{{cred, int64(-20)}}}},
		7:  {uint64(7), cred, uint64(2_000_000)},
		8:  {uint64(8), cred, uint64(2_000_000)},
		9:  {uint64(9), cred, []any{uint64(2)}},
		10: {uint64(10), cred, pool, []any{uint64(0), Hash28(12)}},
		11: {uint64(11), cred, pool, uint64(1)},
		12: {uint64(12), cred, []any{uint64(3)}, uint64(1)},
		13: {uint64(13), cred, pool, []any{uint64(1), Hash28(13)}, uint64(1)},
		14: {uint64(14), cred, script},
		15: {uint64(15), cred, nil},
		16: {uint64(16), cred, uint64(500), anchor},
		17: {uint64(17), cred, uint64(500)},
		18: {uint64(18), cred, nil},
	}
}
