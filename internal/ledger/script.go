package ledger

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
)

// NativeScriptType is the leading tag of a native script array.
type NativeScriptType uint8

const (
	ScriptPubkey NativeScriptType = iota
	ScriptAll
	ScriptAny
	ScriptNOfK
	InvalidBefore
	InvalidHereafter
)

// NativeScript is a multisig/timelock script. It keeps its encoding, which
// is what the policy id is computed over.
type NativeScript struct {
	Type     NativeScriptType
	KeyHash  []byte
	Required uint64
	Scripts  []NativeScript
	Slot     uint64

	raw []byte
}

func (s *NativeScript) UnmarshalCBOR(data []byte) error {
	items, err := decodeItems(data)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return malformed("empty native script", nil)
	}
	*s = NativeScript{raw: bytes.Clone(data)}
	if err := cbor.Unmarshal(items[0], &s.Type); err != nil {
		return malformed("native script type", err)
	}
	var fields []any
	switch s.Type {
	case ScriptPubkey:
		fields = []any{&s.KeyHash}
	case ScriptAll, ScriptAny:
		fields = []any{&s.Scripts}
	case ScriptNOfK:
		fields = []any{&s.Required, &s.Scripts}
	case InvalidBefore, InvalidHereafter:
		fields = []any{&s.Slot}
	default:
		return malformed(fmt.Sprintf("native script type %d", s.Type), nil)
	}
	if len(items) != len(fields)+1 {
		return malformed(fmt.Sprintf("native script type %d with %d fields", s.Type, len(items)), nil)
	}
	for i, f := range fields {
		if err := cbor.Unmarshal(items[i+1], f); err != nil {
			return malformed("native script field", err)
		}
	}
	return nil
}

// Raw returns the original encoding.
func (s NativeScript) Raw() []byte {
	return s.raw
}

// Hash is the policy id of the script.
func (s NativeScript) Hash() []byte {
	return scriptHash(nativeScriptPrefix, s.raw)
}

// PlutusScript is flat-encoded script code tagged with its language version
// (1, 2 or 3).
type PlutusScript struct {
	Version uint8
	Code    []byte
}

func (s PlutusScript) Hash() []byte {
	return scriptHash(s.Version, s.Code)
}

func plutusScripts(version uint8, codes [][]byte) []PlutusScript {
	out := make([]PlutusScript, 0, len(codes))
	for _, c := range codes {
		out = append(out, PlutusScript{Version: version, Code: c})
	}
	return out
}

// ScriptRef is a script embedded in an output, either native or Plutus.
type ScriptRef struct {
	Native *NativeScript
	Plutus *PlutusScript
}

func (r *ScriptRef) UnmarshalCBOR(data []byte) error {
	payload, err := unwrapEncoded(data)
	if err != nil {
		return err
	}
	var pair struct {
		_      struct{} `cbor:",toarray"`
		Kind   uint8
		Script cbor.RawMessage
	}
	if err := cbor.Unmarshal(payload, &pair); err != nil {
		return malformed("script ref", err)
	}
	*r = ScriptRef{}
	switch pair.Kind {
	case nativeScriptPrefix:
		r.Native = &NativeScript{}
		return cbor.Unmarshal(pair.Script, r.Native)
	case plutusV1ScriptPrefix, plutusV2ScriptPrefix, plutusV3ScriptPrefix:
		r.Plutus = &PlutusScript{Version: pair.Kind}
		if err := cbor.Unmarshal(pair.Script, &r.Plutus.Code); err != nil {
			return malformed("plutus script ref", err)
		}
		return nil
	}
	return malformed(fmt.Sprintf("script ref kind %d", pair.Kind), nil)
}

// PlutusDataKind distinguishes the five Plutus data shapes.
type PlutusDataKind uint8

const (
	PlutusConstr PlutusDataKind = iota
	PlutusMap
	PlutusInt
	PlutusBytes
	PlutusList
)

type PlutusDataPair struct {
	Key   PlutusData
	Value PlutusData
}

// PlutusData is a script datum or redeemer argument. It keeps its encoding
// so datum hashes are taken over the original bytes.
type PlutusData struct {
	Kind        PlutusDataKind
	Constructor uint64
	Fields      []PlutusData
	Pairs       []PlutusDataPair
	Int         *big.Int
	Bytes       []byte

	raw []byte
}

// Raw returns the original encoding.
func (p PlutusData) Raw() []byte {
	return p.raw
}

// Hash is the datum hash.
func (p PlutusData) Hash() []byte {
	return Hash256(p.raw)
}

func (p *PlutusData) UnmarshalCBOR(data []byte) error {
	h, err := readHead(data)
	if err != nil {
		return err
	}
	*p = PlutusData{raw: bytes.Clone(data)}
	switch h.major {
	case majorUint, majorNegInt:
		p.Kind = PlutusInt
		p.Int = headInt(h)
		return nil
	case majorBytes:
		p.Kind = PlutusBytes
		return cbor.Unmarshal(data, &p.Bytes)
	case majorArray:
		p.Kind = PlutusList
		p.Fields = []PlutusData{}
		return cbor.Unmarshal(data, &p.Fields)
	case majorMap:
		p.Kind = PlutusMap
		p.Pairs = []PlutusDataPair{}
		return decodePairs(data, func(k, v cbor.RawMessage) error {
			var pair PlutusDataPair
			if err := cbor.Unmarshal(k, &pair.Key); err != nil {
				return err
			}
			if err := cbor.Unmarshal(v, &pair.Value); err != nil {
				return err
			}
			p.Pairs = append(p.Pairs, pair)
			return nil
		})
	case majorTag:
		return p.decodeTagged(h.arg, data[h.size:])
	}
	return malformed(fmt.Sprintf("plutus data with major type %d", h.major), nil)
}

func (p *PlutusData) decodeTagged(tag uint64, content []byte) error {
	switch {
	case tag == 2 || tag == 3:
		p.Kind = PlutusInt
		n, err := decodeBignum(tag, content)
		p.Int = n
		return err
	case tag >= 121 && tag <= 127:
		p.Kind = PlutusConstr
		p.Constructor = tag - 121
	case tag >= 1280 && tag <= 1400:
		p.Kind = PlutusConstr
		p.Constructor = tag - 1280 + 7
	case tag == 102:
		var general struct {
			_      struct{} `cbor:",toarray"`
			Alt    uint64
			Fields []PlutusData
		}
		if err := cbor.Unmarshal(content, &general); err != nil {
			return malformed("plutus constructor", err)
		}
		p.Kind = PlutusConstr
		p.Constructor = general.Alt
		p.Fields = general.Fields
		if p.Fields == nil {
			p.Fields = []PlutusData{}
		}
		return nil
	default:
		return malformed(fmt.Sprintf("plutus data tag %d", tag), nil)
	}
	p.Fields = []PlutusData{}
	if err := cbor.Unmarshal(content, &p.Fields); err != nil {
		return malformed("plutus constructor fields", err)
	}
	return nil
}

// headInt reads a CBOR major type 0 or 1 integer without overflow.
func headInt(h head) *big.Int {
	n := new(big.Int).SetUint64(h.arg)
	if h.major == majorNegInt {
		n.Neg(n).Sub(n, big.NewInt(1))
	}
	return n
}

// decodeBignum reads the byte string content of tag 2 or 3.
func decodeBignum(tag uint64, content []byte) (*big.Int, error) {
	var mag []byte
	if err := cbor.Unmarshal(content, &mag); err != nil {
		return nil, malformed("bignum", err)
	}
	n := new(big.Int).SetBytes(mag)
	if tag == 3 {
		n.Neg(n).Sub(n, big.NewInt(1))
	}
	return n, nil
}
