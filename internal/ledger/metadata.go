package ledger

import (
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
)

// MetadatumKind distinguishes the five metadatum shapes.
type MetadatumKind uint8

const (
	MetaInt MetadatumKind = iota
	MetaBytes
	MetaText
	MetaList
	MetaMap
)

type MetadatumPair struct {
	Key   Metadatum
	Value Metadatum
}

// Metadatum is a transaction metadata value. Map entries keep their
// encoding order.
type Metadatum struct {
	Kind  MetadatumKind
	Int   *big.Int
	Bytes []byte
	Text  string
	List  []Metadatum
	Map   []MetadatumPair
}

func (m *Metadatum) UnmarshalCBOR(data []byte) error {
	h, err := readHead(data)
	if err != nil {
		return err
	}
	*m = Metadatum{}
	switch h.major {
	case majorUint, majorNegInt:
		m.Kind, m.Int = MetaInt, headInt(h)
		return nil
	case majorBytes:
		m.Kind = MetaBytes
		return cbor.Unmarshal(data, &m.Bytes)
	case majorText:
		m.Kind = MetaText
		return cbor.Unmarshal(data, &m.Text)
	case majorArray:
		m.Kind, m.List = MetaList, []Metadatum{}
		return cbor.Unmarshal(data, &m.List)
	case majorMap:
		m.Kind, m.Map = MetaMap, []MetadatumPair{}
		return decodePairs(data, func(k, v cbor.RawMessage) error {
			var pair MetadatumPair
			if err := cbor.Unmarshal(k, &pair.Key); err != nil {
				return err
			}
			if err := cbor.Unmarshal(v, &pair.Value); err != nil {
				return err
			}
			m.Map = append(m.Map, pair)
			return nil
		})
	case majorTag:
		if h.arg == 2 || h.arg == 3 {
			n, err := decodeBignum(h.arg, data[h.size:])
			m.Kind, m.Int = MetaInt, n
			return err
		}
	}
	return malformed(fmt.Sprintf("metadatum with major type %d", h.major), nil)
}

// MetadataEntry is one top-level label with its value.
type MetadataEntry struct {
	Label uint64
	Value Metadatum
}

// Metadata keeps labels in encoding order.
type Metadata []MetadataEntry

func (md *Metadata) UnmarshalCBOR(data []byte) error {
	out := Metadata{}
	err := decodePairs(data, func(k, v cbor.RawMessage) error {
		var e MetadataEntry
		if err := cbor.Unmarshal(k, &e.Label); err != nil {
			return malformed("metadata label", err)
		}
		if err := cbor.Unmarshal(v, &e.Value); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return err
	}
	*md = out
	return nil
}

const auxiliaryDataTag = 259

// AuxiliaryData is the per-transaction metadata and script section in any of
// its three encodings: a bare metadata map, [metadata, native_scripts], or
// the tag-259 map.
type AuxiliaryData struct {
	Metadata        Metadata
	NativeScripts   []NativeScript
	PlutusV1Scripts [][]byte
	PlutusV2Scripts [][]byte
	PlutusV3Scripts [][]byte
}

func (a *AuxiliaryData) UnmarshalCBOR(data []byte) error {
	tags, content, err := untag(data)
	if err != nil {
		return err
	}
	*a = AuxiliaryData{}
	if len(tags) > 0 && tags[0] == auxiliaryDataTag {
		var m struct {
			Metadata        Metadata       `cbor:"0,keyasint,omitempty"`
			NativeScripts   []NativeScript `cbor:"1,keyasint,omitempty"`
			PlutusV1Scripts [][]byte       `cbor:"2,keyasint,omitempty"`
			PlutusV2Scripts [][]byte       `cbor:"3,keyasint,omitempty"`
			PlutusV3Scripts [][]byte       `cbor:"4,keyasint,omitempty"`
		}
		if err := cbor.Unmarshal(content, &m); err != nil {
			return malformed("auxiliary data", err)
		}
		*a = AuxiliaryData(m)
		return nil
	}
	switch content[0] >> 5 {
	case majorMap:
		return cbor.Unmarshal(content, &a.Metadata)
	case majorArray:
		var pair struct {
			_             struct{} `cbor:",toarray"`
			Metadata      Metadata
			NativeScripts []NativeScript
		}
		if err := cbor.Unmarshal(content, &pair); err != nil {
			return malformed("auxiliary data", err)
		}
		a.Metadata, a.NativeScripts = pair.Metadata, pair.NativeScripts
		return nil
	}
	return malformed("auxiliary data shape", nil)
}

// PlutusScripts lists the Plutus scripts in version order.
func (a AuxiliaryData) PlutusScripts() []PlutusScript {
	out := plutusScripts(1, a.PlutusV1Scripts)
	out = append(out, plutusScripts(2, a.PlutusV2Scripts)...)
	return append(out, plutusScripts(3, a.PlutusV3Scripts)...)
}

// AuxiliaryDataEntry pairs a transaction index with its auxiliary data.
type AuxiliaryDataEntry struct {
	TxIndex uint64
	Data    KeepRaw[AuxiliaryData]
}

// AuxiliaryDataSet is the sparse block-level map from transaction index to
// auxiliary data.
type AuxiliaryDataSet []AuxiliaryDataEntry

func (s *AuxiliaryDataSet) UnmarshalCBOR(data []byte) error {
	out := AuxiliaryDataSet{}
	err := decodePairs(data, func(k, v cbor.RawMessage) error {
		var e AuxiliaryDataEntry
		if err := cbor.Unmarshal(k, &e.TxIndex); err != nil {
			return malformed("auxiliary data index", err)
		}
		if err := cbor.Unmarshal(v, &e.Data); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return err
	}
	*s = out
	return nil
}

// Find returns the auxiliary data of transaction idx, or nil.
func (s AuxiliaryDataSet) Find(idx int) *KeepRaw[AuxiliaryData] {
	for i := range s {
		if s[i].TxIndex == uint64(idx) {
			return &s[i].Data
		}
	}
	return nil
}
