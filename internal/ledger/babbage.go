package ledger

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// DatumOption is [0, datum_hash] or [1, embedded datum].
type DatumOption struct {
	Hash   []byte
	Inline *PlutusData
}

func (d *DatumOption) UnmarshalCBOR(data []byte) error {
	var pair struct {
		_     struct{} `cbor:",toarray"`
		Kind  uint8
		Datum cbor.RawMessage
	}
	if err := cbor.Unmarshal(data, &pair); err != nil {
		return malformed("datum option", err)
	}
	*d = DatumOption{}
	switch pair.Kind {
	case 0:
		if err := cbor.Unmarshal(pair.Datum, &d.Hash); err != nil {
			return malformed("datum hash", err)
		}
		return nil
	case 1:
		payload, err := unwrapEncoded(pair.Datum)
		if err != nil {
			return err
		}
		d.Inline = &PlutusData{}
		if err := cbor.Unmarshal(payload, d.Inline); err != nil {
			return wrapMalformed("inline datum", err)
		}
		d.Hash = d.Inline.Hash()
		return nil
	}
	return malformed(fmt.Sprintf("datum option kind %d", pair.Kind), nil)
}

// PostAlonzoTransactionOutput is the map-encoded output.
type PostAlonzoTransactionOutput struct {
	Address     []byte       `cbor:"0,keyasint"`
	Amount      Value        `cbor:"1,keyasint"`
	DatumOption *DatumOption `cbor:"2,keyasint,omitempty"`
	ScriptRef   *ScriptRef   `cbor:"3,keyasint,omitempty"`
}

// BabbageTransactionOutput is either a legacy array output or a map output.
// Exactly one of the two is set.
type BabbageTransactionOutput struct {
	Legacy     *AlonzoTransactionOutput
	PostAlonzo *PostAlonzoTransactionOutput
}

func (o *BabbageTransactionOutput) UnmarshalCBOR(data []byte) error {
	major, err := majorType(data)
	if err != nil {
		return err
	}
	*o = BabbageTransactionOutput{}
	switch major {
	case majorArray:
		o.Legacy = &AlonzoTransactionOutput{}
		return cbor.Unmarshal(data, o.Legacy)
	case majorMap:
		o.PostAlonzo = &PostAlonzoTransactionOutput{}
		if err := cbor.Unmarshal(data, o.PostAlonzo); err != nil {
			return wrapMalformed("post-alonzo output", err)
		}
		return nil
	}
	return malformed(fmt.Sprintf("output with major type %d", major), nil)
}

// Address returns the raw address bytes of either output form.
func (o BabbageTransactionOutput) Address() []byte {
	if o.PostAlonzo != nil {
		return o.PostAlonzo.Address
	}
	if o.Legacy != nil {
		return o.Legacy.Address
	}
	return nil
}

// BabbageTransactionBody covers the Babbage and Conway body layouts.
// Governance keys 19 and above are not decoded.
type BabbageTransactionBody struct {
	Inputs                []TransactionInput         `cbor:"0,keyasint"`
	Outputs               []BabbageTransactionOutput `cbor:"1,keyasint"`
	Fee                   uint64                     `cbor:"2,keyasint"`
	TTL                   *uint64                    `cbor:"3,keyasint,omitempty"`
	Certificates          []Certificate              `cbor:"4,keyasint,omitempty"`
	Withdrawals           Withdrawals                `cbor:"5,keyasint,omitempty"`
	Update                *Update                    `cbor:"6,keyasint,omitempty"`
	AuxiliaryDataHash     []byte                     `cbor:"7,keyasint,omitempty"`
	ValidityIntervalStart *uint64                    `cbor:"8,keyasint,omitempty"`
	Mint                  Multiasset[int64]          `cbor:"9,keyasint,omitempty"`
	ScriptDataHash        []byte                     `cbor:"11,keyasint,omitempty"`
	Collateral            []TransactionInput         `cbor:"13,keyasint,omitempty"`
	RequiredSigners       [][]byte                   `cbor:"14,keyasint,omitempty"`
	NetworkID             *uint8                     `cbor:"15,keyasint,omitempty"`
	CollateralReturn      *BabbageTransactionOutput  `cbor:"16,keyasint,omitempty"`
	TotalCollateral       *uint64                    `cbor:"17,keyasint,omitempty"`
	ReferenceInputs       []TransactionInput         `cbor:"18,keyasint,omitempty"`
}

// BabbageWitnessSet adds PlutusV2 and PlutusV3 scripts.
type BabbageWitnessSet struct {
	VKeyWitnesses   []VKeyWitness   `cbor:"0,keyasint,omitempty"`
	NativeScripts   []NativeScript  `cbor:"1,keyasint,omitempty"`
	Bootstrap       cbor.RawMessage `cbor:"2,keyasint,omitempty"`
	PlutusV1Scripts [][]byte        `cbor:"3,keyasint,omitempty"`
	PlutusData      []PlutusData    `cbor:"4,keyasint,omitempty"`
	Redeemers       Redeemers       `cbor:"5,keyasint,omitempty"`
	PlutusV2Scripts [][]byte        `cbor:"6,keyasint,omitempty"`
	PlutusV3Scripts [][]byte        `cbor:"7,keyasint,omitempty"`
}

// PlutusScripts lists the Plutus scripts in version order.
func (w BabbageWitnessSet) PlutusScripts() []PlutusScript {
	out := plutusScripts(1, w.PlutusV1Scripts)
	out = append(out, plutusScripts(2, w.PlutusV2Scripts)...)
	return append(out, plutusScripts(3, w.PlutusV3Scripts)...)
}

// BabbageBlock is a block of the Babbage or Conway era.
type BabbageBlock struct {
	Header                 KeepRaw[Header]
	TransactionBodies      []KeepRaw[BabbageTransactionBody]
	TransactionWitnessSets []KeepRaw[BabbageWitnessSet]
	AuxiliaryDataSet       AuxiliaryDataSet
	InvalidTransactions    []uint64
}

func (b *BabbageBlock) UnmarshalCBOR(data []byte) error {
	items, err := decodeItems(data)
	if err != nil {
		return err
	}
	if len(items) != 5 {
		return malformed(fmt.Sprintf("block with %d fields", len(items)), nil)
	}
	*b = BabbageBlock{}
	fields := []any{&b.Header, &b.TransactionBodies, &b.TransactionWitnessSets, &b.AuxiliaryDataSet, &b.InvalidTransactions}
	return decodeBlockFields(items, fields)
}

func (b *BabbageBlock) HeaderBody() HeaderBody { return b.Header.Value.Body }
func (b *BabbageBlock) Hash() []byte           { return Hash256(b.Header.Raw()) }
func (b *BabbageBlock) TxCount() int           { return len(b.TransactionBodies) }

// Witnesses returns the witness set of transaction idx, or nil.
func (b *BabbageBlock) Witnesses(idx int) *KeepRaw[BabbageWitnessSet] {
	if idx < len(b.TransactionWitnessSets) {
		return &b.TransactionWitnessSets[idx]
	}
	return nil
}
