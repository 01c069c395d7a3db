package ledger

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// AlonzoTransactionOutput is the legacy [address, value, ?datum_hash] output.
type AlonzoTransactionOutput struct {
	Address   []byte
	Amount    Value
	DatumHash []byte
}

func (o *AlonzoTransactionOutput) UnmarshalCBOR(data []byte) error {
	items, err := decodeItems(data)
	if err != nil {
		return err
	}
	if len(items) != 2 && len(items) != 3 {
		return malformed(fmt.Sprintf("legacy output with %d fields", len(items)), nil)
	}
	*o = AlonzoTransactionOutput{}
	if err := cbor.Unmarshal(items[0], &o.Address); err != nil {
		return malformed("output address", err)
	}
	if err := cbor.Unmarshal(items[1], &o.Amount); err != nil {
		return err
	}
	if len(items) == 3 {
		if err := cbor.Unmarshal(items[2], &o.DatumHash); err != nil {
			return malformed("output datum hash", err)
		}
	}
	return nil
}

// AlonzoTransactionBody covers the Shelley, Allegra, Mary and Alonzo body
// layouts; later keys are simply absent in earlier eras.
type AlonzoTransactionBody struct {
	Inputs                []TransactionInput        `cbor:"0,keyasint"`
	Outputs               []AlonzoTransactionOutput `cbor:"1,keyasint"`
	Fee                   uint64                    `cbor:"2,keyasint"`
	TTL                   *uint64                   `cbor:"3,keyasint,omitempty"`
	Certificates          []Certificate             `cbor:"4,keyasint,omitempty"`
	Withdrawals           Withdrawals               `cbor:"5,keyasint,omitempty"`
	Update                *Update                   `cbor:"6,keyasint,omitempty"`
	AuxiliaryDataHash     []byte                    `cbor:"7,keyasint,omitempty"`
	ValidityIntervalStart *uint64                   `cbor:"8,keyasint,omitempty"`
	Mint                  Multiasset[int64]         `cbor:"9,keyasint,omitempty"`
	ScriptDataHash        []byte                    `cbor:"11,keyasint,omitempty"`
	Collateral            []TransactionInput        `cbor:"13,keyasint,omitempty"`
	RequiredSigners       [][]byte                  `cbor:"14,keyasint,omitempty"`
	NetworkID             *uint8                    `cbor:"15,keyasint,omitempty"`
}

// AlonzoWitnessSet carries the witness kinds known up to Alonzo.
type AlonzoWitnessSet struct {
	VKeyWitnesses   []VKeyWitness   `cbor:"0,keyasint,omitempty"`
	NativeScripts   []NativeScript  `cbor:"1,keyasint,omitempty"`
	Bootstrap       cbor.RawMessage `cbor:"2,keyasint,omitempty"`
	PlutusV1Scripts [][]byte        `cbor:"3,keyasint,omitempty"`
	PlutusData      []PlutusData    `cbor:"4,keyasint,omitempty"`
	Redeemers       Redeemers       `cbor:"5,keyasint,omitempty"`
}

// PlutusScripts lists the Plutus scripts of the witness set.
func (w AlonzoWitnessSet) PlutusScripts() []PlutusScript {
	return plutusScripts(1, w.PlutusV1Scripts)
}

// AlonzoBlock is a block of the Shelley, Allegra, Mary or Alonzo era. The
// invalid transaction list only exists from Alonzo on.
type AlonzoBlock struct {
	Header                 KeepRaw[Header]
	TransactionBodies      []KeepRaw[AlonzoTransactionBody]
	TransactionWitnessSets []KeepRaw[AlonzoWitnessSet]
	AuxiliaryDataSet       AuxiliaryDataSet
	InvalidTransactions    []uint64
}

func (b *AlonzoBlock) UnmarshalCBOR(data []byte) error {
	items, err := decodeItems(data)
	if err != nil {
		return err
	}
	if len(items) != 4 && len(items) != 5 {
		return malformed(fmt.Sprintf("block with %d fields", len(items)), nil)
	}
	*b = AlonzoBlock{}
	fields := []any{&b.Header, &b.TransactionBodies, &b.TransactionWitnessSets, &b.AuxiliaryDataSet, &b.InvalidTransactions}
	return decodeBlockFields(items, fields)
}

func (b *AlonzoBlock) HeaderBody() HeaderBody { return b.Header.Value.Body }
func (b *AlonzoBlock) Hash() []byte           { return Hash256(b.Header.Raw()) }
func (b *AlonzoBlock) TxCount() int           { return len(b.TransactionBodies) }

// Witnesses returns the witness set of transaction idx, or nil.
func (b *AlonzoBlock) Witnesses(idx int) *KeepRaw[AlonzoWitnessSet] {
	if idx < len(b.TransactionWitnessSets) {
		return &b.TransactionWitnessSets[idx]
	}
	return nil
}

func decodeBlockFields(items []cbor.RawMessage, fields []any) error {
	names := []string{"header", "transaction bodies", "witness sets", "auxiliary data", "invalid transactions"}
	for i, item := range items {
		if err := cbor.Unmarshal(item, fields[i]); err != nil {
			return wrapMalformed(names[i], err)
		}
	}
	return nil
}
