package mapper

import (
	"blockScope/internal/ledger"
	"blockScope/internal/model"
)

// ToTransactionRecord converts a Shelley, Allegra, Mary or Alonzo
// transaction. aux and witness may be nil when the block holds none for it.
func (w EventWriter) ToTransactionRecord(
	body *ledger.KeepRaw[ledger.AlonzoTransactionBody],
	txHash string,
	aux *ledger.KeepRaw[ledger.AuxiliaryData],
	witness *ledger.KeepRaw[ledger.AlonzoWitnessSet],
) (model.TransactionRecord, error) {
	return w.toTransactionRecord(txBundle{
		hash:    txHash,
		body:    legacyTxView(body),
		aux:     aux,
		witness: legacyWitnessView(witness),
	})
}

// ToBlockRecord converts a legacy-family block. cbor is the original block
// encoding, only used when the block cbor is requested.
func (w EventWriter) ToBlockRecord(era model.Era, block *ledger.AlonzoBlock, cbor []byte) (model.BlockRecord, error) {
	return w.toBlockRecord(legacyBlockView(era, block), cbor)
}
