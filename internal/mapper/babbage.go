package mapper

import (
	"blockScope/internal/ledger"
	"blockScope/internal/model"
)

// ToBabbageTransactionRecord converts a Babbage or Conway transaction.
func (w EventWriter) ToBabbageTransactionRecord(
	body *ledger.KeepRaw[ledger.BabbageTransactionBody],
	txHash string,
	aux *ledger.KeepRaw[ledger.AuxiliaryData],
	witness *ledger.KeepRaw[ledger.BabbageWitnessSet],
) (model.TransactionRecord, error) {
	return w.toTransactionRecord(txBundle{
		hash:    txHash,
		body:    babbageTxView(body),
		aux:     aux,
		witness: babbageWitnessView(witness),
	})
}

func (w EventWriter) ToBabbageBlockRecord(era model.Era, block *ledger.BabbageBlock, cbor []byte) (model.BlockRecord, error) {
	return w.toBlockRecord(babbageBlockView(era, block), cbor)
}
