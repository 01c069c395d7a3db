package mapper

import (
	"fmt"

	"blockScope/internal/ledger"
	"blockScope/internal/model"
)

// txView is the era-independent shape of a transaction body. Both block
// families are converted into it before records are built.
type txView struct {
	raw              []byte
	inputs           []ledger.TransactionInput
	outputs          []ledger.BabbageTransactionOutput
	fee              uint64
	ttl              *uint64
	validityStart    *uint64
	networkID        *uint8
	certificates     []ledger.Certificate
	withdrawals      ledger.Withdrawals
	update           *ledger.Update
	mint             ledger.Multiasset[int64]
	collateral       []ledger.TransactionInput
	collateralReturn *ledger.BabbageTransactionOutput
	requiredSigners  [][]byte
	style            updateStyle
}

type witnessView struct {
	raw       []byte
	vkeys     []ledger.VKeyWitness
	natives   []ledger.NativeScript
	plutus    []ledger.PlutusScript
	redeemers ledger.Redeemers
	datums    []ledger.PlutusData
}

// txBundle is one transaction of a block with everything the block holds
// for it.
type txBundle struct {
	hash    string
	body    txView
	aux     *ledger.KeepRaw[ledger.AuxiliaryData]
	witness *witnessView
}

type blockView struct {
	era    model.Era
	header ledger.HeaderBody
	hash   []byte
	txs    []txBundle
}

func legacyTxView(body *ledger.KeepRaw[ledger.AlonzoTransactionBody]) txView {
	b := body.Value
	outputs := make([]ledger.BabbageTransactionOutput, 0, len(b.Outputs))
	for i := range b.Outputs {
		outputs = append(outputs, ledger.BabbageTransactionOutput{Legacy: &b.Outputs[i]})
	}
	return txView{
		raw:             body.Raw(),
		inputs:          b.Inputs,
		outputs:         outputs,
		fee:             b.Fee,
		ttl:             b.TTL,
		validityStart:   b.ValidityIntervalStart,
		networkID:       b.NetworkID,
		certificates:    b.Certificates,
		withdrawals:     b.Withdrawals,
		update:          b.Update,
		mint:            b.Mint,
		collateral:      b.Collateral,
		requiredSigners: b.RequiredSigners,
		style:           legacyUpdates,
	}
}

func legacyWitnessView(ws *ledger.KeepRaw[ledger.AlonzoWitnessSet]) *witnessView {
	if ws == nil {
		return nil
	}
	return &witnessView{
		raw:       ws.Raw(),
		vkeys:     ws.Value.VKeyWitnesses,
		natives:   ws.Value.NativeScripts,
		plutus:    ws.Value.PlutusScripts(),
		redeemers: ws.Value.Redeemers,
		datums:    ws.Value.PlutusData,
	}
}

func babbageTxView(body *ledger.KeepRaw[ledger.BabbageTransactionBody]) txView {
	b := body.Value
	return txView{
		raw:              body.Raw(),
		inputs:           b.Inputs,
		outputs:          b.Outputs,
		fee:              b.Fee,
		ttl:              b.TTL,
		validityStart:    b.ValidityIntervalStart,
		networkID:        b.NetworkID,
		certificates:     b.Certificates,
		withdrawals:      b.Withdrawals,
		update:           b.Update,
		mint:             b.Mint,
		collateral:       b.Collateral,
		collateralReturn: b.CollateralReturn,
		requiredSigners:  b.RequiredSigners,
		style:            babbageUpdates,
	}
}

func babbageWitnessView(ws *ledger.KeepRaw[ledger.BabbageWitnessSet]) *witnessView {
	if ws == nil {
		return nil
	}
	return &witnessView{
		raw:       ws.Raw(),
		vkeys:     ws.Value.VKeyWitnesses,
		natives:   ws.Value.NativeScripts,
		plutus:    ws.Value.PlutusScripts(),
		redeemers: ws.Value.Redeemers,
		datums:    ws.Value.PlutusData,
	}
}

func legacyBlockView(era model.Era, b *ledger.AlonzoBlock) blockView {
	view := blockView{era: era, header: b.HeaderBody(), hash: b.Hash()}
	for i := range b.TransactionBodies {
		body := &b.TransactionBodies[i]
		view.txs = append(view.txs, txBundle{
			hash:    model.ToHex(ledger.Hash256(body.Raw())),
			body:    legacyTxView(body),
			aux:     b.AuxiliaryDataSet.Find(i),
			witness: legacyWitnessView(b.Witnesses(i)),
		})
	}
	return view
}

func babbageBlockView(era model.Era, b *ledger.BabbageBlock) blockView {
	view := blockView{era: era, header: b.HeaderBody(), hash: b.Hash()}
	for i := range b.TransactionBodies {
		body := &b.TransactionBodies[i]
		view.txs = append(view.txs, txBundle{
			hash:    model.ToHex(ledger.Hash256(body.Raw())),
			body:    babbageTxView(body),
			aux:     b.AuxiliaryDataSet.Find(i),
			witness: babbageWitnessView(b.Witnesses(i)),
		})
	}
	return view
}

func auxValue(aux *ledger.KeepRaw[ledger.AuxiliaryData]) *ledger.AuxiliaryData {
	if aux == nil {
		return nil
	}
	return &aux.Value
}

func txSize(body txView, aux *ledger.KeepRaw[ledger.AuxiliaryData], witness *witnessView) uint32 {
	size := len(body.raw)
	if aux != nil {
		size += len(aux.Raw())
	} else {
		size += 2
	}
	if witness != nil {
		size += len(witness.raw)
	} else {
		size++
	}
	return uint32(size)
}

// toNetworkID maps the body's network id onto the record's numbering,
// where 0 becomes 1 and 1 becomes 2.
func toNetworkID(id *uint8) *uint32 {
	if id == nil {
		return nil
	}
	return model.Ptr(uint32(*id) + 1)
}

func (w EventWriter) toTransactionRecord(tx txBundle) (model.TransactionRecord, error) {
	body := tx.body
	rec := model.TransactionRecord{
		Hash:                  tx.hash,
		Size:                  txSize(body, tx.aux, tx.witness),
		Fee:                   body.fee,
		TTL:                   body.ttl,
		ValidityIntervalStart: body.validityStart,
		NetworkID:             toNetworkID(body.networkID),
		InputCount:            len(body.inputs),
		CollateralInputCount:  len(body.collateral),
		HasCollateralOutput:   body.collateralReturn != nil,
		MintCount:             body.mint.Len(),
		CertificateCount:      len(body.certificates),
		RequiredSignersCount:  len(body.requiredSigners),
	}

	outputs, err := w.collectOutputRecords(body.outputs)
	if err != nil {
		return model.TransactionRecord{}, err
	}
	rec.OutputCount = len(outputs)
	for _, o := range outputs {
		rec.TotalOutput += o.Amount
	}

	certs, err := collectCertificateRecords(body.certificates)
	if err != nil {
		return model.TransactionRecord{}, err
	}

	if !w.config.IncludeTransactionDetails {
		return rec, nil
	}

	rec.Inputs = collectInputRecords(body.inputs)
	rec.Outputs = outputs
	rec.CollateralInputs = collectInputRecords(body.collateral)
	if body.collateralReturn != nil {
		out, err := w.toOutputRecord(*body.collateralReturn)
		if err != nil {
			return model.TransactionRecord{}, fmt.Errorf("collateral return: %w", err)
		}
		rec.CollateralOutput = &out
	}
	rec.Certs = certs
	rec.Mint = collectMintRecords(body.mint)
	rec.Withdrawals = collectWithdrawalRecords(body.withdrawals)
	rec.RequiredSigners = collectRequiredSigners(body.requiredSigners)
	if body.update != nil {
		rec.Update = toUpdateRecord(*body.update, body.style)
	}
	if tx.aux != nil {
		if rec.Metadata, err = w.collectMetadataRecords(auxValue(tx.aux)); err != nil {
			return model.TransactionRecord{}, err
		}
	}
	if ws := tx.witness; ws != nil {
		rec.VKeyWitnesses = collectVKeyWitnessRecords(ws.vkeys)
		if rec.NativeWitnesses, err = collectNativeWitnessRecords(ws.natives); err != nil {
			return model.TransactionRecord{}, err
		}
		rec.PlutusWitnesses = collectPlutusWitnessRecords(ws.plutus)
		if rec.PlutusRedeemers, err = collectRedeemerRecords(ws.redeemers); err != nil {
			return model.TransactionRecord{}, err
		}
		if rec.PlutusData, err = collectDatumRecords(ws.datums); err != nil {
			return model.TransactionRecord{}, err
		}
	}
	return rec, nil
}

func (w EventWriter) toBlockRecord(view blockView, cbor []byte) (model.BlockRecord, error) {
	h := view.header
	rec := model.BlockRecord{
		Era:          view.era,
		BodySize:     int(h.BlockBodySize),
		IssuerVkey:   model.ToHex(h.IssuerVkey),
		VrfVkey:      model.ToHex(h.VrfVkey),
		TxCount:      len(view.txs),
		Slot:         h.Slot,
		Hash:         model.ToHex(view.hash),
		Number:       h.BlockNumber,
		PreviousHash: model.ToHex(h.PrevHash),
	}
	rec.Epoch, rec.EpochSlot = w.relativeSlot(h.Slot)
	if w.config.IncludeBlockCbor {
		rec.CborHex = model.Ptr(model.ToHex(cbor))
	}
	if w.config.IncludeBlockDetails {
		txs := make([]model.TransactionRecord, 0, len(view.txs))
		for i, tx := range view.txs {
			txRec, err := w.toTransactionRecord(tx)
			if err != nil {
				return model.BlockRecord{}, fmt.Errorf("transaction %d: %w", i, err)
			}
			txs = append(txs, txRec)
		}
		rec.Transactions = txs
	}
	return rec, nil
}
