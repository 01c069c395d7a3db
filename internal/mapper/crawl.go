package mapper

import (
	"fmt"

	"blockScope/internal/ledger"
	"blockScope/internal/model"
)

// CrawlFromCBOR decodes a [era_tag, block] envelope and crawls the block.
func (w EventWriter) CrawlFromCBOR(raw []byte) error {
	era, block, err := ledger.DecodeBlock(raw)
	if err != nil {
		return err
	}
	return w.CrawlBlock(era, block, raw)
}

// CrawlBlock walks an already decoded block and emits its events in order.
// raw is the original encoding of the block, used for the optional cbor hex.
// The walk stops at the first error; events emitted before it stay emitted.
func (w EventWriter) CrawlBlock(era model.Era, block ledger.Block, raw []byte) error {
	var view blockView
	switch era {
	case model.EraShelley, model.EraAllegra, model.EraMary, model.EraAlonzo:
		b, ok := block.(*ledger.AlonzoBlock)
		if !ok {
			return fmt.Errorf("%w: %s block of type %T", ledger.ErrMalformed, era, block)
		}
		view = legacyBlockView(era, b)
	case model.EraBabbage, model.EraConway:
		b, ok := block.(*ledger.BabbageBlock)
		if !ok {
			return fmt.Errorf("%w: %s block of type %T", ledger.ErrMalformed, era, block)
		}
		view = babbageBlockView(era, b)
	default:
		return fmt.Errorf("%w: %s", ledger.ErrUnsupportedEra, era)
	}
	return w.crawlBlock(view, raw)
}

func (w EventWriter) crawlBlock(view blockView, raw []byte) error {
	h := view.header
	child := w.ChildWriter(model.BlockContext(model.ToHex(view.hash), h.BlockNumber, h.Slot, w.computeTimestamp(h.Slot)))

	rec, err := child.toBlockRecord(view, raw)
	if err != nil {
		return err
	}
	if err := child.Append(rec); err != nil {
		return err
	}

	for i, tx := range view.txs {
		txWriter := child.ChildWriter(model.TxContext(i, tx.hash))
		if err := txWriter.crawlTransaction(tx); err != nil {
			return fmt.Errorf("transaction %d: %w", i, err)
		}
	}

	if w.config.IncludeBlockEndEvents {
		return child.Append(model.BlockEnd(rec))
	}
	return nil
}

func (w EventWriter) crawlTransaction(tx txBundle) error {
	rec, err := w.toTransactionRecord(tx)
	if err != nil {
		return err
	}
	if err := w.Append(rec); err != nil {
		return err
	}

	body := tx.body
	for i, in := range body.inputs {
		if err := w.ChildWriter(model.InputContext(i)).Append(toInputRecord(in)); err != nil {
			return err
		}
	}

	for i, out := range body.outputs {
		if err := w.ChildWriter(model.OutputContext(i)).crawlOutput(out); err != nil {
			return fmt.Errorf("output %d: %w", i, err)
		}
	}

	for i, c := range body.certificates {
		cert, err := toCertificateRecord(c)
		if err != nil {
			return fmt.Errorf("certificate %d: %w", i, err)
		}
		if err := w.ChildWriter(model.CertificateContext(i)).Append(cert); err != nil {
			return err
		}
	}

	for _, c := range body.collateral {
		if err := w.Append(model.CollateralRecord{TxID: model.ToHex(c.TxID), Index: c.Index}); err != nil {
			return err
		}
	}

	for _, m := range collectMintRecords(body.mint) {
		if err := w.Append(m); err != nil {
			return err
		}
	}

	if tx.aux != nil {
		if err := w.crawlAuxData(&tx.aux.Value); err != nil {
			return err
		}
	}

	if tx.witness != nil {
		if err := w.crawlWitnessSet(tx.witness); err != nil {
			return err
		}
	}

	if w.config.IncludeTransactionEndEvents {
		return w.Append(model.TransactionEnd(rec))
	}
	return nil
}

// crawlOutput emits the output, then its inline datum and assets under the
// output address.
func (w EventWriter) crawlOutput(out ledger.BabbageTransactionOutput) error {
	rec, err := w.toOutputRecord(out)
	if err != nil {
		return err
	}
	if err := w.Append(rec); err != nil {
		return err
	}

	child := w.ChildWriter(model.OutputAddressContext(rec.Address))
	if rec.InlineDatum != nil {
		if err := child.Append(*rec.InlineDatum); err != nil {
			return err
		}
	}
	for _, asset := range rec.Assets {
		if err := child.Append(asset); err != nil {
			return err
		}
	}
	return nil
}

func (w EventWriter) crawlAuxData(aux *ledger.AuxiliaryData) error {
	records, err := w.collectMetadataRecords(aux)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.Append(rec); err != nil {
			return err
		}
	}
	for _, s := range aux.NativeScripts {
		rec, err := toAuxNativeScriptEvent(s)
		if err != nil {
			return err
		}
		if err := w.Append(rec); err != nil {
			return err
		}
	}
	for _, s := range aux.PlutusScripts() {
		if err := w.Append(toAuxPlutusScriptEvent(s)); err != nil {
			return err
		}
	}
	return nil
}

func (w EventWriter) crawlWitnessSet(ws *witnessView) error {
	var events []model.EventData
	for _, v := range ws.vkeys {
		events = append(events, toVKeyWitnessRecord(v))
	}
	for _, s := range ws.natives {
		rec, err := toNativeWitnessRecord(s)
		if err != nil {
			return err
		}
		events = append(events, rec)
	}
	for _, s := range ws.plutus {
		events = append(events, toPlutusWitnessRecord(s))
	}
	for _, r := range ws.redeemers {
		rec, err := toRedeemerRecord(r)
		if err != nil {
			return err
		}
		events = append(events, rec)
	}
	for _, d := range ws.datums {
		rec, err := toDatumRecord(d)
		if err != nil {
			return err
		}
		events = append(events, rec)
	}
	for _, ev := range events {
		if err := w.Append(ev); err != nil {
			return err
		}
	}
	return nil
}
