package mapper

import (
	"fmt"
	"strings"

	"blockScope/internal/ledger"
	"blockScope/internal/model"
)

// The collectors below preserve input order and never return nil slices.
// Fallible ones return either every record or an error.

func collectInputRecords(inputs []ledger.TransactionInput) []model.TxInputRecord {
	out := make([]model.TxInputRecord, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, toInputRecord(in))
	}
	return out
}

func (w EventWriter) collectOutputRecords(outputs []ledger.BabbageTransactionOutput) ([]model.TxOutputRecord, error) {
	out := make([]model.TxOutputRecord, 0, len(outputs))
	for i, o := range outputs {
		rec, err := w.toOutputRecord(o)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func collectAssetRecords(v ledger.Value) []model.OutputAssetRecord {
	out := make([]model.OutputAssetRecord, 0, v.Assets.Len())
	for _, policy := range v.Assets {
		for _, asset := range policy.Assets {
			out = append(out, toAssetRecord(policy.Policy, asset.Name, asset.Quantity))
		}
	}
	return out
}

func collectMintRecords(mint ledger.Multiasset[int64]) []model.MintRecord {
	out := make([]model.MintRecord, 0, mint.Len())
	for _, policy := range mint {
		for _, asset := range policy.Assets {
			out = append(out, toMintRecord(policy.Policy, asset.Name, asset.Quantity))
		}
	}
	return out
}

func collectCertificateRecords(certs []ledger.Certificate) (model.CertificateList, error) {
	out := make(model.CertificateList, 0, len(certs))
	for i, c := range certs {
		rec, err := toCertificateRecord(c)
		if err != nil {
			return nil, fmt.Errorf("certificate %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func collectWithdrawalRecords(withdrawals ledger.Withdrawals) []model.WithdrawalRecord {
	out := make([]model.WithdrawalRecord, 0, len(withdrawals))
	for _, wd := range withdrawals {
		out = append(out, model.WithdrawalRecord{
			RewardAccount: strings.TrimPrefix(model.ToHex(wd.RewardAccount), "e1"),
			Coin:          wd.Coin,
		})
	}
	return out
}

func (w EventWriter) collectMetadataRecords(aux *ledger.AuxiliaryData) ([]model.MetadataRecord, error) {
	if aux == nil {
		return []model.MetadataRecord{}, nil
	}
	out := make([]model.MetadataRecord, 0, len(aux.Metadata))
	for _, entry := range aux.Metadata {
		rec, err := w.toMetadataRecord(entry)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func collectVKeyWitnessRecords(vkeys []ledger.VKeyWitness) []model.VKeyWitnessRecord {
	out := make([]model.VKeyWitnessRecord, 0, len(vkeys))
	for _, v := range vkeys {
		out = append(out, toVKeyWitnessRecord(v))
	}
	return out
}

func collectNativeWitnessRecords(scripts []ledger.NativeScript) ([]model.NativeWitnessRecord, error) {
	out := make([]model.NativeWitnessRecord, 0, len(scripts))
	for _, s := range scripts {
		rec, err := toNativeWitnessRecord(s)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func collectPlutusWitnessRecords(scripts []ledger.PlutusScript) []model.PlutusWitnessRecord {
	out := make([]model.PlutusWitnessRecord, 0, len(scripts))
	for _, s := range scripts {
		out = append(out, toPlutusWitnessRecord(s))
	}
	return out
}

func collectRedeemerRecords(redeemers ledger.Redeemers) ([]model.PlutusRedeemerRecord, error) {
	out := make([]model.PlutusRedeemerRecord, 0, len(redeemers))
	for _, r := range redeemers {
		rec, err := toRedeemerRecord(r)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func collectDatumRecords(datums []ledger.PlutusData) ([]model.PlutusDatumRecord, error) {
	out := make([]model.PlutusDatumRecord, 0, len(datums))
	for _, d := range datums {
		rec, err := toDatumRecord(d)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func collectRequiredSigners(signers [][]byte) []model.RequiredSignerRecord {
	out := make([]model.RequiredSignerRecord, 0, len(signers))
	for _, s := range signers {
		out = append(out, model.RequiredSignerRecord(model.ToHex(s)))
	}
	return out
}
