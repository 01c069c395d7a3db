package mapper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"unicode/utf8"

	"go.uber.org/zap"

	"blockScope/internal/ledger"
	"blockScope/internal/model"
)

func toStakeCredential(c ledger.Credential) model.StakeCredential {
	if c.IsScript() {
		return model.ScriptHashCredential(model.ToHex(c.Hash))
	}
	return model.KeyHashCredential(model.ToHex(c.Hash))
}

func toDRep(d ledger.DRep) model.DRep {
	switch d.Kind {
	case ledger.DRepKeyHash:
		return model.DRep{Kind: model.DRepKeyHash, Hash: model.ToHex(d.Hash)}
	case ledger.DRepScriptHash:
		return model.DRep{Kind: model.DRepScriptHash, Hash: model.ToHex(d.Hash)}
	case ledger.DRepAbstain:
		return model.DRep{Kind: model.DRepAbstain}
	}
	return model.DRep{Kind: model.DRepNoConfidence}
}

func toAnchorRecord(a *ledger.Anchor) *model.AnchorRecord {
	if a == nil {
		return nil
	}
	return &model.AnchorRecord{URL: a.URL, DataHash: model.ToHex(a.DataHash)}
}

func relayToString(r ledger.Relay) string {
	switch r.Kind {
	case ledger.RelaySingleHostAddr:
		var ip string
		switch {
		case len(r.IPv4) > 0:
			ip = net.IP(r.IPv4).String()
		case len(r.IPv6) > 0:
			ip = net.IP(r.IPv6).String()
		}
		if r.Port == nil {
			return ip
		}
		return net.JoinHostPort(ip, strconv.FormatUint(uint64(*r.Port), 10))
	case ledger.RelaySingleHostName:
		if r.Port == nil {
			return r.DNS
		}
		return r.DNS + ":" + strconv.FormatUint(uint64(*r.Port), 10)
	}
	return r.DNS
}

// metadatumKey renders a metadatum used as a JSON object key.
func (w EventWriter) metadatumKey(m ledger.Metadatum) string {
	switch m.Kind {
	case ledger.MetaInt:
		return m.Int.String()
	case ledger.MetaBytes:
		return model.ToHex(m.Bytes)
	case ledger.MetaText:
		return m.Text
	}
	w.utils.Logger.Warn("unexpected metadatum type for label",
		zap.Uint8("kind", uint8(m.Kind)),
		zap.Any("context", w.context),
	)
	return ""
}

// metadatumJSON renders a metadatum as JSON. Map entries keep their
// encoding order and every rendered key appears once.
func (w EventWriter) metadatumJSON(m ledger.Metadatum) (json.RawMessage, error) {
	switch m.Kind {
	case ledger.MetaInt:
		return json.RawMessage(m.Int.String()), nil
	case ledger.MetaBytes:
		return json.Marshal(model.ToHex(m.Bytes))
	case ledger.MetaText:
		return json.Marshal(m.Text)
	case ledger.MetaList:
		items := make([]json.RawMessage, 0, len(m.List))
		for _, item := range m.List {
			b, err := w.metadatumJSON(item)
			if err != nil {
				return nil, err
			}
			items = append(items, b)
		}
		return json.Marshal(items)
	case ledger.MetaMap:
		// Keys rendering to the same text collapse into one member: the last
		// value wins, at the position of the first occurrence.
		keys := make([]string, 0, len(m.Map))
		values := make(map[string]json.RawMessage, len(m.Map))
		for _, pair := range m.Map {
			key := w.metadatumKey(pair.Key)
			value, err := w.metadatumJSON(pair.Value)
			if err != nil {
				return nil, err
			}
			if _, seen := values[key]; !seen {
				keys = append(keys, key)
			}
			values[key] = value
		}

		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, key := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			name, err := json.Marshal(key)
			if err != nil {
				return nil, err
			}
			buf.Write(name)
			buf.WriteByte(':')
			buf.Write(values[key])
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unknown metadatum kind %d", m.Kind)
}

func (w EventWriter) toMetadataRecord(entry ledger.MetadataEntry) (model.MetadataRecord, error) {
	rec := model.MetadataRecord{Label: strconv.FormatUint(entry.Label, 10)}
	v := entry.Value
	switch v.Kind {
	case ledger.MetaInt:
		rec.Content = model.IntRendition(v.Int)
	case ledger.MetaBytes:
		rec.Content = model.BytesRendition(v.Bytes)
	case ledger.MetaText:
		rec.Content = model.TextRendition(v.Text)
	case ledger.MetaList, ledger.MetaMap:
		doc, err := w.metadatumJSON(v)
		if err != nil {
			return model.MetadataRecord{}, fmt.Errorf("metadata label %d: %w", entry.Label, err)
		}
		if v.Kind == ledger.MetaList {
			rec.Content = model.ArrayRendition(doc)
		} else {
			rec.Content = model.MapRendition(doc)
		}
	default:
		return model.MetadataRecord{}, fmt.Errorf("metadata label %d: unknown kind %d", entry.Label, v.Kind)
	}
	return rec, nil
}

func toInputRecord(in ledger.TransactionInput) model.TxInputRecord {
	return model.TxInputRecord{TxID: model.ToHex(in.TxID), Index: in.Index}
}

func toAssetRecord(policy, name []byte, amount uint64) model.OutputAssetRecord {
	rec := model.OutputAssetRecord{
		Policy: model.ToHex(policy),
		Asset:  model.ToHex(name),
		Amount: amount,
	}
	if utf8.Valid(name) {
		rec.AssetASCII = model.Ptr(string(name))
	}
	return rec
}

func toMintRecord(policy, name []byte, quantity int64) model.MintRecord {
	return model.MintRecord{Policy: model.ToHex(policy), Asset: model.ToHex(name), Quantity: quantity}
}

func toDatumRecord(d ledger.PlutusData) (model.PlutusDatumRecord, error) {
	doc, err := json.Marshal(d)
	if err != nil {
		return model.PlutusDatumRecord{}, fmt.Errorf("render plutus datum: %w", err)
	}
	return model.PlutusDatumRecord{DatumHash: model.ToHex(d.Hash()), PlutusData: doc}, nil
}

func toRedeemerRecord(r ledger.Redeemer) (model.PlutusRedeemerRecord, error) {
	doc, err := json.Marshal(r.Data)
	if err != nil {
		return model.PlutusRedeemerRecord{}, fmt.Errorf("render redeemer data: %w", err)
	}
	return model.PlutusRedeemerRecord{
		Purpose:      r.Tag.String(),
		ExUnitsMem:   r.ExUnits.Mem,
		ExUnitsSteps: r.ExUnits.Steps,
		InputIdx:     r.Index,
		PlutusData:   doc,
	}, nil
}

func toPlutusWitnessRecord(s ledger.PlutusScript) model.PlutusWitnessRecord {
	return model.PlutusWitnessRecord{ScriptHash: model.ToHex(s.Hash()), ScriptHex: model.ToHex(s.Code)}
}

func toNativeWitnessRecord(s ledger.NativeScript) (model.NativeWitnessRecord, error) {
	doc, err := json.Marshal(s)
	if err != nil {
		return model.NativeWitnessRecord{}, fmt.Errorf("render native script: %w", err)
	}
	return model.NativeWitnessRecord{PolicyID: model.ToHex(s.Hash()), ScriptJSON: doc}, nil
}

func toVKeyWitnessRecord(v ledger.VKeyWitness) model.VKeyWitnessRecord {
	return model.VKeyWitnessRecord{VkeyHex: model.ToHex(v.Vkey), SignatureHex: model.ToHex(v.Signature)}
}

func toAuxNativeScriptEvent(s ledger.NativeScript) (model.NativeScriptRecord, error) {
	doc, err := json.Marshal(s)
	if err != nil {
		return model.NativeScriptRecord{}, fmt.Errorf("render native script: %w", err)
	}
	return model.NativeScriptRecord{PolicyID: model.ToHex(s.Hash()), Script: doc}, nil
}

func toAuxPlutusScriptEvent(s ledger.PlutusScript) model.PlutusScriptRecord {
	return model.PlutusScriptRecord{Hash: model.ToHex(s.Hash()), Data: model.ToHex(s.Code)}
}

var plutusLanguages = map[uint8]model.ScriptLanguage{
	1: model.ScriptPlutusV1,
	2: model.ScriptPlutusV2,
	3: model.ScriptPlutusV3,
}

func toScriptRefRecord(ref ledger.ScriptRef) (*model.ScriptRefRecord, error) {
	switch {
	case ref.Native != nil:
		doc, err := json.Marshal(ref.Native)
		if err != nil {
			return nil, fmt.Errorf("render script ref: %w", err)
		}
		return &model.ScriptRefRecord{
			Language:   model.ScriptNative,
			PolicyID:   model.ToHex(ref.Native.Hash()),
			ScriptJSON: doc,
		}, nil
	case ref.Plutus != nil:
		lang, ok := plutusLanguages[ref.Plutus.Version]
		if !ok {
			return nil, fmt.Errorf("%w: plutus version %d", ledger.ErrMalformed, ref.Plutus.Version)
		}
		return &model.ScriptRefRecord{
			Language:   lang,
			ScriptHash: model.ToHex(ref.Plutus.Hash()),
			ScriptHex:  model.ToHex(ref.Plutus.Code),
		}, nil
	}
	return nil, fmt.Errorf("%w: empty script ref", ledger.ErrMalformed)
}

// toOutputRecord converts either output form. Legacy outputs never carry an
// inline datum or script.
func (w EventWriter) toOutputRecord(out ledger.BabbageTransactionOutput) (model.TxOutputRecord, error) {
	addr, err := w.renderAddress(out.Address())
	if err != nil {
		return model.TxOutputRecord{}, fmt.Errorf("output address: %w", err)
	}
	if legacy := out.Legacy; legacy != nil {
		rec := model.TxOutputRecord{
			Address: addr,
			Amount:  legacy.Amount.Coin,
			Assets:  collectAssetRecords(legacy.Amount),
		}
		if legacy.DatumHash != nil {
			rec.DatumHash = model.Ptr(model.ToHex(legacy.DatumHash))
		}
		return rec, nil
	}

	post := out.PostAlonzo
	rec := model.TxOutputRecord{
		Address: addr,
		Amount:  post.Amount.Coin,
		Assets:  collectAssetRecords(post.Amount),
	}
	if opt := post.DatumOption; opt != nil {
		rec.DatumHash = model.Ptr(model.ToHex(opt.Hash))
		if opt.Inline != nil {
			datum, err := toDatumRecord(*opt.Inline)
			if err != nil {
				return model.TxOutputRecord{}, err
			}
			rec.InlineDatum = &datum
		}
	}
	if post.ScriptRef != nil {
		script, err := toScriptRefRecord(*post.ScriptRef)
		if err != nil {
			return model.TxOutputRecord{}, err
		}
		rec.InlinedScript = script
	}
	return rec, nil
}

func toCertificateRecord(c ledger.Certificate) (model.CertificateRecord, error) {
	cred := toStakeCredential(c.Credential)
	switch c.Kind {
	case ledger.CertStakeRegistration:
		return model.StakeRegistrationRecord{Credential: cred}, nil
	case ledger.CertStakeDeregistration:
		return model.StakeDeregistrationRecord{Credential: cred}, nil
	case ledger.CertStakeDelegation:
		return model.StakeDelegationRecord{Credential: cred, PoolHash: model.ToHex(c.PoolKeyHash)}, nil
	case ledger.CertPoolRegistration:
		return toPoolRegistrationRecord(c.Pool), nil
	case ledger.CertPoolRetirement:
		return model.PoolRetirementRecord{Pool: model.ToHex(c.PoolKeyHash), Epoch: c.Epoch}, nil
	case ledger.CertGenesisKeyDelegation:
		return model.GenesisKeyDelegationRecord{
			GenesisHash:         model.ToHex(c.GenesisHash),
			GenesisDelegateHash: model.ToHex(c.GenesisDelegate),
			VrfKeyHash:          model.ToHex(c.VrfKeyHash),
		}, nil
	case ledger.CertMoveInstantaneousRewards:
		return toMIRRecord(c.Reward), nil
	case ledger.CertReg:
		return model.RegCertRecord{Credential: cred, Coin: c.Coin}, nil
	case ledger.CertUnReg:
		return model.UnRegCertRecord{Credential: cred, Coin: c.Coin}, nil
	case ledger.CertVoteDeleg:
		return model.VoteDelegCertRecord{Credential: cred, DRep: toDRep(c.DRep)}, nil
	case ledger.CertStakeVoteDeleg:
		return model.StakeVoteDelegCertRecord{
			Credential:  cred,
			PoolKeyhash: model.ToHex(c.PoolKeyHash),
			DRep:        toDRep(c.DRep),
		}, nil
	case ledger.CertStakeRegDeleg:
		return model.StakeRegDelegCertRecord{
			Credential:  cred,
			PoolKeyhash: model.ToHex(c.PoolKeyHash),
			Coin:        c.Coin,
		}, nil
	case ledger.CertVoteRegDeleg:
		return model.VoteRegDelegCertRecord{Credential: cred, DRep: toDRep(c.DRep), Coin: c.Coin}, nil
	case ledger.CertStakeVoteRegDeleg:
		return model.StakeVoteRegDelegCertRecord{
			Credential:  cred,
			PoolKeyhash: model.ToHex(c.PoolKeyHash),
			DRep:        toDRep(c.DRep),
			Coin:        c.Coin,
		}, nil
	case ledger.CertAuthCommitteeHot:
		return model.AuthCommitteeHotCertRecord{
			CommitteeColdCredential: cred,
			CommitteeHotCredential:  toStakeCredential(c.HotCredential),
		}, nil
	case ledger.CertResignCommitteeCold:
		return model.ResignCommitteeColdCertRecord{CommitteeColdCredential: cred, Anchor: toAnchorRecord(c.Anchor)}, nil
	case ledger.CertRegDRep:
		return model.RegDRepCertRecord{Credential: cred, Coin: c.Coin, Anchor: toAnchorRecord(c.Anchor)}, nil
	case ledger.CertUnRegDRep:
		return model.UnRegDRepCertRecord{Credential: cred, Coin: c.Coin}, nil
	case ledger.CertUpdateDRep:
		return model.UpdateDRepCertRecord{Credential: cred, Anchor: toAnchorRecord(c.Anchor)}, nil
	}
	return nil, fmt.Errorf("%w: certificate kind %d", ledger.ErrMalformed, c.Kind)
}

func toPoolRegistrationRecord(p ledger.PoolParams) model.PoolRegistrationRecord {
	rec := model.PoolRegistrationRecord{
		Operator:      model.ToHex(p.Operator),
		VrfKeyhash:    model.ToHex(p.VrfKeyHash),
		Pledge:        p.Pledge,
		Cost:          p.Cost,
		Margin:        model.RationalNumberRecord{Numerator: p.Margin.Numerator, Denominator: p.Margin.Denominator},
		RewardAccount: model.ToHex(p.RewardAccount),
		PoolOwners:    make([]string, 0, len(p.Owners)),
		Relays:        make([]string, 0, len(p.Relays)),
	}
	for _, owner := range p.Owners {
		rec.PoolOwners = append(rec.PoolOwners, model.ToHex(owner))
	}
	for _, relay := range p.Relays {
		rec.Relays = append(rec.Relays, relayToString(relay))
	}
	if p.Metadata != nil {
		rec.PoolMetadata = model.Ptr(p.Metadata.URL)
		rec.PoolMetadataHash = model.Ptr(model.ToHex(p.Metadata.Hash))
	}
	return rec
}

func toMIRRecord(m ledger.MoveInstantaneousReward) model.MoveInstantaneousRewardsCertRecord {
	rec := model.MoveInstantaneousRewardsCertRecord{
		FromReserves: m.Source == ledger.RewardSourceReserves,
		FromTreasury: m.Source == ledger.RewardSourceTreasury,
	}
	if m.OtherPot != nil {
		rec.ToOtherPot = model.Ptr(*m.OtherPot)
		return rec
	}
	rec.ToStakeCredentials = make([]model.StakeCredentialAmount, 0, len(m.Targets))
	for _, t := range m.Targets {
		rec.ToStakeCredentials = append(rec.ToStakeCredentials, model.StakeCredentialAmount{
			Credential: toStakeCredential(t.Credential),
			Amount:     t.Amount,
		})
	}
	return rec
}

// updateStyle selects which protocol parameters an update record carries.
type updateStyle uint8

const (
	legacyUpdates updateStyle = iota
	babbageUpdates
)

func toUnitInterval(r *ledger.Rational) *model.UnitIntervalRecord {
	if r == nil {
		return nil
	}
	return &model.UnitIntervalRecord{r.Numerator, r.Denominator}
}

func toExUnitsRecord(u *ledger.ExUnits) *model.ExUnitsRecord {
	if u == nil {
		return nil
	}
	return &model.ExUnitsRecord{Mem: u.Mem, Steps: u.Steps}
}

func toNonceRecord(n *ledger.Nonce) *model.NonceRecord {
	if n == nil {
		return nil
	}
	if n.Neutral {
		return &model.NonceRecord{Variant: model.NeutralNonce}
	}
	return &model.NonceRecord{Variant: model.HashedNonce, Hash: model.Ptr(model.ToHex(n.Hash))}
}

func toCostModelsRecord(models map[uint64][]int64, style updateStyle) model.CostModelsRecord {
	if models == nil {
		return nil
	}
	rec := model.CostModelsRecord{}
	if v1, ok := models[0]; ok {
		rec[model.PlutusV1] = v1
	}
	if v2, ok := models[1]; ok && style == babbageUpdates {
		rec[model.PlutusV2] = v2
	}
	return rec
}

func toPositiveInterval(r ledger.Rational) model.PositiveIntervalRecord {
	return model.PositiveIntervalRecord{Numerator: r.Numerator, Denominator: r.Denominator}
}

func toExecutionCosts(p *ledger.ExUnitPrices) *model.ExUnitPricesRecord {
	if p == nil {
		return nil
	}
	return &model.ExUnitPricesRecord{
		MemPrice:  toPositiveInterval(p.MemPrice),
		StepPrice: toPositiveInterval(p.StepPrice),
	}
}

func toProtocolUpdateRecord(u ledger.ProtocolParamUpdate, style updateStyle) model.ProtocolParamUpdateRecord {
	rec := model.ProtocolParamUpdateRecord{
		MinfeeA:                      u.MinfeeA,
		MinfeeB:                      u.MinfeeB,
		MaxBlockBodySize:             u.MaxBlockBodySize,
		MaxTransactionSize:           u.MaxTransactionSize,
		MaxBlockHeaderSize:           u.MaxBlockHeaderSize,
		KeyDeposit:                   u.KeyDeposit,
		PoolDeposit:                  u.PoolDeposit,
		MaximumEpoch:                 u.MaximumEpoch,
		DesiredNumberOfStakePools:    u.DesiredNumberOfStakePools,
		ExpansionRate:                toUnitInterval(u.ExpansionRate),
		TreasuryGrowthRate:           toUnitInterval(u.TreasuryGrowthRate),
		ProtocolVersion:              u.ProtocolVersion,
		MinPoolCost:                  u.MinPoolCost,
		AdaPerUtxoByte:               u.AdaPerUtxoByte,
		CostModelsForScriptLanguages: toCostModelsRecord(u.CostModels, style),
		ExecutionCosts:               toExecutionCosts(u.ExecutionCosts),
		MaxTxExUnits:                 toExUnitsRecord(u.MaxTxExUnits),
		MaxBlockExUnits:              toExUnitsRecord(u.MaxBlockExUnits),
		MaxValueSize:                 u.MaxValueSize,
		CollateralPercentage:         u.CollateralPercentage,
		MaxCollateralInputs:          u.MaxCollateralInputs,
	}
	if r := u.PoolPledgeInfluence; r != nil {
		rec.PoolPledgeInfluence = &model.RationalNumberRecord{Numerator: r.Numerator, Denominator: r.Denominator}
	}
	if style == legacyUpdates {
		rec.DecentralizationConstant = toUnitInterval(u.DecentralizationConstant)
		rec.ExtraEntropy = toNonceRecord(u.ExtraEntropy)
	}
	return rec
}

func toUpdateRecord(u ledger.Update, style updateStyle) *model.UpdateRecord {
	rec := &model.UpdateRecord{
		ProposedProtocolParameterUpdates: make(map[string]model.ProtocolParamUpdateRecord, len(u.Proposals)),
		Epoch:                            u.Epoch,
	}
	for _, p := range u.Proposals {
		rec.ProposedProtocolParameterUpdates[model.ToHex(p.GenesisHash)] = toProtocolUpdateRecord(p.Update, style)
	}
	return rec
}
