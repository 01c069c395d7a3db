package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EventKind tags the variant carried by an Event.
type EventKind uint8

const (
	KindBlock EventKind = iota
	KindBlockEnd
	KindTransaction
	KindTransactionEnd
	KindTxInput
	KindTxOutput
	KindOutputAsset
	KindMetadata
	KindVKeyWitness
	KindNativeWitness
	KindPlutusWitness
	KindPlutusRedeemer
	KindPlutusDatum
	KindCIP25Asset
	KindCIP15Asset
	KindMint
	KindCollateral
	KindNativeScript
	KindPlutusScript
	KindStakeRegistration
	KindStakeDeregistration
	KindStakeDelegation
	KindPoolRegistration
	KindPoolRetirement
	KindGenesisKeyDelegation
	KindMoveInstantaneousRewardsCert
	KindRegCert
	KindUnRegCert
	KindVoteDeleg
	KindStakeVoteDeleg
	KindStakeRegDeleg
	KindVoteRegDeleg
	KindStakeVoteRegDeleg
	KindAuthCommitteeHot
	KindResignCommitteeCold
	KindRegDRepCert
	KindUnRegDRepCert
	KindUpdateDRepCert
	KindRollBack

	kindCount
)

type kindName struct {
	display string
	key     string
}

var kindNames = [kindCount]kindName{
	KindBlock:                        {"Block", "block"},
	KindBlockEnd:                     {"BlockEnd", "block_end"},
	KindTransaction:                  {"Transaction", "transaction"},
	KindTransactionEnd:               {"TransactionEnd", "transaction_end"},
	KindTxInput:                      {"TxInput", "tx_input"},
	KindTxOutput:                     {"TxOutput", "tx_output"},
	KindOutputAsset:                  {"OutputAsset", "output_asset"},
	KindMetadata:                     {"Metadata", "metadata"},
	KindVKeyWitness:                  {"VKeyWitness", "v_key_witness"},
	KindNativeWitness:                {"NativeWitness", "native_witness"},
	KindPlutusWitness:                {"PlutusWitness", "plutus_witness"},
	KindPlutusRedeemer:               {"PlutusRedeemer", "plutus_redeemer"},
	KindPlutusDatum:                  {"PlutusDatum", "plutus_datum"},
	KindCIP25Asset:                   {"CIP25Asset", "cip25_asset"},
	KindCIP15Asset:                   {"CIP15Asset", "cip15_asset"},
	KindMint:                         {"Mint", "mint"},
	KindCollateral:                   {"Collateral", "collateral"},
	KindNativeScript:                 {"NativeScript", "native_script"},
	KindPlutusScript:                 {"PlutusScript", "plutus_script"},
	KindStakeRegistration:            {"StakeRegistration", "stake_registration"},
	KindStakeDeregistration:          {"StakeDeregistration", "stake_deregistration"},
	KindStakeDelegation:              {"StakeDelegation", "stake_delegation"},
	KindPoolRegistration:             {"PoolRegistration", "pool_registration"},
	KindPoolRetirement:               {"PoolRetirement", "pool_retirement"},
	KindGenesisKeyDelegation:         {"GenesisKeyDelegation", "genesis_key_delegation"},
	KindMoveInstantaneousRewardsCert: {"MoveInstantaneousRewardsCert", "move_instantaneous_rewards_cert"},
	KindRegCert:                      {"RegCert", "reg_cert"},
	KindUnRegCert:                    {"UnRegCert", "un_reg_cert"},
	KindVoteDeleg:                    {"VoteDeleg", "vote_deleg"},
	KindStakeVoteDeleg:               {"StakeVoteDeleg", "stake_vote_deleg"},
	KindStakeRegDeleg:                {"StakeRegDeleg", "stake_reg_deleg"},
	KindVoteRegDeleg:                 {"VoteRegDeleg", "vote_reg_deleg"},
	KindStakeVoteRegDeleg:            {"StakeVoteRegDeleg", "stake_vote_reg_deleg"},
	KindAuthCommitteeHot:             {"AuthCommitteeHot", "auth_committee_hot"},
	KindResignCommitteeCold:          {"ResignCommitteeCold", "resign_committee_cold"},
	KindRegDRepCert:                  {"RegDRepCert", "reg_d_rep_cert"},
	KindUnRegDRepCert:                {"UnRegDRepCert", "un_reg_d_rep_cert"},
	KindUpdateDRepCert:               {"UpdateDRepCert", "update_d_rep_cert"},
	KindRollBack:                     {"RollBack", "roll_back"},
}

// AllEventKinds lists every event variant.
func AllEventKinds() []EventKind {
	kinds := make([]EventKind, 0, kindCount)
	for k := EventKind(0); k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

func (k EventKind) String() string {
	if k < kindCount {
		return kindNames[k].display
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// Key is the snake_case name used as the variant key in JSON.
func (k EventKind) Key() string {
	if k < kindCount {
		return kindNames[k].key
	}
	return ""
}

// EventData is the payload of an Event. Exactly one variant is carried per
// event; the concrete type determines the kind.
type EventData interface {
	Kind() EventKind
}

// Event is one unit of the crawl output stream.
type Event struct {
	Context     EventContext
	Data        EventData
	Fingerprint *string
}

// MarshalJSON flattens the variant into the event object under its key.
func (e Event) MarshalJSON() ([]byte, error) {
	if e.Data == nil {
		return nil, fmt.Errorf("event without data")
	}
	ctx, err := json.Marshal(e.Context)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(e.Data)
	if err != nil {
		return nil, err
	}
	fp, err := json.Marshal(e.Fingerprint)
	if err != nil {
		return nil, err
	}
	key, err := json.Marshal(e.Data.Kind().Key())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"context":`)
	buf.Write(ctx)
	buf.WriteByte(',')
	buf.Write(key)
	buf.WriteByte(':')
	buf.Write(data)
	buf.WriteString(`,"fingerprint":`)
	buf.Write(fp)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// BlockEnd marks the end of a block walk; it carries the same record as the
// opening Block event.
type BlockEnd BlockRecord

// TransactionEnd marks the end of a transaction walk.
type TransactionEnd TransactionRecord

// CollateralRecord references an input pledged as collateral.
type CollateralRecord struct {
	TxID  string `json:"tx_id"`
	Index uint64 `json:"index"`
}

// NativeScriptRecord discloses a native script carried in auxiliary data.
type NativeScriptRecord struct {
	PolicyID string          `json:"policy_id"`
	Script   json.RawMessage `json:"script"`
}

// PlutusScriptRecord discloses a Plutus script carried in auxiliary data.
type PlutusScriptRecord struct {
	Hash string `json:"hash"`
	Data string `json:"data"`
}

// RollBackRecord reports a rollback to the given point.
type RollBackRecord struct {
	BlockSlot uint64 `json:"block_slot"`
	BlockHash string `json:"block_hash"`
}

func (BlockRecord) Kind() EventKind          { return KindBlock }
func (BlockEnd) Kind() EventKind             { return KindBlockEnd }
func (TransactionRecord) Kind() EventKind    { return KindTransaction }
func (TransactionEnd) Kind() EventKind       { return KindTransactionEnd }
func (TxInputRecord) Kind() EventKind        { return KindTxInput }
func (TxOutputRecord) Kind() EventKind       { return KindTxOutput }
func (OutputAssetRecord) Kind() EventKind    { return KindOutputAsset }
func (MetadataRecord) Kind() EventKind       { return KindMetadata }
func (VKeyWitnessRecord) Kind() EventKind    { return KindVKeyWitness }
func (NativeWitnessRecord) Kind() EventKind  { return KindNativeWitness }
func (PlutusWitnessRecord) Kind() EventKind  { return KindPlutusWitness }
func (PlutusRedeemerRecord) Kind() EventKind { return KindPlutusRedeemer }
func (PlutusDatumRecord) Kind() EventKind    { return KindPlutusDatum }
func (CIP25AssetRecord) Kind() EventKind     { return KindCIP25Asset }
func (CIP15AssetRecord) Kind() EventKind     { return KindCIP15Asset }
func (MintRecord) Kind() EventKind           { return KindMint }
func (CollateralRecord) Kind() EventKind     { return KindCollateral }
func (NativeScriptRecord) Kind() EventKind   { return KindNativeScript }
func (PlutusScriptRecord) Kind() EventKind   { return KindPlutusScript }
func (RollBackRecord) Kind() EventKind       { return KindRollBack }
