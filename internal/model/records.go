package model

import (
	"encoding/json"
	"fmt"
)

// BlockRecord is the era-agnostic view of one block.
type BlockRecord struct {
	Era          Era                 `json:"era"`
	Epoch        *uint64             `json:"epoch"`
	EpochSlot    *uint64             `json:"epoch_slot"`
	BodySize     int                 `json:"body_size"`
	IssuerVkey   string              `json:"issuer_vkey"`
	VrfVkey      string              `json:"vrf_vkey"`
	TxCount      int                 `json:"tx_count"`
	Slot         uint64              `json:"slot"`
	Hash         string              `json:"hash"`
	Number       uint64              `json:"number"`
	PreviousHash string              `json:"previous_hash"`
	CborHex      *string             `json:"cbor_hex"`
	Transactions []TransactionRecord `json:"transactions"`
}

// TransactionRecord is the era-agnostic view of one transaction. The counts
// are always set; the slices and pointers below RequiredSignersCount form the
// detail bundle and stay nil unless details were requested.
type TransactionRecord struct {
	Hash                  string  `json:"hash"`
	Fee                   uint64  `json:"fee"`
	TTL                   *uint64 `json:"ttl"`
	ValidityIntervalStart *uint64 `json:"validity_interval_start"`
	NetworkID             *uint32 `json:"network_id"`
	InputCount            int     `json:"input_count"`
	CollateralInputCount  int     `json:"collateral_input_count"`
	HasCollateralOutput   bool    `json:"has_collateral_output"`
	OutputCount           int     `json:"output_count"`
	MintCount             int     `json:"mint_count"`
	CertificateCount      int     `json:"certificate_count"`
	TotalOutput           uint64  `json:"total_output"`
	RequiredSignersCount  int     `json:"required_signers_count"`

	RequiredSigners  []RequiredSignerRecord `json:"required_signers"`
	Update           *UpdateRecord          `json:"update"`
	Metadata         []MetadataRecord       `json:"metadata"`
	Inputs           []TxInputRecord        `json:"inputs"`
	Outputs          []TxOutputRecord       `json:"outputs"`
	CollateralInputs []TxInputRecord        `json:"collateral_inputs"`
	CollateralOutput *TxOutputRecord        `json:"collateral_output"`
	Certs            CertificateList        `json:"certs"`
	Mint             []MintRecord           `json:"mint"`
	VKeyWitnesses    []VKeyWitnessRecord    `json:"vkey_witnesses"`
	NativeWitnesses  []NativeWitnessRecord  `json:"native_witnesses"`
	PlutusWitnesses  []PlutusWitnessRecord  `json:"plutus_witnesses"`
	PlutusRedeemers  []PlutusRedeemerRecord `json:"plutus_redeemers"`
	PlutusData       []PlutusDatumRecord    `json:"plutus_data"`
	Withdrawals      []WithdrawalRecord     `json:"withdrawals"`
	Size             uint32                 `json:"size"`
}

// TxInputRecord points at a previous transaction output.
type TxInputRecord struct {
	TxID  string `json:"tx_id"`
	Index uint64 `json:"index"`
}

// TxOutputRecord is a rendered transaction output. Assets is empty, not nil,
// for coin-only values.
type TxOutputRecord struct {
	Address       string              `json:"address"`
	Amount        uint64              `json:"amount"`
	Assets        []OutputAssetRecord `json:"assets"`
	DatumHash     *string             `json:"datum_hash"`
	InlineDatum   *PlutusDatumRecord  `json:"inline_datum"`
	InlinedScript *ScriptRefRecord    `json:"inlined_script"`
}

// OutputAssetRecord is one (policy, asset name) entry of a multi-asset value.
type OutputAssetRecord struct {
	Policy     string  `json:"policy"`
	Asset      string  `json:"asset"`
	AssetASCII *string `json:"asset_ascii"`
	Amount     uint64  `json:"amount"`
}

type MintRecord struct {
	Policy   string `json:"policy"`
	Asset    string `json:"asset"`
	Quantity int64  `json:"quantity"`
}

type WithdrawalRecord struct {
	RewardAccount string `json:"reward_account"`
	Coin          uint64 `json:"coin"`
}

// RequiredSignerRecord is the hex key hash of an extra required signer.
type RequiredSignerRecord string

type VKeyWitnessRecord struct {
	VkeyHex      string `json:"vkey_hex"`
	SignatureHex string `json:"signature_hex"`
}

type NativeWitnessRecord struct {
	PolicyID   string          `json:"policy_id"`
	ScriptJSON json.RawMessage `json:"script_json"`
}

type PlutusWitnessRecord struct {
	ScriptHash string `json:"script_hash"`
	ScriptHex  string `json:"script_hex"`
}

type PlutusRedeemerRecord struct {
	Purpose      string          `json:"purpose"`
	ExUnitsMem   uint32          `json:"ex_units_mem"`
	ExUnitsSteps uint64          `json:"ex_units_steps"`
	InputIdx     uint32          `json:"input_idx"`
	PlutusData   json.RawMessage `json:"plutus_data"`
}

type PlutusDatumRecord struct {
	DatumHash  string          `json:"datum_hash"`
	PlutusData json.RawMessage `json:"plutus_data"`
}

// CIP25AssetRecord describes NFT metadata under label 721. No converter in
// this module produces it; metadata filters downstream do.
type CIP25AssetRecord struct {
	Version     string          `json:"version"`
	Policy      string          `json:"policy"`
	Asset       string          `json:"asset"`
	Name        *string         `json:"name"`
	Image       *string         `json:"image"`
	MediaType   *string         `json:"media_type"`
	Description *string         `json:"description"`
	RawJSON     json.RawMessage `json:"raw_json"`
}

// CIP15AssetRecord describes a catalyst voting registration under label 61284.
type CIP15AssetRecord struct {
	VotingKey     string          `json:"voting_key"`
	StakePub      string          `json:"stake_pub"`
	RewardAddress string          `json:"reward_address"`
	Nonce         int64           `json:"nonce"`
	RawJSON       json.RawMessage `json:"raw_json"`
}

// ScriptLanguage names the kind of a script reference.
type ScriptLanguage string

const (
	ScriptPlutusV1 ScriptLanguage = "PlutusV1"
	ScriptPlutusV2 ScriptLanguage = "PlutusV2"
	ScriptPlutusV3 ScriptLanguage = "PlutusV3"
	ScriptNative   ScriptLanguage = "NativeScript"
)

// ScriptRefRecord is a script inlined in an output. Plutus variants carry
// ScriptHash and ScriptHex; the native variant carries PolicyID and ScriptJSON.
type ScriptRefRecord struct {
	Language   ScriptLanguage
	ScriptHash string
	ScriptHex  string
	PolicyID   string
	ScriptJSON json.RawMessage
}

func (s ScriptRefRecord) MarshalJSON() ([]byte, error) {
	var body any
	switch s.Language {
	case ScriptPlutusV1, ScriptPlutusV2, ScriptPlutusV3:
		body = struct {
			ScriptHash string `json:"script_hash"`
			ScriptHex  string `json:"script_hex"`
		}{s.ScriptHash, s.ScriptHex}
	case ScriptNative:
		body = struct {
			PolicyID   string          `json:"policy_id"`
			ScriptJSON json.RawMessage `json:"script_json"`
		}{s.PolicyID, s.ScriptJSON}
	default:
		return nil, fmt.Errorf("unknown script language %q", s.Language)
	}
	return json.Marshal(map[string]any{string(s.Language): body})
}
