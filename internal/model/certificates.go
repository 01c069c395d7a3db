package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// StakeCredentialKind tells key-hash credentials from script-hash ones.
type StakeCredentialKind uint8

const (
	AddrKeyhash StakeCredentialKind = iota
	Scripthash
)

func (k StakeCredentialKind) String() string {
	switch k {
	case AddrKeyhash:
		return "AddrKeyhash"
	case Scripthash:
		return "Scripthash"
	}
	return fmt.Sprintf("StakeCredentialKind(%d)", uint8(k))
}

// StakeCredential is a hex hash tagged with its credential kind.
type StakeCredential struct {
	Kind StakeCredentialKind
	Hash string
}

func KeyHashCredential(hash string) StakeCredential {
	return StakeCredential{Kind: AddrKeyhash, Hash: hash}
}

func ScriptHashCredential(hash string) StakeCredential {
	return StakeCredential{Kind: Scripthash, Hash: hash}
}

func (c StakeCredential) MarshalJSON() ([]byte, error) {
	if c.Kind != AddrKeyhash && c.Kind != Scripthash {
		return nil, fmt.Errorf("invalid stake credential kind %d", c.Kind)
	}
	return json.Marshal(map[string]string{c.Kind.String(): c.Hash})
}

func (c *StakeCredential) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if len(m) != 1 {
		return fmt.Errorf("stake credential: expected one variant, got %d", len(m))
	}
	for k, v := range m {
		switch k {
		case "AddrKeyhash":
			*c = KeyHashCredential(v)
		case "Scripthash":
			*c = ScriptHashCredential(v)
		default:
			return fmt.Errorf("stake credential: unknown variant %q", k)
		}
	}
	return nil
}

// DRepKind enumerates delegate-representative references.
type DRepKind uint8

const (
	DRepKeyHash DRepKind = iota
	DRepScriptHash
	DRepAbstain
	DRepNoConfidence
)

var drepNames = [...]string{
	DRepKeyHash:      "KeyHash",
	DRepScriptHash:   "ScriptHash",
	DRepAbstain:      "Abstain",
	DRepNoConfidence: "NoConfidence",
}

func (k DRepKind) String() string {
	if int(k) < len(drepNames) {
		return drepNames[k]
	}
	return fmt.Sprintf("DRepKind(%d)", uint8(k))
}

// DRep is a delegate representative. Hash is set only for the key-hash and
// script-hash kinds.
type DRep struct {
	Kind DRepKind
	Hash string
}

func (d DRep) MarshalJSON() ([]byte, error) {
	switch d.Kind {
	case DRepKeyHash, DRepScriptHash:
		return json.Marshal(map[string]string{d.Kind.String(): d.Hash})
	case DRepAbstain, DRepNoConfidence:
		return json.Marshal(d.Kind.String())
	}
	return nil, fmt.Errorf("invalid drep kind %d", d.Kind)
}

type AnchorRecord struct {
	URL      string `json:"url"`
	DataHash string `json:"data_hash"`
}

// CertificateRecord is implemented by every certificate kind. Each kind is
// also emitted on its own as an event.
type CertificateRecord interface {
	EventData
	certificate()
}

// CertificateList renders each certificate as {"Kind": record}.
type CertificateList []CertificateRecord

func (l CertificateList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, cert := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := json.Marshal(map[string]CertificateRecord{cert.Kind().String(): cert})
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

type StakeRegistrationRecord struct {
	Credential StakeCredential `json:"credential"`
}

type StakeDeregistrationRecord struct {
	Credential StakeCredential `json:"credential"`
}

type StakeDelegationRecord struct {
	Credential StakeCredential `json:"credential"`
	PoolHash   string          `json:"pool_hash"`
}

type PoolRegistrationRecord struct {
	Operator         string               `json:"operator"`
	VrfKeyhash       string               `json:"vrf_keyhash"`
	Pledge           uint64               `json:"pledge"`
	Cost             uint64               `json:"cost"`
	Margin           RationalNumberRecord `json:"margin"`
	RewardAccount    string               `json:"reward_account"`
	PoolOwners       []string             `json:"pool_owners"`
	Relays           []string             `json:"relays"`
	PoolMetadata     *string              `json:"pool_metadata"`
	PoolMetadataHash *string              `json:"pool_metadata_hash"`
}

type PoolRetirementRecord struct {
	Pool  string `json:"pool"`
	Epoch uint64 `json:"epoch"`
}

type GenesisKeyDelegationRecord struct {
	GenesisHash         string `json:"genesis_hash"`
	GenesisDelegateHash string `json:"genesis_delegate_hash"`
	VrfKeyHash          string `json:"vrf_key_hash"`
}

// StakeCredentialAmount is one reward target of an instantaneous reward
// movement; it renders as a [credential, amount] pair.
type StakeCredentialAmount struct {
	Credential StakeCredential
	Amount     int64
}

func (a StakeCredentialAmount) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{a.Credential, a.Amount})
}

type MoveInstantaneousRewardsCertRecord struct {
	FromReserves       bool                    `json:"from_reserves"`
	FromTreasury       bool                    `json:"from_treasury"`
	ToStakeCredentials []StakeCredentialAmount `json:"to_stake_credentials"`
	ToOtherPot         *uint64                 `json:"to_other_pot"`
}

type RegCertRecord struct {
	Credential StakeCredential `json:"credential"`
	Coin       uint64          `json:"coin"`
}

type UnRegCertRecord struct {
	Credential StakeCredential `json:"credential"`
	Coin       uint64          `json:"coin"`
}

type VoteDelegCertRecord struct {
	Credential StakeCredential `json:"credential"`
	DRep       DRep            `json:"drep"`
}

type StakeVoteDelegCertRecord struct {
	Credential  StakeCredential `json:"credential"`
	PoolKeyhash string          `json:"pool_keyhash"`
	DRep        DRep            `json:"drep"`
}

type StakeRegDelegCertRecord struct {
	Credential  StakeCredential `json:"credential"`
	PoolKeyhash string          `json:"pool_keyhash"`
	Coin        uint64          `json:"coin"`
}

type VoteRegDelegCertRecord struct {
	Credential StakeCredential `json:"credential"`
	DRep       DRep            `json:"drep"`
	Coin       uint64          `json:"coin"`
}

type StakeVoteRegDelegCertRecord struct {
	Credential  StakeCredential `json:"credential"`
	PoolKeyhash string          `json:"pool_keyhash"`
	DRep        DRep            `json:"drep"`
	Coin        uint64          `json:"coin"`
}

type AuthCommitteeHotCertRecord struct {
	CommitteeColdCredential StakeCredential `json:"committee_cold_credential"`
	CommitteeHotCredential  StakeCredential `json:"committee_hot_credential"`
}

type ResignCommitteeColdCertRecord struct {
	CommitteeColdCredential StakeCredential `json:"committee_cold_credential"`
	Anchor                  *AnchorRecord   `json:"anchor"`
}

type RegDRepCertRecord struct {
	Credential StakeCredential `json:"credential"`
	Coin       uint64          `json:"coin"`
	Anchor     *AnchorRecord   `json:"anchor"`
}

type UnRegDRepCertRecord struct {
	Credential StakeCredential `json:"credential"`
	Coin       uint64          `json:"coin"`
}

type UpdateDRepCertRecord struct {
	Credential StakeCredential `json:"credential"`
	Anchor     *AnchorRecord   `json:"anchor"`
}

func (StakeRegistrationRecord) Kind() EventKind            { return KindStakeRegistration }
func (StakeDeregistrationRecord) Kind() EventKind          { return KindStakeDeregistration }
func (StakeDelegationRecord) Kind() EventKind              { return KindStakeDelegation }
func (PoolRegistrationRecord) Kind() EventKind             { return KindPoolRegistration }
func (PoolRetirementRecord) Kind() EventKind               { return KindPoolRetirement }
func (GenesisKeyDelegationRecord) Kind() EventKind         { return KindGenesisKeyDelegation }
func (MoveInstantaneousRewardsCertRecord) Kind() EventKind { return KindMoveInstantaneousRewardsCert }
func (RegCertRecord) Kind() EventKind                      { return KindRegCert }
func (UnRegCertRecord) Kind() EventKind                    { return KindUnRegCert }
func (VoteDelegCertRecord) Kind() EventKind                { return KindVoteDeleg }
func (StakeVoteDelegCertRecord) Kind() EventKind           { return KindStakeVoteDeleg }
func (StakeRegDelegCertRecord) Kind() EventKind            { return KindStakeRegDeleg }
func (VoteRegDelegCertRecord) Kind() EventKind             { return KindVoteRegDeleg }
func (StakeVoteRegDelegCertRecord) Kind() EventKind        { return KindStakeVoteRegDeleg }
func (AuthCommitteeHotCertRecord) Kind() EventKind         { return KindAuthCommitteeHot }
func (ResignCommitteeColdCertRecord) Kind() EventKind      { return KindResignCommitteeCold }
func (RegDRepCertRecord) Kind() EventKind                  { return KindRegDRepCert }
func (UnRegDRepCertRecord) Kind() EventKind                { return KindUnRegDRepCert }
func (UpdateDRepCertRecord) Kind() EventKind               { return KindUpdateDRepCert }

func (StakeRegistrationRecord) certificate()            {}
func (StakeDeregistrationRecord) certificate()          {}
func (StakeDelegationRecord) certificate()              {}
func (PoolRegistrationRecord) certificate()             {}
func (PoolRetirementRecord) certificate()               {}
func (GenesisKeyDelegationRecord) certificate()         {}
func (MoveInstantaneousRewardsCertRecord) certificate() {}
func (RegCertRecord) certificate()                      {}
func (UnRegCertRecord) certificate()                    {}
func (VoteDelegCertRecord) certificate()                {}
func (StakeVoteDelegCertRecord) certificate()           {}
func (StakeRegDelegCertRecord) certificate()            {}
func (VoteRegDelegCertRecord) certificate()             {}
func (StakeVoteRegDelegCertRecord) certificate()        {}
func (AuthCommitteeHotCertRecord) certificate()         {}
func (ResignCommitteeColdCertRecord) certificate()      {}
func (RegDRepCertRecord) certificate()                  {}
func (UnRegDRepCertRecord) certificate()                {}
func (UpdateDRepCertRecord) certificate()               {}
