package ledger

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// CertificateKind is the leading tag of a certificate array.
type CertificateKind uint8

const (
	CertStakeRegistration CertificateKind = iota
	CertStakeDeregistration
	CertStakeDelegation
	CertPoolRegistration
	CertPoolRetirement
	CertGenesisKeyDelegation
	CertMoveInstantaneousRewards
	CertReg
	CertUnReg
	CertVoteDeleg
	CertStakeVoteDeleg
	CertStakeRegDeleg
	CertVoteRegDeleg
	CertStakeVoteRegDeleg
	CertAuthCommitteeHot
	CertResignCommitteeCold
	CertRegDRep
	CertUnRegDRep
	CertUpdateDRep

	certKindCount
)

// AllCertificateKinds lists every certificate tag the decoder accepts.
func AllCertificateKinds() []CertificateKind {
	kinds := make([]CertificateKind, 0, certKindCount)
	for k := CertificateKind(0); k < certKindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Credential is [0, keyhash] or [1, scripthash].
type Credential struct {
	_      struct{} `cbor:",toarray"`
	Script uint8
	Hash   []byte
}

// IsScript reports whether the credential is a script hash.
func (c Credential) IsScript() bool {
	return c.Script == 1
}

// DRep is [0, keyhash], [1, scripthash], [2] (abstain) or [3] (no confidence).
type DRep struct {
	Kind uint8
	Hash []byte
}

const (
	DRepKeyHash uint8 = iota
	DRepScriptHash
	DRepAbstain
	DRepNoConfidence
)

func (d *DRep) UnmarshalCBOR(data []byte) error {
	items, err := decodeItems(data)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return malformed("empty drep", nil)
	}
	*d = DRep{}
	if err := cbor.Unmarshal(items[0], &d.Kind); err != nil {
		return malformed("drep kind", err)
	}
	switch d.Kind {
	case DRepKeyHash, DRepScriptHash:
		if len(items) != 2 {
			return malformed("drep without hash", nil)
		}
		if err := cbor.Unmarshal(items[1], &d.Hash); err != nil {
			return malformed("drep hash", err)
		}
	case DRepAbstain, DRepNoConfidence:
	default:
		return malformed(fmt.Sprintf("drep kind %d", d.Kind), nil)
	}
	return nil
}

type Anchor struct {
	_        struct{} `cbor:",toarray"`
	URL      string
	DataHash []byte
}

type PoolMetadata struct {
	_    struct{} `cbor:",toarray"`
	URL  string
	Hash []byte
}

// RelayKind is the leading tag of a relay array.
type RelayKind uint8

const (
	RelaySingleHostAddr RelayKind = iota
	RelaySingleHostName
	RelayMultiHostName
)

// Relay is [0, port, ipv4, ipv6], [1, port, dns] or [2, dns]. Absent ports
// and addresses decode as nil.
type Relay struct {
	Kind RelayKind
	Port *uint32
	IPv4 []byte
	IPv6 []byte
	DNS  string
}

func (r *Relay) UnmarshalCBOR(data []byte) error {
	items, err := decodeItems(data)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return malformed("empty relay", nil)
	}
	*r = Relay{}
	if err := cbor.Unmarshal(items[0], &r.Kind); err != nil {
		return malformed("relay kind", err)
	}
	var dst []any
	switch r.Kind {
	case RelaySingleHostAddr:
		dst = []any{&r.Port, &r.IPv4, &r.IPv6}
	case RelaySingleHostName:
		dst = []any{&r.Port, &r.DNS}
	case RelayMultiHostName:
		dst = []any{&r.DNS}
	default:
		return malformed(fmt.Sprintf("relay kind %d", r.Kind), nil)
	}
	if len(items) != len(dst)+1 {
		return malformed(fmt.Sprintf("relay kind %d with %d fields", r.Kind, len(items)), nil)
	}
	for i, d := range dst {
		if err := cbor.Unmarshal(items[i+1], d); err != nil {
			return malformed("relay field", err)
		}
	}
	return nil
}

// RewardTarget is one credential credited by an instantaneous reward move.
type RewardTarget struct {
	Credential Credential
	Amount     int64
}

// MoveInstantaneousReward is [source, target]; the target is either a
// credential map or a coin amount sent to the other pot.
type MoveInstantaneousReward struct {
	Source   uint8
	Targets  []RewardTarget
	OtherPot *uint64
}

const (
	RewardSourceReserves uint8 = 0
	RewardSourceTreasury uint8 = 1
)

func (m *MoveInstantaneousReward) UnmarshalCBOR(data []byte) error {
	var pair struct {
		_      struct{} `cbor:",toarray"`
		Source uint8
		Target cbor.RawMessage
	}
	if err := cbor.Unmarshal(data, &pair); err != nil {
		return malformed("instantaneous reward", err)
	}
	*m = MoveInstantaneousReward{Source: pair.Source}
	major, err := majorType(pair.Target)
	if err != nil {
		return err
	}
	switch major {
	case majorMap:
		m.Targets = []RewardTarget{}
		return decodePairs(pair.Target, func(k, v cbor.RawMessage) error {
			var t RewardTarget
			if err := cbor.Unmarshal(k, &t.Credential); err != nil {
				return malformed("reward credential", err)
			}
			if err := cbor.Unmarshal(v, &t.Amount); err != nil {
				return malformed("reward amount", err)
			}
			m.Targets = append(m.Targets, t)
			return nil
		})
	case majorUint:
		var coin uint64
		if err := cbor.Unmarshal(pair.Target, &coin); err != nil {
			return malformed("other pot amount", err)
		}
		m.OtherPot = &coin
		return nil
	}
	return malformed(fmt.Sprintf("reward target with major type %d", major), nil)
}

// Certificate is a decoded certificate of any kind. Only the fields
// meaningful for Kind are set.
type Certificate struct {
	Kind CertificateKind

	Credential      Credential
	HotCredential   Credential
	PoolKeyHash     []byte
	DRep            DRep
	Coin            uint64
	Anchor          *Anchor
	Epoch           uint64
	Reward          MoveInstantaneousReward
	Pool            PoolParams
	GenesisHash     []byte
	GenesisDelegate []byte
	VrfKeyHash      []byte
}

// PoolParams are the fields of a pool registration.
type PoolParams struct {
	Operator      []byte
	VrfKeyHash    []byte
	Pledge        uint64
	Cost          uint64
	Margin        Rational
	RewardAccount []byte
	Owners        [][]byte
	Relays        []Relay
	Metadata      *PoolMetadata
}

func (c *Certificate) UnmarshalCBOR(data []byte) error {
	items, err := decodeItems(data)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return malformed("empty certificate", nil)
	}
	*c = Certificate{}
	if err := cbor.Unmarshal(items[0], &c.Kind); err != nil {
		return malformed("certificate kind", err)
	}
	var fields []any
	switch c.Kind {
	case CertStakeRegistration, CertStakeDeregistration:
		fields = []any{&c.Credential}
	case CertStakeDelegation:
		fields = []any{&c.Credential, &c.PoolKeyHash}
	case CertPoolRegistration:
		p := &c.Pool
		fields = []any{&p.Operator, &p.VrfKeyHash, &p.Pledge, &p.Cost, &p.Margin,
			&p.RewardAccount, &p.Owners, &p.Relays, &p.Metadata}
	case CertPoolRetirement:
		fields = []any{&c.PoolKeyHash, &c.Epoch}
	case CertGenesisKeyDelegation:
		fields = []any{&c.GenesisHash, &c.GenesisDelegate, &c.VrfKeyHash}
	case CertMoveInstantaneousRewards:
		fields = []any{&c.Reward}
	case CertReg, CertUnReg:
		fields = []any{&c.Credential, &c.Coin}
	case CertVoteDeleg:
		fields = []any{&c.Credential, &c.DRep}
	case CertStakeVoteDeleg:
		fields = []any{&c.Credential, &c.PoolKeyHash, &c.DRep}
	case CertStakeRegDeleg:
		fields = []any{&c.Credential, &c.PoolKeyHash, &c.Coin}
	case CertVoteRegDeleg:
		fields = []any{&c.Credential, &c.DRep, &c.Coin}
	case CertStakeVoteRegDeleg:
		fields = []any{&c.Credential, &c.PoolKeyHash, &c.DRep, &c.Coin}
	case CertAuthCommitteeHot:
		fields = []any{&c.Credential, &c.HotCredential}
	case CertResignCommitteeCold:
		fields = []any{&c.Credential, &c.Anchor}
	case CertRegDRep:
		fields = []any{&c.Credential, &c.Coin, &c.Anchor}
	case CertUnRegDRep:
		fields = []any{&c.Credential, &c.Coin}
	case CertUpdateDRep:
		fields = []any{&c.Credential, &c.Anchor}
	default:
		return malformed(fmt.Sprintf("certificate kind %d", c.Kind), nil)
	}
	if len(items) != len(fields)+1 {
		return malformed(fmt.Sprintf("certificate kind %d with %d fields", c.Kind, len(items)), nil)
	}
	for i, f := range fields {
		if err := cbor.Unmarshal(items[i+1], f); err != nil {
			return malformed(fmt.Sprintf("certificate kind %d field %d", c.Kind, i+1), err)
		}
	}
	return nil
}
