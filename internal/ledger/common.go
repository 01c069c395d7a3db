package ledger

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// HeaderBody carries the header fields shared by every supported era.
type HeaderBody struct {
	BlockNumber   uint64
	Slot          uint64
	PrevHash      []byte
	IssuerVkey    []byte
	VrfVkey       []byte
	BlockBodySize uint64
	BlockBodyHash []byte
}

// UnmarshalCBOR accepts both the flat 15-field header body of the legacy
// eras and the 10-field layout with nested certificate and version.
func (h *HeaderBody) UnmarshalCBOR(data []byte) error {
	items, err := decodeItems(data)
	if err != nil {
		return err
	}
	var sizeIdx int
	switch len(items) {
	case 15:
		sizeIdx = 7
	case 10:
		sizeIdx = 6
	default:
		return malformed(fmt.Sprintf("header body with %d fields", len(items)), nil)
	}
	fields := []struct {
		idx int
		dst any
	}{
		{0, &h.BlockNumber},
		{1, &h.Slot},
		{2, &h.PrevHash},
		{3, &h.IssuerVkey},
		{4, &h.VrfVkey},
		{sizeIdx, &h.BlockBodySize},
		{sizeIdx + 1, &h.BlockBodyHash},
	}
	for _, f := range fields {
		if err := cbor.Unmarshal(items[f.idx], f.dst); err != nil {
			return malformed(fmt.Sprintf("header body field %d", f.idx), err)
		}
	}
	return nil
}

// Header is [header_body, body_signature].
type Header struct {
	_         struct{} `cbor:",toarray"`
	Body      HeaderBody
	Signature []byte
}

type TransactionInput struct {
	_     struct{} `cbor:",toarray"`
	TxID  []byte
	Index uint64
}

// AssetAmount is one asset of a policy with its quantity.
type AssetAmount[T int64 | uint64] struct {
	Name     []byte
	Quantity T
}

// PolicyAssets groups the assets minted under one policy.
type PolicyAssets[T int64 | uint64] struct {
	Policy []byte
	Assets []AssetAmount[T]
}

// Multiasset keeps policies and asset names in encoding order.
type Multiasset[T int64 | uint64] []PolicyAssets[T]

func (m *Multiasset[T]) UnmarshalCBOR(data []byte) error {
	var out Multiasset[T]
	err := decodePairs(data, func(k, v cbor.RawMessage) error {
		entry := PolicyAssets[T]{}
		if err := cbor.Unmarshal(k, &entry.Policy); err != nil {
			return malformed("policy id", err)
		}
		err := decodePairs(v, func(name, qty cbor.RawMessage) error {
			var asset AssetAmount[T]
			if err := cbor.Unmarshal(name, &asset.Name); err != nil {
				return malformed("asset name", err)
			}
			if err := cbor.Unmarshal(qty, &asset.Quantity); err != nil {
				return malformed("asset quantity", err)
			}
			entry.Assets = append(entry.Assets, asset)
			return nil
		})
		if err != nil {
			return err
		}
		out = append(out, entry)
		return nil
	})
	if err != nil {
		return err
	}
	*m = out
	return nil
}

// Len is the number of (policy, asset) entries.
func (m Multiasset[T]) Len() int {
	n := 0
	for _, p := range m {
		n += len(p.Assets)
	}
	return n
}

// Value is a bare coin amount or [coin, multiasset].
type Value struct {
	Coin   uint64
	Assets Multiasset[uint64]
}

func (v *Value) UnmarshalCBOR(data []byte) error {
	major, err := majorType(data)
	if err != nil {
		return err
	}
	switch major {
	case majorUint:
		*v = Value{}
		return cbor.Unmarshal(data, &v.Coin)
	case majorArray:
		var pair struct {
			_      struct{} `cbor:",toarray"`
			Coin   uint64
			Assets Multiasset[uint64]
		}
		if err := cbor.Unmarshal(data, &pair); err != nil {
			return malformed("multiasset value", err)
		}
		*v = Value{Coin: pair.Coin, Assets: pair.Assets}
		return nil
	}
	return malformed(fmt.Sprintf("value with major type %d", major), nil)
}

// Withdrawal is one reward-account withdrawal.
type Withdrawal struct {
	RewardAccount []byte
	Coin          uint64
}

// Withdrawals keeps reward accounts in encoding order.
type Withdrawals []Withdrawal

func (w *Withdrawals) UnmarshalCBOR(data []byte) error {
	var out Withdrawals
	err := decodePairs(data, func(k, v cbor.RawMessage) error {
		var wd Withdrawal
		if err := cbor.Unmarshal(k, &wd.RewardAccount); err != nil {
			return malformed("reward account", err)
		}
		if err := cbor.Unmarshal(v, &wd.Coin); err != nil {
			return malformed("withdrawal amount", err)
		}
		out = append(out, wd)
		return nil
	})
	if err != nil {
		return err
	}
	*w = out
	return nil
}

type VKeyWitness struct {
	_         struct{} `cbor:",toarray"`
	Vkey      []byte
	Signature []byte
}

type ExUnits struct {
	_     struct{} `cbor:",toarray"`
	Mem   uint32
	Steps uint64
}

// RedeemerTag is the purpose a redeemer is supplied for.
type RedeemerTag uint8

const (
	RedeemerSpend RedeemerTag = iota
	RedeemerMint
	RedeemerCert
	RedeemerReward
	RedeemerVoting
	RedeemerProposing
)

var redeemerPurposes = [...]string{
	RedeemerSpend:     "spend",
	RedeemerMint:      "mint",
	RedeemerCert:      "cert",
	RedeemerReward:    "reward",
	RedeemerVoting:    "voting",
	RedeemerProposing: "proposing",
}

func (t RedeemerTag) String() string {
	if int(t) < len(redeemerPurposes) {
		return redeemerPurposes[t]
	}
	return fmt.Sprintf("RedeemerTag(%d)", uint8(t))
}

type Redeemer struct {
	Tag     RedeemerTag
	Index   uint32
	Data    PlutusData
	ExUnits ExUnits
}

// Redeemers accepts the array form [tag, index, data, ex_units] as well as
// the map form {[tag, index]: [data, ex_units]}.
type Redeemers []Redeemer

func (r *Redeemers) UnmarshalCBOR(data []byte) error {
	major, err := majorType(data)
	if err != nil {
		return err
	}
	var out Redeemers
	switch major {
	case majorArray:
		var items []struct {
			_       struct{} `cbor:",toarray"`
			Tag     RedeemerTag
			Index   uint32
			Data    PlutusData
			ExUnits ExUnits
		}
		if err := cbor.Unmarshal(data, &items); err != nil {
			return malformed("redeemers", err)
		}
		for _, it := range items {
			out = append(out, Redeemer{Tag: it.Tag, Index: it.Index, Data: it.Data, ExUnits: it.ExUnits})
		}
	case majorMap:
		err := decodePairs(data, func(k, v cbor.RawMessage) error {
			var key struct {
				_     struct{} `cbor:",toarray"`
				Tag   RedeemerTag
				Index uint32
			}
			var val struct {
				_       struct{} `cbor:",toarray"`
				Data    PlutusData
				ExUnits ExUnits
			}
			if err := cbor.Unmarshal(k, &key); err != nil {
				return malformed("redeemer key", err)
			}
			if err := cbor.Unmarshal(v, &val); err != nil {
				return malformed("redeemer value", err)
			}
			out = append(out, Redeemer{Tag: key.Tag, Index: key.Index, Data: val.Data, ExUnits: val.ExUnits})
			return nil
		})
		if err != nil {
			return err
		}
	default:
		return malformed(fmt.Sprintf("redeemers with major type %d", major), nil)
	}
	if out == nil {
		out = Redeemers{}
	}
	*r = out
	return nil
}

// Rational is a tag-30 [numerator, denominator] pair.
type Rational struct {
	_           struct{} `cbor:",toarray"`
	Numerator   uint64
	Denominator uint64
}

// Nonce is [0] for the neutral nonce or [1, hash].
type Nonce struct {
	Neutral bool
	Hash    []byte
}

func (n *Nonce) UnmarshalCBOR(data []byte) error {
	items, err := decodeItems(data)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return malformed("empty nonce", nil)
	}
	var variant uint64
	if err := cbor.Unmarshal(items[0], &variant); err != nil {
		return malformed("nonce variant", err)
	}
	switch {
	case variant == 0:
		*n = Nonce{Neutral: true}
	case variant == 1 && len(items) == 2:
		*n = Nonce{}
		if err := cbor.Unmarshal(items[1], &n.Hash); err != nil {
			return malformed("nonce hash", err)
		}
	default:
		return malformed(fmt.Sprintf("nonce variant %d", variant), nil)
	}
	return nil
}

type ExUnitPrices struct {
	_         struct{} `cbor:",toarray"`
	MemPrice  Rational
	StepPrice Rational
}

// ProtocolParamUpdate lists every updatable parameter key up to the
// post-upgrade eras. Keys 12 and 13 only occur in legacy updates.
type ProtocolParamUpdate struct {
	MinfeeA                   *uint32            `cbor:"0,keyasint,omitempty"`
	MinfeeB                   *uint32            `cbor:"1,keyasint,omitempty"`
	MaxBlockBodySize          *uint32            `cbor:"2,keyasint,omitempty"`
	MaxTransactionSize        *uint32            `cbor:"3,keyasint,omitempty"`
	MaxBlockHeaderSize        *uint32            `cbor:"4,keyasint,omitempty"`
	KeyDeposit                *uint64            `cbor:"5,keyasint,omitempty"`
	PoolDeposit               *uint64            `cbor:"6,keyasint,omitempty"`
	MaximumEpoch              *uint64            `cbor:"7,keyasint,omitempty"`
	DesiredNumberOfStakePools *uint32            `cbor:"8,keyasint,omitempty"`
	PoolPledgeInfluence       *Rational          `cbor:"9,keyasint,omitempty"`
	ExpansionRate             *Rational          `cbor:"10,keyasint,omitempty"`
	TreasuryGrowthRate        *Rational          `cbor:"11,keyasint,omitempty"`
	DecentralizationConstant  *Rational          `cbor:"12,keyasint,omitempty"`
	ExtraEntropy              *Nonce             `cbor:"13,keyasint,omitempty"`
	ProtocolVersion           *[2]uint64         `cbor:"14,keyasint,omitempty"`
	MinUtxoValue              *uint64            `cbor:"15,keyasint,omitempty"`
	MinPoolCost               *uint64            `cbor:"16,keyasint,omitempty"`
	AdaPerUtxoByte            *uint64            `cbor:"17,keyasint,omitempty"`
	CostModels                map[uint64][]int64 `cbor:"18,keyasint,omitempty"`
	ExecutionCosts            *ExUnitPrices      `cbor:"19,keyasint,omitempty"`
	MaxTxExUnits              *ExUnits           `cbor:"20,keyasint,omitempty"`
	MaxBlockExUnits           *ExUnits           `cbor:"21,keyasint,omitempty"`
	MaxValueSize              *uint32            `cbor:"22,keyasint,omitempty"`
	CollateralPercentage      *uint32            `cbor:"23,keyasint,omitempty"`
	MaxCollateralInputs       *uint32            `cbor:"24,keyasint,omitempty"`
}

// GenesisProposal is one genesis delegate's proposed parameter update.
type GenesisProposal struct {
	GenesisHash []byte
	Update      ProtocolParamUpdate
}

// ProposedUpdates keeps proposals in encoding order.
type ProposedUpdates []GenesisProposal

func (p *ProposedUpdates) UnmarshalCBOR(data []byte) error {
	var out ProposedUpdates
	err := decodePairs(data, func(k, v cbor.RawMessage) error {
		var gp GenesisProposal
		if err := cbor.Unmarshal(k, &gp.GenesisHash); err != nil {
			return malformed("genesis hash", err)
		}
		if err := cbor.Unmarshal(v, &gp.Update); err != nil {
			return malformed("protocol param update", err)
		}
		out = append(out, gp)
		return nil
	})
	if err != nil {
		return err
	}
	*p = out
	return nil
}

// Update is [proposed_updates, epoch].
type Update struct {
	_         struct{} `cbor:",toarray"`
	Proposals ProposedUpdates
	Epoch     uint64
}
