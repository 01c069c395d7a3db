package sink

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/fatih/color"

	"blockScope/internal/model"
)

// gutter is the width taken by the coordinates and prefix columns.
const gutter = 35

// Terminal prints one human-readable line per event.
type Terminal struct {
	out   io.Writer
	width int
	plain bool
	mu    sync.Mutex
}

// NewTerminal builds a terminal sink. A width of zero disables truncation;
// plain disables colors.
func NewTerminal(out io.Writer, width int, plain bool) *Terminal {
	return &Terminal{out: out, width: width, plain: plain}
}

func (t *Terminal) Accept(_ context.Context, ev model.Event) error {
	line := t.Format(ev)
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := io.WriteString(t.out, line)
	return err
}

func (t *Terminal) Close() error { return nil }

// Format renders ev as a single terminated line.
func (t *Terminal) Format(ev model.Event) string {
	prefix, attr, content := describe(ev)

	block := "-------"
	if n := ev.Context.BlockNumber; n != nil {
		block = fmt.Sprintf("%07d", *n)
	}
	tx := "--"
	if idx := ev.Context.TxIdx; idx != nil {
		tx = fmt.Sprintf("%02d", *idx)
	}

	if t.width > gutter {
		if r := []rune(content); len(r) > t.width-gutter {
			content = string(r[:t.width-gutter]) + "..."
		}
	}

	coords := fmt.Sprintf("BLOCK:%s | TX:%s", block, tx)
	label := fmt.Sprintf("| %-6s", prefix)
	if t.plain {
		return coords + " " + label + " " + content + "\n"
	}
	return color.New(color.FgHiBlack, color.Faint).Sprint(coords) + " " +
		color.New(attr).Sprint(label) + " " +
		color.New(color.FgHiBlack).Sprint(content) + "\n"
}

func credential(c model.StakeCredential) string {
	return c.Kind.String() + "(" + c.Hash + ")"
}

func describe(ev model.Event) (string, color.Attribute, string) {
	switch d := ev.Data.(type) {
	case model.BlockRecord:
		var ts uint64
		if ev.Context.Timestamp != nil {
			ts = *ev.Context.Timestamp
		}
		return "BLOCK", color.FgMagenta, fmt.Sprintf(
			"{ era: %s, slot: %d, hash: %s, number: %d, body size: %d, tx_count: %d, issuer vkey: %s, timestamp: %d }",
			d.Era, d.Slot, d.Hash, d.Number, d.BodySize, d.TxCount, d.IssuerVkey, ts)
	case model.BlockEnd:
		return "ENDBLK", color.FgMagenta, fmt.Sprintf("{ slot: %d, hash: %s, number: %d }", d.Slot, d.Hash, d.Number)
	case model.TransactionRecord:
		ttl := "None"
		if d.TTL != nil {
			ttl = strconv.FormatUint(*d.TTL, 10)
		}
		return "TX", color.FgBlue, fmt.Sprintf("{ total_output: %d, fee: %d, hash: %s, ttl: %s }", d.TotalOutput, d.Fee, d.Hash, ttl)
	case model.TransactionEnd:
		return "ENDTX", color.FgBlue, fmt.Sprintf("{ hash: %s }", d.Hash)
	case model.TxInputRecord:
		return "STXI", color.FgHiBlue, fmt.Sprintf("{ tx_id: %s, index: %d }", d.TxID, d.Index)
	case model.TxOutputRecord:
		return "UTXO", color.FgHiBlue, fmt.Sprintf("{ to: %s, amount: %d }", d.Address, d.Amount)
	case model.OutputAssetRecord:
		asset := d.Asset
		if d.AssetASCII != nil {
			asset = *d.AssetASCII
		}
		return "ASSET", color.FgHiGreen, fmt.Sprintf("{ policy: %s, asset: %s, amount: %d }", d.Policy, asset, d.Amount)
	case model.MetadataRecord:
		return "META", color.FgHiYellow, fmt.Sprintf("{ label: %s, content: %s }", d.Label, d.Content)
	case model.MintRecord:
		return "MINT", color.FgGreen, fmt.Sprintf("{ policy: %s, asset: %s, quantity: %d }", d.Policy, d.Asset, d.Quantity)
	case model.CollateralRecord:
		return "COLLAT", color.FgHiBlue, fmt.Sprintf("{ tx_id: %s, index: %d }", d.TxID, d.Index)
	case model.NativeScriptRecord:
		return "NATIVE", color.FgWhite, fmt.Sprintf("{ policy: %s, script: %s }", d.PolicyID, d.Script)
	case model.PlutusScriptRecord:
		return "PLUTUS", color.FgWhite, fmt.Sprintf("{ hash: %s }", d.Hash)
	case model.PlutusDatumRecord:
		return "DATUM", color.FgWhite, fmt.Sprintf("{ hash: %s }", d.DatumHash)
	case model.PlutusRedeemerRecord:
		return "REDEEM", color.FgWhite, fmt.Sprintf("{ purpose: %s, input: %d }", d.Purpose, d.InputIdx)
	case model.PlutusWitnessRecord:
		return "WITNESS", color.FgWhite, fmt.Sprintf("{ plutus script: %s }", d.ScriptHash)
	case model.NativeWitnessRecord:
		return "WITNESS", color.FgWhite, fmt.Sprintf("{ native policy: %s }", d.PolicyID)
	case model.VKeyWitnessRecord:
		return "WITNESS", color.FgWhite, fmt.Sprintf("{ vkey: %s }", d.VkeyHex)
	case model.StakeRegistrationRecord:
		return "STAKE+", color.FgHiMagenta, fmt.Sprintf("{ credential: %s }", credential(d.Credential))
	case model.StakeDeregistrationRecord:
		return "STAKE-", color.FgMagenta, fmt.Sprintf("{ credential: %s }", credential(d.Credential))
	case model.StakeDelegationRecord:
		return "DELE", color.FgHiMagenta, fmt.Sprintf("{ credential: %s, pool: %s }", credential(d.Credential), d.PoolHash)
	case model.PoolRegistrationRecord:
		meta := "None"
		if d.PoolMetadata != nil {
			meta = *d.PoolMetadata
		}
		return "POOL+", color.FgHiMagenta, fmt.Sprintf(
			"{ operator: %s, pledge: %d, cost: %d, margin: { numerator: %d, denominator: %d }, metadata: %s }",
			d.Operator, d.Pledge, d.Cost, d.Margin.Numerator, d.Margin.Denominator, meta)
	case model.PoolRetirementRecord:
		return "POOL-", color.FgMagenta, fmt.Sprintf("{ pool: %s, epoch: %d }", d.Pool, d.Epoch)
	case model.GenesisKeyDelegationRecord:
		return "GENESIS", color.FgHiMagenta, fmt.Sprintf("{ genesis_hash: %s, genesis_delegate_hash: %s, vrf_key_hash: %s }",
			d.GenesisHash, d.GenesisDelegateHash, d.VrfKeyHash)
	case model.MoveInstantaneousRewardsCertRecord:
		return "MOVE", color.FgHiMagenta, fmt.Sprintf("{ reserves: %t, treasury: %t, to_credentials: %d, to_other_pot: %v }",
			d.FromReserves, d.FromTreasury, len(d.ToStakeCredentials), d.ToOtherPot != nil)
	case model.RollBackRecord:
		return "RLLBCK", color.FgRed, fmt.Sprintf("{ slot: %d, hash: %s }", d.BlockSlot, d.BlockHash)
	case model.CIP25AssetRecord:
		name, image := "?", "?"
		if d.Name != nil {
			name = *d.Name
		}
		if d.Image != nil {
			image = *d.Image
		}
		return "CIP25", color.FgYellow, fmt.Sprintf("{ policy: %s, asset: %s, name: %s, image: %s }", d.Policy, d.Asset, name, image)
	case model.CIP15AssetRecord:
		return "CIP15", color.FgYellow, fmt.Sprintf("{ voting key: %s, stake pub: %s }", d.VotingKey, d.StakePub)
	case model.CertificateRecord:
		return "CERT", color.FgHiMagenta, fmt.Sprintf("{ kind: %s }", d.Kind())
	}
	return "EVENT", color.FgWhite, fmt.Sprintf("{ kind: %s }", ev.Data.Kind())
}
