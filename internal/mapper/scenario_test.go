package mapper

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockScope/internal/ledger"
	lt "blockScope/internal/ledger/ledgertest"
	"blockScope/internal/model"
)

func twoOutputBlock() []byte {
	body := lt.Map{
		{K: uint64(0), V: []any{lt.Input(lt.Hash32(0x11), 0)}},
		{K: uint64(1), V: []any{
			[]any{lt.ShelleyAddress(), uint64(1_000_000)},
			[]any{lt.ShelleyAddress(), []any{uint64(500_000), lt.Map{
				{K: lt.Hash28(0x50), V: lt.Map{{K: []byte("a"), V: uint64(1)}, {K: []byte("b"), V: uint64(2)}}},
			}}},
		}},
		{K: uint64(2), V: uint64(200_000)},
	}
	block := lt.Block{EraTag: 6, Number: 5, Slot: 1000, WithInvalid: true, Txs: []lt.Tx{{Body: body}}}
	return block.Envelope()
}

func TestTwoOutputBlockWithoutDetails(t *testing.T) {
	events, err := crawl(t, Config{}, Utils{}, twoOutputBlock())
	require.NoError(t, err)

	rec := events[0].Data.(model.BlockRecord)
	assert.Equal(t, 1, rec.TxCount)
	assert.Equal(t, uint64(1000), rec.Slot)
	assert.Equal(t, uint64(5), rec.Number)
	assert.Nil(t, rec.Transactions)

	tx := events[1].Data.(model.TransactionRecord)
	assert.Equal(t, uint64(200_000), tx.Fee)
	assert.Equal(t, 2, tx.OutputCount)
	assert.Nil(t, tx.Outputs)
}

func TestTwoOutputBlockWithDetails(t *testing.T) {
	cfg := Config{
		IncludeBlockDetails:         true,
		IncludeTransactionDetails:   true,
		IncludeBlockCbor:            true,
		IncludeTransactionEndEvents: true,
		IncludeBlockEndEvents:       true,
	}
	events, err := crawl(t, cfg, Utils{}, twoOutputBlock())
	require.NoError(t, err)

	assert.Equal(t, []model.EventKind{
		model.KindBlock,
		model.KindTransaction,
		model.KindTxInput,
		model.KindTxOutput,
		model.KindTxOutput,
		model.KindOutputAsset,
		model.KindOutputAsset,
		model.KindTransactionEnd,
		model.KindBlockEnd,
	}, kinds(events))

	tx := events[1].Data.(model.TransactionRecord)
	require.Len(t, tx.Outputs, 2)
	var total uint64
	for _, out := range tx.Outputs {
		total += out.Amount
	}
	assert.Equal(t, uint64(1_500_000), total)

	for _, ev := range events[5:7] {
		require.NotNil(t, ev.Context.OutputIdx)
		assert.Equal(t, 1, *ev.Context.OutputIdx)
		assert.NotNil(t, ev.Context.OutputAddress)
	}
}

func TestMIRFromReservesToOtherPot(t *testing.T) {
	cert := []any{uint64(6), []any{uint64(0), uint64(777)}}
	body := append(lt.SimpleBody(1), lt.Pair{K: uint64(4), V: []any{cert}})
	block := lt.Block{EraTag: 5, LegacyHeader: true, WithInvalid: true, Txs: []lt.Tx{{Body: body}}}

	events, err := crawl(t, Config{}, Utils{}, block.Envelope())
	require.NoError(t, err)

	var mir *model.MoveInstantaneousRewardsCertRecord
	for _, ev := range events {
		if rec, ok := ev.Data.(model.MoveInstantaneousRewardsCertRecord); ok {
			mir = &rec
		}
	}
	require.NotNil(t, mir)
	assert.True(t, mir.FromReserves)
	assert.False(t, mir.FromTreasury)
	assert.Nil(t, mir.ToStakeCredentials)
	require.NotNil(t, mir.ToOtherPot)
	assert.Equal(t, uint64(777), *mir.ToOtherPot)
}

func TestEmittedContextsShareNoStorage(t *testing.T) {
	events, err := crawl(t, Config{IncludeTransactionDetails: true}, Utils{}, twoOutputBlock())
	require.NoError(t, err)
	require.Greater(t, len(events), 3)

	last := events[len(events)-1].Context
	require.NotNil(t, last.BlockNumber)
	require.NotNil(t, last.TxIdx)
	*last.BlockNumber = 999
	*last.TxIdx = 7
	*events[2].Context.TxIdx = 8

	assert.Equal(t, uint64(5), *events[0].Context.BlockNumber)
	assert.Equal(t, uint64(5), *events[1].Context.BlockNumber)
	assert.Equal(t, 0, *events[1].Context.TxIdx)
	assert.Equal(t, 0, *events[3].Context.TxIdx)

	buf := &Buffer{}
	w := NewEventWriter(buf, Utils{}, Config{}).ChildWriter(model.BlockContext("aa", 5, 1000, nil))
	ctx := w.Context()
	*ctx.BlockNumber = 6
	require.NoError(t, w.Append(model.RollBackRecord{}))
	assert.Equal(t, uint64(5), *buf.Events[0].Context.BlockNumber)
}

func decodeRaw[T any](t *testing.T, v any) *ledger.KeepRaw[T] {
	t.Helper()
	var out ledger.KeepRaw[T]
	require.NoError(t, cbor.Unmarshal(lt.MustMarshal(v), &out))
	return &out
}

func TestTransactionSizeWithoutWitnessSet(t *testing.T) {
	w := NewEventWriter(&Buffer{}, Utils{}, Config{})
	bodyLen := uint32(len(lt.MustMarshal(lt.SimpleBody(1))))

	rec, err := w.ToBabbageTransactionRecord(decodeRaw[ledger.BabbageTransactionBody](t, lt.SimpleBody(1)), "ab", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, bodyLen+2+1, rec.Size)

	aux := lt.Map{{K: uint64(1), V: "x"}}
	rec, err = w.ToTransactionRecord(
		decodeRaw[ledger.AlonzoTransactionBody](t, lt.SimpleBody(1)), "ab",
		decodeRaw[ledger.AuxiliaryData](t, aux), nil,
	)
	require.NoError(t, err)
	assert.Equal(t, bodyLen+uint32(len(lt.MustMarshal(aux)))+1, rec.Size)
}

func TestBlockWithFewerWitnessSetsThanBodies(t *testing.T) {
	witness := lt.Map{{K: uint64(0), V: []any{[]any{lt.Bytes(0x70, 32), lt.Bytes(0x71, 64)}}}}
	sets := 1
	block := lt.Block{EraTag: 6, WithInvalid: true, WitnessSets: &sets, Txs: []lt.Tx{
		{Body: lt.SimpleBody(1), Witness: witness},
		{Body: lt.SimpleBody(2), Witness: witness},
	}}

	events, err := crawl(t, Config{}, Utils{}, block.Envelope())
	require.NoError(t, err)

	var sizes []uint32
	witnessed := map[int]int{}
	for _, ev := range events {
		switch rec := ev.Data.(type) {
		case model.TransactionRecord:
			sizes = append(sizes, rec.Size)
		case model.VKeyWitnessRecord, model.NativeWitnessRecord, model.PlutusWitnessRecord,
			model.PlutusRedeemerRecord, model.PlutusDatumRecord:
			require.NotNil(t, ev.Context.TxIdx)
			witnessed[*ev.Context.TxIdx]++
		}
	}
	require.Len(t, sizes, 2)
	assert.Equal(t, uint32(len(lt.MustMarshal(lt.SimpleBody(2))))+2+1, sizes[1])
	assert.Equal(t, map[int]int{0: 1}, witnessed)
}
