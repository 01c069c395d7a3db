package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockScope/internal/model"
	"blockScope/internal/sink"
)

func TestToRow(t *testing.T) {
	fp := "300.tx_input.00"
	ev := model.Event{
		Context:     model.BlockContext("aa", 12, 300, nil).Derive(model.TxContext(2, "bb")),
		Data:        model.TxInputRecord{TxID: "cc", Index: 1},
		Fingerprint: &fp,
	}
	row, err := toRow(ev)
	require.NoError(t, err)
	assert.Equal(t, "tx_input", row.kind)
	assert.Equal(t, int64(300), *row.slot)
	assert.Equal(t, int64(12), *row.blockNumber)
	assert.Equal(t, int32(2), *row.txIdx)
	assert.Equal(t, "bb", *row.txHash)
	assert.Equal(t, &fp, row.fingerprint)
	assert.JSONEq(t, `{"tx_id":"cc","index":1}`, string(row.payload))
}

func TestToRowWithoutCoordinates(t *testing.T) {
	row, err := toRow(model.Event{Data: model.RollBackRecord{BlockSlot: 4}})
	require.NoError(t, err)
	assert.Nil(t, row.slot)
	assert.Nil(t, row.txIdx)
	assert.Nil(t, row.fingerprint)

	_, err = toRow(model.Event{})
	assert.Error(t, err)
}

func TestNewStoreRequiresDSN(t *testing.T) {
	_, err := NewStore(context.Background(), "")
	assert.Error(t, err)
}

func TestReplayableRequiresFingerprints(t *testing.T) {
	fp := "300.block.00"
	s := &Store{}
	assert.True(t, s.Replayable([]model.Event{{Data: model.BlockRecord{}, Fingerprint: &fp}}))
	assert.False(t, s.Replayable([]model.Event{
		{Data: model.BlockRecord{}, Fingerprint: &fp},
		{Data: model.TxInputRecord{}},
	}))
	assert.True(t, sink.Replayable(s, nil))
}
