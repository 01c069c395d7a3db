package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockScope/internal/model"
)

type recorder struct {
	events []model.Event
}

func (r *recorder) Accept(_ context.Context, ev model.Event) error {
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) Close() error { return nil }

func sampleEvents() []model.Event {
	ctx := model.BlockContext("aa", 12, 300, nil)
	return []model.Event{
		{Context: ctx, Data: model.BlockRecord{Era: model.EraBabbage, Hash: "aa", Number: 12, Slot: 300}},
		{Context: ctx.Derive(model.TxContext(0, "bb")), Data: model.TxInputRecord{TxID: "cc", Index: 1}},
	}
}

func TestJSONLAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "events.jsonl")
	s := NewJSONL(path)
	events := sampleEvents()

	require.NoError(t, Deliver(context.Background(), s, events))
	require.NoError(t, s.Accept(context.Background(), events[1]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)

	var first map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Contains(t, first, "block")
	assert.Contains(t, first, "context")
	assert.Contains(t, lines[2], `"tx_input"`)
}

func TestStreamWritesLines(t *testing.T) {
	var buf bytes.Buffer
	s := NewStream(&buf)
	require.NoError(t, Deliver(context.Background(), s, sampleEvents()))
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
}

func TestDeliverFallsBackToAccept(t *testing.T) {
	r := &recorder{}
	require.NoError(t, Deliver(context.Background(), r, sampleEvents()))
	assert.Len(t, r.events, 2)
	require.NoError(t, Deliver(context.Background(), r, nil))
	assert.Len(t, r.events, 2)
}

func TestTerminalFormat(t *testing.T) {
	term := NewTerminal(nil, 0, true)
	events := sampleEvents()

	assert.Equal(t,
		"BLOCK:0000012 | TX:-- | BLOCK  { era: Babbage, slot: 300, hash: aa, number: 12, body size: 0, tx_count: 0, issuer vkey: , timestamp: 0 }\n",
		term.Format(events[0]))
	assert.Equal(t, "BLOCK:0000012 | TX:00 | STXI   { tx_id: cc, index: 1 }\n", term.Format(events[1]))

	rollback := model.Event{Data: model.RollBackRecord{BlockSlot: 9, BlockHash: "dd"}}
	assert.Equal(t, "BLOCK:------- | TX:-- | RLLBCK { slot: 9, hash: dd }\n", term.Format(rollback))

	cert := model.Event{Data: model.RegDRepCertRecord{}}
	assert.Contains(t, term.Format(cert), "| CERT   { kind: RegDRepCert }")
}

func TestTerminalTruncates(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, gutter+10, true)
	require.NoError(t, term.Accept(context.Background(), sampleEvents()[1]))
	assert.Equal(t, "BLOCK:0000012 | TX:00 | STXI   { tx_id: c...\n", buf.String())
}

func TestJSONLIsNotReplayable(t *testing.T) {
	events := sampleEvents()
	assert.False(t, Replayable(&recorder{}, events))
	assert.False(t, Replayable(NewJSONL(filepath.Join(t.TempDir(), "e.jsonl")), events))
}
