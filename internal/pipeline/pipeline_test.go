package pipeline

import (
	"context"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockScope/internal/ledger"
	lt "blockScope/internal/ledger/ledgertest"
	"blockScope/internal/mapper"
	"blockScope/internal/metrics"
	"blockScope/internal/model"
)

type recorder struct {
	mu     sync.Mutex
	events []model.Event
	fail   int
	// failAt makes the write of the event at this position fail once.
	failAt int
	replay bool
}

func (r *recorder) Accept(_ context.Context, ev model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail > 0 {
		r.fail--
		return errors.New("sink unavailable")
	}
	if r.failAt > 0 && len(r.events) == r.failAt {
		r.failAt = 0
		return errors.New("connection reset")
	}
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) Replayable([]model.Event) bool { return r.replay }

func (r *recorder) Close() error { return nil }

func envelope(number uint64) []byte {
	block := lt.Block{EraTag: 6, Number: number, Slot: number * 10, WithInvalid: true, Txs: []lt.Tx{{Body: lt.SimpleBody(1)}}}
	return block.Envelope()
}

func blockNumbers(events []model.Event) []uint64 {
	var out []uint64
	for _, ev := range events {
		if rec, ok := ev.Data.(model.BlockRecord); ok {
			out = append(out, rec.Number)
		}
	}
	return out
}

func TestSplitBatches(t *testing.T) {
	got, err := SplitBatches(5, 2)
	require.NoError(t, err)
	assert.Equal(t, []Batch{{From: 0, To: 2}, {From: 2, To: 4}, {From: 4, To: 5}}, got)

	got, err = SplitBatches(0, 3)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = SplitBatches(3, 0)
	assert.Error(t, err)
	_, err = SplitBatches(-1, 1)
	assert.Error(t, err)
}

func TestReadHexLines(t *testing.T) {
	raw := envelope(1)
	input := "# blocks\n" + hex.EncodeToString(raw) + "\n\n  " + hex.EncodeToString(raw) + "  \n"
	blocks, err := ReadHexLines(strings.NewReader(input), "in")
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, "in:2", blocks[0].Name)
	assert.Equal(t, "in:4", blocks[1].Name)
	assert.Equal(t, raw, blocks[1].Data)

	_, err = ReadHexLines(strings.NewReader("zz\n"), "in")
	assert.ErrorContains(t, err, "in:1")
}

func TestLoadRawDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.cbor"), envelope(2), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.cbor"), envelope(1), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	blocks, err := Load(dir, FormatRaw)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, envelope(1), blocks[0].Data)

	single, err := Load(filepath.Join(dir, "b.cbor"), FormatRaw)
	require.NoError(t, err)
	require.Len(t, single, 1)

	_, err = Load(dir, "yaml")
	assert.Error(t, err)
}

func TestRunDeliversInInputOrder(t *testing.T) {
	var blocks []RawBlock
	for n := uint64(1); n <= 9; n++ {
		blocks = append(blocks, RawBlock{Name: "b", Data: envelope(n)})
	}
	out := &recorder{}
	m := metrics.New()
	runner := NewRunner(RunConfig{Workers: 4, BatchSize: 3, Fingerprint: true}, mapper.Utils{}, out, m, nil)

	require.NoError(t, runner.Run(context.Background(), blocks))
	assert.Equal(t, []uint64{1, 2, 3, 4, 5, 6, 7, 8, 9}, blockNumbers(out.events))
	for _, ev := range out.events {
		require.NotNil(t, ev.Fingerprint)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "block_mapper_blocks_crawled_total 9")
	assert.Contains(t, rec.Body.String(), "block_mapper_last_slot 90")
}

func TestRunStopsAtFailingBlock(t *testing.T) {
	byron := lt.MustMarshal([]any{uint64(1), []any{}})
	blocks := []RawBlock{
		{Name: "one", Data: envelope(1)},
		{Name: "byron", Data: byron},
		{Name: "three", Data: envelope(3)},
	}
	out := &recorder{}
	err := NewRunner(RunConfig{Workers: 2}, mapper.Utils{}, out, nil, nil).Run(context.Background(), blocks)

	assert.ErrorIs(t, err, ledger.ErrUnsupportedEra)
	assert.ErrorContains(t, err, "byron")
	assert.Equal(t, []uint64{1}, blockNumbers(out.events))
}

func TestRunRetriesSink(t *testing.T) {
	out := &recorder{fail: 2, replay: true}
	cfg := RunConfig{MaxRetries: 3, RetryBackoff: time.Millisecond}
	err := NewRunner(cfg, mapper.Utils{}, out, nil, nil).Run(context.Background(), []RawBlock{{Name: "b", Data: envelope(1)}})
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, blockNumbers(out.events))

	out = &recorder{fail: 5, replay: true}
	cfg.MaxRetries = 1
	err = NewRunner(cfg, mapper.Utils{}, out, nil, nil).Run(context.Background(), []RawBlock{{Name: "b", Data: envelope(1)}})
	assert.ErrorContains(t, err, "sink unavailable")
}

func TestRunDoesNotReplayPartialWrites(t *testing.T) {
	cfg := RunConfig{MaxRetries: 3, RetryBackoff: time.Millisecond}
	blocks := []RawBlock{{Name: "b", Data: envelope(1)}}

	out := &recorder{failAt: 1}
	err := NewRunner(cfg, mapper.Utils{}, out, nil, nil).Run(context.Background(), blocks)
	assert.ErrorContains(t, err, "connection reset")
	require.Len(t, out.events, 1)
	assert.Equal(t, []uint64{1}, blockNumbers(out.events))

	out = &recorder{failAt: 1, replay: true}
	err = NewRunner(cfg, mapper.Utils{}, out, nil, nil).Run(context.Background(), blocks)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 1}, blockNumbers(out.events))
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewRunner(RunConfig{}, mapper.Utils{}, &recorder{}, nil, nil).Run(ctx, []RawBlock{{Name: "b", Data: envelope(1)}})
	assert.ErrorIs(t, err, context.Canceled)

	assert.NoError(t, NewRunner(RunConfig{}, mapper.Utils{}, &recorder{}, nil, nil).Run(context.Background(), nil))
	assert.Error(t, NewRunner(RunConfig{}, mapper.Utils{}, nil, nil, nil).Run(context.Background(), nil))
}

func TestWithRetryReportsFailures(t *testing.T) {
	var attempts []int
	calls := 0
	err := withRetry(context.Background(), 2, time.Millisecond, func(attempt int, _ error) {
		attempts = append(attempts, attempt)
	}, func(context.Context) error {
		calls++
		return errors.New("boom")
	})
	assert.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{0, 1}, attempts)
}
