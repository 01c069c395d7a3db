package fingerprint

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockScope/internal/model"
)

type collector struct {
	events []model.Event
}

func (c *collector) Append(ev model.Event) error {
	c.events = append(c.events, ev)
	return nil
}

func TestComputeFormat(t *testing.T) {
	ev := model.Event{
		Context: model.BlockContext("ab", 1, 1234, nil),
		Data:    model.TxInputRecord{TxID: "cd", Index: 2},
	}
	fp, err := Compute(ev)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^1234\.tx_input\.[0-9a-f]{16}$`), fp)

	again, err := Compute(ev)
	require.NoError(t, err)
	assert.Equal(t, fp, again)
}

func TestComputeDistinguishesContext(t *testing.T) {
	data := model.TxInputRecord{TxID: "cd", Index: 2}
	a, err := Compute(model.Event{Context: model.InputContext(0), Data: data})
	require.NoError(t, err)
	b, err := Compute(model.Event{Context: model.InputContext(1), Data: data})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^0\.tx_input\.`, a)
}

func TestComputeIgnoresExistingFingerprint(t *testing.T) {
	ev := model.Event{Data: model.RollBackRecord{BlockSlot: 3}}
	want, err := Compute(ev)
	require.NoError(t, err)

	stale := "stale"
	ev.Fingerprint = &stale
	got, err := Compute(ev)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStageSetsFingerprint(t *testing.T) {
	next := &collector{}
	stage := NewStage(next)
	require.NoError(t, stage.Append(model.Event{Data: model.RollBackRecord{BlockSlot: 3}}))
	require.Len(t, next.events, 1)
	require.NotNil(t, next.events[0].Fingerprint)

	_, err := Compute(model.Event{})
	assert.Error(t, err)
}
