// Package fingerprint assigns each event a stable identifier of the form
// {slot}.{kind}.{hash}, where hash is the xxhash64 of the event's canonical
// JSON rendition.
package fingerprint

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"blockScope/internal/model"
)

// Compute returns the fingerprint of ev. An existing fingerprint on ev is
// ignored, so recomputing is idempotent. Events without a slot in their
// context use slot 0.
func Compute(ev model.Event) (string, error) {
	if ev.Data == nil {
		return "", fmt.Errorf("fingerprint: event without data")
	}
	ev.Fingerprint = nil
	doc, err := json.Marshal(ev)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}

	var slot uint64
	if ev.Context.Slot != nil {
		slot = *ev.Context.Slot
	}
	sum := xxhash.Sum64(doc)
	return strconv.FormatUint(slot, 10) + "." + ev.Data.Kind().Key() + "." + fmt.Sprintf("%016x", sum), nil
}

// Appender is the downstream of a Stage.
type Appender interface {
	Append(ev model.Event) error
}

// Stage fingerprints events before handing them to the next appender.
type Stage struct {
	next Appender
}

func NewStage(next Appender) *Stage {
	return &Stage{next: next}
}

func (s *Stage) Append(ev model.Event) error {
	fp, err := Compute(ev)
	if err != nil {
		return err
	}
	ev.Fingerprint = &fp
	return s.next.Append(ev)
}
