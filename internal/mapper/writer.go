package mapper

import (
	"go.uber.org/zap"

	"blockScope/internal/address"
	"blockScope/internal/model"
)

// Config selects how much detail the emitted records carry. Every flag is
// independent of the others.
type Config struct {
	IncludeBlockDetails         bool
	IncludeTransactionDetails   bool
	IncludeBlockCbor            bool
	IncludeTransactionEndEvents bool
	IncludeBlockEndEvents       bool
}

// AddressRenderer turns raw address bytes into their text form.
type AddressRenderer func(raw []byte) (string, error)

// TimeProvider converts absolute slots for the chain being crawled.
type TimeProvider interface {
	AbsoluteSlotToRelative(slot uint64) (epoch, epochSlot uint64)
	SlotToWallclock(slot uint64) uint64
}

// Utils carries the collaborators of a writer. Time is optional; a nil
// RenderAddress falls back to address.Render and a nil Logger to a no-op.
type Utils struct {
	RenderAddress AddressRenderer
	Time          TimeProvider
	Logger        *zap.Logger
}

// Appender receives events in emission order.
type Appender interface {
	Append(ev model.Event) error
}

// Buffer collects events in memory.
type Buffer struct {
	Events []model.Event
}

func (b *Buffer) Append(ev model.Event) error {
	b.Events = append(b.Events, ev)
	return nil
}

// EventWriter emits events under a fixed context. It is a value type: child
// writers are copies with a derived context, so a writer handed to a nested
// walk can never alter the context of its parent.
type EventWriter struct {
	context model.EventContext
	output  Appender
	config  Config
	utils   Utils
}

func NewEventWriter(output Appender, utils Utils, config Config) EventWriter {
	if utils.RenderAddress == nil {
		utils.RenderAddress = address.Render
	}
	if utils.Logger == nil {
		utils.Logger = zap.NewNop()
	}
	return EventWriter{output: output, config: config, utils: utils}
}

// ChildWriter returns a writer whose context is this writer's context with
// overrides applied.
func (w EventWriter) ChildWriter(overrides model.EventContext) EventWriter {
	child := w
	child.context = w.context.Derive(overrides)
	return child
}

// Context returns the context events are emitted under.
func (w EventWriter) Context() model.EventContext {
	return w.context.Clone()
}

// Append emits data under the writer's context.
func (w EventWriter) Append(data model.EventData) error {
	return w.output.Append(model.Event{Context: w.context.Clone(), Data: data})
}

// Point identifies a chain position. A nil Hash is the origin.
type Point struct {
	Slot uint64
	Hash []byte
}

// AppendRollback emits a RollBack event for point.
func (w EventWriter) AppendRollback(point Point) error {
	if point.Hash == nil {
		return w.Append(model.RollBackRecord{BlockSlot: 0, BlockHash: ""})
	}
	return w.Append(model.RollBackRecord{BlockSlot: point.Slot, BlockHash: model.ToHex(point.Hash)})
}

func (w EventWriter) computeTimestamp(slot uint64) *uint64 {
	if w.utils.Time == nil {
		return nil
	}
	return model.Ptr(w.utils.Time.SlotToWallclock(slot))
}

func (w EventWriter) relativeSlot(slot uint64) (epoch, epochSlot *uint64) {
	if w.utils.Time == nil {
		return nil, nil
	}
	e, s := w.utils.Time.AbsoluteSlotToRelative(slot)
	return &e, &s
}

func (w EventWriter) renderAddress(raw []byte) (string, error) {
	return w.utils.RenderAddress(raw)
}
