package model

// EventContext holds the hierarchy coordinates of an event. Every field is
// optional; a nil field means the coordinate is not meaningful at the depth
// the event was emitted from.
type EventContext struct {
	BlockHash      *string `json:"block_hash"`
	BlockNumber    *uint64 `json:"block_number"`
	Slot           *uint64 `json:"slot"`
	Timestamp      *uint64 `json:"timestamp"`
	TxIdx          *int    `json:"tx_idx"`
	TxHash         *string `json:"tx_hash"`
	InputIdx       *int    `json:"input_idx"`
	OutputIdx      *int    `json:"output_idx"`
	OutputAddress  *string `json:"output_address"`
	CertificateIdx *int    `json:"certificate_idx"`
}

// Derive returns a new context with every non-nil field of overrides applied
// on top of c. Fields left nil in overrides are inherited unchanged; neither
// c nor overrides is modified, and the result shares no storage with either.
func (c EventContext) Derive(overrides EventContext) EventContext {
	child := c.Clone()
	if overrides.BlockHash != nil {
		child.BlockHash = Ptr(*overrides.BlockHash)
	}
	if overrides.BlockNumber != nil {
		child.BlockNumber = Ptr(*overrides.BlockNumber)
	}
	if overrides.Slot != nil {
		child.Slot = Ptr(*overrides.Slot)
	}
	if overrides.Timestamp != nil {
		child.Timestamp = Ptr(*overrides.Timestamp)
	}
	if overrides.TxIdx != nil {
		child.TxIdx = Ptr(*overrides.TxIdx)
	}
	if overrides.TxHash != nil {
		child.TxHash = Ptr(*overrides.TxHash)
	}
	if overrides.InputIdx != nil {
		child.InputIdx = Ptr(*overrides.InputIdx)
	}
	if overrides.OutputIdx != nil {
		child.OutputIdx = Ptr(*overrides.OutputIdx)
	}
	if overrides.OutputAddress != nil {
		child.OutputAddress = Ptr(*overrides.OutputAddress)
	}
	if overrides.CertificateIdx != nil {
		child.CertificateIdx = Ptr(*overrides.CertificateIdx)
	}
	return child
}

// Clone returns a copy of c backed by fresh storage.
func (c EventContext) Clone() EventContext {
	return EventContext{
		BlockHash:      clonePtr(c.BlockHash),
		BlockNumber:    clonePtr(c.BlockNumber),
		Slot:           clonePtr(c.Slot),
		Timestamp:      clonePtr(c.Timestamp),
		TxIdx:          clonePtr(c.TxIdx),
		TxHash:         clonePtr(c.TxHash),
		InputIdx:       clonePtr(c.InputIdx),
		OutputIdx:      clonePtr(c.OutputIdx),
		OutputAddress:  clonePtr(c.OutputAddress),
		CertificateIdx: clonePtr(c.CertificateIdx),
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	return Ptr(*p)
}

// BlockContext builds the overrides for entering a block.
func BlockContext(hash string, number, slot uint64, timestamp *uint64) EventContext {
	ctx := EventContext{
		BlockHash:   Ptr(hash),
		BlockNumber: Ptr(number),
		Slot:        Ptr(slot),
	}
	if timestamp != nil {
		ctx.Timestamp = Ptr(*timestamp)
	}
	return ctx
}

// TxContext builds the overrides for entering a transaction.
func TxContext(idx int, hash string) EventContext {
	return EventContext{TxIdx: Ptr(idx), TxHash: Ptr(hash)}
}

// InputContext builds the overrides for entering an input.
func InputContext(idx int) EventContext {
	return EventContext{InputIdx: Ptr(idx)}
}

// OutputContext builds the overrides for entering an output.
func OutputContext(idx int) EventContext {
	return EventContext{OutputIdx: Ptr(idx)}
}

// OutputAddressContext builds the overrides for the children of an output.
func OutputAddressContext(address string) EventContext {
	return EventContext{OutputAddress: Ptr(address)}
}

// CertificateContext builds the overrides for entering a certificate.
func CertificateContext(idx int) EventContext {
	return EventContext{CertificateIdx: Ptr(idx)}
}
