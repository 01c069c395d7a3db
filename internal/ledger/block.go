package ledger

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"blockScope/internal/model"
)

// Block is the era-independent view of a decoded block.
type Block interface {
	HeaderBody() HeaderBody
	Hash() []byte
	TxCount() int
}

var envelopeEras = map[uint64]model.Era{
	0: model.EraByron,
	1: model.EraByron,
	2: model.EraShelley,
	3: model.EraAllegra,
	4: model.EraMary,
	5: model.EraAlonzo,
	6: model.EraBabbage,
	7: model.EraConway,
}

// EraForTag maps an envelope era tag to its era.
func EraForTag(tag uint64) (model.Era, bool) {
	era, ok := envelopeEras[tag]
	return era, ok
}

// DecodeBlock decodes a multi-era envelope [era_tag, block]. The returned
// block is an *AlonzoBlock for Shelley through Alonzo and a *BabbageBlock for
// Babbage and Conway.
func DecodeBlock(raw []byte) (model.Era, Block, error) {
	var env struct {
		_     struct{} `cbor:",toarray"`
		Tag   uint64
		Block cbor.RawMessage
	}
	if err := cbor.Unmarshal(raw, &env); err != nil {
		return model.EraUndefined, nil, malformed("block envelope", err)
	}
	era, ok := EraForTag(env.Tag)
	if !ok {
		return model.EraUnknown, nil, fmt.Errorf("%w: tag %d", ErrUnsupportedEra, env.Tag)
	}
	switch era {
	case model.EraShelley, model.EraAllegra, model.EraMary, model.EraAlonzo:
		b := &AlonzoBlock{}
		if err := cbor.Unmarshal(env.Block, b); err != nil {
			return era, nil, wrapMalformed(era.String()+" block", err)
		}
		return era, b, nil
	case model.EraBabbage, model.EraConway:
		b := &BabbageBlock{}
		if err := cbor.Unmarshal(env.Block, b); err != nil {
			return era, nil, wrapMalformed(era.String()+" block", err)
		}
		return era, b, nil
	}
	return era, nil, fmt.Errorf("%w: %s", ErrUnsupportedEra, era)
}
