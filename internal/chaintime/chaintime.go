// Package chaintime converts absolute slots into epochs and wall-clock time
// for a given network.
package chaintime

import (
	"fmt"
	"strings"
)

// Network holds the era boundary constants of one network. Lengths are in
// seconds; slot lengths in seconds per slot.
type Network struct {
	Name string

	ByronKnownTime   uint64
	ByronSlotLength  uint64
	ByronEpochLength uint64

	ShelleyKnownSlot   uint64
	ShelleyKnownTime   uint64
	ShelleySlotLength  uint64
	ShelleyEpochLength uint64
}

var (
	Mainnet = Network{
		Name:               "mainnet",
		ByronKnownTime:     1506203091,
		ByronSlotLength:    20,
		ByronEpochLength:   432000,
		ShelleyKnownSlot:   4492800,
		ShelleyKnownTime:   1596059091,
		ShelleySlotLength:  1,
		ShelleyEpochLength: 432000,
	}
	Preprod = Network{
		Name:               "preprod",
		ByronKnownTime:     1654041600,
		ByronSlotLength:    20,
		ByronEpochLength:   432000,
		ShelleyKnownSlot:   86400,
		ShelleyKnownTime:   1655769600,
		ShelleySlotLength:  1,
		ShelleyEpochLength: 432000,
	}
	Preview = Network{
		Name:               "preview",
		ByronKnownTime:     1666656000,
		ByronSlotLength:    20,
		ByronEpochLength:   86400,
		ShelleyKnownSlot:   0,
		ShelleyKnownTime:   1666656000,
		ShelleySlotLength:  1,
		ShelleyEpochLength: 86400,
	}
)

// Lookup resolves a network by name. "none" and "" resolve to ok=false with
// no error.
func Lookup(name string) (Network, bool, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return Network{}, false, nil
	case Mainnet.Name:
		return Mainnet, true, nil
	case Preprod.Name:
		return Preprod, true, nil
	case Preview.Name:
		return Preview, true, nil
	}
	return Network{}, false, fmt.Errorf("unknown network: %s", name)
}

// Provider converts slots for one network.
type Provider struct {
	net Network
}

func NewProvider(net Network) *Provider {
	return &Provider{net: net}
}

func (p *Provider) byronSlotsPerEpoch() uint64 {
	return p.net.ByronEpochLength / p.net.ByronSlotLength
}

func (p *Provider) shelleySlotsPerEpoch() uint64 {
	return p.net.ShelleyEpochLength / p.net.ShelleySlotLength
}

// AbsoluteSlotToRelative returns the epoch of slot and the slot's offset
// within that epoch.
func (p *Provider) AbsoluteSlotToRelative(slot uint64) (epoch, epochSlot uint64) {
	byron := p.byronSlotsPerEpoch()
	if slot < p.net.ShelleyKnownSlot {
		return slot / byron, slot % byron
	}
	startEpoch := p.net.ShelleyKnownSlot / byron
	shelley := p.shelleySlotsPerEpoch()
	eraSlot := slot - p.net.ShelleyKnownSlot
	return startEpoch + eraSlot/shelley, eraSlot % shelley
}

// SlotToWallclock returns the unix time in seconds at which slot starts.
func (p *Provider) SlotToWallclock(slot uint64) uint64 {
	if slot < p.net.ShelleyKnownSlot {
		return p.net.ByronKnownTime + slot*p.net.ByronSlotLength
	}
	return p.net.ShelleyKnownTime + (slot-p.net.ShelleyKnownSlot)*p.net.ShelleySlotLength
}
