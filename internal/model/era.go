package model

import (
	"encoding/json"
	"fmt"
)

// Era identifies the ledger schema generation a block was encoded with.
type Era uint8

const (
	EraUndefined Era = iota
	EraUnknown
	EraByron
	EraShelley
	EraAllegra
	EraMary
	EraAlonzo
	EraBabbage
	EraConway
)

var eraNames = [...]string{
	EraUndefined: "Undefined",
	EraUnknown:   "Unknown",
	EraByron:     "Byron",
	EraShelley:   "Shelley",
	EraAllegra:   "Allegra",
	EraMary:      "Mary",
	EraAlonzo:    "Alonzo",
	EraBabbage:   "Babbage",
	EraConway:    "Conway",
}

// AllEras lists every era tag in ledger order.
func AllEras() []Era {
	eras := make([]Era, 0, len(eraNames))
	for i := range eraNames {
		eras = append(eras, Era(i))
	}
	return eras
}

func (e Era) String() string {
	if int(e) < len(eraNames) {
		return eraNames[e]
	}
	return fmt.Sprintf("Era(%d)", uint8(e))
}

func (e Era) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

// ParseEra resolves an era name as produced by String.
func ParseEra(name string) (Era, error) {
	for i, n := range eraNames {
		if n == name {
			return Era(i), nil
		}
	}
	return EraUnknown, fmt.Errorf("unknown era: %s", name)
}
