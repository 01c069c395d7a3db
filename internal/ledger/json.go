package ledger

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

type plutusPairJSON struct {
	K PlutusData `json:"k"`
	V PlutusData `json:"v"`
}

// MarshalJSON renders the detailed schema used by cardano-cli.
func (p PlutusData) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case PlutusConstr:
		fields := p.Fields
		if fields == nil {
			fields = []PlutusData{}
		}
		return json.Marshal(struct {
			Constructor uint64       `json:"constructor"`
			Fields      []PlutusData `json:"fields"`
		}{p.Constructor, fields})
	case PlutusMap:
		pairs := make([]plutusPairJSON, 0, len(p.Pairs))
		for _, kv := range p.Pairs {
			pairs = append(pairs, plutusPairJSON{K: kv.Key, V: kv.Value})
		}
		return json.Marshal(map[string]any{"map": pairs})
	case PlutusInt:
		if p.Int == nil {
			return nil, fmt.Errorf("plutus int without value")
		}
		return []byte(`{"int":` + p.Int.String() + `}`), nil
	case PlutusBytes:
		return json.Marshal(map[string]string{"bytes": hex.EncodeToString(p.Bytes)})
	case PlutusList:
		list := p.Fields
		if list == nil {
			list = []PlutusData{}
		}
		return json.Marshal(map[string][]PlutusData{"list": list})
	}
	return nil, fmt.Errorf("unknown plutus data kind %d", p.Kind)
}

var nativeScriptTypeNames = [...]string{
	ScriptPubkey:     "sig",
	ScriptAll:        "all",
	ScriptAny:        "any",
	ScriptNOfK:       "atLeast",
	InvalidBefore:    "after",
	InvalidHereafter: "before",
}

func (t NativeScriptType) String() string {
	if int(t) < len(nativeScriptTypeNames) {
		return nativeScriptTypeNames[t]
	}
	return fmt.Sprintf("NativeScriptType(%d)", uint8(t))
}

// MarshalJSON renders the cardano-cli simple script format.
func (s NativeScript) MarshalJSON() ([]byte, error) {
	doc := map[string]any{"type": s.Type.String()}
	scripts := s.Scripts
	if scripts == nil {
		scripts = []NativeScript{}
	}
	switch s.Type {
	case ScriptPubkey:
		doc["keyHash"] = hex.EncodeToString(s.KeyHash)
	case ScriptAll, ScriptAny:
		doc["scripts"] = scripts
	case ScriptNOfK:
		doc["required"] = s.Required
		doc["scripts"] = scripts
	case InvalidBefore, InvalidHereafter:
		doc["slot"] = s.Slot
	default:
		return nil, fmt.Errorf("unknown native script type %d", s.Type)
	}
	return json.Marshal(doc)
}
