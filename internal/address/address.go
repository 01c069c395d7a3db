// Package address renders raw Cardano address bytes in their canonical text
// form: bech32 for Shelley-era addresses, base58 for bootstrap addresses.
package address

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/bech32"
)

// ErrMalformedAddress reports address bytes that match no known layout.
var ErrMalformedAddress = errors.New("address: malformed address bytes")

// Type is the high nibble of the address header byte.
type Type uint8

const (
	TypeBaseKeyKey Type = iota
	TypeBaseScriptKey
	TypeBaseKeyScript
	TypeBaseScriptScript
	TypePointerKey
	TypePointerScript
	TypeEnterpriseKey
	TypeEnterpriseScript
	TypeByron
	TypeRewardKey    Type = 14
	TypeRewardScript Type = 15
)

const (
	hashLen    = 28
	mainnetTag = 1
)

// Render returns the text form of raw.
func Render(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("%w: empty", ErrMalformedAddress)
	}
	typ := Type(raw[0] >> 4)
	network := raw[0] & 0x0f

	var hrp string
	switch typ {
	case TypeBaseKeyKey, TypeBaseScriptKey, TypeBaseKeyScript, TypeBaseScriptScript:
		if len(raw) != 1+2*hashLen {
			return "", malformedLen(typ, raw)
		}
		hrp = "addr"
	case TypePointerKey, TypePointerScript:
		if len(raw) < 1+hashLen+3 {
			return "", malformedLen(typ, raw)
		}
		hrp = "addr"
	case TypeEnterpriseKey, TypeEnterpriseScript:
		if len(raw) != 1+hashLen {
			return "", malformedLen(typ, raw)
		}
		hrp = "addr"
	case TypeRewardKey, TypeRewardScript:
		if len(raw) != 1+hashLen {
			return "", malformedLen(typ, raw)
		}
		hrp = "stake"
	case TypeByron:
		// bootstrap addresses are a CBOR [tagged payload, crc] pair
		if raw[0] != 0x82 || len(raw) < 4 {
			return "", fmt.Errorf("%w: bootstrap address", ErrMalformedAddress)
		}
		return base58.Encode(raw), nil
	default:
		return "", fmt.Errorf("%w: header type %d", ErrMalformedAddress, typ)
	}
	if network != mainnetTag {
		hrp += "_test"
	}

	conv, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedAddress, err)
	}
	out, err := bech32.Encode(hrp, conv)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedAddress, err)
	}
	return out, nil
}

func malformedLen(typ Type, raw []byte) error {
	return fmt.Errorf("%w: header type %d with %d bytes", ErrMalformedAddress, typ, len(raw))
}
