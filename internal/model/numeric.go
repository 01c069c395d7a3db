package model

import "encoding/hex"

// RationalNumberRecord is an exact fraction.
type RationalNumberRecord struct {
	Numerator   uint64 `json:"numerator"`
	Denominator uint64 `json:"denominator"`
}

// UnitIntervalRecord is a fraction in [0, 1], rendered as a [num, den] pair.
type UnitIntervalRecord [2]uint64

// PositiveIntervalRecord is a fraction in (0, inf).
type PositiveIntervalRecord struct {
	Numerator   uint64 `json:"numerator"`
	Denominator uint64 `json:"denominator"`
}

// ExUnitsRecord is a script execution budget.
type ExUnitsRecord struct {
	Mem   uint32 `json:"mem"`
	Steps uint64 `json:"steps"`
}

// ExUnitPricesRecord prices memory and CPU steps.
type ExUnitPricesRecord struct {
	MemPrice  PositiveIntervalRecord `json:"mem_price"`
	StepPrice PositiveIntervalRecord `json:"step_price"`
}

// NonceVariantRecord distinguishes a neutral nonce from a hashed one.
type NonceVariantRecord string

const (
	NeutralNonce NonceVariantRecord = "NeutralNonce"
	HashedNonce  NonceVariantRecord = "Nonce"
)

// NonceRecord is the extra-entropy parameter.
type NonceRecord struct {
	Variant NonceVariantRecord `json:"variant"`
	Hash    *string            `json:"hash"`
}

// ToHex renders bytes as lowercase hex without prefix.
func ToHex(b []byte) string {
	return hex.EncodeToString(b)
}

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T {
	return &v
}
