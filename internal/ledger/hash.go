package ledger

import (
	"github.com/ethereum/go-ethereum/crypto/blake2b"
)

// Script hash prefixes, one per script language.
const (
	nativeScriptPrefix   byte = 0x00
	plutusV1ScriptPrefix byte = 0x01
	plutusV2ScriptPrefix byte = 0x02
	plutusV3ScriptPrefix byte = 0x03
)

// Hash256 is the 32-byte digest used for block, transaction and datum ids.
func Hash256(data []byte) []byte {
	sum := blake2b.Sum256(data)
	return sum[:]
}

// Hash224 is the 28-byte digest used for key and script hashes.
func Hash224(data ...[]byte) []byte {
	h, err := blake2b.New(28, nil)
	if err != nil {
		// only reachable with an invalid size or key
		panic(err)
	}
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

func scriptHash(prefix byte, script []byte) []byte {
	return Hash224([]byte{prefix}, script)
}
