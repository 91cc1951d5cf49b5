package weight

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"

	"github.com/roach88/accord/internal/ir"
)

// DomainStableHash separates the integrity hash from every other digest.
const DomainStableHash = "accord/weight/stable-hash/v1"

// StableHash returns a 64-bit fingerprint over every transaction field.
//
// Format: first 8 bytes (big-endian) of
//
//	SHA256(domain || 0x00 || len32(sender) || sender || u16(magnitude) ||
//	       len32(intent) || intent || u64(timestamp))
//
// Strings are hashed byte-for-byte without normalization, so distinct
// byte sequences never collide by construction. Integers are big-endian.
func StableHash(tx ir.Transaction) uint64 {
	h := sha256.New()
	h.Write([]byte(DomainStableHash))
	h.Write([]byte{0x00})

	writeString(h, tx.Sender)
	var buf [8]byte
	binary.BigEndian.PutUint16(buf[:2], tx.SignalMagnitude)
	h.Write(buf[:2])
	writeString(h, tx.Intent)
	binary.BigEndian.PutUint64(buf[:], tx.Timestamp)
	h.Write(buf[:])

	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8])
}

func writeString(h hash.Hash, s string) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(s)))
	h.Write(n[:])
	h.Write([]byte(s))
}
