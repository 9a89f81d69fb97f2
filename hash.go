package bytetable

// FNV-1a constants. The 32-bit offset basis and prime are carried in a
// 64-bit word, so the intermediate hash wraps at 64 bits rather than 32.
const (
	fnvOffsetBasis = 2166136261
	fnvPrime       = 16777619
)

// fnv1a hashes a key byte-wise with the FNV-1a scheme: XOR each byte into
// the accumulator, then multiply by the FNV prime. The result is
// deterministic and order-sensitive for any byte sequence, including keys
// with embedded zero bytes; no terminator is assumed.
func fnv1a(key []byte) uint64 {
	h := uint64(fnvOffsetBasis)
	for _, b := range key {
		h ^= uint64(b)
		h *= fnvPrime
	}
	return h
}
