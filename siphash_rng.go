package hashwx

import "math/bits"

// siphashKey is a 128-bit key split into two 64-bit halves, matching the
// upstream siphash_key layout (k0, k1).
type siphashKey struct {
	k0, k1 uint64
}

// sipRound is the standard 64-bit SipHash ARX round applied to the four
// state words, with rotation constants 13, 16, 32, 17, 21, 32.
func sipRound(v0, v1, v2, v3 uint64) (uint64, uint64, uint64, uint64) {
	v0 += v1
	v2 += v3
	v1 = bits.RotateLeft64(v1, 13)
	v3 = bits.RotateLeft64(v3, 16)
	v1 ^= v0
	v3 ^= v2
	v0 = bits.RotateLeft64(v0, 32)
	v2 += v1
	v0 += v3
	v1 = bits.RotateLeft64(v1, 17)
	v3 = bits.RotateLeft64(v3, 21)
	v1 ^= v2
	v3 ^= v0
	v2 = bits.RotateLeft64(v2, 32)
	return v0, v1, v2, v3
}

// sipRNG is a keyed 64-bit word stream built from SipHash-style rounds. It
// backs both program generation (seeded with key0, salt 0) and per-nonce
// register initialization (seeded with key1, salt = nonce).
type sipRNG struct {
	key   siphashKey
	state [4]uint64
	count uint32
}

// init sets the internal state from the standard SipHash constants XORed
// with the key, mixes in salt, and primes the output counter.
func (g *sipRNG) init(key siphashKey, salt uint64) {
	k0, k1 := key.k0, key.k1
	v0 := uint64(0x736f6d6570736575) ^ k0
	v1 := uint64(0x646f72616e646f6d) ^ k1
	v2 := uint64(0x6c7967656e657261) ^ k0
	v3 := uint64(0x7465646279746573) ^ k1

	v3 ^= salt

	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)

	v0 ^= salt
	v2 ^= 0xbb

	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)

	g.key = key
	g.state = [4]uint64{v0, v1, v2, v3}
	g.count = 4
}

// mix re-keys the exhausted state and applies four more rounds, refilling
// the pool of four output words.
func (g *sipRNG) mix() {
	v0 := g.state[0] ^ g.key.k0
	v1 := g.state[1] ^ g.key.k1
	v2 := g.state[2] ^ g.key.k0
	v3 := g.state[3] ^ g.key.k1

	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)

	g.state = [4]uint64{v0, v1, v2, v3}
}

// next returns the next unused state word, in reverse order (state[3],
// state[2], state[1], state[0]), mixing in a fresh pool of four when
// exhausted.
func (g *sipRNG) next() uint64 {
	if g.count == 0 {
		g.mix()
		g.count = 4
	}
	g.count--
	return g.state[g.count]
}
