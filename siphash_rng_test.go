package hashwx

import "testing"

func TestSipRNGDeterministic(t *testing.T) {
	key := siphashKey{k0: 0x0102030405060708, k1: 0x1112131415161718}

	var a, b sipRNG
	a.init(key, 42)
	b.init(key, 42)

	for i := 0; i < 20; i++ {
		wa, wb := a.next(), b.next()
		if wa != wb {
			t.Fatalf("word %d: %#x != %#x", i, wa, wb)
		}
	}
}

func TestSipRNGSaltChangesStream(t *testing.T) {
	key := siphashKey{k0: 1, k1: 2}

	var a, b sipRNG
	a.init(key, 0)
	b.init(key, 1)

	if a.next() == b.next() {
		t.Fatalf("different salts produced the same first word")
	}
}

func TestSipRNGKeyChangesStream(t *testing.T) {
	var a, b sipRNG
	a.init(siphashKey{k0: 1, k1: 2}, 7)
	b.init(siphashKey{k0: 3, k1: 4}, 7)

	if a.next() == b.next() {
		t.Fatalf("different keys produced the same first word")
	}
}

func TestSipRNGRefillsPastFourWords(t *testing.T) {
	var g sipRNG
	g.init(siphashKey{k0: 9, k1: 10}, 0)

	seen := make(map[uint64]bool)
	for i := 0; i < 16; i++ {
		w := g.next()
		if seen[w] {
			t.Fatalf("word %d repeated a prior value %#x", i, w)
		}
		seen[w] = true
	}
}
