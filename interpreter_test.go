package hashwx

import "testing"

func initRegs(rng *sipRNG) [regSize]uint64 {
	var r [regSize]uint64
	for i := 0; i < 8; i++ {
		r[i] = rng.next()
	}
	r[8] = (r[4] &^ 7) | 3
	r[9] = (r[7] &^ 7) | 5
	return r
}

func TestExecuteProgramListDeterministic(t *testing.T) {
	list := generate(testKey())

	var rngA, rngB sipRNG
	rngA.init(siphashKey{k0: 1, k1: 2}, 99)
	rngB.init(siphashKey{k0: 1, k1: 2}, 99)

	ra := initRegs(&rngA)
	rb := initRegs(&rngB)

	executeProgramList(list, &ra)
	executeProgramList(list, &rb)

	if ra != rb {
		t.Fatalf("identical inputs produced different register files")
	}
}

func TestExecuteProgramListNonceSensitive(t *testing.T) {
	list := generate(testKey())

	var rngA, rngB sipRNG
	rngA.init(siphashKey{k0: 1, k1: 2}, 1)
	rngB.init(siphashKey{k0: 1, k1: 2}, 2)

	ra := initRegs(&rngA)
	rb := initRegs(&rngB)

	executeProgramList(list, &ra)
	executeProgramList(list, &rb)

	if ra == rb {
		t.Fatalf("different nonces produced identical register files")
	}
}

func TestExecuteProgramListPreservesR8R9Residues(t *testing.T) {
	list := generate(testKey())

	var rng sipRNG
	rng.init(siphashKey{k0: 5, k1: 6}, 7)
	r := initRegs(&rng)

	if r[8]%8 != 3 {
		t.Fatalf("R8 not 3 mod 8 before execution: %d", r[8]%8)
	}
	if r[9]%8 != 5 {
		t.Fatalf("R9 not 5 mod 8 before execution: %d", r[9]%8)
	}

	executeProgramList(list, &r)
	// The generator never targets R8/R9 as a write destination, so their
	// residues survive the whole run untouched.
	if r[8]%8 != 3 {
		t.Fatalf("R8 residue changed by execution: %d", r[8]%8)
	}
	if r[9]%8 != 5 {
		t.Fatalf("R9 residue changed by execution: %d", r[9]%8)
	}
}
