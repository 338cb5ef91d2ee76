package hashwx

import "testing"

func testKey() siphashKey {
	return siphashKey{k0: 0xdeadbeefcafebabe, k1: 0x0123456789abcdef}
}

func TestGenerateDeterministic(t *testing.T) {
	a := generate(testKey())
	b := generate(testKey())
	if *a != *b {
		t.Fatalf("generate is not deterministic for a fixed key")
	}
}

func TestGenerateSlotShapes(t *testing.T) {
	list := generate(testKey())
	for pi := range list.prog {
		p := &list.prog[pi]

		if !p.code[slotMul].op.isMulFamily() {
			t.Fatalf("program %d slot %d: expected a mul-family op, got %s", pi, slotMul, p.code[slotMul].op)
		}
		if p.code[slotMul].src != 8 {
			t.Fatalf("program %d slot %d: expected src=8 (R8), got %d", pi, slotMul, p.code[slotMul].src)
		}

		if p.code[slotRMCG].op != opRMCG {
			t.Fatalf("program %d slot %d: expected RMCG, got %s", pi, slotRMCG, p.code[slotRMCG].op)
		}
		if p.code[slotRMCG].src != 9 {
			t.Fatalf("program %d slot %d: expected src=9 (R9), got %d", pi, slotRMCG, p.code[slotRMCG].src)
		}

		if p.code[slotBranch].op != opBranch {
			t.Fatalf("program %d slot %d: expected BRANCH, got %s", pi, slotBranch, p.code[slotBranch].op)
		}
		if p.code[slotHalt].op != opHalt {
			t.Fatalf("program %d slot %d: expected HALT, got %s", pi, slotHalt, p.code[slotHalt].op)
		}

		for slot, instr := range p.code {
			if instr.op.isMulFamily() {
				if !isMulImm(instr.imm) {
					t.Fatalf("program %d slot %d: mul-family immediate %d not in {1,5,17,65}", pi, slot, instr.imm)
				}
			}
			if instr.dst > 7 {
				t.Fatalf("program %d slot %d: dst register %d out of range", pi, slot, instr.dst)
			}
		}
	}
}

func isMulImm(v uint8) bool {
	for _, m := range mulImmSet {
		if v == m {
			return true
		}
	}
	return false
}

func TestGenerateDiffersByKey(t *testing.T) {
	a := generate(testKey())
	b := generate(siphashKey{k0: testKey().k0 + 1, k1: testKey().k1})
	if *a == *b {
		t.Fatalf("distinct keys generated identical program lists")
	}
}

func TestShiftOrRotateImmRange(t *testing.T) {
	for w := uint64(0); w < 1000; w++ {
		v := shiftOrRotateImm(w)
		if v < 1 || v > 63 {
			t.Fatalf("shiftOrRotateImm(%d) = %d, want 1..63", w, v)
		}
	}
}
