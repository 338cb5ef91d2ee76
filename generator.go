package hashwx

// mulImmSet is the special literal set the JIT's mul-family templates are
// built for (the x86-64 backend folds them straight into an imm8
// or/xor/add; the AArch64 backend loads the immediate into a scratch
// register with MOVZ and then applies orr/eor/add — see jit_arm64.go). Every mul-family
// instruction the generator emits, anywhere in a program, draws its
// immediate from this set.
var mulImmSet = [4]uint8{1, 5, 17, 65}

// freeOpcodes is the pool available to the six slots the generator is
// free to choose (1, 2, 3, 5, 6, 8): the three mul-family combine ops plus
// the nine rotate/shift-combine ops.
var freeOpcodes = func() [12]opcode {
	var o [12]opcode
	copy(o[:3], mulFamily[:])
	copy(o[3:], arxFamily[:])
	return o
}()

// shiftOrRotateImm restricts a 64-bit RNG word to the 1..63 range used by
// every rotate/shift-group immediate (slot 4's RMCG rotation count and
// every ARX-family slot).
func shiftOrRotateImm(w uint64) uint8 {
	return uint8(1 + (w % 63))
}

// generate maps a 128-bit key to a 32-program list, drawing uniform
// 64-bit words from a SipRNG seeded with (key, salt=0) and cutting each
// into opcode/register/immediate fields. See DESIGN.md Open Question 4,
// "Generator field-cutting algorithm": this is an
// original implementation of spec.md §4.2's contract, not a transcription
// of an upstream algorithm.
func generate(key siphashKey) *programList {
	var rng sipRNG
	rng.init(key, 0)

	list := &programList{}
	for p := 0; p < numPrograms; p++ {
		prog := &list.prog[p]
		lastWriter := uint8(0xFF)

		for slot := 0; slot < programSize; slot++ {
			switch slot {
			case slotMul:
				w := rng.next()
				op := mulFamily[w%3]
				dst := uint8((w >> 3) % 8)
				imm := mulImmSet[(w>>11)%4]
				prog.code[slot] = instruction{op: op, dst: dst, src: 8, imm: imm}
				lastWriter = dst

			case slotRMCG:
				w := rng.next()
				dst := uint8((w >> 3) % 8)
				imm := shiftOrRotateImm(w >> 11)
				prog.code[slot] = instruction{op: opRMCG, dst: dst, src: 9, imm: imm}
				lastWriter = dst

			case slotBranch:
				prog.code[slot] = instruction{op: opBranch}

			case slotHalt:
				prog.code[slot] = instruction{op: opHalt}

			default:
				w := rng.next()
				op := freeOpcodes[(w>>1)%12]
				dst := uint8((w >> 5) % 8)
				src := uint8((w >> 8) % 8)
				if src == dst {
					src = (src + 1) % 8
				}
				if dst == lastWriter {
					dst = (dst + 1) % 8
					if src == dst {
						src = (src + 1) % 8
					}
				}
				var imm uint8
				if op.isMulFamily() {
					imm = mulImmSet[(w>>20)%4]
				} else {
					imm = shiftOrRotateImm(w >> 20)
				}
				prog.code[slot] = instruction{op: op, dst: dst, src: src, imm: imm}
				lastWriter = dst
			}
		}
	}
	return list
}
