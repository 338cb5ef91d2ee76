//go:build amd64

package hashwx

import "encoding/binary"

// hasNativeBackend is read by context.go to decide whether
// HASHWX_COMPILED is available on this GOARCH; nativeBackend names it.
const hasNativeBackend = true

const nativeBackend = backendX86_64

// Pinned x86-64 register assignments, per spec.md §4.4. The eight general
// hashwx registers live in r8..r15; R8 (always constant, since the
// generator never targets it) lives in rbx; the register-file pointer
// lives in rcx; the memory-window mask constant (2040 = 0x7F8, masking
// r[src] down to a byte offset into the 256-slot window) lives in rbp;
// the running count of taken branches lives in rsi. rax is scratch; rdx
// loads R9 for RMCG and then keeps the branch flag until BRANCH.
const (
	encRAX = 0
	encRCX = 1
	encRDX = 2
	encRBX = 3
	encRSP = 4
	encRBP = 5
	encRSI = 6
	encRDI = 7
)

// hwRegEnc maps a hashwx general register index (0..7) to its pinned
// x86-64 register encoding (r8..r15).
var hwRegEnc = [8]int{8, 9, 10, 11, 12, 13, 14, 15}

const (
	regPtr     = encRCX
	regR8const = encRBX
	regMask    = encRBP
	regCounter = encRSI
	regScratch = encRAX
)

type amd64Asm struct {
	buf []byte
}

func (a *amd64Asm) pos() int { return len(a.buf) }

func (a *amd64Asm) b(bytes ...byte) { a.buf = append(a.buf, bytes...) }

func (a *amd64Asm) u32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	a.buf = append(a.buf, tmp[:]...)
}

func (a *amd64Asm) i32(v int32) { a.u32(uint32(v)) }

func rex(w, r, x, bBit bool) byte {
	v := byte(0x40)
	if w {
		v |= 0x08
	}
	if r {
		v |= 0x04
	}
	if x {
		v |= 0x02
	}
	if bBit {
		v |= 0x01
	}
	return v
}

func modrmReg(reg, rm int) byte {
	return 0xC0 | byte((reg&7)<<3) | byte(rm&7)
}

// aluRegReg emits a two-byte-or-longer "reg, r/m" ALU op where both
// operands are plain registers: opcodeBytes(dstReg, rmReg).
func (a *amd64Asm) aluRegReg(opcodeBytes []byte, dstReg, rmReg int) {
	a.b(rex(true, dstReg >= 8, false, rmReg >= 8))
	a.b(opcodeBytes...)
	a.b(modrmReg(dstReg, rmReg))
}

// aluRegMem emits a "reg, [rsp+rax]" ALU op: the memory-sweep gather
// operand, base rsp + index rax (no scale), zero displacement.
func (a *amd64Asm) aluRegMem(opcodeBytes []byte, dstReg int) {
	a.b(rex(true, dstReg >= 8, false, false))
	a.b(opcodeBytes...)
	a.b(0x00 | byte((dstReg&7)<<3) | 0x04) // mod=00, rm=100 (SIB follows)
	a.b(0x04)                              // SIB: scale=0, index=rax(0), base=rsp(4)
}

// group1RegImm8 emits an immediate group-1 ALU op (ADD/OR/AND/SUB/XOR/CMP)
// against a register operand: opcode 0x83 /ext ib.
func (a *amd64Asm) group1RegImm8(ext byte, reg int, imm int64) {
	a.b(rex(true, false, false, reg >= 8))
	a.b(0x83)
	a.b(0xC0 | (ext&7)<<3 | byte(reg&7))
	a.b(byte(imm))
}

// shiftRegImm8 emits a group-2 shift/rotate op: opcode 0xC1 /ext ib.
func (a *amd64Asm) shiftRegImm8(ext byte, reg int, imm uint8) {
	a.b(rex(true, false, false, reg >= 8))
	a.b(0xC1)
	a.b(0xC0 | (ext&7)<<3 | byte(reg&7))
	a.b(imm)
}

func (a *amd64Asm) movRegFromPtr(reg int, disp8 byte) {
	a.b(rex(true, reg >= 8, false, false))
	a.b(0x8B)
	a.b(0x40 | byte((reg&7)<<3) | byte(regPtr&7))
	a.b(disp8)
}

func (a *amd64Asm) movPtrFromReg(reg int, disp8 byte) {
	a.b(rex(true, reg >= 8, false, false))
	a.b(0x89)
	a.b(0x40 | byte((reg&7)<<3) | byte(regPtr&7))
	a.b(disp8)
}

// movStackStore stores reg into [rsp+disp32], no index.
func (a *amd64Asm) movStackStore(reg int, disp int32) {
	a.b(rex(true, reg >= 8, false, false))
	a.b(0x89)
	a.b(0x80 | byte((reg&7)<<3) | 0x04)
	a.b(0x24) // SIB: no index, base=rsp
	a.i32(disp)
}

func (a *amd64Asm) movImm32(reg int, imm uint32) {
	if reg >= 8 {
		a.b(0x41)
	}
	a.b(0xB8 + byte(reg&7))
	a.u32(imm)
}

func (a *amd64Asm) xorReg64(reg int) {
	a.b(rex(true, reg >= 8, false, reg >= 8))
	a.b(0x31)
	a.b(modrmReg(reg, reg))
}

func (a *amd64Asm) push(reg int) {
	if reg >= 8 {
		a.b(0x41)
	}
	a.b(0x50 + byte(reg&7))
}

func (a *amd64Asm) pop(reg int) {
	if reg >= 8 {
		a.b(0x41)
	}
	a.b(0x58 + byte(reg&7))
}

func (a *amd64Asm) subRspImm32(imm int32) {
	a.b(0x48, 0x81, 0xEC)
	a.i32(imm)
}

func (a *amd64Asm) addRspImm32(imm int32) {
	a.b(0x48, 0x81, 0xC4)
	a.i32(imm)
}

func (a *amd64Asm) ret() { a.b(0xC3) }

// jmpNear emits an unconditional near jump and returns the offset of its
// 4-byte rel32 field, which must be patched once the target is known.
func (a *amd64Asm) jmpNear() int {
	a.b(0xE9)
	off := a.pos()
	a.i32(0)
	return off
}

// jccNear condition codes we need: JNZ (0x85), JAE (0x83).
func (a *amd64Asm) jccNear(cc byte) int {
	a.b(0x0F, cc)
	off := a.pos()
	a.i32(0)
	return off
}

func (a *amd64Asm) patchRel32(fieldOff int) {
	rel := int32(a.pos() - (fieldOff + 4))
	binary.LittleEndian.PutUint32(a.buf[fieldOff:], uint32(rel))
}

func (a *amd64Asm) patchRel32To(fieldOff, target int) {
	rel := int32(target - (fieldOff + 4))
	binary.LittleEndian.PutUint32(a.buf[fieldOff:], uint32(rel))
}

// amd64ALU tables: opcode bytes for the "reg, r/m" direction (dst is reg
// field, operand is r/m field), usable uniformly for a register or the
// [rsp+rax] memory operand.
var (
	opAddRM  = []byte{0x03}
	opXorRM  = []byte{0x33}
	opSubRM  = []byte{0x2B}
	opImulRM = []byte{0x0F, 0xAF}
)

const (
	grp1Add = 0
	grp1Sub = 5
	grp1Xor = 6

	grp2Ror = 1
	grp2Sar = 7
	grp2Shr = 5
)

// compileInstr emits one instruction's translation. memMode selects
// whether non-RMCG/BRANCH/HALT operands gather through the stack memory
// window (spec.md §4.3's memory variant) or read a register directly.
func (a *amd64Asm) compileInstr(instr instruction, memMode bool, programStart int) {
	dst := hwRegEnc[instr.dst]

	// src 8 (slot 0's multiplier) is R8, pinned in rbx outside hwRegEnc.
	srcReg := func() int {
		if instr.src == 8 {
			return regR8const
		}
		return hwRegEnc[instr.src]
	}
	operand := func() {
		if !memMode {
			return
		}
		// rax = r[src] & mask(rbp); operand becomes [rsp+rax].
		a.aluRegReg([]byte{0x8B}, regScratch, srcReg())
		a.aluRegReg([]byte{0x23}, regScratch, regMask)
	}
	combine := func(op []byte) {
		if memMode {
			operand()
			a.aluRegMem(op, dst)
		} else {
			a.aluRegReg(op, dst, srcReg())
		}
	}

	switch instr.op {
	case opMulOr:
		a.group1RegImm8(1 /* OR */, dst, int64(instr.imm))
		combine(opImulRM)
	case opMulXor:
		a.group1RegImm8(grp1Xor, dst, int64(instr.imm))
		combine(opImulRM)
	case opMulAdd:
		a.group1RegImm8(grp1Add, dst, int64(instr.imm))
		combine(opImulRM)
	case opMulSub:
		a.group1RegImm8(grp1Sub, dst, int64(instr.imm))
		combine(opImulRM)
	case opRMCG:
		// src is always R9, which is not pinned; load it into rdx.
		a.movRegFromPtr(encRDX, 9*8)
		a.aluRegReg(opImulRM, dst, encRDX)
		a.shiftRegImm8(grp2Ror, dst, instr.imm)
		// Copy the result to rdx: its low 32 bits are the branch flag that
		// compileBranch tests, even if slot 5 or 6 overwrites dst.
		a.aluRegReg([]byte{0x8B}, encRDX, dst)
	case opXorROR:
		a.shiftRegImm8(grp2Ror, dst, instr.imm)
		combine(opXorRM)
	case opAddROR:
		a.shiftRegImm8(grp2Ror, dst, instr.imm)
		combine(opAddRM)
	case opSubROR:
		a.shiftRegImm8(grp2Ror, dst, instr.imm)
		combine(opSubRM)
	case opXorASR:
		a.shiftRegImm8(grp2Sar, dst, instr.imm)
		combine(opXorRM)
	case opAddASR:
		a.shiftRegImm8(grp2Sar, dst, instr.imm)
		combine(opAddRM)
	case opSubASR:
		a.shiftRegImm8(grp2Sar, dst, instr.imm)
		combine(opSubRM)
	case opXorLSR:
		a.shiftRegImm8(grp2Shr, dst, instr.imm)
		combine(opXorRM)
	case opAddLSR:
		a.shiftRegImm8(grp2Shr, dst, instr.imm)
		combine(opAddRM)
	case opSubLSR:
		a.shiftRegImm8(grp2Shr, dst, instr.imm)
		combine(opSubRM)
	case opBranch:
		a.compileBranch(instr, programStart)
	case opHalt:
		// terminator; no code
	}
}

// compileBranch emits: if (rdx & 32) == 0 && counter < 32 { counter++; goto programStart }
// where rdx holds the copy of the slot-4 RMCG result.
func (a *amd64Asm) compileBranch(instr instruction, programStart int) {
	a.b(0xF7, 0xC0|byte(encRDX)) // test edx, imm32
	a.u32(32)
	skip1 := a.jccNear(0x85) // JNZ skip (flag bit set -> not taken)

	a.group1RegImm8(7 /* CMP */, regCounter, 32)
	skip2 := a.jccNear(0x83) // JAE skip (counter >= 32 -> not taken)

	a.group1RegImm8(grp1Add, regCounter, 1)
	back := a.jmpNear()
	a.patchRel32To(back, programStart)

	a.patchRel32(skip1)
	a.patchRel32(skip2)
}

// compileNative emits one monolithic function implementing the full
// register-sweep/memory-sweep protocol for list, following the System V
// AMD64 calling convention: on entry RDI holds the register-file pointer
// (ten uint64 slots); the function preserves callee-saved registers and
// returns via RET with all mutated general registers written back.
func compileNative(list *programList) []byte {
	a := &amd64Asm{}

	a.push(encRBX)
	a.push(encRBP)
	a.push(12)
	a.push(13)
	a.push(14)
	a.push(15)

	// rcx = register-file pointer (arg arrives in rdi, per call_amd64.s).
	a.aluRegReg([]byte{0x8B}, regPtr, encRDI)

	for i := 0; i < 8; i++ {
		a.movRegFromPtr(hwRegEnc[i], byte(i*8))
	}
	a.movRegFromPtr(regR8const, 8*8)

	a.movImm32(regMask, 2040)
	a.subRspImm32(memWindowBytes)
	a.xorReg64(regCounter)

	emitProgram := func(p *program, memMode bool) int {
		start := a.pos()
		for slot := 0; slot < programSize; slot++ {
			a.compileInstr(p.code[slot], memMode, start)
		}
		return start
	}

	for i := 0; i < numPrograms; i++ {
		emitProgram(&list.prog[i], false)
		for j := 0; j < 8; j++ {
			disp := int32((memSize - 1 - 8*i - j) * 8)
			a.movStackStore(hwRegEnc[j], disp)
		}
	}

	a.xorReg64(regCounter)

	for i := 0; i < numPrograms; i++ {
		emitProgram(&list.prog[i], true)
	}

	for i := 0; i < 8; i++ {
		a.movPtrFromReg(hwRegEnc[i], byte(i*8))
	}
	a.addRspImm32(memWindowBytes)

	a.pop(15)
	a.pop(14)
	a.pop(13)
	a.pop(12)
	a.pop(encRBP)
	a.pop(encRBX)
	a.ret()

	return a.buf
}
