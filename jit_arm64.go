//go:build arm64

package hashwx

import "encoding/binary"

const hasNativeBackend = true

const nativeBackend = backendAArch64

// Pinned AArch64 register assignments. x19..x26 (callee-saved) hold the
// eight general hashwx registers; x27 (callee-saved) holds R8 and x16
// holds R9 — both are constant for the whole call since the generator
// never targets them, so each is loaded once in the prologue and never
// written back. x11 is the register-file pointer, x12 the memory-window
// mask (2040), x13 the running count of taken branches, x17 a copy of SP
// taken right after the window is reserved (used for mem-mode
// addressing, since SP itself cannot be a plain ALU operand). x9, x10,
// x14 are scratch; x15 keeps the RMCG branch flag until BRANCH.
const (
	waZR = 31
	xaSP = 31
)

var hwRegA = [8]int{19, 20, 21, 22, 23, 24, 25, 26}

const (
	aPtr    = 11
	aMask   = 12
	aCount  = 13
	aR9     = 16
	aWinPtr = 17
	aScrA   = 9
	aScrB   = 10
	aScrC   = 14
	aScrD   = 15
	aR8     = 27
)

type arm64Asm struct {
	words []uint32
}

func (a *arm64Asm) pos() int { return len(a.words) * 4 }

func (a *arm64Asm) emit(w uint32) { a.words = append(a.words, w) }

func (a *arm64Asm) bytes() []byte {
	out := make([]byte, len(a.words)*4)
	for i, w := range a.words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

func movReg(d, n int) uint32           { return 0xAA0003E0 | uint32(n)<<16 | uint32(d) }
func movzImm(d int, imm uint16) uint32 { return 0xD2800000 | uint32(imm)<<5 | uint32(d) }
func orrReg(d, n, m int) uint32        { return 0xAA000000 | uint32(m)<<16 | uint32(n)<<5 | uint32(d) }
func eorReg(d, n, m int) uint32        { return 0xCA000000 | uint32(m)<<16 | uint32(n)<<5 | uint32(d) }
func addReg(d, n, m int) uint32        { return 0x8B000000 | uint32(m)<<16 | uint32(n)<<5 | uint32(d) }
func subReg(d, n, m int) uint32        { return 0xCB000000 | uint32(m)<<16 | uint32(n)<<5 | uint32(d) }
func andReg(d, n, m int) uint32        { return 0x8A000000 | uint32(m)<<16 | uint32(n)<<5 | uint32(d) }
func mulReg(d, n, m int) uint32        { return 0x9B007C00 | uint32(m)<<16 | uint32(n)<<5 | uint32(d) }
func rorImm(d, n int, sh uint8) uint32 {
	return 0x93C00000 | uint32(n)<<16 | uint32(sh&63)<<10 | uint32(n)<<5 | uint32(d)
}
func asrImm(d, n int, sh uint8) uint32 {
	return 0x9340FC00 | uint32(sh&63)<<16 | uint32(n)<<5 | uint32(d)
}
func lsrImm(d, n int, sh uint8) uint32 {
	return 0xD340FC00 | uint32(sh&63)<<16 | uint32(n)<<5 | uint32(d)
}
func addImm(d, n int, imm uint16) uint32 { return 0x91000000 | uint32(imm)<<10 | uint32(n)<<5 | uint32(d) }
func subImm(d, n int, imm uint16) uint32 { return 0xD1000000 | uint32(imm)<<10 | uint32(n)<<5 | uint32(d) }
func cmpImm(n int, imm uint16) uint32    { return 0xF100001F | uint32(imm)<<10 | uint32(n)<<5 }
func ldrImm(t, n int, off int32) uint32  { return 0xF9400000 | uint32(off/8)<<10 | uint32(n)<<5 | uint32(t) }
func strImm(t, n int, off int32) uint32  { return 0xF9000000 | uint32(off/8)<<10 | uint32(n)<<5 | uint32(t) }
func stpImm(t1, t2, n int, off int32) uint32 {
	return 0xA9000000 | uint32((off/8)&0x7F)<<15 | uint32(t2)<<10 | uint32(n)<<5 | uint32(t1)
}
func ldpImm(t1, t2, n int, off int32) uint32 {
	return 0xA9400000 | uint32((off/8)&0x7F)<<15 | uint32(t2)<<10 | uint32(n)<<5 | uint32(t1)
}
func ret() uint32 { return 0xD65F03C0 }

// bUncond and b-cond / cbz / cbnz leave the imm field zero; callers patch
// it once the target offset is known.
func bUncond() uint32  { return 0x14000000 }
func cbnz(t int) uint32 { return 0xB5000000 | uint32(t) }
func bHS() uint32        { return 0x54000002 } // B.cond, cond=0010 (HS/CS)

func (a *arm64Asm) patchB(wordIdx int, targetBytePos int) {
	rel := int32(targetBytePos-wordIdx*4) / 4
	a.words[wordIdx] = (a.words[wordIdx] &^ 0x03FFFFFF) | (uint32(rel) & 0x03FFFFFF)
}

func (a *arm64Asm) patchCBNZ(wordIdx int, targetBytePos int) {
	rel := int32(targetBytePos-wordIdx*4) / 4
	a.words[wordIdx] = (a.words[wordIdx] &^ (0x7FFFF << 5)) | ((uint32(rel) & 0x7FFFF) << 5)
}

func (a *arm64Asm) patchBcond(wordIdx int, targetBytePos int) {
	rel := int32(targetBytePos-wordIdx*4) / 4
	a.words[wordIdx] = (a.words[wordIdx] &^ (0x7FFFF << 5)) | ((uint32(rel) & 0x7FFFF) << 5)
}

// resolveOperand returns the register holding instr.src's value: the
// pinned register directly in register mode, or a freshly gathered value
// in aScrB (x10) in memory mode.
func (a *arm64Asm) resolveOperand(instr instruction, memMode bool) int {
	srcReg := aR8 // src 8 (slot 0's multiplier) is R8, pinned outside hwRegA
	if instr.src != 8 {
		srcReg = hwRegA[instr.src]
	}
	if !memMode {
		return srcReg
	}
	a.emit(movReg(aScrA, srcReg))         // x9 = r[src]
	a.emit(andReg(aScrA, aScrA, aMask))   // x9 &= mask
	a.emit(addReg(aScrA, aWinPtr, aScrA)) // x9 = winBase + x9
	a.emit(ldrImm(aScrB, aScrA, 0))       // x10 = *x9
	return aScrB
}

func (a *arm64Asm) combine(op opcode, dst, operand int) {
	switch op {
	case opXorROR, opXorASR, opXorLSR, opMulXor:
		a.emit(eorReg(dst, dst, operand))
	case opAddROR, opAddASR, opAddLSR, opMulAdd:
		a.emit(addReg(dst, dst, operand))
	case opSubROR, opSubASR, opSubLSR, opMulSub:
		a.emit(subReg(dst, dst, operand))
	case opMulOr:
		a.emit(orrReg(dst, dst, operand))
	}
}

func (a *arm64Asm) compileInstr(instr instruction, memMode bool, programStart int) {
	dst := hwRegA[instr.dst]

	switch instr.op {
	case opMulOr, opMulXor, opMulAdd, opMulSub:
		a.emit(movzImm(aScrC, uint16(instr.imm)))
		a.combine(instr.op, dst, aScrC)
		operand := a.resolveOperand(instr, memMode)
		a.emit(mulReg(dst, dst, operand))
	case opRMCG:
		a.emit(mulReg(dst, dst, aR9))
		a.emit(rorImm(dst, dst, instr.imm))
		a.emit(movReg(aScrD, dst)) // x15 keeps the branch flag until BRANCH
	case opXorROR, opAddROR, opSubROR:
		a.emit(rorImm(dst, dst, instr.imm))
		operand := a.resolveOperand(instr, memMode)
		a.combine(instr.op, dst, operand)
	case opXorASR, opAddASR, opSubASR:
		a.emit(asrImm(dst, dst, instr.imm))
		operand := a.resolveOperand(instr, memMode)
		a.combine(instr.op, dst, operand)
	case opXorLSR, opAddLSR, opSubLSR:
		a.emit(lsrImm(dst, dst, instr.imm))
		operand := a.resolveOperand(instr, memMode)
		a.combine(instr.op, dst, operand)
	case opBranch:
		a.compileBranch(instr, programStart)
	case opHalt:
		// terminator; no code
	}
}

// compileBranch mirrors jit_amd64.go's compileBranch: taken iff
// (x15 & 32) == 0, x15 being the copy of the slot-4 RMCG result, and the
// taken-count is still below 32.
func (a *arm64Asm) compileBranch(instr instruction, programStart int) {
	a.emit(movzImm(aScrA, 32))
	a.emit(andReg(aScrA, aScrD, aScrA))
	skip1 := a.pos() / 4
	a.emit(cbnz(aScrA)) // bit set -> not taken

	a.emit(cmpImm(aCount, 32))
	skip2 := a.pos() / 4
	a.emit(bHS()) // counter >= 32 -> not taken

	a.emit(addImm(aCount, aCount, 1))
	back := a.pos() / 4
	a.emit(bUncond())
	a.patchB(back, programStart)

	a.patchCBNZ(skip1, a.pos())
	a.patchBcond(skip2, a.pos())
}

// compileNative emits one function following the AAPCS64 convention: on
// entry X0 holds the register-file pointer; callee-saved registers are
// preserved and the mutated general registers are written back before
// RET.
func compileNative(list *programList) []byte {
	a := &arm64Asm{}

	a.emit(subImm(xaSP, xaSP, 96))
	a.emit(stpImm(19, 20, xaSP, 0))
	a.emit(stpImm(21, 22, xaSP, 16))
	a.emit(stpImm(23, 24, xaSP, 32))
	a.emit(stpImm(25, 26, xaSP, 48))
	a.emit(strImm(27, xaSP, 64))

	a.emit(movReg(aPtr, 0)) // x11 = x0 (incoming register-file pointer)

	for i := 0; i < 8; i++ {
		a.emit(ldrImm(hwRegA[i], aPtr, int32(i*8)))
	}
	a.emit(ldrImm(aR8, aPtr, 8*8))
	a.emit(ldrImm(aR9, aPtr, 9*8))

	a.emit(movzImm(aMask, 2040))
	a.emit(subImm(xaSP, xaSP, memWindowBytes))
	a.emit(addImm(aWinPtr, xaSP, 0)) // x17 = sp
	a.emit(movzImm(aCount, 0))

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
			off := int32((memSize - 1 - 8*i - j) * 8)
			a.emit(strImm(hwRegA[j], aWinPtr, off))
		}
	}

	a.emit(movzImm(aCount, 0))

	for i := 0; i < numPrograms; i++ {
		emitProgram(&list.prog[i], true)
	}

	for i := 0; i < 8; i++ {
		a.emit(strImm(hwRegA[i], aPtr, int32(i*8)))
	}

	a.emit(addImm(xaSP, xaSP, memWindowBytes))
	a.emit(ldpImm(19, 20, xaSP, 0))
	a.emit(ldpImm(21, 22, xaSP, 16))
	a.emit(ldpImm(23, 24, xaSP, 32))
	a.emit(ldpImm(25, 26, xaSP, 48))
	a.emit(ldrImm(27, xaSP, 64))
	a.emit(addImm(xaSP, xaSP, 96))
	a.emit(ret())

	return a.bytes()
}
