package hashwx

import "math/bits"

func rotr64(a uint64, b uint8) uint64 {
	return bits.RotateLeft64(a, -int(b))
}

// executeRegisterSweep runs one program against the register file only,
// exactly mirroring original_source/src/program_exec.c's
// program_execute_reg.
func executeRegisterSweep(p *program, r *[regSize]uint64, branchCounter uint32) uint32 {
	var branchFlag uint32
	ic := 0
	for {
		instr := &p.code[ic]
		ic++
		switch instr.op {
		case opMulOr:
			r[instr.dst] = (r[instr.dst] | uint64(instr.imm)) * r[instr.src]
		case opMulXor:
			r[instr.dst] = (r[instr.dst] ^ uint64(instr.imm)) * r[instr.src]
		case opMulAdd:
			r[instr.dst] = (r[instr.dst] + uint64(instr.imm)) * r[instr.src]
		case opMulSub:
			r[instr.dst] = (r[instr.dst] - uint64(instr.imm)) * r[instr.src]
		case opRMCG:
			temp := rotr64(r[instr.dst]*r[instr.src], instr.imm)
			r[instr.dst] = temp
			branchFlag = uint32(temp)
		case opXorROR:
			r[instr.dst] = rotr64(r[instr.dst], instr.imm) ^ r[instr.src]
		case opAddROR:
			r[instr.dst] = rotr64(r[instr.dst], instr.imm) + r[instr.src]
		case opSubROR:
			r[instr.dst] = rotr64(r[instr.dst], instr.imm) - r[instr.src]
		case opXorASR:
			r[instr.dst] = uint64(int64(r[instr.dst])>>instr.imm) ^ r[instr.src]
		case opAddASR:
			r[instr.dst] = uint64(int64(r[instr.dst])>>instr.imm) + r[instr.src]
		case opSubASR:
			r[instr.dst] = uint64(int64(r[instr.dst])>>instr.imm) - r[instr.src]
		case opXorLSR:
			r[instr.dst] = (r[instr.dst] >> instr.imm) ^ r[instr.src]
		case opAddLSR:
			r[instr.dst] = (r[instr.dst] >> instr.imm) + r[instr.src]
		case opSubLSR:
			r[instr.dst] = (r[instr.dst] >> instr.imm) - r[instr.src]
		case opBranch:
			if branchCounter != 0 && branchFlag&32 == 0 {
				branchCounter--
				ic = 0
			}
		case opHalt:
			return branchCounter
		}
	}
}

// executeMemorySweep is the memory-window variant: every non-RMCG,
// non-BRANCH, non-HALT instruction replaces its register read of src with
// a gather from the 256-slot window at (r[src] / 8) mod 256.
func executeMemorySweep(p *program, r *[regSize]uint64, branchCounter uint32, mem *[memSize]uint64) uint32 {
	var branchFlag uint32
	ic := 0
	for {
		instr := &p.code[ic]
		ic++
		srcVal := func() uint64 { return mem[(r[instr.src]/8)%memSize] }
		switch instr.op {
		case opMulOr:
			r[instr.dst] = (r[instr.dst] | uint64(instr.imm)) * srcVal()
		case opMulXor:
			r[instr.dst] = (r[instr.dst] ^ uint64(instr.imm)) * srcVal()
		case opMulAdd:
			r[instr.dst] = (r[instr.dst] + uint64(instr.imm)) * srcVal()
		case opMulSub:
			r[instr.dst] = (r[instr.dst] - uint64(instr.imm)) * srcVal()
		case opRMCG:
			temp := rotr64(r[instr.dst]*r[instr.src], instr.imm)
			r[instr.dst] = temp
			branchFlag = uint32(temp)
		case opXorROR:
			r[instr.dst] = rotr64(r[instr.dst], instr.imm) ^ srcVal()
		case opAddROR:
			r[instr.dst] = rotr64(r[instr.dst], instr.imm) + srcVal()
		case opSubROR:
			r[instr.dst] = rotr64(r[instr.dst], instr.imm) - srcVal()
		case opXorASR:
			r[instr.dst] = uint64(int64(r[instr.dst])>>instr.imm) ^ srcVal()
		case opAddASR:
			r[instr.dst] = uint64(int64(r[instr.dst])>>instr.imm) + srcVal()
		case opSubASR:
			r[instr.dst] = uint64(int64(r[instr.dst])>>instr.imm) - srcVal()
		case opXorLSR:
			r[instr.dst] = (r[instr.dst] >> instr.imm) ^ srcVal()
		case opAddLSR:
			r[instr.dst] = (r[instr.dst] >> instr.imm) + srcVal()
		case opSubLSR:
			r[instr.dst] = (r[instr.dst] >> instr.imm) - srcVal()
		case opBranch:
			if branchCounter != 0 && branchFlag&32 == 0 {
				branchCounter--
				ic = 0
			}
		case opHalt:
			return branchCounter
		}
	}
}

// executeProgramList runs the full per-nonce protocol: a register sweep
// over all 32 programs (populating the memory window back-to-front, 8
// registers per program, as original_source/src/program_exec.c does:
// mem[255 - 8*i - j] = r[j]), then a memory sweep over all 32 programs
// against that window.
func executeProgramList(list *programList, r *[regSize]uint64) {
	var mem [memSize]uint64
	branchCounter := uint32(maxBranches)

	for i := 0; i < numPrograms; i++ {
		branchCounter = executeRegisterSweep(&list.prog[i], r, branchCounter)
		for j := 0; j < 8; j++ {
			mem[memSize-1-8*i-j] = r[j]
		}
	}

	branchCounter = maxBranches
	for i := 0; i < numPrograms; i++ {
		branchCounter = executeMemorySweep(&list.prog[i], r, branchCounter, &mem)
	}
}
