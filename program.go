package hashwx

const (
	programSize = 10  // instruction slots per program
	numPrograms = 32  // programs per list, executed twice per hash
	regSize     = 10  // register file width (8 general + R8 + R9)
	memSize     = 256 // memory-window slots used by the second sweep

	slotMul    = 0 // multiplier anchor: mul-family, src = R8
	slotRMCG   = 4 // produces the branch flag
	slotBranch = 7 // back-edge to slot 0
	slotHalt   = 9 // terminator

	maxBranches = 32 // per-sweep branch-counter initial value
)

// program is a fixed 10-slot straight-line instruction sequence with one
// back-branch and one halt.
type program struct {
	code [programSize]instruction
}

// programList is the fixed-length batch of 32 programs executed, in
// order, twice per hash: once against the register file, once against the
// 256-slot memory window.
type programList struct {
	prog [numPrograms]program
}
