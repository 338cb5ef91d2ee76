package hashwx

import "fmt"

// memWindowBytes is the stack reservation for the 256-slot (8 bytes each)
// memory window, matching spec.md §4.4's "reserve 2048 bytes of stack."
// Shared by jit_amd64.go and jit_arm64.go.
const memWindowBytes = 2048

// codeBufferSize is the size of the RW/RX page backing a compiled
// context. spec.md §4.4 estimates 8192 bytes against its own
// micro-optimized (rel8-jump, flag-free) encoding; this backend emits
// straightforward near (rel32) jumps throughout instead, since that is
// the only style of encoding whose correctness we can be confident of
// without running an assembler. The generous buffer below trades a few
// unused kilobytes of mmap'd page for that verifiability — see
// DESIGN.md.
const codeBufferSize = 16384

// pageState records, at run time, whether a code buffer is still writable
// (under construction) or has been finalized as executable; finalize
// panics when called on a buffer that is not writable.
type pageState int

const (
	pageWritable pageState = iota
	pageExecutable
)

// codeBuffer is the VM pager's typed handle: one RW mapping, flipped to RX
// after emission, freed on Close. See vm_unix.go / vm_windows.go for the
// platform backends and SPEC_FULL.md's DOMAIN STACK entry for
// golang.org/x/sys/unix wiring.
type codeBuffer struct {
	mem   []byte
	state pageState
}

func newCodeBuffer(size int) (*codeBuffer, error) {
	mem, err := pagerAlloc(size)
	if err != nil {
		return nil, fmt.Errorf("hashwx: context allocation failed: %w", err)
	}
	return &codeBuffer{mem: mem, state: pageWritable}, nil
}

// finalize consumes the writable handle and flips the page to RX. A
// protection-flip failure is the one fatal error class spec.md §4.7/§7
// describe: it indicates a W^X policy misconfiguration, not a recoverable
// condition, so it panics rather than returning an error.
func (b *codeBuffer) finalize() {
	if b.state != pageWritable {
		panic("hashwx: code buffer is not writable")
	}
	if err := pagerProtectExec(b.mem); err != nil {
		panic(fmt.Sprintf("hashwx: VM page protection failure: %v", err))
	}
	b.state = pageExecutable
}

func (b *codeBuffer) close() error {
	return pagerFree(b.mem)
}

// nativeBackendName names the native backend built into this binary. The
// backend is chosen at build time by GOARCH build tags, not at run time:
// exactly one of jit_amd64.go, jit_arm64.go, or jit_other.go defines
// hasNativeBackend, nativeBackend and compileNative (a panicking stub in
// jit_other.go).
type nativeBackendName int

const (
	backendNone nativeBackendName = iota
	backendX86_64
	backendAArch64
)

func (n nativeBackendName) String() string {
	switch n {
	case backendX86_64:
		return "x86-64"
	case backendAArch64:
		return "AArch64"
	default:
		return "none"
	}
}
