//go:build arm64

package hashwx

// callNative tail-jumps into a runtime-emitted, RX-mapped code buffer at
// fn with regs as its single argument (the register-file pointer), then
// returns directly to this function's caller when the native code RETs.
// See call_arm64.s.
func callNative(fn uintptr, regs *[regSize]uint64)
