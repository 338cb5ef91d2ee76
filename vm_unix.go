//go:build !windows

package hashwx

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// pagerAlloc maps one anonymous RW region of size bytes, mirroring the teacher's
// hotreload_unix.go AllocateExecutablePage — but never combining
// PROT_WRITE and PROT_EXEC in the same mapping, per spec.md §4.7's W^X
// requirement: the region starts writable-only and is flipped to
// executable-only by pagerProtectExec once code emission is done.
func pagerAlloc(size int) ([]byte, error) {
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("mmap: %w", err)
	}
	return mem, nil
}

func pagerProtectExec(mem []byte) error {
	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("mprotect(RX): %w", err)
	}
	return nil
}

func pagerProtectWrite(mem []byte) error {
	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return fmt.Errorf("mprotect(RW): %w", err)
	}
	return nil
}

func pagerFree(mem []byte) error {
	return unix.Munmap(mem)
}

// pagerEntry returns the callable address of offset 0 in mem. mem must
// currently be in the executable state.
func pagerEntry(mem []byte) uintptr {
	return uintptr(unsafe.Pointer(&mem[0]))
}
