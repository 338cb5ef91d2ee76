//go:build windows

package hashwx

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// pagerAlloc reserves and commits a single RW region via VirtualAlloc,
// the Windows analogue the teacher's hotreload_unix.go doc-comments but
// does not implement.
func pagerAlloc(size int) ([]byte, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, fmt.Errorf("VirtualAlloc: %w", err)
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

func pagerProtectExec(mem []byte) error {
	var old uint32
	if err := windows.VirtualProtect(uintptr(unsafe.Pointer(&mem[0])), uintptr(len(mem)), windows.PAGE_EXECUTE_READ, &old); err != nil {
		return fmt.Errorf("VirtualProtect(RX): %w", err)
	}
	return nil
}

func pagerProtectWrite(mem []byte) error {
	var old uint32
	if err := windows.VirtualProtect(uintptr(unsafe.Pointer(&mem[0])), uintptr(len(mem)), windows.PAGE_READWRITE, &old); err != nil {
		return fmt.Errorf("VirtualProtect(RW): %w", err)
	}
	return nil
}

func pagerFree(mem []byte) error {
	return windows.VirtualFree(uintptr(unsafe.Pointer(&mem[0])), 0, windows.MEM_RELEASE)
}

func pagerEntry(mem []byte) uintptr {
	return uintptr(unsafe.Pointer(&mem[0]))
}
