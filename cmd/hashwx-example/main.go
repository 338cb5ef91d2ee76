// Command hashwx-example is the minimal "hello world" for the library,
// matching original_source/doc/example.c's shape: allocate a compiled
// context, falling back to the interpreter when no native backend is
// available, make it from a fixed seed, execute one nonce, print the
// hash.
package main

import (
	"fmt"
	"os"

	hashwx "github.com/tevador/hashwx-go"
)

func main() {
	var seed [hashwx.SeedSize]byte
	copy(seed[:], "this seed will generate a hash")

	ctx, err := hashwx.Alloc(hashwx.KindCompiled)
	if err == hashwx.ErrUnsupportedBackend {
		ctx, err = hashwx.Alloc(hashwx.KindInterpreted)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "hashwx.Alloc: %v\n", err)
		os.Exit(1)
	}
	defer ctx.Close()

	if err := ctx.Make(seed); err != nil {
		fmt.Fprintf(os.Stderr, "ctx.Make: %v\n", err)
		os.Exit(1)
	}

	hash := ctx.Exec(123456789)
	fmt.Printf("%016x\n", hash)
}
