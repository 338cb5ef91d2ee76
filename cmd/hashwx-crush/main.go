// Command hashwx-crush feeds a HashWX output stream to an external
// statistical test battery (e.g. TestU01's SmallCrush) over stdin,
// mirroring original_source/src/crush.c's unif01_Gen adapter: rather than
// link against TestU01 (not part of this module's dependency surface),
// it writes the chosen 32-bit half of each successive hash as raw
// little-endian bytes to stdout, for piping into a battery harness that
// reads a generic byte stream.
package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"strconv"

	hashwx "github.com/tevador/hashwx-go"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <seed> <lo|hi>\n", os.Args[0])
		os.Exit(1)
	}

	seed, err := strconv.Atoi(os.Args[1])
	if err != nil || seed == 0 {
		fmt.Fprintln(os.Stderr, "invalid seed")
		os.Exit(1)
	}
	high := os.Args[2] == "hi"

	ctx, err := hashwx.Alloc(hashwx.KindCompiled)
	if err == hashwx.ErrUnsupportedBackend {
		ctx, err = hashwx.Alloc(hashwx.KindInterpreted)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "hashwx.Alloc: %v\n", err)
		os.Exit(1)
	}
	defer ctx.Close()

	var seedBuf [hashwx.SeedSize]byte
	copy(seedBuf[:], "0000-TestU01-hashwx-crush-seed1")
	binary.LittleEndian.PutUint32(seedBuf[:4], uint32(seed))

	if err := ctx.Make(seedBuf); err != nil {
		fmt.Fprintf(os.Stderr, "ctx.Make: %v\n", err)
		os.Exit(1)
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	var buf [4]byte
	for nonce := uint64(0); ; nonce++ {
		h := ctx.Exec(nonce)
		var half uint32
		if high {
			half = uint32(h >> 32)
		} else {
			half = uint32(h)
		}
		binary.LittleEndian.PutUint32(buf[:], half)
		if _, err := out.Write(buf[:]); err != nil {
			return // downstream closed the pipe
		}
	}
}
