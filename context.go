package hashwx

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Kind selects the execution surface a Context uses: the portable
// interpreter or a runtime-compiled native backend. Renamed from
// upstream's hashwx_type (INTERPRETED/COMPILED) to read idiomatically as
// a Go enum; see original_source/include/hashwx.h.
type Kind int

const (
	KindInterpreted Kind = iota
	KindCompiled
)

func (k Kind) String() string {
	if k == KindCompiled {
		return "compiled"
	}
	return "interpreted"
}

// ErrUnsupportedBackend replaces upstream's HASHWX_NOTSUPP sentinel
// pointer: Alloc returns this error instead of a magic non-nil,
// non-usable *Context value, which is the idiomatic Go way to signal
// "this Kind has no backend on this platform" (original_source's C API
// has no error-return channel to do the same).
var ErrUnsupportedBackend = errors.New("hashwx: no native backend for this GOARCH")

// SeedSize is the width of the seed accepted by Make, matching
// HASHWX_SEED_SIZE.
const SeedSize = 32

// Context is one instance of a HashWX function: a fixed 32-program list
// (and, for KindCompiled, a page of native machine code) produced from a
// seed by Make, executed per nonce by Exec.
type Context struct {
	kind    Kind
	key     siphashKey
	list    *programList
	buf     *codeBuffer
	entry   uintptr
	hasProg bool
}

// Alloc mirrors hashwx_alloc: it reserves whatever resources a Context
// of the given Kind needs before a seed is known. KindCompiled on a
// GOARCH without a native backend (jit_other.go) returns
// ErrUnsupportedBackend rather than upstream's HASHWX_NOTSUPP sentinel.
func Alloc(kind Kind) (*Context, error) {
	if kind == KindCompiled && !hasNativeBackend {
		return nil, ErrUnsupportedBackend
	}
	ctx := &Context{kind: kind}
	if kind == KindCompiled {
		buf, err := newCodeBuffer(codeBufferSize)
		if err != nil {
			return nil, err
		}
		ctx.buf = buf
	} else {
		ctx.list = &programList{}
	}
	return ctx, nil
}

// Make derives a program list (and, for KindCompiled, compiles it to
// native code) from a 256-bit seed, exactly as hashwx_make splits the
// seed into two SipHash keys: keys[0] generates the programs, keys[1] is
// retained for per-nonce register initialization in Exec.
func (c *Context) Make(seed [SeedSize]byte) error {
	var keys [2]siphashKey
	keys[0].k0 = binary.LittleEndian.Uint64(seed[0:8])
	keys[0].k1 = binary.LittleEndian.Uint64(seed[8:16])
	keys[1].k0 = binary.LittleEndian.Uint64(seed[16:24])
	keys[1].k1 = binary.LittleEndian.Uint64(seed[24:32])

	list := generate(keys[0])
	c.key = keys[1]

	if c.kind == KindCompiled {
		code := compileNative(list)
		if len(code) > len(c.buf.mem) {
			return fmt.Errorf("hashwx: compiled program (%d bytes) exceeds code buffer (%d bytes)", len(code), len(c.buf.mem))
		}
		if c.buf.state == pageExecutable {
			if err := pagerProtectWrite(c.buf.mem); err != nil {
				return err
			}
			c.buf.state = pageWritable
		}
		copy(c.buf.mem, code)
		c.buf.finalize()
		c.entry = pagerEntry(c.buf.mem)
	} else {
		*c.list = *list
	}

	c.hasProg = true
	return nil
}

// Exec mirrors hashwx_exec: seed an 8-word register file from the
// retained key and the nonce, force R8/R9 into their fixed residue
// classes, run the program list on whichever execution surface this
// Context was allocated with, then finalize with two SipHash rounds.
func (c *Context) Exec(nonce uint64) uint64 {
	if !c.hasProg {
		panic("hashwx: Exec called before Make")
	}

	var rng sipRNG
	rng.init(c.key, nonce)

	var r [regSize]uint64
	for i := 0; i < 8; i++ {
		r[i] = rng.next()
	}
	r[8] = (r[4] &^ 7) | 3
	r[9] = (r[7] &^ 7) | 5

	if c.kind == KindCompiled {
		callNative(c.entry, &r)
	} else {
		executeProgramList(c.list, &r)
	}

	v0, v1, v2, v3 := sipRound(r[0], r[1], r[2], r[3])
	v4, v5, v6, v7 := sipRound(r[4], r[5], r[6], r[7])
	_ = v0
	_ = v1
	_ = v2
	_ = v4
	_ = v5
	_ = v6
	return v3 ^ v7 ^ r[9]
}

// Close releases the Context's native code page, if any. Safe to call on
// a KindInterpreted Context (a no-op) and idempotent.
func (c *Context) Close() error {
	if c.buf == nil {
		return nil
	}
	err := c.buf.close()
	c.buf = nil
	return err
}
