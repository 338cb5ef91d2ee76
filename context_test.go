package hashwx

import "testing"

func testSeed(b byte) [SeedSize]byte {
	var s [SeedSize]byte
	for i := range s {
		s[i] = b + byte(i)
	}
	return s
}

func TestContextExecDeterministic(t *testing.T) {
	ctx, err := Alloc(KindInterpreted)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if err := ctx.Make(testSeed(1)); err != nil {
		t.Fatalf("Make: %v", err)
	}

	h1 := ctx.Exec(12345)
	h2 := ctx.Exec(12345)
	if h1 != h2 {
		t.Fatalf("Exec is not a pure function of (seed, nonce): %#x != %#x", h1, h2)
	}
}

func TestContextExecNonceSensitive(t *testing.T) {
	ctx, err := Alloc(KindInterpreted)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if err := ctx.Make(testSeed(2)); err != nil {
		t.Fatalf("Make: %v", err)
	}

	if ctx.Exec(1) == ctx.Exec(2) {
		t.Fatalf("distinct nonces produced the same hash")
	}
}

func TestContextMakeIdempotent(t *testing.T) {
	ctx, err := Alloc(KindInterpreted)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	seed := testSeed(3)

	if err := ctx.Make(seed); err != nil {
		t.Fatalf("first Make: %v", err)
	}
	h1 := ctx.Exec(7)

	if err := ctx.Make(seed); err != nil {
		t.Fatalf("second Make: %v", err)
	}
	h2 := ctx.Exec(7)

	if h1 != h2 {
		t.Fatalf("re-running Make with the same seed changed later hashes: %#x != %#x", h1, h2)
	}
}

func TestContextSeedSensitive(t *testing.T) {
	a, err := Alloc(KindInterpreted)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	b, err := Alloc(KindInterpreted)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if err := a.Make(testSeed(10)); err != nil {
		t.Fatalf("Make: %v", err)
	}
	if err := b.Make(testSeed(20)); err != nil {
		t.Fatalf("Make: %v", err)
	}

	if a.Exec(42) == b.Exec(42) {
		t.Fatalf("distinct seeds produced the same hash for the same nonce")
	}
}

func TestContextExecPanicsBeforeMake(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected Exec to panic before Make is called")
		}
	}()
	ctx := &Context{kind: KindInterpreted, list: &programList{}}
	ctx.Exec(0)
}

func TestAllocCompiledUnsupportedIsExplicit(t *testing.T) {
	_, err := Alloc(KindCompiled)
	if !hasNativeBackend {
		if err != ErrUnsupportedBackend {
			t.Fatalf("expected ErrUnsupportedBackend, got %v", err)
		}
		return
	}
	if err != nil {
		t.Fatalf("Alloc(KindCompiled): %v", err)
	}
}
