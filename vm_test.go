package hashwx

import "testing"

func TestCodeBufferLifecycle(t *testing.T) {
	buf, err := newCodeBuffer(4096)
	if err != nil {
		t.Fatalf("newCodeBuffer: %v", err)
	}
	if buf.state != pageWritable {
		t.Fatalf("new buffer should start writable")
	}

	copy(buf.mem, []byte{0x90, 0x90, 0x90})

	buf.finalize()
	if buf.state != pageExecutable {
		t.Fatalf("finalize should flip state to executable")
	}

	if err := buf.close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestCodeBufferFinalizeTwicePanics(t *testing.T) {
	buf, err := newCodeBuffer(4096)
	if err != nil {
		t.Fatalf("newCodeBuffer: %v", err)
	}
	buf.finalize()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected second finalize to panic")
		}
	}()
	buf.finalize()
}

func TestNativeBackendNameString(t *testing.T) {
	cases := map[nativeBackendName]string{
		backendNone:    "none",
		backendX86_64:  "x86-64",
		backendAArch64: "AArch64",
	}
	for n, want := range cases {
		if got := n.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", n, got, want)
		}
	}
}
