package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

type rampSource struct{ next float32 }

func (s *rampSource) Render(dst []float32) {
	for i := range dst {
		dst[i] = s.next
		s.next += 0.125
	}
}

func TestStreamReaderEncodesFloat32LE(t *testing.T) {
	r := NewStreamReader(&rampSource{})
	p := make([]byte, 19) // two whole frames plus a partial one
	n, err := r.Read(p)
	if err != nil {
		t.Fatal(err)
	}
	if n != 16 {
		t.Fatalf("n = %d, want 16", n)
	}
	for i := 0; i < 4; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
		if want := float32(i) * 0.125; got != want {
			t.Errorf("sample %d = %v, want %v", i, got, want)
		}
	}
	if n, _ := r.Read(make([]byte, 7)); n != 0 {
		t.Fatalf("short read returned %d bytes", n)
	}
}

func TestParseBackend(t *testing.T) {
	cases := map[string]Backend{"": BackendEbiten, "ebiten": BackendEbiten, " OTO ": BackendOto}
	for in, want := range cases {
		got, err := ParseBackend(in)
		if err != nil || got != want {
			t.Errorf("ParseBackend(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseBackend("alsa"); err == nil {
		t.Error("expected error for unknown backend")
	}
}
