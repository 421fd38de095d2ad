package notes

import (
	"math"
	"testing"
)

func TestLookupFrequencies(t *testing.T) {
	cases := []struct {
		name string
		want float64
	}{
		{"A4", 440},
		{"A3", 220},
		{"C4", 261.6256},
		{"C#4", 277.1826},
		{"Db4", 277.1826},
		{"c0", 16.3516},
		{"B8", 7902.133},
	}
	for _, tc := range cases {
		n, ok := Lookup(tc.name)
		if !ok {
			t.Fatalf("lookup %q failed", tc.name)
		}
		if math.Abs(n.Frequency-tc.want) > 0.001 {
			t.Errorf("%s = %f Hz, want %f", tc.name, n.Frequency, tc.want)
		}
	}
	if _, ok := Lookup("H2"); ok {
		t.Error("expected unknown note to fail")
	}
	if _, ok := Lookup("C9"); ok {
		t.Error("expected out-of-range octave to fail")
	}
}

func TestForKey(t *testing.T) {
	n, ok := ForKey("a")
	if !ok || n.Name != "C4" {
		t.Fatalf("key a = %+v, %v; want C4", n, ok)
	}
	n, ok = ForKey("W")
	if !ok || n.Name != "C#4" {
		t.Fatalf("key W = %+v, %v; want C#4", n, ok)
	}
	if _, ok := ForKey("1"); ok {
		t.Fatal("unmapped key should report false")
	}
	for _, k := range Keys() {
		if n, ok := ForKey(k); !ok || !n.Valid() {
			t.Errorf("key %q maps to missing note", k)
		}
	}
}

func TestForMIDI(t *testing.T) {
	n, ok := ForMIDI(69)
	if !ok || n.Name != "A4" {
		t.Fatalf("midi 69 = %+v, %v; want A4", n, ok)
	}
	n, ok = ForMIDI(61)
	if !ok || n.Name != "C#4" {
		t.Fatalf("midi 61 = %+v, %v; want C#4", n, ok)
	}
	if _, ok := ForMIDI(5); ok {
		t.Fatal("midi 5 is below octave 0")
	}
	if _, ok := ForMIDI(127); ok {
		t.Fatal("midi 127 is above octave 8")
	}
}

func TestNoteValid(t *testing.T) {
	if (Note{Name: "X", Frequency: 0}).Valid() {
		t.Error("zero frequency should be invalid")
	}
	if (Note{Name: "X", Frequency: math.NaN()}).Valid() {
		t.Error("NaN frequency should be invalid")
	}
	if (Note{Frequency: 440}).Valid() {
		t.Error("empty name should be invalid")
	}
}
