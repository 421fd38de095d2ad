package polysynth

import (
	"encoding/binary"
	"math"
	"reflect"
	"testing"

	"github.com/cbegin/polysynth-go/internal/params"
)

func peak(samples []float32) float64 {
	p := 0.0
	for _, s := range samples {
		p = math.Max(p, math.Abs(float64(s)))
	}
	return p
}

func TestRenderChordProducesSignalThenDecays(t *testing.T) {
	const sr = 16000
	samples, err := RenderSamples(sr, Chord([]string{"a", "d", "g"}, 0.5, 3))
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 3*sr*2 {
		t.Fatalf("len = %d", len(samples))
	}
	if p := peak(samples[:sr]); p < 0.05 {
		t.Fatalf("held chord peak = %v", p)
	}
	// release 0.5 s and delay feedback 0.35 leave only a faint tail at 3 s
	if p := peak(samples[len(samples)-sr/10:]); p > 0.05 {
		t.Fatalf("tail peak = %v, want near silence", p)
	}
	for i := 0; i < len(samples); i += 2 {
		if samples[i] != samples[i+1] {
			t.Fatalf("channels differ at frame %d", i/2)
		}
	}
}

func TestRenderArpPerformance(t *testing.T) {
	perf := Performance{
		Events: []Event{
			{At: 0, Kind: EventControl, Control: params.Control{Tempo: 240, Arp: true, Latch: true}},
			{At: 0, Kind: EventKeyDown, Key: "a"},
			{At: 0, Kind: EventKeyDown, Key: "g"},
		},
		Length: 1,
	}
	samples, err := RenderSamples(8000, perf)
	if err != nil {
		t.Fatal(err)
	}
	if p := peak(samples); p < 0.05 {
		t.Fatalf("arp render peak = %v", p)
	}
}

func TestRenderRejectsBadPerformance(t *testing.T) {
	if _, err := RenderSamples(8000, Performance{}); err == nil {
		t.Fatal("expected error for zero length")
	}
	perf := Performance{Events: []Event{{Kind: EventNoteOn, Key: "H9"}}, Length: 0.1}
	if _, err := RenderSamples(8000, perf); err == nil {
		t.Fatal("expected error for unknown note")
	}
	perf = Performance{Events: []Event{{Kind: EventControl}}, Length: 0.1}
	if _, err := RenderSamples(8000, perf); err == nil {
		t.Fatal("expected error for zero tempo")
	}
}

func TestEncodeWAVHeader(t *testing.T) {
	wav := EncodeWAVFloat32LE([]float32{0.5, -0.5, 1, -1}, 44100, 2)
	if len(wav) != 44+16 {
		t.Fatalf("len = %d", len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" || string(wav[36:40]) != "data" {
		t.Fatal("bad chunk ids")
	}
	if got := binary.LittleEndian.Uint16(wav[20:]); got != 3 {
		t.Fatalf("format = %d, want 3 (float)", got)
	}
	if got := binary.LittleEndian.Uint32(wav[24:]); got != 44100 {
		t.Fatalf("sample rate = %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[40:]); got != 16 {
		t.Fatalf("data size = %d", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(wav[44:])); got != 0.5 {
		t.Fatalf("first sample = %v", got)
	}
}

func TestSplitKeys(t *testing.T) {
	if got := SplitKeys("a, d  g,"); !reflect.DeepEqual(got, []string{"a", "d", "g"}) {
		t.Fatalf("SplitKeys = %v", got)
	}
}
