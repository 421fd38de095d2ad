package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderCommandWritesWAV(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.wav")
	rootCmd.SetArgs([]string{"render", "--sample-rate", "8000", "--keys", "a d", "--hold", "0.1", "--length", "0.25", "--arp", "-o", out})
	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if want := 44 + 2000*2*4; len(data) != want {
		t.Fatalf("wav size = %d, want %d", len(data), want)
	}
}

func TestRenderDumpConfig(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	defer rootCmd.SetOut(nil)
	rootCmd.SetArgs([]string{"render", "--dump-config"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "tempo:") {
		t.Fatalf("dump missing tempo:\n%s", buf.String())
	}
	renderOpts.dumpConfig = false
}
