package main

import (
	"bytes"
	"context"
	"os"
	"testing"
)

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	old := os.Stdout
	os.Stdout = w
	runErr := fn()
	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String(), runErr
}

func TestBuildCmd_RunE(t *testing.T) {
	buildOutputFormat = "json"
	cmd := buildCmd
	cmd.SetContext(context.Background())

	out, err := captureStdout(t, func() error {
		return cmd.RunE(cmd, []string{"testdata/sample.json"})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == "" {
		t.Error("no output")
	}
}

func TestBuildCmd_RunE_Error(t *testing.T) {
	buildOutputFormat = "json"
	cmd := buildCmd
	cmd.SetContext(context.Background())
	if err := cmd.RunE(cmd, []string{"testdata/nonexistent.json"}); err == nil {
		t.Fatal("expected error")
	}
}
