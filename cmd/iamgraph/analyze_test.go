package main

import (
	"context"
	"testing"
)

func TestAnalyzeCmd_RunE(t *testing.T) {
	analyzeOutputFormat = "json"
	analyzePersist = false
	cmd := analyzeCmd
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

func TestAnalyzeCmd_RunE_Error(t *testing.T) {
	analyzeOutputFormat = "json"
	cmd := analyzeCmd
	cmd.SetContext(context.Background())
	if err := cmd.RunE(cmd, []string{"testdata/nonexistent.json"}); err == nil {
		t.Fatal("expected error")
	}
}
