package main

import (
	"context"
	"testing"
)

func TestSimulateAddCmd_RunE(t *testing.T) {
	cmd := simulateAddCmd
	cmd.SetContext(context.Background())

	out, err := captureStdout(t, func() error {
		return cmd.RunE(cmd, []string{"testdata/sample.json", "user:bob@example.com", "roles/owner", "project:p"})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == "" {
		t.Error("no output")
	}
}

func TestSimulateRoleChangeCmd_RunE(t *testing.T) {
	cmd := simulateRoleChangeCmd
	cmd.SetContext(context.Background())

	out, err := captureStdout(t, func() error {
		return cmd.RunE(cmd, []string{
			"testdata/sample.json", "user:alice@example.com",
			"roles/owner", "roles/viewer", "project:p",
		})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == "" {
		t.Error("no output")
	}
}
