package main

import (
	"context"
	"testing"
)

func TestPermissionsCmd_RunE(t *testing.T) {
	cmd := permissionsCmd
	cmd.SetContext(context.Background())

	out, err := captureStdout(t, func() error {
		return cmd.RunE(cmd, []string{"testdata/sample.json", "user:alice@example.com"})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == "" {
		t.Error("no output")
	}
}

func TestCanAccessCmd_RunE(t *testing.T) {
	cmd := canAccessCmd
	cmd.SetContext(context.Background())

	out, err := captureStdout(t, func() error {
		return cmd.RunE(cmd, []string{"testdata/sample.json", "user:alice@example.com", "role:roles/owner"})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == "" {
		t.Error("no output")
	}
}

func TestShortestPathCmd_RunE_NoPath(t *testing.T) {
	cmd := shortestPathCmd
	cmd.SetContext(context.Background())
	if err := cmd.RunE(cmd, []string{"testdata/sample.json", "user:alice@example.com", "nonexistent-node"}); err == nil {
		t.Fatal("expected error for unreachable target")
	}
}

func TestAllPathsCmd_RunE(t *testing.T) {
	allPathsMaxLength = 0
	cmd := allPathsCmd
	cmd.SetContext(context.Background())

	out, err := captureStdout(t, func() error {
		return cmd.RunE(cmd, []string{"testdata/sample.json", "user:alice@example.com", "role:roles/owner"})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == "" {
		t.Error("no output")
	}
}
