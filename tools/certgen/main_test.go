package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	if err := run([]string{"-dir", dir, "-hosts", " localhost , ::1 "}); err != nil {
		t.Fatalf("run error: %v", err)
	}
	for _, name := range []string{"server.crt", "server.key"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestRun_NoHosts(t *testing.T) {
	if err := run([]string{"-dir", t.TempDir(), "-hosts", " , "}); err == nil {
		t.Error("expected error for empty host list")
	}
}

func TestRun_BadFlag(t *testing.T) {
	if err := run([]string{"-nope"}); err == nil {
		t.Error("expected flag error")
	}
}
