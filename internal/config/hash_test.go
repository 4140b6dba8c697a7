package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLockDryRun(t *testing.T) {
	tmpDir := t.TempDir()
	writeTestFile(t, filepath.Join(tmpDir, ConfigFileName), "service:\n  name: test\n")
	writeTestFile(t, filepath.Join(tmpDir, TokensFileName), "tokens: []\n")

	files, err := ResolveFiles(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	report, err := Lock(files, true)
	if err != nil {
		t.Fatalf("Lock() failed: %v", err)
	}

	if report.Written {
		t.Fatal("report.Written = true, want false in dry-run")
	}
	if len(report.Files) != 2 {
		t.Fatalf("len(report.Files) = %d, want 2", len(report.Files))
	}
	for _, f := range report.Files {
		if len(f.Hash) != 64 {
			t.Errorf("%s hash = %q, want 64 hex chars", f.Filename, f.Hash)
		}
	}
	if _, err := os.Stat(filepath.Join(tmpDir, ChecksumFileName)); !os.IsNotExist(err) {
		t.Fatal(".checksums should not be written in dry-run mode")
	}
}

func TestLockWritesManifest(t *testing.T) {
	tmpDir := t.TempDir()
	writeTestFile(t, filepath.Join(tmpDir, ConfigFileName), "service:\n  name: test\n")

	files, err := ResolveFiles(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	report, err := Lock(files, false)
	if err != nil {
		t.Fatalf("Lock() failed: %v", err)
	}
	if !report.Written {
		t.Fatal("report.Written = false")
	}

	manifest, err := LoadChecksums(tmpDir)
	if err != nil {
		t.Fatalf("LoadChecksums() failed: %v", err)
	}
	want, err := ComputeBlake3Hash(files.Config)
	if err != nil {
		t.Fatal(err)
	}
	if manifest.Hashes[ConfigFileName] != want {
		t.Errorf("hash = %q, want %q", manifest.Hashes[ConfigFileName], want)
	}

	info, err := os.Stat(report.ChecksumPath)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("checksums mode = %o, want 600", perm)
	}
}

func TestLoadChecksumsMissing(t *testing.T) {
	_, err := LoadChecksums(t.TempDir())
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("LoadChecksums() error = %v, want os.ErrNotExist", err)
	}
}

func TestLoadChecksumsBadVersion(t *testing.T) {
	tmpDir := t.TempDir()
	writeTestFile(t, filepath.Join(tmpDir, ChecksumFileName), "version: 2\nhashes: {}\n")

	if _, err := LoadChecksums(tmpDir); err == nil {
		t.Fatal("expected unsupported version error")
	}
}

func TestComputeBlake3HashStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	writeTestFile(t, path, "hello")

	a, err := ComputeBlake3Hash(path)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := ComputeBlake3Hash(path)
	if a != b {
		t.Fatal("hash is not stable")
	}

	writeTestFile(t, path, "hello!")
	c, _ := ComputeBlake3Hash(path)
	if a == c {
		t.Fatal("hash did not change with content")
	}
}
