package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// IntegrityResult collects checksum findings. Passed is false when any
// high-security file failed verification.
type IntegrityResult struct {
	Passed   bool
	Manifest bool
	Warnings []string
	Errors   []string
}

// VerifyIntegrity checks the configuration files against .checksums.
// Without a manifest, operational files only warn while tokens.yaml fails.
func VerifyIntegrity(files *ConfigFiles) (*IntegrityResult, error) {
	result := &IntegrityResult{Passed: true}
	checksumPath := filepath.Join(files.Root, ChecksumFileName)

	manifest, err := LoadChecksums(files.Root)
	if errors.Is(err, os.ErrNotExist) {
		if len(files.HighSecurityFiles()) > 0 {
			result.Passed = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("no %s manifest at %s but %s exists; run 'mira-bridge config lock'", ChecksumFileName, checksumPath, TokensFileName))
		}
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	result.Manifest = true

	record := func(tier FileTier, msg string) {
		if tier == TierHighSecurity {
			result.Passed = false
			result.Errors = append(result.Errors, msg)
			return
		}
		result.Warnings = append(result.Warnings, msg)
	}

	for _, path := range files.AllFiles() {
		name := filepath.Base(path)
		tier := files.FileTier(path)

		expected, ok := manifest.Hashes[name]
		if !ok {
			record(tier, fmt.Sprintf("%s is not in %s", name, ChecksumFileName))
			continue
		}
		actual, err := ComputeBlake3Hash(path)
		if err != nil {
			record(tier, fmt.Sprintf("failed to hash %s: %v", name, err))
			continue
		}
		if actual != expected {
			record(tier, fmt.Sprintf("hash mismatch for %s (expected %s, got %s)", name, expected, actual))
		}
	}

	for name := range manifest.Hashes {
		if name == TokensFileName && files.Tokens == "" {
			result.Passed = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s is in %s but missing from disk", name, ChecksumFileName))
		}
	}
	return result, nil
}
