//go:build debug

package buildinfo

// Debug is true in binaries built with -tags debug.
const Debug = true
