package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortenCommit(t *testing.T) {
	assert.Equal(t, "abc", shortenCommit("abc"))
	assert.Equal(t, "0123456789ab", shortenCommit("0123456789abcdef0123"))
}

func TestNormalizeBuildTimeUTC(t *testing.T) {
	got, ok := normalizeBuildTimeUTC("2026-03-01T10:00:00.123+02:00")
	assert.True(t, ok)
	assert.Equal(t, "2026-03-01T08:00:00Z", got)

	_, ok = normalizeBuildTimeUTC("unknown")
	assert.False(t, ok)
	_, ok = normalizeBuildTimeUTC("yesterday")
	assert.False(t, ok)
}

func TestCurrent(t *testing.T) {
	orig := version
	t.Cleanup(func() { version = orig })

	version = "  "
	info := Current()
	assert.Equal(t, "0.0.0-dev", info.Version)
	assert.Equal(t, Debug, info.Debug)
	assert.NotEmpty(t, info.Commit)

	version = "1.2.3"
	assert.Equal(t, "1.2.3", Current().Version)
}
