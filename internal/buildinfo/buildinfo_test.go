package buildinfo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintBuildData_Defaults(t *testing.T) {
	var buf bytes.Buffer
	PrintBuildData(&buf)

	out := buf.String()
	assert.Contains(t, out, "Build version: N/A")
	assert.Contains(t, out, "Build date: N/A")
	assert.Contains(t, out, "Build commit: N/A")
}

func TestPrintBuildData_Injected(t *testing.T) {
	origVersion, origDate, origCommit := buildVersion, buildDate, buildCommit
	t.Cleanup(func() {
		buildVersion, buildDate, buildCommit = origVersion, origDate, origCommit
	})

	buildVersion, buildDate, buildCommit = "1.2.3", "2026-01-01", "abc123"

	var buf bytes.Buffer
	PrintBuildData(&buf)
	assert.Equal(t, "Build version: 1.2.3\nBuild date: 2026-01-01\nBuild commit: abc123\n", buf.String())
}
