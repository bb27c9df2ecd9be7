package e2e

import (
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calunga-catalog/tests/testutil"
)

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	root := testutil.RepoRoot(t)
	cmd := exec.Command("go", append([]string{"run", "./cmd/calunga-catalog"}, args...)...)
	cmd.Dir = root
	cmd.Env = append(os.Environ(),
		"MOCK=true",
		"MOCK_FIXTURES=fixtures/catalog-sample.yaml",
	)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
	return string(out)
}

func TestDistributionsCommandE2E(t *testing.T) {
	out := runCLI(t, "distributions")
	assert.Contains(t, out, "sample-python")
}

func TestSearchCommandE2E(t *testing.T) {
	out := runCLI(t, "search", "--search", "req")
	assert.Contains(t, out, "requests")
	assert.Contains(t, out, "2.31.0")
	assert.NotContains(t, out, "2.30.0", "deduplication keeps only the latest version")
}

func TestShowCommandE2E(t *testing.T) {
	out := runCLI(t, "show", "requests")
	assert.Contains(t, out, "requests 2.31.0")
	assert.Contains(t, out, "trust: high")
	assert.Contains(t, out, "versions: 2.31.0, 2.30.0")
}
