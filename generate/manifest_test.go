package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendManifestBindsEveryArea(t *testing.T) {
	t.Parallel()

	manifest := BackendManifest()
	require.Len(t, manifest, 12)

	for area := AreaSupport; area <= AreaBackendDialect; area++ {
		facility, ok := manifest[area]
		require.True(t, ok, "area %s is unbound", area)

		assert.NotEmpty(t, facility.Package, "area %s names no package", area)
		assert.NotEmpty(t, facility.Covers, "area %s describes no coverage", area)
	}
}

func TestBackendAreaNames(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for area := AreaSupport; area <= AreaBackendDialect; area++ {
		name := area.String()

		assert.NotEmpty(t, name)
		assert.NotEqual(t, "unknown area", name)
		assert.False(t, seen[name], "area name %q is reused", name)

		seen[name] = true
	}

	assert.Len(t, seen, 12)
}

func TestPassNamesRegistered(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"elim-dead-binds"}, PassNames())
}
