package depm

import (
	"os"
	"path/filepath"
	"testing"

	"chimera/common"
	"chimera/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	report.InitReporter(report.LogLevelSilent)
	os.Exit(m.Run())
}

func TestInitAndLoadModule(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, InitModule("testmod", dir, true))

	mod, ok := LoadModule(dir)
	require.True(t, ok)

	assert.Equal(t, "testmod", mod.Name)
	assert.Equal(t, dir, mod.AbsPath)
	assert.Equal(t, GenerateIDFromPath(dir), mod.ID)
	assert.True(t, mod.ShouldCache)
	assert.Empty(t, mod.SubPackages)
}

func TestInitModuleWithoutCaching(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, InitModule("testmod", dir, false))

	mod, ok := LoadModule(dir)
	require.True(t, ok)
	assert.False(t, mod.ShouldCache)
}

func TestInitModuleRejectsBadNames(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	assert.Error(t, InitModule("3bad", dir, true))
	assert.Error(t, InitModule("bad name", dir, true))
	assert.Error(t, InitModule("", dir, true))
}

func TestInitModuleRefusesToOverwrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, InitModule("testmod", dir, false))
	assert.Error(t, InitModule("othermod", dir, true))
}

func TestLoadModuleRejectsMalformedManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	modFilePath := filepath.Join(dir, common.ChimeraManifestName)
	require.NoError(t, os.WriteFile(modFilePath, []byte("name = [unclosed"), 0644))

	_, ok := LoadModule(dir)
	assert.False(t, ok)
}

func TestLoadModuleRejectsMissingName(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	modFilePath := filepath.Join(dir, common.ChimeraManifestName)
	manifest := "caching = true\nchimera-version = \"" + common.ChimeraVersion + "\"\n"
	require.NoError(t, os.WriteFile(modFilePath, []byte(manifest), 0644))

	_, ok := LoadModule(dir)
	assert.False(t, ok)
}

func TestLoadModuleToleratesVersionMismatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	modFilePath := filepath.Join(dir, common.ChimeraManifestName)
	manifest := "name = \"oldmod\"\ncaching = false\nchimera-version = \"0.1.0\"\n"
	require.NoError(t, os.WriteFile(modFilePath, []byte(manifest), 0644))

	mod, ok := LoadModule(dir)
	require.True(t, ok)
	assert.Equal(t, "oldmod", mod.Name)
	assert.False(t, mod.ShouldCache)
}

func TestGenerateIDFromPathIsDeterministic(t *testing.T) {
	t.Parallel()

	assert.Equal(t, GenerateIDFromPath("/a/b"), GenerateIDFromPath("/a/b"))
	assert.NotEqual(t, GenerateIDFromPath("/a/b"), GenerateIDFromPath("/a/c"))
}

func TestIsValidIdentifier(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidIdentifier("foo"))
	assert.True(t, IsValidIdentifier("_foo2"))
	assert.True(t, IsValidIdentifier("Fib"))

	assert.False(t, IsValidIdentifier(""))
	assert.False(t, IsValidIdentifier("2fast"))
	assert.False(t, IsValidIdentifier("has-dash"))
	assert.False(t, IsValidIdentifier("has space"))
}
