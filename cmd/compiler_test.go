package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"chimera/common"
	"chimera/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	report.InitReporter(report.LogLevelSilent)
	goleak.VerifyTestMain(m)
}

// writeModule lays out a module rooted in a fresh temporary directory and
// returns the directory.
func writeModule(t *testing.T, caching bool, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	manifest := fmt.Sprintf("name = \"app\"\ncaching = %t\nchimera-version = \"%s\"\n", caching, common.ChimeraVersion)
	require.NoError(t, os.WriteFile(filepath.Join(dir, common.ChimeraManifestName), []byte(manifest), 0o644))

	for name, src := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	}

	return dir
}

func TestBuildWritesModuleOutput(t *testing.T) {
	dir := writeModule(t, false, map[string]string{
		"main.chim": `let inc = fn n -> add n 1

let x = 5

let main ~ dump (inc x)
`,
	})

	c := NewCompiler(dir, ModeBuild)
	c.outPath = filepath.Join(dir, "out.ll")
	require.Equal(t, 0, c.Compile())

	content, err := os.ReadFile(c.outPath)
	require.NoError(t, err)

	text := string(content)
	assert.Contains(t, text, "define i64 @inc(i64 %n)")
	assert.Contains(t, text, "define i32 @main()")
}

func TestBuildMultiPackageModule(t *testing.T) {
	dir := writeModule(t, false, map[string]string{
		"main.chim": `import mathx

let main ~ dump (double 2)
`,
		"mathx/ops.chim": `let double = fn n -> mul n 2
`,
	})

	c := NewCompiler(dir, ModeBuild)
	c.outPath = filepath.Join(dir, "out.ll")
	require.Equal(t, 0, c.Compile())

	content, err := os.ReadFile(c.outPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "define i64 @mathx.double(i64 %n)")
}

func TestCheckModeProducesNoOutput(t *testing.T) {
	dir := writeModule(t, false, map[string]string{
		"main.chim": `let main ~ dump (add 1 2)
`,
	})

	c := NewCompiler(dir, ModeCheck)
	c.outPath = filepath.Join(dir, "out.ll")
	require.Equal(t, 0, c.Compile())

	_, err := os.Stat(c.outPath)
	assert.True(t, os.IsNotExist(err))
}

func TestRunModeEvaluatesModule(t *testing.T) {
	dir := writeModule(t, false, map[string]string{
		"main.chim": `let x = add 1 2

let main ~ cmp x 3
`,
	})

	c := NewCompiler(dir, ModeRun)
	assert.Equal(t, 0, c.Compile())
}

func TestRunModeReportsRuntimeFault(t *testing.T) {
	dir := writeModule(t, false, map[string]string{
		"main.chim": `let main ~ dump (div 1 0)
`,
	})

	c := NewCompiler(dir, ModeRun)
	assert.Equal(t, 1, c.Compile())
}

func TestBuildUsesArtifactCache(t *testing.T) {
	dir := writeModule(t, true, map[string]string{
		"main.chim": `let main ~ dump (add 1 2)
`,
	})

	first := NewCompiler(dir, ModeBuild)
	first.outPath = filepath.Join(dir, "out1.ll")
	require.Equal(t, 0, first.Compile())

	second := NewCompiler(dir, ModeBuild)
	second.outPath = filepath.Join(dir, "out2.ll")
	require.Equal(t, 0, second.Compile())

	_, err := os.Stat(filepath.Join(dir, common.ChimeraCacheDir, "cache.db"))
	require.NoError(t, err)

	out1, err := os.ReadFile(first.outPath)
	require.NoError(t, err)
	out2, err := os.ReadFile(second.outPath)
	require.NoError(t, err)
	assert.Equal(t, string(out1), string(out2))
}
