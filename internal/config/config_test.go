package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/libplan/internal/plan"
)

const webComponentsConfig = `
entry: web-components/code-block.ts
base: /static/js
outDir: static/js
name: web-components
formats: [es]
fileName: "{libraryName}.{format}.js"
manifest: false
bundlerOptions:
  output: {}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, t.TempDir(), DefaultFileName, webComponentsConfig)

	f, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "web-components/code-block.ts", f.Entry)
	assert.Equal(t, "/static/js", f.Base)
	assert.Equal(t, "static/js", f.OutDir)
	assert.Equal(t, "web-components", f.Name)
	assert.Equal(t, []string{"es"}, f.Formats)
	assert.Equal(t, "{libraryName}.{format}.js", f.FileName)
	require.NotNil(t, f.Manifest)
	assert.False(t, *f.Manifest)
	assert.Equal(t, map[string]any{"output": map[string]any{}}, f.BundlerOptions)
}

func TestLoad_json(t *testing.T) {
	path := writeFile(t, t.TempDir(), "libplan.json", `{"entry": "src/index.ts", "name": "widgets", "formats": ["cjs"], "manifest": true}`)

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "src/index.ts", f.Entry)
	assert.Equal(t, []string{"cjs"}, f.Formats)
	require.NotNil(t, f.Manifest)
	assert.True(t, *f.Manifest)
}

func TestLoad_empty(t *testing.T) {
	path := writeFile(t, t.TempDir(), DefaultFileName, "")

	f, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, &File{}, f)
}

func TestLoad_unknownKey(t *testing.T) {
	path := writeFile(t, t.TempDir(), DefaultFileName, "entry: a.ts\npublicDir: false\n")

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "publicDir")
}

func TestLoad_missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_scalarBundlerOptionsSurfacesAtResolve(t *testing.T) {
	path := writeFile(t, t.TempDir(), DefaultFileName, "entry: a.ts\nname: lib\nformats: [es]\noutDir: dist\nbundlerOptions: fast\n")

	f, err := Load(path)
	require.NoError(t, err)

	_, err = plan.NewResolver(plan.WithRoot("/project")).Resolve(f.BuildOptions())
	require.ErrorIs(t, err, plan.ErrInvalidExtraOptions)
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()

	_, ok := Discover(dir)
	require.False(t, ok)

	want := writeFile(t, dir, DefaultFileName, "name: lib\n")

	got, ok := Discover(dir)
	require.True(t, ok)
	require.Equal(t, want, got)
}

func TestMerge(t *testing.T) {
	enabled := true

	file := File{
		Entry:   "src/index.ts",
		Name:    "widgets",
		Formats: []string{"es"},
	}
	flags := File{
		OutDir:   "build",
		Manifest: &enabled,
	}

	merged, err := Merge(Defaults(), file, flags)
	require.NoError(t, err)

	assert.Equal(t, "src/index.ts", merged.Entry)
	assert.Equal(t, "/", merged.Base)
	assert.Equal(t, "build", merged.OutDir)
	assert.Equal(t, "widgets", merged.Name)
	assert.Equal(t, []string{"es"}, merged.Formats)
	require.NotNil(t, merged.Manifest)
	assert.True(t, *merged.Manifest)
}

func TestMerge_zeroOverridesKeepBase(t *testing.T) {
	merged, err := Merge(Defaults(), File{})
	require.NoError(t, err)
	require.Equal(t, Defaults(), merged)
}

func TestMerge_doesNotShareFormats(t *testing.T) {
	base := Defaults()

	merged, err := Merge(base)
	require.NoError(t, err)

	merged.Formats[0] = "cjs"
	require.Equal(t, "es", base.Formats[0])
}

func TestFile_BuildOptions(t *testing.T) {
	path := writeFile(t, t.TempDir(), DefaultFileName, webComponentsConfig)

	f, err := Load(path)
	require.NoError(t, err)

	merged, err := Merge(Defaults(), *f)
	require.NoError(t, err)

	p, artifacts, err := plan.NewResolver(plan.WithRoot("/project")).Prepare(merged.BuildOptions())
	require.NoError(t, err)

	assert.Equal(t, "/project/web-components/code-block.ts", p.EntryPath)
	assert.Equal(t, "/static/js", p.BasePublicPath)
	assert.Equal(t, "static/js", p.OutDir)
	assert.False(t, p.EmitManifest)
	require.Equal(t, []plan.ArtifactDescriptor{
		{Format: plan.FormatES, RelativeFileName: "web-components.es.js", AbsoluteOutputPath: "static/js/web-components.es.js"},
	}, artifacts)
}

func TestMerge_explicitFalseManifestOverrides(t *testing.T) {
	enabled, disabled := true, false

	base := File{Manifest: &enabled}

	merged, err := Merge(base, File{Manifest: &disabled})
	require.NoError(t, err)
	require.NotNil(t, merged.Manifest)
	require.False(t, *merged.Manifest)

	// base is left untouched
	require.True(t, *base.Manifest)
}
