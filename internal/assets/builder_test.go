package assets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/libplan/internal/plan"
)

const codeBlockSource = `export function highlight(code: string): string {
  return "<pre>" + code + "</pre>";
}

export const version: string = "1.0.0";
`

func setupProject(t *testing.T, source string) string {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "web-components"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "web-components", "code-block.ts"), []byte(source), 0o600))
	return root
}

func prepare(t *testing.T, root string, opts plan.BuildOptions) (*plan.BuildPlan, []plan.ArtifactDescriptor) {
	t.Helper()

	r := plan.NewResolver(plan.WithRoot(root), plan.WithFileSystem(plan.OSFileSystem{}))
	bp, artifacts, err := r.Prepare(opts)
	require.NoError(t, err)
	return bp, artifacts
}

func webComponentsOptions(formats ...string) plan.BuildOptions {
	return plan.BuildOptions{
		EntryPath:      "web-components/code-block.ts",
		BasePublicPath: "/static/js",
		OutDir:         "static/js",
		LibraryName:    "web-components",
		Formats:        formats,
	}
}

func TestPipeline_BuildAllFormats(t *testing.T) {
	root := setupProject(t, codeBlockSource)

	opts := webComponentsOptions("es", "cjs", "iife", "umd")
	opts.EmitManifest = true
	bp, artifacts := prepare(t, root, opts)

	p := New(Config{Root: root})
	emitted, err := p.Build(context.Background(), bp, artifacts)
	require.NoError(t, err)
	require.Len(t, emitted.Files, 4)

	for i, f := range emitted.Files {
		assert.Equal(t, artifacts[i].Format, f.Format)
		assert.Equal(t, artifacts[i].AbsoluteOutputPath, f.Path)
		assert.Positive(t, f.Size)
		assert.Positive(t, f.GzipSize)
		assert.NotEmpty(t, f.Hash)

		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(f.Path)))
		require.NoError(t, err)
		assert.Equal(t, f.Size, info.Size())
	}

	es, err := os.ReadFile(filepath.Join(root, "static", "js", "web-components.es.js"))
	require.NoError(t, err)
	assert.Contains(t, string(es), "export")
	assert.Contains(t, string(es), "highlight")

	iife, err := os.ReadFile(filepath.Join(root, "static", "js", "web-components.iife.js"))
	require.NoError(t, err)
	assert.Contains(t, string(iife), "var webComponents")

	umd, err := os.ReadFile(filepath.Join(root, "static", "js", "web-components.umd.js"))
	require.NoError(t, err)
	assert.Contains(t, string(umd), `define.amd`)
	assert.Contains(t, string(umd), `root["webComponents"]`)

	require.Equal(t, filepath.Join(root, "static", "js", ManifestFileName), emitted.ManifestPath)

	manifest, err := LoadManifest(emitted.ManifestPath)
	require.NoError(t, err)
	assert.Equal(t, "web-components/code-block.ts", manifest.Entry)
	assert.Equal(t, "/static/js", manifest.Base)
	require.Len(t, manifest.Artifacts, 4)
	assert.Equal(t, "web-components.cjs.js", manifest.Artifacts["cjs"].File)
	assert.Equal(t, emitted.Files[1].Hash, manifest.Artifacts["cjs"].Hash)
}

func TestPipeline_NoManifestByDefault(t *testing.T) {
	root := setupProject(t, codeBlockSource)
	bp, artifacts := prepare(t, root, webComponentsOptions("es"))

	emitted, err := New(DefaultConfig(root)).Build(context.Background(), bp, artifacts)
	require.NoError(t, err)
	require.Empty(t, emitted.ManifestPath)

	_, err = os.Stat(filepath.Join(root, "static", "js", ManifestFileName))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestPipeline_ExtraOptions(t *testing.T) {
	root := setupProject(t, `import { h } from "preact";
export const render = () => h("div", null, __VERSION__);
`)

	opts := webComponentsOptions("es")
	opts.ExtraBundlerOptions = map[string]any{
		"external":  []any{"preact"},
		"define":    map[string]any{"__VERSION__": `"2.0.0"`},
		"minify":    false,
		"sourcemap": true,
		"banner":    "/* web-components */",
		"unknown":   "ignored",
	}
	bp, artifacts := prepare(t, root, opts)

	_, err := New(Config{Root: root}).Build(context.Background(), bp, artifacts)
	require.NoError(t, err)

	out, err := os.ReadFile(filepath.Join(root, "static", "js", "web-components.es.js"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "/* web-components */")
	assert.Contains(t, string(out), `from "preact"`)
	assert.Contains(t, string(out), `"2.0.0"`)
	assert.Contains(t, string(out), "sourceMappingURL=web-components.es.js.map")

	_, err = os.Stat(filepath.Join(root, "static", "js", "web-components.es.js.map"))
	require.NoError(t, err)
}

func TestPipeline_CompileErrorWritesNothing(t *testing.T) {
	root := setupProject(t, "export const broken = ;\n")
	bp, artifacts := prepare(t, root, webComponentsOptions("es", "cjs"))

	emitted, err := New(Config{Root: root}).Build(context.Background(), bp, artifacts)
	require.Nil(t, emitted)
	require.ErrorIs(t, err, ErrBuildFailed)

	_, err = os.Stat(filepath.Join(root, "static", "js"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestPipeline_UnsupportedTarget(t *testing.T) {
	root := setupProject(t, codeBlockSource)

	opts := webComponentsOptions("es")
	opts.ExtraBundlerOptions = map[string]any{"target": "es1999"}
	bp, artifacts := prepare(t, root, opts)

	_, err := New(Config{Root: root}).Build(context.Background(), bp, artifacts)
	require.Error(t, err)
	require.Contains(t, err.Error(), "es1999")
}

func TestPipeline_CancelledContext(t *testing.T) {
	root := setupProject(t, codeBlockSource)
	bp, artifacts := prepare(t, root, webComponentsOptions("es"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{Root: root}).Build(ctx, bp, artifacts)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDecodeExtraOptions(t *testing.T) {
	opts, err := DecodeExtraOptions(map[string]any{
		"external":   []any{"react", "react-dom"},
		"minify":     "true",
		"globalName": "Widgets",
		"output":     map[string]any{},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"react", "react-dom"}, opts.External)
	require.NotNil(t, opts.Minify)
	assert.True(t, *opts.Minify)
	assert.Nil(t, opts.SourceMap)
	assert.Equal(t, "Widgets", opts.GlobalName)
}

func TestDecodeExtraOptions_defineKeepsLiteralTypes(t *testing.T) {
	opts, err := DecodeExtraOptions(map[string]any{
		"define": map[string]any{
			"__DEV__":     true,
			"__LIMIT__":   42,
			"__RATIO__":   0.5,
			"__VERSION__": `"2.0.0"`,
			"__FLAGS__":   map[string]any{"beta": false},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"__DEV__":     "true",
		"__LIMIT__":   "42",
		"__RATIO__":   "0.5",
		"__VERSION__": `"2.0.0"`,
		"__FLAGS__":   `{"beta":false}`,
	}, opts.Define)
}

func TestGlobalName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "kebab case", input: "web-components", expected: "webComponents"},
		{name: "already identifier", input: "widgets", expected: "widgets"},
		{name: "scoped package", input: "@acme.ui-kit", expected: "acmeUiKit"},
		{name: "leading digit", input: "3d-engine", expected: "_3dEngine"},
		{name: "dollar and underscore kept", input: "$_lib", expected: "$_lib"},
		{name: "nothing usable", input: "---", expected: "_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, GlobalName(tt.input))
		})
	}
}

func TestStatContents(t *testing.T) {
	a, err := statContents([]byte("console.log('a')"))
	require.NoError(t, err)
	b, err := statContents([]byte("console.log('a')"))
	require.NoError(t, err)
	c, err := statContents([]byte("console.log('b')"))
	require.NoError(t, err)

	require.Equal(t, int64(16), a.size)
	require.Equal(t, a, b)
	require.NotEqual(t, a.hash, c.hash)
}
