package assets

type Config struct {
	// Project root, esbuild runs with this as its working directory
	Root string
	// Whether to minify output, extra bundler options may override this
	Minify bool
	// Whether to emit linked source maps, extra bundler options may override this
	SourceMap bool
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig(root string) Config {
	return Config{
		Root:      root,
		Minify:    true,
		SourceMap: false,
	}
}
