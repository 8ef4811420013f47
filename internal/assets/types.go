package assets

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/libplan/internal/plan"
)

// ErrBuildFailed is returned when esbuild reports errors
var ErrBuildFailed = errors.New("esbuild failed with errors")

// ExtraOptions are the keys of the plan's extra bundler options this
// pipeline understands. Anything else is ignored.
type ExtraOptions struct {
	External   []string          `mapstructure:"external"`
	Define     map[string]string `mapstructure:"define"`
	Target     string            `mapstructure:"target"`
	Platform   string            `mapstructure:"platform"`
	Minify     *bool             `mapstructure:"minify"`
	SourceMap  *bool             `mapstructure:"sourcemap"`
	Banner     string            `mapstructure:"banner"`
	Footer     string            `mapstructure:"footer"`
	GlobalName string            `mapstructure:"globalName"`
}

// DecodeExtraOptions reads the known keys out of the passthrough mapping.
func DecodeExtraOptions(raw map[string]any) (ExtraOptions, error) {
	var opts ExtraOptions
	var md mapstructure.Metadata

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		Metadata:         &md,
		DecodeHook:       jsonLiteralHook,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return ExtraOptions{}, err
	}

	if err := dec.Decode(raw); err != nil {
		return ExtraOptions{}, fmt.Errorf("failed to decode extra bundler options: %w", err)
	}

	if len(md.Unused) > 0 {
		log.Debug().Strs("keys", md.Unused).Msg("Ignoring unrecognized bundler options")
	}

	return opts, nil
}

// jsonLiteralHook renders non-string values bound for string fields as JSON,
// so define: {__DEV__: true} yields the expression "true" rather than "1".
func jsonLiteralHook(from, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String || from.Kind() == reflect.String {
		return data, nil
	}

	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %v as a JavaScript literal: %w", data, err)
	}

	return string(b), nil
}

// Manifest maps the entry to the file emitted for each format
type Manifest struct {
	Entry     string                   `json:"entry"`
	Base      string                   `json:"base"`
	Artifacts map[string]ManifestEntry `json:"artifacts"`
}

type ManifestEntry struct {
	File string `json:"file"`
	Size int64  `json:"size"`
	Hash string `json:"hash"`
}

// Pipeline builds plans with esbuild. It implements plan.Bundler.
type Pipeline struct {
	config Config
	mu     sync.Mutex
}

var _ plan.Bundler = (*Pipeline)(nil)

// New creates a new asset pipeline with the given configuration
func New(config Config) *Pipeline {
	return &Pipeline{
		config: config,
	}
}
