// Package config holds translator options and loads them from YAML or
// TOML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/roach88/lowerc/internal/semantic"
)

// InternalMode selects a bootstrap compile of the translator's own support
// code. Internal compiles skip post-translation work.
type InternalMode string

const (
	InternalNone  InternalMode = "none"
	InternalMagic InternalMode = "magic"
	InternalLib   InternalMode = "lib"
)

// Options are the recognized translator options.
type Options struct {
	// AllowInline enables call-site inlining of small methods.
	AllowInline bool `yaml:"allow-inline" toml:"allow-inline"`

	// Devirtualize enables points-to based call specialization.
	Devirtualize bool `yaml:"devirtualize" toml:"devirtualize"`

	// ObjectInlining enables by-value field and local embedding.
	ObjectInlining bool `yaml:"object-inlining" toml:"object-inlining"`

	// InlineThreshold is the largest body, in statements, eligible for
	// inlining.
	InlineThreshold int `yaml:"inline-threshold" toml:"inline-threshold"`

	// TranslateOnViolation keeps translating classes that failed a
	// restriction check. When false such classes are skipped.
	TranslateOnViolation bool `yaml:"translate-on-violation" toml:"translate-on-violation"`

	// LibraryPrefixes name trusted pre-existing code.
	LibraryPrefixes []string `yaml:"library-prefixes" toml:"library-prefixes"`

	Internal InternalMode `yaml:"internal" toml:"internal"`

	// Mute suppresses the checker's progress lines.
	Mute bool `yaml:"mute" toml:"mute"`
}

// Defaults returns the options in effect when nothing is configured.
func Defaults() Options {
	return Options{
		Devirtualize:         true,
		InlineThreshold:      semantic.DefaultInlineThreshold,
		TranslateOnViolation: true,
		LibraryPrefixes:      append([]string(nil), semantic.DefaultLibraryPrefixes...),
		Internal:             InternalNone,
	}
}

// Load reads options from path, layered over Defaults. The format follows
// the extension: .yaml and .yml for YAML, .toml for TOML.
func Load(path string) (Options, error) {
	opts := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("failed to read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &opts)
	case ".toml":
		err = toml.Unmarshal(data, &opts)
	default:
		return opts, fmt.Errorf("unsupported config format %q (want .yaml, .yml or .toml)", ext)
	}
	if err != nil {
		return opts, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := opts.Validate(); err != nil {
		return opts, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return opts, nil
}

// Validate rejects option combinations the translator cannot honor.
func (o Options) Validate() error {
	if o.InlineThreshold < 1 {
		return fmt.Errorf("inline-threshold must be positive, got %d", o.InlineThreshold)
	}
	switch o.Internal {
	case InternalNone, InternalMagic, InternalLib:
	default:
		return fmt.Errorf("unknown internal mode %q (want none, magic or lib)", o.Internal)
	}
	for _, p := range o.LibraryPrefixes {
		if p == "" {
			return fmt.Errorf("library-prefixes must not contain an empty prefix")
		}
	}
	return nil
}

// Model returns the gates the semantic model honors.
func (o Options) Model() semantic.Options {
	return semantic.Options{
		AllowInline:     o.AllowInline,
		ObjectInlining:  o.ObjectInlining,
		InlineThreshold: o.InlineThreshold,
		LibraryPrefixes: o.LibraryPrefixes,
	}
}

// Map flattens the options that influence output, keyed like the config
// file. It is the input of the configuration fingerprint.
func (o Options) Map() map[string]any {
	return map[string]any{
		"allow-inline":           o.AllowInline,
		"devirtualize":           o.Devirtualize,
		"object-inlining":        o.ObjectInlining,
		"inline-threshold":       o.InlineThreshold,
		"translate-on-violation": o.TranslateOnViolation,
		"library-prefixes":       append([]string{}, o.LibraryPrefixes...),
		"internal":               string(o.Internal),
	}
}
