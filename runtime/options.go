package runtime

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/hostinterop/dispatch"
	"github.com/wippyai/hostinterop/errors"
	"github.com/wippyai/hostinterop/wasm"
)

// EnvLogLevel overrides the configured log level
const EnvLogLevel = "INTEROP_LOG_LEVEL"

// Options configures an Engine
type Options struct {
	// SharedCacheLimit bounds each per-message polymorphic cache.
	// Zero selects dispatch.DefaultSharedCacheLimit; negative disables it.
	SharedCacheLimit int
	// DisableSharing builds every handler per context.
	DisableSharing bool
	// DisplaySideEffects lets ToDisplayString run toString.
	DisplaySideEffects bool
	// Language is reported by GetLanguage. Defaults to "java".
	Language string
	// LogLevel is one of debug, info, warn, error. Empty means info.
	LogLevel string
	// MemoryPages sizes the linear memory of each context. Zero means
	// contexts have no linear memory and direct buffers are unavailable.
	MemoryPages uint32
	// Logger, when set, is installed in every package that logs.
	Logger *zap.Logger
}

// DefaultOptions returns the default engine options
func DefaultOptions() Options {
	return Options{
		SharedCacheLimit: dispatch.DefaultSharedCacheLimit,
		Language:         "java",
		LogLevel:         "info",
	}
}

func (o Options) validate() error {
	if strings.TrimSpace(o.Language) == "" {
		return errors.InvalidInput(errors.PhaseConfig, "language must not be empty")
	}
	if _, err := ParseLevel(o.LogLevel); err != nil {
		return err
	}
	if uint64(o.MemoryPages) > wasm.MemoryMaxPages32 {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Value(o.MemoryPages).
			Detail("memory_pages exceeds %d", wasm.MemoryMaxPages32).
			Build()
	}
	return nil
}

// fileConfig is the TOML layout of a config file
type fileConfig struct {
	SharedCacheLimit   *int   `toml:"shared_cache_limit"`
	DisableSharing     bool   `toml:"disable_sharing"`
	DisplaySideEffects bool   `toml:"display_side_effects"`
	Language           string `toml:"language"`
	LogLevel           string `toml:"log_level"`
	MemoryPages        uint32 `toml:"memory_pages"`
}

// LoadConfig reads options from a TOML file. Keys that are absent keep
// their defaults, and INTEROP_LOG_LEVEL overrides log_level.
func LoadConfig(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, "read "+path)
	}
	return ParseConfig(string(data))
}

// ParseConfig reads options from TOML text
func ParseConfig(text string) (Options, error) {
	var fc fileConfig
	md, err := toml.Decode(text, &fc)
	if err != nil {
		return Options{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Options{}, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Value(undecoded[0].String()).
			Detail("unknown config key %q", undecoded[0].String()).
			Build()
	}

	opts := DefaultOptions()
	if fc.SharedCacheLimit != nil {
		opts.SharedCacheLimit = *fc.SharedCacheLimit
	}
	opts.DisableSharing = fc.DisableSharing
	opts.DisplaySideEffects = fc.DisplaySideEffects
	if fc.Language != "" {
		opts.Language = fc.Language
	}
	if fc.LogLevel != "" {
		opts.LogLevel = fc.LogLevel
	}
	opts.MemoryPages = fc.MemoryPages
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		opts.LogLevel = lvl
	}
	return opts, opts.validate()
}

// ParseLevel parses a log level name. Empty means info.
func ParseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(strings.ToLower(s))
	if err != nil {
		return 0, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Value(s).
			Cause(err).
			Detail("unknown log level").
			Build()
	}
	return lvl, nil
}

// NewLogger builds a development logger at the options' level
func (o Options) NewLogger() (*zap.Logger, error) {
	lvl, err := ParseLevel(o.LogLevel)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
