package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/tailscale/hujson"

	"github.com/calvinalkan/smapcheck/internal/difftest"
	"github.com/calvinalkan/smapcheck/pkg/sortedmap"
)

// ConfigFileName is the default config file name.
const ConfigFileName = ".smapcheck.json"

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	Repeats            int    `json:"repeats"`
	OpsPerRepeat       int    `json:"ops_per_repeat"`
	KeyRanges          []int  `json:"key_ranges"`
	OutOfBoundsPercent int    `json:"out_of_bounds_percent"`
	StartKeyPercent    int    `json:"start_key_percent"`
	Comparator         string `json:"comparator"`
	Backend            string `json:"backend"`
	Seed               uint64 `json:"seed"`
	GeneratedDir       string `json:"generated_dir"`

	// Resolved (computed, not serialized)
	EffectiveCwd string `json:"-"`

	// Sources tracks which config files were loaded (for diagnostics)
	Sources ConfigSources `json:"-"`
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Project  string // Path to .smapcheck.json in the working directory if loaded
	Explicit string // Path given with -c/--config if loaded
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	sweep := difftest.DefaultSweepConfig()

	return Config{
		Repeats:            sweep.Repeats,
		OpsPerRepeat:       sweep.OpsPerRepeat,
		KeyRanges:          slices.Clone(sweep.KeyRanges),
		OutOfBoundsPercent: sweep.OutOfBoundsPercent,
		StartKeyPercent:    sweep.StartKeyPercent,
		Comparator:         "ascending",
		Backend:            "btree",
		GeneratedDir:       "generated",
	}
}

// fileConfig mirrors Config with pointers so that a file can set a field to
// its zero value.
type fileConfig struct {
	Repeats            *int    `json:"repeats"`
	OpsPerRepeat       *int    `json:"ops_per_repeat"`
	KeyRanges          *[]int  `json:"key_ranges"`
	OutOfBoundsPercent *int    `json:"out_of_bounds_percent"`
	StartKeyPercent    *int    `json:"start_key_percent"`
	Comparator         *string `json:"comparator"`
	Backend            *string `json:"backend"`
	Seed               *uint64 `json:"seed"`
	GeneratedDir       *string `json:"generated_dir"`
}

// LoadConfigInput holds the inputs for LoadConfig.
type LoadConfigInput struct {
	WorkDirOverride string // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath      string // -c/--config flag value
}

// LoadConfig loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Project config file at default location (.smapcheck.json, if exists)
// 3. Explicit config file via ConfigPath (if non-empty)
//
// Command flags are applied on top by each command, which validates again.
func LoadConfig(input LoadConfigInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := DefaultConfig()
	cfg.EffectiveCwd = workDir

	projectPath := filepath.Join(workDir, ConfigFileName)

	loaded, err := mergeConfigFile(&cfg, projectPath, false)
	if err != nil {
		return Config{}, err
	}

	if loaded {
		cfg.Sources.Project = projectPath
	}

	if input.ConfigPath != "" {
		explicitPath := input.ConfigPath
		if !filepath.IsAbs(explicitPath) {
			explicitPath = filepath.Join(workDir, explicitPath)
		}

		_, err = mergeConfigFile(&cfg, explicitPath, true)
		if err != nil {
			return Config{}, err
		}

		cfg.Sources.Explicit = explicitPath
	}

	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// mergeConfigFile overlays the file at path onto cfg. If mustExist is
// false, a missing file is not an error and reports loaded=false.
func mergeConfigFile(cfg *Config, path string, mustExist bool) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if mustExist {
				return false, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
			}

			return false, nil
		}

		return false, fmt.Errorf("%w: %s: %w", ErrConfigFileRead, path, err)
	}

	overlay, err := parseConfig(data)
	if err != nil {
		return false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	mergeConfig(cfg, overlay)

	return true, nil
}

func parseConfig(data []byte) (fileConfig, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg fileConfig

	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.DisallowUnknownFields()

	err = dec.Decode(&cfg)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return cfg, nil
}

func mergeConfig(base *Config, overlay fileConfig) {
	setIf(&base.Repeats, overlay.Repeats)
	setIf(&base.OpsPerRepeat, overlay.OpsPerRepeat)
	setIf(&base.KeyRanges, overlay.KeyRanges)
	setIf(&base.OutOfBoundsPercent, overlay.OutOfBoundsPercent)
	setIf(&base.StartKeyPercent, overlay.StartKeyPercent)
	setIf(&base.Comparator, overlay.Comparator)
	setIf(&base.Backend, overlay.Backend)
	setIf(&base.Seed, overlay.Seed)
	setIf(&base.GeneratedDir, overlay.GeneratedDir)
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Validate checks the sweep settings and resolves the comparator and
// backend names. Every failure wraps difftest.ErrInvalidConfig.
func (c Config) Validate() error {
	err := c.SweepConfig().Validate()
	if err != nil {
		return err
	}

	_, err = difftest.NewTarget(c.Comparator, c.Backend)
	if err != nil {
		return fmt.Errorf("%w: %w", difftest.ErrInvalidConfig, err)
	}

	if c.GeneratedDir == "" {
		return fmt.Errorf("%w: generated_dir must not be empty", difftest.ErrInvalidConfig)
	}

	return nil
}

// SweepConfig returns the sweep settings. Seed is copied as configured;
// callers replace zero with a clock-derived seed.
func (c Config) SweepConfig() difftest.SweepConfig {
	sweep := difftest.DefaultSweepConfig()
	sweep.Repeats = c.Repeats
	sweep.OpsPerRepeat = c.OpsPerRepeat
	sweep.KeyRanges = c.KeyRanges
	sweep.OutOfBoundsPercent = c.OutOfBoundsPercent
	sweep.StartKeyPercent = c.StartKeyPercent
	sweep.Seed = c.Seed

	return sweep
}

// Target resolves the comparator and backend.
func (c Config) Target() (difftest.Target, error) {
	return difftest.NewTarget(c.Comparator, c.Backend)
}

// GeneratedDirAbs returns GeneratedDir resolved against the working
// directory.
func (c Config) GeneratedDirAbs() string {
	return c.resolve(c.GeneratedDir)
}

func (c Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(c.EffectiveCwd, path)
}

// FormatConfig renders cfg as formatted JSON.
func FormatConfig(cfg Config) (string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}

	formatted, err := hujson.Format(data)
	if err != nil {
		return "", fmt.Errorf("formatting config: %w", err)
	}

	return string(bytes.TrimRight(formatted, "\n")), nil
}

// consoleOnly reports whether repros should be printed instead of written
// to disk. CI systems set CI=true.
func consoleOnly(env map[string]string) bool {
	switch env["CI"] {
	case "", "0", "false", "FALSE", "False":
		return false
	default:
		return true
	}
}

// sampleKeys returns keys for a comparator contract check covering the
// low end of the widest key range, where generated keys concentrate.
func sampleKeys(keyRanges []int) []int {
	const maxSample = 24

	widest := slices.Max(keyRanges)

	n := min(widest, maxSample)
	keys := make([]int, 0, n+1)

	for k := range n {
		keys = append(keys, k)
	}

	if widest > n {
		keys = append(keys, widest-1)
	}

	return keys
}

func checkComparator(target difftest.Target, keyRanges []int) error {
	err := sortedmap.CheckComparator(target.Comparator, sampleKeys(keyRanges))
	if err != nil {
		return fmt.Errorf("%w: %w", difftest.ErrInvalidConfig, err)
	}

	return nil
}
