// Package config loads and edits cutler's TOML configuration document.
//
// The document has a fixed set of recognized top-level sections: the
// advisory lock flag, the [set] managed-settings tree, the [vars]
// variable map, [command.*] external command descriptors, the [brew]
// package table and the [remote] source table. Anything else is a hard
// parse error.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/machlit/cutler/pkg/errors"
)

// Command represents one [command.<name>] table. The run string may
// reference [vars] entries and environment variables with $name or
// ${name} syntax.
type Command struct {
	Run         string   `toml:"run"`
	EnsureFirst bool     `toml:"ensure_first"`
	Required    []string `toml:"required"`
	Flag        bool     `toml:"flag"`
	Sudo        bool     `toml:"sudo"`
}

// Brew represents the [brew] table.
type Brew struct {
	Formulae []string `toml:"formulae"`
	Casks    []string `toml:"casks"`
	Taps     []string `toml:"taps"`
	NoDeps   bool     `toml:"no_deps"`
}

// Remote represents the [remote] table.
type Remote struct {
	URL      string `toml:"url"`
	Autosync bool   `toml:"autosync"`
}

// Config is a loaded configuration document.
//
// Set holds the raw decoded [set] tree; the structural inline-vs-headed
// table distinction needed to flatten it into domains is recovered from
// the raw document bytes by pkg/domains.
type Config struct {
	Lock    bool                   `toml:"lock"`
	Set     map[string]interface{} `toml:"set"`
	Vars    map[string]string      `toml:"vars"`
	Command map[string]Command     `toml:"command"`
	Brew    *Brew                  `toml:"brew"`
	Remote  *Remote                `toml:"remote"`

	path string
	raw  []byte
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string { return c.path }

// Raw returns the exact bytes the config was parsed from. The domain
// collector and the digest function both work on these bytes.
func (c *Config) Raw() []byte { return c.raw }

// Exists reports whether a config file is present at path.
func Exists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Parse decodes a configuration document. Unknown top-level fields are
// rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "config is not valid cutler TOML")
	}
	cfg.raw = data
	return &cfg, nil
}

// Load reads and parses the config at path.
func Load(path string) (*Config, error) {
	if !Exists(path) {
		return nil, errors.Newf(errors.ErrConfigLoad, "no config file at %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "could not read config")
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.path = path
	return cfg, nil
}

// LoadUnlocked loads the config and refuses to return it when the
// advisory lock flag is set. Mutating commands go through this gate.
func LoadUnlocked(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if cfg.Lock {
		return nil, errors.New(errors.ErrConfigLocked, "config is locked; run `cutler unlock` first")
	}
	return cfg, nil
}

// Save writes a raw document to path, creating parent directories.
func Save(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, errors.ErrConfigLoad, "could not create config directory")
	}
	return os.WriteFile(path, data, 0644)
}

// top-level lock assignment, only meaningful before the first table header
var lockLineRe = regexp.MustCompile(`^\s*lock\s*=\s*(true|false)\s*(#.*)?$`)

// SetLock flips the top-level lock flag with a minimal in-place edit so
// the rest of the document keeps its formatting and comments. A missing
// flag is inserted at the top of the file.
func SetLock(path string, locked bool) error {
	if !Exists(path) {
		return errors.Newf(errors.ErrConfigLoad, "no config file at %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrConfigLoad, "could not read config")
	}

	// validate before editing so we never corrupt an unparseable file further
	if _, err := Parse(data); err != nil {
		return err
	}

	lines := strings.Split(string(data), "\n")
	edited := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "[") {
			// table headers end the top-level key region
			break
		}
		if lockLineRe.MatchString(line) {
			lines[i] = lockAssignment(locked)
			edited = true
			break
		}
	}
	if !edited {
		lines = append([]string{lockAssignment(locked)}, lines...)
	}

	return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0644)
}

func lockAssignment(locked bool) string {
	if locked {
		return "lock = true"
	}
	return "lock = false"
}
