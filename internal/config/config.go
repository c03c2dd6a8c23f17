// Package config loads recovery-card defaults from a config file.
//
// The file is optional. It is looked up in the XDG config directory
// ($XDG_CONFIG_HOME/recovery-card/) as config.yaml, config.yml or
// config.jsonc, or given explicitly with --config. YAML files are parsed
// with gopkg.in/yaml.v3; JSON files may contain comments and trailing
// commas, which github.com/tidwall/jsonc strips before encoding/json runs.
//
// Values from the file are defaults only: command-line flags win.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/recovery-card/internal/model"
	"github.com/shinji-kodama/recovery-card/internal/output"
	"github.com/shinji-kodama/recovery-card/internal/tex"
)

// AppName is the directory name under the XDG config home.
const AppName = "recovery-card"

// candidateNames are tried in order inside the config directory.
var candidateNames = []string{"config.yaml", "config.yml", "config.jsonc", "config.json"}

// Config holds the settings that can be given in the config file.
// Secrets are deliberately absent: phrases are only ever read from
// flags or the interactive prompt.
type Config struct {
	// Engine selects the compiler: "local" (default) or "docker".
	Engine string `yaml:"engine" json:"engine"`

	// Compiler is the pdflatex executable for the local engine.
	Compiler string `yaml:"compiler" json:"compiler"`

	// Image is the TeX Live image for the docker engine.
	Image string `yaml:"image" json:"image"`

	// AssetsDir is the directory holding the logo images. The compiler
	// runs there, and relative --output names are written there.
	AssetsDir string `yaml:"assetsDir" json:"assetsDir"`

	// MetaMaskAccount is the default account label.
	MetaMaskAccount string `yaml:"metamaskAccount" json:"metamaskAccount"`

	// Output is the default --output value.
	Output string `yaml:"output" json:"output"`
}

// Default returns the built-in configuration. AssetsDir is left empty;
// ResourceDir falls back to the executable's directory.
func Default() *Config {
	return &Config{
		Engine:          model.EngineLocal.String(),
		Compiler:        tex.DefaultBinary,
		MetaMaskAccount: model.DefaultMetaMaskAccount,
		Output:          output.DefaultName,
	}
}

// Locate returns the first config file that exists in the XDG config
// directory, or "" when there is none.
func Locate() string {
	for _, name := range candidateNames {
		p := filepath.Join(xdg.ConfigHome, AppName, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Load reads the config file at path over the defaults. An empty path
// means "use Locate"; if nothing is found, the defaults are returned.
// An explicit path that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = Locate()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fromFile Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &fromFile); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &fromFile); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.merge(&fromFile)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// merge copies the non-empty fields of other into c.
func (c *Config) merge(other *Config) {
	set := func(dst *string, src string) {
		if strings.TrimSpace(src) != "" {
			*dst = src
		}
	}
	set(&c.Engine, other.Engine)
	set(&c.Compiler, other.Compiler)
	set(&c.Image, other.Image)
	set(&c.AssetsDir, other.AssetsDir)
	set(&c.MetaMaskAccount, other.MetaMaskAccount)
	set(&c.Output, other.Output)
}

// Validate checks the values that have a fixed set of choices.
func (c *Config) Validate() error {
	if _, err := model.ParseEngine(c.Engine); err != nil {
		return err
	}
	return nil
}

// ResourceDir returns the directory holding the template's assets:
// AssetsDir when set (with ~ expanded), otherwise the directory of the
// running executable with symlinks resolved.
func (c *Config) ResourceDir() (string, error) {
	if c.AssetsDir != "" {
		dir := c.AssetsDir
		if dir == "~" || strings.HasPrefix(dir, "~/") {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to expand %s: %w", dir, err)
			}
			dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
		}
		return filepath.Abs(dir)
	}
	return ExecutableDir()
}

// ExecutableDir returns the directory containing the running binary.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}
