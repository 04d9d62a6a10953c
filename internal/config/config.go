package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalNames are searched, in order, in the working directory.
var LocalNames = []string{".evgate.yml", ".evgate.yaml", "evgate.yml", "evgate.yaml"}

// FileConfig is the on-disk YAML configuration shape for evgate. Every
// field mirrors a CLI flag; nil means "not set here".
type FileConfig struct {
	Policy          *string `yaml:"policy"`
	EvidenceGlob    *string `yaml:"evidence_glob"`
	EvidenceDir     *string `yaml:"evidence_dir"`
	Stage           *string `yaml:"stage"`
	NoColor         *bool   `yaml:"no_color"`
	LogFormat       *string `yaml:"log_format"`
	StrictPolicy    *bool   `yaml:"strict_policy"`
	Audit           *bool   `yaml:"audit"`
	MetricsTextfile *string `yaml:"metrics_textfile"`
	Template        *string `yaml:"template"`

	Upload *UploadConfig `yaml:"upload"`
}

// UploadConfig holds settings for posting results to a dashboard.
type UploadConfig struct {
	URL *string `yaml:"url"`
	// TokenEnv names the environment variable holding the bearer token.
	// Tokens themselves are never read from config files.
	TokenEnv   *string `yaml:"token_env"`
	NoMetadata *bool   `yaml:"no_metadata"`
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadLocal searches for a repo-local config file in the given root.
func LoadLocal(repoRoot string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range LocalNames {
		p := filepath.Join(repoRoot, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, errors.New("no local config")
}

// GlobalPath returns $XDG_CONFIG_HOME/evgate/config.yml, falling back to
// ~/.config.
func GlobalPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return "", errors.New("no config dir")
	}
	return filepath.Join(base, "evgate", "config.yml"), nil
}

// LoadGlobal loads the global config file.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	p, err := GlobalPath()
	if err != nil {
		return cfg, err
	}
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, errors.New("no global config")
}

// GetUpload returns the upload configuration, never nil.
func (fc FileConfig) GetUpload() UploadConfig {
	if fc.Upload == nil {
		return UploadConfig{}
	}
	return *fc.Upload
}

// GetURL returns the upload endpoint or empty string.
func (uc UploadConfig) GetURL() string {
	if uc.URL == nil {
		return ""
	}
	return *uc.URL
}

// GetToken resolves the token from the configured environment variable,
// EVGATE_UPLOAD_TOKEN by default.
func (uc UploadConfig) GetToken() string {
	name := "EVGATE_UPLOAD_TOKEN"
	if uc.TokenEnv != nil && *uc.TokenEnv != "" {
		name = *uc.TokenEnv
	}
	return os.Getenv(name)
}

// IncludeMetadata reports whether git metadata is sent (default: true).
func (uc UploadConfig) IncludeMetadata() bool {
	if uc.NoMetadata == nil {
		return true
	}
	return !*uc.NoMetadata
}

// Sample is written by `evgate config init`.
const Sample = `# evgate configuration. CLI flags take precedence over this file,
# which takes precedence over ~/.config/evgate/config.yml.
policy: .security/policy.json
evidence_glob: "evidence/**/normalized/*.json"
evidence_dir: evidence
stage: scan
no_color: false
log_format: text
strict_policy: false
audit: false
# metrics_textfile: /var/lib/node_exporter/textfile/evgate.prom
# template: markdown
# upload:
#   url: https://dashboard.example.com/api/evgate
#   token_env: EVGATE_UPLOAD_TOKEN
#   no_metadata: false
`
