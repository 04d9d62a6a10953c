package config

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func writeTemp(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return p
}

func TestLoadFile_Basic(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "evgate.yaml", "policy: p.yml\nno_color: true\nupload:\n  url: https://x.example\n  no_metadata: true\n")
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Policy == nil || *cfg.Policy != "p.yml" {
		t.Fatalf("expected policy=p.yml, got %#v", cfg.Policy)
	}
	if cfg.NoColor == nil || !*cfg.NoColor {
		t.Fatalf("expected no_color=true")
	}
	up := cfg.GetUpload()
	if up.GetURL() != "https://x.example" {
		t.Fatalf("expected upload url, got %q", up.GetURL())
	}
	if up.IncludeMetadata() {
		t.Fatalf("expected metadata disabled")
	}
	if cfg.EvidenceGlob != nil {
		t.Fatalf("unset fields must stay nil")
	}
}

func TestLoadLocal_PrefersDotfile(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, dir, "evgate.yaml", "stage: one\n")
	writeTemp(t, dir, ".evgate.yaml", "stage: two\n")
	cfg, err := LoadLocal(dir)
	if err != nil {
		t.Fatalf("LoadLocal: %v", err)
	}
	if cfg.Stage == nil || *cfg.Stage != "two" {
		t.Fatalf("expected stage=two from .evgate.yaml, got %#v", cfg.Stage)
	}
}

func TestLoadLocal_NoConfig(t *testing.T) {
	if _, err := LoadLocal(t.TempDir()); err == nil {
		t.Fatal("expected error when no local config exists")
	}
}

func TestLoadGlobal_XDG_Config(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "evgate")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeTemp(t, cfgDir, "config.yml", "evidence_glob: \"e/**/*.json\"\n")
	t.Setenv("XDG_CONFIG_HOME", dir)
	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	if cfg.EvidenceGlob == nil || *cfg.EvidenceGlob != "e/**/*.json" {
		t.Fatalf("expected evidence_glob from global config, got %#v", cfg.EvidenceGlob)
	}
}

func TestLoadGlobal_NoConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "")
	if _, err := LoadGlobal(); err == nil {
		t.Fatal("expected error when no global config dir exists")
	}
}

func TestUploadToken_FromEnv(t *testing.T) {
	t.Setenv("EVGATE_UPLOAD_TOKEN", "default-token")
	t.Setenv("CUSTOM_TOKEN", "custom")
	if got := (UploadConfig{}).GetToken(); got != "default-token" {
		t.Fatalf("got %q", got)
	}
	name := "CUSTOM_TOKEN"
	if got := (UploadConfig{TokenEnv: &name}).GetToken(); got != "custom" {
		t.Fatalf("got %q", got)
	}
}

func TestSample_Parses(t *testing.T) {
	var cfg FileConfig
	if err := yaml.Unmarshal([]byte(Sample), &cfg); err != nil {
		t.Fatalf("sample config: %v", err)
	}
	if cfg.Policy == nil || *cfg.Policy != ".security/policy.json" {
		t.Fatalf("unexpected policy %#v", cfg.Policy)
	}
}
