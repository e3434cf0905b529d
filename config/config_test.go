package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := ServiceConfig{Name: "audiotext"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
		if cfg.Logging.ServiceName != "audiotext" {
			t.Errorf("expected logging service name propagated, got %q", cfg.Logging.ServiceName)
		}
	})

	t.Run("production keeps debug false", func(t *testing.T) {
		cfg := ServiceConfig{Name: "audiotext", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr string
	}{
		{"valid", ServiceConfig{Name: "svc", Environment: "staging"}, ""},
		{"missing name", ServiceConfig{Environment: "production"}, "config.name is required"},
		{"invalid environment", ServiceConfig{Name: "svc", Environment: "qa"}, "config.environment must be one of"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Logging.ApplyDefaults()
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

type jobSection struct {
	Timeout time.Duration `mapstructure:"timeout"`
	TempDir string        `mapstructure:"temp_dir"`
}

type testConfig struct {
	ServiceConfig `mapstructure:",squash"`
	Job           jobSection `mapstructure:"job"`
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigWithYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", `
name: audiotext
environment: staging
job:
  timeout: 90s
  temp_dir: /var/tmp/audiotext
`)

	var cfg testConfig
	if err := LoadConfig("audiotext", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "audiotext" || cfg.Environment != "staging" {
		t.Errorf("unexpected service block: %+v", cfg.ServiceConfig)
	}
	if cfg.Job.Timeout != 90*time.Second {
		t.Errorf("expected 90s timeout, got %v", cfg.Job.Timeout)
	}
	if cfg.Job.TempDir != "/var/tmp/audiotext" {
		t.Errorf("unexpected temp dir %q", cfg.Job.TempDir)
	}
}

func TestLoadConfigEnvOverridesYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", `
name: audiotext
job:
  temp_dir: /from/yaml
`)
	t.Setenv("JOB_TEMP_DIR", "/from/env")
	t.Setenv("AUDIOTEXT_JOB_TIMEOUT", "2m")

	var cfg testConfig
	if err := LoadConfig("audiotext", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Job.TempDir != "/from/env" {
		t.Errorf("expected env override, got %q", cfg.Job.TempDir)
	}
	if cfg.Job.Timeout != 2*time.Minute {
		t.Errorf("expected prefixed env to set timeout, got %v", cfg.Job.Timeout)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg testConfig
	if err := LoadConfig("nonexistent", &cfg, WithConfigFile("/nonexistent/path.yml")); err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing file, got %v", err)
	}
}

func TestLoadConfigMalformedFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", "name: [unterminated")
	var cfg testConfig
	if err := LoadConfig("audiotext", &cfg, WithConfigFile(path)); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

type mockFS struct {
	files  map[string]bool
	loaded []string
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error {
	m.loaded = append(m.loaded, path)
	return nil
}

func TestResolverSearchesServiceDir(t *testing.T) {
	want := filepath.Join("cmd", "audiotext", "config.yml")
	fs := &mockFS{files: map[string]bool{want: true}}
	files := (&Resolver{FileSystem: fs}).ResolveFiles("audiotext", LoaderConfig{})
	if files.ConfigFile != want {
		t.Errorf("expected %q, got %q", want, files.ConfigFile)
	}
	if files.EnvFile != "" {
		t.Errorf("expected no env file, got %q", files.EnvFile)
	}
}

func TestResolverPrefersServiceEnvFile(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		".env":           true,
		".env.audiotext": true,
	}}
	files := (&Resolver{FileSystem: fs}).ResolveFiles("audiotext", LoaderConfig{})
	if files.EnvFile != ".env.audiotext" {
		t.Errorf("expected service env file, got %q", files.EnvFile)
	}
}

func TestResolverExplicitPathsWin(t *testing.T) {
	fs := &mockFS{files: map[string]bool{"config.yml": true}}
	files := (&Resolver{FileSystem: fs}).ResolveFiles("audiotext", LoaderConfig{ConfigFile: "/etc/at.yml", EnvFile: "/etc/at.env"})
	if files.ConfigFile != "/etc/at.yml" || files.EnvFile != "/etc/at.env" {
		t.Errorf("explicit paths not honored: %+v", files)
	}
}

func TestLoadConfigReadsEnvFileThroughFileSystem(t *testing.T) {
	fs := &mockFS{files: map[string]bool{"/etc/at.env": true}}
	var cfg testConfig
	if err := LoadConfig("audiotext", &cfg, WithFileSystem(fs), WithEnvFile("/etc/at.env")); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if len(fs.loaded) != 1 || fs.loaded[0] != "/etc/at.env" {
		t.Errorf("expected env file loaded once, got %v", fs.loaded)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	got := envKeyVariants("JOB_TEMP_DIR")
	for _, want := range []string{"job_temp_dir", "job.temp.dir", "job.temp_dir"} {
		found := false
		for _, g := range got {
			if g == want {
				found = true
			}
		}
		if !found {
			t.Errorf("expected variant %q in %v", want, got)
		}
	}
	if v := envKeyVariants("DEBUG"); len(v) != 1 || v[0] != "debug" {
		t.Errorf("single-part key should map to itself, got %v", v)
	}
}
