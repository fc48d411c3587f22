package config

import (
	"errors"
	"flag"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-ppm-raytracer/pkg/core"
)

func mapLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

// unsetEnv clears a variable for the duration of the test
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should be valid: %v", err)
	}
	if cfg.Scene != "default" || cfg.Workers != 1 || cfg.Output != "-" || cfg.Seed != 42 {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(mapLookup(map[string]string{
		"RT_SCENE":     "spheregrid",
		"RT_WIDTH":     " 320 ",
		"RT_HEIGHT":    "180",
		"RT_SAMPLES":   "8",
		"RT_WORKERS":   "0",
		"RT_SEED":      "-7",
		"RT_THUMBNAIL": "64",
		"RT_QUIET":     "true",
		"RT_S3_BUCKET": "renders",
		"RT_S3_PREFIX": "nightly",
	}))
	if err != nil {
		t.Fatalf("applyEnv: %v", err)
	}

	if cfg.Scene != "spheregrid" || cfg.Width != 320 || cfg.Height != 180 || cfg.Samples != 8 {
		t.Errorf("Render settings not applied: %+v", cfg)
	}
	if cfg.Workers != 0 || cfg.Seed != -7 || cfg.Thumbnail != 64 || !cfg.Quiet {
		t.Errorf("Run settings not applied: %+v", cfg)
	}
	if cfg.S3.Bucket != "renders" || cfg.S3.Prefix != "nightly" {
		t.Errorf("S3 settings not applied: %+v", cfg.S3)
	}
	if cfg.RowsPerTask != 8 {
		t.Errorf("Unset variable changed RowsPerTask to %d", cfg.RowsPerTask)
	}
}

func TestApplyEnv_InvalidValues(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(mapLookup(map[string]string{
		"RT_WIDTH": "wide",
		"RT_QUIET": "sometimes",
		"RT_SEED":  "1.5",
	}))
	if err == nil {
		t.Fatal("Expected error for unparsable values")
	}
	for _, name := range []string{"RT_WIDTH", "RT_QUIET", "RT_SEED"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("Expected error to mention %s, got %v", name, err)
		}
	}
}

func TestLoad_EnvFile(t *testing.T) {
	unsetEnv(t, "RT_SCENE")
	unsetEnv(t, "RT_SAMPLES")

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "RT_SCENE=hd\nRT_SAMPLES=3\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scene != "hd" || cfg.Samples != 3 {
		t.Errorf("Expected values from .env, got scene %q samples %d", cfg.Scene, cfg.Samples)
	}
}

func TestLoad_MissingEnvFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Missing .env should not be an error: %v", err)
	}
	if cfg == nil {
		t.Fatal("Expected a config")
	}
}

func TestLoad_EnvironmentWinsOverFile(t *testing.T) {
	t.Setenv("RT_SCENE", "spheregrid")

	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("RT_SCENE=hd\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scene != "spheregrid" {
		t.Errorf("Expected process environment to win, got %q", cfg.Scene)
	}
}

func TestRegisterFlags(t *testing.T) {
	cfg := Default()
	cfg.Samples = 5 // as if set from the environment

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.RegisterFlags(fs)
	if err := fs.Parse([]string{"-scene", "hd", "-width", "64", "-o", "out.png", "-thumbnail", "32"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Scene != "hd" || cfg.Width != 64 || cfg.Output != "out.png" || cfg.Thumbnail != 32 {
		t.Errorf("Flags not applied: %+v", cfg)
	}
	if cfg.Samples != 5 {
		t.Errorf("Expected environment value to survive as flag default, got %d", cfg.Samples)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"empty scene", func(c *Config) { c.Scene = "" }},
		{"width one", func(c *Config) { c.Width = 1 }},
		{"negative height", func(c *Config) { c.Height = -4 }},
		{"negative samples", func(c *Config) { c.Samples = -1 }},
		{"negative workers", func(c *Config) { c.Workers = -2 }},
		{"zero rows per task", func(c *Config) { c.RowsPerTask = 0 }},
		{"empty output", func(c *Config) { c.Output = "" }},
		{"thumbnail to stdout", func(c *Config) { c.Thumbnail = 64 }},
		{"publish without bucket", func(c *Config) { c.Publish = true }},
		{"bad port", func(c *Config) { c.Port = 70000 }},
		{"bad sky", func(c *Config) { c.SkyTop = "2,0,0" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		input    string
		expected core.Vec3
	}{
		{"1,1,1", core.One},
		{" 0.5, 0.7 ,1 ", core.NewVec3(0.5, 0.7, 1)},
		{"white", core.One},
		{"Black", core.Zero},
		{"red", core.NewVec3(1, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseColor(tt.input)
			if err != nil {
				t.Fatalf("ParseColor(%q): %v", tt.input, err)
			}
			if got.Subtract(tt.expected).Length() > 1e-9 {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestParseColor_Invalid(t *testing.T) {
	for _, input := range []string{"", "0.5,0.5", "a,b,c", "1,1,1.5", "-0.1,0,0", "notacolor"} {
		t.Run(input, func(t *testing.T) {
			if _, err := ParseColor(input); !errors.Is(err, ErrInvalidColor) {
				t.Errorf("Expected ErrInvalidColor for %q, got %v", input, err)
			}
		})
	}
}

func TestSky(t *testing.T) {
	cfg := Default()
	top, bottom, ok, err := cfg.Sky(core.UnitZ, core.One)
	if err != nil || ok || top != core.UnitZ || bottom != core.One {
		t.Errorf("Expected defaults with no override, got %v %v %v %v", top, bottom, ok, err)
	}

	cfg.SkyTop = "skyblue"
	top, bottom, ok, err = cfg.Sky(core.UnitZ, core.One)
	if err != nil || !ok {
		t.Fatalf("Expected override, got ok=%v err=%v", ok, err)
	}
	// skyblue is (135, 206, 235)
	if math.Abs(top.X-135.0/255) > 1e-9 || math.Abs(top.Z-235.0/255) > 1e-9 {
		t.Errorf("Unexpected skyblue value %v", top)
	}
	if bottom != core.One {
		t.Errorf("Expected bottom to keep default, got %v", bottom)
	}
}
