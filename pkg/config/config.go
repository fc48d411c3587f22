package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/image/colornames"

	"github.com/df07/go-ppm-raytracer/pkg/core"
	"github.com/df07/go-ppm-raytracer/pkg/export"
)

// EnvPrefix is prepended to every environment variable the configuration reads
const EnvPrefix = "RT_"

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrInvalidColor  = errors.New("invalid color")
)

// Config holds the settings for a render run.
// Zero Width, Height or Samples mean "use the scene's own setting".
type Config struct {
	Scene       string
	Width       int
	Height      int
	Samples     int
	Workers     int // 0 uses every CPU
	RowsPerTask int
	Seed        int64

	Output    string // "-" writes PPM to stdout
	Thumbnail uint   // Longest side of the thumbnail, 0 disables it
	Quiet     bool

	SkyTop    string // Optional sky override, "r,g,b" or a color name
	SkyBottom string

	Publish bool
	S3      export.S3Config

	Port int // Web server port
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Scene:       "default",
		Workers:     1,
		RowsPerTask: 8,
		Seed:        42,
		Output:      "-",
		Port:        8080,
	}
}

// Load reads an optional .env file and applies RT_* environment variables over the defaults
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := Default()
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from environment variables
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs []error

	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	integer := func(name string, dst *int) {
		if v, ok := lookup(EnvPrefix + name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(EnvPrefix + name); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = b
		}
	}

	str("SCENE", &c.Scene)
	integer("WIDTH", &c.Width)
	integer("HEIGHT", &c.Height)
	integer("SAMPLES", &c.Samples)
	integer("WORKERS", &c.Workers)
	integer("ROWS_PER_TASK", &c.RowsPerTask)
	integer("PORT", &c.Port)
	str("OUTPUT", &c.Output)
	str("SKY_TOP", &c.SkyTop)
	str("SKY_BOTTOM", &c.SkyBottom)
	boolean("QUIET", &c.Quiet)
	boolean("PUBLISH", &c.Publish)

	if v, ok := lookup(EnvPrefix + "SEED"); ok {
		seed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSEED: %w", EnvPrefix, err))
		} else {
			c.Seed = seed
		}
	}
	if v, ok := lookup(EnvPrefix + "THUMBNAIL"); ok {
		size, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sTHUMBNAIL: %w", EnvPrefix, err))
		} else {
			c.Thumbnail = uint(size)
		}
	}

	str("S3_ACCESS_KEY", &c.S3.AccessKey)
	str("S3_SECRET_KEY", &c.S3.SecretKey)
	str("S3_ENDPOINT", &c.S3.Endpoint)
	str("S3_REGION", &c.S3.Region)
	str("S3_BUCKET", &c.S3.Bucket)
	str("S3_PREFIX", &c.S3.Prefix)

	return errors.Join(errs...)
}

// RegisterFlags binds the render settings to command-line flags, using the current values as defaults
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Scene, "scene", c.Scene, "Built-in scene name, pbrt:<name>, or path to a .pbrt file")
	fs.IntVar(&c.Width, "width", c.Width, "Image width (0 = scene default)")
	fs.IntVar(&c.Height, "height", c.Height, "Image height (0 = scene default)")
	fs.IntVar(&c.Samples, "samples", c.Samples, "Samples per pixel (0 = scene default)")
	fs.IntVar(&c.Workers, "workers", c.Workers, "Render workers (1 = stream rows, 0 = all CPUs)")
	fs.IntVar(&c.RowsPerTask, "rows-per-task", c.RowsPerTask, "Rows per parallel render task")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "Random seed for jittered sampling")
	fs.StringVar(&c.Output, "o", c.Output, "Output file (.ppm, .png, .jpg); - writes PPM to stdout")
	fs.UintVar(&c.Thumbnail, "thumbnail", c.Thumbnail, "Also write a thumbnail no larger than N pixels (0 = off)")
	fs.BoolVar(&c.Quiet, "quiet", c.Quiet, "Suppress progress output")
	fs.StringVar(&c.SkyTop, "sky-top", c.SkyTop, "Sky color straight up: r,g,b or a color name")
	fs.StringVar(&c.SkyBottom, "sky-bottom", c.SkyBottom, "Sky color straight down: r,g,b or a color name")
	fs.BoolVar(&c.Publish, "publish", c.Publish, "Upload the output to the configured S3 bucket")
}

// Validate checks the configuration for values the renderer cannot use
func (c *Config) Validate() error {
	var errs []error

	if c.Scene == "" {
		errs = append(errs, errors.New("scene must not be empty"))
	}
	if c.Width != 0 && c.Width < 2 {
		errs = append(errs, fmt.Errorf("width %d: must be at least 2", c.Width))
	}
	if c.Height != 0 && c.Height < 2 {
		errs = append(errs, fmt.Errorf("height %d: must be at least 2", c.Height))
	}
	if c.Samples < 0 {
		errs = append(errs, fmt.Errorf("samples %d: must not be negative", c.Samples))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers %d: must not be negative", c.Workers))
	}
	if c.RowsPerTask < 1 {
		errs = append(errs, fmt.Errorf("rows per task %d: must be at least 1", c.RowsPerTask))
	}
	if c.Output == "" {
		errs = append(errs, errors.New("output must not be empty"))
	}
	if c.Thumbnail > 0 && c.Output == "-" {
		errs = append(errs, errors.New("thumbnail requires an output file"))
	}
	if c.Publish && c.Output == "-" {
		errs = append(errs, errors.New("publish requires an output file"))
	}
	if c.Publish && c.S3.Bucket == "" {
		errs = append(errs, fmt.Errorf("publish requires %sS3_BUCKET", EnvPrefix))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d: must be between 1 and 65535", c.Port))
	}
	for _, sky := range []string{c.SkyTop, c.SkyBottom} {
		if sky == "" {
			continue
		}
		if _, err := ParseColor(sky); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Sky returns the configured sky override and whether one was set.
// A missing side falls back to the given default.
func (c *Config) Sky(defaultTop, defaultBottom core.Vec3) (top, bottom core.Vec3, ok bool, err error) {
	top, bottom = defaultTop, defaultBottom
	if c.SkyTop != "" {
		if top, err = ParseColor(c.SkyTop); err != nil {
			return top, bottom, false, err
		}
		ok = true
	}
	if c.SkyBottom != "" {
		if bottom, err = ParseColor(c.SkyBottom); err != nil {
			return top, bottom, false, err
		}
		ok = true
	}
	return top, bottom, ok, nil
}

// ParseColor parses "r,g,b" with components in [0, 1], or an SVG color name such as "skyblue"
func ParseColor(s string) (core.Vec3, error) {
	s = strings.TrimSpace(s)

	if rgba, ok := colornames.Map[strings.ToLower(s)]; ok {
		return core.NewVec3(float64(rgba.R), float64(rgba.G), float64(rgba.B)).Divide(255), nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return core.Vec3{}, fmt.Errorf("%w %q: expected r,g,b or a color name", ErrInvalidColor, s)
	}

	var c [3]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return core.Vec3{}, fmt.Errorf("%w %q: %v", ErrInvalidColor, s, err)
		}
		if v < 0 || v > 1 {
			return core.Vec3{}, fmt.Errorf("%w %q: component %g outside [0, 1]", ErrInvalidColor, s, v)
		}
		c[i] = v
	}
	return core.NewVec3(c[0], c[1], c[2]), nil
}
