package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/fits2ser/internal/analyzer"
)

type Config struct {
	OutputDir    string `yaml:"output_dir"`
	Workers      int    `yaml:"workers"` // 0 = one per logical CPU
	ProduceVideo bool   `yaml:"produce_video"`
	DeleteFrames bool   `yaml:"delete_frames"`
	Preview      bool   `yaml:"preview"`
	Report       bool   `yaml:"report"` // YAML batch record in OutputDir

	Stretch StretchConfig `yaml:"stretch"`
	Keys    KeyConfig     `yaml:"keys"`
	SER     SERConfig     `yaml:"ser"`

	FrameExt   string `yaml:"frame_ext"`
	VideoExt   string `yaml:"video_ext"`
	ScanPrefix string `yaml:"scan_prefix"`
}

type StretchConfig struct {
	Method    string  `yaml:"method"`
	Low       float64 `yaml:"low"`
	High      float64 `yaml:"high"`
	Expansion float64 `yaml:"expansion"`
}

// KeyConfig names the header cards holding the capture timestamps.
type KeyConfig struct {
	CaptureStart string `yaml:"capture_start"`
	CaptureEnd   string `yaml:"capture_end"`
}

// SERConfig overrides the SER text fields. Empty values fall back to the
// OBSERVER, INSTRUME and TELESCOP cards of the source file.
type SERConfig struct {
	Observer   string `yaml:"observer"`
	Instrument string `yaml:"instrument"`
	Telescope  string `yaml:"telescope"`
	ColorID    uint32 `yaml:"color_id"`
}

func Default() *Config {
	return &Config{
		ProduceVideo: true,
		Report:       true,
		Stretch: StretchConfig{
			Method:    analyzer.MethodPercentile,
			Low:       1.0,
			High:      99.9,
			Expansion: 0.03,
		},
		Keys: KeyConfig{
			CaptureStart: "STR_TIME",
			CaptureEnd:   "END_TIME",
		},
		FrameExt:   ".fits",
		VideoExt:   ".ser",
		ScanPrefix: "Scan_",
	}
}

// Load builds a config from defaults, then the YAML file at path (skipped
// when path is empty), then FITS2SER_* environment variables. A .env file
// in the working directory is read first if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.OutputDir = getEnv("FITS2SER_OUTPUT_DIR", c.OutputDir)
	c.SER.Observer = getEnv("FITS2SER_OBSERVER", c.SER.Observer)
	c.SER.Instrument = getEnv("FITS2SER_INSTRUMENT", c.SER.Instrument)
	c.SER.Telescope = getEnv("FITS2SER_TELESCOPE", c.SER.Telescope)

	if v := os.Getenv("FITS2SER_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FITS2SER_WORKERS: %w", err)
		}
		c.Workers = n
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Save writes the config as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks option ranges. The output directory is checked at batch
// submission, not here.
func (c *Config) Validate() error {
	var errs []error
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", c.Workers))
	}
	if _, err := analyzer.NewStretcher(c.Stretch.Method, c.Stretch.Low, c.Stretch.High, c.Stretch.Expansion); err != nil {
		errs = append(errs, err)
	}
	if c.Stretch.Low < 0 || c.Stretch.High > 100 || c.Stretch.Low >= c.Stretch.High {
		errs = append(errs, fmt.Errorf("stretch percentiles must satisfy 0 <= low < high <= 100, got %g/%g", c.Stretch.Low, c.Stretch.High))
	}
	if c.Stretch.Expansion < 0 {
		errs = append(errs, fmt.Errorf("stretch expansion must be >= 0, got %g", c.Stretch.Expansion))
	}
	if c.Keys.CaptureStart == "" || c.Keys.CaptureEnd == "" {
		errs = append(errs, errors.New("capture timestamp keys must be set"))
	}
	if c.FrameExt == "" || c.VideoExt == "" {
		errs = append(errs, errors.New("frame and video extensions must be set"))
	}
	if c.DeleteFrames && !c.ProduceVideo {
		errs = append(errs, errors.New("delete_frames requires produce_video"))
	}
	return errors.Join(errs...)
}

// NewStretcher builds the stretcher the config selects.
func (c *Config) NewStretcher() (analyzer.Stretcher, error) {
	return analyzer.NewStretcher(c.Stretch.Method, c.Stretch.Low, c.Stretch.High, c.Stretch.Expansion)
}
