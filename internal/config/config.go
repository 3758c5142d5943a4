// Package config provides configuration management for picmark
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/denysvitali/picmark/pkg/watermark"
)

// AppConfig represents the application configuration
type AppConfig struct {
	FontPath        string   `mapstructure:"font_path"`
	SystemFontPaths []string `mapstructure:"system_font_paths"`
	Renderer        string   `mapstructure:"renderer"`

	// Output encoding
	Format  string  `mapstructure:"format"`
	Quality float64 `mapstructure:"quality"`

	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	// Batch processing
	DefaultWorkers int `mapstructure:"default_workers"`

	// Last used watermark settings
	StorePath string `mapstructure:"store_path"`

	Server struct {
		Addr        string `mapstructure:"addr"`
		MaxUploadMB int64  `mapstructure:"max_upload_mb"`
	} `mapstructure:"server"`

	Watermark watermark.Config `mapstructure:"watermark"`
}

// Manager handles configuration loading and management
type Manager struct {
	config *AppConfig
	viper  *viper.Viper
}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	v := viper.New()

	setDefaults(v)

	return &Manager{
		config: &AppConfig{},
		viper:  v,
	}
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("font_path", "")
	v.SetDefault("system_font_paths", watermark.DefaultSystemFontPaths)
	v.SetDefault("renderer", watermark.RendererGG)
	v.SetDefault("format", string(watermark.FormatJPEG))
	v.SetDefault("quality", watermark.DefaultQuality)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("default_workers", 4)
	v.SetDefault("store_path", defaultStorePath())
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_upload_mb", 32)

	d := watermark.Defaults()
	v.SetDefault("watermark.enabled", d.Enabled)
	v.SetDefault("watermark.text", d.Text)
	v.SetDefault("watermark.position", string(d.Position))
	v.SetDefault("watermark.size", d.Size)
	v.SetDefault("watermark.color", d.Color.Hex())
	v.SetDefault("watermark.opacity", d.Opacity)
	v.SetDefault("watermark.fullscreen", d.Fullscreen)
	v.SetDefault("watermark.spacing", d.Spacing)
	v.SetDefault("watermark.rotation", d.Rotation)
	v.SetDefault("watermark.padding", d.Padding)
}

// decodeHook lets color and position be written as plain strings
func decodeHook() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

// LoadConfig loads configuration from file and environment
func (m *Manager) LoadConfig(configFile string) error {
	if configFile != "" {
		m.viper.SetConfigFile(configFile)
	} else {
		m.viper.SetConfigName("picmark")
		m.viper.SetConfigType("yaml")
		m.viper.AddConfigPath(".")
		m.viper.AddConfigPath("$HOME/.config/picmark")
		m.viper.AddConfigPath("/etc/picmark")
	}

	// PICMARK_WATERMARK_TEXT overrides watermark.text
	m.viper.SetEnvPrefix("PICMARK")
	m.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.viper.AutomaticEnv()

	if err := m.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	return m.unmarshal()
}

func (m *Manager) unmarshal() error {
	cfg := &AppConfig{}
	if err := m.viper.Unmarshal(cfg, decodeHook()); err != nil {
		return fmt.Errorf("unmarshaling config: %w", err)
	}
	m.config = cfg
	return nil
}

// GetAppConfig returns the loaded application configuration
func (m *Manager) GetAppConfig() *AppConfig {
	return m.config
}

// Viper exposes the underlying viper instance for flag binding
func (m *Manager) Viper() *viper.Viper {
	return m.viper
}

// numericKeys are coerced with cast so flag and env values of any numeric
// type are accepted
var numericKeys = map[string]bool{
	"watermark.size":     true,
	"watermark.opacity":  true,
	"watermark.spacing":  true,
	"watermark.rotation": true,
	"watermark.padding":  true,
	"quality":            true,
}

// SetWatermarkBase replaces the configured watermark section with cfg, e.g.
// the last used settings. Overrides passed to CreateWatermarkConfig still win.
func (m *Manager) SetWatermarkBase(cfg watermark.Config) {
	m.viper.Set("watermark.enabled", cfg.Enabled)
	m.viper.Set("watermark.text", cfg.Text)
	m.viper.Set("watermark.position", string(cfg.Position))
	m.viper.Set("watermark.size", cfg.Size)
	m.viper.Set("watermark.color", cfg.Color.Hex())
	m.viper.Set("watermark.opacity", cfg.Opacity)
	m.viper.Set("watermark.fullscreen", cfg.Fullscreen)
	m.viper.Set("watermark.spacing", cfg.Spacing)
	m.viper.Set("watermark.rotation", cfg.Rotation)
	m.viper.Set("watermark.padding", cfg.Padding)
}

// CreateWatermarkConfig applies overrides and returns the validated watermark configuration
func (m *Manager) CreateWatermarkConfig(overrides map[string]interface{}) (watermark.Config, error) {
	for key, value := range overrides {
		if numericKeys[key] {
			f, err := cast.ToFloat64E(value)
			if err != nil {
				return watermark.Config{}, fmt.Errorf("override %s: %w", key, err)
			}
			value = f
		}
		m.viper.Set(key, value)
	}

	if err := m.unmarshal(); err != nil {
		return watermark.Config{}, err
	}

	cfg := m.config.Watermark
	if err := cfg.Validate(); err != nil {
		return watermark.Config{}, err
	}

	return cfg, nil
}

// EncodeOptions returns the configured output encoding
func (m *Manager) EncodeOptions() (watermark.EncodeOptions, error) {
	format, err := watermark.ParseFormat(m.config.Format)
	if err != nil {
		return watermark.EncodeOptions{}, err
	}
	return watermark.EncodeOptions{Format: format, Quality: m.config.Quality}, nil
}

// NewEngine builds an engine from the configured font and renderer
func (m *Manager) NewEngine(logger logrus.FieldLogger) (*watermark.Engine, error) {
	renderer, err := watermark.RendererByName(m.config.Renderer)
	if err != nil {
		return nil, err
	}

	fonts := watermark.NewFontManager()
	fonts.SetLogger(logger)
	if len(m.config.SystemFontPaths) > 0 {
		fonts.SetSystemFontPaths(m.config.SystemFontPaths)
	}

	return watermark.NewEngine(
		watermark.WithFontManager(fonts),
		watermark.WithFontPath(m.config.FontPath),
		watermark.WithRenderer(renderer),
		watermark.WithLogger(logger),
	), nil
}

// SaveConfig saves the current configuration to a file
func (m *Manager) SaveConfig(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return m.viper.WriteConfigAs(filename)
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./picmark.yaml"
	}
	return filepath.Join(homeDir, ".config", "picmark", "config.yaml")
}

func defaultStorePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./picmark.db"
	}
	return filepath.Join(homeDir, ".config", "picmark", "state.db")
}

// GenerateExampleConfig creates an example configuration file
func GenerateExampleConfig(filename string) error {
	manager := NewManager()

	manager.viper.Set("watermark.enabled", true)
	manager.viper.Set("watermark.text", "© picmark")
	manager.viper.Set("watermark.opacity", 0.5)
	manager.viper.Set("watermark.rotation", -30.0)
	manager.viper.Set("watermark.fullscreen", true)
	manager.viper.Set("watermark.spacing", 40.0)

	return manager.SaveConfig(filename)
}
