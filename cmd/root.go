package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/denysvitali/picmark/internal/config"
	"github.com/denysvitali/picmark/internal/store"
	"github.com/denysvitali/picmark/pkg/watermark"
)

var (
	cfgFile   string
	configMgr *config.Manager
	logger    *logrus.Logger
	rootCmd   = &cobra.Command{
		Use:   "picmark",
		Short: "Stamp text watermarks onto images",
		Long: `picmark composites a configurable text watermark onto photos.
The mark is either placed once at one of nine positions or tiled across
the whole image, with size, color, opacity, rotation and padding taken
from flags, the config file, PICMARK_* environment variables or the
last used settings.`,
		PersistentPreRunE: initializeConfig,
		SilenceUsage:      true,
	}
)

// Execute executes the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/picmark/picmark.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-file", "", "also write logs to this file, rotated by size")
	rootCmd.PersistentFlags().Bool("verbose", false, "verbose output")
}

// initConfig reads in config file and ENV variables
func initConfig() {
	configMgr = config.NewManager()

	if err := configMgr.LoadConfig(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

// initializeConfig binds the global flags and initializes the logger
func initializeConfig(cmd *cobra.Command, args []string) error {
	v := configMgr.Viper()
	flags := cmd.Root().PersistentFlags()
	for key, name := range map[string]string{
		"log_level": "log-level",
		"log_file":  "log-file",
		"verbose":   "verbose",
	} {
		if f := flags.Lookup(name); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("binding --%s: %w", name, err)
			}
		}
	}

	logger = config.NewLogger(config.LoggerOptions{
		Level:   v.GetString("log_level"),
		File:    v.GetString("log_file"),
		Verbose: v.GetBool("verbose"),
	})
	return nil
}

// watermarkFlagKeys maps watermark flags onto config keys
var watermarkFlagKeys = map[string]string{
	"enable":     "watermark.enabled",
	"text":       "watermark.text",
	"position":   "watermark.position",
	"size":       "watermark.size",
	"color":      "watermark.color",
	"opacity":    "watermark.opacity",
	"fullscreen": "watermark.fullscreen",
	"spacing":    "watermark.spacing",
	"rotation":   "watermark.rotation",
	"padding":    "watermark.padding",
	"font":       "font_path",
	"renderer":   "renderer",
	"quality":    "quality",
	"format":     "format",
}

// addWatermarkFlags registers the flags shared by every command that
// composites or stores a watermark
func addWatermarkFlags(fs *pflag.FlagSet) {
	fs.Bool("enable", true, "draw the watermark")
	fs.StringP("text", "t", "", "watermark text")
	fs.StringP("position", "p", "", "placement: top-left, top-center, top-right, center-left, center, center-right, bottom-left, bottom-center, bottom-right")
	fs.Float64P("size", "s", 0, "font size in pixels")
	fs.StringP("color", "c", "", "fill color as #RRGGBB")
	fs.Float64P("opacity", "o", 0, "fill opacity (0-1)")
	fs.Bool("fullscreen", false, "tile the watermark across the whole image")
	fs.Float64("spacing", 0, "gap between tiles in pixels")
	fs.Float64P("rotation", "r", 0, "rotation in degrees, clockwise")
	fs.Float64("padding", 0, "distance from the image edge in pixels")
	fs.StringP("font", "f", "", "path to a TTF/OTF font file")
	fs.String("renderer", "", "rasterizer backend (gg, vg)")
	fs.Float64P("quality", "q", 0, "encode quality (0-1]")
	fs.String("format", "", "output format for streamed output (jpeg, png)")
	fs.Bool("last", false, "start from the last used watermark settings")
	fs.Bool("remember", false, "store the resulting settings as the last used ones")
}

// watermarkOverrides collects the watermark flags the user actually set
func watermarkOverrides(cmd *cobra.Command) map[string]interface{} {
	overrides := make(map[string]interface{})
	for name, key := range watermarkFlagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		overrides[key] = f.Value.String()
	}
	// Giving text without --enable means the user wants it drawn
	if _, ok := overrides["watermark.text"]; ok {
		if _, set := overrides["watermark.enabled"]; !set {
			overrides["watermark.enabled"] = "true"
		}
	}
	return overrides
}

// openStore opens the last used settings store at the configured path
func openStore() (*store.Store, error) {
	path := configMgr.GetAppConfig().StorePath
	backend, err := store.OpenBolt(path)
	if err != nil {
		return nil, fmt.Errorf("opening settings store %s: %w", path, err)
	}
	return store.New(backend, logger.WithField("store", path)), nil
}

// resolveWatermarkConfig layers flags over the config file, starting from
// the last used settings when --last is given
func resolveWatermarkConfig(cmd *cobra.Command) (watermark.Config, error) {
	if last, _ := cmd.Flags().GetBool("last"); last {
		st, err := openStore()
		if err != nil {
			logger.WithError(err).Warn("Ignoring --last")
		} else {
			configMgr.SetWatermarkBase(st.Load())
			st.Close()
		}
	}

	cfg, err := configMgr.CreateWatermarkConfig(watermarkOverrides(cmd))
	if err != nil {
		return watermark.Config{}, fmt.Errorf("creating watermark config: %w", err)
	}
	return cfg, nil
}

// rememberConfig stores cfg when --remember is given
func rememberConfig(cmd *cobra.Command, cfg watermark.Config) {
	if remember, _ := cmd.Flags().GetBool("remember"); !remember {
		return
	}
	st, err := openStore()
	if err != nil {
		logger.WithError(err).Warn("Could not remember watermark settings")
		return
	}
	defer st.Close()
	st.Save(cfg)
}

// newProcessor builds a processor for cfg from the loaded configuration
func newProcessor(cfg watermark.Config) (*watermark.Processor, error) {
	engine, err := configMgr.NewEngine(logger)
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}
	encode, err := configMgr.EncodeOptions()
	if err != nil {
		return nil, err
	}
	return watermark.NewProcessor(engine, cfg, watermark.ProcessorOptions{
		Quality: encode.Quality,
		Format:  encode.Format,
		Logger:  logger,
	}), nil
}
