package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/denysvitali/picmark/internal/config"
	"github.com/denysvitali/picmark/pkg/watermark"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  `Manage configuration files and the stored last used watermark settings.`,
}

var generateConfigCmd = &cobra.Command{
	Use:   "generate [filename]",
	Short: "Generate example configuration file",
	Long: `Generate an example configuration file with default values.

Example:
  picmark config generate picmark.yaml
  picmark config generate  # generates to default location`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerateConfig,
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration values.`,
	RunE:  runShowConfig,
}

var lastConfigCmd = &cobra.Command{
	Use:   "last",
	Short: "Manage the last used watermark settings",
}

var lastShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored watermark settings as JSON",
	Args:  cobra.NoArgs,
	RunE:  runLastShow,
}

var lastSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Store watermark settings built from flags and config",
	Long: `Store watermark settings built from the config file and the given flags.

Example:
  picmark config last save --text "© Jane Doe" --position bottom-left --padding 12`,
	Args: cobra.NoArgs,
	RunE: runLastSave,
}

var lastClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored watermark settings",
	Args:  cobra.NoArgs,
	RunE:  runLastClear,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(generateConfigCmd)
	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(lastConfigCmd)

	lastConfigCmd.AddCommand(lastShowCmd, lastSaveCmd, lastClearCmd)
	addWatermarkFlags(lastSaveCmd.Flags())
}

func runGenerateConfig(cmd *cobra.Command, args []string) error {
	var filename string
	if len(args) > 0 {
		filename = args[0]
	} else {
		filename = config.GetDefaultConfigPath()
	}

	logger.WithField("file", filename).Info("Generating configuration file")

	if err := config.GenerateExampleConfig(filename); err != nil {
		return fmt.Errorf("generating config file: %w", err)
	}

	logger.Infof("Configuration file generated: %s", filename)
	return nil
}

func runShowConfig(cmd *cobra.Command, args []string) error {
	appConfig := configMgr.GetAppConfig()
	wm := appConfig.Watermark

	fmt.Printf("Current Configuration:\n")
	fmt.Printf("  Font Path:         %s\n", appConfig.FontPath)
	fmt.Printf("  Renderer:          %s\n", appConfig.Renderer)
	fmt.Printf("  Format:            %s\n", appConfig.Format)
	fmt.Printf("  Quality:           %.2f\n", appConfig.Quality)
	fmt.Printf("  Log Level:         %s\n", appConfig.LogLevel)
	fmt.Printf("  Default Workers:   %d\n", appConfig.DefaultWorkers)
	fmt.Printf("  Store Path:        %s\n", appConfig.StorePath)
	fmt.Printf("  Server Address:    %s\n", appConfig.Server.Addr)

	fmt.Printf("\nWatermark:\n")
	fmt.Printf("  Enabled:           %t\n", wm.Enabled)
	fmt.Printf("  Text:              %q\n", wm.Text)
	fmt.Printf("  Position:          %s\n", wm.Position)
	fmt.Printf("  Size:              %.1f\n", wm.Size)
	fmt.Printf("  Color:             %s\n", wm.Color)
	fmt.Printf("  Opacity:           %.2f\n", wm.Opacity)
	fmt.Printf("  Fullscreen:        %t\n", wm.Fullscreen)
	fmt.Printf("  Spacing:           %.1f\n", wm.Spacing)
	fmt.Printf("  Rotation:          %.1f\n", wm.Rotation)
	fmt.Printf("  Padding:           %.1f\n", wm.Padding)

	fmt.Printf("\nSystem Font Paths:\n")
	for _, path := range appConfig.SystemFontPaths {
		fmt.Printf("  - %s\n", path)
	}

	return nil
}

func runLastShow(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	return printJSON(st.Load())
}

func runLastSave(cmd *cobra.Command, args []string) error {
	cfg, err := resolveWatermarkConfig(cmd)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	st.Save(cfg)
	logger.Info("Watermark settings stored")
	return printJSON(cfg)
}

func runLastClear(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	st.Clear()
	logger.Info("Watermark settings cleared")
	return nil
}

func printJSON(cfg watermark.Config) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}
