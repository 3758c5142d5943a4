package cmd

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/denysvitali/picmark/internal/server"
	"github.com/denysvitali/picmark/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the watermark engine over HTTP",
	Long: `Start an HTTP server exposing the watermark engine.

Endpoints:
  GET    /healthz
  POST   /api/watermark   multipart "file", optional "config" JSON, ?quality=&format=
  POST   /api/probe       multipart "file"
  GET    /api/config      settings new requests start from
  PUT    /api/config      store settings (partial JSON merged over defaults)
  DELETE /api/config      clear stored settings

Example:
  picmark serve --addr :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default from server.addr)")
	serveCmd.Flags().Int64("max-upload-mb", 0, "maximum upload size in MiB")
	serveCmd.Flags().Bool("memory-store", false, "keep settings in memory instead of the on-disk store")
	serveCmd.Flags().Bool("debug", false, "run gin in debug mode")
}

func runServe(cmd *cobra.Command, args []string) error {
	appConfig := configMgr.GetAppConfig()

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = appConfig.Server.Addr
	}
	maxUploadMB, _ := cmd.Flags().GetInt64("max-upload-mb")
	if maxUploadMB <= 0 {
		maxUploadMB = appConfig.Server.MaxUploadMB
	}
	if debug, _ := cmd.Flags().GetBool("debug"); !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	base, err := configMgr.CreateWatermarkConfig(nil)
	if err != nil {
		return fmt.Errorf("creating watermark config: %w", err)
	}

	engine, err := configMgr.NewEngine(logger)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	encode, err := configMgr.EncodeOptions()
	if err != nil {
		return err
	}

	var st *store.Store
	if memory, _ := cmd.Flags().GetBool("memory-store"); memory {
		st = store.New(store.NewMemory(), logger)
	} else {
		st, err = openStore()
		if err != nil {
			return err
		}
	}
	defer st.Close()

	srv := server.New(engine, st, base, server.Config{
		MaxUploadBytes: maxUploadMB << 20,
		Encode:         encode,
	}, logger)

	return srv.Run(cmd.Context(), addr)
}
