package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/detag/internal/history"
	"github.com/jmylchreest/detag/internal/logger"
	"github.com/jmylchreest/detag/internal/output"
	"github.com/jmylchreest/detag/internal/server"
	"github.com/jmylchreest/detag/pkg/detag"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the conversion service",
	Long: `Serve the conversion API and the upload page.

Routes:
  GET  /              health check
  GET  /app/          upload page
  GET  /history       recent jobs (needs --history-db)
  POST /convert       convert one file (field "file")
  POST /process-csv   convert file1, or compare file1 against file2

Every flag can also be set in .detag.yaml or as DETAG_<FLAG> in the
environment, e.g. DETAG_MAX_UPLOAD_SIZE=64MB.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	def := server.DefaultConfig()
	flags := serveCmd.Flags()

	flags.String("addr", def.Addr, "listen address (host:port)")
	flags.StringSlice("allowed-origin", def.AllowedOrigins, "origins allowed to call the API (can be repeated)")
	flags.String("max-upload-size", def.MaxUploadSize, "request body limit (e.g., 32MB, 10MiB)")
	flags.Duration("read-timeout", def.ReadTimeout, "HTTP read timeout")
	flags.Duration("write-timeout", def.WriteTimeout, "HTTP write timeout")
	flags.Duration("idle-timeout", def.IdleTimeout, "HTTP keep-alive idle timeout")
	flags.Duration("shutdown-timeout", def.ShutdownTimeout, "grace period for in-flight requests on shutdown")
	flags.String("cleaner", def.Cleaner, "default cleaner: text, strict, sanitize, html2text, noop")
	flags.String("cleaner-config", "", "YAML file tuning the text cleaner")
	flags.String("format", def.Format, "default output format: csv, xlsx, json, jsonl, yaml, same")
	flags.Int("header-scan-limit", def.HeaderScanLimit, "leading rows searched for the header row (0 uses the default)")
	flags.StringSlice("price-headers", nil, "names of the two price columns of comparison output")
	flags.String("history-db", "", "SQLite file recording handled jobs (empty disables)")
	flags.Duration("history-retention", 0, "drop history older than this on start (0 keeps everything)")

	for key, flag := range map[string]string{
		"addr":              "addr",
		"allowed_origins":   "allowed-origin",
		"max_upload_size":   "max-upload-size",
		"read_timeout":      "read-timeout",
		"write_timeout":     "write-timeout",
		"idle_timeout":      "idle-timeout",
		"shutdown_timeout":  "shutdown-timeout",
		"cleaner":           "cleaner",
		"cleaner_config":    "cleaner-config",
		"format":            "format",
		"header_scan_limit": "header-scan-limit",
		"price_headers":     "price-headers",
		"history_db":        "history-db",
		"history_retention": "history-retention",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

func serverConfig() server.Config {
	return server.Config{
		Addr:             viper.GetString("addr"),
		AllowedOrigins:   viper.GetStringSlice("allowed_origins"),
		MaxUploadSize:    viper.GetString("max_upload_size"),
		ReadTimeout:      viper.GetDuration("read_timeout"),
		WriteTimeout:     viper.GetDuration("write_timeout"),
		IdleTimeout:      viper.GetDuration("idle_timeout"),
		ShutdownTimeout:  viper.GetDuration("shutdown_timeout"),
		Cleaner:          viper.GetString("cleaner"),
		Format:           viper.GetString("format"),
		HeaderScanLimit:  viper.GetInt("header_scan_limit"),
		PriceHeaders:     viper.GetStringSlice("price_headers"),
		HistoryDB:        viper.GetString("history_db"),
		HistoryRetention: viper.GetDuration("history_retention"),
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := serverConfig()
	cleanerCfg, err := loadCleanerConfig(viper.GetString("cleaner_config"))
	if err != nil {
		logError("%v", err)
		return err
	}

	detagOpts := []detag.Option{
		detag.WithCleaner(cfg.Cleaner),
		detag.WithCleanerConfig(cleanerCfg),
		detag.WithFormat(output.Format(cfg.Format)),
		detag.WithHeaderScanLimit(cfg.HeaderScanLimit),
	}
	if len(cfg.PriceHeaders) == 2 {
		detagOpts = append(detagOpts, detag.WithPriceHeaders(cfg.PriceHeaders[0], cfg.PriceHeaders[1]))
	}
	d, err := detag.New(detagOpts...)
	if err != nil {
		logError("%v", err)
		return err
	}

	var opts []server.Option
	if cfg.HistoryDB != "" {
		store, err := history.NewSQLiteStore(cfg.HistoryDB)
		if err != nil {
			logError("%v", err)
			return err
		}
		defer store.Close()
		opts = append(opts, server.WithHistory(store))
		logger.Debug("history enabled", "path", cfg.HistoryDB)
	}

	srv, err := server.New(cfg, d, opts...)
	if err != nil {
		logError("%v", err)
		return err
	}

	logInfo("detag listening on %s (upload page at /app/)", cfg.Addr)
	return srv.Run(ctx)
}
