package commands

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/detag/pkg/client"
)

var uploadCmd = &cobra.Command{
	Use:   "upload FILE [DESCRIPTIONS]",
	Short: "Send files to a running detag server and save the result",
	Long: `Upload files to a detag server and download the converted result.

One file is converted through /convert. Two files are compared through
/process-csv, the same way the upload page does it.

Examples:
  detag upload products.csv --server http://localhost:8000
  detag upload lazada.xlsx shopee.xlsx --out results/ --format xlsx`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	flags := uploadCmd.Flags()
	flags.StringP("server", "s", "http://localhost:8000", "detag server URL")
	flags.StringP("out", "o", ".", "directory for the downloaded result")
	flags.StringP("format", "f", "", "output format (default: server default)")
	flags.StringP("column", "c", "", "HTML column by header name or 0-based index")
	flags.String("cleaner", "", "cleaner (default: server default)")
	flags.String("sheet", "", "worksheet of Excel inputs")
	flags.Duration("timeout", 0, "request timeout (0 uses the client default)")

	_ = viper.BindPFlag("server_url", flags.Lookup("server"))
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	flags := cmd.Flags()
	outDir, _ := flags.GetString("out")
	timeout, _ := flags.GetDuration("timeout")
	var opts client.ConvertOptions
	opts.Format, _ = flags.GetString("format")
	opts.Column, _ = flags.GetString("column")
	opts.Cleaner, _ = flags.GetString("cleaner")
	opts.Sheet, _ = flags.GetString("sheet")

	var clientOpts []client.Option
	if timeout > 0 {
		clientOpts = append(clientOpts, client.WithTimeout(timeout))
	}
	serverURL := viper.GetString("server_url")
	c := client.New(serverURL, clientOpts...)

	if err := c.Ping(ctx); err != nil {
		logError("cannot reach %s: %v", serverURL, err)
		return err
	}

	first, err := client.OpenFile(args[0])
	if err != nil {
		logError("%v", err)
		return err
	}

	var dl *client.Download
	if len(args) == 2 {
		var second client.Upload
		second, err = client.OpenFile(args[1])
		if err != nil {
			logError("%v", err)
			return err
		}
		dl, err = c.Compare(ctx, first, second, opts)
	} else {
		dl, err = c.Convert(ctx, first, opts)
	}
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			logError("%s", apiErr.Message)
		} else {
			logError("%v", err)
		}
		return err
	}

	path, err := dl.Save(outDir)
	if err != nil {
		logError("%v", err)
		return err
	}
	logInfo("Saved %s (%s)", path, humanize.Bytes(uint64(len(dl.Body))))
	return nil
}
