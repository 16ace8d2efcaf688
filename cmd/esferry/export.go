package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/esferry/esferry/pkg/export"
	"github.com/esferry/esferry/pkg/logging"
	"github.com/esferry/esferry/pkg/query"
	"github.com/spf13/cobra"
)

var (
	exportSource  string
	exportWorkers uint
	exportSize    uint
	exportFilter  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Stream the contents of an index to stdout",
	Long: `Export streams every document matching the filter to stdout, one JSON
record per line. The source URL's path selects the index; an empty path
exports all indices. Workers split the index via the engine's slicing
feature and scroll their slices concurrently.`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportSource, "source", "", "cluster endpoint URL; the path selects the index")
	exportCmd.Flags().UintVar(&exportWorkers, "workers", 0, "concurrent workers (default: number of CPUs)")
	exportCmd.Flags().UintVar(&exportSize, "size", query.DefaultSize, "page size per request")
	exportCmd.Flags().StringVar(&exportFilter, "query", "", "filter as a JSON query clause (default: match all)")
	exportCmd.MarkFlagRequired("source")
}

func runExport(cmd *cobra.Command, args []string) error {
	level := logging.LevelInfo
	if verbose {
		level = logging.LevelDebug
	}
	logging.Setup(logging.Config{
		Level:  level,
		Pretty: pretty,
		Output: os.Stderr,
	})

	// An interrupt stops every worker from issuing further requests;
	// in-flight requests are aborted through the context.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Errors past this point are export failures, not usage mistakes.
	cmd.SilenceUsage = true

	return export.Run(ctx, export.Options{
		Source:  exportSource,
		Workers: int(exportWorkers),
		Size:    int(exportSize),
		Filter:  exportFilter,
	})
}
