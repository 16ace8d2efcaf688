package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
	pretty  bool
)

var rootCmd = &cobra.Command{
	Use:   "esferry",
	Short: "esferry - stream Elasticsearch indices to stdout",
	Long: `esferry streams the full contents of a remote Elasticsearch index to
stdout, one JSON document per line, by scrolling the index concurrently
across sliced workers.

Documents go to stdout; progress and logs go to stderr, so the output can
be piped into compression, files, or another cluster's bulk loader.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "human-readable log output")
}
