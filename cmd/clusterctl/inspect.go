package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/TrevorS/clustering"
	"github.com/TrevorS/clustering/internal/tracefile"
)

var inspectVerbose bool // Print every connector

// inspectCmd replays an agglomerative trace the way the visualizer does
var inspectCmd = &cobra.Command{
	Use:   "inspect <trace>",
	Short: "Replay an agglomerative trace and summarize its dendrogram",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspect(args[0], cmd.OutOrStdout(), inspectVerbose)
	},
}

func inspect(path string, out io.Writer, verbose bool) error {
	r, err := tracefile.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	layout, err := clustering.ParseAgglomerativeTrace(r)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "algorithm:  %s\n", layout.Algorithm)
	fmt.Fprintf(out, "source:     %s\n", layout.Source)
	fmt.Fprintf(out, "leaves:     %d\n", len(layout.Leaves))
	fmt.Fprintf(out, "connectors: %d\n", len(layout.Connectors))
	if !verbose {
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "HEIGHT\tA\tB\tXA\tXB\tY")
	for _, c := range layout.Connectors {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%g\t%g\t%g\n", c.Height, c.IDA, c.IDB, c.XA, c.XB, c.Y)
	}
	return tw.Flush()
}

// algorithmsCmd lists the available clustering algorithms
var algorithmsCmd = &cobra.Command{
	Use:   "algorithms",
	Short: "List the available clustering algorithms",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, a := range clustering.Algorithms() {
			c, err := clustering.NewClusterer(clustering.Config{Algorithm: a})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\t%s\n\t%s\n", a, c.Name(), c.Description())
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().BoolVarP(&inspectVerbose, "verbose", "v", false, "Print every connector")
}
