package clustering

import (
	"bufio"
	"fmt"
	"io"
)

// Trace section and column headers. The visualizer matches these lines
// exactly.
const (
	traceMergeSection    = "Merged IDs and Height Merged At"
	traceMergeColumns    = "Height\tMerged ID A\tMerged ID B"
	traceDataSection     = "Data Points Used"
	traceAggloColumns    = "Position ID\tLocation"
	traceClusterSection  = "Clusters"
	traceClusterColumns  = "Cluster ID\tNum of assigned positions\tLocation"
	traceKMeansColumns   = "Position ID\tAssigned Cluster\tLocation"
	traceDataPointsLabel = "Number of data points used: "
)

const (
	// startedLayout renders the agglomerative "Time Started" header,
	// e.g. 17-10-2026_143005.
	startedLayout = "02-01-2006_150405"

	// completedLayout renders the K-Means "Time Completed" header,
	// e.g. 2026-10-17T14:30:05.123.
	completedLayout = "2006-01-02T15:04:05.000"
)

// WriteTrace writes the agglomerative trace: a header, the merges in order,
// and every position in root member order.
func (r *AgglomerativeResult) WriteTrace(w io.Writer, source string) error {
	bw := bufio.NewWriter(w)
	labels := r.Tree.Labels()

	fmt.Fprintf(bw, "Type of clustering: %s\n", agglomerativeName)
	fmt.Fprintf(bw, "Time Started: %s\n", r.StartedAt.Format(startedLayout))
	fmt.Fprintf(bw, "%s%d\n", traceDataPointsLabel, len(r.Positions))
	fmt.Fprintf(bw, "File used: %s\n", source)

	fmt.Fprintln(bw, traceMergeSection)
	fmt.Fprintln(bw, traceMergeColumns)
	for _, m := range r.Merges {
		fmt.Fprintf(bw, "%d\t%s\t%s\n", m.Height, labels[m.A], labels[m.B])
	}

	fmt.Fprintln(bw, traceDataSection)
	fmt.Fprintln(bw, traceAggloColumns)
	for _, p := range r.Root.Assigned() {
		fmt.Fprintf(bw, "%s\t%s\n", p.id, FormatComponents(p.components))
	}

	if err := bw.Flush(); err != nil {
		return &TraceError{Op: "agglomerative", Err: err}
	}
	return nil
}

// WriteTrace writes the K-Means trace: a header, one row per cluster, and
// every position grouped by cluster.
func (r *KMeansResult) WriteTrace(w io.Writer, source string) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "Type of clustering: %s\n", kmeansName)
	fmt.Fprintf(bw, "Time Completed: %s\n", r.CompletedAt.Format(completedLayout))
	fmt.Fprintf(bw, "Number of clusters generated: %d\n", len(r.Centroids))
	fmt.Fprintf(bw, "%s%d\n", traceDataPointsLabel, len(r.Positions))
	fmt.Fprintf(bw, "File used: %s\n", source)

	fmt.Fprintln(bw, traceClusterSection)
	fmt.Fprintln(bw, traceClusterColumns)
	for _, c := range r.Centroids {
		fmt.Fprintf(bw, "%s\t%d\t%s\n", c.id, c.Size(), FormatComponents(c.location.components))
	}

	fmt.Fprintln(bw, traceDataSection)
	fmt.Fprintln(bw, traceKMeansColumns)
	for _, c := range r.Centroids {
		for _, p := range c.assigned {
			fmt.Fprintf(bw, "%s\t%s\t%s\n", p.id, c.id, FormatComponents(p.components))
		}
	}

	if err := bw.Flush(); err != nil {
		return &TraceError{Op: "kmeans", Err: err}
	}
	return nil
}
