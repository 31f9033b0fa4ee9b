package clustering

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Layout geometry used when replaying a trace, in visualizer units.
const (
	layoutOriginX  = 10.0
	layoutSpacingX = 30.0
	layoutOriginY  = 50.0
	layoutSpacingY = 30.0
)

// LayoutLeaf is one position of a replayed agglomerative trace.
type LayoutLeaf struct {
	ID       string
	Location []float64
	X        float64
}

// LayoutConnector joins two branches of a replayed agglomerative trace at
// depth Y. The merged branch continues from the midpoint of XA and XB.
type LayoutConnector struct {
	Height   int
	IDA, IDB string
	Merged   string
	XA, XB   float64
	Y        float64
}

// DendrogramLayout is an agglomerative trace replayed the way the trace
// visualizer does it: one leaf per data point row, one connector per merge.
type DendrogramLayout struct {
	Algorithm  string
	Source     string
	DataPoints int
	Leaves     []LayoutLeaf
	Connectors []LayoutConnector

	// Bottom is the depth at which unmerged branches end.
	Bottom float64
}

// ParseAgglomerativeTrace reads a trace written by
// (*AgglomerativeResult).WriteTrace and replays it. Leaves are laid out in
// data-point row order; merges are replayed in row order, each registering
// the composite id "A::B" for later merges. A merge naming an unknown id,
// or a data-point count that does not match the rows, fails with
// ErrMalformedTrace.
func ParseAgglomerativeTrace(r io.Reader) (*DendrogramLayout, error) {
	lines, err := readTraceLines(r)
	if err != nil {
		return nil, err
	}

	layout := &DendrogramLayout{DataPoints: -1}
	type mergeRow struct {
		height   int
		idA, idB string
	}
	var merges []mergeRow

	i := 0
	for ; i < len(lines) && lines[i] != traceMergeSection; i++ {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, "Type of clustering: "):
			layout.Algorithm = strings.TrimPrefix(line, "Type of clustering: ")
		case strings.HasPrefix(line, "File used: "):
			layout.Source = strings.TrimPrefix(line, "File used: ")
		case strings.HasPrefix(line, traceDataPointsLabel):
			n, err := strconv.Atoi(strings.TrimPrefix(line, traceDataPointsLabel))
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: data point count: %v", ErrMalformedTrace, i+1, err)
			}
			layout.DataPoints = n
		}
	}
	if layout.DataPoints < 0 {
		return nil, fmt.Errorf("%w: missing %q header", ErrMalformedTrace, strings.TrimSpace(traceDataPointsLabel))
	}
	if i+1 >= len(lines) || lines[i+1] != traceMergeColumns {
		return nil, fmt.Errorf("%w: missing merge section", ErrMalformedTrace)
	}

	for i += 2; i < len(lines) && lines[i] != traceDataSection; i++ {
		fields := strings.Split(lines[i], "\t")
		if len(fields) != 3 {
			return nil, fmt.Errorf("%w: line %d: merge row has %d fields", ErrMalformedTrace, i+1, len(fields))
		}
		h, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: merge height: %v", ErrMalformedTrace, i+1, err)
		}
		merges = append(merges, mergeRow{height: h, idA: fields[1], idB: fields[2]})
	}
	if i+1 >= len(lines) || lines[i+1] != traceAggloColumns {
		return nil, fmt.Errorf("%w: missing data point section", ErrMalformedTrace)
	}

	xs := make(map[string]float64)
	for i += 2; i < len(lines); i++ {
		if lines[i] == "" {
			continue
		}
		id, loc, ok := strings.Cut(lines[i], "\t")
		if !ok {
			return nil, fmt.Errorf("%w: line %d: data point row has no location", ErrMalformedTrace, i+1)
		}
		location, err := ParseComponents(loc)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedTrace, i+1, err)
		}
		if _, dup := xs[id]; dup {
			return nil, fmt.Errorf("%w: line %d: duplicate position id %q", ErrMalformedTrace, i+1, id)
		}
		x := layoutOriginX + float64(len(layout.Leaves))*layoutSpacingX
		xs[id] = x
		layout.Leaves = append(layout.Leaves, LayoutLeaf{ID: id, Location: location, X: x})
	}
	if len(layout.Leaves) != layout.DataPoints {
		return nil, fmt.Errorf("%w: header declares %d data points, found %d",
			ErrMalformedTrace, layout.DataPoints, len(layout.Leaves))
	}

	layout.Bottom = float64(layout.DataPoints+2) * layoutSpacingY
	y := layoutOriginY
	for _, m := range merges {
		xa, okA := xs[m.idA]
		xb, okB := xs[m.idB]
		if !okA || !okB {
			return nil, fmt.Errorf("%w: merge at height %d names unknown id", ErrMalformedTrace, m.height)
		}
		merged := m.idA + MergeSeparator + m.idB
		xs[merged] = (xa + xb) / 2
		layout.Connectors = append(layout.Connectors, LayoutConnector{
			Height: m.height,
			IDA:    m.idA,
			IDB:    m.idB,
			Merged: merged,
			XA:     xa,
			XB:     xb,
			Y:      y,
		})
		y += layoutSpacingY
	}

	return layout, nil
}

// readTraceLines splits r into lines without their terminators. Lines may be
// arbitrarily long, since composite merge ids grow with the tree.
func readTraceLines(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)
	var lines []string
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			lines = append(lines, strings.TrimRight(line, "\r\n"))
		}
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, fmt.Errorf("clustering: reading trace: %w", err)
		}
	}
}
