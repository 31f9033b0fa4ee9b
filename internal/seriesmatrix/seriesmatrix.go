// Package seriesmatrix reads the expression table of a GEO series matrix
// file into clustering positions.
//
// Only the table between "!series_matrix_table_begin" and the next line
// starting with '!' is read. An optional "ID_REF" header row is skipped.
// Each remaining row is an id followed by tab-separated numeric values.
package seriesmatrix

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/TrevorS/clustering"
)

const tableBegin = "!series_matrix_table_begin"

// ErrNoTable is returned when the input has no series matrix table.
var ErrNoTable = errors.New("seriesmatrix: no series matrix table")

// Parse reads every row of the series matrix table as a position. Quotes
// around ids are removed.
func Parse(r io.Reader) ([]*clustering.Position, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	found := false
	line := 0
	for sc.Scan() {
		line++
		if strings.TrimRight(sc.Text(), "\r") == tableBegin {
			found = true
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("seriesmatrix: %w", err)
	}
	if !found {
		return nil, ErrNoTable
	}

	return readTable(sc, line)
}

// ParseTable reads a bare tab-separated table in the series matrix row
// format, without the surrounding metadata. Reading stops at EOF or at a
// line starting with '!'.
func ParseTable(r io.Reader) ([]*clustering.Position, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return readTable(sc, 0)
}

// readTable reads table rows from sc; line is the number of lines already
// consumed, for error messages.
func readTable(sc *bufio.Scanner, line int) ([]*clustering.Position, error) {
	var positions []*clustering.Position
	first := true
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if text == "" {
			continue
		}
		if text[0] == '!' {
			break
		}

		fields := strings.Split(text, "\t")
		id := unquote(fields[0])
		if first {
			first = false
			if id == "ID_REF" {
				continue
			}
		}

		components := make([]float64, len(fields)-1)
		for i, f := range fields[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(unquote(f)), 64)
			if err != nil {
				return nil, fmt.Errorf("seriesmatrix: line %d, column %d: %w", line, i+2, err)
			}
			components[i] = v
		}
		positions = append(positions, clustering.NewPosition(id, components))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("seriesmatrix: %w", err)
	}
	return positions, nil
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
