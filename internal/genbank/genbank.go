// Package genbank reads the DNA records of a GenBank flat file (.seq) into
// clustering positions.
//
// Each record from a LOCUS line to its closing "//" becomes one position,
// identified by the locus name. The sequence after ORIGIN is split into
// consecutive codons (trailing bases that do not fill a codon are dropped),
// and the position's 64 components are the relative frequencies of the
// codons in Codons order.
package genbank

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/TrevorS/clustering"
)

const (
	locusPrefix  = "LOCUS"
	originPrefix = "ORIGIN"
	recordEnd    = "//"

	bases      = "acgt"
	codonCount = 64
)

var (
	// ErrInvalidBase is returned when a sequence holds a character other
	// than a, c, g or t (in either case), whitespace or a digit.
	ErrInvalidBase = errors.New("genbank: invalid base")

	// ErrMalformed is returned when the record structure is broken.
	ErrMalformed = errors.New("genbank: malformed record")

	// ErrNoRecords is returned when the input has no LOCUS record.
	ErrNoRecords = errors.New("genbank: no records")
)

// Codons returns the 64 codons in lexicographic order. Component i of every
// parsed position is the frequency of Codons()[i].
func Codons() []string {
	codons := make([]string, 0, codonCount)
	for _, a := range bases {
		for _, b := range bases {
			for _, c := range bases {
				codons = append(codons, string([]rune{a, b, c}))
			}
		}
	}
	return codons
}

// baseIndex returns the rank of a base in "acgt", or -1.
func baseIndex(c byte) int {
	switch c {
	case 'a', 'A':
		return 0
	case 'c', 'C':
		return 1
	case 'g', 'G':
		return 2
	case 't', 'T':
		return 3
	}
	return -1
}

// record accumulates the codon counts of the record being read.
type record struct {
	id      string
	origin  bool
	counts  [codonCount]int
	codons  int
	pending int // bases of the current partial codon
	partial int // index built from the pending bases
}

func (r *record) add(base int) {
	r.partial = r.partial*4 + base
	r.pending++
	if r.pending == 3 {
		r.counts[r.partial]++
		r.codons++
		r.partial, r.pending = 0, 0
	}
}

func (r *record) position() *clustering.Position {
	components := make([]float64, codonCount)
	for i, n := range r.counts {
		components[i] = float64(n) / float64(r.codons)
	}
	return clustering.NewPosition(r.id, components)
}

// Parse reads every record of a GenBank flat file, in file order.
func Parse(rd io.Reader) ([]*clustering.Position, error) {
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var (
		positions []*clustering.Position
		seen      = make(map[string]bool)
		cur       *record
		line      int
	)
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")

		switch {
		case cur == nil:
			if !strings.HasPrefix(text, locusPrefix) {
				continue
			}
			fields := strings.Fields(text)
			if len(fields) < 2 {
				return nil, fmt.Errorf("%w: line %d: LOCUS line has no name", ErrMalformed, line)
			}
			if seen[fields[1]] {
				return nil, fmt.Errorf("%w: line %d: duplicate locus %q", ErrMalformed, line, fields[1])
			}
			seen[fields[1]] = true
			cur = &record{id: fields[1]}

		case !cur.origin:
			switch {
			case strings.HasPrefix(text, originPrefix):
				cur.origin = true
			case strings.HasPrefix(text, locusPrefix):
				return nil, fmt.Errorf("%w: line %d: locus %q has no ORIGIN", ErrMalformed, line, cur.id)
			case text == recordEnd:
				return nil, fmt.Errorf("%w: line %d: locus %q ends before ORIGIN", ErrMalformed, line, cur.id)
			}

		case text == recordEnd:
			if cur.codons == 0 {
				return nil, fmt.Errorf("%w: line %d: locus %q has no complete codon", ErrMalformed, line, cur.id)
			}
			positions = append(positions, cur.position())
			cur = nil

		default:
			for col := 0; col < len(text); col++ {
				c := text[col]
				if c == ' ' || c == '\t' || (c >= '0' && c <= '9') {
					continue
				}
				base := baseIndex(c)
				if base < 0 {
					return nil, fmt.Errorf("%w: line %d, column %d: %q in locus %q",
						ErrInvalidBase, line, col+1, c, cur.id)
				}
				cur.add(base)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("genbank: %w", err)
	}
	if cur != nil {
		return nil, fmt.Errorf("%w: locus %q is not terminated by %q", ErrMalformed, cur.id, recordEnd)
	}
	if len(positions) == 0 {
		return nil, ErrNoRecords
	}
	return positions, nil
}
