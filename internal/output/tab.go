// Package output provides genome and gene output formatters.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/genomic-db/internal/model"
)

// GeneTabWriter writes genes with their lineage in tab-delimited format.
type GeneTabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewGeneTabWriter creates a new tab-delimited gene writer.
func NewGeneTabWriter(w io.Writer) *GeneTabWriter {
	return &GeneTabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Gene",
			"Chromosome",
			"Genome",
			"Start",
			"End",
			"Strand",
			"Length",
		},
	}
}

// WriteHeader writes the header line.
func (tw *GeneTabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single gene. Parents that were not loaded are written
// as "-".
func (tw *GeneTabWriter) Write(g *model.Gene) error {
	chromosome := "-"
	if g.Chromosome != nil {
		chromosome = g.Chromosome.Name
	}
	genome := "-"
	if gn := g.Genome(); gn != nil {
		genome = gn.Name
	}

	values := []string{
		g.Name,
		chromosome,
		genome,
		strconv.FormatInt(g.StartPosition, 10),
		strconv.FormatInt(g.EndPosition, 10),
		orDash(g.Strand),
		strconv.FormatInt(g.Length(), 10),
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *GeneTabWriter) Flush() error {
	return tw.w.Flush()
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
