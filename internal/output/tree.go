package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/inodb/genomic-db/internal/model"
)

// TreeWriter renders a genome with its chromosomes and genes as an
// indented tree.
type TreeWriter struct {
	w *bufio.Writer
}

// NewTreeWriter creates a new tree writer.
func NewTreeWriter(w io.Writer) *TreeWriter {
	return &TreeWriter{w: bufio.NewWriter(w)}
}

// Write renders one genome. Chromosomes and genes are written in the order
// they were loaded.
func (tw *TreeWriter) Write(g *model.Genome) error {
	fmt.Fprintf(tw.w, "%s (id=%d)\n", g.Name, g.ID)
	if g.Description != nil && *g.Description != "" {
		fmt.Fprintf(tw.w, "  %s\n", *g.Description)
	}
	fmt.Fprintf(tw.w, "  Chromosomes (%d):\n", len(g.Chromosomes))

	for _, c := range g.Chromosomes {
		length := "unknown length"
		if c.Length != nil {
			length = fmt.Sprintf("%d bp", *c.Length)
		}
		fmt.Fprintf(tw.w, "    %s (%s): %d genes\n", c.Name, length, len(c.Genes))
		for _, gene := range c.Genes {
			fmt.Fprintf(tw.w, "      - %s (%s) at %d-%d, length %d\n",
				gene.Name, orDash(gene.Strand), gene.StartPosition, gene.EndPosition, gene.Length())
		}
	}

	_, err := tw.w.WriteString("\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TreeWriter) Flush() error {
	return tw.w.Flush()
}
