package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/genomic-db/internal/model"
)

func TestTreeWriter(t *testing.T) {
	g := &model.Genome{
		ID:          1,
		Name:        "Example Genome",
		Description: model.Ptr("A minimal example genome for testing"),
		Chromosomes: []model.Chromosome{
			{
				Name:   "chr1",
				Length: model.Ptr[int64](1000000),
				Genes: []model.Gene{
					{Name: "GENE_A", StartPosition: 1000, EndPosition: 2500, Strand: model.Ptr("+")},
				},
			},
			{Name: "chrUn"},
		},
	}

	var buf bytes.Buffer
	w := NewTreeWriter(&buf)
	require.NoError(t, w.Write(g))
	require.NoError(t, w.Flush())

	want := "Example Genome (id=1)\n" +
		"  A minimal example genome for testing\n" +
		"  Chromosomes (2):\n" +
		"    chr1 (1000000 bp): 1 genes\n" +
		"      - GENE_A (+) at 1000-2500, length 1500\n" +
		"    chrUn (unknown length): 0 genes\n" +
		"\n"
	assert.Equal(t, want, buf.String())
}
