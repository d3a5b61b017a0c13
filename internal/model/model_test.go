package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenomeFields(t *testing.T) {
	g := Genome{Name: "Test Genome", Description: Ptr("A test")}
	assert.Equal(t, "Test Genome", g.Name)
	assert.Equal(t, "A test", Deref(g.Description))
	assert.Equal(t, "genomes", g.TableName())
}

func TestChromosomeFields(t *testing.T) {
	c := Chromosome{Name: "chr1", Length: Ptr[int64](100000), GenomeID: 1}
	assert.Equal(t, "chr1", c.Name)
	assert.Equal(t, int64(100000), *c.Length)
	assert.Equal(t, "chromosomes", c.TableName())
}

func TestGeneLength(t *testing.T) {
	tests := []struct {
		name       string
		start, end int64
		want       int64
	}{
		{"BRCA1", 1000, 5000, 4000},
		{"TEST", 100, 350, 250},
		{"empty", 42, 42, 0},
		// end before start is stored as-is
		{"inverted", 5000, 1000, -4000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Gene{Name: tt.name, StartPosition: tt.start, EndPosition: tt.end, ChromosomeID: 1}
			assert.Equal(t, tt.want, g.Length())
		})
	}
}

func TestGeneLineage(t *testing.T) {
	g := Gene{Name: "GENE_A"}
	assert.Nil(t, g.Genome())

	g.Chromosome = &Chromosome{Name: "chr1"}
	assert.Nil(t, g.Genome())

	g.Chromosome.Genome = &Genome{Name: "Example Genome"}
	assert.Equal(t, "Example Genome", g.Genome().Name)
}

func TestString(t *testing.T) {
	assert.Equal(t, `Genome(id=3, name="GRCh38")`, Genome{ID: 3, Name: "GRCh38"}.String())
	assert.Equal(t, `Chromosome(id=7, name="chrX", genome_id=3)`, Chromosome{ID: 7, Name: "chrX", GenomeID: 3}.String())
	assert.Equal(t, `Gene(id=9, name="KRAS", pos=25205246-25250929)`,
		Gene{ID: 9, Name: "KRAS", StartPosition: 25205246, EndPosition: 25250929}.String())
}

func TestDerefNil(t *testing.T) {
	var s *string
	assert.Equal(t, "", Deref(s))
	assert.Equal(t, StrandReverse, Deref(Ptr(StrandReverse)))
}
