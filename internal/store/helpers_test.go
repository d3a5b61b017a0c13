package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inodb/genomic-db/internal/config"
	"github.com/inodb/genomic-db/internal/model"
)

func openTestEngine(t *testing.T) *Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "genomics_test.db")
	eng, err := Open(config.Database{URL: "sqlite://" + path, MaxOpenConns: 4}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })
	require.NoError(t, eng.Migrate(context.Background()))
	return eng
}

func newSession(t *testing.T, eng *Engine) *Session {
	t.Helper()
	s := eng.NewSession(context.Background())
	t.Cleanup(func() { s.Close() })
	return s
}

// seedGenome commits a genome with chr1 (GENE_A, GENE_B) and chr2 (GENE_C).
func seedGenome(t *testing.T, eng *Engine, name string) *model.Genome {
	t.Helper()
	g := &model.Genome{
		Name:        name,
		Description: model.Ptr("test genome " + name),
		Chromosomes: []model.Chromosome{
			{
				Name:   "chr1",
				Length: model.Ptr[int64](1000000),
				Genes: []model.Gene{
					{Name: "GENE_A", StartPosition: 1000, EndPosition: 2500, Strand: model.Ptr(model.StrandForward)},
					{Name: "GENE_B", StartPosition: 5000, EndPosition: 7000, Strand: model.Ptr(model.StrandReverse)},
				},
			},
			{
				Name:   "chr2",
				Length: model.Ptr[int64](800000),
				Genes: []model.Gene{
					{Name: "GENE_C", StartPosition: 100, EndPosition: 500, Strand: model.Ptr(model.StrandForward)},
				},
			},
		},
	}
	s := newSession(t, eng)
	s.Add(g)
	require.NoError(t, s.Commit())
	return g
}

func countRows(t *testing.T, eng *Engine, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, eng.DB().Table(table).Count(&n).Error)
	return n
}
