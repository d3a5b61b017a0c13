// Package sample seeds a small example genome, used for demos and smoke
// tests against a freshly migrated database.
package sample

import (
	"context"
	"errors"
	"fmt"

	"github.com/inodb/genomic-db/internal/model"
	"github.com/inodb/genomic-db/internal/store"
)

// GenomeName is the name of the seeded genome.
const GenomeName = "Example Genome"

// Genome returns an unsaved example genome with two chromosomes and three
// genes.
func Genome() *model.Genome {
	return &model.Genome{
		Name:        GenomeName,
		Description: model.Ptr("A minimal example genome for testing"),
		Chromosomes: []model.Chromosome{
			{
				Name:   "chr1",
				Length: model.Ptr[int64](1_000_000),
				Genes: []model.Gene{
					gene("GENE_A", 1000, 2500, model.StrandForward, "ATGCGTACGATCGATCGATCG"),
					gene("GENE_B", 5000, 7000, model.StrandReverse, "GCTAGCTAGCTAGCTAGCTA"),
				},
			},
			{
				Name:   "chr2",
				Length: model.Ptr[int64](800_000),
				Genes: []model.Gene{
					gene("GENE_C", 100, 500, model.StrandForward, "TTAACCGGTTAACCGGTTAA"),
				},
			},
		},
	}
}

func gene(name string, start, end int64, strand, seq string) model.Gene {
	return model.Gene{
		Name:          name,
		StartPosition: start,
		EndPosition:   end,
		Strand:        model.Ptr(strand),
		Sequence:      model.Ptr(seq),
	}
}

// Seed stores the example genome unless a genome with the same name exists.
// It returns the stored genome and whether this call created it.
func Seed(ctx context.Context, eng *store.Engine) (*model.Genome, bool, error) {
	var (
		genome  *model.Genome
		created bool
	)
	err := eng.WithSession(ctx, func(s *store.Session) error {
		existing, err := s.FindGenomeByName(GenomeName)
		if err != nil {
			return err
		}
		if existing != nil {
			genome = existing
			return nil
		}
		genome = Genome()
		s.Add(genome)
		created = true
		return nil
	})
	if errors.Is(err, store.ErrConstraintViolation) {
		// lost a race with a concurrent seed
		return lookup(ctx, eng)
	}
	if err != nil {
		return nil, false, fmt.Errorf("seed %q: %w", GenomeName, err)
	}
	return genome, created, nil
}

func lookup(ctx context.Context, eng *store.Engine) (*model.Genome, bool, error) {
	s := eng.NewSession(ctx)
	defer s.Close()
	genome, err := s.LoadGenomeTree(GenomeName)
	if err != nil {
		return nil, false, fmt.Errorf("load %q: %w", GenomeName, err)
	}
	return genome, false, nil
}
