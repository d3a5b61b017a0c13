package store

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/inodb/genomic-db/internal/model"
)

// Queries flush pending changes first, so they see everything added to the
// session. A lookup that matches nothing returns a nil entity and a nil
// error; callers check before dereferencing.

// reader flushes and returns the handle to query through.
func (s *Session) reader() (*gorm.DB, error) {
	if err := s.Flush(); err != nil {
		return nil, err
	}
	return s.conn(), nil
}

func first[T any](q *gorm.DB) (*T, error) {
	var rows []T
	if err := q.Limit(1).Find(&rows).Error; err != nil {
		return nil, classifyAcquire(err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func all[T any](q *gorm.DB) ([]T, error) {
	rows := make([]T, 0)
	if err := q.Find(&rows).Error; err != nil {
		return nil, classifyAcquire(err)
	}
	return rows, nil
}

func byChromosomeName(db *gorm.DB) *gorm.DB {
	return db.Order("chromosomes.name, chromosomes.id")
}

func byGenePosition(db *gorm.DB) *gorm.DB {
	return db.Order("genes.start_position, genes.id")
}

// GetGenome returns the genome with the given ID.
func (s *Session) GetGenome(id uint) (*model.Genome, error) {
	q, err := s.reader()
	if err != nil {
		return nil, err
	}
	return first[model.Genome](q.Where("id = ?", id))
}

// GetChromosome returns the chromosome with the given ID, with its genome.
func (s *Session) GetChromosome(id uint) (*model.Chromosome, error) {
	q, err := s.reader()
	if err != nil {
		return nil, err
	}
	return first[model.Chromosome](q.Preload("Genome").Where("id = ?", id))
}

// GetGene returns the gene with the given ID.
func (s *Session) GetGene(id uint) (*model.Gene, error) {
	q, err := s.reader()
	if err != nil {
		return nil, err
	}
	return first[model.Gene](q.Where("id = ?", id))
}

// FindGenomeByName returns the genome named name.
func (s *Session) FindGenomeByName(name string) (*model.Genome, error) {
	q, err := s.reader()
	if err != nil {
		return nil, err
	}
	return first[model.Genome](q.Where("name = ?", name))
}

// FindChromosome returns the chromosome named name within a genome.
func (s *Session) FindChromosome(genomeID uint, name string) (*model.Chromosome, error) {
	q, err := s.reader()
	if err != nil {
		return nil, err
	}
	return first[model.Chromosome](q.Where("genome_id = ? AND name = ?", genomeID, name))
}

// FindGene returns the gene named name on a chromosome.
func (s *Session) FindGene(chromosomeID uint, name string) (*model.Gene, error) {
	q, err := s.reader()
	if err != nil {
		return nil, err
	}
	return first[model.Gene](q.Where("chromosome_id = ? AND name = ?", chromosomeID, name))
}

// ListGenomes returns all genomes ordered by name.
func (s *Session) ListGenomes() ([]model.Genome, error) {
	q, err := s.reader()
	if err != nil {
		return nil, err
	}
	return all[model.Genome](q.Order("name, id"))
}

// ListChromosomes returns a genome's chromosomes, the reverse side of
// Chromosome.GenomeID.
func (s *Session) ListChromosomes(genomeID uint) ([]model.Chromosome, error) {
	q, err := s.reader()
	if err != nil {
		return nil, err
	}
	return all[model.Chromosome](byChromosomeName(q.Where("genome_id = ?", genomeID)))
}

// ListGenes returns a chromosome's genes ordered by start position.
func (s *Session) ListGenes(chromosomeID uint) ([]model.Gene, error) {
	q, err := s.reader()
	if err != nil {
		return nil, err
	}
	return all[model.Gene](byGenePosition(q.Where("chromosome_id = ?", chromosomeID)))
}

// LoadGenomeTree returns the named genome with its chromosomes and their
// genes loaded.
func (s *Session) LoadGenomeTree(name string) (*model.Genome, error) {
	q, err := s.reader()
	if err != nil {
		return nil, err
	}
	return first[model.Genome](q.
		Preload("Chromosomes", byChromosomeName).
		Preload("Chromosomes.Genes", byGenePosition).
		Where("name = ?", name))
}

// LoadAllGenomeTrees returns every genome with its full hierarchy loaded.
func (s *Session) LoadAllGenomeTrees() ([]model.Genome, error) {
	q, err := s.reader()
	if err != nil {
		return nil, err
	}
	return all[model.Genome](q.
		Preload("Chromosomes", byChromosomeName).
		Preload("Chromosomes.Genes", byGenePosition).
		Order("name, id"))
}

// GeneLineage returns a gene with its chromosome and genome loaded, for
// upward traversal.
func (s *Session) GeneLineage(id uint) (*model.Gene, error) {
	q, err := s.reader()
	if err != nil {
		return nil, err
	}
	return first[model.Gene](q.Preload("Chromosome.Genome").Where("genes.id = ?", id))
}

// GenesByGenomeName joins genes to chromosomes and genomes and returns the
// genes whose genome is named name, with their lineage loaded.
func (s *Session) GenesByGenomeName(name string) ([]model.Gene, error) {
	q, err := s.reader()
	if err != nil {
		return nil, err
	}
	return all[model.Gene](q.
		Joins("JOIN chromosomes ON chromosomes.id = genes.chromosome_id").
		Joins("JOIN genomes ON genomes.id = chromosomes.genome_id").
		Where("genomes.name = ?", name).
		Preload("Chromosome.Genome").
		Order("chromosomes.name, genes.start_position, genes.id"))
}

// CountGenomeDescendants counts the chromosome and gene rows that reference
// a genome, directly or through a chromosome.
func (s *Session) CountGenomeDescendants(genomeID uint) (chromosomes, genes int64, err error) {
	q, err := s.reader()
	if err != nil {
		return 0, 0, err
	}
	if err := q.Model(&model.Chromosome{}).Where("genome_id = ?", genomeID).Count(&chromosomes).Error; err != nil {
		return 0, 0, fmt.Errorf("count chromosomes: %w", classify(err))
	}
	ids := q.Model(&model.Chromosome{}).Select("id").Where("genome_id = ?", genomeID)
	if err := q.Model(&model.Gene{}).Where("chromosome_id IN (?)", ids).Count(&genes).Error; err != nil {
		return 0, 0, fmt.Errorf("count genes: %w", classify(err))
	}
	return chromosomes, genes, nil
}
