package model

import (
	"fmt"
	"time"
)

// Chromosome is a named DNA molecule belonging to one genome.
// Names are unique per genome, not globally.
type Chromosome struct {
	ID       uint   `gorm:"primaryKey"`
	Name     string `gorm:"size:100;not null;uniqueIndex:idx_chromosomes_name_genome"`
	GenomeID uint   `gorm:"not null;index;uniqueIndex:idx_chromosomes_name_genome"`

	// Length in base pairs, when known.
	Length    *int64
	CreatedAt time.Time

	Genome *Genome
	Genes  []Gene `gorm:"foreignKey:ChromosomeID;constraint:OnDelete:CASCADE"`
}

// TableName maps Chromosome to the chromosomes table.
func (Chromosome) TableName() string { return "chromosomes" }

func (c Chromosome) String() string {
	return fmt.Sprintf("Chromosome(id=%d, name=%q, genome_id=%d)", c.ID, c.Name, c.GenomeID)
}
