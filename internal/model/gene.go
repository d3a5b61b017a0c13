package model

import (
	"fmt"
	"time"
)

// Strand orientations relative to the chromosome's reference direction.
const (
	StrandForward = "+"
	StrandReverse = "-"
)

// Gene is a named region on one chromosome.
type Gene struct {
	ID            uint    `gorm:"primaryKey"`
	Name          string  `gorm:"size:255;not null;uniqueIndex:idx_genes_name_chromosome"`
	StartPosition int64   `gorm:"not null"`
	EndPosition   int64   `gorm:"not null"`
	Strand        *string `gorm:"size:1"` // "+" or "-"
	Sequence      *string `gorm:"type:text"`
	ChromosomeID  uint    `gorm:"not null;index;uniqueIndex:idx_genes_name_chromosome"`
	CreatedAt     time.Time

	Chromosome *Chromosome
}

// TableName maps Gene to the genes table.
func (Gene) TableName() string { return "genes" }

// Length returns EndPosition - StartPosition. Positions are not validated,
// so the result is negative when the end precedes the start.
func (g Gene) Length() int64 {
	return g.EndPosition - g.StartPosition
}

func (g Gene) String() string {
	return fmt.Sprintf("Gene(id=%d, name=%q, pos=%d-%d)", g.ID, g.Name, g.StartPosition, g.EndPosition)
}

// Genome walks the loaded Chromosome reference up to its genome.
// It returns nil if either level was not loaded.
func (g Gene) Genome() *Genome {
	if g.Chromosome == nil {
		return nil
	}
	return g.Chromosome.Genome
}
