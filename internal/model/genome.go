// Package model defines the genome → chromosome → gene entity hierarchy.
//
// Each level is owned by exactly one parent. Ownership is strict: deleting a
// parent removes every descendant, and a child detached from its parent
// without reassignment is deleted rather than left dangling.
package model

import (
	"fmt"
	"time"
)

// Genome is a named genome dataset (e.g. GRCh38, GRCm39).
type Genome struct {
	ID          uint    `gorm:"primaryKey"`
	Name        string  `gorm:"size:255;not null;uniqueIndex"`
	Description *string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Chromosomes []Chromosome `gorm:"foreignKey:GenomeID;constraint:OnDelete:CASCADE"`
}

// TableName maps Genome to the genomes table.
func (Genome) TableName() string { return "genomes" }

func (g Genome) String() string {
	return fmt.Sprintf("Genome(id=%d, name=%q)", g.ID, g.Name)
}
