package store

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inodb/genomic-db/internal/model"
)

type opKind int

const (
	opSave opKind = iota
	opDelete
)

type op struct {
	kind   opKind
	entity any
}

// Session is a unit of work. Pending changes are applied inside one
// transaction that is begun lazily on the first flush, so creating a Session
// does not take a connection from the pool. Reads before that borrow a pooled
// connection per query.
//
// A failed flush or commit rolls the whole transaction back, including work
// flushed earlier in the same session. Entities inserted in that transaction
// get their IDs, timestamps and assigned foreign keys back, so adding them
// again inserts them again. A Session must not be used from more
// than one goroutine, and must be closed.
type Session struct {
	db      *gorm.DB
	tx      *gorm.DB
	pending []op
	flushed int      // changes applied in the open transaction
	undo    []func() // restores fields assigned by inserts in the open transaction
	logger  *zap.Logger
	closed  bool
}

// Add queues entities for insertion, or for update when they already have
// an ID. New parents are inserted together with any children in their
// collections, and the children's foreign keys are filled in. Updates save
// only the entity's own columns; its foreign key is authoritative.
func (s *Session) Add(entities ...any) {
	for _, e := range entities {
		s.pending = append(s.pending, op{kind: opSave, entity: e})
	}
}

// Delete queues entity for deletion together with all of its descendants.
func (s *Session) Delete(entity any) {
	s.pending = append(s.pending, op{kind: opDelete, entity: entity})
}

// DetachChromosome removes c from g's chromosome collection. A detached
// chromosome has no owner, so it is deleted with its genes on flush. To move
// a chromosome to another genome, set GenomeID and Add it instead.
func (s *Session) DetachChromosome(g *model.Genome, c *model.Chromosome) {
	kept := make([]model.Chromosome, 0, len(g.Chromosomes))
	for i := range g.Chromosomes {
		if sameRow(g.Chromosomes[i].ID, c.ID, &g.Chromosomes[i] == c) {
			continue
		}
		kept = append(kept, g.Chromosomes[i])
	}
	g.Chromosomes = kept
	c.Genome = nil
	if c.ID != 0 || s.isPendingSave(c) {
		s.Delete(c)
	}
}

// DetachGene removes g from c's gene collection and queues it for deletion.
func (s *Session) DetachGene(c *model.Chromosome, g *model.Gene) {
	kept := make([]model.Gene, 0, len(c.Genes))
	for i := range c.Genes {
		if sameRow(c.Genes[i].ID, g.ID, &c.Genes[i] == g) {
			continue
		}
		kept = append(kept, c.Genes[i])
	}
	c.Genes = kept
	g.Chromosome = nil
	if g.ID != 0 || s.isPendingSave(g) {
		s.Delete(g)
	}
}

func sameRow(a, b uint, samePointer bool) bool {
	if samePointer {
		return true
	}
	return a != 0 && a == b
}

func (s *Session) isPendingSave(entity any) bool {
	for _, o := range s.pending {
		if o.kind == opSave && o.entity == entity {
			return true
		}
	}
	return false
}

// Pending reports the number of queued changes not yet flushed.
func (s *Session) Pending() int {
	return len(s.pending)
}

// Flush applies pending changes inside the session transaction without
// committing. Inserted entities get their IDs and timestamps.
func (s *Session) Flush() error {
	if s.closed {
		return ErrSessionClosed
	}
	if len(s.pending) == 0 {
		return nil
	}
	if err := s.begin(); err != nil {
		return err
	}

	pending := s.pending
	s.pending = nil
	for _, o := range pending {
		var err error
		switch o.kind {
		case opSave:
			err = s.save(o.entity)
		case opDelete:
			err = s.delete(o.entity)
		}
		if err != nil {
			_ = s.rollback("flush failed")
			return err
		}
		s.flushed++
	}
	return nil
}

// Commit flushes pending changes and commits the transaction.
func (s *Session) Commit() error {
	if err := s.Flush(); err != nil {
		return err
	}
	if s.tx == nil {
		return nil
	}
	tx, changes := s.tx, s.flushed
	s.tx, s.flushed = nil, 0
	if err := tx.Commit().Error; err != nil {
		s.restoreInserted()
		s.logger.Debug("commit failed", zap.Int("changes", changes), zap.Error(err))
		return fmt.Errorf("commit: %w", classify(err))
	}
	s.undo = nil
	s.logger.Debug("session committed", zap.Int("changes", changes))
	return nil
}

// Rollback discards pending changes and anything flushed but not committed.
func (s *Session) Rollback() error {
	if s.closed {
		return ErrSessionClosed
	}
	s.pending = nil
	return s.rollback("rollback requested")
}

// Close rolls back uncommitted work and releases the session's connection.
// Closing twice is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.pending = nil
	err := s.rollback("session closed")
	s.closed = true
	return err
}

func (s *Session) begin() error {
	if s.tx != nil {
		return nil
	}
	tx := s.db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin transaction: %w", classifyAcquire(tx.Error))
	}
	s.tx = tx
	return nil
}

func (s *Session) rollback(reason string) error {
	if s.tx == nil {
		return nil
	}
	tx, changes := s.tx, s.flushed
	s.tx, s.flushed = nil, 0
	err := tx.Rollback().Error
	s.restoreInserted()
	s.logger.Debug("session rolled back",
		zap.String("reason", reason),
		zap.Int("discarded", changes),
		zap.Error(err))
	if err != nil && !errors.Is(err, gorm.ErrInvalidTransaction) {
		return fmt.Errorf("rollback: %w", classify(err))
	}
	return nil
}

// conn returns the handle reads and writes go through: the open
// transaction if there is one, otherwise the pool.
func (s *Session) conn() *gorm.DB {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

func (s *Session) save(entity any) error {
	var id uint
	switch e := entity.(type) {
	case *model.Genome:
		id = e.ID
	case *model.Chromosome:
		id = e.ID
	case *model.Gene:
		id = e.ID
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedEntity, entity)
	}

	var err error
	if id == 0 {
		s.trackInsert(entity)
		err = s.tx.Create(entity).Error
	} else {
		err = s.tx.Omit(clause.Associations).Save(entity).Error
	}
	if err != nil {
		return fmt.Errorf("save %T: %w", entity, classify(err))
	}
	return nil
}

// trackInsert records the fields an insert of entity and its nested
// children may assign, so a rollback can put them back.
func (s *Session) trackInsert(entity any) {
	switch e := entity.(type) {
	case *model.Genome:
		s.trackGenome(e)
	case *model.Chromosome:
		s.trackChromosome(e)
	case *model.Gene:
		s.trackGene(e)
	}
}

func (s *Session) trackGenome(g *model.Genome) {
	id, created, updated := g.ID, g.CreatedAt, g.UpdatedAt
	s.undo = append(s.undo, func() {
		g.ID, g.CreatedAt, g.UpdatedAt = id, created, updated
	})
	for i := range g.Chromosomes {
		s.trackChromosome(&g.Chromosomes[i])
	}
}

func (s *Session) trackChromosome(c *model.Chromosome) {
	id, genomeID, created := c.ID, c.GenomeID, c.CreatedAt
	s.undo = append(s.undo, func() {
		c.ID, c.GenomeID, c.CreatedAt = id, genomeID, created
	})
	for i := range c.Genes {
		s.trackGene(&c.Genes[i])
	}
}

func (s *Session) trackGene(g *model.Gene) {
	id, chromosomeID, created := g.ID, g.ChromosomeID, g.CreatedAt
	s.undo = append(s.undo, func() {
		g.ID, g.ChromosomeID, g.CreatedAt = id, chromosomeID, created
	})
}

// restoreInserted undoes field assignments in reverse order of insertion.
func (s *Session) restoreInserted() {
	for i := len(s.undo) - 1; i >= 0; i-- {
		s.undo[i]()
	}
	s.undo = nil
}

// delete removes entity and its descendants. Storage foreign keys cascade
// as well; deleting children explicitly keeps the cascade intact on engines
// where foreign key enforcement is switched off.
func (s *Session) delete(entity any) error {
	var err error
	switch e := entity.(type) {
	case *model.Genome:
		if e.ID == 0 {
			return fmt.Errorf("delete %s: not persisted", e)
		}
		chromosomes := s.tx.Model(&model.Chromosome{}).Select("id").Where("genome_id = ?", e.ID)
		if err = s.tx.Where("chromosome_id IN (?)", chromosomes).Delete(&model.Gene{}).Error; err != nil {
			break
		}
		if err = s.tx.Where("genome_id = ?", e.ID).Delete(&model.Chromosome{}).Error; err != nil {
			break
		}
		err = s.tx.Delete(&model.Genome{}, e.ID).Error
	case *model.Chromosome:
		if e.ID == 0 {
			return fmt.Errorf("delete %s: not persisted", e)
		}
		if err = s.tx.Where("chromosome_id = ?", e.ID).Delete(&model.Gene{}).Error; err != nil {
			break
		}
		err = s.tx.Delete(&model.Chromosome{}, e.ID).Error
	case *model.Gene:
		if e.ID == 0 {
			return fmt.Errorf("delete %s: not persisted", e)
		}
		err = s.tx.Delete(&model.Gene{}, e.ID).Error
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedEntity, entity)
	}
	if err != nil {
		return fmt.Errorf("delete %T: %w", entity, classify(err))
	}
	return nil
}
