package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/genomic-db/internal/model"
)

// ChromosomeStat summarizes the genes exported for one chromosome.
type ChromosomeStat struct {
	Genome      string
	Chromosome  string
	Length      *int64
	Genes       int64
	GeneBases   int64 // sum of gene lengths
	LongestGene int64
}

// WriteGenomes batch-inserts loaded genome hierarchies using the Appender
// API. Genomes already present in the export are replaced with the new
// copy, together with their chromosomes and genes. Duplicate genomes in the
// input are written once. The write is one transaction: on error the file
// keeps its previous contents.
func (s *Store) WriteGenomes(genomes []model.Genome) error {
	if len(genomes) == 0 {
		return nil
	}

	seen := make(map[uint]bool, len(genomes))
	deduped := make([]model.Genome, 0, len(genomes))
	for _, g := range genomes {
		if !seen[g.ID] {
			seen[g.ID] = true
			deduped = append(deduped, g)
		}
	}

	ctx := context.Background()
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	// Appenders write through the connection's open transaction.
	if _, err := conn.ExecContext(ctx, "BEGIN TRANSACTION"); err != nil {
		return fmt.Errorf("begin export: %w", err)
	}
	if err := writeGenomes(ctx, conn, deduped); err != nil {
		if _, rbErr := conn.ExecContext(ctx, "ROLLBACK"); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		_, _ = conn.ExecContext(ctx, "ROLLBACK")
		return fmt.Errorf("commit export: %w", err)
	}
	return nil
}

func writeGenomes(ctx context.Context, conn *sql.Conn, genomes []model.Genome) error {
	if err := replaceExisting(ctx, conn, genomes); err != nil {
		return err
	}

	if err := appendTo(conn, "genomes", func(a *goduckdb.Appender) error {
		for _, g := range genomes {
			if err := a.AppendRow(
				int64(g.ID), g.Name, nullable(g.Description), g.CreatedAt, g.UpdatedAt,
			); err != nil {
				return fmt.Errorf("append %s: %w", g, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if err := appendTo(conn, "chromosomes", func(a *goduckdb.Appender) error {
		for _, g := range genomes {
			for _, c := range g.Chromosomes {
				if c.GenomeID != 0 && c.GenomeID != g.ID {
					return fmt.Errorf("%s is listed under %s", c, g)
				}
				if err := a.AppendRow(
					int64(c.ID), int64(g.ID), c.Name, nullable(c.Length), c.CreatedAt,
				); err != nil {
					return fmt.Errorf("append %s: %w", c, err)
				}
			}
		}
		return nil
	}); err != nil {
		return err
	}

	return appendTo(conn, "genes", func(a *goduckdb.Appender) error {
		for _, g := range genomes {
			for _, c := range g.Chromosomes {
				for _, gene := range c.Genes {
					if gene.ChromosomeID != 0 && gene.ChromosomeID != c.ID {
						return fmt.Errorf("%s is listed under %s", gene, c)
					}
					if err := a.AppendRow(
						int64(gene.ID), int64(c.ID), gene.Name,
						gene.StartPosition, gene.EndPosition, gene.Length(),
						nullable(gene.Strand), nullable(gene.Sequence), gene.CreatedAt,
					); err != nil {
						return fmt.Errorf("append %s: %w", gene, err)
					}
				}
			}
		}
		return nil
	})
}

// replaceExisting deletes earlier exports of the given genomes and of any
// chromosome or gene they now contain.
func replaceExisting(ctx context.Context, conn *sql.Conn, genomes []model.Genome) error {
	stmts := []struct {
		sql string
		ids func(model.Genome) []int64
	}{
		{
			sql: "DELETE FROM genes WHERE chromosome_id IN (SELECT id FROM chromosomes WHERE genome_id = ?)",
			ids: genomeID,
		},
		{sql: "DELETE FROM chromosomes WHERE genome_id = ?", ids: genomeID},
		{sql: "DELETE FROM genomes WHERE id = ?", ids: genomeID},
		{sql: "DELETE FROM chromosomes WHERE id = ?", ids: chromosomeIDs},
		{sql: "DELETE FROM genes WHERE id = ?", ids: geneIDs},
	}

	for _, st := range stmts {
		for _, g := range genomes {
			for _, id := range st.ids(g) {
				if _, err := conn.ExecContext(ctx, st.sql, id); err != nil {
					return fmt.Errorf("replace %s: %w", g, err)
				}
			}
		}
	}
	return nil
}

func genomeID(g model.Genome) []int64 {
	return []int64{int64(g.ID)}
}

func chromosomeIDs(g model.Genome) []int64 {
	ids := make([]int64, 0, len(g.Chromosomes))
	for _, c := range g.Chromosomes {
		ids = append(ids, int64(c.ID))
	}
	return ids
}

func geneIDs(g model.Genome) []int64 {
	var ids []int64
	for _, c := range g.Chromosomes {
		for _, gene := range c.Genes {
			ids = append(ids, int64(gene.ID))
		}
	}
	return ids
}

// appendTo opens an appender on table, fills it, and flushes it.
func appendTo(conn *sql.Conn, table string, fill func(*goduckdb.Appender) error) error {
	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create %s appender: %w", table, err)
	}

	if err := fill(appender); err != nil {
		appender.Close()
		return err
	}
	if err := appender.Close(); err != nil {
		return fmt.Errorf("flush %s: %w", table, err)
	}
	return nil
}

func nullable[T any](p *T) driver.Value {
	if p == nil {
		return nil
	}
	return *p
}

// ChromosomeStats summarizes exported genes per chromosome, ordered by
// genome and chromosome name.
func (s *Store) ChromosomeStats() ([]ChromosomeStat, error) {
	rows, err := s.db.Query(`SELECT
		g.name, c.name, c.length,
		count(ge.id),
		CAST(coalesce(sum(ge.length), 0) AS BIGINT),
		CAST(coalesce(max(ge.length), 0) AS BIGINT)
		FROM chromosomes c
		JOIN genomes g ON g.id = c.genome_id
		LEFT JOIN genes ge ON ge.chromosome_id = c.id
		GROUP BY g.name, c.name, c.length
		ORDER BY g.name, c.name`)
	if err != nil {
		return nil, fmt.Errorf("query chromosome stats: %w", err)
	}
	defer rows.Close()

	var stats []ChromosomeStat
	for rows.Next() {
		var st ChromosomeStat
		var length sql.NullInt64
		if err := rows.Scan(
			&st.Genome, &st.Chromosome, &length,
			&st.Genes, &st.GeneBases, &st.LongestGene,
		); err != nil {
			return nil, fmt.Errorf("scan chromosome stat: %w", err)
		}
		if length.Valid {
			st.Length = model.Ptr(length.Int64)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chromosome stats: %w", err)
	}
	return stats, nil
}
