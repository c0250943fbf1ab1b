package report

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/ranker"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/postgres"
)

// PostgresSink stores each run as rows (run_id, rank, word, count). A run is
// written in one transaction with COPY, so readers see all of it or none.
type PostgresSink struct {
	client *postgres.Client
	table  string
}

func NewPostgresSink(client *postgres.Client, table string) *PostgresSink {
	return &PostgresSink{client: client, table: table}
}

func (s *PostgresSink) Name() string { return "postgres" }

func (s *PostgresSink) Publish(ctx context.Context, runID string, r ranker.Report) error {
	return s.client.InTx(ctx, func(tx *sql.Tx) error {
		ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	run_id     TEXT        NOT NULL,
	rank       INTEGER     NOT NULL,
	word       TEXT        NOT NULL,
	count      BIGINT      NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (run_id, word)
)`, pq.QuoteIdentifier(s.table))
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("creating table %s: %w", s.table, err)
		}
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE run_id = $1", pq.QuoteIdentifier(s.table)), runID); err != nil {
			return fmt.Errorf("clearing run %s: %w", runID, err)
		}
		stmt, err := tx.PrepareContext(ctx, pq.CopyIn(s.table, "run_id", "rank", "word", "count"))
		if err != nil {
			return fmt.Errorf("preparing copy: %w", err)
		}
		defer stmt.Close()
		for i, e := range r {
			if _, err := stmt.ExecContext(ctx, runID, i+1, e.Word, int64(e.Count)); err != nil {
				return fmt.Errorf("copying %q: %w", e.Word, err)
			}
		}
		if _, err := stmt.ExecContext(ctx); err != nil {
			return fmt.Errorf("flushing copy: %w", err)
		}
		return nil
	})
}

func (s *PostgresSink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *PostgresSink) Close() error {
	return s.client.Close()
}
