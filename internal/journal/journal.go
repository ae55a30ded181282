package journal

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5"

	"vol_monitor/internal/models"
	"vol_monitor/pkg/db"
)

// Journal — журнал алертов и отчётов в Postgres. Опционален:
// без DSN раннер получает nil и просто не пишет.
type Journal struct {
	tx *db.PgTxManager
}

func New(tx *db.PgTxManager) *Journal {
	return &Journal{tx: tx}
}

const createSchemaSQL = `
CREATE TABLE IF NOT EXISTS alerts (
    id         BIGSERIAL PRIMARY KEY,
    kind       TEXT        NOT NULL,
    payload    JSONB       NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS reports (
    id         BIGSERIAL PRIMARY KEY,
    body       TEXT        NOT NULL,
    samples    BIGINT      NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// EnsureSchema создаёт таблицы журнала, если их ещё нет.
func (j *Journal) EnsureSchema(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Journal.EnsureSchema: %w", err)
		}
	}()
	return j.tx.Run(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, createSchemaSQL)
		return err
	})
}

// InsertAlert пишет алерт целиком как JSONB.
func (j *Journal) InsertAlert(ctx context.Context, a models.AlertPayload) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Journal.InsertAlert: %w", err)
		}
	}()

	var data []byte
	data, err = sonic.Marshal(a)
	if err != nil {
		return err
	}
	return j.tx.Run(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx,
			`INSERT INTO alerts (kind, payload) VALUES ($1, $2)`,
			string(a.Kind), data,
		)
		return err
	})
}

// InsertReport пишет текст гистограммного отчёта.
func (j *Journal) InsertReport(ctx context.Context, body string, samples int) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Journal.InsertReport: %w", err)
		}
	}()
	return j.tx.Run(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx,
			`INSERT INTO reports (body, samples) VALUES ($1, $2)`,
			body, samples,
		)
		return err
	})
}
