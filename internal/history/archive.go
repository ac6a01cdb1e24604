package history

import (
	"context"
	"database/sql"
	"strings"

	"BlockMatch/internal/engine"
)

// Archive 把成局记录落到 Postgres（可选，配置了 DSN 才启用）。
// 建表语句：
//
//	CREATE TABLE IF NOT EXISTS matches (
//	    id         TEXT PRIMARY KEY,
//	    mode       TEXT NOT NULL,
//	    hosts      TEXT NOT NULL,
//	    joins      TEXT NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL
//	);
type Archive struct {
	db *sql.DB
}

func NewArchive(db *sql.DB) *Archive {
	return &Archive{db: db}
}

func (a *Archive) Insert(ctx context.Context, m *engine.Match) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO matches (id, mode, hosts, joins, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO NOTHING`,
		m.ID, m.Mode,
		strings.Join(m.Hosts, ","),
		strings.Join(m.Joins, ","),
		m.CreatedAt,
	)
	return err
}
