package storage

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
)

// DB 可选的 Postgres 连接，仅在配置了归档 DSN 时初始化
var DB *sql.DB

func InitPostgres(ctx context.Context, dsn string) error {
	var err error
	DB, err = sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	return DB.PingContext(ctx)
}
