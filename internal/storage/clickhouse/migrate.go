package clickhouse

import (
	"context"
	"fmt"

	"electional-engine/internal/storage/migrations"
)

// Migrate creates the database named in dsn when missing, applies the embedded
// schema statement by statement and returns a connection to that database.
// The schema is written with IF NOT EXISTS so reapplying it is a no-op.
func Migrate(ctx context.Context, dsn string) (*Conn, error) {
	opts, err := options(dsn)
	if err != nil {
		return nil, err
	}
	db := opts.Auth.Database
	if db == "" || db == "default" {
		return nil, fmt.Errorf("clickhouse dsn must name a database")
	}

	admin, err := NewConnWithDatabase(ctx, dsn, "")
	if err != nil {
		return nil, fmt.Errorf("connect clickhouse admin: %w", err)
	}
	err = admin.Exec(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", db))
	admin.Close()
	if err != nil {
		return nil, fmt.Errorf("create database %s: %w", db, err)
	}

	conn, err := NewConnWithDatabase(ctx, dsn, db)
	if err != nil {
		return nil, fmt.Errorf("connect clickhouse db: %w", err)
	}
	if err := applySchema(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func applySchema(ctx context.Context, conn *Conn) error {
	all, err := migrations.Clickhouse()
	if err != nil {
		return err
	}
	for _, m := range all {
		for _, stmt := range m.Statements() {
			if err := conn.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("apply migration %s: %w", m.Version, err)
			}
		}
	}
	return nil
}
