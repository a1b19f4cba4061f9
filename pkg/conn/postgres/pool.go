// Package postgres has a thin interface layer over pgxpool, so that
// store implementations depend on a narrow, mockable surface.
package postgres

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Queryer sends SQL. Extracted subset of pgxpool.Conn and pgx.Tx.
type Queryer interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Tx is an open transaction. Subset of pgx.Tx.
type Tx interface {
	Queryer
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Conn is an acquired connection. Subset of *pgxpool.Conn.
type Conn interface {
	Queryer
	Begin(ctx context.Context) (Tx, error)
	Release()
	Ping(ctx context.Context) error
}

// Pool hands out connections. Subset of *pgxpool.Pool.
type Pool interface {
	Acquire(ctx context.Context) (Conn, error)
	Close()
}

type pgxPool struct {
	base *pgxpool.Pool
}

var _ Pool = &pgxPool{}

// Wrap adapts a *pgxpool.Pool to Pool.
func Wrap(p *pgxpool.Pool) Pool {
	return &pgxPool{base: p}
}

// Connect opens a pool for the given database URI.
func Connect(ctx context.Context, dburi string) (Pool, error) {
	p, err := pgxpool.Connect(ctx, dburi)
	if err != nil {
		return nil, err
	}
	return Wrap(p), nil
}

func (p *pgxPool) Acquire(ctx context.Context) (Conn, error) {
	c, err := p.base.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &pgxConn{base: c}, nil
}

func (p *pgxPool) Close() {
	p.base.Close()
}

type pgxConn struct {
	base *pgxpool.Conn
}

var _ Conn = &pgxConn{}

func (c *pgxConn) Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error) {
	return c.base.Exec(ctx, sql, arguments...)
}

func (c *pgxConn) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return c.base.Query(ctx, sql, args...)
}

func (c *pgxConn) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return c.base.QueryRow(ctx, sql, args...)
}

func (c *pgxConn) Begin(ctx context.Context) (Tx, error) {
	tx, err := c.base.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgxTx{base: tx}, nil
}

func (c *pgxConn) Release() {
	c.base.Release()
}

func (c *pgxConn) Ping(ctx context.Context) error {
	return c.base.Conn().Ping(ctx)
}

type pgxTx struct {
	base pgx.Tx
}

var _ Tx = &pgxTx{}

func (t *pgxTx) Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error) {
	return t.base.Exec(ctx, sql, arguments...)
}

func (t *pgxTx) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return t.base.Query(ctx, sql, args...)
}

func (t *pgxTx) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return t.base.QueryRow(ctx, sql, args...)
}

func (t *pgxTx) Commit(ctx context.Context) error {
	return t.base.Commit(ctx)
}

func (t *pgxTx) Rollback(ctx context.Context) error {
	return t.base.Rollback(ctx)
}
