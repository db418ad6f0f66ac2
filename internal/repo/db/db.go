package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/opentracing/opentracing-go"
	conf "github.com/sta4888/TZL/internal/config"
	"github.com/sta4888/TZL/internal/model"
	"github.com/sta4888/TZL/internal/repo"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

type Repository struct {
	conn *sql.DB
}

func New(conf *conf.DBConfig) *Repository {
	conn, err := sql.Open(
		"sqlite", fmt.Sprintf(
			"file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_txlock=immediate",
			conf.File,
		),
	)
	if err != nil {
		zap.L().Fatal("Failed to open the database", zap.Error(err))
	}

	if err = conn.Ping(); err != nil {
		zap.L().Fatal("Failed to ping the database", zap.Error(err))
	}

	if err = applyMigrations(conn); err != nil {
		zap.L().Fatal("Failed to apply migrations", zap.Error(err))
	}

	return &Repository{conn: conn}
}

func (r *Repository) Close() error {
	return r.conn.Close()
}

func applyMigrations(db *sql.DB) error {
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return err
	}

	root, err := findRootDir()
	if err != nil {
		return err
	}
	path := filepath.ToSlash(filepath.Join(root, "internal", "repo", "db", "migration"))

	m, err := migrate.NewWithDatabaseInstance("file://"+path, "game", driver)
	if err != nil {
		return err
	}

	if err = m.Up(); err != nil && errors.Is(err, migrate.ErrNoChange) {
		zap.L().Info("No migrations to apply")
		return nil
	} else if err != nil {
		return err
	}

	zap.L().Info("Applied migrations")
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx so account reads can
// run inside or outside a transaction.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
}

func readAccount(q querier, nickname string) (*model.Account, error) {
	res := &model.Account{Nickname: nickname, Items: make([]int, 0)}
	err := q.QueryRow(accountGetCredits, nickname).Scan(&res.Credits)
	if err != nil && errors.Is(err, sql.ErrNoRows) {
		return nil, repo.ErrNotFound
	} else if err != nil {
		return nil, err
	}

	rows, err := q.Query(accountGetItems, nickname)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Error("Error while closing rows", zap.Error(err))
		}
	}(rows)

	for rows.Next() {
		var id int
		if err = rows.Scan(&id); err != nil {
			return nil, err
		}
		res.Items = append(res.Items, id)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return res, nil
}

func (r *Repository) GetAccount(ctx context.Context, nickname string) (*model.Account, error) {
	const op = "shop.GetAccount.repo"
	span, _ := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	return readAccount(r.conn, nickname)
}

func (r *Repository) CreateAccountIfMissing(ctx context.Context, nickname string, credits int) error {
	const op = "shop.CreateAccountIfMissing.repo"
	span, _ := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	_, err := r.conn.Exec(accountCreate, nickname, credits)
	return err
}

func (r *Repository) AdjustCredits(ctx context.Context, nickname string, delta int) error {
	const op = "shop.AdjustCredits.repo"
	span, _ := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	res, err := r.conn.Exec(accountAdjustCredits, delta, nickname)
	if err != nil {
		return err
	}

	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if aff == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *Repository) AddOwnedItem(ctx context.Context, nickname string, itemID int) error {
	const op = "shop.AddOwnedItem.repo"
	span, _ := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	_, err := r.conn.Exec(itemAdd, nickname, itemID)
	return err
}

func (r *Repository) RemoveOwnedItem(ctx context.Context, nickname string, itemID int) error {
	const op = "shop.RemoveOwnedItem.repo"
	span, _ := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	_, err := r.conn.Exec(itemRemove, nickname, itemID)
	return err
}

// Buy grants the item and debits its price as one transaction. The debit
// is conditional on sufficient credits, so two racing buys can never
// overdraw the account.
func (r *Repository) Buy(ctx context.Context, nickname string, item model.Item) (*model.Account, error) {
	const op = "shop.Buy.repo"
	span, _ := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	tx, err := r.conn.Begin()
	if err != nil {
		return nil, err
	}

	var owned int
	err = tx.QueryRow(itemOwned, nickname, item.ID).Scan(&owned)
	if err == nil {
		return nil, rollback(tx, nickname, repo.ErrAlreadyOwned)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, rollback(tx, nickname, err)
	}

	res, err := tx.Exec(accountDebit, item.Price, nickname)
	if err != nil {
		return nil, rollback(tx, nickname, err)
	}

	aff, err := res.RowsAffected()
	if err != nil {
		return nil, rollback(tx, nickname, err)
	}

	if aff == 0 {
		return nil, rollback(tx, nickname, repo.ErrInsufficientFunds)
	}

	if _, err = tx.Exec(itemAdd, nickname, item.ID); err != nil {
		return nil, rollback(tx, nickname, err)
	}

	acc, err := readAccount(tx, nickname)
	if err != nil {
		return nil, rollback(tx, nickname, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return acc, nil
}

// Sell removes the item and credits the sale price as one transaction.
func (r *Repository) Sell(ctx context.Context, nickname string, item model.Item, salePrice int) (*model.Account, error) {
	const op = "shop.Sell.repo"
	span, _ := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	tx, err := r.conn.Begin()
	if err != nil {
		return nil, err
	}

	res, err := tx.Exec(itemRemove, nickname, item.ID)
	if err != nil {
		return nil, rollback(tx, nickname, err)
	}

	aff, err := res.RowsAffected()
	if err != nil {
		return nil, rollback(tx, nickname, err)
	}

	if aff == 0 {
		return nil, rollback(tx, nickname, repo.ErrNotOwned)
	}

	if _, err = tx.Exec(accountAdjustCredits, salePrice, nickname); err != nil {
		return nil, rollback(tx, nickname, err)
	}

	acc, err := readAccount(tx, nickname)
	if err != nil {
		return nil, rollback(tx, nickname, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return acc, nil
}

func rollback(tx *sql.Tx, nickname string, cause error) error {
	if err := tx.Rollback(); err != nil {
		zap.L().Error(
			"Error while transaction rollback",
			zap.String("nickname", nickname), zap.Error(err),
		)
	}
	return cause
}
