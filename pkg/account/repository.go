package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

type Repository interface {
	StoreAccount(ctx context.Context, account Account) error
	GetAccountByEmail(ctx context.Context, email string) (Account, error)
	GetAccount(ctx context.Context, accountId string) (Account, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) StoreAccount(ctx context.Context, account Account) error {
	query := `INSERT INTO account (id, email, full_name, password_hash) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, account.Id, account.Email, account.FullName, account.PasswordHash)
	if err != nil {
		err := fmt.Errorf("could not insert account: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) GetAccountByEmail(ctx context.Context, email string) (Account, error) {
	query := `SELECT id, email, full_name, password_hash FROM account WHERE email = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *RepositoryImpl) GetAccount(ctx context.Context, accountId string) (Account, error) {
	query := `SELECT id, email, full_name, password_hash FROM account WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, accountId))
}

func (r *RepositoryImpl) scanOne(row *sql.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.Id, &a.Email, &a.FullName, &a.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not scan account row: %w", err)
		log.Error(err)
		return Account{}, err
	}
	return a, nil
}
