package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, s *Store) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO stores (id, name, address, notes)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at`,
		s.ID, s.Name, s.Address, s.Notes).Scan(&s.CreatedAt)
}

func scanStore(scan func(...interface{}) error) (*Store, error) {
	s := &Store{}
	err := scan(&s.ID, &s.Name, &s.Address, &s.Notes, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Store, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT id,name,address,notes,created_at
		FROM stores WHERE id=$1`, uid)
	s, err := scanStore(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

func (r *postgresRepo) List(ctx context.Context) ([]*Store, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id,name,address,notes,created_at
		FROM stores
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stores []*Store
	for rows.Next() {
		s, err := scanStore(rows.Scan)
		if err != nil {
			return nil, err
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, s *Store) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE stores
		SET name=$1, address=$2, notes=$3
		WHERE id=$4`,
		s.Name, s.Address, s.Notes, s.ID)
	return err
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM stores WHERE id=$1`, uid)
	return err
}
