package photo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, p *Photo) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO photos (id, store_id, url, storage_path)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at`,
		p.ID, p.StoreID, p.URL, p.StoragePath).Scan(&p.CreatedAt)
}

func scanPhoto(scan func(...interface{}) error) (*Photo, error) {
	p := &Photo{}
	err := scan(&p.ID, &p.StoreID, &p.URL, &p.StoragePath, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Photo, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT id,store_id,url,storage_path,created_at
		FROM photos WHERE id=$1`, uid)
	p, err := scanPhoto(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *postgresRepo) ListByStore(ctx context.Context, storeID string) ([]*Photo, error) {
	uid, err := uuid.Parse(storeID)
	if err != nil {
		return nil, ErrNotFound
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id,store_id,url,storage_path,created_at
		FROM photos WHERE store_id=$1
		ORDER BY created_at DESC`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []*Photo
	for rows.Next() {
		p, err := scanPhoto(rows.Scan)
		if err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM photos WHERE id=$1`, uid)
	return err
}

func (r *postgresRepo) StoreExists(ctx context.Context, storeID string) (bool, error) {
	uid, err := uuid.Parse(storeID)
	if err != nil {
		return false, nil
	}
	var exists bool
	err = r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM stores WHERE id=$1)`, uid).Scan(&exists)
	return exists, err
}

func (r *postgresRepo) DeleteByStore(ctx context.Context, storeID string) error {
	uid, err := uuid.Parse(storeID)
	if err != nil {
		return ErrNotFound
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM photos WHERE store_id=$1`, uid)
	return err
}
