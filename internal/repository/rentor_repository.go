package repository

import (
	"context"
	"database/sql"

	"github.com/spaps/rental-backend/internal/apperr"
	"github.com/spaps/rental-backend/internal/model"
)

// RentorRepo owns the rentor profile table.
type RentorRepo struct{ DB *sql.DB }

func NewRentorRepo(db *sql.DB) *RentorRepo { return &RentorRepo{DB: db} }

// Create inserts a rentor profile for a freshly registered user.
func (r *RentorRepo) Create(ctx context.Context, userID uint64) (model.Rentor, error) {
	res, err := r.DB.ExecContext(ctx, "INSERT INTO rentor (user_id) VALUES (?)", userID)
	if err != nil {
		return model.Rentor{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Rentor{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a rentor profile by id.
func (r *RentorRepo) GetByID(ctx context.Context, id uint64) (model.Rentor, error) {
	return r.one(ctx, "WHERE id=?", id)
}

// GetByUserID fetches the profile belonging to a user.
func (r *RentorRepo) GetByUserID(ctx context.Context, userID uint64) (model.Rentor, error) {
	return r.one(ctx, "WHERE user_id=?", userID)
}

// List pages through rentor profiles ordered by id.
func (r *RentorRepo) List(ctx context.Context, page, limit int) ([]model.Rentor, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM rentor").Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,user_id,created_at,updated_at FROM rentor ORDER BY id LIMIT ? OFFSET ?",
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var rentors []model.Rentor
	for rows.Next() {
		var rt model.Rentor
		if err := rows.Scan(&rt.ID, &rt.UserID, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
			return nil, 0, err
		}
		rentors = append(rentors, rt)
	}
	return rentors, total, rows.Err()
}

func (r *RentorRepo) one(ctx context.Context, where string, arg any) (model.Rentor, error) {
	var rt model.Rentor
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,created_at,updated_at FROM rentor "+where+" LIMIT 1", arg).
		Scan(&rt.ID, &rt.UserID, &rt.CreatedAt, &rt.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Rentor{}, apperr.NotFound("rentor was not found")
	}
	return rt, err
}
