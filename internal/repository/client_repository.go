package repository

import (
	"context"
	"database/sql"

	"github.com/spaps/rental-backend/internal/apperr"
	"github.com/spaps/rental-backend/internal/model"
)

// ClientRepo owns the client profile table.
type ClientRepo struct{ DB *sql.DB }

func NewClientRepo(db *sql.DB) *ClientRepo { return &ClientRepo{DB: db} }

// Create inserts an empty client profile for a freshly registered user.
func (r *ClientRepo) Create(ctx context.Context, userID uint64) (model.Client, error) {
	res, err := r.DB.ExecContext(ctx, "INSERT INTO client (user_id) VALUES (?)", userID)
	if err != nil {
		return model.Client{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Client{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a client profile by id.
func (r *ClientRepo) GetByID(ctx context.Context, id uint64) (model.Client, error) {
	return r.one(ctx, "WHERE id=?", id)
}

// GetByUserID fetches the profile belonging to a user.
func (r *ClientRepo) GetByUserID(ctx context.Context, userID uint64) (model.Client, error) {
	return r.one(ctx, "WHERE user_id=?", userID)
}

// Update overwrites the mutable profile fields.
func (r *ClientRepo) Update(ctx context.Context, c model.Client) error {
	var birth any
	if c.BirthDate != nil {
		birth = *c.BirthDate
	}
	var gender any
	if c.Gender != "" {
		gender = string(c.Gender)
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE client SET birth_date=?, gender=? WHERE id=?",
		birth, gender, c.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFound("client was not found")
	}
	return nil
}

// SetAvatar links an uploaded public file as the client's avatar.
func (r *ClientRepo) SetAvatar(ctx context.Context, clientID, fileID uint64) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE client SET avatar_id=? WHERE id=?", fileID, clientID)
	return err
}

// List pages through client profiles ordered by id.
func (r *ClientRepo) List(ctx context.Context, page, limit int) ([]model.Client, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM client").Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,user_id,birth_date,gender,avatar_id,created_at,updated_at FROM client ORDER BY id LIMIT ? OFFSET ?",
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var clients []model.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		clients = append(clients, c)
	}
	return clients, total, rows.Err()
}

func (r *ClientRepo) one(ctx context.Context, where string, arg any) (model.Client, error) {
	c, err := scanClient(r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,birth_date,gender,avatar_id,created_at,updated_at FROM client "+where+" LIMIT 1", arg))
	if err == sql.ErrNoRows {
		return model.Client{}, apperr.NotFound("client was not found")
	}
	return c, err
}

func scanClient(row rowScanner) (model.Client, error) {
	var c model.Client
	var birth sql.NullTime
	var gender sql.NullString
	var avatar sql.NullInt64
	err := row.Scan(&c.ID, &c.UserID, &birth, &gender, &avatar, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return model.Client{}, err
	}
	if birth.Valid {
		c.BirthDate = &birth.Time
	}
	c.Gender = model.Gender(gender.String)
	c.AvatarID = uint64(avatar.Int64)
	return c, nil
}
