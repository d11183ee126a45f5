package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/spaps/rental-backend/internal/apperr"
	"github.com/spaps/rental-backend/internal/model"
)

// UserRepo owns the users table. Absent rows come back as
// apperr.NotFound; unique-key collisions as apperr.Conflict.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,first_name,last_name,email,phone,password_hash,role,created_at,updated_at"

// Create inserts a user and returns the stored row.
func (r *UserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (first_name, last_name, email, phone, password_hash, role) VALUES (?,?,?,?,?,?)",
		u.FirstName, u.LastName, u.Email, nullable(u.Phone), nullable(u.PasswordHash), string(u.Role))
	if err != nil {
		return model.User{}, dupKeyErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.one(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.one(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByPhone fetches a user by phone.
func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (model.User, error) {
	return r.one(ctx, "SELECT "+userColumns+" FROM users WHERE phone=? LIMIT 1", strings.TrimSpace(phone))
}

// GetByEmailWithRelations fetches a user and eagerly attaches the role
// profile (client or rentor row) when one exists.
func (r *UserRepo) GetByEmailWithRelations(ctx context.Context, email string) (model.User, error) {
	u, err := r.GetByEmail(ctx, email)
	if err != nil {
		return model.User{}, err
	}
	return r.attachRelations(ctx, u)
}

// GetByIDWithRelations is GetByID plus the role profile.
func (r *UserRepo) GetByIDWithRelations(ctx context.Context, id uint64) (model.User, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	return r.attachRelations(ctx, u)
}

// UpdatePassword overwrites the stored hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	return r.exec(ctx, "UPDATE users SET password_hash=? WHERE id=?", hash, id)
}

// UpdateEmail overwrites the email after a confirmed change.
func (r *UserRepo) UpdateEmail(ctx context.Context, id uint64, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.exec(ctx, "UPDATE users SET email=? WHERE id=?", email, id)
}

// UpdatePhone overwrites the phone after a confirmed change.
func (r *UserRepo) UpdatePhone(ctx context.Context, id uint64, phone string) error {
	return r.exec(ctx, "UPDATE users SET phone=? WHERE id=?", nullable(strings.TrimSpace(phone)), id)
}

// UpdateNames overwrites the profile name fields.
func (r *UserRepo) UpdateNames(ctx context.Context, id uint64, firstName, lastName string) error {
	return r.exec(ctx, "UPDATE users SET first_name=?, last_name=? WHERE id=?", firstName, lastName, id)
}

// Delete removes the user row.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	return r.exec(ctx, "DELETE FROM users WHERE id=?", id)
}

// List pages through users ordered by id.
func (r *UserRepo) List(ctx context.Context, page, limit int) ([]model.User, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id LIMIT ? OFFSET ?",
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (r *UserRepo) one(ctx context.Context, query string, args ...any) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return model.User{}, apperr.NotFound(apperr.MsgNoUser)
	}
	return u, err
}

func (r *UserRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return dupKeyErr(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFound(apperr.MsgNoUser)
	}
	return nil
}

func (r *UserRepo) attachRelations(ctx context.Context, u model.User) (model.User, error) {
	switch u.Role {
	case model.RoleClient:
		var c model.Client
		var birth sql.NullTime
		var avatar sql.NullInt64
		var gender sql.NullString
		err := r.DB.QueryRowContext(ctx,
			"SELECT id,user_id,birth_date,gender,avatar_id,created_at,updated_at FROM client WHERE user_id=? LIMIT 1",
			u.ID).Scan(&c.ID, &c.UserID, &birth, &gender, &avatar, &c.CreatedAt, &c.UpdatedAt)
		if err == sql.ErrNoRows {
			return u, nil
		}
		if err != nil {
			return model.User{}, err
		}
		if birth.Valid {
			c.BirthDate = &birth.Time
		}
		c.Gender = model.Gender(gender.String)
		c.AvatarID = uint64(avatar.Int64)
		u.Client = &c
	case model.RoleRentor:
		var rt model.Rentor
		err := r.DB.QueryRowContext(ctx,
			"SELECT id,user_id,created_at,updated_at FROM rentor WHERE user_id=? LIMIT 1",
			u.ID).Scan(&rt.ID, &rt.UserID, &rt.CreatedAt, &rt.UpdatedAt)
		if err == sql.ErrNoRows {
			return u, nil
		}
		if err != nil {
			return model.User{}, err
		}
		u.Rentor = &rt
	}
	return u, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanUser(row rowScanner) (model.User, error) {
	var u model.User
	var phone, hash sql.NullString
	var role string
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &phone, &hash, &role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.Phone = phone.String
	u.PasswordHash = hash.String
	u.Role = model.Role(role)
	return u, nil
}

// dupKeyErr translates MySQL duplicate-key errors (1062) into the conflict
// taxonomy, distinguishing the email and phone unique indexes by name.
func dupKeyErr(err error) error {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") {
		return err
	}
	if strings.Contains(msg, "phone") {
		return apperr.Conflict(apperr.MsgPhoneExists)
	}
	return apperr.Conflict(apperr.MsgEmailExists)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
