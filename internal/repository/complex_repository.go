package repository

import (
	"context"
	"database/sql"

	"github.com/spaps/rental-backend/internal/apperr"
	"github.com/spaps/rental-backend/internal/model"
)

// ComplexRepo owns the complex table and its photo relation.
type ComplexRepo struct{ DB *sql.DB }

func NewComplexRepo(db *sql.DB) *ComplexRepo { return &ComplexRepo{DB: db} }

const complexColumns = "id,rentor_id,name,region,location,address,description,main_photo_id,created_at,updated_at"

// Create inserts a complex owned by a rentor.
func (r *ComplexRepo) Create(ctx context.Context, c model.Complex) (model.Complex, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO complex (rentor_id, name, region, location, address, description) VALUES (?,?,?,?,?,?)",
		c.RentorID, c.Name, c.Region, nullable(c.Location), c.Address, nullable(c.Description))
	if err != nil {
		return model.Complex{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Complex{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a complex without its photos.
func (r *ComplexRepo) GetByID(ctx context.Context, id uint64) (model.Complex, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+complexColumns+" FROM complex WHERE id=? LIMIT 1", id)
	c, err := scanComplex(row)
	if err == sql.ErrNoRows {
		return model.Complex{}, apperr.NotFound("complex was not found")
	}
	return c, err
}

func scanComplex(row rowScanner) (model.Complex, error) {
	var c model.Complex
	var location, description sql.NullString
	var mainPhoto sql.NullInt64
	err := row.Scan(&c.ID, &c.RentorID, &c.Name, &c.Region, &location, &c.Address,
		&description, &mainPhoto, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return model.Complex{}, err
	}
	c.Location = location.String
	c.Description = description.String
	c.MainPhotoID = uint64(mainPhoto.Int64)
	return c, nil
}

// GetByIDWithPhotos fetches a complex and its photo gallery.
func (r *ComplexRepo) GetByIDWithPhotos(ctx context.Context, id uint64) (model.Complex, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return model.Complex{}, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,file_key,url,type,name,created_at,updated_at FROM public_file WHERE complex_id=? ORDER BY id", id)
	if err != nil {
		return model.Complex{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var f model.PublicFile
		if err := rows.Scan(&f.ID, &f.Key, &f.URL, &f.Type, &f.Name, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return model.Complex{}, err
		}
		f.ComplexID = id
		c.Photos = append(c.Photos, f)
	}
	return c, rows.Err()
}

// Update overwrites the mutable fields of a complex.
func (r *ComplexRepo) Update(ctx context.Context, c model.Complex) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE complex SET name=?, region=?, location=?, address=?, description=?, main_photo_id=? WHERE id=?",
		c.Name, c.Region, nullable(c.Location), c.Address, nullable(c.Description), nullableID(c.MainPhotoID), c.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFound("complex was not found")
	}
	return nil
}

// Delete removes a complex.
func (r *ComplexRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM complex WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFound("complex was not found")
	}
	return nil
}

// List pages through complexes, optionally filtered by owning rentor
// (rentorID 0 means all).
func (r *ComplexRepo) List(ctx context.Context, rentorID uint64, page, limit int) ([]model.Complex, int, error) {
	where := ""
	args := []any{}
	if rentorID != 0 {
		where = " WHERE rentor_id=?"
		args = append(args, rentorID)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM complex"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, (page-1)*limit)
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+complexColumns+" FROM complex"+where+" ORDER BY id LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var complexes []model.Complex
	for rows.Next() {
		c, err := scanComplex(rows)
		if err != nil {
			return nil, 0, err
		}
		complexes = append(complexes, c)
	}
	return complexes, total, rows.Err()
}
