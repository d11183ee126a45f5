package repository

import (
	"context"
	"database/sql"

	"github.com/spaps/rental-backend/internal/apperr"
	"github.com/spaps/rental-backend/internal/model"
)

// FileRepo owns the public_file table. The object bytes live in object
// storage; rows here only carry the key, public URL and owner link.
type FileRepo struct{ DB *sql.DB }

func NewFileRepo(db *sql.DB) *FileRepo { return &FileRepo{DB: db} }

// Create inserts a file row. Owner links are optional; zero means unset.
func (r *FileRepo) Create(ctx context.Context, f model.PublicFile) (model.PublicFile, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO public_file (file_key, url, type, name, client_id, complex_id) VALUES (?,?,?,?,?,?)",
		f.Key, f.URL, f.Type, f.Name, nullableID(f.ClientID), nullableID(f.ComplexID))
	if err != nil {
		return model.PublicFile{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.PublicFile{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a file row.
func (r *FileRepo) GetByID(ctx context.Context, id uint64) (model.PublicFile, error) {
	var f model.PublicFile
	var clientID, complexID sql.NullInt64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,file_key,url,type,name,client_id,complex_id,created_at,updated_at FROM public_file WHERE id=? LIMIT 1",
		id).Scan(&f.ID, &f.Key, &f.URL, &f.Type, &f.Name, &clientID, &complexID, &f.CreatedAt, &f.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.PublicFile{}, apperr.NotFound("file was not found")
	}
	if err != nil {
		return model.PublicFile{}, err
	}
	f.ClientID = uint64(clientID.Int64)
	f.ComplexID = uint64(complexID.Int64)
	return f, nil
}

// Delete removes a file row. Deleting an already-absent row is not an
// error; the object-storage cleanup is idempotent too.
func (r *FileRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM public_file WHERE id=?", id)
	return err
}

func nullableID(id uint64) any {
	if id == 0 {
		return nil
	}
	return id
}
