package bookshelf

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// Books is the catalog store the handlers and the query engine read from
type Books interface {
	FindByID(ctx context.Context, id int64) (*Book, error)
	FindAll(ctx context.Context) ([]Book, error)
	Insert(ctx context.Context, book *Book) (*Book, error)
	Update(ctx context.Context, book *Book) (*Book, error)
	Delete(ctx context.Context, id int64) error
}

// BooksRepository implements Books using Bun.
type BooksRepository struct {
	db *bun.DB
}

// NewBooksRepository creates a new repository.
func NewBooksRepository(db *bun.DB) *BooksRepository {
	return &BooksRepository{db: db}
}

// FindByID implements Books.
func (r *BooksRepository) FindByID(ctx context.Context, id int64) (*Book, error) {
	book := &Book{}
	err := r.db.NewSelect().
		Model(book).
		Where("?TableAlias.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}

// FindAll implements Books. Records come back ordered by id ascending, the
// ordering key the query engine's pagination depends on.
func (r *BooksRepository) FindAll(ctx context.Context) ([]Book, error) {
	var books []Book
	err := r.db.NewSelect().
		Model(&books).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []Book{}, nil
		}
		return nil, err
	}
	return books, nil
}

// Insert implements Books.
func (r *BooksRepository) Insert(ctx context.Context, book *Book) (*Book, error) {
	_, err := r.db.NewInsert().
		Model(book).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return book, nil
}

// Update implements Books. Only the mutable columns are written so a
// payload without timestamps cannot null out created_at.
func (r *BooksRepository) Update(ctx context.Context, book *Book) (*Book, error) {
	now := time.Now()
	book.UpdatedAt = &now

	res, err := r.db.NewUpdate().
		Model(book).
		Column("title", "author", "isbn", "published_date", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrBookNotFound
	}

	return book, nil
}

// Delete implements Books.
func (r *BooksRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().
		Model((*Book)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrBookNotFound
	}

	return nil
}

var _ Books = (*BooksRepository)(nil)
