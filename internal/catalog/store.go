package catalog

import (
	"context"
	"database/sql"
	"strings"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

const bookCols = `book_id, book_ulid, name, category, rent_per_day, return_count, total_rent, created_at`

func scanBook(row interface{ Scan(dest ...any) error }) (*Book, error) {
	var b Book
	err := row.Scan(&b.BookID, &b.BookULID, &b.Name, &b.Category, &b.RentPerDay, &b.ReturnCount, &b.TotalRent, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) InsertBook(ctx context.Context, b *Book) error {
	const q = `
	INSERT INTO books (book_ulid, name, category, rent_per_day, return_count, total_rent, created_at)
	VALUES (?, ?, ?, ?, 0, 0, UTC_TIMESTAMP())`
	res, err := s.db.ExecContext(ctx, q, b.BookULID, b.Name, b.Category, b.RentPerDay)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	b.BookID = id
	return nil
}

func (s *Store) GetBookByID(ctx context.Context, id int64) (*Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books WHERE book_id = ?`
	b, err := scanBook(s.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound("book not found")
		}
		return nil, err
	}
	return b, nil
}

func (s *Store) ListBooks(ctx context.Context) ([]Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books ORDER BY book_id ASC`
	return s.queryBooks(ctx, q)
}

func (s *Store) FindBooksByName(ctx context.Context, name string) ([]Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books WHERE name = ? ORDER BY book_id ASC`
	return s.queryBooks(ctx, q, name)
}

func (s *Store) FindBooksByRentRange(ctx context.Context, min, max float64) ([]Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books WHERE rent_per_day >= ? AND rent_per_day <= ? ORDER BY book_id ASC`
	return s.queryBooks(ctx, q, min, max)
}

func (s *Store) queryBooks(ctx context.Context, q string, args ...any) ([]Book, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// FindBooksByFilter: 動的WHERE。射影は users / return_count / total_rent 抜き
func (s *Store) FindBooksByFilter(ctx context.Context, f BookFilter) ([]BookSummary, error) {
	sb := strings.Builder{}
	sb.WriteString(`
	SELECT book_id, book_ulid, name, category, rent_per_day, created_at
	FROM books
	WHERE 1=1`)

	args := []any{}
	if f.Category != nil {
		sb.WriteString(` AND category = ?`)
		args = append(args, *f.Category)
	}
	if f.RentFrom != nil && f.RentTo != nil {
		sb.WriteString(` AND rent_per_day >= ? AND rent_per_day <= ?`)
		args = append(args, *f.RentFrom, *f.RentTo)
	}
	sb.WriteString(` ORDER BY book_id ASC`)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BookSummary
	for rows.Next() {
		var b BookSummary
		if err := rows.Scan(&b.BookID, &b.BookULID, &b.Name, &b.Category, &b.RentPerDay, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) UpdateBookFields(ctx context.Context, id int64, name, category string, rentPerDay float64) error {
	const q = `UPDATE books SET name = ?, category = ?, rent_per_day = ? WHERE book_id = ?`
	_, err := s.db.ExecContext(ctx, q, name, category, rentPerDay, id)
	return err
}

// DeleteBook: 貸出履歴・user_books へはカスケードしない（履歴は残す）
func (s *Store) DeleteBook(ctx context.Context, id int64) error {
	const q = `DELETE FROM books WHERE book_id = ?`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return ErrNotFound("book not found")
	}
	return nil
}

// GetBookUserIDs: 貸出履歴からこの本を借りたことのある利用者IDを導出する
func (s *Store) GetBookUserIDs(ctx context.Context, bookID int64) ([]int64, error) {
	const q = `SELECT DISTINCT user_id FROM loans WHERE book_id = ? ORDER BY user_id ASC`
	rows, err := s.db.QueryContext(ctx, q, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
