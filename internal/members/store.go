package members

import (
	"context"
	"database/sql"

	platformdb "LMS-backend/internal/platform/db"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// CreateUser: 利用者本体と初期 user_books をひとつのTxで登録する
func (s *Store) CreateUser(ctx context.Context, u *User, bookIDs []int64) error {
	return platformdb.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx platformdb.DBTX) error {
		const q = `
		INSERT INTO users (user_ulid, name, email, created_at)
		VALUES (?, ?, ?, UTC_TIMESTAMP())`
		res, err := tx.ExecContext(ctx, q, u.UserULID, u.Name, u.Email)
		if err != nil {
			return err
		}
		id, _ := res.LastInsertId()
		u.UserID = id

		if err := tx.QueryRowContext(ctx, `SELECT created_at FROM users WHERE user_id = ?`, u.UserID).Scan(&u.CreatedAt); err != nil {
			return err
		}

		const linkQ = `INSERT INTO user_books (user_id, book_id) VALUES (?, ?)`
		for _, bid := range bookIDs {
			if _, err := tx.ExecContext(ctx, linkQ, u.UserID, bid); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	const q = `SELECT user_id, user_ulid, name, email, created_at FROM users ORDER BY user_id ASC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.UserID, &u.UserULID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUserBookIDs: user_books の追記順のまま返す（重複もそのまま）
func (s *Store) GetUserBookIDs(ctx context.Context, userID int64) ([]int64, error) {
	const q = `SELECT book_id FROM user_books WHERE user_id = ? ORDER BY user_book_id ASC`
	rows, err := s.db.QueryContext(ctx, q, userID)
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
