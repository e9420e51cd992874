package reports

import (
	"context"
	"database/sql"
	"time"

	platformdb "LMS-backend/internal/platform/db"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// 発行履歴の素材。書名解決・全履歴・貸出中の3クエリ分
type IssuanceData struct {
	BookName string
	Past     []UserRef
	Holder   *UserRef
}

// GetIssuanceHistory: 同名書籍が複数あるときは book_id 最小の1冊に確定させる。
// 3クエリを読み取り専用Txでまとめてスナップショットを揃える。
func (s *Store) GetIssuanceHistory(ctx context.Context, bookName string) (*IssuanceData, error) {
	var data IssuanceData

	err := platformdb.ReadOnly(ctx, s.db, func(ctx context.Context, tx platformdb.DBTX) error {
		var bookID int64
		const bookQ = `SELECT book_id, name FROM books WHERE name = ? ORDER BY book_id ASC LIMIT 1`
		if err := tx.QueryRowContext(ctx, bookQ, bookName).Scan(&bookID, &data.BookName); err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound("book not found")
			}
			return err
		}

		// 貸出中のものも含めた全履歴が past_issuers
		const pastQ = `
		SELECT u.user_id, u.name
		FROM loans l
		JOIN users u ON u.user_id = l.user_id
		WHERE l.book_id = ?
		ORDER BY l.loan_id ASC`
		rows, err := tx.QueryContext(ctx, pastQ, bookID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var u UserRef
			if err := rows.Scan(&u.UserID, &u.Name); err != nil {
				return err
			}
			data.Past = append(data.Past, u)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		const holderQ = `
		SELECT u.user_id, u.name
		FROM loans l
		JOIN users u ON u.user_id = l.user_id
		WHERE l.book_id = ? AND l.status = 'Issued'
		ORDER BY l.loan_id ASC
		LIMIT 1`
		var h UserRef
		err = tx.QueryRowContext(ctx, holderQ, bookID).Scan(&h.UserID, &h.Name)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil // 誰も借りていない
			}
			return err
		}
		data.Holder = &h
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// SumTotalRentByName: 同名の全書籍の累計賃料の合計。0冊なら0
func (s *Store) SumTotalRentByName(ctx context.Context, bookName string) (float64, error) {
	const q = `SELECT COALESCE(SUM(total_rent), 0) FROM books WHERE name = ?`
	var sum float64
	if err := s.db.QueryRowContext(ctx, q, bookName).Scan(&sum); err != nil {
		return 0, err
	}
	return sum, nil
}

// GetBooksForUserName: 同名利用者すべての user_books を追記順のままフラットに返す
func (s *Store) GetBooksForUserName(ctx context.Context, userName string) ([]IssuedBook, error) {
	var out []IssuedBook

	err := platformdb.ReadOnly(ctx, s.db, func(ctx context.Context, tx platformdb.DBTX) error {
		const usersQ = `SELECT user_id FROM users WHERE name = ? ORDER BY user_id ASC`
		rows, err := tx.QueryContext(ctx, usersQ, userName)
		if err != nil {
			return err
		}
		defer rows.Close()

		var userIDs []int64
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return err
			}
			userIDs = append(userIDs, id)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		if len(userIDs) == 0 {
			return ErrNotFound("user not found")
		}

		const booksQ = `
		SELECT b.book_id, b.book_ulid, b.name, b.category, b.rent_per_day, b.return_count, b.total_rent
		FROM user_books ub
		JOIN books b ON b.book_id = ub.book_id
		WHERE ub.user_id = ?
		ORDER BY ub.user_book_id ASC`
		for _, uid := range userIDs {
			brows, err := tx.QueryContext(ctx, booksQ, uid)
			if err != nil {
				return err
			}
			for brows.Next() {
				var b IssuedBook
				if err := brows.Scan(&b.BookID, &b.BookULID, &b.Name, &b.Category, &b.RentPerDay, &b.ReturnCount, &b.TotalRent); err != nil {
					brows.Close()
					return err
				}
				out = append(out, b)
			}
			if err := brows.Err(); err != nil {
				brows.Close()
				return err
			}
			brows.Close()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type rangeLoanRow struct {
	BookName   string
	Category   string
	RentPerDay float64
	UserID     int64
	UserName   string
	IssueDate  time.Time
}

// ListIssuedInRange: issue_date が [from, to] かつ貸出中のもの
func (s *Store) ListIssuedInRange(ctx context.Context, from, to time.Time) ([]rangeLoanRow, error) {
	const q = `
	SELECT b.name, b.category, b.rent_per_day, u.user_id, u.name, l.issue_date
	FROM loans l
	JOIN books b ON b.book_id = l.book_id
	JOIN users u ON u.user_id = l.user_id
	WHERE l.issue_date >= ? AND l.issue_date <= ? AND l.status = 'Issued'
	ORDER BY l.issue_date ASC, l.loan_id ASC`

	rows, err := s.db.QueryContext(ctx, q, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []rangeLoanRow
	for rows.Next() {
		var r rangeLoanRow
		if err := rows.Scan(&r.BookName, &r.Category, &r.RentPerDay, &r.UserID, &r.UserName, &r.IssueDate); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
