package circulation

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

type bookRef struct {
	BookID     int64
	Name       string
	RentPerDay float64
	TotalRent  float64
}

type userRef struct {
	UserID int64
	Name   string
}

// findUserByNameTx: 名前完全一致で利用者を解決する。
// 0件は参照エラー、2件以上は曖昧なので黙って先頭を選ばずエラーにする。
func findUserByNameTx(ctx context.Context, tx platformdb.DBTX, name string) (*userRef, error) {
	const q = `SELECT user_id, name FROM users WHERE name = ? ORDER BY user_id ASC`
	rows, err := tx.QueryContext(ctx, q, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []userRef
	for rows.Next() {
		var u userRef
		if err := rows.Scan(&u.UserID, &u.Name); err != nil {
			return nil, err
		}
		refs = append(refs, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, ErrInvalidRef("invalid user")
	}
	if len(refs) > 1 {
		return nil, ErrConflict("user name is ambiguous")
	}
	return &refs[0], nil
}

// lockBookByNameTx: 名前完全一致で蔵書を解決し、行ロックを取る。
// 同名書籍ごとの貸出・返却をこのロックで直列化する。
func lockBookByNameTx(ctx context.Context, tx platformdb.DBTX, name string) (*bookRef, error) {
	const q = `SELECT book_id, name, rent_per_day, total_rent FROM books WHERE name = ? ORDER BY book_id ASC FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []bookRef
	for rows.Next() {
		var b bookRef
		if err := rows.Scan(&b.BookID, &b.Name, &b.RentPerDay, &b.TotalRent); err != nil {
			return nil, err
		}
		refs = append(refs, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, ErrInvalidRef("invalid book")
	}
	if len(refs) > 1 {
		return nil, ErrConflict("book name is ambiguous")
	}
	return &refs[0], nil
}

// ExecIssue: 貸出1件をひとつのTxで登録する。
// 1. 利用者・蔵書を名前解決（蔵書は FOR UPDATE）
// 2. 貸出中チェック（1冊は同時に1人まで）
// 3. loans へINSERT（料率スナップショット付き）
// 4. user_books へ追記
func (s *Store) ExecIssue(ctx context.Context, bookName, userName string, loan *Loan) error {
	return platformdb.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx platformdb.DBTX) error {
		user, err := findUserByNameTx(ctx, tx, userName)
		if err != nil {
			return err
		}
		book, err := lockBookByNameTx(ctx, tx, bookName)
		if err != nil {
			return err
		}

		var active int
		const activeQ = `SELECT COUNT(*) FROM loans WHERE book_id = ? AND status = ?`
		if err := tx.QueryRowContext(ctx, activeQ, book.BookID, StatusIssued).Scan(&active); err != nil {
			return err
		}
		if active > 0 {
			return ErrConflict("book is already issued")
		}

		loan.BookID = book.BookID
		loan.UserID = user.UserID
		loan.RentPerDay = book.RentPerDay
		loan.Status = StatusIssued

		const q = `
		INSERT INTO loans (loan_ulid, book_id, user_id, issue_date, rent_per_day, total_rent, status)
		VALUES (?, ?, ?, ?, ?, 0, ?)`
		res, err := tx.ExecContext(ctx, q,
			loan.LoanULID, loan.BookID, loan.UserID, loan.IssueDate.Format(DateLayout), loan.RentPerDay, loan.Status,
		)
		if err != nil {
			return err
		}
		id, _ := res.LastInsertId()
		loan.LoanID = id

		const linkQ = `INSERT INTO user_books (user_id, book_id) VALUES (?, ?)`
		if _, err := tx.ExecContext(ctx, linkQ, user.UserID, book.BookID); err != nil {
			return err
		}
		return nil
	})
}

// ExecReturn: 返却1件をひとつのTxで処理する。
// 賃料は貸出時のスナップショット料率で計算し、loans の更新と
// books.total_rent の加算を同じTxに入れて集計がずれないようにする。
func (s *Store) ExecReturn(ctx context.Context, bookName, userName string, returnDate time.Time) (*Loan, *BookState, error) {
	var (
		loan  Loan
		state BookState
	)

	err := platformdb.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx platformdb.DBTX) error {
		user, err := findUserByNameTx(ctx, tx, userName)
		if err != nil {
			return err
		}
		book, err := lockBookByNameTx(ctx, tx, bookName)
		if err != nil {
			return err
		}

		// 万一貸出中が複数あっても選択が揺れないよう issue_date, loan_id で固定
		const q = `
		SELECT loan_id, loan_ulid, book_id, user_id, issue_date, return_date, rent_per_day, total_rent, status
		FROM loans
		WHERE book_id = ? AND user_id = ? AND status = ?
		ORDER BY issue_date ASC, loan_id ASC
		LIMIT 1`
		err = tx.QueryRowContext(ctx, q, book.BookID, user.UserID, StatusIssued).Scan(
			&loan.LoanID, &loan.LoanULID, &loan.BookID, &loan.UserID,
			&loan.IssueDate, &loan.ReturnDate, &loan.RentPerDay, &loan.TotalRent, &loan.Status,
		)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound("no active loan for this book and user")
			}
			return err
		}

		if returnDate.Before(loan.IssueDate) {
			return ErrInvalid("return_date must not precede issue_date")
		}

		days := rentedDays(loan.IssueDate, returnDate)
		rent := float64(days) * loan.RentPerDay

		const updLoanQ = `UPDATE loans SET return_date = ?, total_rent = ?, status = ? WHERE loan_id = ?`
		if _, err := tx.ExecContext(ctx, updLoanQ, returnDate.Format(DateLayout), rent, StatusReturned, loan.LoanID); err != nil {
			return err
		}

		const updBookQ = `UPDATE books SET total_rent = total_rent + ? WHERE book_id = ?`
		if _, err := tx.ExecContext(ctx, updBookQ, rent, book.BookID); err != nil {
			return err
		}

		loan.ReturnDate = sql.NullTime{Time: returnDate, Valid: true}
		loan.TotalRent = rent
		loan.Status = StatusReturned

		state = BookState{
			BookID:     book.BookID,
			Name:       book.Name,
			RentPerDay: book.RentPerDay,
			TotalRent:  book.TotalRent + rent,
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &loan, &state, nil
}
