package circulation

import (
	"context"
	"crypto/rand"
	"database/sql"
	"math"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// ===== インターフェース群 =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

type IDGen interface {
	New() (string, error)
}

type ulidGen struct{}

func (ulidGen) New() (string, error) {
	t := time.Now().UTC()
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

type circStore interface {
	ExecIssue(ctx context.Context, bookName, userName string, loan *Loan) error
	ExecReturn(ctx context.Context, bookName, userName string, returnDate time.Time) (*Loan, *BookState, error)
}

// ===== Service本体 =====

type Service struct {
	db    *sql.DB
	store circStore
	clock Clock
	id    IDGen
}

func NewService(db *sql.DB) *Service {
	return &Service{
		db:    db,
		store: NewStore(db),
		clock: realClock{},
		id:    ulidGen{},
	}
}

// 貸出登録
func (s *Service) Issue(ctx context.Context, req IssueRequest) (*LoanResponse, error) {
	if strings.TrimSpace(req.BookName) == "" || strings.TrimSpace(req.UserName) == "" {
		return nil, ErrInvalid("book_name and user_name are required")
	}
	issueDate, err := parseStrictDate(req.IssueDate)
	if err != nil {
		return nil, ErrInvalid("invalid issue_date format, expected YYYY-MM-DD")
	}

	idStr, err := s.id.New()
	if err != nil {
		return nil, err
	}

	loan := &Loan{
		LoanULID:  idStr,
		IssueDate: issueDate,
	}
	if err := s.store.ExecIssue(ctx, req.BookName, req.UserName, loan); err != nil {
		return nil, err
	}

	resp := buildLoanResponse(loan)
	return &resp, nil
}

// 返却登録
func (s *Service) Return(ctx context.Context, req ReturnRequest) (*ReturnResponse, error) {
	if strings.TrimSpace(req.BookName) == "" || strings.TrimSpace(req.UserName) == "" {
		return nil, ErrInvalid("book_name and user_name are required")
	}
	returnDate, err := parseStrictDate(req.ReturnDate)
	if err != nil {
		return nil, ErrInvalid("invalid return_date format, expected YYYY-MM-DD")
	}

	loan, book, err := s.store.ExecReturn(ctx, req.BookName, req.UserName, returnDate)
	if err != nil {
		return nil, err
	}

	return &ReturnResponse{
		Loan: buildLoanResponse(loan),
		Book: BookStateResponse{
			BookID:     book.BookID,
			Name:       book.Name,
			RentPerDay: book.RentPerDay,
			TotalRent:  book.TotalRent,
		},
	}, nil
}

// ===== helpers =====

// parseStrictDate: ゼロ埋め込みの YYYY-MM-DD だけを受け付ける。
// time.Parse は "2024-1-2" のような揺れを許すので往復で弾く。
func parseStrictDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	if t.Format(DateLayout) != s {
		return time.Time{}, &time.ParseError{Layout: DateLayout, Value: s}
	}
	return t, nil
}

// rentedDays: 経過日数の切り上げ。同日返却は0日（賃料ゼロ）。
func rentedDays(issue, ret time.Time) int {
	return int(math.Ceil(ret.Sub(issue).Hours() / 24))
}

func buildLoanResponse(l *Loan) LoanResponse {
	resp := LoanResponse{
		LoanID:     l.LoanID,
		LoanULID:   l.LoanULID,
		BookID:     l.BookID,
		UserID:     l.UserID,
		IssueDate:  l.IssueDate.Format(DateLayout),
		RentPerDay: l.RentPerDay,
		TotalRent:  l.TotalRent,
		Status:     l.Status,
	}
	if l.ReturnDate.Valid {
		v := l.ReturnDate.Time.Format(DateLayout)
		resp.ReturnDate = &v
	}
	return resp
}
