package reports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ===== Error model =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code
	Message string
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		default:
			return 500
		}
	}
	return 500
}

type reportStore interface {
	GetIssuanceHistory(ctx context.Context, bookName string) (*IssuanceData, error)
	SumTotalRentByName(ctx context.Context, bookName string) (float64, error)
	GetBooksForUserName(ctx context.Context, userName string) ([]IssuedBook, error)
	ListIssuedInRange(ctx context.Context, from, to time.Time) ([]rangeLoanRow, error)
}

type Service struct {
	db    *sql.DB
	store reportStore
}

func NewService(db *sql.DB) *Service { return &Service{db: db, store: NewStore(db)} }

func (s *Service) IssuanceHistory(ctx context.Context, bookName string) (*IssuanceHistoryResponse, error) {
	if strings.TrimSpace(bookName) == "" {
		return nil, ErrInvalid("book name is required")
	}

	data, err := s.store.GetIssuanceHistory(ctx, bookName)
	if err != nil {
		return nil, err
	}

	resp := &IssuanceHistoryResponse{
		BookName: data.BookName,
		PastIssuers: PastIssuers{
			TotalCount: len(data.Past),
			Users:      data.Past,
		},
	}
	if resp.PastIssuers.Users == nil {
		resp.PastIssuers.Users = []UserRef{}
	}
	if data.Holder != nil {
		resp.CurrentlyIssued = true
		resp.CurrentHolder = data.Holder
	}
	return resp, nil
}

func (s *Service) TotalRentByName(ctx context.Context, bookName string) (*TotalRentResponse, error) {
	if strings.TrimSpace(bookName) == "" {
		return nil, ErrInvalid("book name is required")
	}
	sum, err := s.store.SumTotalRentByName(ctx, bookName)
	if err != nil {
		return nil, err
	}
	return &TotalRentResponse{BookName: bookName, TotalRent: sum}, nil
}

func (s *Service) BooksIssuedToUser(ctx context.Context, userName string) (*UserBooksResponse, error) {
	if strings.TrimSpace(userName) == "" {
		return nil, ErrInvalid("user name is required")
	}
	books, err := s.store.GetBooksForUserName(ctx, userName)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []IssuedBook{}
	}
	return &UserBooksResponse{UserName: userName, Books: books}, nil
}

func (s *Service) IssuedInDateRange(ctx context.Context, fromStr, toStr string) (*DateRangeResponse, error) {
	if fromStr == "" || toStr == "" {
		return nil, ErrInvalid("both from and to are required")
	}
	from, err1 := time.Parse(dateLayout, fromStr)
	to, err2 := time.Parse(dateLayout, toStr)
	if err1 != nil || err2 != nil || from.After(to) {
		return nil, ErrInvalid("invalid date range")
	}

	rows, err := s.store.ListIssuedInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound("no books issued in the specified date range")
	}

	resp := &DateRangeResponse{IssuedBooks: make([]DateRangeLoan, 0, len(rows))}
	for _, r := range rows {
		resp.IssuedBooks = append(resp.IssuedBooks, DateRangeLoan{
			Book: LoanBookSummary{
				Name:       r.BookName,
				Category:   r.Category,
				RentPerDay: r.RentPerDay,
			},
			IssuedTo:  UserRef{UserID: r.UserID, Name: r.UserName},
			IssueDate: r.IssueDate.Format(dateLayout),
		})
	}
	return resp, nil
}
