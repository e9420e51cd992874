package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	ulid "github.com/oklog/ulid/v2"
)

// ===== Error model =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code
	Message string
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		case CodeConflict:
			return 409
		default:
			return 500
		}
	}
	return 500
}

// storeはテストでフェイクに差し替えるため interface 経由で持つ
type bookStore interface {
	InsertBook(ctx context.Context, b *Book) error
	GetBookByID(ctx context.Context, id int64) (*Book, error)
	ListBooks(ctx context.Context) ([]Book, error)
	FindBooksByName(ctx context.Context, name string) ([]Book, error)
	FindBooksByRentRange(ctx context.Context, min, max float64) ([]Book, error)
	FindBooksByFilter(ctx context.Context, f BookFilter) ([]BookSummary, error)
	UpdateBookFields(ctx context.Context, id int64, name, category string, rentPerDay float64) error
	DeleteBook(ctx context.Context, id int64) error
	GetBookUserIDs(ctx context.Context, bookID int64) ([]int64, error)
}

type Service struct {
	db    *sql.DB
	store bookStore
}

func NewService(db *sql.DB) *Service { return &Service{db: db, store: NewStore(db)} }

// ===== Books =====

func (s *Service) CreateBook(ctx context.Context, in CreateBookRequest) (BookResponse, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Category) == "" {
		return BookResponse{}, ErrInvalid("name and category are required")
	}
	if in.RentPerDay <= 0 {
		return BookResponse{}, ErrInvalid("rent_per_day must be > 0")
	}

	b := &Book{
		BookULID:   ulid.Make().String(),
		Name:       strings.TrimSpace(in.Name),
		Category:   strings.TrimSpace(in.Category),
		RentPerDay: in.RentPerDay,
	}
	if err := s.store.InsertBook(ctx, b); err != nil {
		return BookResponse{}, err
	}
	// 新規作成直後は集計ゼロ・利用者リスト空で確定
	return buildBookResponse(b, []int64{}), nil
}

func (s *Service) ListBooks(ctx context.Context) ([]BookResponse, error) {
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	return s.withUsers(ctx, books)
}

func (s *Service) UpdateBook(ctx context.Context, id int64, in UpdateBookRequest) (BookResponse, error) {
	b, err := s.store.GetBookByID(ctx, id)
	if err != nil {
		return BookResponse{}, err
	}

	// 指定されたフィールドだけ上書きする
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		b.Name = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil && strings.TrimSpace(*in.Category) != "" {
		b.Category = strings.TrimSpace(*in.Category)
	}
	if in.RentPerDay != nil {
		if *in.RentPerDay <= 0 {
			return BookResponse{}, ErrInvalid("rent_per_day must be > 0")
		}
		b.RentPerDay = *in.RentPerDay
	}

	if err := s.store.UpdateBookFields(ctx, id, b.Name, b.Category, b.RentPerDay); err != nil {
		return BookResponse{}, err
	}

	users, err := s.store.GetBookUserIDs(ctx, b.BookID)
	if err != nil {
		return BookResponse{}, err
	}
	return buildBookResponse(b, users), nil
}

func (s *Service) DeleteBook(ctx context.Context, id int64) error {
	return s.store.DeleteBook(ctx, id)
}

// ===== Searches =====

func (s *Service) SearchByName(ctx context.Context, name string) ([]BookResponse, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalid("book name is required")
	}
	books, err := s.store.FindBooksByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, ErrNotFound("book not found")
	}
	return s.withUsers(ctx, books)
}

func (s *Service) SearchByPriceRange(ctx context.Context, minStr, maxStr string) ([]BookResponse, error) {
	if minStr == "" || maxStr == "" {
		return nil, ErrInvalid("both min and max are required")
	}
	min, err1 := strconv.ParseFloat(minStr, 64)
	max, err2 := strconv.ParseFloat(maxStr, 64)
	if err1 != nil || err2 != nil || min > max {
		return nil, ErrInvalid("invalid price range")
	}

	books, err := s.store.FindBooksByRentRange(ctx, min, max)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, ErrNotFound("no books found in the specified price range")
	}
	return s.withUsers(ctx, books)
}

// SearchByFilter: category / 賃料レンジのAND検索。
// レンジは両端そろって指定されたときだけ効く（片方だけは無視）。
func (s *Service) SearchByFilter(ctx context.Context, category, rentFromStr, rentToStr string) ([]BookSummary, error) {
	var f BookFilter

	if strings.TrimSpace(category) != "" {
		c := strings.TrimSpace(category)
		f.Category = &c
	}
	if rentFromStr != "" && rentToStr != "" {
		from, err1 := strconv.ParseFloat(rentFromStr, 64)
		to, err2 := strconv.ParseFloat(rentToStr, 64)
		if err1 != nil || err2 != nil {
			return nil, ErrInvalid("rent_from and rent_to must be numbers")
		}
		f.RentFrom = &from
		f.RentTo = &to
	}
	if f.Category == nil && f.RentFrom == nil {
		return nil, ErrInvalid("query parameters are required")
	}

	books, err := s.store.FindBooksByFilter(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, ErrNotFound("no books found")
	}
	return books, nil
}

// ===== helpers =====

func (s *Service) withUsers(ctx context.Context, books []Book) ([]BookResponse, error) {
	out := make([]BookResponse, 0, len(books))
	for i := range books {
		users, err := s.store.GetBookUserIDs(ctx, books[i].BookID)
		if err != nil {
			return nil, err
		}
		out = append(out, buildBookResponse(&books[i], users))
	}
	return out, nil
}

func buildBookResponse(b *Book, users []int64) BookResponse {
	if users == nil {
		users = []int64{}
	}
	return BookResponse{
		BookID:      b.BookID,
		BookULID:    b.BookULID,
		Name:        b.Name,
		Category:    b.Category,
		RentPerDay:  b.RentPerDay,
		ReturnCount: b.ReturnCount,
		TotalRent:   b.TotalRent,
		Users:       users,
		CreatedAt:   b.CreatedAt,
	}
}
