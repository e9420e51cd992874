package members

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
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

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return false
}

type userStore interface {
	CreateUser(ctx context.Context, u *User, bookIDs []int64) error
	ListUsers(ctx context.Context) ([]User, error)
	GetUserBookIDs(ctx context.Context, userID int64) ([]int64, error)
}

type Service struct {
	db    *sql.DB
	store userStore
}

func NewService(db *sql.DB) *Service { return &Service{db: db, store: NewStore(db)} }

func (s *Service) CreateUser(ctx context.Context, in CreateUserRequest) (UserResponse, error) {
	// 旧実装は email だけでも通していたが、スキーマ上 name は必須なので両方要求する
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" {
		return UserResponse{}, ErrInvalid("name and email are required")
	}

	u := &User{
		UserULID: ulid.Make().String(),
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.TrimSpace(in.Email),
	}
	if err := s.store.CreateUser(ctx, u, in.Books); err != nil {
		if isDuplicateKey(err) {
			return UserResponse{}, ErrConflict("email already exists")
		}
		return UserResponse{}, err
	}

	books := in.Books
	if books == nil {
		books = []int64{}
	}
	return UserResponse{
		UserID:    u.UserID,
		UserULID:  u.UserULID,
		Name:      u.Name,
		Email:     u.Email,
		Books:     books,
		CreatedAt: u.CreatedAt,
	}, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]UserResponse, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		books, err := s.store.GetUserBookIDs(ctx, u.UserID)
		if err != nil {
			return nil, err
		}
		if books == nil {
			books = []int64{}
		}
		out = append(out, UserResponse{
			UserID:    u.UserID,
			UserULID:  u.UserULID,
			Name:      u.Name,
			Email:     u.Email,
			Books:     books,
			CreatedAt: u.CreatedAt,
		})
	}
	return out, nil
}
