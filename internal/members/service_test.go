package members

import (
	"context"
	"testing"

	mysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserStore struct {
	users    []User
	books    map[int64][]int64
	nextID   int64
	emailSet map[string]bool
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{books: map[int64][]int64{}, emailSet: map[string]bool{}}
}

func (f *fakeUserStore) CreateUser(_ context.Context, u *User, bookIDs []int64) error {
	if f.emailSet[u.Email] {
		return &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	}
	f.nextID++
	u.UserID = f.nextID
	f.users = append(f.users, *u)
	f.books[u.UserID] = append([]int64{}, bookIDs...)
	f.emailSet[u.Email] = true
	return nil
}

func (f *fakeUserStore) ListUsers(_ context.Context) ([]User, error) {
	return append([]User{}, f.users...), nil
}

func (f *fakeUserStore) GetUserBookIDs(_ context.Context, userID int64) ([]int64, error) {
	return f.books[userID], nil
}

func TestCreateUser(t *testing.T) {
	svc := &Service{store: newFakeUserStore()}

	res, err := svc.CreateUser(context.Background(), CreateUserRequest{Name: "Alice", Email: "a@x.com"})
	require.NoError(t, err)

	assert.Equal(t, "Alice", res.Name)
	assert.Equal(t, "a@x.com", res.Email)
	assert.Equal(t, []int64{}, res.Books)
	assert.NotEmpty(t, res.UserULID)
}

func TestCreateUserRequiresNameAndEmail(t *testing.T) {
	svc := &Service{store: newFakeUserStore()}

	// 旧実装はemailだけで通ったが、両方必須に揃えている
	for _, in := range []CreateUserRequest{
		{Name: "", Email: "a@x.com"},
		{Name: "Alice", Email: ""},
		{Name: "", Email: ""},
	} {
		_, err := svc.CreateUser(context.Background(), in)
		require.Error(t, err)
		assert.Equal(t, 400, toHTTPStatus(err))
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc := &Service{store: newFakeUserStore()}

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{Name: "Alice", Email: "a@x.com"})
	require.NoError(t, err)

	_, err = svc.CreateUser(context.Background(), CreateUserRequest{Name: "Bob", Email: "a@x.com"})
	require.Error(t, err)
	api, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, CodeConflict, api.Code)
	assert.Equal(t, 409, toHTTPStatus(err))
}

func TestCreateUserWithInitialBooks(t *testing.T) {
	st := newFakeUserStore()
	svc := &Service{store: st}

	// 実在チェックはしない（貸出フローと非対称のまま）
	res, err := svc.CreateUser(context.Background(), CreateUserRequest{Name: "Alice", Email: "a@x.com", Books: []int64{1, 2, 99}})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 99}, res.Books)
}

func TestListUsers(t *testing.T) {
	st := newFakeUserStore()
	svc := &Service{store: st}

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{Name: "Alice", Email: "a@x.com", Books: []int64{7}})
	require.NoError(t, err)
	_, err = svc.CreateUser(context.Background(), CreateUserRequest{Name: "Bob", Email: "b@x.com"})
	require.NoError(t, err)

	res, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, []int64{7}, res[0].Books)
	assert.Equal(t, []int64{}, res[1].Books)
}
