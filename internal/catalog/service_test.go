package catalog

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBookStore struct {
	books   map[int64]*Book
	nextID  int64
	userIDs map[int64][]int64
}

func newFakeBookStore() *fakeBookStore {
	return &fakeBookStore{books: map[int64]*Book{}, userIDs: map[int64][]int64{}}
}

func (f *fakeBookStore) InsertBook(_ context.Context, b *Book) error {
	f.nextID++
	b.BookID = f.nextID
	cp := *b
	f.books[b.BookID] = &cp
	return nil
}

func (f *fakeBookStore) GetBookByID(_ context.Context, id int64) (*Book, error) {
	b, ok := f.books[id]
	if !ok {
		return nil, ErrNotFound("book not found")
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookStore) sorted() []Book {
	ids := make([]int64, 0, len(f.books))
	for id := range f.books {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]Book, 0, len(ids))
	for _, id := range ids {
		out = append(out, *f.books[id])
	}
	return out
}

func (f *fakeBookStore) ListBooks(_ context.Context) ([]Book, error) {
	return f.sorted(), nil
}

func (f *fakeBookStore) FindBooksByName(_ context.Context, name string) ([]Book, error) {
	var out []Book
	for _, b := range f.sorted() {
		if b.Name == name {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookStore) FindBooksByRentRange(_ context.Context, min, max float64) ([]Book, error) {
	var out []Book
	for _, b := range f.sorted() {
		if b.RentPerDay >= min && b.RentPerDay <= max {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookStore) FindBooksByFilter(_ context.Context, flt BookFilter) ([]BookSummary, error) {
	var out []BookSummary
	for _, b := range f.sorted() {
		if flt.Category != nil && b.Category != *flt.Category {
			continue
		}
		if flt.RentFrom != nil && (b.RentPerDay < *flt.RentFrom || b.RentPerDay > *flt.RentTo) {
			continue
		}
		out = append(out, BookSummary{BookID: b.BookID, BookULID: b.BookULID, Name: b.Name, Category: b.Category, RentPerDay: b.RentPerDay, CreatedAt: b.CreatedAt})
	}
	return out, nil
}

func (f *fakeBookStore) UpdateBookFields(_ context.Context, id int64, name, category string, rentPerDay float64) error {
	b, ok := f.books[id]
	if !ok {
		return ErrNotFound("book not found")
	}
	b.Name, b.Category, b.RentPerDay = name, category, rentPerDay
	return nil
}

func (f *fakeBookStore) DeleteBook(_ context.Context, id int64) error {
	if _, ok := f.books[id]; !ok {
		return ErrNotFound("book not found")
	}
	delete(f.books, id)
	return nil
}

func (f *fakeBookStore) GetBookUserIDs(_ context.Context, bookID int64) ([]int64, error) {
	return f.userIDs[bookID], nil
}

func newTestService(store bookStore) *Service {
	return &Service{store: store}
}

func TestCreateBook(t *testing.T) {
	st := newFakeBookStore()
	svc := newTestService(st)

	res, err := svc.CreateBook(context.Background(), CreateBookRequest{Name: "Dune", Category: "Fiction", RentPerDay: 10})
	require.NoError(t, err)

	assert.Equal(t, "Dune", res.Name)
	assert.Equal(t, "Fiction", res.Category)
	assert.Equal(t, 10.0, res.RentPerDay)
	// 新規作成直後は集計ゼロ・利用者リスト空
	assert.Equal(t, 0.0, res.TotalRent)
	assert.Equal(t, 0, res.ReturnCount)
	assert.Equal(t, []int64{}, res.Users)
	assert.NotEmpty(t, res.BookULID)
}

func TestCreateBookValidation(t *testing.T) {
	svc := newTestService(newFakeBookStore())

	cases := []CreateBookRequest{
		{Name: "", Category: "Fiction", RentPerDay: 10},
		{Name: "Dune", Category: "", RentPerDay: 10},
		{Name: "Dune", Category: "Fiction", RentPerDay: 0},
		{Name: "Dune", Category: "Fiction", RentPerDay: -1},
	}
	for _, in := range cases {
		_, err := svc.CreateBook(context.Background(), in)
		require.Error(t, err)
		api, ok := err.(*APIError)
		require.True(t, ok)
		assert.Equal(t, CodeInvalidArgument, api.Code)
	}
}

func TestUpdateBookMergesFields(t *testing.T) {
	st := newFakeBookStore()
	svc := newTestService(st)

	created, err := svc.CreateBook(context.Background(), CreateBookRequest{Name: "Dune", Category: "Fiction", RentPerDay: 10})
	require.NoError(t, err)

	newRent := 15.0
	res, err := svc.UpdateBook(context.Background(), created.BookID, UpdateBookRequest{RentPerDay: &newRent})
	require.NoError(t, err)

	// 指定したフィールドだけ変わる
	assert.Equal(t, "Dune", res.Name)
	assert.Equal(t, "Fiction", res.Category)
	assert.Equal(t, 15.0, res.RentPerDay)
}

func TestUpdateBookNotFound(t *testing.T) {
	svc := newTestService(newFakeBookStore())

	name := "X"
	_, err := svc.UpdateBook(context.Background(), 999, UpdateBookRequest{Name: &name})
	require.Error(t, err)
	assert.Equal(t, 404, toHTTPStatus(err))
}

func TestDeleteBookNotFound(t *testing.T) {
	svc := newTestService(newFakeBookStore())

	err := svc.DeleteBook(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, 404, toHTTPStatus(err))
}

func TestSearchByNameNotFound(t *testing.T) {
	svc := newTestService(newFakeBookStore())

	_, err := svc.SearchByName(context.Background(), "nonexistent")
	require.Error(t, err)
	api, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, api.Code)
}

func TestSearchByNameExactMatch(t *testing.T) {
	st := newFakeBookStore()
	svc := newTestService(st)

	_, err := svc.CreateBook(context.Background(), CreateBookRequest{Name: "Dune", Category: "Fiction", RentPerDay: 10})
	require.NoError(t, err)
	_, err = svc.CreateBook(context.Background(), CreateBookRequest{Name: "Dune Messiah", Category: "Fiction", RentPerDay: 12})
	require.NoError(t, err)

	res, err := svc.SearchByName(context.Background(), "Dune")
	require.NoError(t, err)
	// 部分一致ではなく完全一致
	require.Len(t, res, 1)
	assert.Equal(t, "Dune", res[0].Name)
}

func TestSearchByPriceRangeValidation(t *testing.T) {
	svc := newTestService(newFakeBookStore())

	cases := [][2]string{
		{"", "10"},
		{"5", ""},
		{"abc", "10"},
		{"5", "xyz"},
		{"10", "5"}, // min > max
	}
	for _, c := range cases {
		_, err := svc.SearchByPriceRange(context.Background(), c[0], c[1])
		require.Error(t, err)
		assert.Equal(t, 400, toHTTPStatus(err))
	}
}

func TestSearchByPriceRangeInclusive(t *testing.T) {
	st := newFakeBookStore()
	svc := newTestService(st)

	rents := []float64{5, 10, 15, 20}
	for _, r := range rents {
		_, err := svc.CreateBook(context.Background(), CreateBookRequest{Name: "B", Category: "C", RentPerDay: r})
		require.NoError(t, err)
	}

	res, err := svc.SearchByPriceRange(context.Background(), "10", "15")
	require.NoError(t, err)
	require.Len(t, res, 2)
	// 両端含む
	assert.Equal(t, 10.0, res[0].RentPerDay)
	assert.Equal(t, 15.0, res[1].RentPerDay)

	_, err = svc.SearchByPriceRange(context.Background(), "100", "200")
	require.Error(t, err)
	assert.Equal(t, 404, toHTTPStatus(err))
}

func TestSearchByFilter(t *testing.T) {
	st := newFakeBookStore()
	svc := newTestService(st)

	_, err := svc.CreateBook(context.Background(), CreateBookRequest{Name: "Dune", Category: "Fiction", RentPerDay: 10})
	require.NoError(t, err)
	_, err = svc.CreateBook(context.Background(), CreateBookRequest{Name: "SICP", Category: "CS", RentPerDay: 20})
	require.NoError(t, err)

	// 条件なしは400
	_, err = svc.SearchByFilter(context.Background(), "", "", "")
	require.Error(t, err)
	assert.Equal(t, 400, toHTTPStatus(err))

	// レンジ片方だけでは条件にならない
	_, err = svc.SearchByFilter(context.Background(), "", "5", "")
	require.Error(t, err)
	assert.Equal(t, 400, toHTTPStatus(err))

	// レンジが数値でなければ400
	_, err = svc.SearchByFilter(context.Background(), "", "low", "high")
	require.Error(t, err)
	assert.Equal(t, 400, toHTTPStatus(err))

	res, err := svc.SearchByFilter(context.Background(), "CS", "", "")
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "SICP", res[0].Name)

	res, err = svc.SearchByFilter(context.Background(), "Fiction", "5", "15")
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Dune", res[0].Name)

	_, err = svc.SearchByFilter(context.Background(), "History", "", "")
	require.Error(t, err)
	assert.Equal(t, 404, toHTTPStatus(err))
}
