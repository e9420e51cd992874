package catalog

import "time"

// Book は books テーブルの1行を表す
type Book struct {
	BookID     int64
	BookULID   string
	Name       string
	Category   string
	RentPerDay float64
	// 旧データ互換のため残しているカウンタ。どの操作も加算しない。
	ReturnCount int
	TotalRent   float64
	CreatedAt   time.Time
}

// 絞り込み検索条件（category / 賃料レンジの組み合わせ）
type BookFilter struct {
	Category *string
	RentFrom *float64
	RentTo   *float64
}
