package catalog

import "time"

// ===== Requests =====

type CreateBookRequest struct {
	Name       string  `json:"name" binding:"required"`
	Category   string  `json:"category" binding:"required"`
	RentPerDay float64 `json:"rent_per_day" binding:"required"`
}

type UpdateBookRequest struct {
	Name       *string  `json:"name,omitempty"`
	Category   *string  `json:"category,omitempty"`
	RentPerDay *float64 `json:"rent_per_day,omitempty"`
}

// ===== Responses =====

type BookResponse struct {
	BookID      int64     `json:"book_id"`
	BookULID    string    `json:"book_ulid"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	RentPerDay  float64   `json:"rent_per_day"`
	ReturnCount int       `json:"return_count"`
	TotalRent   float64   `json:"total_rent"`
	// 貸出履歴から導出した利用者ID一覧（重複なし）
	Users     []int64   `json:"users"`
	CreatedAt time.Time `json:"created_at"`
}

// filter検索用の射影。users / return_count / total_rent は含めない
type BookSummary struct {
	BookID     int64     `json:"book_id"`
	BookULID   string    `json:"book_ulid"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	RentPerDay float64   `json:"rent_per_day"`
	CreatedAt  time.Time `json:"created_at"`
}

// ===== CSV一括登録 =====

type ImportBooksResponse struct {
	Total   int               `json:"total"`
	OkCount int               `json:"ok_count"`
	NgCount int               `json:"ng_count"`
	Results []ImportRowResult `json:"results"`
}

type ImportRowResult struct {
	Row    int     `json:"row"` // ヘッダ行を除いた1始まりのデータ行番号
	Ok     bool    `json:"ok"`
	Error  *string `json:"error,omitempty"`
	BookID *int64  `json:"book_id,omitempty"`
	Name   *string `json:"name,omitempty"`
}
