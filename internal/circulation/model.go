package circulation

import (
	"database/sql"
	"time"
)

// issue_date / return_date の厳密フォーマット
const DateLayout = "2006-01-02"

const (
	StatusIssued   = "Issued"
	StatusReturned = "Returned"
)

// Loan は loans テーブルの1行を表す。
// rent_per_day は貸出時点の料率スナップショットで、books 側をあとから
// 変更しても過去の貸出には影響しない。
type Loan struct {
	LoanID     int64
	LoanULID   string
	BookID     int64
	UserID     int64
	IssueDate  time.Time
	ReturnDate sql.NullTime
	RentPerDay float64
	TotalRent  float64
	Status     string
}

// 返却処理後の books 側の状態
type BookState struct {
	BookID     int64
	Name       string
	RentPerDay float64
	TotalRent  float64
}
