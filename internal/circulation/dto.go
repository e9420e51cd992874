package circulation

// 貸出登録リクエスト
type IssueRequest struct {
	BookName string `json:"book_name" binding:"required"`
	UserName string `json:"user_name" binding:"required"`
	// "2006-01-02" 形式の文字列
	IssueDate string `json:"issue_date" binding:"required"`
}

// 返却登録リクエスト
type ReturnRequest struct {
	BookName   string `json:"book_name" binding:"required"`
	UserName   string `json:"user_name" binding:"required"`
	ReturnDate string `json:"return_date" binding:"required"`
}

// 貸出レスポンス
type LoanResponse struct {
	LoanID     int64   `json:"loan_id"`
	LoanULID   string  `json:"loan_ulid"`
	BookID     int64   `json:"book_id"`
	UserID     int64   `json:"user_id"`
	IssueDate  string  `json:"issue_date"`
	ReturnDate *string `json:"return_date,omitempty"`
	RentPerDay float64 `json:"rent_per_day"`
	TotalRent  float64 `json:"total_rent"`
	Status     string  `json:"status"`
}

// 返却レスポンス（更新後の貸出と蔵書側の状態を併せて返す）
type ReturnResponse struct {
	Loan LoanResponse      `json:"loan"`
	Book BookStateResponse `json:"book"`
}

type BookStateResponse struct {
	BookID     int64   `json:"book_id"`
	Name       string  `json:"name"`
	RentPerDay float64 `json:"rent_per_day"`
	TotalRent  float64 `json:"total_rent"`
}
