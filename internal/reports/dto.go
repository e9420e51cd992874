package reports

type UserRef struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

type PastIssuers struct {
	TotalCount int       `json:"total_count"`
	Users      []UserRef `json:"users"`
}

type IssuanceHistoryResponse struct {
	BookName        string      `json:"book_name"`
	PastIssuers     PastIssuers `json:"past_issuers"`
	CurrentlyIssued bool        `json:"currently_issued"`
	CurrentHolder   *UserRef    `json:"current_holder,omitempty"`
}

type TotalRentResponse struct {
	BookName  string  `json:"book_name"`
	TotalRent float64 `json:"total_rent"`
}

// 利用者に紐付く蔵書の射影。users の逆参照は含めない
type IssuedBook struct {
	BookID      int64   `json:"book_id"`
	BookULID    string  `json:"book_ulid"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	RentPerDay  float64 `json:"rent_per_day"`
	ReturnCount int     `json:"return_count"`
	TotalRent   float64 `json:"total_rent"`
}

type UserBooksResponse struct {
	UserName string       `json:"user_name"`
	Books    []IssuedBook `json:"books"`
}

type LoanBookSummary struct {
	Name       string  `json:"book_name"`
	Category   string  `json:"category"`
	RentPerDay float64 `json:"rent_per_day"`
}

type DateRangeLoan struct {
	Book      LoanBookSummary `json:"book"`
	IssuedTo  UserRef         `json:"issued_to"`
	IssueDate string          `json:"issue_date"`
}

type DateRangeResponse struct {
	IssuedBooks []DateRangeLoan `json:"issued_books"`
}
