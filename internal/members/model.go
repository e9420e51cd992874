package members

import "time"

// User は users テーブルの1行を表す
type User struct {
	UserID    int64
	UserULID  string
	Name      string
	Email     string
	CreatedAt time.Time
}
