package members

import "time"

type CreateUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	// 登録時に紐付ける蔵書ID。実在チェックは行わない（貸出時と非対称なまま）
	Books []int64 `json:"books"`
}

type UserResponse struct {
	UserID    int64     `json:"user_id"`
	UserULID  string    `json:"user_ulid"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Books     []int64   `json:"books"`
	CreatedAt time.Time `json:"created_at"`
}
