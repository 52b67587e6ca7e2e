package model

// 用户角色
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// User 用户表，对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	StudentID    string `gorm:"type:varchar(20);not null;uniqueIndex"          json:"student_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	EntryYear    int    `gorm:"type:smallint;not null"                         json:"entry_year"`
	Major        string `gorm:"type:varchar(100);not null"                     json:"major"`
	Role         string `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	SoftDeleteModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }
