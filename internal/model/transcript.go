package model

import "time"

// 成绩单处理状态
const (
	TranscriptStatusPending    = "PENDING"
	TranscriptStatusProcessing = "PROCESSING"
	TranscriptStatusDone       = "DONE"
	TranscriptStatusError      = "ERROR"
)

// Transcript 成绩单表，对应 transcripts
// 每次上传创建新版本；分析始终读取最新一条。
type Transcript struct {
	TranscriptID string        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"  json:"id"`
	OwnerID      string        `gorm:"type:uuid;not null;index"                        json:"owner_id"`
	Status       string        `gorm:"type:varchar(20);not null;default:'PENDING'"     json:"status"`
	ParsedData   CourseRecords `gorm:"type:jsonb"                                      json:"parsed_data"`
	ErrorMessage *string       `gorm:"type:text"                                       json:"error_message"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP;index"        json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"              json:"updated_at"`

	// 关联
	Pages []TranscriptPage `gorm:"foreignKey:TranscriptID;references:TranscriptID" json:"pages,omitempty"`
}

// TableName 指定表名
func (Transcript) TableName() string { return "transcripts" }

// Ready 是否可用于分析：已完成且解析结果非空
func (t *Transcript) Ready() bool {
	return t.Status == TranscriptStatusDone && len(t.ParsedData) > 0
}

// TranscriptPage 成绩单页（扫描图片），对应 transcript_pages
type TranscriptPage struct {
	PageID       string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TranscriptID string    `gorm:"type:uuid;not null;index"                       json:"transcript_id"`
	PageNumber   int       `gorm:"not null"                                       json:"page_number"`
	FilePath     string    `gorm:"type:varchar(500);not null"                     json:"-"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (TranscriptPage) TableName() string { return "transcript_pages" }
