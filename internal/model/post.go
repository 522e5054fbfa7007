package model

import (
	"time"
)

// 帖子状态
const (
	PostStatusPending   = "PENDING"
	PostStatusCompleted = "COMPLETED"
	PostStatusArchived  = "ARCHIVED"
)

// 帖子类型
const (
	PostTypeText  = "TEXT_ONLY"
	PostTypeImage = "IMAGE"
)

// 帖子举报状态
const (
	FlagStatusUnflagged = "UNFLAGGED"
	FlagStatusFlagged   = "FLAGGED"
)

// Post 帖子模型
// 文本帖创建后直接 COMPLETED，图片帖在媒体就绪前为 PENDING
// 归档（ARCHIVED）由审核流水线异步执行，且不可逆
// 帖子永不删除

type Post struct {
	ID         uint      `gorm:"primaryKey"`
	OwnerID    uint      `gorm:"not null;index;comment:作者ID"`
	PostType   string    `gorm:"type:varchar(16);not null;default:'TEXT_ONLY';comment:帖子类型"`
	Text       string    `gorm:"type:text;comment:帖子内容"`
	PostStatus string    `gorm:"type:varchar(16);not null;default:'PENDING';comment:帖子状态"`
	FlagStatus string    `gorm:"type:varchar(16);not null;default:'UNFLAGGED';comment:举报状态"`
	FlagCount  int       `gorm:"not null;default:0;comment:举报次数"`
	IsVerified bool      `gorm:"default:false;comment:媒体验证标记"`
	CreatedAt  time.Time `gorm:"comment:创建时间"`
	UpdatedAt  time.Time `gorm:"comment:更新时间"`
}

func (Post) TableName() string { return "post" }
