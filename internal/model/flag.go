package model

import (
	"time"
)

// Flag 举报记录
// 每个 (PostID, UserID) 至多一条，由复合唯一索引保证
// 只增不改不删，作为审核证据链保留

type Flag struct {
	ID        uint      `gorm:"primaryKey"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_user;comment:帖子ID"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_user;index;comment:举报者ID"`
	CreatedAt time.Time `gorm:"comment:举报时间"`
}

func (Flag) TableName() string { return "flag" }
