package model

import (
	"time"
)

// 关注关系状态
// NOT_FOLLOWING 不落库：没有记录即视为 NOT_FOLLOWING
const (
	RelationshipNotFollowing = "NOT_FOLLOWING"
	RelationshipRequested    = "REQUESTED"
	RelationshipFollowing    = "FOLLOWING"
	RelationshipDenied       = "DENIED"
	RelationshipSelf         = "SELF"
)

// Relationship 关注关系（有向）
// 每个有序对 (FollowerID, FollowedID) 至多一条记录，由复合唯一索引保证
// 并发重复创建时数据库返回唯一键冲突
// 取消关注直接删除记录，因此不使用软删除（软删除会占住唯一索引）

type Relationship struct {
	ID         uint      `gorm:"primaryKey"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follower_followed;comment:关注者ID"`
	FollowedID uint      `gorm:"not null;uniqueIndex:idx_follower_followed;index;comment:被关注者ID"`
	Status     string    `gorm:"type:varchar(16);not null;comment:关系状态"`
	CreatedAt  time.Time `gorm:"comment:创建时间"`
	UpdatedAt  time.Time `gorm:"comment:更新时间"`
}

func (Relationship) TableName() string { return "relationship" }
