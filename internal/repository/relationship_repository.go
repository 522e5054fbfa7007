package repository

import (
	"errors"

	"social-system/internal/errs"
	"social-system/internal/model"

	"gorm.io/gorm"
)

// RelationshipRepository 关注关系数据访问
// 有序对 (follower_id, followed_id) 的线性一致性由复合唯一索引
// 和基于当前状态的条件更新共同保证
type RelationshipRepository struct {
	orm *gorm.DB
}

// NewRelationshipRepository 创建RelationshipRepository实例
func NewRelationshipRepository(orm *gorm.DB) *RelationshipRepository {
	return &RelationshipRepository{orm: orm}
}

// Get 查询有序对的关系记录；不存在时返回 (nil, nil)，即 NOT_FOLLOWING
func (r *RelationshipRepository) Get(followerID, followedID uint) (*model.Relationship, error) {
	var rel model.Relationship
	err := r.orm.Where("follower_id = ? AND followed_id = ?", followerID, followedID).First(&rel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rel, nil
}

// Create 创建关系记录
// 并发重复创建时唯一键冲突转换为 Conflict，由竞争失败方收到
func (r *RelationshipRepository) Create(rel *model.Relationship) error {
	if err := r.orm.Create(rel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.Conflict("relationship already exists")
		}
		return err
	}
	return nil
}

// UpdateStatusFrom 仅当当前状态为 from 时把状态改为 to
// 返回是否真的发生了转移；并发下竞争失败方拿到 false
func (r *RelationshipRepository) UpdateStatusFrom(followerID, followedID uint, from, to string) (bool, error) {
	res := r.orm.Model(&model.Relationship{}).
		Where("follower_id = ? AND followed_id = ? AND status = ?", followerID, followedID, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete 删除关系记录（仅当当前状态属于 fromStatuses）
// 删除即回到 NOT_FOLLOWING
func (r *RelationshipRepository) Delete(followerID, followedID uint, fromStatuses ...string) (bool, error) {
	res := r.orm.
		Where("follower_id = ? AND followed_id = ? AND status IN ?", followerID, followedID, fromStatuses).
		Delete(&model.Relationship{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListByFollower 查询某用户发起的全部指定状态关系
func (r *RelationshipRepository) ListByFollower(followerID uint, status string) ([]*model.Relationship, error) {
	var rels []*model.Relationship
	err := r.orm.Where("follower_id = ? AND status = ?", followerID, status).
		Order("created_at ASC").Find(&rels).Error
	if err != nil {
		return nil, err
	}
	return rels, nil
}

// ListByFollowed 查询指向某用户的全部指定状态关系
func (r *RelationshipRepository) ListByFollowed(followedID uint, status string) ([]*model.Relationship, error) {
	var rels []*model.Relationship
	err := r.orm.Where("followed_id = ? AND status = ?", followedID, status).
		Order("created_at ASC").Find(&rels).Error
	if err != nil {
		return nil, err
	}
	return rels, nil
}

// AcceptAllRequested 接受指向某用户的全部待处理请求
// 用于账号从 PRIVATE 切换到 PUBLIC
func (r *RelationshipRepository) AcceptAllRequested(followedID uint) error {
	return r.orm.Model(&model.Relationship{}).
		Where("followed_id = ? AND status = ?", followedID, model.RelationshipRequested).
		Update("status", model.RelationshipFollowing).Error
}

// DeleteAllDenied 删除指向某用户的全部已拒绝记录
// 用于账号从 PRIVATE 切换到 PUBLIC
func (r *RelationshipRepository) DeleteAllDenied(followedID uint) error {
	return r.orm.
		Where("followed_id = ? AND status = ?", followedID, model.RelationshipDenied).
		Delete(&model.Relationship{}).Error
}
