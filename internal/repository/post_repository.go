package repository

import (
	"errors"

	"social-system/internal/errs"
	"social-system/internal/model"

	"gorm.io/gorm"
)

// PostRepository 帖子与举报数据访问
// 举报去重由 (post_id, user_id) 复合唯一索引保证
type PostRepository struct {
	orm *gorm.DB
}

// NewPostRepository 创建PostRepository实例
func NewPostRepository(orm *gorm.DB) *PostRepository {
	return &PostRepository{orm: orm}
}

// Create 创建帖子
func (r *PostRepository) Create(post *model.Post) error {
	return r.orm.Create(post).Error
}

// GetByID 按ID查询帖子；不存在时返回 (nil, nil)
func (r *PostRepository) GetByID(id uint) (*model.Post, error) {
	var p model.Post
	if err := r.orm.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// CreateFlag 追加举报记录
// 同一用户对同一帖子的重复举报在唯一键上冲突，转换为 Conflict
func (r *PostRepository) CreateFlag(flag *model.Flag) error {
	if err := r.orm.Create(flag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.Conflict("post already flagged by this user")
		}
		return err
	}
	return nil
}

// MarkFlagged 标记帖子为已举报并原子递增举报计数
func (r *PostRepository) MarkFlagged(postID uint) error {
	return r.orm.Model(&model.Post{}).Where("id = ?", postID).
		Updates(map[string]interface{}{
			"flag_status": model.FlagStatusFlagged,
			"flag_count":  gorm.Expr("flag_count + 1"),
		}).Error
}

// CountFlags 统计帖子的举报数量
func (r *PostRepository) CountFlags(postID uint) (int64, error) {
	var count int64
	err := r.orm.Model(&model.Flag{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

// FlaggerUsernames 查询举报过该帖子的全部用户名
// 用于受信审核员判定
func (r *PostRepository) FlaggerUsernames(postID uint) ([]string, error) {
	var usernames []string
	err := r.orm.Model(&model.Flag{}).
		Joins("JOIN user ON user.id = flag.user_id").
		Where("flag.post_id = ?", postID).
		Pluck("user.username", &usernames).Error
	if err != nil {
		return nil, err
	}
	return usernames, nil
}

// ListFlaggedUnarchived 查询已被举报但尚未归档的帖子ID
// 审核兜底重扫用
func (r *PostRepository) ListFlaggedUnarchived(limit int) ([]uint, error) {
	var ids []uint
	err := r.orm.Model(&model.Post{}).
		Where("flag_status = ? AND post_status <> ?", model.FlagStatusFlagged, model.PostStatusArchived).
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Archive 归档帖子
// 幂等：已归档的帖子不再发生转移，返回是否真的发生了归档
func (r *PostRepository) Archive(postID uint) (bool, error) {
	res := r.orm.Model(&model.Post{}).
		Where("id = ? AND post_status <> ?", postID, model.PostStatusArchived).
		Update("post_status", model.PostStatusArchived)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
