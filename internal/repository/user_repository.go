package repository

import (
	"errors"

	"social-system/internal/errs"
	"social-system/internal/model"

	"gorm.io/gorm"
)

// UserRepository 用户数据访问
type UserRepository struct {
	orm *gorm.DB
}

// NewUserRepository 创建UserRepository实例
func NewUserRepository(orm *gorm.DB) *UserRepository {
	return &UserRepository{orm: orm}
}

// Create 创建用户
// 用户名/邮箱唯一键冲突转换为 Conflict
func (r *UserRepository) Create(user *model.User) error {
	if err := r.orm.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.Conflict("username or email already taken")
		}
		return err
	}
	return nil
}

// GetByID 按ID查询用户；不存在时返回 (nil, nil)
func (r *UserRepository) GetByID(id uint) (*model.User, error) {
	var u model.User
	if err := r.orm.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetByUsernameOrEmail 按用户名或邮箱查询用户
func (r *UserRepository) GetByUsernameOrEmail(identifier string) (*model.User, error) {
	var u model.User
	if err := r.orm.Where("username = ? OR email = ?", identifier, identifier).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetByIDs 批量查询用户
func (r *UserRepository) GetByIDs(ids []uint) ([]*model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []*model.User
	if err := r.orm.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateFields 更新用户指定字段
func (r *UserRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	return r.orm.Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}
