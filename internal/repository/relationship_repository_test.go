package repository

import (
	"fmt"
	"strings"
	"testing"

	"social-system/internal/errs"
	"social-system/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// newTestDB 每个测试一个独立的内存库
// 具名共享缓存 + TranslateError，与服务层测试的建库方式一致
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Relationship{}, &model.Post{}, &model.Flag{}))
	return db
}

// 同一有序对重复创建时，输在唯一索引上的一方拿到 Conflict
// 这是并发 requestFollow 穿过服务层预检后的最终裁决
func TestRelationshipCreateDuplicateConflict(t *testing.T) {
	db := newTestDB(t)
	repo := NewRelationshipRepository(db)

	require.NoError(t, repo.Create(&model.Relationship{
		FollowerID: 1,
		FollowedID: 2,
		Status:     model.RelationshipRequested,
	}))

	err := repo.Create(&model.Relationship{
		FollowerID: 1,
		FollowedID: 2,
		Status:     model.RelationshipFollowing,
	})
	assert.True(t, errs.Is(err, errs.KindConflict))

	// 反向有序对是独立记录，不冲突
	require.NoError(t, repo.Create(&model.Relationship{
		FollowerID: 2,
		FollowedID: 1,
		Status:     model.RelationshipRequested,
	}))
}
