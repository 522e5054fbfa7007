package service

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"social-system/internal/model"
	"social-system/pkg/logger"
	"social-system/pkg/password"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func TestMain(m *testing.M) {
	logger.InitTestLogger()
	os.Exit(m.Run())
}

// newTestDB 每个测试一个独立的内存库
// 必须使用具名共享缓存：连接池里的新连接才能看到同一个库
// TranslateError 必须开启：唯一键冲突依赖 gorm.ErrDuplicatedKey
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

// newTestUser 创建测试用户
func newTestUser(t *testing.T, db *gorm.DB, username, privacyStatus string) *model.User {
	t.Helper()
	hash, err := password.Hash("test-password")
	require.NoError(t, err)
	user := &model.User{
		Username:      username,
		Email:         username + "@example.com",
		PasswordHash:  hash,
		PrivacyStatus: privacyStatus,
		Status:        model.UserStatusActive,
		LanguageCode:  "en",
		ThemeCode:     "black.green",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
