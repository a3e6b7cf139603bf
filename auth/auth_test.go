package auth

import (
	"context"
	"testing"

	"liveserver/database"
	"liveserver/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func TestCreateAndResolve(t *testing.T) {
	db := newTestDB(t)
	logger := zap.NewNop()

	token, err := CreateUser(db, logger, "koboshi", 1000)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	user, err := GetUserByToken(context.Background(), db, nil, logger, token)
	require.NoError(t, err)
	assert.Equal(t, "koboshi", user.Name)
	assert.Equal(t, 1000, user.LeaderCardID)

	// 解決できないトークンは ErrInvalidToken
	_, err = GetUserByToken(context.Background(), db, nil, logger, "no-such-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = GetUserByToken(context.Background(), db, nil, logger, "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUpdateUser(t *testing.T) {
	db := newTestDB(t)
	logger := zap.NewNop()

	token, err := CreateUser(db, logger, "before", 1000)
	require.NoError(t, err)

	require.NoError(t, UpdateUser(db, logger, token, "after", 1002))

	user, err := GetUserByToken(context.Background(), db, nil, logger, token)
	require.NoError(t, err)
	assert.Equal(t, "after", user.Name)
	assert.Equal(t, 1002, user.LeaderCardID)

	assert.ErrorIs(t, UpdateUser(db, logger, "no-such-token", "x", 0), ErrInvalidToken)
}

func TestCreateUserTokenCollision(t *testing.T) {
	db := newTestDB(t)
	logger := zap.NewNop()

	orig := generateToken
	defer func() { generateToken = orig }()

	// 最初の2回は既存トークンと衝突させる
	tokens := []string{"dup", "dup", "fresh"}
	calls := 0
	generateToken = func() string {
		token := tokens[calls%len(tokens)]
		calls++
		return token
	}

	token, err := CreateUser(db, logger, "first", 1000)
	require.NoError(t, err)
	require.Equal(t, "dup", token)

	token, err = CreateUser(db, logger, "second", 1001)
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	// 衝突し続けた場合は打ち切ってエラーを返す
	generateToken = func() string { return "dup" }
	_, err = CreateUser(db, logger, "third", 1002)
	assert.Error(t, err)
}
