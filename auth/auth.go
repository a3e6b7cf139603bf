package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"liveserver/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrInvalidToken は指定されたトークンがどのユーザーにも解決できないことを表します。
var ErrInvalidToken = errors.New("auth: invalid token")

const (
	tokenCreateRetries = 3              // トークン衝突時の再試行回数
	sessionCacheTTL    = 24 * time.Hour // Redisに保持するトークン→ユーザーIDの有効期限
)

// テストからトークン生成を差し替えられるようにしておく
var generateToken = func() string {
	return uuid.New().String()
}

// CreateUser は新規ユーザーを登録し、認証用トークンを返します。
// トークンの一意性はデータベースの制約で保証し、衝突した場合は
// 新しいトークンで再試行します。
func CreateUser(db *gorm.DB, logger *zap.Logger, name string, leaderCardID int) (string, error) {
	var lastErr error
	for i := 0; i < tokenCreateRetries; i++ {
		user := models.User{
			Name:         name,
			Token:        generateToken(),
			LeaderCardID: leaderCardID,
		}
		err := db.Create(&user).Error
		if err == nil {
			return user.Token, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", err
		}
		logger.Warn("Token collision, regenerating", zap.Int("attempt", i+1))
		lastErr = err
	}
	return "", lastErr
}

// GetUserByToken はトークンをユーザーに解決します。Redisのセッション
// キャッシュを先に引き、ヒットしなければデータベースを参照します。
// ユーザーIDは不変なのでキャッシュが古い同一性を返すことはありません。
func GetUserByToken(ctx context.Context, db *gorm.DB, rdb *redis.Client, logger *zap.Logger, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	if rdb != nil {
		if cached, err := rdb.Get(ctx, sessionKey(token)).Result(); err == nil {
			if id, convErr := strconv.ParseUint(cached, 10, 64); convErr == nil {
				var user models.User
				if err := db.First(&user, uint(id)).Error; err == nil {
					return &user, nil
				}
			}
		} else if err != redis.Nil {
			logger.Warn("Failed to read session cache", zap.Error(err))
		}
	}

	var user models.User
	if err := db.Where("token = ?", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if rdb != nil {
		value := strconv.FormatUint(uint64(user.ID), 10)
		if err := rdb.Set(ctx, sessionKey(token), value, sessionCacheTTL).Err(); err != nil {
			logger.Warn("Failed to store session cache", zap.Error(err))
		}
	}
	return &user, nil
}

// UpdateUser はユーザー名とリーダーカードを更新します。
func UpdateUser(db *gorm.DB, logger *zap.Logger, token string, name string, leaderCardID int) error {
	result := db.Model(&models.User{}).Where("token = ?", token).Updates(map[string]interface{}{
		"name":           name,
		"leader_card_id": leaderCardID,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInvalidToken
	}
	return nil
}

func sessionKey(token string) string {
	return "session:" + token
}
