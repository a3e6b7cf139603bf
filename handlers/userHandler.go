package handlers

import (
	"errors"
	"net/http"

	"liveserver/auth"
	"liveserver/middlewares"
	"liveserver/models"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserCreateRequest はユーザー作成と更新のリクエストボディです。
type UserCreateRequest struct {
	UserName     string `json:"user_name"`
	LeaderCardID int    `json:"leader_card_id"`
}

// UserCreateResponse は発行したトークンを返します。
type UserCreateResponse struct {
	UserToken string `json:"user_token"`
}

// UserCreate は新規ユーザー登録を処理するハンドラです。
func UserCreate(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	var req UserCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Request binding error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request binding error"})
		return
	}

	token, err := auth.CreateUser(db, logger, req.UserName, req.LeaderCardID)
	if err != nil {
		logger.Error("Failed to create user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}
	c.JSON(http.StatusOK, UserCreateResponse{UserToken: token})
}

// UserMe は認証済みユーザー自身の情報を返すハンドラです。
func UserMe(c *gin.Context, db *gorm.DB, rdb *redis.Client, logger *zap.Logger) {
	user, ok := currentUser(c, db, rdb, logger)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.SafeUser{
		ID:           user.ID,
		Name:         user.Name,
		LeaderCardID: user.LeaderCardID,
	})
}

// UserUpdate はユーザー名とリーダーカードの自己更新を処理するハンドラです。
func UserUpdate(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	var req UserCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Request binding error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request binding error"})
		return
	}

	token := middlewares.BearerToken(c)
	if err := auth.UpdateUser(db, logger, token, req.UserName, req.LeaderCardID); err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "認証に失敗しました"})
			return
		}
		logger.Error("Failed to update user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// currentUser はベアラートークンを解決し、失敗時は401を書き込みます。
func currentUser(c *gin.Context, db *gorm.DB, rdb *redis.Client, logger *zap.Logger) (*models.User, bool) {
	token := middlewares.BearerToken(c)
	user, err := auth.GetUserByToken(c.Request.Context(), db, rdb, logger, token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "認証に失敗しました"})
			return nil, false
		}
		logger.Error("Failed to resolve token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve token"})
		return nil, false
	}
	return user, true
}
