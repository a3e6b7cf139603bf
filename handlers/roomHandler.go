package handlers

import (
	"net/http"

	"liveserver/models"
	"liveserver/rooms"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RoomCreateRequest は部屋作成リクエストのボディです。
type RoomCreateRequest struct {
	LiveID           uint                  `json:"live_id"`
	SelectDifficulty models.LiveDifficulty `json:"select_difficulty"`
}

type RoomCreateResponse struct {
	RoomID uint `json:"room_id"`
}

// RoomCreate は新しい部屋を作成するハンドラです。作成者がホストになります。
func RoomCreate(c *gin.Context, db *gorm.DB, rdb *redis.Client, logger *zap.Logger) {
	var req RoomCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Request binding error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request binding error"})
		return
	}
	user, ok := currentUser(c, db, rdb, logger)
	if !ok {
		return
	}

	roomID, err := rooms.Create(db, logger, user.ID, req.LiveID, req.SelectDifficulty)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create room"})
		return
	}
	c.JSON(http.StatusOK, RoomCreateResponse{RoomID: roomID})
}

type RoomListRequest struct {
	LiveID uint `json:"live_id"` // 0 は全楽曲を対象とするワイルドカード
}

type RoomListResponse struct {
	RoomInfoList []models.RoomInfo `json:"room_info_list"`
}

// RoomList は入場可能な部屋の一覧を返すハンドラです。
func RoomList(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	var req RoomListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Request binding error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request binding error"})
		return
	}

	infos, err := rooms.List(db, logger, req.LiveID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list rooms"})
		return
	}
	c.JSON(http.StatusOK, RoomListResponse{RoomInfoList: infos})
}

type RoomJoinRequest struct {
	RoomID           uint                  `json:"room_id"`
	SelectDifficulty models.LiveDifficulty `json:"select_difficulty"`
}

type RoomJoinResponse struct {
	JoinRoomResult models.JoinRoomResult `json:"join_room_result"`
}

// RoomJoin は部屋への入場を処理するハンドラです。満員と解散済みは
// エラーではなく結果コードとして返します。
func RoomJoin(c *gin.Context, db *gorm.DB, rdb *redis.Client, logger *zap.Logger) {
	var req RoomJoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Request binding error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request binding error"})
		return
	}
	user, ok := currentUser(c, db, rdb, logger)
	if !ok {
		return
	}

	result, err := rooms.Join(db, logger, user.ID, req.RoomID, req.SelectDifficulty)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join room"})
		return
	}
	c.JSON(http.StatusOK, RoomJoinResponse{JoinRoomResult: result})
}

type RoomWaitRequest struct {
	RoomID uint `json:"room_id"`
}

type RoomWaitResponse struct {
	Status       models.WaitRoomStatus `json:"status"`
	RoomUserList []models.RoomUser     `json:"room_user_list"`
}

// RoomWait は待機ポーリングに応答するハンドラです。状態は変更しません。
func RoomWait(c *gin.Context, db *gorm.DB, rdb *redis.Client, logger *zap.Logger) {
	var req RoomWaitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Request binding error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request binding error"})
		return
	}
	user, ok := currentUser(c, db, rdb, logger)
	if !ok {
		return
	}

	status, users, err := rooms.Wait(db, logger, user.ID, req.RoomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch room status"})
		return
	}
	c.JSON(http.StatusOK, RoomWaitResponse{Status: status, RoomUserList: users})
}

type RoomStartRequest struct {
	RoomID uint `json:"room_id"`
}

// RoomStart はライブ開始を処理するハンドラです。ホストが叩く想定です。
func RoomStart(c *gin.Context, db *gorm.DB, rdb *redis.Client, logger *zap.Logger) {
	var req RoomStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Request binding error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request binding error"})
		return
	}
	if _, ok := currentUser(c, db, rdb, logger); !ok {
		return
	}

	if err := rooms.Start(db, logger, req.RoomID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start room"})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

type RoomEndRequest struct {
	RoomID         uint  `json:"room_id"`
	JudgeCountList []int `json:"judge_count_list"`
	Score          int   `json:"score"`
}

// RoomEnd はライブ終了の結果報告を処理するハンドラです。各メンバーが叩きます。
func RoomEnd(c *gin.Context, db *gorm.DB, rdb *redis.Client, logger *zap.Logger) {
	var req RoomEndRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Request binding error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request binding error"})
		return
	}
	if len(req.JudgeCountList) != 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "judge_count_list must have 5 entries"})
		return
	}
	user, ok := currentUser(c, db, rdb, logger)
	if !ok {
		return
	}

	var judgeCounts [5]int
	copy(judgeCounts[:], req.JudgeCountList)
	if err := rooms.Submit(db, logger, user.ID, req.RoomID, judgeCounts, req.Score); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record result"})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

type RoomResultRequest struct {
	RoomID uint `json:"room_id"`
}

type RoomResultResponse struct {
	ResultUserList []models.ResultUser `json:"result_user_list"`
}

// RoomResult は結果一覧の取得を処理するハンドラです。全員の報告が
// 揃うまでは空のリストを返し、揃った時点で受け取った本人は退出します。
func RoomResult(c *gin.Context, db *gorm.DB, rdb *redis.Client, logger *zap.Logger) {
	var req RoomResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Request binding error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request binding error"})
		return
	}
	user, ok := currentUser(c, db, rdb, logger)
	if !ok {
		return
	}

	results, err := rooms.Result(db, logger, user.ID, req.RoomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch results"})
		return
	}
	c.JSON(http.StatusOK, RoomResultResponse{ResultUserList: results})
}

type RoomLeaveRequest struct {
	RoomID uint `json:"room_id"`
}

// RoomLeave は部屋からの退出を処理するハンドラです。ホストが退出する
// 場合は同じ部屋の別のユーザーがホストになります。
func RoomLeave(c *gin.Context, db *gorm.DB, rdb *redis.Client, logger *zap.Logger) {
	var req RoomLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Request binding error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request binding error"})
		return
	}
	user, ok := currentUser(c, db, rdb, logger)
	if !ok {
		return
	}

	if err := rooms.Leave(db, logger, user.ID, req.RoomID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to leave room"})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}
