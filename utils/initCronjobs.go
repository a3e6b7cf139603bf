package utils

import (
	"liveserver/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CronReporter は部屋の稼働状況を定期的にログへ出力します。
// 読み取りのみで、部屋やメンバーの状態は一切変更しません。
func CronReporter(db *gorm.DB, logger *zap.Logger) {
	c := cron.New()

	// 稼働状況の集計ジョブ
	c.AddFunc("@every 1m", func() {
		var waiting int64
		var live int64
		var seated int64
		if err := db.Model(&models.Room{}).Where("started = ?", false).Count(&waiting).Error; err != nil {
			logger.Error("Failed to count waiting rooms", zap.Error(err))
			return
		}
		if err := db.Model(&models.Room{}).Where("started = ?", true).Count(&live).Error; err != nil {
			logger.Error("Failed to count live rooms", zap.Error(err))
			return
		}
		if err := db.Model(&models.RoomMember{}).Count(&seated).Error; err != nil {
			logger.Error("Failed to count seated members", zap.Error(err))
			return
		}
		logger.Info("room occupancy",
			zap.Int64("waiting_rooms", waiting),
			zap.Int64("live_rooms", live),
			zap.Int64("seated_members", seated),
		)
	})

	c.Start()
}
