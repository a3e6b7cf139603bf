package rooms

import (
	"errors"

	"liveserver/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MaxUserCount は部屋の最大人数です。
const MaxUserCount = 4

// Create は新しい部屋を作成し、作成者をホストとして着席させます。
// 部屋の行とホストのメンバー行は同一トランザクションで挿入されるため、
// メンバー0人の部屋は一瞬たりとも存在しません。
func Create(db *gorm.DB, logger *zap.Logger, userID uint, liveID uint, difficulty models.LiveDifficulty) (uint, error) {
	var roomID uint
	err := runTx(db, logger, func(tx *gorm.DB) error {
		room := models.Room{LiveID: liveID}
		if err := tx.Create(&room).Error; err != nil {
			return err
		}
		host := models.RoomMember{
			RoomID:           room.ID,
			UserID:           userID,
			SelectDifficulty: difficulty,
			IsHost:           true,
		}
		if err := tx.Create(&host).Error; err != nil {
			return err
		}
		roomID = room.ID
		return nil
	})
	if err != nil {
		logger.Error("Failed to create room", zap.Uint("user_id", userID), zap.Error(err))
		return 0, err
	}
	logger.Info("Room created", zap.Uint("room_id", roomID), zap.Uint("live_id", liveID))
	return roomID, nil
}

// List は入場可能な部屋の一覧を返します。live_id = 0 は全楽曲を対象とする
// ワイルドカードです。開始済みの部屋と満員の部屋は除外します。
func List(db *gorm.DB, logger *zap.Logger, liveID uint) ([]models.RoomInfo, error) {
	infos := []models.RoomInfo{}
	err := runTx(db, logger, func(tx *gorm.DB) error {
		query := tx.Model(&models.Room{}).Where("started = ?", false)
		if liveID != 0 {
			query = query.Where("live_id = ?", liveID)
		}
		var open []models.Room
		if err := query.Order("id").Find(&open).Error; err != nil {
			return err
		}

		infos = infos[:0]
		for _, room := range open {
			var count int64
			if err := tx.Model(&models.RoomMember{}).Where("room_id = ?", room.ID).Count(&count).Error; err != nil {
				return err
			}
			if count >= MaxUserCount { // 満員の部屋は除く
				continue
			}
			infos = append(infos, models.RoomInfo{
				RoomID:          room.ID,
				LiveID:          room.LiveID,
				JoinedUserCount: int(count),
				MaxUserCount:    MaxUserCount,
			})
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to list rooms", zap.Uint("live_id", liveID), zap.Error(err))
		return nil, err
	}
	return infos, nil
}

// Join は部屋への入場を試みます。人数確認とメンバー挿入は同一トランザクション
// なので、同じ部屋への同時入場が定員を超えることはありません。
// 既に着席しているユーザーの再入場は行を増やさず OK を返します。
// 部屋とユーザーの組の一意制約が最後の砦になります。
func Join(db *gorm.DB, logger *zap.Logger, userID uint, roomID uint, difficulty models.LiveDifficulty) (models.JoinRoomResult, error) {
	result := models.JoinRoomResultOK
	err := runTx(db, logger, func(tx *gorm.DB) error {
		result = models.JoinRoomResultOK
		var count int64
		if err := tx.Model(&models.RoomMember{}).Where("room_id = ?", roomID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 { // 部屋は既に解散している
			result = models.JoinRoomResultDisbanded
			return nil
		}

		var seated int64
		if err := tx.Model(&models.RoomMember{}).Where("room_id = ? AND user_id = ?", roomID, userID).Count(&seated).Error; err != nil {
			return err
		}
		if seated > 0 { // 着席済みなら何もしない
			return nil
		}
		if count >= MaxUserCount {
			result = models.JoinRoomResultRoomFull
			return nil
		}

		member := models.RoomMember{
			RoomID:           roomID,
			UserID:           userID,
			SelectDifficulty: difficulty,
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 同一ユーザーの入場が競合した場合、どちらにせよ着席している
			return models.JoinRoomResultOK, nil
		}
		logger.Error("Failed to join room", zap.Uint("room_id", roomID), zap.Uint("user_id", userID), zap.Error(err))
		return models.JoinRoomResultOtherError, err
	}
	return result, nil
}

// Wait は待機ポーリングの応答を返します。部屋の状態は一切変更しません。
// 部屋が存在しなければ Dissolution と空のメンバー一覧を返します。
func Wait(db *gorm.DB, logger *zap.Logger, callerID uint, roomID uint) (models.WaitRoomStatus, []models.RoomUser, error) {
	status := models.WaitRoomStatusWaiting
	users := []models.RoomUser{}
	err := runTx(db, logger, func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.First(&room, roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				status = models.WaitRoomStatusDissolution
				users = users[:0]
				return nil
			}
			return err
		}
		if room.Started {
			status = models.WaitRoomStatusLiveStart
		} else {
			status = models.WaitRoomStatusWaiting
		}

		var members []models.RoomMember
		if err := tx.Where("room_id = ?", roomID).Order("id").Find(&members).Error; err != nil {
			return err
		}
		users = users[:0]
		for _, member := range members {
			var user models.User
			if err := tx.First(&user, member.UserID).Error; err != nil {
				return err
			}
			users = append(users, models.RoomUser{
				UserID:           member.UserID,
				Name:             user.Name,
				LeaderCardID:     user.LeaderCardID,
				SelectDifficulty: member.SelectDifficulty,
				IsMe:             member.UserID == callerID,
				IsHost:           member.IsHost,
			})
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to fetch room status", zap.Uint("room_id", roomID), zap.Error(err))
		return 0, nil, err
	}
	return status, users, nil
}

// Start は部屋のライブを開始済みにします。ホスト確認は行いません。
func Start(db *gorm.DB, logger *zap.Logger, roomID uint) error {
	if err := db.Model(&models.Room{}).Where("id = ?", roomID).Update("started", true).Error; err != nil {
		logger.Error("Failed to start room", zap.Uint("room_id", roomID), zap.Error(err))
		return err
	}
	logger.Info("Room started", zap.Uint("room_id", roomID))
	return nil
}

// Leave は部屋からの退出を処理します。最後の1人なら部屋ごと解散し、
// 退出者がホストなら残りの先頭メンバーへホストを移譲してから
// メンバー行を削除します。全体が1つのトランザクションなので、
// ホストが0人や2人になった状態は外から観測できません。
func Leave(db *gorm.DB, logger *zap.Logger, userID uint, roomID uint) error {
	err := runTx(db, logger, func(tx *gorm.DB) error {
		var members []models.RoomMember
		if err := tx.Where("room_id = ?", roomID).Order("id").Find(&members).Error; err != nil {
			return err
		}

		var caller *models.RoomMember
		for i := range members {
			if members[i].UserID == userID {
				caller = &members[i]
				break
			}
		}
		if caller == nil {
			return nil // 既に退出済み
		}

		if len(members) == 1 {
			// 最後の1人が退出するので部屋を解散する
			if err := tx.Delete(&models.Room{}, roomID).Error; err != nil {
				return err
			}
		} else if caller.IsHost {
			// 残っているメンバーの先頭へホストを移譲する
			for _, member := range members {
				if member.UserID == userID {
					continue
				}
				if err := tx.Model(&models.RoomMember{}).Where("id = ?", member.ID).Update("is_host", true).Error; err != nil {
					return err
				}
				break
			}
		}

		return tx.Delete(&models.RoomMember{}, caller.ID).Error
	})
	if err != nil {
		logger.Error("Failed to leave room", zap.Uint("room_id", roomID), zap.Uint("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}
