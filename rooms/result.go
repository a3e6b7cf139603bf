package rooms

import (
	"liveserver/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Submit は呼び出し元メンバーのプレイ結果（スコアと5段階の判定数）を
// 記録します。再送信は同じ行を黙って上書きします。
func Submit(db *gorm.DB, logger *zap.Logger, userID uint, roomID uint, judgeCounts [5]int, score int) error {
	result := db.Model(&models.RoomMember{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Updates(map[string]interface{}{
			"score":   score,
			"perfect": judgeCounts[0],
			"great":   judgeCounts[1],
			"good":    judgeCounts[2],
			"bad":     judgeCounts[3],
			"miss":    judgeCounts[4],
		})
	if result.Error != nil {
		logger.Error("Failed to record result", zap.Uint("room_id", roomID), zap.Uint("user_id", userID), zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected == 0 {
		// 退出済みメンバーの報告は読み捨てる
		logger.Warn("Result submitted by non-member", zap.Uint("room_id", roomID), zap.Uint("user_id", userID))
	}
	return nil
}

// Result は全メンバーの結果が揃ったときだけ結果一覧を返します。
// 1人でも未報告なら空のリストを返します。結果が公開された場合、
// 受け取った呼び出し元はそのまま退出扱いになります（Leaveの規則に従い
// ホスト移譲や解散が続きます）。
func Result(db *gorm.DB, logger *zap.Logger, userID uint, roomID uint) ([]models.ResultUser, error) {
	var results []models.ResultUser
	var completed bool
	err := runTx(db, logger, func(tx *gorm.DB) error {
		var err error
		results, completed, err = collectResults(tx, roomID)
		return err
	})
	if err != nil {
		logger.Error("Failed to fetch results", zap.Uint("room_id", roomID), zap.Error(err))
		return nil, err
	}
	if !completed {
		return []models.ResultUser{}, nil
	}

	// 結果を受け取ったメンバーは部屋での役目を終える
	if err := Leave(db, logger, userID, roomID); err != nil {
		return nil, err
	}
	logger.Info("Results released", zap.Uint("room_id", roomID), zap.Int("members", len(results)))
	return results, nil
}

// collectResults は読み取り専用の集計本体です。全メンバーのスコアが
// 揃っているときに限り completed = true で結果を返します。
func collectResults(tx *gorm.DB, roomID uint) ([]models.ResultUser, bool, error) {
	var members []models.RoomMember
	if err := tx.Where("room_id = ?", roomID).Order("id").Find(&members).Error; err != nil {
		return nil, false, err
	}
	if len(members) == 0 {
		return nil, false, nil
	}

	results := make([]models.ResultUser, 0, len(members))
	for _, member := range members {
		if member.Score == nil {
			// 未報告のメンバーがいる間は何も公開しない
			return nil, false, nil
		}
		results = append(results, models.ResultUser{
			UserID: member.UserID,
			JudgeCountList: []int{
				*member.Perfect,
				*member.Great,
				*member.Good,
				*member.Bad,
				*member.Miss,
			},
			Score: *member.Score,
		})
	}
	return results, true, nil
}
