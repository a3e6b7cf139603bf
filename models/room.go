package models

import (
	"time"

	"gorm.io/gorm"
)

// Room モデルの定義
type Room struct {
	gorm.Model
	LiveID  uint `gorm:"not null;index"` // 対象となる楽曲のID
	Started bool `gorm:"not null;default:false"`
}

// RoomMember は部屋への参加レコードです。部屋とユーザーの組ごとに1行で、
// 複合一意制約がそれを保証します。退出時は行を物理削除するので
// DeletedAt は持ちません（同じ部屋への入り直しを妨げないため）。
// Score と各判定数はライブ終了の報告までNULLのままです。
type RoomMember struct {
	ID               uint `gorm:"primarykey"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	RoomID           uint           `gorm:"not null;uniqueIndex:idx_room_member_room_user"`
	UserID           uint           `gorm:"not null;index;uniqueIndex:idx_room_member_room_user"`
	SelectDifficulty LiveDifficulty `gorm:"not null"`
	IsHost           bool           `gorm:"not null;default:false"`
	Score            *int
	Perfect          *int
	Great            *int
	Good             *int
	Bad              *int
	Miss             *int
}
