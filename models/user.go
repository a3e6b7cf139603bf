package models

import (
	"gorm.io/gorm"
)

// User モデルの定義
type User struct {
	gorm.Model
	Name         string `gorm:"not null"`
	Token        string `gorm:"uniqueIndex;not null"` // 認証用の不透明なベアラートークン
	LeaderCardID int    `gorm:"not null"`
}

// SafeUser はトークンを含まないユーザー情報のレスポンス用表現です。
type SafeUser struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	LeaderCardID int    `json:"leader_card_id"`
}
