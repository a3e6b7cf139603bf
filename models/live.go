package models

// LiveDifficulty は楽曲の難易度です。
type LiveDifficulty int

const (
	LiveDifficultyNormal LiveDifficulty = 1
	LiveDifficultyHard   LiveDifficulty = 2
)

// JoinRoomResult は入場リクエストの結果コードです。
type JoinRoomResult int

const (
	JoinRoomResultOK         JoinRoomResult = 1
	JoinRoomResultRoomFull   JoinRoomResult = 2
	JoinRoomResultDisbanded  JoinRoomResult = 3
	JoinRoomResultOtherError JoinRoomResult = 4
)

// WaitRoomStatus は待機ポーリングで返す部屋の状態です。
type WaitRoomStatus int

const (
	WaitRoomStatusWaiting     WaitRoomStatus = 1
	WaitRoomStatusLiveStart   WaitRoomStatus = 2
	WaitRoomStatusDissolution WaitRoomStatus = 3
)

// RoomInfo は入場可能な部屋一覧の1要素です。
type RoomInfo struct {
	RoomID          uint `json:"room_id"`
	LiveID          uint `json:"live_id"`
	JoinedUserCount int  `json:"joined_user_count"`
	MaxUserCount    int  `json:"max_user_count"`
}

// RoomUser は待機画面に表示するメンバー1人分の情報です。
type RoomUser struct {
	UserID           uint           `json:"user_id"`
	Name             string         `json:"name"`
	LeaderCardID     int            `json:"leader_card_id"`
	SelectDifficulty LiveDifficulty `json:"select_difficulty"`
	IsMe             bool           `json:"is_me"`
	IsHost           bool           `json:"is_host"`
}

// ResultUser はライブ終了後のメンバー1人分の結果です。
type ResultUser struct {
	UserID         uint  `json:"user_id"`
	JudgeCountList []int `json:"judge_count_list"`
	Score          int   `json:"score"`
}
