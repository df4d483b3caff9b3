package models

import "time"

type Reel struct {
	ID          int64     `db:"id" json:"id"`
	OwnerID     int64     `db:"owner_id" json:"owner_id"`
	VideoURL    string    `db:"video_url" json:"video_url"`
	Description string    `db:"description" json:"description"`
	Tags        []string  `db:"tags" json:"tags"`
	Views       int64     `db:"views" json:"views"`
	LikeCount   int64     `db:"-" json:"like_count"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type ReelComment struct {
	ID        int64     `db:"id" json:"id"`
	ReelID    int64     `db:"reel_id" json:"reel_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Text      string    `db:"text" json:"text"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
