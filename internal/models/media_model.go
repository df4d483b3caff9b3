package models

import "time"

// MediaAsset records everything needed to address a published object later:
// the remote object key is stored next to the public URL so deletion never
// has to be reconstructed by parsing the URL.
type MediaAsset struct {
	ID           int64     `db:"id" json:"id"`
	OwnerType    string    `db:"owner_type" json:"owner_type"` // listing, reel, tool
	OwnerID      int64     `db:"owner_id" json:"owner_id"`
	Field        string    `db:"field" json:"field"` // images, videos, video, image
	DisplayOrder int       `db:"display_order" json:"display_order"`
	ObjectKey    string    `db:"object_key" json:"object_key"`
	ResourceKind string    `db:"resource_kind" json:"resource_kind"` // image, video, auto
	FileURL      string    `db:"file_url" json:"file_url"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

const (
	OwnerTypeListing = "listing"
	OwnerTypeReel    = "reel"
	OwnerTypeTool    = "tool"

	FieldImages = "images"
	FieldVideos = "videos"
	FieldVideo  = "video"
	FieldImage  = "image"

	ResourceKindImage = "image"
	ResourceKindVideo = "video"
	ResourceKindAuto  = "auto"
)
