package models

import (
	"time"
)

type UploadedFile struct {
	ID           uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	RoomID       uint       `json:"roomID" gorm:"index;not null"`
	Room         Room       `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	UploadedByID uint       `json:"uploadedBy" gorm:"index"`
	UploadedBy   User       `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	ObjectKey    string     `json:"objectKey" gorm:"type:text;not null"`
	Content      string     `json:"content" gorm:"type:text"`
	Description  string     `json:"description" gorm:"type:text"`
	FileSize     int64      `json:"fileSize" gorm:"not null"`
	CDate        time.Time  `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	DeletedAt    *time.Time `json:"-" gorm:"type:timestamp with time zone;index"`
}

// Branch carries a partial unique index over the (file, creator, room)
// triple so the implicit master branch is created with insert-or-fetch
// semantics instead of check-then-create. Explicit branches (is_master
// false) are unconstrained.
type Branch struct {
	ID             uint         `json:"id" gorm:"primaryKey;autoIncrement"`
	OriginalFileID uint         `json:"originalFileID" gorm:"index;not null;uniqueIndex:branch_master_key,where:is_master"`
	OriginalFile   UploadedFile `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	RoomID         uint         `json:"roomID" gorm:"index;not null;uniqueIndex:branch_master_key"`
	Room           Room         `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	CreatedByID    uint         `json:"createdBy" gorm:"index;uniqueIndex:branch_master_key"`
	CreatedBy      User         `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	IsMaster       bool         `json:"isMaster" gorm:"type:boolean;not null;default:false"`
	Content        string       `json:"content" gorm:"type:text"`
	Description    string       `json:"description" gorm:"type:text"`
	CDate          time.Time    `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Commit struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	BranchID    uint      `json:"branchID" gorm:"index;not null"`
	Branch      Branch    `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	UploaderID  uint      `json:"uploaderID" gorm:"index"`
	Uploader    User      `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	Description string    `json:"description" gorm:"type:text"`
	Timestamp   time.Time `json:"timestamp" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp();index"`
}

// FileVersion rows are immutable snapshots, one per commit.
type FileVersion struct {
	ID             uint         `json:"id" gorm:"primaryKey;autoIncrement"`
	UploadedFileID uint         `json:"uploadedFileID" gorm:"index;not null"`
	UploadedFile   UploadedFile `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	RoomID         uint         `json:"roomID" gorm:"index;not null"`
	Room           Room         `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	CommitID       uint         `json:"commitID" gorm:"uniqueIndex;not null"`
	Commit         Commit       `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	ObjectKey      string       `json:"objectKey" gorm:"type:text;not null"`
	ContentHash    string       `json:"contentHash" gorm:"type:text"`
	Description    string       `json:"description" gorm:"type:text"`
	FileSize       int64        `json:"fileSize" gorm:"not null"`
}

type FileAccess struct {
	UploadedFileID uint         `json:"uploadedFileID" gorm:"primaryKey"`
	UploadedFile   UploadedFile `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	UserID         uint         `json:"userID" gorm:"primaryKey;index"`
	User           User         `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	CDate          time.Time    `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
