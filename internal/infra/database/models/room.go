package models

import (
	"time"
)

type User struct {
	ID       uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Username string `json:"username" gorm:"type:text;uniqueIndex;not null"`
	Email    string `json:"email" gorm:"type:text"`
}

type Room struct {
	ID          uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string     `json:"name" gorm:"type:text;not null"`
	Slug        string     `json:"slug" gorm:"type:text;uniqueIndex;not null"`
	LinkToken   string     `json:"linkToken" gorm:"type:text;uniqueIndex;not null"`
	IsPrivate   bool       `json:"isPrivate" gorm:"type:boolean;not null;default:false"`
	Description string     `json:"description" gorm:"type:text"`
	CreatedByID uint       `json:"createdBy" gorm:"index"`
	CreatedBy   User       `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	CDate       time.Time  `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	DeletedAt   *time.Time `json:"-" gorm:"type:timestamp with time zone;index"`
}

type RoomMember struct {
	RoomID uint      `json:"roomID" gorm:"primaryKey"`
	Room   Room      `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	UserID uint      `json:"userID" gorm:"primaryKey;index"`
	User   User      `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	CDate  time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type RoomLike struct {
	RoomID uint      `json:"roomID" gorm:"primaryKey"`
	Room   Room      `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	UserID uint      `json:"userID" gorm:"primaryKey;index"`
	User   User      `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	CDate  time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
