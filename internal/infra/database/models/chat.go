package models

import (
	"time"
)

type Message struct {
	ID        uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	RoomID    uint       `json:"roomID" gorm:"index;not null"`
	Room      Room       `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	UserID    uint       `json:"userID" gorm:"index"`
	User      User       `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	Text      string     `json:"text" gorm:"type:text"`
	MediaKey  string     `json:"mediaKey" gorm:"type:text"`
	CDate     time.Time  `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp();index"`
	DeletedAt *time.Time `json:"-" gorm:"type:timestamp with time zone;index"`
}

type Notification struct {
	ID       uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	RoomID   uint      `json:"roomID" gorm:"index;not null"`
	Room     Room      `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	SenderID uint      `json:"senderID" gorm:"index"`
	Sender   User      `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	Kind     string    `json:"kind" gorm:"type:text;not null"`
	Body     string    `json:"body" gorm:"type:text"`
	CDate    time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp();index"`
}

type Task struct {
	ID           uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	RoomID       uint       `json:"roomID" gorm:"index;not null"`
	Room         Room       `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	Title        string     `json:"title" gorm:"type:text;not null"`
	Description  string     `json:"description" gorm:"type:text"`
	AssignedToID uint       `json:"assignedTo" gorm:"index"`
	DueDate      string     `json:"dueDate" gorm:"type:text"`
	Completed    bool       `json:"completed" gorm:"type:boolean;not null;default:false"`
	CDate        time.Time  `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	DeletedAt    *time.Time `json:"-" gorm:"type:timestamp with time zone;index"`
}
