package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/coloby/coloby/internal/domain"
	"github.com/coloby/coloby/internal/infra/database/models"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, msg domain.Message) (domain.Message, error) {
	row := models.Message{
		RoomID:   msg.RoomID,
		UserID:   msg.UserID,
		Text:     msg.Text,
		MediaKey: msg.MediaKey,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Message{}, err
	}
	return messageToDomain(row, ""), nil
}

// History returns the room's latest messages in ascending creation order.
func (r *MessageRepository) History(ctx context.Context, roomID uint, limit int) ([]domain.Message, error) {

	type messageRow struct {
		models.Message
		Username string
	}

	var rows []messageRow
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Select("messages.*, users.username AS username").
		Joins("LEFT JOIN users ON users.id = messages.user_id").
		Where("messages.room_id = ? AND messages.deleted_at IS NULL", roomID).
		Order("messages.c_date DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	// Newest page, oldest first.
	msgs := make([]domain.Message, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		msgs = append(msgs, messageToDomain(rows[i].Message, rows[i].Username))
	}
	return msgs, nil
}

func messageToDomain(m models.Message, username string) domain.Message {
	return domain.Message{
		ID:        m.ID,
		RoomID:    m.RoomID,
		UserID:    m.UserID,
		Username:  username,
		Text:      m.Text,
		MediaKey:  m.MediaKey,
		CreatedAt: m.CDate,
	}
}
