package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/coloby/coloby/internal/domain"
	"github.com/coloby/coloby/internal/infra/database/models"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	row := models.Notification{
		RoomID:   n.RoomID,
		SenderID: n.SenderID,
		Kind:     n.Kind,
		Body:     n.Body,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Notification{}, err
	}
	return notificationToDomain(row), nil
}

func (r *NotificationRepository) List(ctx context.Context, roomID uint, limit int) ([]domain.Notification, error) {
	var rows []models.Notification
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("c_date DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	notifications := make([]domain.Notification, 0, len(rows))
	for _, row := range rows {
		notifications = append(notifications, notificationToDomain(row))
	}
	return notifications, nil
}

func (r *NotificationRepository) CreateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	row := models.Task{
		RoomID:       t.RoomID,
		Title:        t.Title,
		Description:  t.Description,
		AssignedToID: t.AssignedTo,
		DueDate:      t.DueDate,
		Completed:    t.Completed,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Task{}, err
	}
	return taskToDomain(row), nil
}

func (r *NotificationRepository) ListTasks(ctx context.Context, roomID uint) ([]domain.Task, error) {
	var rows []models.Task
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND deleted_at IS NULL", roomID).
		Order("c_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	tasks := make([]domain.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, taskToDomain(row))
	}
	return tasks, nil
}

func notificationToDomain(m models.Notification) domain.Notification {
	return domain.Notification{
		ID:        m.ID,
		RoomID:    m.RoomID,
		SenderID:  m.SenderID,
		Kind:      m.Kind,
		Body:      m.Body,
		CreatedAt: m.CDate,
	}
}

func taskToDomain(m models.Task) domain.Task {
	return domain.Task{
		ID:          m.ID,
		RoomID:      m.RoomID,
		Title:       m.Title,
		Description: m.Description,
		AssignedTo:  m.AssignedToID,
		DueDate:     m.DueDate,
		Completed:   m.Completed,
		CreatedAt:   m.CDate,
	}
}
