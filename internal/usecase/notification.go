package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/coloby/coloby"
	"github.com/coloby/coloby/internal/domain"
)

// NotificationUsecase persists room activity events and fans the enriched
// envelope out to the room's notification channel.
type NotificationUsecase struct {
	repo     NotificationRepository
	messages MessageRepository
	rooms    RoomRepository
	users    UserRepository
	signal   Broadcaster
}

func NewNotificationUsecase(
	repo NotificationRepository,
	messages MessageRepository,
	rooms RoomRepository,
	users UserRepository,
	signal Broadcaster,
) *NotificationUsecase {
	return &NotificationUsecase{
		repo:     repo,
		messages: messages,
		rooms:    rooms,
		users:    users,
		signal:   signal,
	}
}

// Ingest decodes a raw notification frame, persists the rows for its kind,
// and broadcasts the enriched envelope. A decode failure is returned to the
// caller without persisting or broadcasting anything; the caller reports it
// to the originating connection only.
func (uc *NotificationUsecase) Ingest(ctx context.Context, roomSlug string, sender domain.User, raw []byte) (coloby.NotificationEnvelope, error) {
	n, err := coloby.DecodeNotification(raw)
	if err != nil {
		return coloby.NotificationEnvelope{}, domain.ValidationError{Reason: err.Error()}
	}

	room, err := uc.rooms.GetBySlug(ctx, roomSlug)
	if err != nil {
		return coloby.NotificationEnvelope{}, err
	}

	body, err := n.Payload()
	if err != nil {
		return coloby.NotificationEnvelope{}, domain.ValidationError{Reason: err.Error()}
	}

	switch n.Kind {
	case coloby.KindMessage:
		_, err = uc.messages.Create(ctx, domain.Message{
			RoomID: room.ID,
			UserID: sender.ID,
			Text:   n.Message.Message,
		})
	case coloby.KindTask:
		var assigneeID uint
		if n.Task.AssignedTo != "" {
			assignee, err := uc.users.GetByUsername(ctx, n.Task.AssignedTo)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return coloby.NotificationEnvelope{}, domain.ValidationError{Reason: "unknown assignee: " + n.Task.AssignedTo}
				}
				return coloby.NotificationEnvelope{}, err
			}
			assigneeID = assignee.ID
		}
		_, err = uc.repo.CreateTask(ctx, domain.Task{
			RoomID:      room.ID,
			Title:       n.Task.Title,
			Description: n.Task.Description,
			AssignedTo:  assigneeID,
			DueDate:     n.Task.DueDate,
		})
	}
	if err != nil {
		return coloby.NotificationEnvelope{}, err
	}

	if _, err := uc.repo.Create(ctx, domain.Notification{
		RoomID:   room.ID,
		SenderID: sender.ID,
		Kind:     string(n.Kind),
		Body:     string(body),
	}); err != nil {
		return coloby.NotificationEnvelope{}, err
	}

	env := coloby.NotificationEnvelope{
		Type:      n.Kind,
		Username:  sender.Username,
		Body:      body,
		Timestamp: time.Now().UTC(),
	}

	if err := uc.signal.PublishNotification(ctx, room.Slug, env); err != nil {
		return coloby.NotificationEnvelope{}, err
	}

	return env, nil
}

// EmitFileUpload publishes a file_upload event for a completed upload.
// The upload's contract is independent of this delivery; callers treat a
// returned error as advisory.
func (uc *NotificationUsecase) EmitFileUpload(ctx context.Context, roomSlug string, sender domain.User, file domain.UploadedFile) error {
	room, err := uc.rooms.GetBySlug(ctx, roomSlug)
	if err != nil {
		return err
	}

	payload := coloby.FileUploadPayload{
		FileName: file.ObjectKey,
		FileID:   file.ID,
		FileSize: file.FileSize,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if _, err := uc.repo.Create(ctx, domain.Notification{
		RoomID:   room.ID,
		SenderID: sender.ID,
		Kind:     string(coloby.KindFileUpload),
		Body:     string(body),
	}); err != nil {
		return err
	}

	return uc.signal.PublishNotification(ctx, room.Slug, coloby.NotificationEnvelope{
		Type:      coloby.KindFileUpload,
		Username:  sender.Username,
		Body:      body,
		Timestamp: time.Now().UTC(),
	})
}

// EmitFileUploadAsync runs EmitFileUpload on a fresh context so delivery
// outlives the originating request. Failures are logged and dropped.
func (uc *NotificationUsecase) EmitFileUploadAsync(roomSlug string, sender domain.User, file domain.UploadedFile) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := uc.EmitFileUpload(ctx, roomSlug, sender, file); err != nil {
			slog.Error("failed to emit file_upload notification",
				slog.String("module", "usecase"),
				slog.String("room", roomSlug),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// List returns the room's persisted notifications, newest first.
func (uc *NotificationUsecase) List(ctx context.Context, roomSlug string, limit int) ([]domain.Notification, error) {
	room, err := uc.rooms.GetBySlug(ctx, roomSlug)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > defaultHistoryLimit {
		limit = defaultHistoryLimit
	}
	return uc.repo.List(ctx, room.ID, limit)
}

// CreateTask persists a task created through the REST boundary.
func (uc *NotificationUsecase) CreateTask(ctx context.Context, roomSlug string, task domain.Task) (domain.Task, error) {
	if task.Title == "" {
		return domain.Task{}, domain.ValidationError{Reason: "task title is required"}
	}
	room, err := uc.rooms.GetBySlug(ctx, roomSlug)
	if err != nil {
		return domain.Task{}, err
	}
	task.RoomID = room.ID
	return uc.repo.CreateTask(ctx, task)
}

func (uc *NotificationUsecase) ListTasks(ctx context.Context, roomSlug string) ([]domain.Task, error) {
	room, err := uc.rooms.GetBySlug(ctx, roomSlug)
	if err != nil {
		return nil, err
	}
	return uc.repo.ListTasks(ctx, room.ID)
}
