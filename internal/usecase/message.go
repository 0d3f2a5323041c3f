package usecase

import (
	"context"

	"github.com/coloby/coloby"
	"github.com/coloby/coloby/internal/domain"
)

const defaultHistoryLimit = 100

// MessageUsecase persists chat messages and fans them out to the room group.
// Broadcast never precedes successful persistence, so a history fetch issued
// after delivery always includes the delivered message.
type MessageUsecase struct {
	repo   MessageRepository
	rooms  RoomRepository
	signal Broadcaster
}

func NewMessageUsecase(repo MessageRepository, rooms RoomRepository, signal Broadcaster) *MessageUsecase {
	return &MessageUsecase{repo: repo, rooms: rooms, signal: signal}
}

// Post persists an inbound chat message and then broadcasts it to every
// connection in the room group, the sender included.
func (uc *MessageUsecase) Post(ctx context.Context, roomSlug string, sender domain.User, text string) (domain.Message, error) {
	if text == "" {
		return domain.Message{}, domain.ValidationError{Reason: "message is empty"}
	}

	room, err := uc.rooms.GetBySlug(ctx, roomSlug)
	if err != nil {
		return domain.Message{}, err
	}

	msg, err := uc.repo.Create(ctx, domain.Message{
		RoomID: room.ID,
		UserID: sender.ID,
		Text:   text,
	})
	if err != nil {
		return domain.Message{}, err
	}

	err = uc.signal.PublishChat(ctx, room.Slug, coloby.ChatEvent{
		Message:  msg.Text,
		Username: sender.Username,
	})
	if err != nil {
		return domain.Message{}, err
	}

	return msg, nil
}

// History returns the room's messages in ascending creation order.
func (uc *MessageUsecase) History(ctx context.Context, roomSlug string, limit int) ([]domain.Message, error) {
	room, err := uc.rooms.GetBySlug(ctx, roomSlug)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > defaultHistoryLimit {
		limit = defaultHistoryLimit
	}
	return uc.repo.History(ctx, room.ID, limit)
}
