package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/coloby/coloby"
)

// SignalService is the room-group broadcast layer. A room group is a redis
// pub/sub channel; every live connection in the room subscribes to it, so
// delivery order within one room equals publish order.
type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func chatChannel(roomSlug string) string {
	return "chat:" + roomSlug
}

func notifyChannel(roomSlug string) string {
	return "notify:" + roomSlug
}

func (s *SignalService) PublishChat(ctx context.Context, roomSlug string, ev coloby.ChatEvent) error {

	jsonstr, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, chatChannel(roomSlug), jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

func (s *SignalService) PublishNotification(ctx context.Context, roomSlug string, env coloby.NotificationEnvelope) error {

	jsonstr, err := json.Marshal(env)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, notifyChannel(roomSlug), jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// RealtimeChat subscribes to the room's chat channel and forwards events to
// output until ctx is cancelled. Run as one goroutine per connection.
func (s *SignalService) RealtimeChat(ctx context.Context, roomSlug string, output chan<- coloby.ChatEvent) {
	pubsub := s.rdb.Subscribe(ctx, chatChannel(roomSlug))
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev coloby.ChatEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				slog.ErrorContext(
					ctx, "Error decoding chat event",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}
			select {
			case output <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

// RealtimeNotifications subscribes to the room's notification channel and
// forwards envelopes to output until ctx is cancelled.
func (s *SignalService) RealtimeNotifications(ctx context.Context, roomSlug string, output chan<- coloby.NotificationEnvelope) {
	pubsub := s.rdb.Subscribe(ctx, notifyChannel(roomSlug))
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env coloby.NotificationEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				slog.ErrorContext(
					ctx, "Error decoding notification envelope",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}
			select {
			case output <- env:
			case <-ctx.Done():
				return
			}
		}
	}
}
