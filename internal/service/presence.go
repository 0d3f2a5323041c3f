package service

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// PresenceService tracks which users are currently connected to a room.
// Presence is ephemeral and churned by connect/disconnect; it is distinct
// from the persistent member set, which gates access and never auto-shrinks.
type PresenceService struct {
	rdb *redis.Client
}

func NewPresenceService(redisClient *redis.Client) *PresenceService {
	return &PresenceService{
		rdb: redisClient,
	}
}

func presenceKey(roomSlug string) string {
	return "presence:" + roomSlug
}

// Join adds the user to the room's presence set. Idempotent.
func (s *PresenceService) Join(ctx context.Context, roomSlug, username string) error {
	return s.rdb.SAdd(ctx, presenceKey(roomSlug), username).Err()
}

// Leave removes the user from the room's presence set. Idempotent.
func (s *PresenceService) Leave(ctx context.Context, roomSlug, username string) error {
	return s.rdb.SRem(ctx, presenceKey(roomSlug), username).Err()
}

// List returns the usernames currently connected to the room.
func (s *PresenceService) List(ctx context.Context, roomSlug string) ([]string, error) {
	return s.rdb.SMembers(ctx, presenceKey(roomSlug)).Result()
}
