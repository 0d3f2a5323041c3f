package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/coloby/coloby/internal/domain"
	"github.com/coloby/coloby/internal/infra/database/models"
)

const roomCacheTTL = 60 // seconds

type RoomRepository struct {
	db *gorm.DB
	mc *memcache.Client
}

func NewRoomRepository(db *gorm.DB, mc *memcache.Client) *RoomRepository {
	return &RoomRepository{db: db, mc: mc}
}

func (r *RoomRepository) Create(ctx context.Context, room domain.Room) (domain.Room, error) {
	row := models.Room{
		Name:        room.Name,
		Slug:        room.Slug,
		LinkToken:   room.LinkToken,
		IsPrivate:   room.IsPrivate,
		Description: room.Description,
		CreatedByID: room.CreatedBy,
	}
	err := r.db.WithContext(ctx).Create(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Room{}, domain.ConflictError{Resource: "room"}
		}
		return domain.Room{}, err
	}
	return roomToDomain(row), nil
}

// GetBySlug resolves a non-deleted room, read-through cached in memcached.
func (r *RoomRepository) GetBySlug(ctx context.Context, slug string) (domain.Room, error) {

	// The cache stores the model row, not the domain type: domain.Room hides
	// the link token from JSON, and a cached lookup must still carry it.
	if r.mc != nil {
		if item, err := r.mc.Get(roomCacheKey(slug)); err == nil {
			var cached models.Room
			if err := json.Unmarshal(item.Value, &cached); err == nil {
				return roomToDomain(cached), nil
			}
		}
	}

	var row models.Room
	err := r.db.WithContext(ctx).
		Where("slug = ? AND deleted_at IS NULL", slug).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Room{}, domain.NotFoundError{Resource: "room"}
		}
		return domain.Room{}, err
	}

	if r.mc != nil {
		if serialized, err := json.Marshal(row); err == nil {
			r.mc.Set(&memcache.Item{
				Key:        roomCacheKey(slug),
				Value:      serialized,
				Expiration: roomCacheTTL,
			})
		}
	}
	return roomToDomain(row), nil
}

func (r *RoomRepository) GetByID(ctx context.Context, roomID uint) (domain.Room, error) {
	var row models.Room
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", roomID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Room{}, domain.NotFoundError{Resource: "room"}
		}
		return domain.Room{}, err
	}
	return roomToDomain(row), nil
}

// GetBySlugWithDeleted is the explicit accessor that skips the soft-delete
// scope. Never the default lookup path.
func (r *RoomRepository) GetBySlugWithDeleted(ctx context.Context, slug string) (domain.Room, error) {
	var row models.Room
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Room{}, domain.NotFoundError{Resource: "room"}
		}
		return domain.Room{}, err
	}
	return roomToDomain(row), nil
}

func (r *RoomRepository) List(ctx context.Context) ([]domain.Room, error) {
	var rows []models.Room
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Order("c_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	rooms := make([]domain.Room, 0, len(rows))
	for _, row := range rows {
		rooms = append(rooms, roomToDomain(row))
	}
	return rooms, nil
}

func (r *RoomRepository) SoftDelete(ctx context.Context, roomID uint) error {
	var row models.Room
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", roomID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFoundError{Resource: "room"}
		}
		return err
	}

	now := time.Now().UTC()
	err = r.db.WithContext(ctx).
		Model(&models.Room{}).
		Where("id = ?", roomID).
		Update("deleted_at", &now).Error
	if err != nil {
		return err
	}

	if r.mc != nil {
		r.mc.Delete(roomCacheKey(row.Slug))
	}
	return nil
}

func (r *RoomRepository) AddMember(ctx context.Context, roomID, userID uint) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		DoNothing: true,
	}).Create(&models.RoomMember{
		RoomID: roomID,
		UserID: userID,
	}).Error
}

func (r *RoomRepository) RemoveMember(ctx context.Context, roomID, userID uint) error {
	return r.db.WithContext(ctx).
		Delete(&models.RoomMember{}, "room_id = ? AND user_id = ?", roomID, userID).Error
}

func (r *RoomRepository) IsMember(ctx context.Context, roomID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RoomMember{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *RoomRepository) Members(ctx context.Context, roomID uint) ([]domain.User, error) {
	var rows []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN room_members ON room_members.user_id = users.id").
		Where("room_members.room_id = ?", roomID).
		Order("users.username ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, domain.User{ID: row.ID, Username: row.Username})
	}
	return users, nil
}

func (r *RoomRepository) AddLike(ctx context.Context, roomID, userID uint) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		DoNothing: true,
	}).Create(&models.RoomLike{
		RoomID: roomID,
		UserID: userID,
	}).Error
}

func (r *RoomRepository) LikeCount(ctx context.Context, roomID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RoomLike{}).
		Where("room_id = ?", roomID).
		Count(&count).Error
	return count, err
}

func roomCacheKey(slug string) string {
	return "room:" + slug
}

func roomToDomain(m models.Room) domain.Room {
	return domain.Room{
		ID:          m.ID,
		Name:        m.Name,
		Slug:        m.Slug,
		LinkToken:   m.LinkToken,
		IsPrivate:   m.IsPrivate,
		Description: m.Description,
		CreatedBy:   m.CreatedByID,
		CreatedAt:   m.CDate,
	}
}
