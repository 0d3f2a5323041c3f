package usecase

import (
	"context"
	"errors"

	"github.com/coloby/coloby"
	"github.com/coloby/coloby/internal/domain"
)

const maxTokenRetries = 5

// RoomUsecase owns room lifecycle and the persistent membership set.
// Live presence is tracked separately by the presence service.
type RoomUsecase struct {
	repo  RoomRepository
	users UserRepository
}

func NewRoomUsecase(repo RoomRepository, users UserRepository) *RoomUsecase {
	return &RoomUsecase{repo: repo, users: users}
}

// Create persists a new room with a derived slug and a fresh link token.
// A unique-index collision on either is resolved by regenerating both and
// retrying the insert.
func (uc *RoomUsecase) Create(ctx context.Context, creatorID uint, name, description string, isPrivate bool) (domain.Room, error) {
	if name == "" {
		return domain.Room{}, domain.ValidationError{Reason: "room name is required"}
	}

	room := domain.Room{
		Name:        name,
		IsPrivate:   isPrivate,
		Description: description,
		CreatedBy:   creatorID,
	}

	var created domain.Room
	var err error
	for i := 0; i < maxTokenRetries; i++ {
		room.Slug = coloby.NewSlug(name)
		room.LinkToken = coloby.NewLinkToken()
		created, err = uc.repo.Create(ctx, room)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrConflict) {
			return domain.Room{}, err
		}
	}
	if err != nil {
		return domain.Room{}, err
	}

	// The creator is always a member for permission checks.
	if err := uc.repo.AddMember(ctx, created.ID, creatorID); err != nil {
		return domain.Room{}, err
	}

	return created, nil
}

func (uc *RoomUsecase) Get(ctx context.Context, slug string) (domain.Room, error) {
	room, err := uc.repo.GetBySlug(ctx, slug)
	if err != nil {
		return domain.Room{}, err
	}
	members, err := uc.repo.Members(ctx, room.ID)
	if err != nil {
		return domain.Room{}, err
	}
	room.Members = members

	likes, err := uc.repo.LikeCount(ctx, room.ID)
	if err != nil {
		return domain.Room{}, err
	}
	room.LikeCount = likes

	return room, nil
}

func (uc *RoomUsecase) List(ctx context.Context) ([]domain.Room, error) {
	return uc.repo.List(ctx)
}

func (uc *RoomUsecase) Delete(ctx context.Context, slug string, requesterID uint) error {
	room, err := uc.repo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if room.CreatedBy != requesterID {
		return domain.PermissionDeniedError{Reason: "only the creator may delete a room"}
	}
	return uc.repo.SoftDelete(ctx, room.ID)
}

// Join adds the user to the persistent member set. Joining is idempotent.
// Private rooms require the shared link token.
func (uc *RoomUsecase) Join(ctx context.Context, slug string, userID uint, linkToken string) (domain.Room, error) {
	room, err := uc.repo.GetBySlug(ctx, slug)
	if err != nil {
		return domain.Room{}, err
	}
	if room.IsPrivate && room.CreatedBy != userID && linkToken != room.LinkToken {
		return domain.Room{}, domain.PermissionDeniedError{Reason: "room is private"}
	}
	if err := uc.repo.AddMember(ctx, room.ID, userID); err != nil {
		return domain.Room{}, err
	}
	return room, nil
}

func (uc *RoomUsecase) Leave(ctx context.Context, slug string, userID uint) error {
	room, err := uc.repo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	return uc.repo.RemoveMember(ctx, room.ID, userID)
}

func (uc *RoomUsecase) Like(ctx context.Context, slug string, userID uint) error {
	room, err := uc.repo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	return uc.repo.AddLike(ctx, room.ID, userID)
}

// EnsureMember resolves a room and adds the user to the persistent member
// set, idempotently. Used by the websocket connect path.
func (uc *RoomUsecase) EnsureMember(ctx context.Context, slug string, userID uint) (domain.Room, error) {
	room, err := uc.repo.GetBySlug(ctx, slug)
	if err != nil {
		return domain.Room{}, err
	}
	if err := uc.repo.AddMember(ctx, room.ID, userID); err != nil {
		return domain.Room{}, err
	}
	return room, nil
}

// CanAccess reports whether the user may read room-scoped resources.
func (uc *RoomUsecase) CanAccess(ctx context.Context, slug string, userID uint) (bool, error) {
	room, err := uc.repo.GetBySlug(ctx, slug)
	if err != nil {
		return false, err
	}
	if !room.IsPrivate || room.CreatedBy == userID {
		return true, nil
	}
	return uc.repo.IsMember(ctx, room.ID, userID)
}
