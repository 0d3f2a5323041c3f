package usecase

import (
	"context"
	"time"

	"github.com/coloby/coloby"
	"github.com/coloby/coloby/internal/domain"
)

// RoomRepository defines persistence/lookup for rooms and membership.
type RoomRepository interface {
	Create(ctx context.Context, room domain.Room) (domain.Room, error)
	GetBySlug(ctx context.Context, slug string) (domain.Room, error)
	GetByID(ctx context.Context, roomID uint) (domain.Room, error)
	GetBySlugWithDeleted(ctx context.Context, slug string) (domain.Room, error)
	List(ctx context.Context) ([]domain.Room, error)
	SoftDelete(ctx context.Context, roomID uint) error
	AddMember(ctx context.Context, roomID, userID uint) error
	RemoveMember(ctx context.Context, roomID, userID uint) error
	IsMember(ctx context.Context, roomID, userID uint) (bool, error)
	Members(ctx context.Context, roomID uint) ([]domain.User, error)
	AddLike(ctx context.Context, roomID, userID uint) error
	LikeCount(ctx context.Context, roomID uint) (int64, error)
}

// InitialVersionParams carries the four-row creation input for a fresh upload.
type InitialVersionParams struct {
	RoomID      uint
	UploaderID  uint
	ObjectKey   string
	Description string
	FileSize    int64
	ContentHash string
}

// CommitParams carries the commit+version append input.
type CommitParams struct {
	BranchID    uint
	UploaderID  uint
	ObjectKey   string
	Description string
	FileSize    int64
	ContentHash string
}

// VersionRepository defines storage operations for the file lineage graph.
// History rows are append-only; only UploadedFile live fields are mutable.
type VersionRepository interface {
	CreateInitialVersion(ctx context.Context, p InitialVersionParams) (domain.UploadedFile, error)
	CreateBranch(ctx context.Context, branch domain.Branch) (domain.Branch, error)
	AppendCommit(ctx context.Context, p CommitParams) (domain.Commit, domain.FileVersion, error)
	GetFile(ctx context.Context, fileID uint) (domain.UploadedFile, error)
	GetBranch(ctx context.Context, branchID uint) (domain.Branch, error)
	LatestVersion(ctx context.Context, branchID uint) (domain.FileVersion, error)
	UpdateLiveFields(ctx context.Context, fileID uint, objectKey, description string, fileSize int64) (domain.UploadedFile, error)
	ListFiles(ctx context.Context, roomID uint) ([]domain.UploadedFile, error)
	ListBranches(ctx context.Context, fileID uint) ([]domain.Branch, error)
	ListCommits(ctx context.Context, branchID uint) ([]domain.Commit, error)
	ListVersions(ctx context.Context, fileID uint) ([]domain.FileVersion, error)
	GrantAccess(ctx context.Context, fileID, userID uint) error
}

// MessageRepository defines persistence for chat messages.
type MessageRepository interface {
	Create(ctx context.Context, msg domain.Message) (domain.Message, error)
	History(ctx context.Context, roomID uint, limit int) ([]domain.Message, error)
}

// NotificationRepository defines persistence for activity events and tasks.
type NotificationRepository interface {
	Create(ctx context.Context, n domain.Notification) (domain.Notification, error)
	List(ctx context.Context, roomID uint, limit int) ([]domain.Notification, error)
	CreateTask(ctx context.Context, t domain.Task) (domain.Task, error)
	ListTasks(ctx context.Context, roomID uint) ([]domain.Task, error)
}

// UserRepository resolves identity rows provided by the auth collaborator.
type UserRepository interface {
	GetOrCreate(ctx context.Context, user domain.User) (domain.User, error)
	Get(ctx context.Context, userID uint) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
}

// BlobStore is the opaque content store keyed by object path.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Broadcaster fans events out to every connection in a room group.
// Publish must only be called after the corresponding row is persisted.
type Broadcaster interface {
	PublishChat(ctx context.Context, roomSlug string, ev coloby.ChatEvent) error
	PublishNotification(ctx context.Context, roomSlug string, env coloby.NotificationEnvelope) error
}
