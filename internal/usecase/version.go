package usecase

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/coloby/coloby"
	"github.com/coloby/coloby/internal/domain"
)

var tracer = otel.Tracer("usecase")

const presignTTL = 15 * time.Minute

// VersionUsecase owns the lineage of uploaded files: the original upload,
// its branches, and the ordered commits/versions within each branch.
type VersionUsecase struct {
	repo  VersionRepository
	rooms RoomRepository
	blobs BlobStore
}

func NewVersionUsecase(repo VersionRepository, rooms RoomRepository, blobs BlobStore) *VersionUsecase {
	return &VersionUsecase{repo: repo, rooms: rooms, blobs: blobs}
}

// CreateInitialVersion stores the blob and initializes the version history:
// one UploadedFile, its master branch, an "Initial commit", and one version,
// created in a single transaction.
func (uc *VersionUsecase) CreateInitialVersion(ctx context.Context, uploaderID uint, roomSlug string, blob []byte, description string) (domain.UploadedFile, error) {
	ctx, span := tracer.Start(ctx, "Version.Usecase.CreateInitialVersion")
	defer span.End()

	if len(blob) == 0 {
		return domain.UploadedFile{}, domain.ValidationError{Reason: "uploaded file is empty"}
	}

	room, err := uc.rooms.GetBySlug(ctx, roomSlug)
	if err != nil {
		return domain.UploadedFile{}, err
	}

	if err := uc.checkRoomAccess(ctx, room, uploaderID); err != nil {
		return domain.UploadedFile{}, err
	}

	key := coloby.NewObjectKey("uploads")
	if err := uc.blobs.Put(ctx, key, blob); err != nil {
		span.RecordError(err)
		return domain.UploadedFile{}, err
	}

	file, err := uc.repo.CreateInitialVersion(ctx, InitialVersionParams{
		RoomID:      room.ID,
		UploaderID:  uploaderID,
		ObjectKey:   key,
		Description: description,
		FileSize:    int64(len(blob)),
		ContentHash: coloby.ContentHash(blob),
	})
	if err != nil {
		span.RecordError(err)
		return domain.UploadedFile{}, err
	}

	return file, nil
}

// CreateBranch opens a new named line of revision for an existing file.
// Explicit branches carry no uniqueness constraint.
func (uc *VersionUsecase) CreateBranch(ctx context.Context, fileID, creatorID uint, content, description string) (domain.Branch, error) {
	ctx, span := tracer.Start(ctx, "Version.Usecase.CreateBranch")
	defer span.End()

	file, err := uc.repo.GetFile(ctx, fileID)
	if err != nil {
		return domain.Branch{}, err
	}

	if err := uc.checkRoomAccessByID(ctx, file.RoomID, creatorID); err != nil {
		return domain.Branch{}, err
	}

	return uc.repo.CreateBranch(ctx, domain.Branch{
		FileID:      file.ID,
		RoomID:      file.RoomID,
		CreatedBy:   creatorID,
		Content:     content,
		Description: description,
	})
}

// Commit appends a commit+version pair to an existing branch.
func (uc *VersionUsecase) Commit(ctx context.Context, branchID, uploaderID uint, blob []byte, description string) (domain.Commit, domain.FileVersion, error) {
	ctx, span := tracer.Start(ctx, "Version.Usecase.Commit")
	defer span.End()

	if len(blob) == 0 {
		return domain.Commit{}, domain.FileVersion{}, domain.ValidationError{Reason: "commit content is empty"}
	}

	branch, err := uc.repo.GetBranch(ctx, branchID)
	if err != nil {
		return domain.Commit{}, domain.FileVersion{}, err
	}

	if err := uc.checkRoomAccessByID(ctx, branch.RoomID, uploaderID); err != nil {
		return domain.Commit{}, domain.FileVersion{}, err
	}

	key := coloby.NewObjectKey("uploads/versions")
	if err := uc.blobs.Put(ctx, key, blob); err != nil {
		span.RecordError(err)
		return domain.Commit{}, domain.FileVersion{}, err
	}

	return uc.repo.AppendCommit(ctx, CommitParams{
		BranchID:    branchID,
		UploaderID:  uploaderID,
		ObjectKey:   key,
		Description: description,
		FileSize:    int64(len(blob)),
		ContentHash: coloby.ContentHash(blob),
	})
}

// SwitchBranch overwrites the file's live fields with the latest version on
// the target branch. Destructive, non-branching checkout: prior live values
// survive only through already-recorded versions, and no commit is created.
// Concurrent switches on the same file are last-write-wins.
func (uc *VersionUsecase) SwitchBranch(ctx context.Context, fileID, branchID, requesterID uint) (domain.UploadedFile, error) {
	ctx, span := tracer.Start(ctx, "Version.Usecase.SwitchBranch")
	defer span.End()

	file, err := uc.repo.GetFile(ctx, fileID)
	if err != nil {
		return domain.UploadedFile{}, err
	}

	if err := uc.checkRoomAccessByID(ctx, file.RoomID, requesterID); err != nil {
		return domain.UploadedFile{}, err
	}

	branch, err := uc.repo.GetBranch(ctx, branchID)
	if err != nil {
		return domain.UploadedFile{}, err
	}
	if branch.FileID != file.ID {
		return domain.UploadedFile{}, domain.NotFoundError{Resource: "branch"}
	}

	latest, err := uc.repo.LatestVersion(ctx, branch.ID)
	if err != nil {
		return domain.UploadedFile{}, err
	}

	return uc.repo.UpdateLiveFields(ctx, file.ID, latest.ObjectKey, latest.Description, latest.FileSize)
}

// GetFile returns the current materialized state of a file.
func (uc *VersionUsecase) GetFile(ctx context.Context, fileID uint) (domain.UploadedFile, error) {
	return uc.repo.GetFile(ctx, fileID)
}

// DownloadURL returns a presigned link to a file's current content.
func (uc *VersionUsecase) DownloadURL(ctx context.Context, fileID uint) (string, error) {
	file, err := uc.repo.GetFile(ctx, fileID)
	if err != nil {
		return "", err
	}
	return uc.blobs.PresignGet(ctx, file.ObjectKey, presignTTL)
}

func (uc *VersionUsecase) ListFiles(ctx context.Context, roomSlug string) ([]domain.UploadedFile, error) {
	room, err := uc.rooms.GetBySlug(ctx, roomSlug)
	if err != nil {
		return nil, err
	}
	return uc.repo.ListFiles(ctx, room.ID)
}

func (uc *VersionUsecase) ListBranches(ctx context.Context, fileID uint) ([]domain.Branch, error) {
	if _, err := uc.repo.GetFile(ctx, fileID); err != nil {
		return nil, err
	}
	return uc.repo.ListBranches(ctx, fileID)
}

func (uc *VersionUsecase) ListCommits(ctx context.Context, branchID uint) ([]domain.Commit, error) {
	if _, err := uc.repo.GetBranch(ctx, branchID); err != nil {
		return nil, err
	}
	return uc.repo.ListCommits(ctx, branchID)
}

func (uc *VersionUsecase) ListVersions(ctx context.Context, fileID uint) ([]domain.FileVersion, error) {
	if _, err := uc.repo.GetFile(ctx, fileID); err != nil {
		return nil, err
	}
	return uc.repo.ListVersions(ctx, fileID)
}

// GrantAccess adds a user to a file's per-user access set.
func (uc *VersionUsecase) GrantAccess(ctx context.Context, fileID, userID uint) error {
	if _, err := uc.repo.GetFile(ctx, fileID); err != nil {
		return err
	}
	return uc.repo.GrantAccess(ctx, fileID, userID)
}

func (uc *VersionUsecase) checkRoomAccessByID(ctx context.Context, roomID, userID uint) error {
	room, err := uc.rooms.GetByID(ctx, roomID)
	if err != nil {
		return err
	}
	return uc.checkRoomAccess(ctx, room, userID)
}

func (uc *VersionUsecase) checkRoomAccess(ctx context.Context, room domain.Room, userID uint) error {
	if !room.IsPrivate || room.CreatedBy == userID {
		return nil
	}
	member, err := uc.rooms.IsMember(ctx, room.ID, userID)
	if err != nil {
		return err
	}
	if !member {
		return domain.PermissionDeniedError{Reason: "room is private"}
	}
	return nil
}
