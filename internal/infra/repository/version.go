package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/coloby/coloby/internal/domain"
	"github.com/coloby/coloby/internal/infra/database/models"
	"github.com/coloby/coloby/internal/usecase"
)

type VersionRepository struct {
	db *gorm.DB
}

func NewVersionRepository(db *gorm.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

// CreateInitialVersion creates the UploadedFile, its master branch, the
// initial commit, and the first version in one transaction. The master
// branch insert is insert-or-fetch against the partial unique index, so two
// concurrent uploads by the same uploader never produce two masters.
func (r *VersionRepository) CreateInitialVersion(ctx context.Context, p usecase.InitialVersionParams) (domain.UploadedFile, error) {

	file := models.UploadedFile{
		RoomID:       p.RoomID,
		UploadedByID: p.UploaderID,
		ObjectKey:    p.ObjectKey,
		Description:  p.Description,
		FileSize:     p.FileSize,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		if err := tx.Create(&file).Error; err != nil {
			return err
		}

		branch := models.Branch{
			OriginalFileID: file.ID,
			RoomID:         p.RoomID,
			CreatedByID:    p.UploaderID,
			IsMaster:       true,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "original_file_id"},
				{Name: "room_id"},
				{Name: "created_by_id"},
			},
			TargetWhere: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "is_master"},
			}},
			DoNothing: true,
		}).Create(&branch).Error
		if err != nil {
			return err
		}
		if branch.ID == 0 {
			err = tx.Where("original_file_id = ? AND created_by_id = ? AND room_id = ? AND is_master",
				file.ID, p.UploaderID, p.RoomID).
				Take(&branch).Error
			if err != nil {
				return err
			}
		}

		commit := models.Commit{
			BranchID:    branch.ID,
			UploaderID:  p.UploaderID,
			Description: "Initial commit",
		}
		if err := tx.Create(&commit).Error; err != nil {
			return err
		}

		version := models.FileVersion{
			UploadedFileID: file.ID,
			RoomID:         p.RoomID,
			CommitID:       commit.ID,
			ObjectKey:      p.ObjectKey,
			ContentHash:    p.ContentHash,
			Description:    p.Description,
			FileSize:       p.FileSize,
		}
		return tx.Create(&version).Error
	})
	if err != nil {
		return domain.UploadedFile{}, err
	}

	return fileToDomain(file), nil
}

func (r *VersionRepository) CreateBranch(ctx context.Context, b domain.Branch) (domain.Branch, error) {
	branch := models.Branch{
		OriginalFileID: b.FileID,
		RoomID:         b.RoomID,
		CreatedByID:    b.CreatedBy,
		Content:        b.Content,
		Description:    b.Description,
	}
	if err := r.db.WithContext(ctx).Create(&branch).Error; err != nil {
		return domain.Branch{}, err
	}
	return branchToDomain(branch), nil
}

// AppendCommit creates the commit+version pair in one transaction.
func (r *VersionRepository) AppendCommit(ctx context.Context, p usecase.CommitParams) (domain.Commit, domain.FileVersion, error) {

	var commit models.Commit
	var version models.FileVersion

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var branch models.Branch
		err := tx.Where("id = ?", p.BranchID).Take(&branch).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFoundError{Resource: "branch"}
			}
			return err
		}

		commit = models.Commit{
			BranchID:    branch.ID,
			UploaderID:  p.UploaderID,
			Description: p.Description,
		}
		if err := tx.Create(&commit).Error; err != nil {
			return err
		}

		version = models.FileVersion{
			UploadedFileID: branch.OriginalFileID,
			RoomID:         branch.RoomID,
			CommitID:       commit.ID,
			ObjectKey:      p.ObjectKey,
			ContentHash:    p.ContentHash,
			Description:    p.Description,
			FileSize:       p.FileSize,
		}
		return tx.Create(&version).Error
	})
	if err != nil {
		return domain.Commit{}, domain.FileVersion{}, err
	}

	return commitToDomain(commit), versionToDomain(version), nil
}

func (r *VersionRepository) GetFile(ctx context.Context, fileID uint) (domain.UploadedFile, error) {
	var file models.UploadedFile
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", fileID).
		Take(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UploadedFile{}, domain.NotFoundError{Resource: "file"}
		}
		return domain.UploadedFile{}, err
	}
	return fileToDomain(file), nil
}

func (r *VersionRepository) GetBranch(ctx context.Context, branchID uint) (domain.Branch, error) {
	var branch models.Branch
	err := r.db.WithContext(ctx).
		Where("id = ?", branchID).
		Take(&branch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Branch{}, domain.NotFoundError{Resource: "branch"}
		}
		return domain.Branch{}, err
	}
	return branchToDomain(branch), nil
}

// LatestVersion resolves the version attached to the max-timestamp commit on
// the branch. A branch with no commits is reported as NotFound.
func (r *VersionRepository) LatestVersion(ctx context.Context, branchID uint) (domain.FileVersion, error) {
	var commit models.Commit
	err := r.db.WithContext(ctx).
		Where("branch_id = ?", branchID).
		Order("timestamp DESC").
		Take(&commit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.FileVersion{}, domain.NotFoundError{Resource: "commit"}
		}
		return domain.FileVersion{}, err
	}

	var version models.FileVersion
	err = r.db.WithContext(ctx).
		Where("commit_id = ?", commit.ID).
		Take(&version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.FileVersion{}, domain.NotFoundError{Resource: "version"}
		}
		return domain.FileVersion{}, err
	}
	return versionToDomain(version), nil
}

// UpdateLiveFields overwrites the file's mutable fields from a version's.
// Last write wins; the version rows themselves are never touched.
func (r *VersionRepository) UpdateLiveFields(ctx context.Context, fileID uint, objectKey, description string, fileSize int64) (domain.UploadedFile, error) {
	result := r.db.WithContext(ctx).
		Model(&models.UploadedFile{}).
		Where("id = ? AND deleted_at IS NULL", fileID).
		Updates(map[string]any{
			"object_key":  objectKey,
			"description": description,
			"file_size":   fileSize,
		})
	if result.Error != nil {
		return domain.UploadedFile{}, result.Error
	}
	if result.RowsAffected == 0 {
		return domain.UploadedFile{}, domain.NotFoundError{Resource: "file"}
	}
	return r.GetFile(ctx, fileID)
}

func (r *VersionRepository) ListFiles(ctx context.Context, roomID uint) ([]domain.UploadedFile, error) {
	var rows []models.UploadedFile
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND deleted_at IS NULL", roomID).
		Order("c_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	files := make([]domain.UploadedFile, 0, len(rows))
	for _, row := range rows {
		files = append(files, fileToDomain(row))
	}
	return files, nil
}

func (r *VersionRepository) ListBranches(ctx context.Context, fileID uint) ([]domain.Branch, error) {
	var rows []models.Branch
	err := r.db.WithContext(ctx).
		Where("original_file_id = ?", fileID).
		Order("c_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	branches := make([]domain.Branch, 0, len(rows))
	for _, row := range rows {
		branches = append(branches, branchToDomain(row))
	}
	return branches, nil
}

func (r *VersionRepository) ListCommits(ctx context.Context, branchID uint) ([]domain.Commit, error) {
	var rows []models.Commit
	err := r.db.WithContext(ctx).
		Where("branch_id = ?", branchID).
		Order("timestamp ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	commits := make([]domain.Commit, 0, len(rows))
	for _, row := range rows {
		commits = append(commits, commitToDomain(row))
	}
	return commits, nil
}

func (r *VersionRepository) ListVersions(ctx context.Context, fileID uint) ([]domain.FileVersion, error) {
	var rows []models.FileVersion
	err := r.db.WithContext(ctx).
		Where("uploaded_file_id = ?", fileID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	versions := make([]domain.FileVersion, 0, len(rows))
	for _, row := range rows {
		versions = append(versions, versionToDomain(row))
	}
	return versions, nil
}

func (r *VersionRepository) GrantAccess(ctx context.Context, fileID, userID uint) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		DoNothing: true,
	}).Create(&models.FileAccess{
		UploadedFileID: fileID,
		UserID:         userID,
	}).Error
}

func fileToDomain(m models.UploadedFile) domain.UploadedFile {
	return domain.UploadedFile{
		ID:          m.ID,
		RoomID:      m.RoomID,
		UploadedBy:  m.UploadedByID,
		ObjectKey:   m.ObjectKey,
		Content:     m.Content,
		Description: m.Description,
		FileSize:    m.FileSize,
		UploadedAt:  m.CDate,
	}
}

func branchToDomain(m models.Branch) domain.Branch {
	return domain.Branch{
		ID:          m.ID,
		FileID:      m.OriginalFileID,
		RoomID:      m.RoomID,
		CreatedBy:   m.CreatedByID,
		IsMaster:    m.IsMaster,
		Content:     m.Content,
		Description: m.Description,
		CreatedAt:   m.CDate,
	}
}

func commitToDomain(m models.Commit) domain.Commit {
	return domain.Commit{
		ID:          m.ID,
		BranchID:    m.BranchID,
		UploaderID:  m.UploaderID,
		Description: m.Description,
		Timestamp:   m.Timestamp,
	}
}

func versionToDomain(m models.FileVersion) domain.FileVersion {
	return domain.FileVersion{
		ID:          m.ID,
		FileID:      m.UploadedFileID,
		RoomID:      m.RoomID,
		CommitID:    m.CommitID,
		ObjectKey:   m.ObjectKey,
		ContentHash: m.ContentHash,
		Description: m.Description,
		FileSize:    m.FileSize,
	}
}
