package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/coloby/coloby"
	"github.com/coloby/coloby/internal/domain"
)

func setupVersionTest() (*VersionUsecase, *mockVersionRepo, *mockRoomRepo, *mockBlobStore) {
	rooms := newMockRoomRepo()
	rooms.add(domain.Room{ID: 1, Name: "design", Slug: "design-ab12", CreatedBy: 1})

	repo := newMockVersionRepo()
	blobs := newMockBlobStore()
	uc := NewVersionUsecase(repo, rooms, blobs)
	return uc, repo, rooms, blobs
}

func masterBranch(t *testing.T, repo *mockVersionRepo, fileID uint) domain.Branch {
	t.Helper()
	for _, branch := range repo.branches {
		if branch.FileID == fileID && branch.IsMaster {
			return branch
		}
	}
	t.Fatalf("no master branch for file %d", fileID)
	return domain.Branch{}
}

func TestCreateInitialVersionChain(t *testing.T) {
	uc, repo, _, blobs := setupVersionTest()
	ctx := context.Background()

	file, err := uc.CreateInitialVersion(ctx, 1, "design-ab12", []byte("hello"), "first draft")
	if err != nil {
		t.Fatalf("create initial version failed: %v", err)
	}

	if file.FileSize != 5 {
		t.Fatalf("expected file size 5 got %d", file.FileSize)
	}
	if string(blobs.objects[file.ObjectKey]) != "hello" {
		t.Fatalf("blob content not stored under the file's object key")
	}

	branch := masterBranch(t, repo, file.ID)
	commits := repo.commits[branch.ID]
	if len(commits) != 1 {
		t.Fatalf("expected 1 commit got %d", len(commits))
	}
	if commits[0].Description != "Initial commit" {
		t.Fatalf("expected initial commit description got %q", commits[0].Description)
	}

	versions := repo.versions[branch.ID]
	if len(versions) != 1 {
		t.Fatalf("expected 1 version got %d", len(versions))
	}
	if versions[0].ContentHash != coloby.ContentHash([]byte("hello")) {
		t.Fatalf("version carries wrong content hash")
	}
	if versions[0].FileSize != 5 {
		t.Fatalf("expected version size 5 got %d", versions[0].FileSize)
	}
}

func TestCreateInitialVersionEmptyUpload(t *testing.T) {
	uc, repo, _, blobs := setupVersionTest()

	_, err := uc.CreateInitialVersion(context.Background(), 1, "design-ab12", nil, "")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error got %v", err)
	}
	if len(repo.files) != 0 {
		t.Fatalf("no file should be created for an empty upload")
	}
	if len(blobs.objects) != 0 {
		t.Fatalf("no blob should be stored for an empty upload")
	}
}

func TestCreateInitialVersionPrivateRoom(t *testing.T) {
	uc, _, rooms, _ := setupVersionTest()
	ctx := context.Background()

	rooms.add(domain.Room{ID: 2, Name: "secret", Slug: "secret-cd34", CreatedBy: 1, IsPrivate: true})

	_, err := uc.CreateInitialVersion(ctx, 2, "secret-cd34", []byte("hello"), "")
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected permission denied got %v", err)
	}

	rooms.AddMember(ctx, 2, 2)
	if _, err := uc.CreateInitialVersion(ctx, 2, "secret-cd34", []byte("hello"), ""); err != nil {
		t.Fatalf("member upload failed: %v", err)
	}
}

func TestLineageWritesDeniedForNonMember(t *testing.T) {
	uc, repo, rooms, _ := setupVersionTest()
	ctx := context.Background()

	rooms.add(domain.Room{ID: 2, Name: "secret", Slug: "secret-cd34", CreatedBy: 1, IsPrivate: true})

	file, err := uc.CreateInitialVersion(ctx, 1, "secret-cd34", []byte("hello"), "")
	if err != nil {
		t.Fatalf("creator upload failed: %v", err)
	}
	master := masterBranch(t, repo, file.ID)

	// User 99 is neither creator nor member of room 2.
	if _, err := uc.CreateBranch(ctx, file.ID, 99, "stolen", ""); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected permission denied for branch creation got %v", err)
	}
	if _, _, err := uc.Commit(ctx, master.ID, 99, []byte("tamper"), ""); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected permission denied for commit got %v", err)
	}
	if _, err := uc.SwitchBranch(ctx, file.ID, master.ID, 99); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected permission denied for branch switch got %v", err)
	}

	if len(repo.branches) != 1 {
		t.Fatalf("denied branch creation must not persist, got %d branches", len(repo.branches))
	}
	if len(repo.commits[master.ID]) != 1 {
		t.Fatalf("denied commit must not persist, got %d commits", len(repo.commits[master.ID]))
	}

	// Membership lifts all three denials.
	rooms.AddMember(ctx, 2, 99)
	if _, err := uc.CreateBranch(ctx, file.ID, 99, "review", ""); err != nil {
		t.Fatalf("member branch creation failed: %v", err)
	}
	if _, _, err := uc.Commit(ctx, master.ID, 99, []byte("hello world"), ""); err != nil {
		t.Fatalf("member commit failed: %v", err)
	}
	if _, err := uc.SwitchBranch(ctx, file.ID, master.ID, 99); err != nil {
		t.Fatalf("member branch switch failed: %v", err)
	}
}

func TestCommitAppendsVersion(t *testing.T) {
	uc, repo, _, _ := setupVersionTest()
	ctx := context.Background()

	file, err := uc.CreateInitialVersion(ctx, 1, "design-ab12", []byte("hello"), "")
	if err != nil {
		t.Fatalf("create initial version failed: %v", err)
	}
	branch := masterBranch(t, repo, file.ID)

	commit, version, err := uc.Commit(ctx, branch.ID, 1, []byte("hello world"), "revised")
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if commit.BranchID != branch.ID {
		t.Fatalf("commit attached to wrong branch")
	}
	if version.FileSize != 11 {
		t.Fatalf("expected version size 11 got %d", version.FileSize)
	}
	if len(repo.commits[branch.ID]) != 2 {
		t.Fatalf("expected 2 commits got %d", len(repo.commits[branch.ID]))
	}

	// Committing never touches the file's live fields.
	live, _ := repo.GetFile(ctx, file.ID)
	if live.FileSize != 5 {
		t.Fatalf("live file size changed by commit: %d", live.FileSize)
	}
}

func TestCommitEmptyContent(t *testing.T) {
	uc, repo, _, _ := setupVersionTest()
	ctx := context.Background()

	file, _ := uc.CreateInitialVersion(ctx, 1, "design-ab12", []byte("hello"), "")
	branch := masterBranch(t, repo, file.ID)

	_, _, err := uc.Commit(ctx, branch.ID, 1, nil, "")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestSwitchBranchAppliesLatestVersion(t *testing.T) {
	uc, repo, _, _ := setupVersionTest()
	ctx := context.Background()

	file, _ := uc.CreateInitialVersion(ctx, 1, "design-ab12", []byte("hello"), "")

	branch, err := uc.CreateBranch(ctx, file.ID, 2, "experiment", "")
	if err != nil {
		t.Fatalf("create branch failed: %v", err)
	}
	if _, _, err := uc.Commit(ctx, branch.ID, 2, []byte("hello world"), "longer"); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	updated, err := uc.SwitchBranch(ctx, file.ID, branch.ID, 2)
	if err != nil {
		t.Fatalf("switch branch failed: %v", err)
	}
	if updated.FileSize != 11 {
		t.Fatalf("expected live size 11 after switch got %d", updated.FileSize)
	}

	latest, _ := repo.LatestVersion(ctx, branch.ID)
	if updated.ObjectKey != latest.ObjectKey {
		t.Fatalf("live object key not taken from the branch's latest version")
	}

	// A switch is a checkout, not a commit.
	total := 0
	for _, commits := range repo.commits {
		total += len(commits)
	}
	if total != 2 {
		t.Fatalf("switch must not create commits, got %d total", total)
	}
}

func TestSwitchBranchWithoutCommits(t *testing.T) {
	uc, repo, _, _ := setupVersionTest()
	ctx := context.Background()

	file, _ := uc.CreateInitialVersion(ctx, 1, "design-ab12", []byte("hello"), "")
	branch, _ := uc.CreateBranch(ctx, file.ID, 2, "empty", "")

	_, err := uc.SwitchBranch(ctx, file.ID, branch.ID, 1)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found got %v", err)
	}

	live, _ := repo.GetFile(ctx, file.ID)
	if live.FileSize != 5 {
		t.Fatalf("failed switch must leave the file unmodified, size %d", live.FileSize)
	}
}

func TestSwitchBranchForeignBranch(t *testing.T) {
	uc, repo, _, _ := setupVersionTest()
	ctx := context.Background()

	fileA, _ := uc.CreateInitialVersion(ctx, 1, "design-ab12", []byte("hello"), "")
	fileB, _ := uc.CreateInitialVersion(ctx, 1, "design-ab12", []byte("other"), "")
	branchB := masterBranch(t, repo, fileB.ID)

	_, err := uc.SwitchBranch(ctx, fileA.ID, branchB.ID, 1)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for a branch of another file, got %v", err)
	}
}

func TestDownloadURL(t *testing.T) {
	uc, _, _, _ := setupVersionTest()
	ctx := context.Background()

	file, _ := uc.CreateInitialVersion(ctx, 1, "design-ab12", []byte("hello"), "")

	url, err := uc.DownloadURL(ctx, file.ID)
	if err != nil {
		t.Fatalf("download url failed: %v", err)
	}
	if !strings.Contains(url, file.ObjectKey) {
		t.Fatalf("url %q does not reference the file's object key", url)
	}
}
