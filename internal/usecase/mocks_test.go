package usecase

import (
	"context"
	"time"

	"github.com/coloby/coloby"
	"github.com/coloby/coloby/internal/domain"
)

type mockRoomRepo struct {
	rooms      map[string]domain.Room
	members    map[uint]map[uint]bool
	likes      map[uint]int
	createErrs []error
	created    []domain.Room
	attempts   []domain.Room
	deleted    []uint
	nextID     uint
}

func newMockRoomRepo() *mockRoomRepo {
	return &mockRoomRepo{
		rooms:   map[string]domain.Room{},
		members: map[uint]map[uint]bool{},
		likes:   map[uint]int{},
	}
}

func (m *mockRoomRepo) add(room domain.Room) domain.Room {
	if room.ID == 0 {
		m.nextID++
		room.ID = m.nextID
	}
	m.rooms[room.Slug] = room
	return room
}

func (m *mockRoomRepo) Create(ctx context.Context, room domain.Room) (domain.Room, error) {
	m.attempts = append(m.attempts, room)
	if len(m.createErrs) > 0 {
		err := m.createErrs[0]
		m.createErrs = m.createErrs[1:]
		if err != nil {
			return domain.Room{}, err
		}
	}
	created := m.add(room)
	m.created = append(m.created, created)
	return created, nil
}

func (m *mockRoomRepo) GetBySlug(ctx context.Context, slug string) (domain.Room, error) {
	room, ok := m.rooms[slug]
	if !ok {
		return domain.Room{}, domain.NotFoundError{Resource: "room"}
	}
	return room, nil
}

func (m *mockRoomRepo) GetBySlugWithDeleted(ctx context.Context, slug string) (domain.Room, error) {
	return m.GetBySlug(ctx, slug)
}

func (m *mockRoomRepo) GetByID(ctx context.Context, roomID uint) (domain.Room, error) {
	for _, room := range m.rooms {
		if room.ID == roomID {
			return room, nil
		}
	}
	return domain.Room{}, domain.NotFoundError{Resource: "room"}
}

func (m *mockRoomRepo) List(ctx context.Context) ([]domain.Room, error) {
	out := []domain.Room{}
	for _, room := range m.rooms {
		out = append(out, room)
	}
	return out, nil
}

func (m *mockRoomRepo) SoftDelete(ctx context.Context, roomID uint) error {
	m.deleted = append(m.deleted, roomID)
	for slug, room := range m.rooms {
		if room.ID == roomID {
			delete(m.rooms, slug)
		}
	}
	return nil
}

func (m *mockRoomRepo) AddMember(ctx context.Context, roomID, userID uint) error {
	if m.members[roomID] == nil {
		m.members[roomID] = map[uint]bool{}
	}
	m.members[roomID][userID] = true
	return nil
}

func (m *mockRoomRepo) RemoveMember(ctx context.Context, roomID, userID uint) error {
	delete(m.members[roomID], userID)
	return nil
}

func (m *mockRoomRepo) IsMember(ctx context.Context, roomID, userID uint) (bool, error) {
	return m.members[roomID][userID], nil
}

func (m *mockRoomRepo) Members(ctx context.Context, roomID uint) ([]domain.User, error) {
	out := []domain.User{}
	for userID := range m.members[roomID] {
		out = append(out, domain.User{ID: userID})
	}
	return out, nil
}

func (m *mockRoomRepo) AddLike(ctx context.Context, roomID, userID uint) error {
	m.likes[roomID]++
	return nil
}

func (m *mockRoomRepo) LikeCount(ctx context.Context, roomID uint) (int64, error) {
	return int64(m.likes[roomID]), nil
}

type mockVersionRepo struct {
	files    map[uint]domain.UploadedFile
	branches map[uint]domain.Branch
	commits  map[uint][]domain.Commit
	versions map[uint][]domain.FileVersion
	access   map[uint][]uint
	nextID   uint
}

func newMockVersionRepo() *mockVersionRepo {
	return &mockVersionRepo{
		files:    map[uint]domain.UploadedFile{},
		branches: map[uint]domain.Branch{},
		commits:  map[uint][]domain.Commit{},
		versions: map[uint][]domain.FileVersion{},
		access:   map[uint][]uint{},
	}
}

func (m *mockVersionRepo) id() uint {
	m.nextID++
	return m.nextID
}

func (m *mockVersionRepo) CreateInitialVersion(ctx context.Context, p InitialVersionParams) (domain.UploadedFile, error) {
	file := domain.UploadedFile{
		ID:          m.id(),
		RoomID:      p.RoomID,
		UploadedBy:  p.UploaderID,
		ObjectKey:   p.ObjectKey,
		Description: p.Description,
		FileSize:    p.FileSize,
	}
	m.files[file.ID] = file

	branch := domain.Branch{
		ID:        m.id(),
		FileID:    file.ID,
		RoomID:    p.RoomID,
		CreatedBy: p.UploaderID,
		IsMaster:  true,
	}
	m.branches[branch.ID] = branch

	commit := domain.Commit{
		ID:          m.id(),
		BranchID:    branch.ID,
		UploaderID:  p.UploaderID,
		Description: "Initial commit",
		Timestamp:   time.Now(),
	}
	m.commits[branch.ID] = append(m.commits[branch.ID], commit)

	version := domain.FileVersion{
		ID:          m.id(),
		FileID:      file.ID,
		RoomID:      p.RoomID,
		CommitID:    commit.ID,
		ObjectKey:   p.ObjectKey,
		ContentHash: p.ContentHash,
		Description: p.Description,
		FileSize:    p.FileSize,
	}
	m.versions[branch.ID] = append(m.versions[branch.ID], version)

	return file, nil
}

func (m *mockVersionRepo) CreateBranch(ctx context.Context, branch domain.Branch) (domain.Branch, error) {
	branch.ID = m.id()
	m.branches[branch.ID] = branch
	return branch, nil
}

func (m *mockVersionRepo) AppendCommit(ctx context.Context, p CommitParams) (domain.Commit, domain.FileVersion, error) {
	branch, ok := m.branches[p.BranchID]
	if !ok {
		return domain.Commit{}, domain.FileVersion{}, domain.NotFoundError{Resource: "branch"}
	}

	commit := domain.Commit{
		ID:          m.id(),
		BranchID:    branch.ID,
		UploaderID:  p.UploaderID,
		Description: p.Description,
		Timestamp:   time.Now(),
	}
	m.commits[branch.ID] = append(m.commits[branch.ID], commit)

	version := domain.FileVersion{
		ID:          m.id(),
		FileID:      branch.FileID,
		RoomID:      branch.RoomID,
		CommitID:    commit.ID,
		ObjectKey:   p.ObjectKey,
		ContentHash: p.ContentHash,
		Description: p.Description,
		FileSize:    p.FileSize,
	}
	m.versions[branch.ID] = append(m.versions[branch.ID], version)

	return commit, version, nil
}

func (m *mockVersionRepo) GetFile(ctx context.Context, fileID uint) (domain.UploadedFile, error) {
	file, ok := m.files[fileID]
	if !ok {
		return domain.UploadedFile{}, domain.NotFoundError{Resource: "file"}
	}
	return file, nil
}

func (m *mockVersionRepo) GetBranch(ctx context.Context, branchID uint) (domain.Branch, error) {
	branch, ok := m.branches[branchID]
	if !ok {
		return domain.Branch{}, domain.NotFoundError{Resource: "branch"}
	}
	return branch, nil
}

func (m *mockVersionRepo) LatestVersion(ctx context.Context, branchID uint) (domain.FileVersion, error) {
	versions := m.versions[branchID]
	if len(versions) == 0 {
		return domain.FileVersion{}, domain.NotFoundError{Resource: "commit"}
	}
	return versions[len(versions)-1], nil
}

func (m *mockVersionRepo) UpdateLiveFields(ctx context.Context, fileID uint, objectKey, description string, fileSize int64) (domain.UploadedFile, error) {
	file, ok := m.files[fileID]
	if !ok {
		return domain.UploadedFile{}, domain.NotFoundError{Resource: "file"}
	}
	file.ObjectKey = objectKey
	file.Description = description
	file.FileSize = fileSize
	m.files[fileID] = file
	return file, nil
}

func (m *mockVersionRepo) ListFiles(ctx context.Context, roomID uint) ([]domain.UploadedFile, error) {
	out := []domain.UploadedFile{}
	for _, file := range m.files {
		if file.RoomID == roomID {
			out = append(out, file)
		}
	}
	return out, nil
}

func (m *mockVersionRepo) ListBranches(ctx context.Context, fileID uint) ([]domain.Branch, error) {
	out := []domain.Branch{}
	for _, branch := range m.branches {
		if branch.FileID == fileID {
			out = append(out, branch)
		}
	}
	return out, nil
}

func (m *mockVersionRepo) ListCommits(ctx context.Context, branchID uint) ([]domain.Commit, error) {
	return m.commits[branchID], nil
}

func (m *mockVersionRepo) ListVersions(ctx context.Context, fileID uint) ([]domain.FileVersion, error) {
	out := []domain.FileVersion{}
	for _, versions := range m.versions {
		for _, v := range versions {
			if v.FileID == fileID {
				out = append(out, v)
			}
		}
	}
	return out, nil
}

func (m *mockVersionRepo) GrantAccess(ctx context.Context, fileID, userID uint) error {
	m.access[fileID] = append(m.access[fileID], userID)
	return nil
}

type mockBlobStore struct {
	objects map[string][]byte
	putErr  error
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{objects: map[string][]byte{}}
}

func (m *mockBlobStore) Put(ctx context.Context, key string, data []byte) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.objects[key] = data
	return nil
}

func (m *mockBlobStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://blobs.local/" + key, nil
}

type mockMessageRepo struct {
	log      *[]string
	messages []domain.Message
	nextID   uint
}

func (m *mockMessageRepo) Create(ctx context.Context, msg domain.Message) (domain.Message, error) {
	m.nextID++
	msg.ID = m.nextID
	msg.CreatedAt = time.Now()
	m.messages = append(m.messages, msg)
	if m.log != nil {
		*m.log = append(*m.log, "persist")
	}
	return msg, nil
}

func (m *mockMessageRepo) History(ctx context.Context, roomID uint, limit int) ([]domain.Message, error) {
	out := []domain.Message{}
	for _, msg := range m.messages {
		if msg.RoomID == roomID {
			out = append(out, msg)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type mockNotificationRepo struct {
	log           *[]string
	notifications []domain.Notification
	tasks         []domain.Task
	nextID        uint
}

func (m *mockNotificationRepo) Create(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	m.nextID++
	n.ID = m.nextID
	m.notifications = append(m.notifications, n)
	if m.log != nil {
		*m.log = append(*m.log, "persist")
	}
	return n, nil
}

func (m *mockNotificationRepo) List(ctx context.Context, roomID uint, limit int) ([]domain.Notification, error) {
	out := []domain.Notification{}
	for _, n := range m.notifications {
		if n.RoomID == roomID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockNotificationRepo) CreateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	m.nextID++
	t.ID = m.nextID
	m.tasks = append(m.tasks, t)
	if m.log != nil {
		*m.log = append(*m.log, "persist")
	}
	return t, nil
}

func (m *mockNotificationRepo) ListTasks(ctx context.Context, roomID uint) ([]domain.Task, error) {
	out := []domain.Task{}
	for _, t := range m.tasks {
		if t.RoomID == roomID {
			out = append(out, t)
		}
	}
	return out, nil
}

type mockBroadcaster struct {
	log       *[]string
	chats     []coloby.ChatEvent
	envelopes []coloby.NotificationEnvelope
}

func (m *mockBroadcaster) PublishChat(ctx context.Context, roomSlug string, ev coloby.ChatEvent) error {
	m.chats = append(m.chats, ev)
	if m.log != nil {
		*m.log = append(*m.log, "broadcast")
	}
	return nil
}

func (m *mockBroadcaster) PublishNotification(ctx context.Context, roomSlug string, env coloby.NotificationEnvelope) error {
	m.envelopes = append(m.envelopes, env)
	if m.log != nil {
		*m.log = append(*m.log, "broadcast")
	}
	return nil
}

type mockUserRepo struct {
	users  map[string]domain.User
	nextID uint
}

func (m *mockUserRepo) GetOrCreate(ctx context.Context, user domain.User) (domain.User, error) {
	if m.users == nil {
		m.users = map[string]domain.User{}
	}
	if existing, ok := m.users[user.Username]; ok {
		return existing, nil
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.Username] = user
	return user, nil
}

func (m *mockUserRepo) Get(ctx context.Context, userID uint) (domain.User, error) {
	for _, user := range m.users {
		if user.ID == userID {
			return user, nil
		}
	}
	return domain.User{}, domain.NotFoundError{Resource: "user"}
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	user, ok := m.users[username]
	if !ok {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	return user, nil
}
