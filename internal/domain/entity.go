package domain

import "time"

// User is the identity collaborator's row, carried for display and ownership.
type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Room scopes all chat, task, and file activity.
type Room struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	LinkToken   string    `json:"-"`
	IsPrivate   bool      `json:"is_private"`
	Description string    `json:"description,omitempty"`
	CreatedBy   uint      `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	Members     []User    `json:"members,omitempty"`
	LikeCount   int64     `json:"like_count"`
}

// UploadedFile is the current materialized state of a file within a room.
// Its live fields are overwritten by a branch switch.
type UploadedFile struct {
	ID          uint      `json:"id"`
	RoomID      uint      `json:"room_id"`
	UploadedBy  uint      `json:"uploaded_by"`
	Uploader    string    `json:"uploader,omitempty"`
	ObjectKey   string    `json:"-"`
	Content     string    `json:"content,omitempty"`
	Description string    `json:"description,omitempty"`
	FileSize    int64     `json:"file_size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Branch is a named revision lineage rooted at one uploaded file.
type Branch struct {
	ID          uint      `json:"id"`
	FileID      uint      `json:"file_id"`
	RoomID      uint      `json:"room_id"`
	CreatedBy   uint      `json:"created_by"`
	IsMaster    bool      `json:"is_master"`
	Content     string    `json:"content,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Commit is an ordered event within a branch. Commits are append-only and
// ordered by timestamp.
type Commit struct {
	ID          uint      `json:"id"`
	BranchID    uint      `json:"branch_id"`
	UploaderID  uint      `json:"uploader_id"`
	Description string    `json:"description,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// FileVersion is the immutable snapshot produced by exactly one commit.
type FileVersion struct {
	ID          uint   `json:"id"`
	FileID      uint   `json:"file_id"`
	RoomID      uint   `json:"room_id"`
	CommitID    uint   `json:"commit_id"`
	ObjectKey   string `json:"-"`
	ContentHash string `json:"content_hash,omitempty"`
	Description string `json:"description,omitempty"`
	FileSize    int64  `json:"file_size"`
}

// Message is one chat message within a room. Ordering key is CreatedAt.
type Message struct {
	ID        uint      `json:"id"`
	RoomID    uint      `json:"room_id"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Text      string    `json:"message"`
	MediaKey  string    `json:"media,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification is a persisted room activity event.
type Notification struct {
	ID        uint      `json:"id"`
	RoomID    uint      `json:"room_id"`
	SenderID  uint      `json:"sender_id"`
	Kind      string    `json:"kind"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Task is a tracked item within a room.
type Task struct {
	ID          uint      `json:"id"`
	RoomID      uint      `json:"room_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	AssignedTo  uint      `json:"assigned_to,omitempty"`
	DueDate     string    `json:"due_date,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}
