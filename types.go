package coloby

import (
	"encoding/json"
	"fmt"
	"time"
)

// NotificationKind tags the payload variants carried on the notification channel.
type NotificationKind string

const (
	KindMessage        NotificationKind = "message"
	KindFileUpload     NotificationKind = "file_upload"
	KindBranchActivity NotificationKind = "branch_activity"
	KindTask           NotificationKind = "task"
	KindError          NotificationKind = "error"
)

// ChatFrame is the inbound frame on the chat channel.
type ChatFrame struct {
	Message string `json:"message"`
}

// ChatEvent is the outbound frame broadcast to a room group.
type ChatEvent struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

// MessagePayload is the "message" notification variant.
type MessagePayload struct {
	Message string `json:"message"`
}

// FileUploadPayload is the "file_upload" notification variant.
type FileUploadPayload struct {
	FileName string `json:"file_name"`
	FileID   uint   `json:"file_id,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
}

// BranchActivityPayload is the "branch_activity" notification variant.
type BranchActivityPayload struct {
	FileName string `json:"file_name"`
	BranchID uint   `json:"branch_id,omitempty"`
	Activity string `json:"activity"`
}

// TaskPayload is the "task" notification variant.
type TaskPayload struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	AssignedTo  string `json:"assigned_to,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
}

// Notification is a decoded inbound notification frame. Exactly one variant
// is set, matching Kind.
type Notification struct {
	Kind           NotificationKind
	Message        *MessagePayload
	FileUpload     *FileUploadPayload
	BranchActivity *BranchActivityPayload
	Task           *TaskPayload
}

// NotificationEnvelope is the outbound notification frame.
type NotificationEnvelope struct {
	Type      NotificationKind `json:"type"`
	Username  string           `json:"username,omitempty"`
	Body      json.RawMessage  `json:"body,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// ErrorFrame is sent to the originating connection only, never broadcast.
type ErrorFrame struct {
	Type         NotificationKind `json:"type"`
	ErrorMessage string           `json:"error_message"`
}

type rawNotification struct {
	Type NotificationKind `json:"type"`
}

// DecodeNotification parses an inbound notification frame into its tagged
// variant. Unknown or malformed frames return an error and no variant.
func DecodeNotification(data []byte) (Notification, error) {
	var raw rawNotification
	if err := json.Unmarshal(data, &raw); err != nil {
		return Notification{}, fmt.Errorf("invalid notification frame: %v", err)
	}

	n := Notification{Kind: raw.Type}

	switch raw.Type {
	case KindMessage:
		var p MessagePayload
		if err := json.Unmarshal(data, &p); err != nil {
			return Notification{}, err
		}
		if p.Message == "" {
			return Notification{}, fmt.Errorf("message notification requires a message")
		}
		n.Message = &p
	case KindFileUpload:
		var p FileUploadPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return Notification{}, err
		}
		if p.FileName == "" {
			return Notification{}, fmt.Errorf("file_upload notification requires a file_name")
		}
		n.FileUpload = &p
	case KindBranchActivity:
		var p BranchActivityPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return Notification{}, err
		}
		if p.FileName == "" {
			return Notification{}, fmt.Errorf("branch_activity notification requires a file_name")
		}
		n.BranchActivity = &p
	case KindTask:
		var p TaskPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return Notification{}, err
		}
		if p.Title == "" {
			return Notification{}, fmt.Errorf("task notification requires a title")
		}
		n.Task = &p
	default:
		return Notification{}, fmt.Errorf("unknown notification type: %s", raw.Type)
	}

	return n, nil
}

// Payload returns the JSON body of the active variant.
func (n Notification) Payload() (json.RawMessage, error) {
	switch n.Kind {
	case KindMessage:
		return json.Marshal(n.Message)
	case KindFileUpload:
		return json.Marshal(n.FileUpload)
	case KindBranchActivity:
		return json.Marshal(n.BranchActivity)
	case KindTask:
		return json.Marshal(n.Task)
	default:
		return nil, fmt.Errorf("unknown notification type: %s", n.Kind)
	}
}

// WellKnownColoby is the server descriptor served at /.well-known/coloby.
type WellKnownColoby struct {
	Version   string            `json:"version"`
	Domain    string            `json:"domain"`
	Endpoints map[string]string `json:"endpoints"`
}
