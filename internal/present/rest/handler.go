package rest

import (
	"io"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/coloby/coloby"
	"github.com/coloby/coloby/internal/domain"
	"github.com/coloby/coloby/internal/present/rest/presenter"
	"github.com/coloby/coloby/internal/service"
	"github.com/coloby/coloby/internal/usecase"
)

const maxUploadBytes = 32 << 20 // 32 MiB

type Handler struct {
	config       domain.Config
	room         *usecase.RoomUsecase
	version      *usecase.VersionUsecase
	message      *usecase.MessageUsecase
	notification *usecase.NotificationUsecase
	signal       *service.SignalService
	presence     *service.PresenceService
}

func NewHandler(
	config domain.Config,
	room *usecase.RoomUsecase,
	version *usecase.VersionUsecase,
	message *usecase.MessageUsecase,
	notification *usecase.NotificationUsecase,
	signal *service.SignalService,
	presence *service.PresenceService,
) *Handler {
	return &Handler{
		config:       config,
		room:         room,
		version:      version,
		message:      message,
		notification: notification,
		signal:       signal,
		presence:     presence,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/.well-known/coloby", h.handleWellKnown)

	e.POST("/api/v1/rooms", h.handleRoomCreate)
	e.GET("/api/v1/rooms", h.handleRoomList)
	e.GET("/api/v1/rooms/:slug", h.handleRoomDetail)
	e.DELETE("/api/v1/rooms/:slug", h.handleRoomDelete)
	e.POST("/api/v1/rooms/:slug/join", h.handleRoomJoin)
	e.POST("/api/v1/rooms/:slug/leave", h.handleRoomLeave)
	e.POST("/api/v1/rooms/:slug/like", h.handleRoomLike)
	e.GET("/api/v1/rooms/:slug/presence", h.handleRoomPresence)

	e.POST("/api/v1/rooms/:slug/files", h.handleFileUpload)
	e.GET("/api/v1/rooms/:slug/files", h.handleFileList)
	e.GET("/api/v1/rooms/:slug/files/:id", h.handleFileDetail)
	e.GET("/api/v1/rooms/:slug/files/:id/download", h.handleFileDownload)
	e.POST("/api/v1/rooms/:slug/files/:id/branches", h.handleBranchCreate)
	e.GET("/api/v1/rooms/:slug/files/:id/branches", h.handleBranchList)
	e.POST("/api/v1/rooms/:slug/branches/:id/commits", h.handleCommitCreate)
	e.GET("/api/v1/rooms/:slug/branches/:id/commits", h.handleCommitList)
	e.GET("/api/v1/rooms/:slug/files/:id/versions", h.handleVersionList)
	e.POST("/api/v1/rooms/:slug/files/:id/switch", h.handleBranchSwitch)
	e.POST("/api/v1/rooms/:slug/files/:id/access", h.handleFileAccessGrant)

	e.GET("/api/v1/rooms/:slug/messages", h.handleMessageHistory)
	e.GET("/api/v1/rooms/:slug/notifications", h.handleNotificationList)
	e.POST("/api/v1/rooms/:slug/tasks", h.handleTaskCreate)
	e.GET("/api/v1/rooms/:slug/tasks", h.handleTaskList)

	e.GET("/ws/chat/:slug", h.handleChatSocket)
	e.GET("/ws/notifications/:slug", h.handleNotificationSocket)
}

// requester extracts the identity resolved by the auth middleware.
func requester(c echo.Context) (domain.User, bool) {
	ctx := c.Request().Context()
	id, ok := ctx.Value(domain.RequesterIdCtxKey).(uint)
	if !ok || id == 0 {
		return domain.User{}, false
	}
	name, _ := ctx.Value(domain.RequesterNameCtxKey).(string)
	return domain.User{ID: id, Username: name}, true
}

func pathID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, domain.ValidationError{Reason: "invalid id"}
	}
	return uint(id), nil
}

func (h *Handler) handleWellKnown(c echo.Context) error {
	wellknown := coloby.WellKnownColoby{
		Version: h.config.Version,
		Domain:  h.config.FQDN,
		Endpoints: map[string]string{
			"rooms":         "/api/v1/rooms",
			"files":         "/api/v1/rooms/{slug}/files",
			"messages":      "/api/v1/rooms/{slug}/messages",
			"notifications": "/api/v1/rooms/{slug}/notifications",
			"chat":          "/ws/chat/{slug}",
			"notify":        "/ws/notifications/{slug}",
		},
	}
	return presenter.OK(c, wellknown)
}

type roomCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPrivate   bool   `json:"is_private"`
}

// roomWithToken re-exposes the link token, which domain.Room hides from JSON.
// Served only to the room's creator.
type roomWithToken struct {
	domain.Room
	LinkToken string `json:"link_token"`
}

func (h *Handler) handleRoomCreate(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c)
	}

	var req roomCreateRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	room, err := h.room.Create(ctx, user.ID, req.Name, req.Description, req.IsPrivate)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.Created(c, roomWithToken{Room: room, LinkToken: room.LinkToken})
}

func (h *Handler) handleRoomList(c echo.Context) error {
	rooms, err := h.room.List(c.Request().Context())
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.OK(c, rooms)
}

func (h *Handler) handleRoomDetail(c echo.Context) error {
	ctx := c.Request().Context()

	user, _ := requester(c)
	if err := h.requireRoomAccess(c, user); err != nil {
		return err
	}

	room, err := h.room.Get(ctx, c.Param("slug"))
	if err != nil {
		return presenter.FromError(c, err)
	}
	if user.ID != 0 && user.ID == room.CreatedBy {
		return presenter.OK(c, roomWithToken{Room: room, LinkToken: room.LinkToken})
	}
	return presenter.OK(c, room)
}

func (h *Handler) handleRoomDelete(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c)
	}

	if err := h.room.Delete(ctx, c.Param("slug"), user.ID); err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

type roomJoinRequest struct {
	LinkToken string `json:"link_token"`
}

func (h *Handler) handleRoomJoin(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c)
	}

	var req roomJoinRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	room, err := h.room.Join(ctx, c.Param("slug"), user.ID, req.LinkToken)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.OK(c, room)
}

func (h *Handler) handleRoomLeave(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c)
	}

	if err := h.room.Leave(ctx, c.Param("slug"), user.ID); err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleRoomLike(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c)
	}

	if err := h.room.Like(ctx, c.Param("slug"), user.ID); err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleRoomPresence(c echo.Context) error {
	ctx := c.Request().Context()

	user, _ := requester(c)
	if err := h.requireRoomAccess(c, user); err != nil {
		return err
	}

	users, err := h.presence.List(ctx, c.Param("slug"))
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, echo.Map{"users": users})
}

func (h *Handler) handleFileUpload(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return presenter.BadRequestMessage(c, "file is required")
	}
	if fileHeader.Size > maxUploadBytes {
		return presenter.BadRequestMessage(c, "file is too large")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	defer src.Close()

	blob, err := io.ReadAll(src)
	if err != nil {
		return presenter.InternalError(c, err)
	}

	description := c.FormValue("description")
	slug := c.Param("slug")

	file, err := h.version.CreateInitialVersion(ctx, user.ID, slug, blob, description)
	if err != nil {
		return presenter.FromError(c, err)
	}

	// Fire-and-forget: the upload's contract is independent of delivery.
	h.notification.EmitFileUploadAsync(slug, user, file)

	return presenter.Created(c, echo.Map{
		"id":          file.ID,
		"file_size":   file.FileSize,
		"uploaded_by": user.Username,
	})
}

func (h *Handler) handleFileList(c echo.Context) error {
	ctx := c.Request().Context()

	user, _ := requester(c)
	if err := h.requireRoomAccess(c, user); err != nil {
		return err
	}

	files, err := h.version.ListFiles(ctx, c.Param("slug"))
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.OK(c, files)
}

func (h *Handler) handleFileDetail(c echo.Context) error {
	ctx := c.Request().Context()

	user, _ := requester(c)
	if err := h.requireRoomAccess(c, user); err != nil {
		return err
	}

	fileID, err := pathID(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	file, err := h.version.GetFile(ctx, fileID)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.OK(c, file)
}

func (h *Handler) handleFileDownload(c echo.Context) error {
	ctx := c.Request().Context()

	user, _ := requester(c)
	if err := h.requireRoomAccess(c, user); err != nil {
		return err
	}

	fileID, err := pathID(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	url, err := h.version.DownloadURL(ctx, fileID)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.OK(c, echo.Map{"url": url})
}

type branchCreateRequest struct {
	Content     string `json:"content"`
	Description string `json:"description"`
}

func (h *Handler) handleBranchCreate(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c)
	}

	fileID, err := pathID(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	var req branchCreateRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	branch, err := h.version.CreateBranch(ctx, fileID, user.ID, req.Content, req.Description)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.Created(c, branch)
}

func (h *Handler) handleBranchList(c echo.Context) error {
	ctx := c.Request().Context()

	user, _ := requester(c)
	if err := h.requireRoomAccess(c, user); err != nil {
		return err
	}

	fileID, err := pathID(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	branches, err := h.version.ListBranches(ctx, fileID)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.OK(c, branches)
}

func (h *Handler) handleCommitCreate(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c)
	}

	branchID, err := pathID(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return presenter.BadRequestMessage(c, "file is required")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	defer src.Close()

	blob, err := io.ReadAll(src)
	if err != nil {
		return presenter.InternalError(c, err)
	}

	commit, version, err := h.version.Commit(ctx, branchID, user.ID, blob, c.FormValue("description"))
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.Created(c, echo.Map{
		"commit":  commit,
		"version": version,
	})
}

func (h *Handler) handleCommitList(c echo.Context) error {
	ctx := c.Request().Context()

	user, _ := requester(c)
	if err := h.requireRoomAccess(c, user); err != nil {
		return err
	}

	branchID, err := pathID(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	commits, err := h.version.ListCommits(ctx, branchID)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.OK(c, commits)
}

func (h *Handler) handleVersionList(c echo.Context) error {
	ctx := c.Request().Context()

	user, _ := requester(c)
	if err := h.requireRoomAccess(c, user); err != nil {
		return err
	}

	fileID, err := pathID(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	versions, err := h.version.ListVersions(ctx, fileID)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.OK(c, versions)
}

type branchSwitchRequest struct {
	BranchID uint `json:"branch_id"`
}

func (h *Handler) handleBranchSwitch(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c)
	}
	if err := h.requireRoomAccess(c, user); err != nil {
		return err
	}

	fileID, err := pathID(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	var req branchSwitchRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if req.BranchID == 0 {
		return presenter.BadRequestMessage(c, "branch_id is required")
	}

	if _, err := h.version.SwitchBranch(ctx, fileID, req.BranchID, user.ID); err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

type fileAccessRequest struct {
	UserID uint `json:"user_id"`
}

func (h *Handler) handleFileAccessGrant(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c)
	}
	if err := h.requireRoomAccess(c, user); err != nil {
		return err
	}

	fileID, err := pathID(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	var req fileAccessRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if req.UserID == 0 {
		return presenter.BadRequestMessage(c, "user_id is required")
	}

	if err := h.version.GrantAccess(ctx, fileID, req.UserID); err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleMessageHistory(c echo.Context) error {
	ctx := c.Request().Context()

	user, _ := requester(c)
	if err := h.requireRoomAccess(c, user); err != nil {
		return err
	}

	limit := 0
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		limitInt, err := strconv.Atoi(limitStr)
		if err != nil {
			return presenter.BadRequestMessage(c, "invalid limit parameter")
		}
		limit = limitInt
	}

	messages, err := h.message.History(ctx, c.Param("slug"), limit)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.OK(c, messages)
}

func (h *Handler) handleNotificationList(c echo.Context) error {
	ctx := c.Request().Context()

	user, _ := requester(c)
	if err := h.requireRoomAccess(c, user); err != nil {
		return err
	}

	notifications, err := h.notification.List(ctx, c.Param("slug"), 0)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.OK(c, notifications)
}

type taskCreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AssignedTo  uint   `json:"assigned_to"`
	DueDate     string `json:"due_date"`
}

func (h *Handler) handleTaskCreate(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c)
	}
	if err := h.requireRoomAccess(c, user); err != nil {
		return err
	}

	var req taskCreateRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	task, err := h.notification.CreateTask(ctx, c.Param("slug"), domain.Task{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.Created(c, task)
}

func (h *Handler) handleTaskList(c echo.Context) error {
	ctx := c.Request().Context()

	user, _ := requester(c)
	if err := h.requireRoomAccess(c, user); err != nil {
		return err
	}

	tasks, err := h.notification.ListTasks(ctx, c.Param("slug"))
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.OK(c, tasks)
}

// requireRoomAccess enforces the private-room read gate. Public rooms are
// readable by anyone, anonymous included.
func (h *Handler) requireRoomAccess(c echo.Context, user domain.User) error {
	ctx := c.Request().Context()

	allowed, err := h.room.CanAccess(ctx, c.Param("slug"), user.ID)
	if err != nil {
		return presenter.FromError(c, err)
	}
	if !allowed {
		return presenter.Forbidden(c, "room is private")
	}
	return nil
}
