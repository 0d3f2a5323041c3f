package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/coloby/coloby"
	"github.com/coloby/coloby/internal/present/rest/presenter"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleChatSocket serves one chat connection. Connecting joins the room's
// persistent member set and marks the user present; inbound frames are
// persisted before they are fanned out to the room group.
func (h *Handler) handleChatSocket(c echo.Context) error {
	user, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c)
	}
	slug := c.Param("slug")

	allowed, err := h.room.CanAccess(c.Request().Context(), slug, user.ID)
	if err != nil {
		return presenter.FromError(c, err)
	}
	if !allowed {
		return presenter.Forbidden(c, "room is private")
	}

	room, err := h.room.EnsureMember(c.Request().Context(), slug, user.ID)
	if err != nil {
		return presenter.FromError(c, err)
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	if err := h.presence.Join(ctx, room.Slug, user.Username); err != nil {
		slog.ErrorContext(
			ctx, "Error joining presence set",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
	}
	defer func() {
		leaveCtx, leaveCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer leaveCancel()
		if err := h.presence.Leave(leaveCtx, room.Slug, user.Username); err != nil {
			slog.Error(
				"Error leaving presence set",
				slog.String("error", err.Error()),
				slog.String("module", "socket"),
			)
		}
	}()

	output := make(chan coloby.ChatEvent)
	go h.signal.RealtimeChat(ctx, room.Slug, output)

	quit := make(chan struct{}, 1)
	errs := make(chan coloby.ErrorFrame, 1)

	go func() {
		for {
			var frame coloby.ChatFrame
			err := ws.ReadJSON(&frame)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				quit <- struct{}{}
				break
			}

			if frame.Message == "" {
				continue
			}

			if _, err := h.message.Post(ctx, room.Slug, user, frame.Message); err != nil {
				slog.ErrorContext(
					ctx, "Error posting message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				select {
				case errs <- coloby.ErrorFrame{Type: coloby.KindError, ErrorMessage: err.Error()}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case ev := <-output:
			err := ws.WriteJSON(ev)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		case ef := <-errs:
			err := ws.WriteJSON(ef)
			if err != nil {
				return nil
			}
		}
	}
}

// handleNotificationSocket serves one notification connection. Inbound frames
// are tagged-union notifications; a frame that fails to decode is answered
// with an error frame on this connection only and is never persisted or
// broadcast.
func (h *Handler) handleNotificationSocket(c echo.Context) error {
	user, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c)
	}
	slug := c.Param("slug")

	allowed, err := h.room.CanAccess(c.Request().Context(), slug, user.ID)
	if err != nil {
		return presenter.FromError(c, err)
	}
	if !allowed {
		return presenter.Forbidden(c, "room is private")
	}

	room, err := h.room.EnsureMember(c.Request().Context(), slug, user.ID)
	if err != nil {
		return presenter.FromError(c, err)
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	output := make(chan coloby.NotificationEnvelope)
	go h.signal.RealtimeNotifications(ctx, room.Slug, output)

	quit := make(chan struct{}, 1)
	errs := make(chan coloby.ErrorFrame, 1)

	go func() {
		for {
			_, raw, err := ws.ReadMessage()
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				quit <- struct{}{}
				break
			}

			if _, err := h.notification.Ingest(ctx, room.Slug, user, raw); err != nil {
				slog.InfoContext(
					ctx, "Rejected notification frame",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				select {
				case errs <- coloby.ErrorFrame{Type: coloby.KindError, ErrorMessage: err.Error()}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case env := <-output:
			err := ws.WriteJSON(env)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		case ef := <-errs:
			err := ws.WriteJSON(ef)
			if err != nil {
				return nil
			}
		}
	}
}
