package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/intern-attendance/internal/domain/notification"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/user"
	"github.com/cmlabs-hris/intern-attendance/internal/handler/http/response"
	"github.com/cmlabs-hris/intern-attendance/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
)

const sseKeepalive = 30 * time.Second

type NotificationHandler interface {
	ListMine(w http.ResponseWriter, r *http.Request)
	Reply(w http.ResponseWriter, r *http.Request)

	// Admin
	Send(w http.ResponseWriter, r *http.Request)
	ListAll(w http.ResponseWriter, r *http.Request)

	// SSE
	GetSSEToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type notificationHandlerImpl struct {
	notifService notification.Service
	jwtService   jwt.Service
}

func NewNotificationHandler(notifService notification.Service, jwtService jwt.Service) NotificationHandler {
	return &notificationHandlerImpl{
		notifService: notifService,
		jwtService:   jwtService,
	}
}

// ListMine implements NotificationHandler.
func (h *notificationHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}

	result, err := h.notifService.ListMine(r.Context(), claims.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Reply implements NotificationHandler.
func (h *notificationHandlerImpl) Reply(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req notification.ReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Reply notification decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.NotificationID = chi.URLParam(r, "id")
	req.UserID = claims.UserID
	req.IsAdmin = claims.Role == user.RoleAdmin

	result, err := h.notifService.Reply(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Reply added", result)
}

// Send implements NotificationHandler.
func (h *notificationHandlerImpl) Send(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req notification.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Send notification decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.SenderID = claims.UserID

	result, err := h.notifService.Send(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Notification sent", result)
}

// ListAll implements NotificationHandler.
func (h *notificationHandlerImpl) ListAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.notifService.ListAll(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// GetSSEToken implements NotificationHandler.
func (h *notificationHandlerImpl) GetSSEToken(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(claims.UserID)
	if err != nil {
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}
	response.Success(w, notification.SSETokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// Stream implements NotificationHandler. EventSource cannot send headers, so
// the SSE token travels in the query string.
func (h *notificationHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}
	userID, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		response.Unauthorized(w, "Invalid token")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.notifService.Subscribe(r.Context(), userID)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"user_id\":%q}\n\n", userID)
	flusher.Flush()

	keepalive := time.NewTicker(sseKeepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				slog.Error("Stream notification encode error", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case t := <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", t.Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
