package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/reybrally/notification-service/internal/app/notifications"
	"github.com/reybrally/notification-service/internal/logging"
	"github.com/reybrally/notification-service/internal/pagination"
)

type listResponse struct {
	Data       []NotificationResponse `json:"data"`
	NextCursor *string                `json:"next_cursor"`
}

func (h *NotificationHandlers) ListHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	recipientID := q.Get("recipient_id")
	if recipientID == "" {
		writeError(w, http.StatusBadRequest, "recipient_id is required")
		return
	}

	f := notifications.ListFilters{
		RecipientID: recipientID,
		OnlyUnread:  q.Get("unread") == "true",
	}
	if kind := q.Get("kind"); kind != "" {
		f.Kind = &kind
	}

	p := notifications.PageRequest{Cursor: q.Get("cursor")}
	if s := q.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		p.Limit = limit
	}

	ctx := r.Context()
	page, err := h.svc.List(ctx, f, p)
	if err != nil {
		// кривой курсор — ошибка клиента, никогда не "с начала"
		if errors.Is(err, pagination.ErrInvalidCursor) {
			logging.LogError("invalid cursor", err, logrus.Fields{"method": "ListHandler"})
			writeError(w, http.StatusBadRequest, "invalid cursor")
			return
		}
		logging.LogError("Error listing notifications", err, logrus.Fields{"method": "ListHandler"})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logging.LogInfo("Notifications listed", logrus.Fields{
		"method": "ListHandler", "recipient_id": recipientID, "count": len(page.Data),
	})
	writeJSON(w, http.StatusOK, listResponse{
		Data:       ToResponseList(page.Data),
		NextCursor: page.NextCursor,
	})
}

func (h *NotificationHandlers) UnreadCountHandler(w http.ResponseWriter, r *http.Request) {
	recipientID := r.URL.Query().Get("recipient_id")
	if recipientID == "" {
		writeError(w, http.StatusBadRequest, "recipient_id is required")
		return
	}

	count, err := h.svc.CountUnread(r.Context(), recipientID)
	if err != nil {
		logging.LogError("Error counting unread", err, logrus.Fields{"method": "UnreadCountHandler"})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"unread": count})
}
