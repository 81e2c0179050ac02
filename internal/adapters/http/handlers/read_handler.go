package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/reybrally/notification-service/internal/app/notifications"
	"github.com/reybrally/notification-service/internal/logging"
)

func (h *NotificationHandlers) GetHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	n, err := h.svc.GetNotification(r.Context(), id)
	if err != nil {
		if errors.Is(err, notifications.ErrNotFound) {
			writeError(w, http.StatusNotFound, "notification not found")
			return
		}
		logging.LogError("Error fetching notification", err, logrus.Fields{"method": "GetHandler", "id": id})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ToResponse(n))
}

func (h *NotificationHandlers) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	n, err := h.svc.MarkRead(r.Context(), id)
	if err != nil {
		if errors.Is(err, notifications.ErrNotFound) {
			writeError(w, http.StatusNotFound, "notification not found")
			return
		}
		logging.LogError("Error marking notification read", err, logrus.Fields{"method": "MarkReadHandler", "id": id})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logging.LogInfo("Notification marked read", logrus.Fields{"method": "MarkReadHandler", "id": id})
	writeJSON(w, http.StatusOK, ToResponse(n))
}
