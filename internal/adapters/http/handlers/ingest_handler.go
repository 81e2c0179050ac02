package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/reybrally/notification-service/internal/app/notifications"
	"github.com/reybrally/notification-service/internal/bus"
	"github.com/reybrally/notification-service/internal/logging"
)

// IngestHandler — ops/backfill-вход; основной путь ингеста — Kafka.
func (h *NotificationHandlers) IngestHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	var ev notifications.IncomingEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		logging.LogError("Error decoding request body", err, logrus.Fields{"method": "IngestHandler"})
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	n, err := h.svc.Ingest(ctx, ev)
	if err != nil {
		switch {
		case errors.Is(err, notifications.ErrInvalidData):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, notifications.ErrRecipientUnknown):
			writeError(w, http.StatusUnprocessableEntity, "recipient unknown")
		case errors.Is(err, bus.ErrTimeout):
			// проверка получателя не ответила вовремя; durable-записи не было
			writeError(w, http.StatusGatewayTimeout, "recipient check timed out")
		default:
			logging.LogError("Error ingesting notification", err, logrus.Fields{"method": "IngestHandler"})
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	logging.LogInfo("Notification ingested", logrus.Fields{
		"method": "IngestHandler", "id": n.ID, "recipient_id": n.RecipientID,
	})
	w.Header().Set("Location", "/notifications/"+n.ID)
	writeJSON(w, http.StatusCreated, ToResponse(n))
}
