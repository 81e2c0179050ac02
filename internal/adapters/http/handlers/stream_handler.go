package handlers

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/reybrally/notification-service/internal/logging"
)

// StreamHandler — long-lived SSE-стрим push-нотификаций. Каждое
// соединение — отдельный Stream в реестре; получатель с N вкладками
// получит N доставок. Завершение — уход клиента или ошибка записи;
// обе дороги снимают стрим с учёта.
func (h *NotificationHandlers) StreamHandler(w http.ResponseWriter, r *http.Request) {
	recipientID := r.URL.Query().Get("recipient_id")
	if recipientID == "" {
		writeError(w, http.StatusBadRequest, "recipient_id is required")
		return
	}

	fl, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	stream := h.registry.Register(recipientID)
	defer h.registry.Unregister(stream)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fl.Flush()

	logging.LogInfo("push stream opened", logrus.Fields{
		"method": "StreamHandler", "recipient_id": recipientID,
	})

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case data, open := <-stream.Events():
			if !open {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				logging.LogWarn("push stream write failed", err, logrus.Fields{
					"method": "StreamHandler", "recipient_id": recipientID,
				})
				return
			}
			fl.Flush()
		}
	}
}
