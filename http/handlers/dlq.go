package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"feepay-module/http/response"
	"feepay-module/logger"
	"feepay-module/services"
)

// GetDLQMessages handles GET /api/dlq/messages: unresolved dead-lettered
// events for the ops dashboard.
func GetDLQMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.SendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil {
			limit = v
		}
	}

	messages, err := services.GetDLQMessages(limit)
	if err != nil {
		logger.Error("Error fetching DLQ messages: %v", err)
		response.SendError(w, http.StatusInternalServerError, "Error fetching DLQ messages")
		return
	}

	response.SendJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(messages),
		"messages": messages,
	})
}

// RetryDLQMessage handles POST /api/dlq/messages/retry/{id}: replays a
// dead-lettered event.
func RetryDLQMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.SendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	messageID := strings.TrimPrefix(r.URL.Path, "/api/dlq/messages/retry/")
	if messageID == "" {
		response.SendError(w, http.StatusBadRequest, "message id is required")
		return
	}

	if err := services.RetryDLQMessage(messageID); err != nil {
		logger.Error("Error retrying DLQ message %s: %v", messageID, err)
		response.SendError(w, http.StatusInternalServerError, "Error retrying DLQ message")
		return
	}

	response.SendJSON(w, http.StatusOK, map[string]string{"status": "retried", "message_id": messageID})
}
