package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mlnotify/internal/domain"
	"mlnotify/internal/ports"
	"mlnotify/internal/push"

	"github.com/rs/zerolog/log"
)

// dispatcher validates and forwards a task status event to the push fabric.
// Stateless per request; the server timestamp attached here is the sole
// source of truth for timing, deliberately not trusted from the caller.
type dispatcher struct {
	apiKey string
	pusher ports.Pusher
	now    func() time.Time
}

type dispatchRequest struct {
	ProcessID   string `json:"processId"`
	Status      string `json:"status"`
	DeviceToken string `json:"deviceToken"`
	TaskName    string `json:"taskName"`
}

type dispatchResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
	Details   any    `json:"details,omitempty"`
}

func (d *dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// CORS headers come first; every response carries them.
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, dispatchResponse{
			Success: false,
			Error:   "Method Not Allowed. Only POST is accepted.",
		})
		return
	}

	if d.apiKey == "" {
		log.Ctx(r.Context()).Error().Msg("CRITICAL: API key is not configured in the environment")
		writeJSON(w, http.StatusInternalServerError, dispatchResponse{
			Success: false,
			Error:   "Internal Server Error: API key misconfiguration.",
		})
		return
	}

	authorization := r.Header.Get("Authorization")
	bearer, ok := strings.CutPrefix(authorization, "Bearer ")
	if !ok || bearer != d.apiKey {
		log.Ctx(r.Context()).Warn().
			Str("remote_addr", r.RemoteAddr).
			Str("user_agent", r.UserAgent()).
			Msg("unauthorized access attempt")
		writeJSON(w, http.StatusUnauthorized, dispatchResponse{
			Success: false,
			Error:   "Unauthorized: Invalid or missing API key.",
		})
		return
	}

	var req dispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dispatchResponse{
			Success: false,
			Error:   "Bad Request: invalid JSON body.",
			Details: err.Error(),
		})
		return
	}

	if details := validateDispatch(req); len(details) > 0 {
		log.Ctx(r.Context()).Warn().Msgf("invalid notification request: %v", details)
		writeJSON(w, http.StatusBadRequest, dispatchResponse{
			Success: false,
			Error:   "Bad Request: invalid notification request.",
			Details: details,
		})
		return
	}

	// One server timestamp per request; which field it lands in depends on
	// the status.
	timestamp := strconv.FormatInt(d.now().UnixMilli(), 10)

	data := map[string]string{
		"processId": req.ProcessID,
		"status":    req.Status,
	}
	if req.TaskName != "" {
		data["taskName"] = req.TaskName
	}
	if req.Status == domain.WireStart {
		data["taskActualStartTime"] = timestamp
	} else {
		data["taskActualCompletionTime"] = timestamp
	}

	msg := domain.PushMessage{Token: req.DeviceToken, Data: data}
	log.Ctx(r.Context()).Info().Msgf("attempting to send push message for process %s", req.ProcessID)

	messageID, err := d.pusher.Send(r.Context(), msg)
	if err != nil {
		d.writeSendError(w, r, req.ProcessID, err)
		return
	}

	log.Ctx(r.Context()).Info().Msgf("successfully sent message %s for process %s", messageID, req.ProcessID)
	writeJSON(w, http.StatusOK, dispatchResponse{Success: true, MessageID: messageID})
}

func validateDispatch(req dispatchRequest) map[string]string {
	details := make(map[string]string)
	if req.ProcessID == "" {
		details["processId"] = "required"
	}
	if req.DeviceToken == "" {
		details["deviceToken"] = "required"
	}
	switch req.Status {
	case "":
		details["status"] = "required"
	case domain.WireStart, domain.WireCompleted, domain.WireFailed:
	default:
		details["status"] = "must be one of START, COMPLETED, FAILED"
	}
	return details
}

func (d *dispatcher) writeSendError(w http.ResponseWriter, r *http.Request, processID string, err error) {
	log.Ctx(r.Context()).Error().Err(err).Msgf("error sending push message for process %s", processID)

	switch {
	case errors.Is(err, push.ErrTokenNotRegistered):
		writeJSON(w, http.StatusBadRequest, dispatchResponse{
			Success: false,
			Error:   "Invalid or unregistered device token.",
			Details: err.Error(),
		})
	case errors.Is(err, push.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, dispatchResponse{
			Success: false,
			Error:   "Invalid argument in push message.",
			Details: err.Error(),
		})
	default:
		writeJSON(w, http.StatusInternalServerError, dispatchResponse{
			Success: false,
			Error:   "Internal Server Error while sending push message.",
			Details: err.Error(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body dispatchResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
