package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	core "govpipe/ingestion/service/core"
	"govpipe/internal/models"
)

// ProposalHandler encapsulates the logic for handling HTTP proposal requests
type ProposalHandler struct {
	svc    *core.Service
	logger *log.Logger
}

// NewProposalHandler creates a new ProposalHandler
func NewProposalHandler(s *core.Service, l *log.Logger) *ProposalHandler {
	return &ProposalHandler{svc: s, logger: l}
}

// SubmitProposal handles POST /v1/proposals requests
func (h *ProposalHandler) SubmitProposal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.respondError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	// Content-Type validation
	if r.Header.Get("Content-Type") != "application/json" {
		h.respondError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}

	// Request size limit
	if r.ContentLength > 1*1024*1024 { // 1MB limit
		h.respondError(w, "Request body too large", http.StatusRequestEntityTooLarge)
		return
	}

	// 1. Parse request body JSON
	var reqPayload struct {
		models.ProposalDraft
		ProposerAddress string `json:"proposer_address"`
	}

	if err := json.NewDecoder(r.Body).Decode(&reqPayload); err != nil {
		h.logger.Printf("HTTP Handler: Failed to parse JSON request: %v", err)
		h.respondError(w, "Bad Request: Invalid JSON format", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	// 2. Proposer may arrive from the auth layer header instead of the payload
	proposer := r.Header.Get("X-Proposer-Address")
	if proposer == "" {
		proposer = reqPayload.ProposerAddress
	}

	// 3. Construct Service layer input
	input := &core.ProposalInput{
		Draft:           reqPayload.ProposalDraft,
		ProposerAddress: proposer,
	}

	// 4. Call Service layer processing logic
	result, err := h.svc.SubmitProposal(r.Context(), input)
	if err != nil {
		h.logger.Printf("HTTP Handler: Service layer processing failed: %v", err)

		statusCode := http.StatusInternalServerError
		if errors.Is(err, core.ErrValidation) {
			statusCode = http.StatusBadRequest
		}

		h.respondError(w, err.Error(), statusCode)
		return
	}

	// 5. Construct and return success response (HTTP 202 Accepted)
	respPayload := map[string]interface{}{
		"request_id":         result.RequestID,
		"received_timestamp": result.ReceivedTimestamp.Format(time.RFC3339Nano),
		"status":             "ACCEPTED",
	}

	h.respondJSON(w, respPayload, http.StatusAccepted)
}

// HealthCheck handles GET /health requests
func (h *ProposalHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.respondError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339Nano),
		"service":   "proposal-gateway",
	}

	h.respondJSON(w, resp, http.StatusOK)
}

// Metrics handles GET /metrics requests (basic metrics)
func (h *ProposalHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.respondError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	// Basic metrics - in production, use proper metrics library
	resp := map[string]interface{}{
		"timestamp": time.Now().Unix(),
		"service":   "proposal-gateway",
		"version":   "1.0.0",
	}

	h.respondJSON(w, resp, http.StatusOK)
}

// respondJSON sends JSON response
func (h *ProposalHandler) respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Printf("HTTP Handler: Failed to encode JSON response: %v", err)
		// Cannot send error to client at this point
	}
}

// respondError sends error response
func (h *ProposalHandler) respondError(w http.ResponseWriter, message string, statusCode int) {
	errorResp := map[string]interface{}{
		"error":   message,
		"status":  statusCode,
		"message": http.StatusText(statusCode),
	}

	h.respondJSON(w, errorResp, statusCode)
}
