// Package chat exposes the question-answering endpoint used by the wiki's
// chat widget.
package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"pixels-dojo/internal/handler/http/respond"
	chatUC "pixels-dojo/internal/usecase/chat"
)

const maxQuestionLen = 500

type askRequest struct {
	Question string `json:"question"`
}

type citationDTO struct {
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Category string `json:"category"`
}

type askResponse struct {
	Answer    string        `json:"answer"`
	Citations []citationDTO `json:"citations"`
	Fallback  bool          `json:"fallback"`
}

type AskHandler struct{ Svc *chatUC.Service }

func (h AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("question field required"))
		return
	}
	if len(question) > maxQuestionLen {
		respond.SafeError(w, http.StatusBadRequest, errors.New("question too long"))
		return
	}

	answer, err := h.Svc.Ask(r.Context(), question, "widget")
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	out := askResponse{
		Answer:    answer.Text,
		Citations: make([]citationDTO, 0, len(answer.Citations)),
		Fallback:  answer.Fallback,
	}
	for _, c := range answer.Citations {
		out.Citations = append(out.Citations, citationDTO{
			Title:    c.Title,
			Slug:     c.Slug,
			Category: c.Category,
		})
	}
	respond.JSON(w, http.StatusOK, out)
}

// Register wires the chat routes onto the mux.
func Register(mux *http.ServeMux, svc *chatUC.Service) {
	mux.Handle("POST /api/chat/ask", AskHandler{Svc: svc})
}
