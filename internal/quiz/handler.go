package quiz

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/snapquiz/backend/internal/models"
)

// Handler exposes the quiz pipeline and session over HTTP. All routes
// require the auth middleware to have put the caller's uid in the request
// context.
type Handler struct {
	pipeline *Pipeline
	sessions SessionStore
}

func NewHandler(pipeline *Pipeline, sessions SessionStore) *Handler {
	return &Handler{pipeline: pipeline, sessions: sessions}
}

type generateRequest struct {
	Prompt     string `json:"prompt"`
	Count      int    `json:"count"`
	Difficulty string `json:"difficulty"`
	Language   string `json:"language"`
}

type quizResponse struct {
	Items []models.QuizItem `json:"items"`
}

type selectRequest struct {
	Index  int    `json:"index"`
	Option string `json:"option"`
}

type scoreResponse struct {
	Score    int    `json:"score"`
	Total    int    `json:"total"`
	Feedback string `json:"feedback"`
}

// generateTimeout bounds how long a request handler waits for the pipeline;
// the provider client has its own shorter HTTP timeout.
const generateTimeout = 2 * time.Minute

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	uid := r.Context().Value("user_id").(string)

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.Count <= 0 {
		req.Count = 5
	}
	if req.Count > 20 {
		req.Count = 20
	}
	difficulty := models.Difficulty(req.Difficulty)
	if !models.ValidDifficulties[difficulty] {
		difficulty = models.DifficultyEasy
	}
	if req.Language == "" {
		req.Language = "English"
	}

	updates, cancel := h.pipeline.Results(uid).Subscribe()
	defer cancel()

	h.pipeline.Generate(r.Context(), uid, req.Prompt, req.Count, difficulty, req.Language)

	deadline := time.After(generateTimeout)
	for {
		select {
		case result := <-updates:
			switch result.State {
			case StateLoading:
				continue
			case StateSuccess:
				writeJSON(w, http.StatusOK, quizResponse{Items: result.Items})
				return
			case StateError:
				writeJSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{Error: result.Err})
				return
			}
		case <-deadline:
			writeJSON(w, http.StatusGatewayTimeout, models.ErrorResponse{Error: "Generation timed out"})
			return
		}
	}
}

func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	uid := r.Context().Value("user_id").(string)
	session, err := h.sessions.Get(r.Context(), uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load quiz session"})
		return
	}
	writeJSON(w, http.StatusOK, quizResponse{Items: session.Items()})
}

func (h *Handler) SelectOption(w http.ResponseWriter, r *http.Request) {
	uid := r.Context().Value("user_id").(string)

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	session, err := h.sessions.Get(r.Context(), uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load quiz session"})
		return
	}
	session.SelectOption(req.Index, req.Option)
	if err := h.sessions.Save(r.Context(), uid, session); err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to save quiz session"})
		return
	}
	writeJSON(w, http.StatusOK, quizResponse{Items: session.Items()})
}

func (h *Handler) ResetOption(w http.ResponseWriter, r *http.Request) {
	uid := r.Context().Value("user_id").(string)

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	session, err := h.sessions.Get(r.Context(), uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load quiz session"})
		return
	}
	session.ResetOption(req.Index)
	if err := h.sessions.Save(r.Context(), uid, session); err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to save quiz session"})
		return
	}
	writeJSON(w, http.StatusOK, quizResponse{Items: session.Items()})
}

func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	uid := r.Context().Value("user_id").(string)
	session, err := h.sessions.Get(r.Context(), uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load quiz session"})
		return
	}

	score := session.Score()
	total := session.Len()
	writeJSON(w, http.StatusOK, scoreResponse{
		Score:    score,
		Total:    total,
		Feedback: Feedback(score, total),
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
