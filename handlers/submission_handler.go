package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/curious-broccoli/ufo-hackathon/services"
)

//go:embed templates/leaderboard.html
var templateFS embed.FS

var leaderboardTemplate = template.Must(template.ParseFS(templateFS, "templates/leaderboard.html"))

// submitRequest mirrors the POST body. Pointer fields make an absent key
// distinguishable from a present-but-empty value, so the response can name
// the missing parameter.
type submitRequest struct {
	Group       *string               `json:"group"`
	Predictions *map[string][]float64 `json:"predictions"`
}

type SubmissionHandler struct {
	submissionService  services.SubmissionService
	leaderboardService services.LeaderboardService
}

func NewSubmissionHandler(ss services.SubmissionService, ls services.LeaderboardService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService:  ss,
		leaderboardService: ls,
	}
}

// Submit scores a prediction submission and persists the result.
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var input submitRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, fmt.Errorf("Failed to decode JSON: %v", err))
		return
	}
	if input.Group == nil {
		badRequestResponse(w, r, fmt.Errorf("Request is missing the parameter 'group'"))
		return
	}
	if input.Predictions == nil {
		badRequestResponse(w, r, fmt.Errorf("Request is missing the parameter 'predictions'"))
		return
	}

	result, err := h.submissionService.Submit(r.Context(), services.SubmitInput{
		GroupName:   *input.Group,
		Predictions: *input.Predictions,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	message := fmt.Sprintf(
		"Saved submission for group '%s' with a CCE of %v, %d classified correctly and %d classified incorrectly.",
		result.Group.Name,
		result.Submission.CCE,
		result.Submission.RightPredictions,
		result.Submission.WrongPredictions,
	)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": message}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteGroup removes an empty group, e.g. one created by a typo'd
// submission attempt. Groups with submissions stay to keep the leaderboard
// history intact.
func (h *SubmissionHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := h.submissionService.DeleteGroup(r.Context(), name); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	message := fmt.Sprintf("Deleted group '%s'.", name)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": message}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// LeaderboardPage renders both rankings as an HTML table page.
func (h *SubmissionHandler) LeaderboardPage(w http.ResponseWriter, r *http.Request) {
	leaderboard, err := h.leaderboardService.Leaderboard(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := leaderboardTemplate.Execute(&buf, leaderboard); err != nil {
		serverErrorResponse(w, r, fmt.Errorf("failed to render leaderboard page: %w", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// LeaderboardJSON serves the same data as the page, for programmatic use.
func (h *SubmissionHandler) LeaderboardJSON(w http.ResponseWriter, r *http.Request) {
	leaderboard, err := h.leaderboardService.Leaderboard(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, leaderboard, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
