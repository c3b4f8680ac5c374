package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oncodeoperations/artemis-core/internal/apperr"
)

type evaluateRequest struct {
	GitHubURLCamel string `json:"githubUrl"`
	GitHubURLSnake string `json:"github_url"`
	SubmitToLeaderboard bool `json:"submitToLeaderboard"`
}

func (r evaluateRequest) url() string {
	if r.GitHubURLCamel != "" {
		return r.GitHubURLCamel
	}
	return r.GitHubURLSnake
}

// usernameFromGitHubURL accepts either a bare username or a full
// github.com profile URL, per spec §6.1's `{githubUrl | github_url}`
// body shape.
func usernameFromGitHubURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", apperr.New(apperr.KindValidation, "githubUrl is required")
	}
	if !strings.Contains(raw, "/") && !strings.Contains(raw, ".") {
		return raw, nil
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		u, err = url.Parse("https://" + raw)
	}
	if err != nil || !strings.Contains(strings.ToLower(u.Host), "github.com") {
		return "", apperr.New(apperr.KindValidation, "githubUrl must be a github.com profile URL or a bare username")
	}

	username := strings.SplitN(strings.Trim(u.Path, "/"), "/", 2)[0]
	if username == "" {
		return "", apperr.New(apperr.KindValidation, "githubUrl is required")
	}
	return username, nil
}

// Evaluate handles POST /api/evaluate, spec §4.1/§6.1.
func (h *Handlers) Evaluate(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	username, err := usernameFromGitHubURL(req.url())
	if err != nil {
		respondError(c, err)
		return
	}

	report, err := h.Evaluation.Evaluate(c.Request.Context(), username, req.SubmitToLeaderboard)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Leaderboard handles GET /api/leaderboard, spec §6.1.
func (h *Handlers) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, total, err := h.Leaderboard.List(c.Request.Context(), c.Query("country"), c.Query("level"), c.Query("language"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "total": total})
}
