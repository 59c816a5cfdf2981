// Dialogue turn handler.
//
// POST /turn is the conversational surface: the hosting platform posts the
// recognized command name and extracted field values for one turn, and gets
// back the spoken text, a re-prompt, and whether the session should end. The
// tracker owns all dialogue state; this handler only moves JSON.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/recipedeck/go-recipe-backend/internal/dialogue"
	"github.com/recipedeck/go-recipe-backend/internal/http/middleware"
)

// TurnRequest is the JSON payload of one conversational turn. The user id
// may instead come from the X-User-ID header; session_id defaults to the
// user id so simple clients get one implicit session per user.
type TurnRequest struct {
	UserID    string            `json:"user_id"`
	SessionID string            `json:"session_id"`
	Intent    string            `json:"intent" binding:"required"`
	Slots     map[string]string `json:"slots"`
}

// HandleTurn processes a dialogue turn and returns the spoken response.
func (h *Handlers) HandleTurn(c *gin.Context) {
	var req TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Intent) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "intent required")
		return
	}

	uid := strings.TrimSpace(req.UserID)
	if uid == "" {
		uid = userID(c)
	}
	sid := strings.TrimSpace(req.SessionID)
	if sid == "" {
		sid = uid
	}

	middleware.LoggerFrom(c).Debug().
		Str("intent", req.Intent).
		Str("session_id", sid).
		Msg("dialogue turn")

	resp := h.tracker.HandleTurn(c.Request.Context(), dialogue.Turn{
		UserID:    uid,
		SessionID: sid,
		Intent:    req.Intent,
		Slots:     req.Slots,
	})
	ok(c, http.StatusOK, resp)
}
