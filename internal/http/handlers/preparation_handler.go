// Preparation HTTP handlers.
//
// REST endpoints for the preparation lifecycle and the read-only summaries:
//   - POST /preparations           (start preparing a recipe)
//   - POST /preparations/complete  (finish one, by id or name)
//   - GET  /preparations           (active summary)
//   - GET  /history                (completion history summary)
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/recipedeck/go-recipe-backend/internal/services"
)

// StartPreparationRequest is the JSON payload for starting a preparation.
// Person defaults when omitted.
type StartPreparationRequest struct {
	Name   string `json:"name" binding:"required,min=1,max=255"`
	Person string `json:"person"`
}

// CompletePreparationRequest finishes a preparation. The id takes precedence
// over the name; at least one must be present.
type CompletePreparationRequest struct {
	Name          string `json:"name"`
	PreparationID string `json:"preparation_id"`
}

// StartPreparation begins preparing the named recipe, enforcing the single
// active preparation per recipe invariant.
func (h *Handlers) StartPreparation(c *gin.Context) {
	var req StartPreparationRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name required (1-255 chars)")
		return
	}

	prep, err := h.preps.Start(c.Request.Context(), userID(c), req.Name, req.Person)
	switch {
	case errors.Is(err, services.ErrRecipeNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "recipe not found")
	case errors.Is(err, services.ErrAlreadyPreparing):
		fail(c, http.StatusConflict, ErrCodeAlreadyPrep, "recipe is already being prepared")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	default:
		ok(c, http.StatusCreated, prep)
	}
}

// CompletePreparation moves exactly one entry from the active list to the
// completion history and returns the completion record.
func (h *Handlers) CompletePreparation(c *gin.Context) {
	var req CompletePreparationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Name) == "" && strings.TrimSpace(req.PreparationID) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name or preparation_id required")
		return
	}

	completion, err := h.preps.Complete(c.Request.Context(), userID(c), req.Name, req.PreparationID)
	switch {
	case errors.Is(err, services.ErrNoActivePreparations):
		fail(c, http.StatusConflict, ErrCodeNoActivePreps, "no active preparations")
	case errors.Is(err, services.ErrPreparationNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "preparation not found")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	default:
		ok(c, http.StatusOK, completion)
	}
}

// ListPreparations returns the active-preparation summary with overdue and
// near-due flags.
func (h *Handlers) ListPreparations(c *gin.Context) {
	summary, err := h.summaries.Active(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, summary)
}

// ListHistory returns the completion-history summary: verbatim below the
// cap, otherwise the most recent entries plus a remaining count.
func (h *Handlers) ListHistory(c *gin.Context) {
	summary, err := h.summaries.History(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, summary)
}
