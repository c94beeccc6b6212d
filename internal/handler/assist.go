package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Barkat-Ullah/seed-lift-backend/internal/cache"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/logger"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/services"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/utils"
)

const assistCacheTTL = 24 * time.Hour

// AssistHandler expose l'assistant de rédaction Gemini, avec cache des
// réponses et limite journalière de requêtes
type AssistHandler struct {
	Gemini  *services.GeminiService
	Cache   *cache.Client
	Limiter *cache.Limiter
}

func NewAssistHandler(gemini *services.GeminiService, c *cache.Client, limiter *cache.Limiter) *AssistHandler {
	return &AssistHandler{Gemini: gemini, Cache: c, Limiter: limiter}
}

type assistRequest struct {
	Prompt string `json:"prompt,omitempty"`
	Data   string `json:"data,omitempty"`
}

type assistUsage struct {
	PromptTokens int32 `json:"promptTokens"`
	Candidates   int   `json:"candidates"`
}

type assistResponse struct {
	Response          string       `json:"response"`
	Usage             *assistUsage `json:"usage,omitempty"`
	Cached            bool         `json:"cached"`
	RemainingRequests int          `json:"remainingRequests"`
}

// Ask répond au prompt. Le champ data, s'il est présent, porte un JSON
// {"prompt": ...} et prime sur prompt.
func (h *AssistHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req assistRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, "invalid request body")
		return
	}

	prompt := strings.TrimSpace(req.Prompt)
	if req.Data != "" {
		var parsed struct {
			Prompt string `json:"prompt"`
		}
		if err := json.Unmarshal([]byte(req.Data), &parsed); err != nil {
			utils.ErrorSimple(w, http.StatusBadRequest, "invalid JSON in data field")
			return
		}
		prompt = strings.TrimSpace(parsed.Prompt)
	}
	if prompt == "" {
		utils.ErrorSimple(w, http.StatusBadRequest, "prompt is required")
		return
	}

	ctx := r.Context()

	exceeded, err := h.Limiter.IsExceeded(ctx)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to check request limit", err)
		return
	}
	if exceeded {
		utils.JSON(w, http.StatusTooManyRequests, utils.APIResponse{
			Success: false,
			Message: fmt.Sprintf("Daily limit exceeded (%d requests). Try again tomorrow.", h.Limiter.Limit()),
			Data:    assistResponse{RemainingRequests: 0},
		})
		return
	}

	cacheKey := fmt.Sprintf("gemini|%s|%s", h.Gemini.Model(), prompt)

	if raw, err := h.Cache.Get(ctx, cacheKey); err == nil && raw != "" {
		var cached assistResponse
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			count, _ := h.Limiter.Count(ctx)
			cached.Cached = true
			cached.RemainingRequests = h.Limiter.Limit() - count
			utils.Success(w, cached)
			return
		}
	}

	result, err := h.Gemini.Ask(ctx, prompt)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to process request", err)
		return
	}

	resp := assistResponse{
		Response: result.Response,
		Usage: &assistUsage{
			PromptTokens: result.PromptTokens,
			Candidates:   result.Candidates,
		},
	}

	if raw, err := json.Marshal(resp); err == nil {
		if err := h.Cache.Set(ctx, cacheKey, string(raw), assistCacheTTL); err != nil {
			logger.Warning("Erreur cache assistant: %v", err)
		}
	}

	count, err := h.Limiter.Increment(ctx)
	if err != nil {
		logger.Warning("Erreur compteur assistant: %v", err)
	}

	resp.Cached = false
	resp.RemainingRequests = h.Limiter.Limit() - count
	utils.Success(w, resp)
}
