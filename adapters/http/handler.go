package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/dialogcast/dialogcast/adapters/tts"
	"github.com/dialogcast/dialogcast/domain"
	"github.com/dialogcast/dialogcast/usecase"
	"github.com/dialogcast/dialogcast/utils/log"
)

const (
	JWTExpiry = 24 * time.Hour

	MaxConcurrent = 10

	// Audio import limits
	MaxImportSize = 10 * 1024 * 1024 // 10MB
)

// Transcriber converts imported audio into source text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// VoiceRegistry exposes the per-role voice table.
type VoiceRegistry interface {
	Voices() map[string]tts.Voice
	UpdateVoice(roleID string, voice tts.Voice) bool
}

type PodcastHandler struct {
	generation  *usecase.GenerationService
	assembly    *usecase.AssemblyService
	export      *usecase.ExportService
	transcriber Transcriber
	voices      VoiceRegistry
	jwtSecret   []byte
	apiKey      string
	apiSecret   string
}

func NewPodcastHandler(
	generation *usecase.GenerationService,
	assembly *usecase.AssemblyService,
	export *usecase.ExportService,
	transcriber Transcriber,
	voices VoiceRegistry,
) *PodcastHandler {
	return &PodcastHandler{
		generation:  generation,
		assembly:    assembly,
		export:      export,
		transcriber: transcriber,
		voices:      voices,
		jwtSecret:   []byte(envOr("JWT_SECRET", "change-me-in-production")),
		apiKey:      envOr("API_KEY", ""),
		apiSecret:   envOr("API_SECRET", ""),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type GenerateRequest struct {
	Text         string `json:"text"`
	Style        string `json:"style"`
	Participants int    `json:"participants"`
	Model        string `json:"model"`
	CustomModel  string `json:"custom_model"`
}

type SynthesizeRequest struct {
	Role    string `json:"role"`
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

type JWTClaims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

// GenerateJWT creates a JWT token for authenticated clients
func (h *PodcastHandler) GenerateJWT(c echo.Context) error {
	key := c.Request().Header.Get("X-API-Key")
	secret := c.Request().Header.Get("X-API-Secret")

	if h.apiKey == "" || key != h.apiKey || secret != h.apiSecret {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	claims := &JWTClaims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(JWTExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "dialogcast",
			Subject:   "podcast-pipeline",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(h.jwtSecret)
	if err != nil {
		log.WithCtx(c.Request().Context()).Error("signing JWT", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"token": tokenString,
		"type":  "Bearer",
	})
}

// JWT middleware for authentication
func (h *PodcastHandler) JWTMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization format")
		}

		token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return h.jwtSecret, nil
		})
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		}

		if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
			c.Set("user_id", claims.UserID)
			return next(c)
		}

		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token claims")
	}
}

// RateLimitMiddleware bounds concurrent pipeline requests.
func (h *PodcastHandler) RateLimitMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	semaphore := make(chan struct{}, MaxConcurrent)
	return func(c echo.Context) error {
		select {
		case semaphore <- struct{}{}:
			defer func() { <-semaphore }()
			return next(c)
		default:
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many concurrent requests")
		}
	}
}

// Generate runs the full generation leg and returns the normalized dialog.
func (h *PodcastHandler) Generate(c echo.Context) error {
	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	opts := domain.GenerationOptions{
		Text:         req.Text,
		Style:        domain.DialogStyle(req.Style),
		Participants: req.Participants,
		Model:        req.Model,
		CustomModel:  req.CustomModel,
	}

	result, err := h.generation.Generate(c.Request().Context(), opts)
	if err != nil {
		return h.generationError(c, err)
	}
	return c.JSON(http.StatusOK, generateResponse(result))
}

// Regenerate replays the previous generation options.
func (h *PodcastHandler) Regenerate(c echo.Context) error {
	result, err := h.generation.Regenerate(c.Request().Context())
	if err != nil {
		return h.generationError(c, err)
	}
	return c.JSON(http.StatusOK, generateResponse(result))
}

func generateResponse(result *usecase.GenerationResult) map[string]interface{} {
	return map[string]interface{}{
		"ok":          true,
		"script":      result.Script,
		"token_usage": result.Usage,
		"dialog":      result.Dialog,
		"model":       result.Model,
		"diagnostic":  result.Diagnostic,
	}
}

func (h *PodcastHandler) generationError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrEmptyInput),
		errors.Is(err, domain.ErrInputTooShort),
		errors.Is(err, domain.ErrMissingCustomModel),
		errors.Is(err, domain.ErrNothingGenerated):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrGenerationInFlight):
		return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		log.WithCtx(c.Request().Context()).Error("generation failed", zap.Error(err))
		return c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	}
}

// SynthesizeTurn renders audio for a single dialog turn.
func (h *PodcastHandler) SynthesizeTurn(c echo.Context) error {
	var req SynthesizeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "text is required"})
	}

	turn := domain.DialogTurn{RoleID: req.Role, Speaker: req.Speaker, Text: req.Text}
	audioRef, err := h.assembly.Synthesize(c.Request().Context(), turn)
	if err != nil {
		log.WithCtx(c.Request().Context()).Error("turn synthesis failed",
			zap.String("role", req.Role),
			zap.Error(err))
		return c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok":        true,
		"audio_ref": audioRef,
	})
}

// Assemble runs the two-stage whole-dialog assembly.
func (h *PodcastHandler) Assemble(c echo.Context) error {
	artifact, err := h.assembly.Assemble(c.Request().Context())
	if err != nil {
		var stageErr *domain.StageError
		switch {
		case errors.Is(err, domain.ErrNoDialog):
			return c.JSON(http.StatusPreconditionFailed, errorResponse{Error: err.Error()})
		case errors.Is(err, domain.ErrAssemblyInFlight):
			return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
		case errors.As(err, &stageErr):
			log.WithCtx(c.Request().Context()).Error("assembly stage failed",
				zap.String("stage", stageErr.Stage),
				zap.Error(stageErr.Err))
			return c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error(), Stage: stageErr.Stage})
		default:
			return c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok":       true,
		"artifact": artifact,
	})
}

// ExportText serves the plain-text reconstruction as a download.
func (h *PodcastHandler) ExportText(c echo.Context) error {
	content, err := h.export.Reconstruct()
	if err != nil {
		return c.JSON(http.StatusPreconditionFailed, errorResponse{Error: err.Error()})
	}

	setDownloadHeader(c, usecase.TextExportFilename)
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(content))
}

// ExportScript serves the structured (verbatim script) form as a download.
func (h *PodcastHandler) ExportScript(c echo.Context) error {
	payload, err := h.export.ReconstructStructured()
	if err != nil {
		return c.JSON(http.StatusPreconditionFailed, errorResponse{Error: err.Error()})
	}

	setDownloadHeader(c, usecase.StructuredExportFilename)
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, payload)
}

func setDownloadHeader(c echo.Context, filename string) {
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename*=UTF-8''%s`, url.PathEscape(filename)))
}

// Transcribe turns imported audio into source text for generation.
func (h *PodcastHandler) Transcribe(c echo.Context) error {
	contentType := c.Request().Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "audio/") && !strings.HasPrefix(contentType, "application/octet-stream") {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid content type. Expected audio/* or application/octet-stream")
	}

	audio, err := io.ReadAll(io.LimitReader(c.Request().Body, MaxImportSize))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read audio body")
	}
	if len(audio) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Empty audio body")
	}

	text, err := h.transcriber.Transcribe(c.Request().Context(), audio)
	if err != nil {
		log.WithCtx(c.Request().Context()).Error("transcription failed", zap.Error(err))
		return c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok":   true,
		"text": text,
	})
}

// Voices lists the per-role voice table.
func (h *PodcastHandler) Voices(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok":     true,
		"voices": h.voices.Voices(),
	})
}

type UpdateVoiceRequest struct {
	Role         string `json:"role"`
	VoiceID      string `json:"voice_id"`
	LanguageCode string `json:"language_code"`
}

// UpdateVoice replaces the voice configured for a role.
func (h *PodcastHandler) UpdateVoice(c echo.Context) error {
	var req UpdateVoiceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	voice := tts.Voice{Name: req.VoiceID, LanguageCode: req.LanguageCode}
	if !h.voices.UpdateVoice(req.Role, voice) {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "unknown role: " + req.Role})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"ok": true})
}

// Health check endpoint
func (h *PodcastHandler) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "dialogcast",
	})
}
