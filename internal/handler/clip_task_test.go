package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"clipforge/config"
	"clipforge/internal/mocks"
	"clipforge/internal/response"
	"clipforge/internal/service"
	"clipforge/internal/types"
	"clipforge/log"
	apperrors "clipforge/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	log.InitLogger()
}

func buildClipRouter(svc *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := &Handler{Service: svc}
	router.POST("/api/clip/highlights", h.SelectHighlights)
	router.POST("/api/clip/captions", h.GenerateCaptions)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req, _ := http.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSelectHighlightsEndpoint(t *testing.T) {
	mockChatCompleter := new(mocks.MockChatCompleter)
	mockChatCompleter.On("ChatCompletion", mock.Anything, mock.Anything).
		Return(`[{"title": "clip", "start": 0, "end": 20, "score": 80}]`, nil)
	router := buildClipRouter(&service.Service{ChatCompleter: mockChatCompleter})

	w := postJSON(t, router, "/api/clip/highlights", gin.H{
		"transcript": gin.H{
			"full_text": "Hola a todos",
			"language":  "es",
			"segments":  []gin.H{{"text": "Hola a todos", "start": 0, "end": 20}},
		},
		"constraints": gin.H{"min_duration": 15, "max_duration": 60},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int32(0), resp.Error)
}

func TestSelectHighlightsEndpoint_InvalidTranscript(t *testing.T) {
	router := buildClipRouter(&service.Service{ChatCompleter: new(mocks.MockChatCompleter)})

	// Reversed segment times must be rejected before any model call.
	w := postJSON(t, router, "/api/clip/highlights", gin.H{
		"transcript": gin.H{
			"segments": []gin.H{{"text": "Hola", "start": 5, "end": 2}},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int32(apperrors.CodeInvalidTranscript), resp.Error)
}

func TestGenerateCaptionsEndpoint_HallucinationSurfacesCode(t *testing.T) {
	config.Conf.Caption = config.CaptionStyleConfig{FontSize: 72, TextColor: "#FFFFFF", HighlightColor: "#FFD700"}

	mockChatCompleter := new(mocks.MockChatCompleter)
	mockChatCompleter.On("DeterministicCompletion", mock.Anything, mock.Anything).
		Return(`{"segments": [{"words": [{"text": "Bienvenidos"}, {"text": "Hola"}]}]}`, nil)
	router := buildClipRouter(&service.Service{ChatCompleter: mockChatCompleter})

	w := postJSON(t, router, "/api/clip/captions", gin.H{
		"words": []types.TranscriptWord{
			{Text: "Hola", Start: 0, End: 0.5},
			{Text: "todos", Start: 0.5, End: 1.0},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int32(apperrors.CodeCaptionHallucination), resp.Error)
	assert.Contains(t, resp.Detail, "Bienvenidos")
}
