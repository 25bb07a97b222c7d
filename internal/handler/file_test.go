package handler

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"clipforge/internal/appdirs"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configurePathResolverForTest(t *testing.T) string {
	t.Helper()

	tempDir := t.TempDir()
	originalResolver := appDirsResolver
	appDirsResolver = func() (appdirs.Paths, error) {
		return appdirs.Paths{
			OutputDir: filepath.Join(tempDir, "output"),
			CacheDir:  filepath.Join(tempDir, "cache"),
		}, nil
	}
	t.Cleanup(func() {
		appDirsResolver = originalResolver
	})
	return tempDir
}

func buildFileRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := &Handler{}
	router.GET("/api/file/*filepath", h.DownloadFile)
	router.HEAD("/api/file/*filepath", h.DownloadFile)
	return router
}

func TestDownloadFile_NotFound(t *testing.T) {
	configurePathResolverForTest(t)
	router := buildFileRouter()

	req, _ := http.NewRequest("HEAD", "/api/file/nonexistent/clip.mp4", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadFile_Exists(t *testing.T) {
	tempDir := configurePathResolverForTest(t)

	taskDir := filepath.Join(tempDir, "output", "tasks", "task1")
	require.NoError(t, os.MkdirAll(taskDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(taskDir, "clip.mp4"), []byte("video bytes"), 0o644))

	router := buildFileRouter()

	req, _ := http.NewRequest("GET", "/api/file/task1/clip.mp4", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "video bytes", w.Body.String())
}

func TestDownloadFile_RejectsTraversal(t *testing.T) {
	configurePathResolverForTest(t)
	router := buildFileRouter()

	req, _ := http.NewRequest("GET", "/api/file/..%2F..%2Fetc%2Fpasswd", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.NotEqual(t, http.StatusOK, w.Code)
}
