package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clipforge/internal/appdirs"
	"clipforge/internal/response"
	"clipforge/log"
	apperrors "clipforge/pkg/errors"
	"clipforge/pkg/util"
)

var appDirsResolver = appdirs.Resolve

func taskDirCandidates(taskID string) []string {
	candidates := make([]string, 0, 2)
	if dirs, err := appDirsResolver(); err == nil {
		candidates = append(candidates, appdirs.TaskDirFor(dirs, taskID))
	}
	candidates = append(candidates, filepath.Join("tasks", taskID))
	return uniquePaths(candidates...)
}

func preferredTaskDir(taskID string) string {
	candidates := taskDirCandidates(taskID)
	if len(candidates) == 0 {
		return filepath.Join("tasks", taskID)
	}
	return candidates[0]
}

func preferredUploadRoot() string {
	if dirs, err := appDirsResolver(); err == nil {
		return appdirs.UploadRootFor(dirs)
	}
	return "uploads"
}

func uniquePaths(values ...string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		cleaned := filepath.Clean(v)
		if _, ok := seen[cleaned]; ok {
			continue
		}
		seen[cleaned] = struct{}{}
		out = append(out, cleaned)
	}
	return out
}

func isPathWithinRoot(root, candidate string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), candidate)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}

// UploadFile stores a source video for later processing and returns its local
// path.
func (h *Handler) UploadFile(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "missing file", err))
		return
	}

	uploadRoot := preferredUploadRoot()
	if err = os.MkdirAll(uploadRoot, 0o755); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeUnknown, "failed to create upload dir", err))
		return
	}

	name := util.GenerateRandStringWithUpperLowerNum(6) + "_" + util.SanitizePathName(filepath.Base(file.Filename))
	savePath := filepath.Join(uploadRoot, name)
	if err = c.SaveUploadedFile(file, savePath); err != nil {
		log.GetLogger().Error("UploadFile save err", zap.String("path", savePath), zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeUnknown, "failed to save file", err))
		return
	}

	response.Success(c, gin.H{"path": savePath})
}

// DownloadFile serves rendered clips and uploaded sources. Paths are
// restricted to the task and upload roots.
func (h *Handler) DownloadFile(c *gin.Context) {
	requested := strings.TrimPrefix(c.Param("filepath"), "/")
	if requested == "" || strings.Contains(requested, "..") {
		c.Status(http.StatusBadRequest)
		return
	}

	var roots []string
	if dirs, err := appDirsResolver(); err == nil {
		roots = append(roots, appdirs.TaskRootFor(dirs), appdirs.UploadRootFor(dirs))
	}
	roots = append(roots, "tasks", "uploads")

	for _, root := range uniquePaths(roots...) {
		candidate := filepath.Clean(filepath.Join(root, filepath.FromSlash(requested)))
		if !isPathWithinRoot(root, candidate) {
			continue
		}
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			c.File(candidate)
			return
		}
	}

	c.Status(http.StatusNotFound)
}
