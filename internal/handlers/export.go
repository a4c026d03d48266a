package handlers

import (
	"errors"
	"net/http"
	"path/filepath"

	"devdesk/internal/service"

	"github.com/gin-gonic/gin"
)

// @Summary      Export text as a file
// @Tags         export
// @Accept       x-www-form-urlencoded
// @Produce      octet-stream
// @Param        export_content  formData  string  true   "Text to export"
// @Param        filename        formData  string  false  "Target file name, defaults to exported.txt"
// @Success      200  {file}    file
// @Failure      400  {string}  string
// @Failure      500  {string}  string
// @Router       /export [post]
func (h *Handler) export(c *gin.Context) {
	content, ok := c.GetPostForm("export_content")
	if !ok {
		c.String(http.StatusBadRequest, "export_content is required")
		return
	}

	path, err := h.services.Exporter.Export(c.PostForm("filename"), content)
	if err != nil {
		if errors.Is(err, service.ErrInvalidFilename) {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		if h.log != nil {
			h.log.Errorw("export_failed", "err", err, "user", currentUsername(c))
		}
		c.String(http.StatusInternalServerError, "export failed")
		return
	}

	c.FileAttachment(path, filepath.Base(path))
}
