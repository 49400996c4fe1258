package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"swim-admin/internal/service"
	"swim-admin/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportCalendar 导出课时日历
// GET /api/v1/export/calendar?instructor_id=xxx
func (h *ExportHandler) ExportCalendar(c *gin.Context) {
	data, filename, err := h.exportSvc.CalendarICS(c.Request.Context(), c.Query("instructor_id"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	sendFile(c, filename, contentTypeICS, data)
}

// ExportAttendance 导出出勤表
// GET /api/v1/export/courses/:id/attendance
func (h *ExportHandler) ExportAttendance(c *gin.Context) {
	buf, filename, err := h.exportSvc.AttendanceWorkbook(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	sendFile(c, filename, contentTypeXLSX, buf.Bytes())
}

// sendFile 设置下载响应头
func sendFile(c *gin.Context, filename, contentType string, data []byte) {
	encodedFilename := url.PathEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 13001, "课程不存在")
	default:
		response.InternalError(c)
	}
}
