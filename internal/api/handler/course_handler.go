package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"swim-admin/internal/dto"
	"swim-admin/internal/service"
	pkgerrors "swim-admin/pkg/errors"
	"swim-admin/pkg/response"
)

// CourseHandler 课程模块 HTTP 处理器
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// ListCourses 课程列表（按当前用户可见性过滤）
// GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
	viewer, ok := MustGetViewer(c)
	if !ok {
		return
	}
	courses := h.courseSvc.List(c.Request.Context(), viewer)
	response.List(c, courses, len(courses))
}

// GetCourse 课程详情
// GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, err := h.courseSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.OK(c, course)
}

// CreateCourse 新建课程
// POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req dto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	course, err := h.courseSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.Created(c, course)
}

// UpdateCourse 更新课程，version 不一致时返回 409
// PUT /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	var req dto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	course, err := h.courseSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.OK(c, course)
}

// DeleteCourse 删除课程
// DELETE /api/v1/courses/:id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	if err := h.courseSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleCourseError(c, err)
		return
	}
	response.OK(c, nil)
}

// DuplicateCourse 复制课程
// POST /api/v1/courses/:id/duplicate
func (h *CourseHandler) DuplicateCourse(c *gin.Context) {
	var req dto.DuplicateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	course, err := h.courseSvc.Duplicate(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.Created(c, course)
}

// ConfirmSession 确认课时，返回 ICS 与 mailto 链接
// POST /api/v1/courses/:id/sessions/:sid/confirm
func (h *CourseHandler) ConfirmSession(c *gin.Context) {
	result, err := h.courseSvc.ConfirmSession(c.Request.Context(), c.Param("id"), c.Param("sid"))
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.OK(c, result)
}

// GetStaffing 课程各课时的人员配置
// GET /api/v1/courses/:id/staffing
func (h *CourseHandler) GetStaffing(c *gin.Context) {
	result, err := h.courseSvc.Staffing(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.List(c, result, len(result))
}

// GetFinance 课程收支
// GET /api/v1/courses/:id/finance
func (h *CourseHandler) GetFinance(c *gin.Context) {
	result, err := h.courseSvc.Finance(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.OK(c, result)
}

// PaymentConfirmation 付款确认邮件草稿
// GET /api/v1/courses/:id/participants/:pid/payment-confirmation
func (h *CourseHandler) PaymentConfirmation(c *gin.Context) {
	result, err := h.courseSvc.PaymentConfirmation(c.Request.Context(), c.Param("id"), c.Param("pid"))
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.OK(c, result)
}

// ImportParticipants 批量导入学员
// POST /api/v1/courses/:id/participants/import
// multipart 上传 xlsx（字段 file），或 JSON {"text": "..."} 每行一名学员
func (h *CourseHandler) ImportParticipants(c *gin.Context) {
	var (
		rows []service.ParticipantImportRow
		err  error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, ferr := c.FormFile("file")
		if ferr != nil {
			response.BadRequest(c, 10001, "请上传文件")
			return
		}
		if !strings.HasSuffix(strings.ToLower(file.Filename), ".xlsx") {
			response.BadRequest(c, 13020, "仅支持 .xlsx 格式")
			return
		}
		f, ferr := file.Open()
		if ferr != nil {
			response.InternalError(c)
			return
		}
		defer f.Close()
		rows, err = service.ParseParticipantSheet(f)
	} else {
		var req dto.ImportTextRequest
		if berr := c.ShouldBindJSON(&req); berr != nil {
			response.BadRequest(c, 10001, "参数校验失败")
			return
		}
		rows, err = service.ParseParticipantLines(req.Text)
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrImportNoData):
			response.BadRequest(c, 13021, "导入内容中没有数据")
		case errors.Is(err, service.ErrImportBadHeader):
			response.BadRequest(c, 13022, "表头缺少 Name 列")
		case errors.Is(err, service.ErrImportTooManyRows):
			response.BadRequest(c, 13023, "单次导入不能超过 200 行")
		default:
			response.BadRequest(c, 13024, "无法解析导入文件")
		}
		return
	}

	result, err := h.courseSvc.ImportParticipants(c.Request.Context(), c.Param("id"), rows)
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.OK(c, result)
}

// ListTitles 课程标题建议
// GET /api/v1/courses/titles
func (h *CourseHandler) ListTitles(c *gin.Context) {
	titles := h.courseSvc.Titles(c.Request.Context())
	response.List(c, titles, len(titles))
}

// AddTitle 新增课程标题建议
// POST /api/v1/courses/titles
func (h *CourseHandler) AddTitle(c *gin.Context) {
	var req dto.CourseTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	titles := h.courseSvc.AddTitle(c.Request.Context(), req.Title)
	response.List(c, titles, len(titles))
}

// handleCourseError 课程相关业务错误 → HTTP 响应
func handleCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 13001, "课程不存在")
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 13002, "课时不存在")
	case errors.Is(err, service.ErrParticipantNotFound):
		response.NotFound(c, 13003, "学员不存在")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10009, "数据已被其他操作修改，请刷新后重试")
	case errors.Is(err, service.ErrCourseTitleRequired),
		errors.Is(err, service.ErrCourseLeaderRequired),
		errors.Is(err, service.ErrInvalidRequirement),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidTime),
		errors.Is(err, service.ErrInvalidDuration),
		errors.Is(err, service.ErrUnitFlagConflict),
		errors.Is(err, service.ErrReplacementWithUnit):
		response.ErrorWithDetails(c, http.StatusBadRequest, 13010, "课程数据校验失败", err.Error())
	case errors.Is(err, service.ErrSessionUnstaffed):
		response.BadRequest(c, 13011, "请先为该课时安排有邮箱的人员")
	case errors.Is(err, service.ErrParticipantNoEmail):
		response.BadRequest(c, 13012, "学员未填写邮箱")
	default:
		response.InternalError(c)
	}
}
