package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"swim-admin/internal/dto"
	"swim-admin/internal/service"
	"swim-admin/pkg/response"
)

// UserHandler 人员模块 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// ListUsers 人员列表
// GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users := h.userSvc.List(c.Request.Context())
	response.List(c, users, len(users))
}

// GetUser 人员详情
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, user)
}

// CreateUser 新建人员（管理员），未指定口令时返回一次初始口令
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.userSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateUser 更新人员（管理员）
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.userSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, result)
}

// DeleteUser 删除人员（管理员）
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.userSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, nil)
}

// ResetPassword 重置为初始口令（管理员）
// POST /api/v1/users/:id/reset-password
func (h *UserHandler) ResetPassword(c *gin.Context) {
	result, err := h.userSvc.ResetPassword(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *UserHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	case errors.Is(err, service.ErrEmailTaken):
		response.Conflict(c, 12002, "邮箱已被使用")
	case errors.Is(err, service.ErrUserIDTaken):
		response.Conflict(c, 12003, "人员 ID 已存在")
	case errors.Is(err, service.ErrUserSelfDelete):
		response.BadRequest(c, 12004, "不能删除自己")
	default:
		response.InternalError(c)
	}
}
