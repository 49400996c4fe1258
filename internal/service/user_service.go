package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"swim-admin/internal/dto"
	"swim-admin/internal/model"
	"swim-admin/internal/store"
	"swim-admin/pkg/password"
)

// ── 人员模块业务错误 ──

var (
	ErrEmailTaken     = errors.New("邮箱已被使用")
	ErrUserIDTaken    = errors.New("人员 ID 已存在")
	ErrUserSelfDelete = errors.New("不能删除自己")
)

// UserService 人员业务接口
type UserService interface {
	List(ctx context.Context) []dto.UserResponse
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserCreatedResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	// Delete 删除人员，课时中的引用保留为悬空 ID
	Delete(ctx context.Context, id, callerID string) error
	// ResetPassword 重置为 3+3 初始口令，明文仅返回一次
	ResetPassword(ctx context.Context, id string) (*dto.ResetPasswordResponse, error)
}

type userService struct {
	*base
	hasher password.Hasher
}

// NewUserService 创建 UserService 实例
func NewUserService(b *base, hasher password.Hasher) UserService {
	return &userService{base: b, hasher: hasher}
}

func (s *userService) List(ctx context.Context) []dto.UserResponse {
	users := s.store.Snapshot().Users
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out
}

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	u, ok := s.store.Snapshot().UserByID(id)
	if !ok {
		return nil, ErrUserNotFound
	}
	resp := toUserResponse(&u)
	return &resp, nil
}

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserCreatedResponse, error) {
	snap := s.store.Snapshot()
	if _, taken := snap.UserByEmail(req.Email); taken {
		return nil, ErrEmailTaken
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	} else if _, exists := snap.UserByID(id); exists {
		return nil, ErrUserIDTaken
	}

	plain := req.Password
	generated := plain == ""
	if generated {
		plain = password.Default(req.Name)
	}
	hash, err := s.hasher.Hash(plain)
	if err != nil {
		s.logger.Error("口令哈希失败", zap.Error(err))
		return nil, err
	}

	user := model.User{
		UserID:       id,
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		Role:         req.Role,
		IsAdmin:      req.IsAdmin,
		Category:     req.Category,
		WagePerUnit:  req.WagePerUnit,
		WagePerUnit7: req.WagePerUnit7,
	}
	if err := s.store.SaveUser(ctx, user); err != nil {
		s.logger.Error("保存人员失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("人员已创建", zap.String("user_id", id), zap.String("role", user.Role))
	resp := &dto.UserCreatedResponse{User: toUserResponse(&user)}
	if generated {
		resp.InitialPassword = plain
	}
	return resp, nil
}

func (s *userService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	snap := s.store.Snapshot()
	user, ok := snap.UserByID(id)
	if !ok {
		return nil, ErrUserNotFound
	}
	if other, taken := snap.UserByEmail(req.Email); taken && other.UserID != id {
		return nil, ErrEmailTaken
	}

	user.Name = strings.TrimSpace(req.Name)
	user.Email = strings.TrimSpace(req.Email)
	user.Role = req.Role
	user.IsAdmin = req.IsAdmin
	user.Category = req.Category
	user.WagePerUnit = req.WagePerUnit
	user.WagePerUnit7 = req.WagePerUnit7

	if err := s.store.SaveUser(ctx, user); err != nil {
		s.logger.Error("更新人员失败", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}
	resp := toUserResponse(&user)
	return &resp, nil
}

func (s *userService) Delete(ctx context.Context, id, callerID string) error {
	if id == callerID {
		return ErrUserSelfDelete
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.logger.Info("人员已删除", zap.String("user_id", id))
	return nil
}

func (s *userService) ResetPassword(ctx context.Context, id string) (*dto.ResetPasswordResponse, error) {
	user, ok := s.store.Snapshot().UserByID(id)
	if !ok {
		return nil, ErrUserNotFound
	}

	plain := password.Default(user.Name)
	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("口令已重置", zap.String("user_id", id))
	return &dto.ResetPasswordResponse{Password: plain}, nil
}
