package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"swim-admin/internal/dto"
	"swim-admin/internal/model"
	"swim-admin/pkg/jwt"
	"swim-admin/pkg/password"
)

var (
	ErrInvalidCredentials = errors.New("邮箱或口令错误")
	ErrUserNotFound       = errors.New("人员不存在")
	ErrRefreshTokenType   = errors.New("不是 Refresh Token")
)

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	// Logout 吊销 Token 直至其原有过期时间
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	Me(ctx context.Context, userID string) (*dto.UserResponse, error)
}

type authService struct {
	*base
	jwtMgr    *jwt.Manager
	hasher    password.Hasher
	blacklist TokenBlacklist
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(b *base, jwtMgr *jwt.Manager, hasher password.Hasher, blacklist TokenBlacklist) AuthService {
	return &authService{base: b, jwtMgr: jwtMgr, hasher: hasher, blacklist: blacklist}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 按邮箱查找（不区分大小写）
	user, ok := s.store.Snapshot().UserByEmail(req.Email)
	if !ok {
		return nil, ErrInvalidCredentials
	}

	// 2. 校验口令
	if err := s.hasher.Verify(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 签发 Token
	return s.issue(&user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != "refresh" {
		return nil, ErrRefreshTokenType
	}
	user, ok := s.store.Snapshot().UserByID(claims.UserID)
	if !ok {
		return nil, ErrUserNotFound
	}
	return s.issue(&user)
}

func (s *authService) issue(user *model.User) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role, user.IsAdmin)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Role, user.IsAdmin)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         toUserResponse(user),
	}, nil
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.blacklist == nil || jti == "" {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Warn("Token 加入黑名单失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, ok := s.store.Snapshot().UserByID(userID)
	if !ok {
		return nil, ErrUserNotFound
	}
	resp := toUserResponse(&user)
	return &resp, nil
}

// toUserResponse 脱敏转换
func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:           u.UserID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		IsAdmin:      u.IsAdmin,
		Category:     u.Category,
		WagePerUnit:  u.WagePerUnit,
		WagePerUnit7: u.WagePerUnit7,
	}
}
