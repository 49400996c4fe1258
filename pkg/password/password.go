// Package password 负责口令的哈希与校验。
//
// 明文口令只在创建/重置时出现一次，持久化的永远是 bcrypt 哈希。
package password

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch 口令不匹配
var ErrMismatch = errors.New("口令不匹配")

// fallbackDefault 姓名为空时的初始口令
const fallbackDefault = "PW1234"

// Hasher 口令哈希接口
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) error
}

// BcryptHasher 基于 bcrypt 的实现
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher 创建 BcryptHasher，cost<=0 时使用默认值
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{Cost: cost}
}

// Hash 生成哈希
func (h *BcryptHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify 校验口令
func (h *BcryptHasher) Verify(hash, plain string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)); err != nil {
		return ErrMismatch
	}
	return nil
}

// Default 生成初始口令（3+3 规则）：名的前三个字符 + 姓的前三个字符，
// 无姓时以 "X" 代替。
func Default(name string) string {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return fallbackDefault
	}
	last := "X"
	if len(parts) > 1 {
		last = parts[len(parts)-1]
	}
	return prefix(parts[0], 3) + prefix(last, 3)
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
