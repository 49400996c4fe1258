package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// ── PostgreSQL TEXT[] 自定义类型 ──

// StringArray 对应 PostgreSQL TEXT[] 类型，实现 GORM Scanner/Valuer 接口。
// 课时的授课人员 ID 列表以此类型存储。
type StringArray []string

// Scan 将 PostgreSQL 返回的 {a,"b c"} 文本解析为 []string。
func (a *StringArray) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	var s string
	switch v := src.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("StringArray.Scan: unsupported type %T", src)
	}
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return fmt.Errorf("StringArray.Scan: invalid array literal %q", s)
	}
	s = s[1 : len(s)-1]
	if s == "" {
		*a = StringArray{}
		return nil
	}

	arr := make(StringArray, 0, 4)
	var cur strings.Builder
	quoted, escaped := false, false
	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
		case r == ',' && !quoted:
			arr = append(arr, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	arr = append(arr, cur.String())
	*a = arr
	return nil
}

// Value 将 []string 序列化为 PostgreSQL {"a","b"} 文本。
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	parts := make([]string, len(a))
	for i, v := range a {
		v = strings.ReplaceAll(v, `\`, `\\`)
		v = strings.ReplaceAll(v, `"`, `\"`)
		parts[i] = `"` + v + `"`
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

// Contains 判断是否包含指定 ID
func (a StringArray) Contains(id string) bool {
	for _, v := range a {
		if v == id {
			return true
		}
	}
	return false
}

// Clone 返回独立副本（快照之间不共享底层数组）
func (a StringArray) Clone() StringArray {
	if a == nil {
		return StringArray{}
	}
	out := make(StringArray, len(a))
	copy(out, a)
	return out
}

// BaseModel 通用审计字段
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// VersionedModel 支持乐观锁的模型
type VersionedModel struct {
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`
}
