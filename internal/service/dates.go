package service

import (
	"fmt"
	"time"
)

// 日期与时间均以字符串保存，不带时区
const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// ParseDate 解析 YYYY-MM-DD
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("日期格式无效 %q: %w", s, err)
	}
	return t, nil
}

// AddDays 纯日期偏移，不受夏令时影响
func AddDays(date string, days int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, days).Format(dateLayout), nil
}

// DateOf 返回 now 在 loc 时区下的日期
func DateOf(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(dateLayout)
}

// ValidTime 校验 HH:MM
func ValidTime(s string) bool {
	_, err := time.Parse(timeLayout, s)
	return err == nil && len(s) == 5
}

// SessionStart 课时在 loc 时区下的开始时刻
func SessionStart(date, startTime string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+startTime, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("课时时间无效 %s %s: %w", date, startTime, err)
	}
	return t, nil
}

// GermanDate 02.01.2006
func GermanDate(date string) string {
	t, err := ParseDate(date)
	if err != nil {
		return date
	}
	return t.Format("02.01.2006")
}

// GermanDayMonth 02.01.
func GermanDayMonth(date string) string {
	t, err := ParseDate(date)
	if err != nil {
		return date
	}
	return t.Format("02.01.")
}
