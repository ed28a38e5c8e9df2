package service

import (
	"errors"
	"fmt"
	"time"
)

// ── 通用业务错误 ──

var (
	ErrNoPermission     = errors.New("无权操作")
	ErrInvalidDate      = errors.New("日期格式无效")
	ErrInvalidDateRange = errors.New("结束时间不能早于开始时间")
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = time.RFC3339
)

// parseDate 按 loc 解析 YYYY-MM-DD，得到当天 0 点
func parseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDate, s)
	}
	return t, nil
}

// parseDateTime 解析 RFC3339 时间
func parseDateTime(s string) (time.Time, error) {
	t, err := time.Parse(dateTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDate, s)
	}
	return t, nil
}

func parseOptionalDate(s string, loc *time.Location) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseDate(s, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// dayRange 把包含两端的日期区间转为 [start 0 点, end 当天最后一刻]
func dayRange(start, end string, loc *time.Location) (time.Time, time.Time, error) {
	from, err := parseDate(start, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseDate(end, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	return from, endOfDay(to), nil
}

func endOfDay(t time.Time) time.Time {
	return t.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// yearRange 某年在 loc 下的完整区间
func yearRange(year int, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(1, 0, 0).Add(-time.Nanosecond)
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func formatDateTime(t time.Time) string {
	return t.Format(dateTimeLayout)
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

func strPtr(s string) *string { return &s }
