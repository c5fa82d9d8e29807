package rule

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"shift-swap/backend/config"
)

// ── 班次时间窗口策略 ──
//
// 全部为纯谓词：不持久化、无副作用。
// 日期一律以单一参考时区的"今天"为锚点校验，
// 与请求方设备所在时区无关。

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

const dateLayout = "2006-01-02"

// Policy 班次窗口策略
// 由配置构造一次，进程内只读。
type Policy struct {
	loc            *time.Location
	maxAheadMonths int
	earliestStart  string
	latestEnd      string
	stepMinutes    int
	allowedHours   map[int]bool
}

// NewPolicy 从配置构造 Policy
func NewPolicy(cfg *config.SwapConfig) (*Policy, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("加载参考时区失败: %w", err)
	}

	allowed := make(map[int]bool, len(cfg.AllowedHours))
	for _, h := range cfg.AllowedHours {
		allowed[h] = true
	}

	return &Policy{
		loc:            loc,
		maxAheadMonths: cfg.MaxAheadMonths,
		earliestStart:  cfg.EarliestStart,
		latestEnd:      cfg.LatestEnd,
		stepMinutes:    cfg.SlotStepMinutes,
		allowedHours:   allowed,
	}, nil
}

// Location 返回参考时区
func (p *Policy) Location() *time.Location {
	return p.loc
}

// Today 返回参考时区下 now 对应的日历日（YYYY-MM-DD）
func (p *Policy) Today(now time.Time) string {
	return now.In(p.loc).Format(dateLayout)
}

// ValidDateFormat 判断 date 是否为合法的 YYYY-MM-DD 日期
func (p *Policy) ValidDateFormat(date string) bool {
	if !datePattern.MatchString(date) {
		return false
	}
	_, err := time.Parse(dateLayout, date)
	return err == nil
}

// WithinAllowedWindow 判断 date 是否落在允许窗口内：
// 不早于参考时区的当天，且不晚于当天后推 maxAheadMonths 个日历月。
func (p *Policy) WithinAllowedWindow(date string, now time.Time) bool {
	if !p.ValidDateFormat(date) {
		return false
	}
	today := now.In(p.loc)
	min := today.Format(dateLayout)
	max := addMonthsClamped(today, p.maxAheadMonths).Format(dateLayout)
	// 零填充 ISO 日期按字典序比较即为时间序
	return date >= min && date <= max
}

// addMonthsClamped 日历月加法，目标月份天数不足时取其最后一天
// （1月31日 +1 月 → 2月28日），不像 AddDate 那样溢出到下个月。
func addMonthsClamped(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

// ValidTimeSlot 判断 start/end 是否均落在固定时间网格上
// （步长 stepMinutes，范围 [earliestStart, latestEnd]），且 start < end。
func (p *Policy) ValidTimeSlot(start, end string) bool {
	if !p.onGrid(start) || !p.onGrid(end) {
		return false
	}
	return start < end
}

// ValidDuration 判断时长是否属于允许的枚举值
func (p *Policy) ValidDuration(hours int) bool {
	return p.allowedHours[hours]
}

// ValidTimeOfDay 判断单个 HH:MM 时刻是否为网格上的合法时刻
func (p *Policy) ValidTimeOfDay(t string) bool {
	return p.onGrid(t)
}

// onGrid 判断 HH:MM 是否为网格上的合法时刻
func (p *Policy) onGrid(t string) bool {
	if !timePattern.MatchString(t) {
		return false
	}
	hour, err := strconv.Atoi(t[:2])
	if err != nil || hour > 23 {
		return false
	}
	minute, err := strconv.Atoi(t[3:])
	if err != nil || minute > 59 {
		return false
	}
	if minute%p.stepMinutes != 0 {
		return false
	}
	return t >= p.earliestStart && t <= p.latestEnd
}
