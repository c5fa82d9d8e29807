package rule

import "shift-swap/backend/internal/model"

// ── 换班资格规则引擎 ──
//
// 判定"候选班次能否满足一条换班请求"。
// 服务端创建意向时的校验与浏览页预筛自己可用班次时
// 必须共用此函数，避免前端展示出服务端会拒绝的选项。

// Violation 资格校验失败的具体原因
type Violation int

const (
	ViolationNone              Violation = iota // 通过
	ViolationDurationMismatch                   // 时长不一致
	ViolationDateMismatch                       // 日期不满足请求的日期条件
	ViolationStartTimeMismatch                  // 开始时间不等于要求值
	ViolationEndTimeTooLate                     // 结束时间晚于允许的最晚值
)

// Message 返回面向用户的失败说明
func (v Violation) Message() string {
	switch v {
	case ViolationNone:
		return ""
	case ViolationDurationMismatch:
		return "候选班次时长与请求班次不一致"
	case ViolationDateMismatch:
		return "候选班次日期不满足请求的日期条件"
	case ViolationStartTimeMismatch:
		return "候选班次开始时间与要求不符"
	case ViolationEndTimeTooLate:
		return "候选班次结束时间晚于允许的最晚时间"
	default:
		return "候选班次不满足换班条件"
	}
}

// Eligible 判定 candidate 能否满足 req（持有班次为 have）。
// 按固定顺序逐条校验，遇到第一条不满足即返回其原因：
//  1. 时长精确相等；
//  2. 日期形态：SAME_DAY 要求同日，DATE_LIST 要求日期在列表内；
//  3. 时间规则：ANY 直接通过，EXACT_START 要求开始时间精确相等，
//     END_NOT_AFTER 要求结束时间不晚于要求值（HH:MM 零填充，字典序比较即时间序）。
//
// 申请人与候选班次归属人的身份校验由调用方完成，不在此函数内。
// 纯函数：相同输入恒得相同输出。
func Eligible(req *model.SwapRequest, have, candidate *model.Shift) Violation {
	// 1. 时长精确匹配，无容差
	if candidate.DurationHours != have.DurationHours {
		return ViolationDurationMismatch
	}

	// 2. 日期形态匹配
	switch req.WantType {
	case model.WantTypeSameDay:
		if candidate.Date != have.Date {
			return ViolationDateMismatch
		}
	case model.WantTypeDateList:
		if !req.WantDates.Contains(candidate.Date) {
			return ViolationDateMismatch
		}
	default:
		// 未知的日期形态一律拒绝，不依赖上游校验
		return ViolationDateMismatch
	}

	// 3. 时间规则匹配
	switch req.TimeRule {
	case model.TimeRuleExactStart:
		if candidate.Start != req.TimeValue {
			return ViolationStartTimeMismatch
		}
	case model.TimeRuleEndNotAfter:
		if candidate.End > req.TimeValue {
			return ViolationEndTimeTooLate
		}
	}

	return ViolationNone
}
