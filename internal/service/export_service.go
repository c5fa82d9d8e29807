package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"shift-swap/backend/internal/model"
	"shift-swap/backend/internal/repository"
	"shift-swap/backend/internal/rule"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoShifts     = errors.New("当前用户暂无班次可导出")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 班次表支持两种导出格式：Excel (.xlsx) 与 iCalendar (.ics)
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - ICS 事件时间以参考时区解释班次的日期与时刻
type ExportService interface {
	// ExportShifts 导出当前用户的班次为 Excel
	ExportShifts(ctx context.Context, userID string) (*bytes.Buffer, string, error)
	// ExportShiftsICS 导出当前用户的班次为 iCalendar
	ExportShiftsICS(ctx context.Context, userID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	policy *rule.Policy
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, policy *rule.Policy, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, policy: policy, logger: logger, now: time.Now}
}

// listForExport 查询用户班次，空列表视为业务错误
func (s *exportService) listForExport(ctx context.Context, userID string) ([]model.Shift, error) {
	shifts, err := s.repo.Shift.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询导出班次失败", zap.Error(err))
		return nil, err
	}
	if len(shifts) == 0 {
		return nil, ErrExportNoShifts
	}
	return shifts, nil
}

// ═══════════════════════════════════════════════════════════
// ExportShifts — 导出班次为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单 Sheet "我的班次"
//   - 表头：日期 | 开始 | 结束 | 时长(小时) | 换班状态
//   - 行序沿用列表查询序（日期 + 开始时间升序）
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportShifts(ctx context.Context, userID string) (*bytes.Buffer, string, error) {
	shifts, err := s.listForExport(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "我的班次"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		s.logger.Error("创建 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", "C", 10)
	f.SetColWidth(sheetName, "D", "D", 12)
	f.SetColWidth(sheetName, "E", "E", 14)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	headers := []string{"日期", "开始", "结束", "时长(小时)", "换班状态"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for row, shift := range shifts {
		status := "—"
		for _, req := range shift.SwapRequests {
			if req.IsActive {
				status = "换班中"
				break
			}
		}
		values := []interface{}{shift.Date, shift.Start, shift.End, shift.DurationHours, status}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("写出 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("shifts_%s.xlsx", s.policy.Today(s.now()))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportShiftsICS — 导出班次为 iCalendar
// ═══════════════════════════════════════════════════════════
//
// 每个班次生成一个 VEVENT：
//   - UID 取班次主键，重复导入同一日历时按 UID 去重
//   - DTSTART/DTEND 以参考时区解释 shift_date + start/end
//
// 返回值：buf（ICS 内容）, filename（建议文件名）, error

func (s *exportService) ExportShiftsICS(ctx context.Context, userID string) (*bytes.Buffer, string, error) {
	shifts, err := s.listForExport(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//shift-swap//backend//CN")

	loc := s.policy.Location()
	for _, shift := range shifts {
		start, err := time.ParseInLocation("2006-01-02 15:04", shift.Date+" "+shift.Start, loc)
		if err != nil {
			s.logger.Error("解析班次开始时间失败",
				zap.String("shift_id", shift.ShiftID), zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
		end, err := time.ParseInLocation("2006-01-02 15:04", shift.Date+" "+shift.End, loc)
		if err != nil {
			s.logger.Error("解析班次结束时间失败",
				zap.String("shift_id", shift.ShiftID), zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}

		event := cal.AddEvent(shift.ShiftID)
		event.SetSummary(fmt.Sprintf("班次 %s-%s", shift.Start, shift.End))
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetDtStampTime(s.now())
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("shifts_%s.ics", s.policy.Today(s.now()))
	return buf, filename, nil
}
