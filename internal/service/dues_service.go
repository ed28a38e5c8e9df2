package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"porest/backend/internal/dto"
	"porest/backend/internal/model"
	"porest/backend/internal/repository"
)

// ── 会费模块业务错误 ──

var (
	ErrDuesNotFound       = errors.New("会费记录不存在")
	ErrDuesAmountInvalid  = errors.New("金额必须大于 0")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

var duesTypes = []string{model.DuesOperating, model.DuesBirthday}

var duesTypeNames = map[string]string{
	model.DuesOperating: "运营费",
	model.DuesBirthday:  "生日费",
}

var duesDirectionNames = map[string]string{
	model.DuesDeposit:  "存入",
	model.DuesWithdraw: "支出",
}

// DuesService 会费业务接口
type DuesService interface {
	Create(ctx context.Context, req *dto.CreateDuesRequest, callerID string) (*dto.DuesResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateDuesRequest, callerID string) (*dto.DuesResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	// List 某年流水（按日期排序），balance 为含上年结转的累计余额
	List(ctx context.Context, year int) ([]dto.DuesResponse, error)
	Summary(ctx context.Context, year int) (*dto.DuesSummaryResponse, error)
	// Export 导出某年流水为 Excel
	Export(ctx context.Context, year int) (*bytes.Buffer, string, error)
}

type duesService struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
}

// NewDuesService 创建 DuesService 实例
func NewDuesService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) DuesService {
	if loc == nil {
		loc = time.UTC
	}
	return &duesService{repo: repo, loc: loc, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *duesService) Create(ctx context.Context, req *dto.CreateDuesRequest, callerID string) (*dto.DuesResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrDuesAmountInvalid
	}
	date, err := parseDate(req.Date, s.loc)
	if err != nil {
		return nil, err
	}

	entry := &model.Dues{
		Year:      date.Year(),
		UserName:  req.UserName,
		Amount:    req.Amount,
		Type:      req.Type,
		Direction: req.Direction,
		Date:      date,
		Detail:    req.Detail,
	}
	entry.CreatedBy = &callerID
	entry.UpdatedBy = &callerID

	if err := s.repo.Dues.Create(ctx, entry); err != nil {
		s.logger.Error("创建会费记录失败", zap.Error(err))
		return nil, err
	}
	return toDuesResponse(entry, entry.Signed()), nil
}

// ────────────────────── Update ──────────────────────

func (s *duesService) Update(ctx context.Context, id string, req *dto.UpdateDuesRequest, callerID string) (*dto.DuesResponse, error) {
	entry, err := s.repo.Dues.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDuesNotFound
		}
		s.logger.Error("查询会费记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.UserName != nil {
		entry.UserName = *req.UserName
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, ErrDuesAmountInvalid
		}
		entry.Amount = *req.Amount
	}
	if req.Type != nil {
		entry.Type = *req.Type
	}
	if req.Direction != nil {
		entry.Direction = *req.Direction
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date, s.loc)
		if err != nil {
			return nil, err
		}
		entry.Date = date
		entry.Year = date.Year()
	}
	if req.Detail != nil {
		entry.Detail = *req.Detail
	}
	entry.UpdatedBy = &callerID

	if err := s.repo.Dues.Update(ctx, entry); err != nil {
		s.logger.Error("更新会费记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toDuesResponse(entry, entry.Signed()), nil
}

// ────────────────────── Delete ──────────────────────

func (s *duesService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Dues.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDuesNotFound
		}
		return err
	}
	if err := s.repo.Dues.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除会费记录失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── List ──────────────────────

func (s *duesService) List(ctx context.Context, year int) ([]dto.DuesResponse, error) {
	_, entries, err := s.ledger(ctx, year)
	return entries, err
}

// ledger 返回期初余额与带累计余额的流水
func (s *duesService) ledger(ctx context.Context, year int) (decimal.Decimal, []dto.DuesResponse, error) {
	opening, err := s.repo.Dues.BalanceBefore(ctx, year)
	if err != nil {
		s.logger.Error("查询期初余额失败", zap.Int("year", year), zap.Error(err))
		return decimal.Zero, nil, err
	}
	entries, err := s.repo.Dues.ListByYear(ctx, year)
	if err != nil {
		s.logger.Error("查询会费流水失败", zap.Int("year", year), zap.Error(err))
		return decimal.Zero, nil, err
	}

	balance := opening
	result := make([]dto.DuesResponse, 0, len(entries))
	for i := range entries {
		balance = balance.Add(entries[i].Signed())
		result = append(result, *toDuesResponse(&entries[i], balance))
	}
	return opening, result, nil
}

// ────────────────────── Summary ──────────────────────

func (s *duesService) Summary(ctx context.Context, year int) (*dto.DuesSummaryResponse, error) {
	opening, entries, err := s.ledger(ctx, year)
	if err != nil {
		return nil, err
	}
	return summarizeDues(year, opening, entries), nil
}

// summarizeDues 按类型汇总存入、支出与净额；期末余额为最后一条的累计余额
func summarizeDues(year int, opening decimal.Decimal, entries []dto.DuesResponse) *dto.DuesSummaryResponse {
	totals := make(map[string]*dto.DuesTypeTotal, len(duesTypes))
	for _, t := range duesTypes {
		totals[t] = &dto.DuesTypeTotal{Type: t, Deposit: decimal.Zero, Withdraw: decimal.Zero, Net: decimal.Zero}
	}
	closing := opening
	for _, e := range entries {
		t, ok := totals[e.Type]
		if !ok {
			t = &dto.DuesTypeTotal{Type: e.Type, Deposit: decimal.Zero, Withdraw: decimal.Zero, Net: decimal.Zero}
			totals[e.Type] = t
		}
		if e.Direction == model.DuesWithdraw {
			t.Withdraw = t.Withdraw.Add(e.Amount)
			t.Net = t.Net.Sub(e.Amount)
		} else {
			t.Deposit = t.Deposit.Add(e.Amount)
			t.Net = t.Net.Add(e.Amount)
		}
		closing = e.Balance
	}

	resp := &dto.DuesSummaryResponse{
		Year:           year,
		OpeningBalance: opening,
		ClosingBalance: closing,
	}
	for _, t := range duesTypes {
		resp.Totals = append(resp.Totals, *totals[t])
	}
	return resp
}

// ═══════════════════════════════════════════════════════════
// Export 导出会费流水为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "会费流水"：| 日期 | 姓名 | 类型 | 收支 | 金额 | 余额 | 备注 |
//   - 首行为期初余额，末尾为按类型的合计
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *duesService) Export(ctx context.Context, year int) (*bytes.Buffer, string, error) {
	opening, entries, err := s.ledger(ctx, year)
	if err != nil {
		return nil, "", err
	}
	summary := summarizeDues(year, opening, entries)

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "会费流水"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	widths := []float64{12, 12, 10, 8, 14, 14, 30}
	for i, w := range widths {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	moneyStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 3})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%d 年会费流水", year))
	f.MergeCell(sheetName, "A1", cell(colName(len(widths)-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	row := 2
	for i, title := range []string{"日期", "姓名", "类型", "收支", "金额", "余额", "备注"} {
		f.SetCellValue(sheetName, cell(colName(i), row), title)
	}
	f.SetCellStyle(sheetName, cell("A", row), cell(colName(len(widths)-1), row), headerStyle)

	// 期初
	row = 3
	f.SetCellValue(sheetName, cell("A", row), "期初")
	f.SetCellValue(sheetName, cell("F", row), summary.OpeningBalance.InexactFloat64())

	for _, e := range entries {
		row++
		f.SetCellValue(sheetName, cell("A", row), e.Date)
		f.SetCellValue(sheetName, cell("B", row), e.UserName)
		f.SetCellValue(sheetName, cell("C", row), duesTypeNames[e.Type])
		f.SetCellValue(sheetName, cell("D", row), duesDirectionNames[e.Direction])
		f.SetCellValue(sheetName, cell("E", row), e.Amount.InexactFloat64())
		f.SetCellValue(sheetName, cell("F", row), e.Balance.InexactFloat64())
		f.SetCellValue(sheetName, cell("G", row), e.Detail)
	}
	f.SetCellStyle(sheetName, cell("E", 3), cell("F", row), moneyStyle)

	// 合计
	row += 2
	for _, t := range summary.Totals {
		f.SetCellValue(sheetName, cell("A", row), "合计")
		f.SetCellValue(sheetName, cell("C", row), duesTypeNames[t.Type])
		f.SetCellValue(sheetName, cell("D", row), fmt.Sprintf("+%s / -%s", t.Deposit.StringFixed(0), t.Withdraw.StringFixed(0)))
		f.SetCellValue(sheetName, cell("E", row), t.Net.InexactFloat64())
		row++
	}
	f.SetCellValue(sheetName, cell("A", row), "期末")
	f.SetCellValue(sheetName, cell("F", row), summary.ClosingBalance.InexactFloat64())

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, fmt.Sprintf("dues_%d.xlsx", year), nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func toDuesResponse(e *model.Dues, balance decimal.Decimal) *dto.DuesResponse {
	return &dto.DuesResponse{
		ID:        e.DuesID,
		Year:      e.Year,
		UserName:  e.UserName,
		Amount:    e.Amount,
		Type:      e.Type,
		Direction: e.Direction,
		Date:      formatDate(e.Date),
		Detail:    e.Detail,
		Balance:   balance,
	}
}
