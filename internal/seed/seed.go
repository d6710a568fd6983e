package seed

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/config"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/utils"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
)

// 月度销售表的列名
const (
	ColProductName    = "product_name"
	ColCategory       = "product_category"
	ColPrice          = "product_price"
	ColMonth          = "month"
	ColYear           = "year"
	ColSeason         = "season"
	ColHolidays       = "No.of holidays in that month"
	ColUnitsSold      = "total_units_sold_in_month"
	ColRemainingStock = "Total product remaining in stock for that month"
	ColSupplierID     = "supplier_id"
)

var requiredColumns = []string{
	ColProductName, ColCategory, ColPrice, ColMonth, ColYear,
	ColSeason, ColHolidays, ColUnitsSold, ColRemainingStock,
}

type RecordInserter interface {
	InsertMonthlyRecords(records []domain.MonthlyRecord) error
}

type UserCreator interface {
	CreateUser(user *domain.User) error
}

// ReadMonthlyRecords 读取表格第一个工作表中的月度销售数据
func ReadMonthlyRecords(path string) ([]domain.MonthlyRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开文件 %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("文件 %s 中没有工作表", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("无法读取工作表 %s: %w", sheets[0], err)
	}

	return ParseRows(rows)
}

// ParseRows 将带表头的行解析为月度记录，第一行为表头
func ParseRows(rows [][]string) ([]domain.MonthlyRecord, error) {
	if len(rows) == 0 {
		return nil, errors.New("表格为空")
	}

	// 表头去掉首尾空白
	index := make(map[string]int)
	for i, h := range rows[0] {
		index[strings.TrimSpace(h)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("没有找到列 %q", col)
		}
	}

	records := make([]domain.MonthlyRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		lineNo := i + 2

		cell := func(col string) string {
			idx, ok := index[col]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		// 跳过空行
		if strings.Join(row, "") == "" {
			continue
		}

		rec, err := parseRecord(cell)
		if err != nil {
			return nil, fmt.Errorf("第 %d 行: %w", lineNo, err)
		}
		if err := utils.ValidateMonthlyRecord(lineNo, rec); err != nil {
			return nil, err
		}

		records = append(records, *rec)
	}

	return records, nil
}

func parseRecord(cell func(string) string) (*domain.MonthlyRecord, error) {
	price, err := strconv.ParseFloat(cell(ColPrice), 64)
	if err != nil {
		return nil, fmt.Errorf("价格格式错误: %w", err)
	}

	month, err := utils.ParseMonthName(cell(ColMonth))
	if err != nil {
		// 也接受数字月份
		m, numErr := strconv.ParseInt(cell(ColMonth), 10, 32)
		if numErr != nil {
			return nil, err
		}
		month = int32(m)
	}

	year, err := strconv.ParseInt(cell(ColYear), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("年份格式错误: %w", err)
	}

	holidays, err := parseCount(cell(ColHolidays))
	if err != nil {
		return nil, fmt.Errorf("节假日数格式错误: %w", err)
	}

	unitsSold, err := parseCount(cell(ColUnitsSold))
	if err != nil {
		return nil, fmt.Errorf("销量格式错误: %w", err)
	}

	remaining, err := parseCount(cell(ColRemainingStock))
	if err != nil {
		return nil, fmt.Errorf("库存格式错误: %w", err)
	}

	rec := &domain.MonthlyRecord{
		ProductName:    cell(ColProductName),
		Category:       cell(ColCategory),
		Price:          price,
		Year:           int32(year),
		Month:          month,
		Season:         cell(ColSeason),
		Holidays:       int32(holidays),
		UnitsSold:      unitsSold,
		RemainingStock: remaining,
	}

	if s := cell(ColSupplierID); s != "" {
		id, err := parseCount(s)
		if err != nil {
			return nil, fmt.Errorf("供应商编号格式错误: %w", err)
		}
		rec.SupplierID = &id
	}

	return rec, nil
}

// 表格中的整数有时会以 "12.0" 的形式出现
func parseCount(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

func SeedRealData(r RecordInserter, path string) error {
	records, err := ReadMonthlyRecords(path)
	if err != nil {
		return err
	}

	if err := r.InsertMonthlyRecords(records); err != nil {
		return fmt.Errorf("无法插入月度记录: %w", err)
	}

	slog.Info("导入月度数据成功", "count", len(records))
	return nil
}

// EnsureInitialAdmin 确保数据库中存在初始管理员，已存在时不做任何事
func EnsureInitialAdmin(r UserCreator, cfg *config.Config) error {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.InitialAdmin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("无法生成初始管理员密码哈希: %w", err)
	}

	initialAdmin := &domain.User{
		Username:     cfg.InitialAdmin.Username,
		PasswordHash: string(passwordHash),
		FullName:     cfg.InitialAdmin.FullName,
		Email:        cfg.InitialAdmin.Email,
		Role:         domain.RoleAdmin,
	}

	if err := r.CreateUser(initialAdmin); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "users_username_key" {
			// 说明数据库中已经存在初始管理员
			return nil
		}
		return fmt.Errorf("无法创建初始管理员: %w", err)
	}

	return nil
}
