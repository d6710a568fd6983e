package seed

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/config"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/domain"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
)

var header = []string{
	"product_name", " product_category ", "product_price", "month", "year", "season",
	"No.of holidays in that month", "total_units_sold_in_month",
	"Total product remaining in stock for that month", "supplier_id",
}

func TestParseRows(t *testing.T) {
	rows := [][]string{
		header,
		{"Cola", "Beverages", "2.5", "January", "2023", "Winter", "2", "130", "40", "7"},
		{},
		{"Bread", "Bakery", "1.2", "7", "2023", "Summer", "0", "88.0", "12"},
	}

	records, err := ParseRows(rows)
	require.NoError(t, err)
	require.Len(t, records, 2)

	cola := records[0]
	assert.Equal(t, "Cola", cola.ProductName)
	assert.Equal(t, "Beverages", cola.Category)
	assert.Equal(t, int32(1), cola.Month)
	assert.Equal(t, int32(2023), cola.Year)
	assert.Equal(t, int32(2), cola.Holidays)
	assert.Equal(t, int64(130), cola.UnitsSold)
	assert.Equal(t, int64(40), cola.RemainingStock)
	require.NotNil(t, cola.SupplierID)
	assert.Equal(t, int64(7), *cola.SupplierID)

	bread := records[1]
	assert.Equal(t, int32(7), bread.Month)
	assert.Equal(t, int64(88), bread.UnitsSold)
	assert.Nil(t, bread.SupplierID)
}

func TestParseRowsErrors(t *testing.T) {
	_, err := ParseRows(nil)
	assert.Error(t, err)

	_, err = ParseRows([][]string{{"product_name", "year"}})
	assert.Error(t, err)

	_, err = ParseRows([][]string{
		header,
		{"Cola", "Beverages", "abc", "January", "2023", "Winter", "2", "130", "40", ""},
	})
	assert.Error(t, err)

	_, err = ParseRows([][]string{
		header,
		{"Cola", "Beverages", "2.5", "Smarch", "2023", "Winter", "2", "130", "40", ""},
	})
	assert.Error(t, err)

	_, err = ParseRows([][]string{
		header,
		{"Cola", "Beverages", "2.5", "May", "2023", "Spring", "2", "130", "-1", ""},
	})
	assert.Error(t, err)
}

func TestReadMonthlyRecords(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	data := [][]any{
		{"product_name", "product_category", "product_price", "month", "year", "season",
			"No.of holidays in that month", "total_units_sold_in_month",
			"Total product remaining in stock for that month", "supplier_id"},
		{"Cola", "Beverages", 2.5, "March", 2024, "Spring", 1, 150, 30, 3},
		{"Milk", "Dairy", 1.1, "March", 2024, "Spring", 1, 90, 10, ""},
	}
	for i, row := range data {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellName, &row))
	}

	path := filepath.Join(t.TempDir(), "monthly.xlsx")
	require.NoError(t, f.SaveAs(path))

	records, err := ReadMonthlyRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Milk", records[1].ProductName)
	assert.Equal(t, int32(3), records[1].Month)
	assert.InDelta(t, 1.1, records[1].Price, 1e-9)
}

func TestReadMonthlyRecordsMissingFile(t *testing.T) {
	_, err := ReadMonthlyRecords(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}

type fakeRecordInserter struct {
	records []domain.MonthlyRecord
}

func (f *fakeRecordInserter) InsertMonthlyRecords(records []domain.MonthlyRecord) error {
	f.records = append(f.records, records...)
	return nil
}

func TestSeedRealData(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	row := []any{"Cola", "Beverages", 2.5, "March", 2024, "Spring", 1, 150, 30, 3}
	require.NoError(t, f.SetSheetRow(sheet, "A2", &row))

	path := filepath.Join(t.TempDir(), "monthly.xlsx")
	require.NoError(t, f.SaveAs(path))

	inserter := &fakeRecordInserter{}
	require.NoError(t, SeedRealData(inserter, path))
	require.Len(t, inserter.records, 1)
	assert.Equal(t, "Cola", inserter.records[0].ProductName)
}

type fakeUserCreator struct {
	err     error
	created *domain.User
}

func (f *fakeUserCreator) CreateUser(user *domain.User) error {
	f.created = user
	return f.err
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.InitialAdmin.Username = "admin"
	cfg.InitialAdmin.Password = "secret"
	cfg.InitialAdmin.FullName = "管理员"
	cfg.InitialAdmin.Email = "admin@example.com"
	return cfg
}

func TestEnsureInitialAdmin(t *testing.T) {
	creator := &fakeUserCreator{}
	require.NoError(t, EnsureInitialAdmin(creator, testConfig()))

	require.NotNil(t, creator.created)
	assert.Equal(t, domain.RoleAdmin, creator.created.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(creator.created.PasswordHash), []byte("secret")))
}

func TestEnsureInitialAdminAlreadyExists(t *testing.T) {
	creator := &fakeUserCreator{err: &pgconn.PgError{ConstraintName: "users_username_key"}}
	assert.NoError(t, EnsureInitialAdmin(creator, testConfig()))

	creator = &fakeUserCreator{err: errors.New("connection refused")}
	assert.Error(t, EnsureInitialAdmin(creator, testConfig()))
}
