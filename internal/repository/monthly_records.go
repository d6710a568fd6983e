package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/domain"
)

func (r *Repository) GetAllMonthlyRecords() ([]domain.MonthlyRecord, error) {
	query := `
		SELECT p.name, p.category, p.price, mr.year, mr.month, mr.season, mr.holidays,
		       mr.units_sold, mr.remaining_stock, p.supplier_id
		FROM monthly_records mr
		JOIN products p ON p.id = mr.product_id
		ORDER BY mr.id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.MonthlyRecord, 0)
	for rows.Next() {
		var rec domain.MonthlyRecord
		dst := []any{&rec.ProductName, &rec.Category, &rec.Price, &rec.Year, &rec.Month, &rec.Season, &rec.Holidays,
			&rec.UnitsSold, &rec.RemainingStock, &rec.SupplierID}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// InsertMonthlyRecords 在一个事务中写入商品与月度记录，已存在的记录会被覆盖
func (r *Repository) InsertMonthlyRecords(records []domain.MonthlyRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	productIDs := make(map[string]int64)

	for _, rec := range records {
		productID, exists := productIDs[rec.ProductName]
		if !exists {
			// 商品信息以第一次出现的记录为准
			query := `
				INSERT INTO products (name, category, price, season, supplier_id)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (name) DO UPDATE
				SET category = EXCLUDED.category, price = EXCLUDED.price, supplier_id = EXCLUDED.supplier_id
				RETURNING id
			`

			args := []any{rec.ProductName, rec.Category, rec.Price, rec.Season, rec.SupplierID}
			if err := tx.QueryRowContext(ctx, query, args...).Scan(&productID); err != nil {
				return err
			}
			productIDs[rec.ProductName] = productID
		}

		query := `
			INSERT INTO monthly_records (product_id, year, month, season, holidays, units_sold, remaining_stock)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (product_id, year, month) DO UPDATE
			SET season = EXCLUDED.season, holidays = EXCLUDED.holidays,
			    units_sold = EXCLUDED.units_sold, remaining_stock = EXCLUDED.remaining_stock
		`

		args := []any{productID, rec.Year, rec.Month, rec.Season, rec.Holidays, rec.UnitsSold, rec.RemainingStock}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
