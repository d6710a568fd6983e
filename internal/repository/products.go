package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/domain"
)

func (r *Repository) GetCategories() ([]string, error) {
	query := `SELECT DISTINCT category FROM products ORDER BY category`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return r.queryStrings(ctx, query)
}

func (r *Repository) GetProductsByCategory(category string) ([]string, error) {
	query := `SELECT name FROM products WHERE category = $1 ORDER BY name`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return r.queryStrings(ctx, query, category)
}

func (r *Repository) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return values, nil
}

func (r *Repository) GetProductByName(name string) (*domain.Product, error) {
	query := `
		SELECT id, category, price, season, supplier_id
		FROM products WHERE name = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	product := &domain.Product{
		Name: name,
	}

	dst := []any{&product.ID, &product.Category, &product.Price, &product.Season, &product.SupplierID}
	if err := r.dbpool.QueryRowContext(ctx, query, name).Scan(dst...); err != nil {
		return nil, err
	}

	return product, nil
}

// GetProductStock 返回指定月份的剩余库存，该月没有记录时退回到最近一个月的记录
func (r *Repository) GetProductStock(name string, year, month int32) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT mr.remaining_stock
		FROM monthly_records mr
		JOIN products p ON p.id = mr.product_id
		WHERE p.name = $1 AND mr.year = $2 AND mr.month = $3
	`

	var stock int64
	err := r.dbpool.QueryRowContext(ctx, query, name, year, month).Scan(&stock)
	if err == nil {
		return stock, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	query = `
		SELECT mr.remaining_stock
		FROM monthly_records mr
		JOIN products p ON p.id = mr.product_id
		WHERE p.name = $1
		ORDER BY mr.year DESC, mr.month DESC
		LIMIT 1
	`

	if err := r.dbpool.QueryRowContext(ctx, query, name).Scan(&stock); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// 没有任何库存记录
			return 0, nil
		}
		return 0, err
	}

	return stock, nil
}

func (r *Repository) GetTotalUnitsSold(year, month int32) (int64, error) {
	query := `
		SELECT COALESCE(SUM(units_sold), 0) FROM monthly_records WHERE year = $1 AND month = $2
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var total int64
	if err := r.dbpool.QueryRowContext(ctx, query, year, month).Scan(&total); err != nil {
		return 0, err
	}

	return total, nil
}

func (r *Repository) CheckSupplierAvailable(name string) (bool, error) {
	isAvailable := false

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT EXISTS (SELECT 1 FROM products WHERE name = $1 AND supplier_id IS NOT NULL)
	`
	if err := r.dbpool.QueryRowContext(ctx, query, name).Scan(&isAvailable); err != nil {
		return false, err
	}

	return isAvailable, nil
}
