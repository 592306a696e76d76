package dao

import (
	"context"

	"gorm.io/gorm"
)

type SellerTotal struct {
	Email string
	Count int64
	Total int64
}

type StatusTotal struct {
	Status string
	Count  int64
	Price  int64
	Win    int64
}

type ReportDAO struct {
	db *gorm.DB
}

func NewReportDAO(db *gorm.DB) *ReportDAO {
	return &ReportDAO{
		db: db,
	}
}

// SellerTotals aggregates sold tickets per seller.
func (d *ReportDAO) SellerTotals(ctx context.Context) ([]SellerTotal, error) {
	var totals []SellerTotal

	err := d.db.WithContext(ctx).Model(&Ticket{}).
		Select("sold_by AS email, COUNT(*) AS count, COALESCE(SUM(price), 0) AS total").
		Where("sold_by <> ''").
		Group("sold_by").
		Order("total DESC, email").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	return totals, nil
}

// DrawStatusTotals aggregates a draw's tickets per status.
func (d *ReportDAO) DrawStatusTotals(ctx context.Context, drawID string) ([]StatusTotal, error) {
	var totals []StatusTotal

	err := d.db.WithContext(ctx).Model(&Ticket{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(price), 0) AS price, COALESCE(SUM(win_amount), 0) AS win").
		Where("draw_id = ?", drawID).
		Group("status").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	return totals, nil
}
