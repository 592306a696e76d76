package repository

import (
	"context"
	"fmt"

	"github.com/homeloto/retail-api/internal/domain"
	"github.com/homeloto/retail-api/internal/repository/dao"
)

type ReportDAO interface {
	SellerTotals(ctx context.Context) ([]dao.SellerTotal, error)
	DrawStatusTotals(ctx context.Context, drawID string) ([]dao.StatusTotal, error)
}

type ReportRepository struct {
	dao ReportDAO
}

func NewReportRepository(dao ReportDAO) *ReportRepository {
	return &ReportRepository{
		dao: dao,
	}
}

func (r *ReportRepository) SellerTotals(ctx context.Context) ([]domain.SellerTotal, error) {
	rows, err := r.dao.SellerTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.SellerTotals -> %w", err)
	}

	totals := make([]domain.SellerTotal, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, domain.SellerTotal{
			Email: row.Email,
			Count: row.Count,
			Total: row.Total,
		})
	}

	return totals, nil
}

// DrawSummary folds the per-status aggregates of a draw into one summary.
func (r *ReportRepository) DrawSummary(ctx context.Context, draw domain.Draw) (domain.DrawSummary, error) {
	rows, err := r.dao.DrawStatusTotals(ctx, draw.ID)
	if err != nil {
		return domain.DrawSummary{}, fmt.Errorf("r.dao.DrawStatusTotals -> %w", err)
	}

	summary := domain.DrawSummary{
		DrawID:   draw.ID,
		Status:   draw.Status,
		ByStatus: make(map[domain.TicketStatus]int64, 4),
	}
	for _, row := range rows {
		status := domain.TicketStatus(row.Status)
		summary.ByStatus[status] = row.Count
		if status == domain.TicketAvailable {
			continue
		}
		summary.SoldAmount += row.Price
		summary.WinAmount += row.Win
		if status == domain.TicketPaid {
			summary.PaidAmount += row.Win
		}
	}

	return summary, nil
}
