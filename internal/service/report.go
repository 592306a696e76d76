package service

import (
	"context"
	"fmt"

	"github.com/homeloto/retail-api/internal/domain"
)

type ReportRepository interface {
	SellerTotals(ctx context.Context) ([]domain.SellerTotal, error)
	DrawSummary(ctx context.Context, draw domain.Draw) (domain.DrawSummary, error)
}

type ReportService struct {
	reports      ReportRepository
	draws        SaleDrawRepository
	transactions TransactionRepository
}

func NewReportService(reports ReportRepository, draws SaleDrawRepository, transactions TransactionRepository) *ReportService {
	return &ReportService{
		reports:      reports,
		draws:        draws,
		transactions: transactions,
	}
}

func (s *ReportService) Sellers(ctx context.Context) ([]domain.SellerTotal, error) {
	totals, err := s.reports.SellerTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.reports.SellerTotals -> %w", err)
	}

	return totals, nil
}

func (s *ReportService) SellerTransactions(ctx context.Context, email string) ([]domain.Transaction, error) {
	trs, err := s.transactions.FindBySeller(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("s.transactions.FindBySeller -> %w", err)
	}

	return trs, nil
}

func (s *ReportService) DrawSummary(ctx context.Context, drawID string) (domain.DrawSummary, error) {
	draw, err := s.draws.FindByID(ctx, drawID)
	if err != nil {
		return domain.DrawSummary{}, fmt.Errorf("s.draws.FindByID -> %w", err)
	}

	summary, err := s.reports.DrawSummary(ctx, draw)
	if err != nil {
		return domain.DrawSummary{}, fmt.Errorf("s.reports.DrawSummary -> %w", err)
	}

	return summary, nil
}
