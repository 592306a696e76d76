package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/homeloto/retail-api/internal/domain"
	"github.com/homeloto/retail-api/internal/repository"
)

var (
	ErrTicketAlreadyPaid      = repository.ErrTicketAlreadyPaid
	ErrTicketNotWinner        = repository.ErrTicketNotWinner
	ErrTicketNotInTransaction = repository.ErrTicketNotInTransaction
)

type PayoutTicketRepository interface {
	FindByID(ctx context.Context, id string) (domain.Ticket, error)
	FindByTransaction(ctx context.Context, transactionID string) ([]domain.Ticket, error)
	MarkPaid(ctx context.Context, id, transactionID, paidBy string, at time.Time) (domain.Ticket, error)
}

type PayoutTransactionRepository interface {
	FindByID(ctx context.Context, id string) (domain.Transaction, error)
}

type PayoutService struct {
	tickets      PayoutTicketRepository
	transactions PayoutTransactionRepository
	now          func() time.Time
}

func NewPayoutService(tickets PayoutTicketRepository, transactions PayoutTransactionRepository) *PayoutService {
	return &PayoutService{
		tickets:      tickets,
		transactions: transactions,
		now:          time.Now,
	}
}

// ScanTransaction resolves a scanned barcode or receipt QR to the tickets it covers. The
// receipt QR carries a "CHECK:" prefix.
func (s *PayoutService) ScanTransaction(ctx context.Context, code string) ([]domain.Ticket, error) {
	id := strings.TrimPrefix(strings.TrimSpace(code), "CHECK:")

	if _, err := s.transactions.FindByID(ctx, id); err != nil {
		return nil, fmt.Errorf("s.transactions.FindByID -> %w", err)
	}

	tickets, err := s.tickets.FindByTransaction(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("s.tickets.FindByTransaction -> %w", err)
	}

	return tickets, nil
}

// Pay marks a checked winning ticket paid. transactionID is optional.
func (s *PayoutService) Pay(ctx context.Context, ticketID, transactionID, cashier string) (domain.Ticket, error) {
	transactionID = strings.TrimPrefix(strings.TrimSpace(transactionID), "CHECK:")

	paid, err := s.tickets.MarkPaid(ctx, ticketID, transactionID, cashier, s.now())
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("s.tickets.MarkPaid -> %w", err)
	}
	zap.L().Info("ticket paid",
		zap.String("ticket_id", paid.ID),
		zap.Int64("amount", paid.WinAmount),
		zap.String("cashier", cashier),
	)

	return paid, nil
}

func (s *PayoutService) CheckTicket(ctx context.Context, ticketID string) (domain.Ticket, error) {
	t, err := s.tickets.FindByID(ctx, strings.TrimSpace(ticketID))
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("s.tickets.FindByID -> %w", err)
	}

	return t, nil
}
