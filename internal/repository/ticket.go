package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/homeloto/retail-api/internal/domain"
	"github.com/homeloto/retail-api/internal/repository/dao"
)

var (
	ErrTicketNotFound         = dao.ErrTicketNotFound
	ErrTicketUnavailable      = dao.ErrTicketUnavailable
	ErrTicketAlreadyPaid      = dao.ErrTicketAlreadyPaid
	ErrTicketNotWinner        = dao.ErrTicketNotWinner
	ErrTicketNotInTransaction = dao.ErrTicketNotInTransaction
)

type TicketDAO interface {
	FindByID(ctx context.Context, id string) (dao.Ticket, error)
	FindByDraw(ctx context.Context, drawID, status string) ([]dao.Ticket, error)
	FindByTransaction(ctx context.Context, transactionID string) ([]dao.Ticket, error)
	FindWinners(ctx context.Context, drawID string, matches int) ([]dao.Ticket, error)
	MarkPaid(ctx context.Context, id, transactionID, paidBy string, at time.Time) (dao.Ticket, error)
}

type TicketRepository struct {
	dao TicketDAO
}

func NewTicketRepository(dao TicketDAO) *TicketRepository {
	return &TicketRepository{
		dao: dao,
	}
}

func (r *TicketRepository) FindByID(ctx context.Context, id string) (domain.Ticket, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return ticketDaoToDomain(found), nil
}

func (r *TicketRepository) FindByDraw(ctx context.Context, drawID string, status domain.TicketStatus) ([]domain.Ticket, error) {
	found, err := r.dao.FindByDraw(ctx, drawID, string(status))
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByDraw -> %w", err)
	}

	return ticketsDaoToDomain(found), nil
}

func (r *TicketRepository) FindByTransaction(ctx context.Context, transactionID string) ([]domain.Ticket, error) {
	found, err := r.dao.FindByTransaction(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByTransaction -> %w", err)
	}

	return ticketsDaoToDomain(found), nil
}

func (r *TicketRepository) FindWinners(ctx context.Context, drawID string, matches int) ([]domain.Ticket, error) {
	found, err := r.dao.FindWinners(ctx, drawID, matches)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindWinners -> %w", err)
	}

	return ticketsDaoToDomain(found), nil
}

func (r *TicketRepository) MarkPaid(ctx context.Context, id, transactionID, paidBy string, at time.Time) (domain.Ticket, error) {
	paid, err := r.dao.MarkPaid(ctx, id, transactionID, paidBy, at)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.MarkPaid -> %w", err)
	}

	return ticketDaoToDomain(paid), nil
}

func ticketDomainToDao(t domain.Ticket) dao.Ticket {
	return dao.Ticket{
		ID:            t.ID,
		DrawID:        t.DrawID,
		TicketNumber:  t.TicketNumber,
		Numbers:       datatypes.JSONSlice[int](t.Numbers),
		Price:         t.Price,
		DrawDate:      t.DrawDate,
		Status:        string(t.Status),
		MatchesCount:  t.MatchesCount,
		WinAmount:     t.WinAmount,
		TransactionID: t.TransactionID,
		PaymentMethod: string(t.PaymentMethod),
		SoldBy:        t.SoldBy,
		PurchasedAt:   t.PurchasedAt,
		PaidAt:        t.PaidAt,
		PaidBy:        t.PaidBy,
	}
}

func ticketDaoToDomain(t dao.Ticket) domain.Ticket {
	return domain.Ticket{
		ID:            t.ID,
		DrawID:        t.DrawID,
		TicketNumber:  t.TicketNumber,
		Numbers:       domain.Numbers(t.Numbers),
		Price:         t.Price,
		DrawDate:      t.DrawDate,
		Status:        domain.TicketStatus(t.Status),
		MatchesCount:  t.MatchesCount,
		WinAmount:     t.WinAmount,
		TransactionID: t.TransactionID,
		PaymentMethod: domain.PaymentMethod(t.PaymentMethod),
		SoldBy:        t.SoldBy,
		PurchasedAt:   t.PurchasedAt,
		PaidAt:        t.PaidAt,
		PaidBy:        t.PaidBy,
	}
}

func ticketsDaoToDomain(rows []dao.Ticket) []domain.Ticket {
	tickets := make([]domain.Ticket, 0, len(rows))
	for _, t := range rows {
		tickets = append(tickets, ticketDaoToDomain(t))
	}

	return tickets
}
