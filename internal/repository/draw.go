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
	ErrDrawExists   = dao.ErrDrawExists
	ErrDrawNotFound = dao.ErrDrawNotFound
	ErrDrawClosed   = dao.ErrDrawClosed
)

type DrawDAO interface {
	InsertWithTickets(ctx context.Context, draw dao.Draw, tickets []dao.Ticket) (dao.Draw, error)
	FindByID(ctx context.Context, id string) (dao.Draw, error)
	FindAll(ctx context.Context, status string) ([]dao.Draw, error)
	Resolve(ctx context.Context, drawID string, winning []int, at time.Time, grade dao.Grade) ([]dao.Ticket, error)
}

// Grader scores a sold ticket against the winning numbers.
type Grader func(numbers domain.Numbers) (matches int, win int64)

type DrawRepository struct {
	dao DrawDAO
}

func NewDrawRepository(dao DrawDAO) *DrawRepository {
	return &DrawRepository{
		dao: dao,
	}
}

func (r *DrawRepository) Create(ctx context.Context, draw domain.Draw, tickets []domain.Ticket) (domain.Draw, error) {
	rows := make([]dao.Ticket, 0, len(tickets))
	for i, t := range tickets {
		row := ticketDomainToDao(t)
		row.Position = i + 1
		rows = append(rows, row)
	}

	created, err := r.dao.InsertWithTickets(ctx, drawDomainToDao(draw), rows)
	if err != nil {
		return domain.Draw{}, fmt.Errorf("r.dao.InsertWithTickets -> %w", err)
	}

	return drawDaoToDomain(created), nil
}

func (r *DrawRepository) FindByID(ctx context.Context, id string) (domain.Draw, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Draw{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return drawDaoToDomain(found), nil
}

func (r *DrawRepository) FindAll(ctx context.Context, status domain.DrawStatus) ([]domain.Draw, error) {
	found, err := r.dao.FindAll(ctx, string(status))
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	draws := make([]domain.Draw, 0, len(found))
	for _, d := range found {
		draws = append(draws, drawDaoToDomain(d))
	}

	return draws, nil
}

// Resolve closes the draw and returns the sold tickets as graded.
func (r *DrawRepository) Resolve(ctx context.Context, drawID string, winning domain.Numbers, at time.Time, grade Grader) ([]domain.Ticket, error) {
	graded, err := r.dao.Resolve(ctx, drawID, winning, at, func(numbers []int) (int, int64) {
		return grade(numbers)
	})
	if err != nil {
		return nil, fmt.Errorf("r.dao.Resolve -> %w", err)
	}

	return ticketsDaoToDomain(graded), nil
}

func drawDomainToDao(d domain.Draw) dao.Draw {
	return dao.Draw{
		ID:             d.ID,
		Date:           d.Date,
		Jackpot:        d.Jackpot,
		TotalTickets:   d.TotalTickets,
		BroadcastLink:  d.BroadcastLink,
		Status:         string(d.Status),
		WinningNumbers: datatypes.JSONSlice[int](d.WinningNumbers),
		CreatedBy:      d.CreatedBy,
		ResolvedAt:     d.ResolvedAt,
	}
}

func drawDaoToDomain(d dao.Draw) domain.Draw {
	winning := domain.Numbers(d.WinningNumbers)
	if winning == nil {
		winning = domain.Numbers{}
	}

	return domain.Draw{
		ID:             d.ID,
		Date:           d.Date,
		Jackpot:        d.Jackpot,
		TotalTickets:   d.TotalTickets,
		BroadcastLink:  d.BroadcastLink,
		Status:         domain.DrawStatus(d.Status),
		WinningNumbers: winning,
		CreatedBy:      d.CreatedBy,
		ResolvedAt:     d.ResolvedAt,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}
