package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/homeloto/retail-api/internal/domain"
	"github.com/homeloto/retail-api/internal/repository"
)

var (
	ErrDrawExists         = repository.ErrDrawExists
	ErrDrawNotFound       = repository.ErrDrawNotFound
	ErrDrawClosed         = repository.ErrDrawClosed
	ErrInvalidTicketCount = fmt.Errorf("ticket count must be between 1 and %d", domain.MaxTicketsPerDraw)
	ErrInvalidNumbers     = errors.New("invalid winning numbers")
)

type DrawRepository interface {
	Create(ctx context.Context, draw domain.Draw, tickets []domain.Ticket) (domain.Draw, error)
	FindByID(ctx context.Context, id string) (domain.Draw, error)
	FindAll(ctx context.Context, status domain.DrawStatus) ([]domain.Draw, error)
	Resolve(ctx context.Context, drawID string, winning domain.Numbers, at time.Time, grade repository.Grader) ([]domain.Ticket, error)
}

type DrawTicketRepository interface {
	FindByDraw(ctx context.Context, drawID string, status domain.TicketStatus) ([]domain.Ticket, error)
	FindWinners(ctx context.Context, drawID string, matches int) ([]domain.Ticket, error)
}

type DrawService struct {
	draws       DrawRepository
	tickets     DrawTicketRepository
	notifier    Notifier
	ticketPrice int64
	now         func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

func NewDrawService(draws DrawRepository, tickets DrawTicketRepository, notifier Notifier, ticketPrice int64) *DrawService {
	return &DrawService{
		draws:       draws,
		tickets:     tickets,
		notifier:    notifier,
		ticketPrice: ticketPrice,
		now:         time.Now,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateDraw opens a draw and generates its pool of count tickets with random numbers.
func (s *DrawService) CreateDraw(ctx context.Context, draw domain.Draw, count int, createdBy string) (domain.Draw, error) {
	if count < 1 || count > domain.MaxTicketsPerDraw {
		return domain.Draw{}, ErrInvalidTicketCount
	}

	draw.ID = strings.TrimSpace(draw.ID)
	draw.Status = domain.DrawOpen
	draw.TotalTickets = count
	draw.CreatedBy = createdBy
	draw.WinningNumbers = domain.Numbers{}
	draw.ResolvedAt = nil

	tickets := make([]domain.Ticket, count)
	s.mu.Lock()
	for i := range tickets {
		tickets[i] = domain.Ticket{
			ID:           domain.TicketID(draw.ID, i+1),
			DrawID:       draw.ID,
			TicketNumber: domain.TicketNumber(i + 1),
			Numbers:      domain.GenerateNumbers(s.rng),
			Price:        s.ticketPrice,
			DrawDate:     draw.Date,
			Status:       domain.TicketAvailable,
		}
	}
	s.mu.Unlock()

	created, err := s.draws.Create(ctx, draw, tickets)
	if err != nil {
		return domain.Draw{}, fmt.Errorf("s.draws.Create -> %w", err)
	}
	zap.L().Info("draw created", zap.String("draw_id", created.ID), zap.Int("tickets", count), zap.String("by", createdBy))

	return created, nil
}

func (s *DrawService) GetDraw(ctx context.Context, id string) (domain.Draw, error) {
	draw, err := s.draws.FindByID(ctx, id)
	if err != nil {
		return domain.Draw{}, fmt.Errorf("s.draws.FindByID -> %w", err)
	}

	return draw, nil
}

func (s *DrawService) ListDraws(ctx context.Context, status domain.DrawStatus) ([]domain.Draw, error) {
	draws, err := s.draws.FindAll(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("s.draws.FindAll -> %w", err)
	}

	return draws, nil
}

// DrawTickets lists the tickets of an existing draw, optionally filtered by status.
func (s *DrawService) DrawTickets(ctx context.Context, drawID string, status domain.TicketStatus) ([]domain.Ticket, error) {
	if _, err := s.draws.FindByID(ctx, drawID); err != nil {
		return nil, fmt.Errorf("s.draws.FindByID -> %w", err)
	}

	tickets, err := s.tickets.FindByDraw(ctx, drawID, status)
	if err != nil {
		return nil, fmt.Errorf("s.tickets.FindByDraw -> %w", err)
	}

	return tickets, nil
}

// Resolve records the winning numbers and grades every sold ticket. It can succeed only once
// per draw.
func (s *DrawService) Resolve(ctx context.Context, drawID string, numbers domain.Numbers, resolvedBy string) (domain.DrawResult, error) {
	if err := numbers.Validate(); err != nil {
		return domain.DrawResult{}, fmt.Errorf("%w: %w", ErrInvalidNumbers, err)
	}
	winning := numbers.Sorted()

	draw, err := s.draws.FindByID(ctx, drawID)
	if err != nil {
		return domain.DrawResult{}, fmt.Errorf("s.draws.FindByID -> %w", err)
	}
	if !draw.IsOpen() {
		return domain.DrawResult{}, ErrDrawClosed
	}

	graded, err := s.draws.Resolve(ctx, drawID, winning, s.now(), func(n domain.Numbers) (int, int64) {
		matches := domain.MatchCount(n, winning)
		return matches, domain.PrizeFor(matches, draw.Jackpot)
	})
	if err != nil {
		return domain.DrawResult{}, fmt.Errorf("s.draws.Resolve -> %w", err)
	}

	result := domain.DrawResult{
		DrawID:         drawID,
		WinningNumbers: winning,
		WinnersByMatch: map[int]int{},
	}
	for _, t := range graded {
		result.Add(t.MatchesCount, t.WinAmount)
	}
	zap.L().Info("draw resolved",
		zap.String("draw_id", drawID),
		zap.Ints("winning", winning),
		zap.Int("checked", result.TicketsChecked),
		zap.Int("winners", result.Winners),
	)

	s.notifier.Async(resolvedBy, fmt.Sprintf("HOMELOTO: draw %s resolved", drawID), resultSummary(result))

	return result, nil
}

// Winners lists winning tickets. A negative matches means any match count.
func (s *DrawService) Winners(ctx context.Context, drawID string, matches int) ([]domain.Ticket, error) {
	if _, err := s.draws.FindByID(ctx, drawID); err != nil {
		return nil, fmt.Errorf("s.draws.FindByID -> %w", err)
	}

	winners, err := s.tickets.FindWinners(ctx, drawID, matches)
	if err != nil {
		return nil, fmt.Errorf("s.tickets.FindWinners -> %w", err)
	}

	return winners, nil
}

func resultSummary(r domain.DrawResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Draw %s\nWinning numbers: %v\nTickets checked: %d\nWinners: %d\nTotal payout: %d\n",
		r.DrawID, []int(r.WinningNumbers), r.TicketsChecked, r.Winners, r.TotalPayout)

	matches := make([]int, 0, len(r.WinnersByMatch))
	for m := range r.WinnersByMatch {
		matches = append(matches, m)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(matches)))
	for _, m := range matches {
		fmt.Fprintf(&b, "  %d matches: %d\n", m, r.WinnersByMatch[m])
	}

	return b.String()
}
