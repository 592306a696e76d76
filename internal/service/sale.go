package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/homeloto/retail-api/internal/domain"
	"github.com/homeloto/retail-api/internal/repository"
)

const (
	idempotencyTTL = 24 * time.Hour
	// A pending marker outlives any sale but not a lost Complete.
	idempotencyPendingTTL = 2 * time.Minute
	idempotencyPending    = "pending"
	maxIDAttempts         = 5
)

var (
	ErrTicketNotFound       = repository.ErrTicketNotFound
	ErrTicketUnavailable    = repository.ErrTicketUnavailable
	ErrTransactionNotFound  = repository.ErrTransactionNotFound
	ErrEmptySale            = fmt.Errorf("a sale needs between 1 and %d tickets", domain.MaxTicketsPerSale)
	ErrDuplicateTickets     = errors.New("a ticket is listed twice")
	ErrInvalidPaymentMethod = errors.New("payment method must be cash or card")
	ErrSaleInProgress       = errors.New("a sale with this idempotency key is still in progress")
)

type TransactionRepository interface {
	Sell(ctx context.Context, tr domain.Transaction) (domain.Transaction, error)
	FindByID(ctx context.Context, id string) (domain.Transaction, error)
	FindBySeller(ctx context.Context, seller string) ([]domain.Transaction, error)
	UpdateImages(ctx context.Context, id string, ticketURLs []string, receiptURL string) error
}

type SaleTicketRepository interface {
	FindByID(ctx context.Context, id string) (domain.Ticket, error)
	FindByTransaction(ctx context.Context, transactionID string) ([]domain.Ticket, error)
}

type SaleDrawRepository interface {
	FindByID(ctx context.Context, id string) (domain.Draw, error)
}

type SellerRepository interface {
	FindByEmail(ctx context.Context, email string) (domain.User, error)
}

// IdempotencyStore remembers which transaction answered a client request key.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key, value string, ttl time.Duration) (string, bool, error)
	Complete(ctx context.Context, key, value string, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

type SaleRequest struct {
	DrawID         string
	TicketIDs      []string
	PaymentMethod  domain.PaymentMethod
	IdempotencyKey string
}

type SaleService struct {
	transactions TransactionRepository
	tickets      SaleTicketRepository
	draws        SaleDrawRepository
	sellers      SellerRepository
	idempotency  IdempotencyStore
	printer      *Printer
	now          func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSaleService(
	transactions TransactionRepository,
	tickets SaleTicketRepository,
	draws SaleDrawRepository,
	sellers SellerRepository,
	idempotency IdempotencyStore,
	printer *Printer,
) *SaleService {
	return &SaleService{
		transactions: transactions,
		tickets:      tickets,
		draws:        draws,
		sellers:      sellers,
		idempotency:  idempotency,
		printer:      printer,
		now:          time.Now,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *SaleService) newTransactionID(now time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.NewTransactionID(now, s.rng)
}

func validateSale(req SaleRequest) error {
	if len(req.TicketIDs) == 0 || len(req.TicketIDs) > domain.MaxTicketsPerSale {
		return ErrEmptySale
	}
	if req.PaymentMethod != domain.PaymentCash && req.PaymentMethod != domain.PaymentCard {
		return ErrInvalidPaymentMethod
	}

	seen := make(map[string]struct{}, len(req.TicketIDs))
	for _, id := range req.TicketIDs {
		if _, ok := seen[id]; ok {
			return ErrDuplicateTickets
		}
		seen[id] = struct{}{}
	}

	return nil
}

// Sell sells the requested tickets to seller. With an idempotency key a retried request gets
// the original transaction back and replayed is true.
func (s *SaleService) Sell(ctx context.Context, seller domain.User, req SaleRequest) (tr domain.Transaction, replayed bool, err error) {
	if err = validateSale(req); err != nil {
		return domain.Transaction{}, false, err
	}

	key := ""
	if req.IdempotencyKey != "" {
		key = "sale:" + seller.Email + ":" + strings.TrimSpace(req.IdempotencyKey)

		var (
			existing string
			reserved bool
		)
		existing, reserved, err = s.idempotency.Reserve(ctx, key, idempotencyPending, idempotencyPendingTTL)
		if err != nil {
			return domain.Transaction{}, false, fmt.Errorf("s.idempotency.Reserve -> %w", err)
		}
		if !reserved {
			return s.replay(ctx, existing)
		}

		defer func() {
			if err != nil {
				if relErr := s.idempotency.Release(context.WithoutCancel(ctx), key); relErr != nil {
					zap.L().Warn("failed to release idempotency key", zap.String("key", key), zap.Error(relErr))
				}
			}
		}()
	}

	tr, err = s.sell(ctx, seller, req)
	if err != nil {
		return domain.Transaction{}, false, err
	}

	if key != "" {
		s.complete(ctx, key, tr.ID)
	}

	return s.publish(ctx, tr, seller.ShopAddress), false, nil
}

// complete stores the sale behind the key. The sale is committed, so the second attempt
// ignores the request's cancellation.
func (s *SaleService) complete(ctx context.Context, key, transactionID string) {
	err := s.idempotency.Complete(ctx, key, transactionID, idempotencyTTL)
	if err == nil {
		return
	}
	zap.L().Warn("failed to store idempotency result, retrying", zap.String("key", key), zap.Error(err))

	if err = s.idempotency.Complete(context.WithoutCancel(ctx), key, transactionID, idempotencyTTL); err != nil {
		zap.L().Error("idempotency key stays pending until it expires",
			zap.String("key", key),
			zap.String("transaction_id", transactionID),
			zap.Duration("expires_in", idempotencyPendingTTL),
			zap.Error(err))
	}
}

func (s *SaleService) replay(ctx context.Context, transactionID string) (domain.Transaction, bool, error) {
	if transactionID == idempotencyPending {
		return domain.Transaction{}, false, ErrSaleInProgress
	}

	tr, err := s.transactions.FindByID(ctx, transactionID)
	if err != nil {
		return domain.Transaction{}, false, fmt.Errorf("s.transactions.FindByID -> %w", err)
	}

	return tr, true, nil
}

// sell runs the atomic sale, retrying with a fresh id when the generated one is taken.
func (s *SaleService) sell(ctx context.Context, seller domain.User, req SaleRequest) (domain.Transaction, error) {
	var lastErr error
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		now := s.now()
		tr, err := s.transactions.Sell(ctx, domain.Transaction{
			ID:            s.newTransactionID(now),
			DrawID:        req.DrawID,
			Seller:        seller.Email,
			TicketIDs:     req.TicketIDs,
			PaymentMethod: req.PaymentMethod,
			CreatedAt:     now,
		})
		if err == nil {
			zap.L().Info("tickets sold",
				zap.String("transaction_id", tr.ID),
				zap.String("draw_id", tr.DrawID),
				zap.String("seller", tr.Seller),
				zap.Int("tickets", len(tr.TicketIDs)),
				zap.Int64("amount", tr.Amount),
			)
			return tr, nil
		}
		if !errors.Is(err, repository.ErrTransactionIDExists) {
			return domain.Transaction{}, fmt.Errorf("s.transactions.Sell -> %w", err)
		}
		lastErr = err
	}

	return domain.Transaction{}, fmt.Errorf("s.transactions.Sell after %d attempts -> %w", maxIDAttempts, lastErr)
}

// publish renders and uploads the missing images and stores their urls. Failures only leave
// urls empty; the sale itself is already committed.
func (s *SaleService) publish(ctx context.Context, tr domain.Transaction, shopAddress string) domain.Transaction {
	tickets, err := s.tickets.FindByTransaction(ctx, tr.ID)
	if err != nil {
		zap.L().Error("failed to load sold tickets", zap.String("transaction_id", tr.ID), zap.Error(err))
		return tr
	}
	draw, err := s.draws.FindByID(ctx, tr.DrawID)
	if err != nil {
		zap.L().Error("failed to load draw", zap.String("transaction_id", tr.ID), zap.Error(err))
		return tr
	}

	urls, receiptURL := s.printer.Publish(ctx, tr, tickets, draw, shopAddress)
	if err = s.transactions.UpdateImages(ctx, tr.ID, urls, receiptURL); err != nil {
		zap.L().Error("failed to store image urls", zap.String("transaction_id", tr.ID), zap.Error(err))
		return tr
	}
	tr.TicketURLs = urls
	tr.ReceiptURL = receiptURL

	return tr
}

func (s *SaleService) History(ctx context.Context, seller string) ([]domain.Transaction, error) {
	trs, err := s.transactions.FindBySeller(ctx, seller)
	if err != nil {
		return nil, fmt.Errorf("s.transactions.FindBySeller -> %w", err)
	}

	return trs, nil
}

// Reprint returns the transaction with all image urls, rendering whatever failed before.
func (s *SaleService) Reprint(ctx context.Context, transactionID string) (domain.Transaction, error) {
	tr, err := s.transactions.FindByID(ctx, transactionID)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("s.transactions.FindByID -> %w", err)
	}
	if tr.HasImages() {
		return tr, nil
	}

	return s.publish(ctx, tr, s.shopAddress(ctx, tr.Seller)), nil
}

func (s *SaleService) shopAddress(ctx context.Context, seller string) string {
	user, err := s.sellers.FindByEmail(ctx, seller)
	if err != nil {
		zap.L().Warn("failed to load seller for receipt", zap.String("seller", seller), zap.Error(err))
		return ""
	}

	return user.ShopAddress
}

func (s *SaleService) ReceiptPNG(ctx context.Context, transactionID string) ([]byte, error) {
	tr, err := s.transactions.FindByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("s.transactions.FindByID -> %w", err)
	}

	tickets, err := s.tickets.FindByTransaction(ctx, tr.ID)
	if err != nil {
		return nil, fmt.Errorf("s.tickets.FindByTransaction -> %w", err)
	}

	byID := make(map[string]domain.Ticket, len(tickets))
	for _, t := range tickets {
		byID[t.ID] = t
	}

	return s.printer.ReceiptPNG(tr, s.printer.ordered(tr, byID), s.shopAddress(ctx, tr.Seller))
}

func (s *SaleService) TicketPNG(ctx context.Context, ticketID string) ([]byte, error) {
	t, err := s.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("s.tickets.FindByID -> %w", err)
	}

	draw, err := s.draws.FindByID(ctx, t.DrawID)
	if err != nil {
		return nil, fmt.Errorf("s.draws.FindByID -> %w", err)
	}

	return s.printer.TicketPNG(t, draw)
}
