package repository

import (
	"context"
	"fmt"

	"github.com/homeloto/retail-api/internal/domain"
	"github.com/homeloto/retail-api/internal/repository/dao"
)

var (
	ErrTransactionNotFound = dao.ErrTransactionNotFound
	ErrTransactionIDExists = dao.ErrTransactionIDExists
)

type TransactionDAO interface {
	Sell(ctx context.Context, tr dao.Transaction) (dao.Transaction, error)
	FindByID(ctx context.Context, id string) (dao.Transaction, error)
	FindBySeller(ctx context.Context, seller string) ([]dao.Transaction, error)
	UpdateImages(ctx context.Context, id string, ticketURLs []string, receiptURL string) error
}

type TransactionRepository struct {
	dao TransactionDAO
}

func NewTransactionRepository(dao TransactionDAO) *TransactionRepository {
	return &TransactionRepository{
		dao: dao,
	}
}

// Sell atomically marks the transaction's tickets sold and stores it. The amount is computed
// from the stored ticket prices.
func (r *TransactionRepository) Sell(ctx context.Context, tr domain.Transaction) (domain.Transaction, error) {
	sold, err := r.dao.Sell(ctx, dao.Transaction{
		ID:            tr.ID,
		DrawID:        tr.DrawID,
		Seller:        tr.Seller,
		TicketIDs:     tr.TicketIDs,
		TicketURLs:    []string{},
		PaymentMethod: string(tr.PaymentMethod),
		CreatedAt:     tr.CreatedAt,
	})
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("r.dao.Sell -> %w", err)
	}

	return transactionDaoToDomain(sold), nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, id string) (domain.Transaction, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return transactionDaoToDomain(found), nil
}

func (r *TransactionRepository) FindBySeller(ctx context.Context, seller string) ([]domain.Transaction, error) {
	found, err := r.dao.FindBySeller(ctx, seller)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindBySeller -> %w", err)
	}

	trs := make([]domain.Transaction, 0, len(found))
	for _, tr := range found {
		trs = append(trs, transactionDaoToDomain(tr))
	}

	return trs, nil
}

func (r *TransactionRepository) UpdateImages(ctx context.Context, id string, ticketURLs []string, receiptURL string) error {
	if err := r.dao.UpdateImages(ctx, id, ticketURLs, receiptURL); err != nil {
		return fmt.Errorf("r.dao.UpdateImages -> %w", err)
	}

	return nil
}

func transactionDaoToDomain(tr dao.Transaction) domain.Transaction {
	ticketURLs := []string(tr.TicketURLs)
	if ticketURLs == nil {
		ticketURLs = []string{}
	}

	return domain.Transaction{
		ID:            tr.ID,
		DrawID:        tr.DrawID,
		Seller:        tr.Seller,
		TicketIDs:     tr.TicketIDs,
		TicketURLs:    ticketURLs,
		ReceiptURL:    tr.ReceiptURL,
		Amount:        tr.Amount,
		PaymentMethod: domain.PaymentMethod(tr.PaymentMethod),
		CreatedAt:     tr.CreatedAt,
	}
}
