package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrTransactionIDExists = errors.New("transaction id already used")
)

type Transaction struct {
	ID string `gorm:"primaryKey;size:32"`

	DrawID        string `gorm:"not null;index"`
	Seller        string `gorm:"not null;index"`
	TicketIDs     datatypes.JSONSlice[string]
	TicketURLs    datatypes.JSONSlice[string]
	ReceiptURL    string
	Amount        int64  `gorm:"not null"`
	PaymentMethod string `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null;index"`
}

type TransactionDAO struct {
	db *gorm.DB
}

func NewTransactionDAO(db *gorm.DB) *TransactionDAO {
	return &TransactionDAO{
		db: db,
	}
}

// Sell marks the requested tickets sold and records the transaction in one database
// transaction. It fails without side effects when the draw is not open or when any ticket is
// missing, in another draw or already sold.
func (d *TransactionDAO) Sell(ctx context.Context, tr Transaction) (Transaction, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		draw, err := findDraw(tx, tr.DrawID)
		if err != nil {
			return err
		}
		if draw.Status != DrawStatusOpen {
			return ErrDrawClosed
		}

		result := tx.Model(&Ticket{}).
			Where("id IN ? AND draw_id = ? AND status = ?", []string(tr.TicketIDs), tr.DrawID, TicketStatusAvailable).
			Updates(map[string]any{
				"status":         TicketStatusSold,
				"transaction_id": tr.ID,
				"payment_method": tr.PaymentMethod,
				"sold_by":        tr.Seller,
				"purchased_at":   tr.CreatedAt,
			})
		if result.Error != nil {
			return fmt.Errorf("tx.Updates tickets -> %w", result.Error)
		}
		if result.RowsAffected != int64(len(tr.TicketIDs)) {
			return ErrTicketUnavailable
		}

		var amount int64
		err = tx.Model(&Ticket{}).
			Where("transaction_id = ?", tr.ID).
			Select("COALESCE(SUM(price), 0)").
			Scan(&amount).Error
		if err != nil {
			return fmt.Errorf("tx.Scan amount -> %w", err)
		}
		tr.Amount = amount

		if err = tx.Create(&tr).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrTransactionIDExists
			}
			return fmt.Errorf("tx.Create transaction -> %w", err)
		}

		return nil
	})
	if err != nil {
		return Transaction{}, err
	}

	return tr, nil
}

func (d *TransactionDAO) FindByID(ctx context.Context, id string) (Transaction, error) {
	var tr Transaction

	result := d.db.WithContext(ctx).First(&tr, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Transaction{}, ErrTransactionNotFound
		}

		return Transaction{}, result.Error
	}

	return tr, nil
}

// FindBySeller lists a seller's transactions newest first.
func (d *TransactionDAO) FindBySeller(ctx context.Context, seller string) ([]Transaction, error) {
	var trs []Transaction

	err := d.db.WithContext(ctx).
		Where("seller = ?", seller).
		Order("created_at DESC, id DESC").
		Find(&trs).Error
	if err != nil {
		return nil, err
	}

	return trs, nil
}

// UpdateImages stores the urls of the printable images, the only mutable part of a transaction.
func (d *TransactionDAO) UpdateImages(ctx context.Context, id string, ticketURLs []string, receiptURL string) error {
	result := d.db.WithContext(ctx).Model(&Transaction{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"ticket_urls": datatypes.JSONSlice[string](ticketURLs),
			"receipt_url": receiptURL,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}

	return nil
}
