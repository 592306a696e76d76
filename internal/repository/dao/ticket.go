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
	ErrTicketNotFound         = errors.New("ticket not found")
	ErrTicketUnavailable      = errors.New("ticket is not available")
	ErrTicketAlreadyPaid      = errors.New("ticket already paid")
	ErrTicketNotWinner        = errors.New("ticket is not a winning ticket")
	ErrTicketNotInTransaction = errors.New("ticket does not belong to the transaction")
)

const (
	TicketStatusAvailable = "available"
	TicketStatusSold      = "sold"
	TicketStatusChecked   = "checked"
	TicketStatusPaid      = "paid"
)

type Ticket struct {
	ID string `gorm:"primaryKey;size:48"`

	DrawID       string                   `gorm:"not null;index"`
	Position     int                      `gorm:"not null"`
	TicketNumber string                   `gorm:"not null"`
	Numbers      datatypes.JSONSlice[int] `gorm:"not null"`
	Price        int64                    `gorm:"not null"`
	DrawDate     string

	Status       string `gorm:"not null;index"`
	MatchesCount int    `gorm:"not null;default:0"`
	WinAmount    int64  `gorm:"not null;default:0"`

	TransactionID string `gorm:"index"`
	PaymentMethod string
	SoldBy        string `gorm:"index"`
	PurchasedAt   *time.Time
	PaidAt        *time.Time
	PaidBy        string
}

type TicketDAO struct {
	db *gorm.DB
}

func NewTicketDAO(db *gorm.DB) *TicketDAO {
	return &TicketDAO{
		db: db,
	}
}

func (d *TicketDAO) FindByID(ctx context.Context, id string) (Ticket, error) {
	return findTicket(d.db.WithContext(ctx), id)
}

func findTicket(db *gorm.DB, id string) (Ticket, error) {
	var ticket Ticket

	result := db.First(&ticket, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Ticket{}, ErrTicketNotFound
		}

		return Ticket{}, result.Error
	}

	return ticket, nil
}

// FindByDraw lists a draw's tickets in print order. An empty status means every ticket.
func (d *TicketDAO) FindByDraw(ctx context.Context, drawID, status string) ([]Ticket, error) {
	var tickets []Ticket

	query := d.db.WithContext(ctx).Where("draw_id = ?", drawID).Order("position")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&tickets).Error; err != nil {
		return nil, err
	}

	return tickets, nil
}

func (d *TicketDAO) FindByTransaction(ctx context.Context, transactionID string) ([]Ticket, error) {
	var tickets []Ticket

	err := d.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("draw_id, position").
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}

	return tickets, nil
}

// FindWinners lists tickets with a prize, biggest first. A negative matches means any count.
func (d *TicketDAO) FindWinners(ctx context.Context, drawID string, matches int) ([]Ticket, error) {
	var tickets []Ticket

	query := d.db.WithContext(ctx).
		Where("draw_id = ? AND win_amount > 0", drawID).
		Order("win_amount DESC, position")
	if matches >= 0 {
		query = query.Where("matches_count = ?", matches)
	}
	if err := query.Find(&tickets).Error; err != nil {
		return nil, err
	}

	return tickets, nil
}

// MarkPaid moves a checked winning ticket to paid. When transactionID is set the ticket must
// have been sold in that transaction.
func (d *TicketDAO) MarkPaid(ctx context.Context, id, transactionID, paidBy string, at time.Time) (Ticket, error) {
	var paid Ticket

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ticket, err := findTicket(tx, id)
		if err != nil {
			return err
		}
		if transactionID != "" && ticket.TransactionID != transactionID {
			return ErrTicketNotInTransaction
		}

		result := tx.Model(&Ticket{}).
			Where("id = ? AND status = ? AND win_amount > 0", id, TicketStatusChecked).
			Updates(map[string]any{
				"status":  TicketStatusPaid,
				"paid_at": at,
				"paid_by": paidBy,
			})
		if result.Error != nil {
			return fmt.Errorf("tx.Updates ticket -> %w", result.Error)
		}
		if result.RowsAffected == 0 {
			// Re-read so a payout committed concurrently is reported as such.
			if ticket, err = findTicket(tx, id); err != nil {
				return err
			}
			if ticket.Status == TicketStatusPaid {
				return ErrTicketAlreadyPaid
			}
			return ErrTicketNotWinner
		}

		paid, err = findTicket(tx, id)
		return err
	})
	if err != nil {
		return Ticket{}, err
	}

	return paid, nil
}
