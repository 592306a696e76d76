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
	ErrDrawExists   = errors.New("draw already exists")
	ErrDrawNotFound = errors.New("draw not found")
	ErrDrawClosed   = errors.New("draw is closed")
)

const (
	DrawStatusOpen   = "open"
	DrawStatusClosed = "closed"
)

type Draw struct {
	ID string `gorm:"primaryKey;size:32"`

	Date          string `gorm:"not null"`
	Jackpot       int64  `gorm:"not null"`
	TotalTickets  int    `gorm:"not null"`
	BroadcastLink string

	Status         string `gorm:"not null;index"`
	WinningNumbers datatypes.JSONSlice[int]
	CreatedBy      string
	ResolvedAt     *time.Time

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// Grade computes the match count and prize for one sold ticket.
type Grade func(numbers []int) (matches int, win int64)

type DrawDAO struct {
	db *gorm.DB
}

func NewDrawDAO(db *gorm.DB) *DrawDAO {
	return &DrawDAO{
		db: db,
	}
}

// InsertWithTickets creates the draw and its whole ticket pool atomically.
func (d *DrawDAO) InsertWithTickets(ctx context.Context, draw Draw, tickets []Ticket) (Draw, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&draw).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDrawExists
			}
			return fmt.Errorf("tx.Create draw -> %w", err)
		}

		if err := tx.CreateInBatches(&tickets, batchSize).Error; err != nil {
			return fmt.Errorf("tx.CreateInBatches tickets -> %w", err)
		}

		return nil
	})
	if err != nil {
		return Draw{}, err
	}

	return draw, nil
}

func (d *DrawDAO) FindByID(ctx context.Context, id string) (Draw, error) {
	return findDraw(d.db.WithContext(ctx), id)
}

func findDraw(db *gorm.DB, id string) (Draw, error) {
	var draw Draw

	result := db.First(&draw, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Draw{}, ErrDrawNotFound
		}

		return Draw{}, result.Error
	}

	return draw, nil
}

// FindAll lists draws newest code first. An empty status means every draw.
func (d *DrawDAO) FindAll(ctx context.Context, status string) ([]Draw, error) {
	var draws []Draw

	query := d.db.WithContext(ctx).Order("id DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&draws).Error; err != nil {
		return nil, err
	}

	return draws, nil
}

// Resolve closes an open draw with its winning numbers and grades every sold ticket in the
// same transaction. A draw that is already closed yields ErrDrawClosed.
func (d *DrawDAO) Resolve(ctx context.Context, drawID string, winning []int, at time.Time, grade Grade) ([]Ticket, error) {
	var graded []Ticket

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findDraw(tx, drawID); err != nil {
			return err
		}

		result := tx.Model(&Draw{}).
			Where("id = ? AND status = ?", drawID, DrawStatusOpen).
			Updates(map[string]any{
				"status":          DrawStatusClosed,
				"winning_numbers": datatypes.JSONSlice[int](winning),
				"resolved_at":     at,
			})
		if result.Error != nil {
			return fmt.Errorf("tx.Updates draw -> %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrDrawClosed
		}

		var sold []Ticket
		if err := tx.Where("draw_id = ? AND status = ?", drawID, TicketStatusSold).
			Order("position").Find(&sold).Error; err != nil {
			return fmt.Errorf("tx.Find sold tickets -> %w", err)
		}

		// One update per match count keeps the statement count small for large draws.
		byMatches := make(map[int][]string)
		prizes := make(map[int]int64)
		for i := range sold {
			matches, win := grade(sold[i].Numbers)
			sold[i].Status = TicketStatusChecked
			sold[i].MatchesCount = matches
			sold[i].WinAmount = win
			byMatches[matches] = append(byMatches[matches], sold[i].ID)
			prizes[matches] = win
		}

		for matches, ids := range byMatches {
			for _, part := range chunk(ids, batchSize) {
				err := tx.Model(&Ticket{}).
					Where("id IN ? AND status = ?", part, TicketStatusSold).
					Updates(map[string]any{
						"status":        TicketStatusChecked,
						"matches_count": matches,
						"win_amount":    prizes[matches],
					}).Error
				if err != nil {
					return fmt.Errorf("tx.Updates tickets -> %w", err)
				}
			}
		}

		graded = sold
		return nil
	})
	if err != nil {
		return nil, err
	}

	return graded, nil
}
