package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/homeloto/retail-api/internal/domain"
	"github.com/homeloto/retail-api/internal/media"
)

type Renderer interface {
	Ticket(t domain.Ticket, draw domain.Draw) ([]byte, error)
	Receipt(tr domain.Transaction, tickets []domain.Ticket, shopAddress string, loc *time.Location) ([]byte, error)
}

type MediaStore interface {
	Put(ctx context.Context, folder, name string, png []byte) (string, error)
}

// Printer renders the images of a sale and uploads them.
type Printer struct {
	renderer Renderer
	store    MediaStore
	loc      *time.Location
}

func NewPrinter(renderer Renderer, store MediaStore, loc *time.Location) *Printer {
	if loc == nil {
		loc = time.Local
	}

	return &Printer{
		renderer: renderer,
		store:    store,
		loc:      loc,
	}
}

// Publish fills in every missing image url of tr. Urls already present are kept. A failed
// image is logged and its url stays empty so a later reprint can retry it.
func (p *Printer) Publish(ctx context.Context, tr domain.Transaction, tickets []domain.Ticket, draw domain.Draw, shopAddress string) ([]string, string) {
	byID := make(map[string]domain.Ticket, len(tickets))
	for _, t := range tickets {
		byID[t.ID] = t
	}

	urls := make([]string, len(tr.TicketIDs))
	for i, id := range tr.TicketIDs {
		if i < len(tr.TicketURLs) && tr.TicketURLs[i] != "" {
			urls[i] = tr.TicketURLs[i]
			continue
		}

		t, ok := byID[id]
		if !ok {
			zap.L().Warn("ticket of transaction not found", zap.String("transaction_id", tr.ID), zap.String("ticket_id", id))
			continue
		}

		url, err := p.publishTicket(ctx, t, draw)
		if err != nil {
			zap.L().Error("failed to publish ticket image",
				zap.String("transaction_id", tr.ID),
				zap.String("ticket_id", id),
				zap.Error(err),
			)
			continue
		}
		urls[i] = url
	}

	receiptURL := tr.ReceiptURL
	if receiptURL == "" {
		url, err := p.publishReceipt(ctx, tr, p.ordered(tr, byID), shopAddress)
		if err != nil {
			zap.L().Error("failed to publish receipt image", zap.String("transaction_id", tr.ID), zap.Error(err))
		} else {
			receiptURL = url
		}
	}

	return urls, receiptURL
}

func (p *Printer) publishTicket(ctx context.Context, t domain.Ticket, draw domain.Draw) (string, error) {
	png, err := p.renderer.Ticket(t, draw)
	if err != nil {
		return "", fmt.Errorf("p.renderer.Ticket -> %w", err)
	}

	url, err := p.store.Put(ctx, media.FolderTickets, t.ID+".png", png)
	if err != nil {
		return "", fmt.Errorf("p.store.Put -> %w", err)
	}

	return url, nil
}

func (p *Printer) publishReceipt(ctx context.Context, tr domain.Transaction, tickets []domain.Ticket, shopAddress string) (string, error) {
	png, err := p.ReceiptPNG(tr, tickets, shopAddress)
	if err != nil {
		return "", err
	}

	url, err := p.store.Put(ctx, media.FolderReceipts, tr.ID+".png", png)
	if err != nil {
		return "", fmt.Errorf("p.store.Put -> %w", err)
	}

	return url, nil
}

func (p *Printer) TicketPNG(t domain.Ticket, draw domain.Draw) ([]byte, error) {
	png, err := p.renderer.Ticket(t, draw)
	if err != nil {
		return nil, fmt.Errorf("p.renderer.Ticket -> %w", err)
	}

	return png, nil
}

func (p *Printer) ReceiptPNG(tr domain.Transaction, tickets []domain.Ticket, shopAddress string) ([]byte, error) {
	png, err := p.renderer.Receipt(tr, tickets, shopAddress, p.loc)
	if err != nil {
		return nil, fmt.Errorf("p.renderer.Receipt -> %w", err)
	}

	return png, nil
}

// ordered returns the tickets in the order they were requested at sale time.
func (p *Printer) ordered(tr domain.Transaction, byID map[string]domain.Ticket) []domain.Ticket {
	out := make([]domain.Ticket, 0, len(tr.TicketIDs))
	for _, id := range tr.TicketIDs {
		if t, ok := byID[id]; ok {
			out = append(out, t)
		}
	}

	return out
}
