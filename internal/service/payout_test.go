package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homeloto/retail-api/internal/domain"
)

func TestPayoutFlow(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.openDraw(t, "700", 5)
	seller := e.cashier(t, "c@example.com")
	tr := e.sell(t, seller, "700", "700-001", "700-002")

	winner, err := e.tickets.FindByID(ctx, "700-001")
	require.NoError(t, err)

	result, err := e.drawSvc.Resolve(ctx, "700", winner.Numbers, "org@example.com")
	require.NoError(t, err)
	require.GreaterOrEqual(t, result.Winners, 1)

	scanned, err := e.payoutSvc.ScanTransaction(ctx, "CHECK:"+tr.ID)
	require.NoError(t, err)
	assert.Len(t, scanned, 2)

	_, err = e.payoutSvc.ScanTransaction(ctx, "19990101000000")
	assert.ErrorIs(t, err, ErrTransactionNotFound)

	_, err = e.payoutSvc.Pay(ctx, "700-001", "20000101000000", "c@example.com")
	assert.ErrorIs(t, err, ErrTicketNotInTransaction)

	paid, err := e.payoutSvc.Pay(ctx, "700-001", tr.ID, "c@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPaid, paid.Status)
	assert.Equal(t, "c@example.com", paid.PaidBy)
	assert.EqualValues(t, 1_000_000, paid.WinAmount)

	_, err = e.payoutSvc.Pay(ctx, "700-001", "", "c@example.com")
	assert.ErrorIs(t, err, ErrTicketAlreadyPaid)

	_, err = e.payoutSvc.Pay(ctx, "700-003", "", "c@example.com")
	assert.ErrorIs(t, err, ErrTicketNotWinner, "unsold ticket")

	checked, err := e.payoutSvc.CheckTicket(ctx, " 700-001 ")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPaid, checked.Status)

	reports := NewReportService(e.reports, e.draws, e.transactions)
	sellers, err := reports.Sellers(ctx)
	require.NoError(t, err)
	require.Len(t, sellers, 1)
	assert.Equal(t, domain.SellerTotal{Email: "c@example.com", Count: 2, Total: 200}, sellers[0])

	summary, err := reports.DrawSummary(ctx, "700")
	require.NoError(t, err)
	assert.Equal(t, domain.DrawClosed, summary.Status)
	assert.EqualValues(t, 3, summary.ByStatus[domain.TicketAvailable])
	assert.EqualValues(t, 1, summary.ByStatus[domain.TicketPaid])
	assert.EqualValues(t, 1_000_000, summary.PaidAmount)

	_, err = reports.DrawSummary(ctx, "nope")
	assert.ErrorIs(t, err, ErrDrawNotFound)

	trs, err := reports.SellerTransactions(ctx, "c@example.com")
	require.NoError(t, err)
	assert.Len(t, trs, 1)
}
