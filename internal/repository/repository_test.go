package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homeloto/retail-api/internal/db/dbtest"
	"github.com/homeloto/retail-api/internal/domain"
	"github.com/homeloto/retail-api/internal/repository"
	"github.com/homeloto/retail-api/internal/repository/dao"
)

func TestRepositoriesRoundTrip(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.SQLite(t)
	require.NoError(t, dao.InitTables(conn))

	draws := repository.NewDrawRepository(dao.NewDrawDAO(conn))
	tickets := repository.NewTicketRepository(dao.NewTicketDAO(conn))
	trs := repository.NewTransactionRepository(dao.NewTransactionDAO(conn))
	reports := repository.NewReportRepository(dao.NewReportDAO(conn))

	pool := []domain.Ticket{
		{ID: "42-001", DrawID: "42", TicketNumber: "001", Numbers: domain.Numbers{1, 2, 3, 4, 5, 6, 7}, Price: 100, Status: domain.TicketAvailable},
		{ID: "42-002", DrawID: "42", TicketNumber: "002", Numbers: domain.Numbers{8, 9, 10, 11, 12, 13, 14}, Price: 100, Status: domain.TicketAvailable},
		{ID: "42-003", DrawID: "42", TicketNumber: "003", Numbers: domain.Numbers{1, 2, 10, 11, 12, 13, 14}, Price: 100, Status: domain.TicketAvailable},
	}
	draw, err := draws.Create(ctx, domain.Draw{ID: "42", Date: "2026-10-20", Jackpot: 9000, TotalTickets: 3, Status: domain.DrawOpen}, pool)
	require.NoError(t, err)
	assert.Empty(t, draw.WinningNumbers)

	_, err = draws.Create(ctx, domain.Draw{ID: "42", Status: domain.DrawOpen}, nil)
	assert.ErrorIs(t, err, repository.ErrDrawExists)

	open, err := draws.FindAll(ctx, domain.DrawOpen)
	require.NoError(t, err)
	assert.Len(t, open, 1)

	tr, err := trs.Sell(ctx, domain.Transaction{
		ID:            "2026102009000055",
		DrawID:        "42",
		Seller:        "c@example.com",
		TicketIDs:     []string{"42-001", "42-003"},
		PaymentMethod: domain.PaymentCard,
		CreatedAt:     time.Now(),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 200, tr.Amount)
	assert.Equal(t, []string{}, tr.TicketURLs)

	winning := domain.Numbers{1, 2, 3, 4, 5, 6, 7}
	graded, err := draws.Resolve(ctx, "42", winning, time.Now(), func(n domain.Numbers) (int, int64) {
		m := domain.MatchCount(n, winning)
		return m, domain.PrizeFor(m, 9000)
	})
	require.NoError(t, err)
	require.Len(t, graded, 2)

	first, err := tickets.FindByID(ctx, "42-001")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketChecked, first.Status)
	assert.EqualValues(t, 9000, first.WinAmount)
	assert.Equal(t, domain.PaymentCard, first.PaymentMethod)

	_, err = tickets.MarkPaid(ctx, "42-003", "", "c@example.com", time.Now())
	require.NoError(t, err)

	summary, err := reports.DrawSummary(ctx, domain.Draw{ID: "42", Status: domain.DrawClosed})
	require.NoError(t, err)
	assert.Equal(t, map[domain.TicketStatus]int64{
		domain.TicketAvailable: 1,
		domain.TicketChecked:   1,
		domain.TicketPaid:      1,
	}, summary.ByStatus)
	assert.EqualValues(t, 200, summary.SoldAmount)
	assert.EqualValues(t, 9100, summary.WinAmount)
	assert.EqualValues(t, 100, summary.PaidAmount)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.SQLite(t)
	require.NoError(t, dao.InitTables(conn))
	users := repository.NewUserRepository(dao.NewUserDAO(conn))

	created, err := users.Create(ctx, domain.User{Email: "u@example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleNone, created.Role)
	assert.Empty(t, created.ExternalID)

	hash, err := users.PasswordHash(ctx, "u@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", hash)

	promoted, err := users.UpdateRole(ctx, created.ID, domain.RoleCashier)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCashier, promoted.Role)

	_, err = users.FindByID(ctx, 77)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}
