package dao_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/homeloto/retail-api/internal/db/dbtest"
	"github.com/homeloto/retail-api/internal/repository/dao"
)

func setup(t *testing.T) *gorm.DB {
	t.Helper()

	conn := dbtest.SQLite(t)
	require.NoError(t, dao.InitTables(conn))

	return conn
}

func seedDraw(t *testing.T, conn *gorm.DB, id string, n int) dao.Draw {
	t.Helper()

	tickets := make([]dao.Ticket, n)
	for i := range tickets {
		tickets[i] = dao.Ticket{
			ID:           fmt.Sprintf("%s-%03d", id, i+1),
			DrawID:       id,
			Position:     i + 1,
			TicketNumber: fmt.Sprintf("%03d", i+1),
			Numbers:      []int{1, 2, 3, 4, 5, 6, 7 + i%40},
			Price:        100,
			DrawDate:     "2026-10-20",
			Status:       dao.TicketStatusAvailable,
		}
	}

	draw, err := dao.NewDrawDAO(conn).InsertWithTickets(context.Background(), dao.Draw{
		ID:           id,
		Date:         "2026-10-20",
		Jackpot:      1_000_000,
		TotalTickets: n,
		Status:       dao.DrawStatusOpen,
	}, tickets)
	require.NoError(t, err)

	return draw
}

func sell(t *testing.T, conn *gorm.DB, trID, drawID string, ids ...string) (dao.Transaction, error) {
	t.Helper()

	return dao.NewTransactionDAO(conn).Sell(context.Background(), dao.Transaction{
		ID:            trID,
		DrawID:        drawID,
		Seller:        "cashier@example.com",
		TicketIDs:     ids,
		PaymentMethod: "cash",
		CreatedAt:     time.Now(),
	})
}

func TestUserDAO(t *testing.T) {
	ctx := context.Background()
	d := dao.NewUserDAO(setup(t))

	created, err := d.Insert(ctx, dao.User{Email: "a@example.com", Role: "none"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	_, err = d.Insert(ctx, dao.User{Email: "a@example.com", Role: "none"})
	assert.ErrorIs(t, err, dao.ErrUserEmailExists)

	_, err = d.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, dao.ErrUserNotFound)

	updated, err := d.Update(ctx, created.ID, map[string]any{"role": "cashier", "shop_address": "Main st 1"})
	require.NoError(t, err)
	assert.Equal(t, "cashier", updated.Role)
	assert.Equal(t, "Main st 1", updated.ShopAddress)

	_, err = d.Update(ctx, 999, map[string]any{"role": "cashier"})
	assert.ErrorIs(t, err, dao.ErrUserNotFound)

	uid := "firebase-uid"
	_, err = d.Insert(ctx, dao.User{Email: "b@example.com", ExternalID: &uid, Role: "none"})
	require.NoError(t, err)
	found, err := d.FindByExternalID(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", found.Email)

	all, err := d.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDrawDAOInsertWithTickets(t *testing.T) {
	ctx := context.Background()
	conn := setup(t)
	seedDraw(t, conn, "105", 1200)

	_, err := dao.NewDrawDAO(conn).InsertWithTickets(ctx, dao.Draw{ID: "105", Status: dao.DrawStatusOpen}, nil)
	assert.ErrorIs(t, err, dao.ErrDrawExists)

	tickets, err := dao.NewTicketDAO(conn).FindByDraw(ctx, "105", dao.TicketStatusAvailable)
	require.NoError(t, err)
	require.Len(t, tickets, 1200)
	assert.Equal(t, "105-001", tickets[0].ID)
	assert.Equal(t, "105-1000", tickets[999].ID)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, []int(tickets[0].Numbers))

	_, err = dao.NewDrawDAO(conn).FindByID(ctx, "404")
	assert.ErrorIs(t, err, dao.ErrDrawNotFound)
}

func TestTransactionDAOSell(t *testing.T) {
	ctx := context.Background()
	conn := setup(t)
	seedDraw(t, conn, "7", 5)

	tr, err := sell(t, conn, "2026102012000011", "7", "7-001", "7-002")
	require.NoError(t, err)
	assert.EqualValues(t, 200, tr.Amount)

	t.Run("already sold ticket rolls back the whole sale", func(t *testing.T) {
		_, err := sell(t, conn, "2026102012000012", "7", "7-002", "7-003")
		assert.ErrorIs(t, err, dao.ErrTicketUnavailable)

		ticket, err := dao.NewTicketDAO(conn).FindByID(ctx, "7-003")
		require.NoError(t, err)
		assert.Equal(t, dao.TicketStatusAvailable, ticket.Status)
	})

	t.Run("ticket from another draw", func(t *testing.T) {
		seedDraw(t, conn, "8", 1)
		_, err := sell(t, conn, "2026102012000013", "7", "8-001")
		assert.ErrorIs(t, err, dao.ErrTicketUnavailable)
	})

	t.Run("duplicate transaction id", func(t *testing.T) {
		_, err := sell(t, conn, "2026102012000011", "7", "7-004")
		assert.ErrorIs(t, err, dao.ErrTransactionIDExists)

		ticket, err := dao.NewTicketDAO(conn).FindByID(ctx, "7-004")
		require.NoError(t, err)
		assert.Equal(t, dao.TicketStatusAvailable, ticket.Status)
	})

	t.Run("unknown draw", func(t *testing.T) {
		_, err := sell(t, conn, "2026102012000014", "nope", "7-004")
		assert.ErrorIs(t, err, dao.ErrDrawNotFound)
	})

	tickets, err := dao.NewTicketDAO(conn).FindByTransaction(ctx, tr.ID)
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, "cashier@example.com", tickets[0].SoldBy)

	history, err := dao.NewTransactionDAO(conn).FindBySeller(ctx, "cashier@example.com")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, []string{"7-001", "7-002"}, []string(history[0].TicketIDs))

	require.NoError(t, dao.NewTransactionDAO(conn).UpdateImages(ctx, tr.ID, []string{"u1", "u2"}, "r"))
	stored, err := dao.NewTransactionDAO(conn).FindByID(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, []string(stored.TicketURLs))
	assert.Equal(t, "r", stored.ReceiptURL)
}

func TestTransactionDAOSellConcurrent(t *testing.T) {
	conn := setup(t)
	seedDraw(t, conn, "9", 3)

	const sellers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < sellers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := sell(t, conn, fmt.Sprintf("20261020120000%02d", 10+i), "9", "9-001", "9-002")
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, wins, 1)

	a, err := dao.NewTicketDAO(conn).FindByID(context.Background(), "9-001")
	require.NoError(t, err)
	b, err := dao.NewTicketDAO(conn).FindByID(context.Background(), "9-002")
	require.NoError(t, err)
	assert.Equal(t, a.TransactionID, b.TransactionID)
}

func TestDrawDAOResolveAndPay(t *testing.T) {
	ctx := context.Background()
	conn := setup(t)
	seedDraw(t, conn, "3", 4)
	_, err := sell(t, conn, "2026102012000020", "3", "3-001", "3-002")
	require.NoError(t, err)

	// 3-001 holds {1..7}, 3-002 holds {1..6, 8}.
	grade := func(numbers []int) (int, int64) {
		for _, n := range numbers {
			if n == 7 {
				return 7, 1_000_000
			}
		}
		return 1, 0
	}

	graded, err := dao.NewDrawDAO(conn).Resolve(ctx, "3", []int{1, 2, 3, 4, 5, 6, 7}, time.Now(), grade)
	require.NoError(t, err)
	require.Len(t, graded, 2)

	_, err = dao.NewDrawDAO(conn).Resolve(ctx, "3", []int{1, 2, 3, 4, 5, 6, 7}, time.Now(), grade)
	assert.ErrorIs(t, err, dao.ErrDrawClosed)

	draw, err := dao.NewDrawDAO(conn).FindByID(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, dao.DrawStatusClosed, draw.Status)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, []int(draw.WinningNumbers))
	assert.NotNil(t, draw.ResolvedAt)

	tickets := dao.NewTicketDAO(conn)
	unsold, err := tickets.FindByID(ctx, "3-003")
	require.NoError(t, err)
	assert.Equal(t, dao.TicketStatusAvailable, unsold.Status)

	winners, err := tickets.FindWinners(ctx, "3", -1)
	require.NoError(t, err)
	require.Len(t, winners, 1)
	assert.Equal(t, "3-001", winners[0].ID)

	_, err = tickets.MarkPaid(ctx, "3-001", "wrong-tr", "cashier@example.com", time.Now())
	assert.ErrorIs(t, err, dao.ErrTicketNotInTransaction)

	paid, err := tickets.MarkPaid(ctx, "3-001", "2026102012000020", "cashier@example.com", time.Now())
	require.NoError(t, err)
	assert.Equal(t, dao.TicketStatusPaid, paid.Status)
	assert.NotNil(t, paid.PaidAt)

	_, err = tickets.MarkPaid(ctx, "3-001", "", "cashier@example.com", time.Now())
	assert.ErrorIs(t, err, dao.ErrTicketAlreadyPaid)

	_, err = tickets.MarkPaid(ctx, "3-002", "", "cashier@example.com", time.Now())
	assert.ErrorIs(t, err, dao.ErrTicketNotWinner)

	_, err = tickets.MarkPaid(ctx, "3-999", "", "cashier@example.com", time.Now())
	assert.ErrorIs(t, err, dao.ErrTicketNotFound)

	_, err = sell(t, conn, "2026102012000021", "3", "3-003")
	assert.ErrorIs(t, err, dao.ErrDrawClosed)

	reports := dao.NewReportDAO(conn)
	sellers, err := reports.SellerTotals(ctx)
	require.NoError(t, err)
	require.Len(t, sellers, 1)
	assert.Equal(t, dao.SellerTotal{Email: "cashier@example.com", Count: 2, Total: 200}, sellers[0])

	byStatus, err := reports.DrawStatusTotals(ctx, "3")
	require.NoError(t, err)
	got := map[string]int64{}
	for _, s := range byStatus {
		got[s.Status] = s.Count
	}
	assert.Equal(t, map[string]int64{"available": 2, "checked": 1, "paid": 1}, got)
}
