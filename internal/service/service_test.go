package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/homeloto/retail-api/internal/cache"
	"github.com/homeloto/retail-api/internal/db/dbtest"
	"github.com/homeloto/retail-api/internal/domain"
	"github.com/homeloto/retail-api/internal/repository"
	"github.com/homeloto/retail-api/internal/repository/dao"
)

type sentMail struct {
	to, subject, body string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMail
}

func (n *fakeNotifier) Async(to, subject, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{to, subject, body})
}

type fakeRenderer struct{}

func (fakeRenderer) Ticket(t domain.Ticket, _ domain.Draw) ([]byte, error) {
	return []byte("ticket:" + t.ID), nil
}

func (fakeRenderer) Receipt(tr domain.Transaction, _ []domain.Ticket, _ string, _ *time.Location) ([]byte, error) {
	return []byte("receipt:" + tr.ID), nil
}

type fakeStore struct {
	mu   sync.Mutex
	fail bool
	puts map[string][]byte
}

func (s *fakeStore) Put(_ context.Context, folder, name string, png []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return "", errors.New("bucket unavailable")
	}
	if s.puts == nil {
		s.puts = map[string][]byte{}
	}
	s.puts[folder+"/"+name] = png
	return "https://media.test/" + folder + "/" + name, nil
}

type env struct {
	users        *repository.UserRepository
	draws        *repository.DrawRepository
	tickets      *repository.TicketRepository
	transactions *repository.TransactionRepository
	reports      *repository.ReportRepository

	notifier *fakeNotifier
	store    *fakeStore
	cache    *cache.MemoryStore

	drawSvc   *DrawService
	saleSvc   *SaleService
	payoutSvc *PayoutService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	conn := dbtest.SQLite(t)
	require.NoError(t, dao.InitTables(conn))

	e := &env{
		users:        repository.NewUserRepository(dao.NewUserDAO(conn)),
		draws:        repository.NewDrawRepository(dao.NewDrawDAO(conn)),
		tickets:      repository.NewTicketRepository(dao.NewTicketDAO(conn)),
		transactions: repository.NewTransactionRepository(dao.NewTransactionDAO(conn)),
		reports:      repository.NewReportRepository(dao.NewReportDAO(conn)),
		notifier:     &fakeNotifier{},
		store:        &fakeStore{},
		cache:        cache.NewMemoryStore(),
	}
	e.drawSvc = NewDrawService(e.draws, e.tickets, e.notifier, 100)
	e.saleSvc = NewSaleService(e.transactions, e.tickets, e.draws, e.users, e.cache,
		NewPrinter(fakeRenderer{}, e.store, time.UTC))
	e.payoutSvc = NewPayoutService(e.tickets, e.transactions)

	return e
}

func (e *env) cashier(t *testing.T, email string) domain.User {
	t.Helper()

	u, err := e.users.Create(context.Background(), domain.User{Email: email, Role: domain.RoleCashier, ShopAddress: "Main st 1"})
	require.NoError(t, err)
	return u
}

func (e *env) openDraw(t *testing.T, id string, count int) domain.Draw {
	t.Helper()

	d, err := e.drawSvc.CreateDraw(context.Background(), domain.Draw{ID: id, Date: "2026-10-20", Jackpot: 1_000_000}, count, "org@example.com")
	require.NoError(t, err)
	return d
}

func (e *env) sell(t *testing.T, seller domain.User, drawID string, ids ...string) domain.Transaction {
	t.Helper()

	tr, _, err := e.saleSvc.Sell(context.Background(), seller, SaleRequest{DrawID: drawID, TicketIDs: ids, PaymentMethod: domain.PaymentCash})
	require.NoError(t, err)
	return tr
}
