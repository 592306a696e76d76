// Package mail sends notification emails. Sends are fire-and-forget from the request's point
// of view: the Dispatcher runs them in the background and only logs failures.
package mail

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultSendTimeout = 15 * time.Second

type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Nop logs instead of sending. It is used when no provider key is configured.
type Nop struct{}

func (Nop) Send(_ context.Context, to, subject, _ string) error {
	zap.L().Debug("mail disabled, dropping message", zap.String("to", to), zap.String("subject", subject))
	return nil
}

type Dispatcher struct {
	sender  Sender
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(sender Sender) *Dispatcher {
	return &Dispatcher{
		sender:  sender,
		timeout: defaultSendTimeout,
	}
}

// Async sends in the background on a context detached from the caller's request.
func (d *Dispatcher) Async(to, subject, body string) {
	if to == "" {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.sender.Send(ctx, to, subject, body); err != nil {
			zap.L().Warn("failed to send email",
				zap.String("to", to),
				zap.String("subject", subject),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until every pending send finished. Called on shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
