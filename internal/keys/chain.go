package keys

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ErrSenderNotAvailable is returned by a sender that cannot run on this system.
var ErrSenderNotAvailable = errors.New("key sender not available on this system")

// NamedSender is a Sender that can be identified in logs.
type NamedSender interface {
	Sender
	Name() string
}

// ChainSender tries its senders in order until one succeeds.
type ChainSender struct {
	senders []NamedSender
	log     logrus.FieldLogger
}

// NewChainSender creates a sender trying senders in the given order.
func NewChainSender(log logrus.FieldLogger, senders ...NamedSender) *ChainSender {
	return &ChainSender{senders: senders, log: log}
}

// Send taps c with the first sender that does not fail. A panicking sender
// counts as failed.
func (s *ChainSender) Send(ctx context.Context, c Combo) error {
	var errs []error
	for _, sender := range s.senders {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := sendProtected(ctx, sender, c)
		if err == nil {
			return nil
		}
		s.log.WithField("sender", sender.Name()).WithError(err).Debug("Key send failed")
		errs = append(errs, fmt.Errorf("%s: %w", sender.Name(), err))
	}
	if len(errs) == 0 {
		return errors.New("no key senders configured")
	}
	return errors.Join(errs...)
}

func sendProtected(ctx context.Context, sender NamedSender, c Combo) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sender %s panicked: %v", sender.Name(), r)
		}
	}()
	return sender.Send(ctx, c)
}
