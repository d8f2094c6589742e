package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	ErrEmailQueueFull   = errors.New("email queue is full")
	ErrEmailQueueClosed = errors.New("email queue is closed")
)

type emailJob struct {
	to      string
	subject string
	body    string
}

// AsyncEmailSender queues messages and delivers them from a background
// worker so request handlers never wait on the mail provider.
type AsyncEmailSender struct {
	next    EmailSender
	logger  logrus.FieldLogger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	jobs   chan emailJob
	done   chan struct{}
}

func NewAsyncEmailSender(next EmailSender, buffer int, logger logrus.FieldLogger) *AsyncEmailSender {
	if buffer <= 0 {
		buffer = 100
	}
	s := &AsyncEmailSender{
		next:    next,
		logger:  logger,
		timeout: 15 * time.Second,
		jobs:    make(chan emailJob, buffer),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *AsyncEmailSender) Send(_ context.Context, to string, subject string, body string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrEmailQueueClosed
	}
	select {
	case s.jobs <- emailJob{to: to, subject: subject, body: body}:
		return nil
	default:
		return ErrEmailQueueFull
	}
}

// Close stops accepting messages and waits until the queue is drained.
func (s *AsyncEmailSender) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.jobs)
	s.mu.Unlock()
	<-s.done
}

func (s *AsyncEmailSender) run() {
	defer close(s.done)
	for job := range s.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		err := s.next.Send(ctx, job.to, job.subject, job.body)
		cancel()
		if err != nil && s.logger != nil {
			s.logger.WithError(err).WithField("subject", job.subject).Error("email delivery failed")
		}
	}
}
