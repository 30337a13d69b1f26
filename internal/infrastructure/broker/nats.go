package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

func Connect(url string, log *zap.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("foodrescue-backend"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats: disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats: reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", url, err)
	}
	return nc, nil
}

// Publisher writes JSON payloads to core NATS subjects.
type Publisher struct {
	nc *nats.Conn
}

func NewPublisher(nc *nats.Conn) *Publisher { return &Publisher{nc: nc} }

func (p *Publisher) Publish(ctx context.Context, subject string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.nc.Publish(subject, b)
}

// Handler processes one message payload.
type Handler func(ctx context.Context, data []byte) error

type SubscriberConfig struct {
	Subject       string
	Queue         string
	MaxConcurrent int
	Timeout       time.Duration
	Handler       Handler
}

// Subscriber runs Handler for each message on a bounded number of goroutines.
// Messages are processed once; failures are logged and dropped.
type Subscriber struct {
	cfg       SubscriberConfig
	log       *zap.Logger
	sub       *nats.Subscription
	semaphore chan struct{}
	wg        sync.WaitGroup
}

func newSubscriber(cfg SubscriberConfig, log *zap.Logger) *Subscriber {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 8
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &Subscriber{
		cfg:       cfg,
		log:       log.With(zap.String("subject", cfg.Subject)),
		semaphore: make(chan struct{}, cfg.MaxConcurrent),
	}
}

func Subscribe(nc *nats.Conn, cfg SubscriberConfig, log *zap.Logger) (*Subscriber, error) {
	s := newSubscriber(cfg, log)
	sub, err := nc.QueueSubscribe(cfg.Subject, cfg.Queue, s.dispatch)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to subject %s: %w", cfg.Subject, err)
	}
	s.sub = sub
	s.log.Info("nats: subscribed", zap.String("queue", cfg.Queue))
	return s, nil
}

func (s *Subscriber) dispatch(msg *nats.Msg) {
	s.semaphore <- struct{}{}
	s.wg.Add(1)
	go s.process(msg)
}

func (s *Subscriber) process(msg *nats.Msg) {
	defer func() {
		<-s.semaphore
		s.wg.Done()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()

	if err := s.cfg.Handler(ctx, msg.Data); err != nil {
		s.log.Warn("nats: handler failed", zap.Error(err))
	}
}

// Stop unsubscribes and waits for in-flight handlers.
func (s *Subscriber) Stop() {
	if s.sub != nil {
		if err := s.sub.Unsubscribe(); err != nil {
			s.log.Warn("nats: unsubscribe failed", zap.Error(err))
		}
	}
	s.wg.Wait()
}
