package nats

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/rudradey/campus-companion/internal/infrastructure/resilience"
)

// Queue carries the two async flows: document-ingested events from the
// api to the worker, and retrain-requested signals for the ML tier.
type Queue struct {
	conn           *nats.Conn
	ingestSubject  string
	retrainSubject string
	executor       *resilience.Executor
}

func New(url, ingestSubject, retrainSubject string) (*Queue, error) {
	return NewWithOptions(url, ingestSubject, retrainSubject, Options{})
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func NewWithOptions(url, ingestSubject, retrainSubject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}

	conn, err := nats.Connect(
		url,
		nats.Name("campus-companion"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("nats reconnected: %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:           conn,
		ingestSubject:  ingestSubject,
		retrainSubject: retrainSubject,
		executor:       options.ResilienceExecutor,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishDocumentIngested(ctx context.Context, documentID string) error {
	return q.publish(ctx, q.ingestSubject, []byte(documentID))
}

func (q *Queue) PublishRetrainRequested(ctx context.Context) error {
	return q.publish(ctx, q.retrainSubject, []byte("retrain"))
}

func (q *Queue) publish(ctx context.Context, subject string, payload []byte) error {
	call := func(_ context.Context) error {
		if err := q.conn.Publish(subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	var err error
	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish."+subject, call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

// SubscribeDocumentIngested uses a queue group: each uploaded document
// is processed by exactly one worker.
func (q *Queue) SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error {
	return q.subscribe(ctx, q.ingestSubject, "workers", func(msgCtx context.Context, data []byte) error {
		return handler(msgCtx, string(data))
	})
}

// SubscribeRetrainRequested broadcasts: every process holds its own
// in-memory model and each must re-fit on the signal.
func (q *Queue) SubscribeRetrainRequested(ctx context.Context, handler func(context.Context) error) error {
	return q.subscribe(ctx, q.retrainSubject, "", func(msgCtx context.Context, _ []byte) error {
		return handler(msgCtx)
	})
}

func (q *Queue) subscribe(ctx context.Context, subject, group string, handler func(context.Context, []byte) error) error {
	callback := func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, msg.Data); err != nil {
			log.Printf("handler error on %s: %v", subject, err)
		}
	}

	var sub *nats.Subscription
	var err error
	if group == "" {
		sub, err = q.conn.Subscribe(subject, callback)
	} else {
		sub, err = q.conn.QueueSubscribe(subject, group, callback)
	}
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}
