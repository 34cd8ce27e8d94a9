package kafka

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

type flakyHandler struct {
	topic    string
	failures int
	calls    int
	seen     []string
}

func (h *flakyHandler) Topic() string { return h.topic }

func (h *flakyHandler) Handle(ctx context.Context, data []byte) error {
	h.calls++
	h.seen = append(h.seen, TraceIDFrom(ctx)+"|"+string(data))
	if h.calls <= h.failures {
		return errors.New("transient")
	}
	return nil
}

func newTestConsumer(t *testing.T, retries int) *Consumer {
	t.Helper()
	c, err := NewConsumer(
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerRetry(retries, time.Millisecond, 2*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("new consumer: %v", err)
	}
	return c
}

func TestNewConsumerRequiresBrokers(t *testing.T) {
	if _, err := NewConsumer(); err == nil {
		t.Fatalf("expected error without brokers")
	}
	if _, err := NewProducer(); err == nil {
		t.Fatalf("expected producer error without brokers")
	}
}

func TestProcessRetriesUntilSuccess(t *testing.T) {
	c := newTestConsumer(t, 3)
	c.WithConsumerHook(TraceHook())
	h := &flakyHandler{topic: "glyph.series", failures: 2}

	msg := &message{topic: h.topic, km: kafka.Message{
		Value:   []byte("payload"),
		Headers: []kafka.Header{{Key: "trace_id", Value: []byte("abc")}},
	}}
	attempts, err := c.process(h, msg)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if attempts != 3 || h.calls != 3 {
		t.Fatalf("attempts=%d calls=%d, want 3", attempts, h.calls)
	}
	if h.seen[0] != "abc|payload" {
		t.Fatalf("hook did not carry trace id: %q", h.seen[0])
	}
}

func TestProcessGivesUp(t *testing.T) {
	c := newTestConsumer(t, 1)
	var onError int
	c.WithConsumerHook(HookFuncs{Err: func(context.Context, string, kafka.Message, []byte, error) { onError++ }})
	h := &flakyHandler{topic: "t", failures: 10}

	attempts, err := c.process(h, &message{topic: "t"})
	if err == nil {
		t.Fatalf("expected failure")
	}
	if attempts != 2 || onError != 2 {
		t.Fatalf("attempts=%d onError=%d, want 2 and 2", attempts, onError)
	}
}

func TestHookChain(t *testing.T) {
	var order []string
	mk := func(name string) ConsumerHook {
		return HookFuncs{
			Before: func(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
				order = append(order, "before:"+name)
				return ctx, km, append(data, name...), nil
			},
			After: func(context.Context, string, kafka.Message, []byte, error) {
				order = append(order, "after:"+name)
			},
		}
	}
	chain := NewHookChain(mk("a"), nil, mk("b"))

	_, _, data, err := chain.BeforeHandle(context.Background(), "t", kafka.Message{}, []byte("x"))
	if err != nil || string(data) != "xab" {
		t.Fatalf("before: %q %v", data, err)
	}
	chain.AfterHandle(context.Background(), "t", kafka.Message{}, data, nil)
	if got := strings.Join(order, ","); got != "before:a,before:b,after:b,after:a" {
		t.Fatalf("order = %s", got)
	}
}

func TestHookChainRecoversPanic(t *testing.T) {
	chain := NewHookChain(HookFuncs{
		Before: func(context.Context, string, kafka.Message, []byte) (context.Context, kafka.Message, []byte, error) {
			panic("boom")
		},
	})
	_, _, _, err := chain.BeforeHandle(context.Background(), "t", kafka.Message{}, nil)
	var he *HookError
	if !errors.As(err, &he) || he.Code != "ERR_PANIC" {
		t.Fatalf("expected ERR_PANIC, got %v", err)
	}
}

func TestBackoffWithJitter(t *testing.T) {
	for attempt := 1; attempt <= 40; attempt++ {
		d := backoffWithJitter(10*time.Millisecond, 80*time.Millisecond, attempt)
		if d <= 0 || d > 80*time.Millisecond {
			t.Fatalf("attempt %d: backoff %v out of range", attempt, d)
		}
	}
}

func TestPartitionLockIsStable(t *testing.T) {
	c := newTestConsumer(t, 0)
	if c.partitionLock("t", 1) != c.partitionLock("t", 1) {
		t.Fatalf("same partition should share a lock")
	}
	if c.partitionLock("t", 1) == c.partitionLock("t", 2) {
		t.Fatalf("partitions should not share a lock")
	}
}

type permanentHandler struct{ calls int }

func (h *permanentHandler) Topic() string { return "t" }

func (h *permanentHandler) Handle(context.Context, []byte) error {
	h.calls++
	return Permanent(errors.New("bad payload"))
}

func TestProcessDoesNotRetryPermanent(t *testing.T) {
	c := newTestConsumer(t, 5)
	h := &permanentHandler{}
	attempts, err := c.process(h, &message{topic: "t"})
	var perm *PermanentError
	if !errors.As(err, &perm) || attempts != 1 || h.calls != 1 {
		t.Fatalf("attempts=%d calls=%d err=%v", attempts, h.calls, err)
	}
	if Permanent(nil) != nil {
		t.Fatalf("Permanent(nil) should be nil")
	}
}
