package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// ConsumerHook observes message handling. Hooks must not block.
type ConsumerHook interface {
	AfterHandle(ctx context.Context, topic string, km kafka.Message, err error)
	OnDeadLetter(ctx context.Context, topic string, km kafka.Message, err error)
}

// NoopHook does nothing.
type NoopHook struct{}

func (NoopHook) AfterHandle(context.Context, string, kafka.Message, error)  {}
func (NoopHook) OnDeadLetter(context.Context, string, kafka.Message, error) {}

// HookFuncs adapts plain functions to ConsumerHook. Nil functions are no-ops.
type HookFuncs struct {
	After func(ctx context.Context, topic string, km kafka.Message, err error)
	Dead  func(ctx context.Context, topic string, km kafka.Message, err error)
}

func (h HookFuncs) AfterHandle(ctx context.Context, topic string, km kafka.Message, err error) {
	if h.After != nil {
		safe(func() { h.After(ctx, topic, km, err) })
	}
}

func (h HookFuncs) OnDeadLetter(ctx context.Context, topic string, km kafka.Message, err error) {
	if h.Dead != nil {
		safe(func() { h.Dead(ctx, topic, km, err) })
	}
}

// safe runs f and swallows panics so hooks cannot crash a worker.
func safe(f func()) {
	defer func() { _ = recover() }()
	f()
}
