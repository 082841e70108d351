package commands

import (
	"context"
	"errors"
	"fmt"
)

// Command is a write intent. Key identifies the handler that owns it; two
// command types must never share a key.
type Command interface {
	Key() string
}

// Handler executes one command type.
type Handler[C Command, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

// Bus routes a command to its handler, possibly through middleware.
type Bus interface {
	Dispatch(ctx context.Context, cmd Command) (any, error)
}

var (
	ErrHandlerNotFound = errors.New("commands: handler not found")
	ErrInvalidCommand  = errors.New("commands: invalid command for handler")
	ErrResultType      = errors.New("commands: result type mismatch")
	ErrNilBus          = errors.New("commands: nil bus")
)

// InMemoryBus keeps the handler registry in a plain map. Registration happens
// at startup; Dispatch never mutates the map, so no locking is needed.
type InMemoryBus struct {
	handlers map[string]func(ctx context.Context, cmd Command) (any, error)
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{handlers: map[string]func(ctx context.Context, cmd Command) (any, error){}}
}

func (b *InMemoryBus) Dispatch(ctx context.Context, cmd Command) (any, error) {
	h, ok := b.handlers[cmd.Key()]
	if !ok {
		return nil, ErrHandlerNotFound
	}
	return h(ctx, cmd)
}

// RegisterHandler binds a typed handler to a key on the in-memory bus.
// Registering the same key twice panics: that is always a wiring bug.
func RegisterHandler[C Command, R any](bus *InMemoryBus, key string, handler Handler[C, R]) {
	if bus == nil {
		panic("commands: nil bus")
	}
	if key == "" {
		panic("commands: empty key registration")
	}
	if _, dup := bus.handlers[key]; dup {
		panic("commands: duplicate key registration: " + key)
	}
	bus.handlers[key] = func(ctx context.Context, raw Command) (any, error) {
		cmd, ok := any(raw).(C)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCommand, key)
		}
		return handler.Handle(ctx, cmd)
	}
}

// Dispatch sends cmd through the bus and asserts the result type, sparing
// callers the raw any-typed Dispatch.
func Dispatch[C Command, R any](ctx context.Context, bus Bus, cmd C) (R, error) {
	var zero R
	if bus == nil {
		return zero, ErrNilBus
	}
	res, err := bus.Dispatch(ctx, cmd)
	if err != nil {
		return zero, err
	}
	if res == nil {
		return zero, nil
	}
	typed, ok := res.(R)
	if !ok {
		return zero, ErrResultType
	}
	return typed, nil
}
