package common

import (
	"encoding/json"
	"fmt"
)

type Envelope struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

type GenericEnvelope[T any] struct {
	Meta Meta `json:"meta"`
	Data T    `json:"data"`
}

// Wrap builds a typed envelope for the given event with fresh meta.
func Wrap[T any](em EventMeta, producer string, data T) GenericEnvelope[T] {
	return GenericEnvelope[T]{Meta: NewMeta(em.EventType, producer), Data: data}
}

// Untyped converts the envelope into the form accepted by publishers.
func (e GenericEnvelope[T]) Untyped() Envelope {
	return Envelope{Meta: e.Meta, Data: e.Data}
}

// DecodeEnvelope parses a JSON body and checks the event type when want is set.
func DecodeEnvelope[T any](body []byte, want string) (GenericEnvelope[T], error) {
	var env GenericEnvelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return env, fmt.Errorf("decode envelope: %w", err)
	}
	if want != "" && env.Meta.Type != want {
		return env, fmt.Errorf("unexpected event type %q, want %q", env.Meta.Type, want)
	}
	return env, nil
}
