package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/xavierca1/crm-sync/internal/entity"
)

// stepFunc reports false when C4C rejected the call. An error aborts the
// chain and is handed back to the caller untouched.
type stepFunc func(ctx context.Context) (bool, error)

type step struct {
	name   string
	onFail entity.InspectionCategory
	fn     stepFunc
}

// Chain runs dependent C4C calls in order, stopping at the first rejected
// step. Nothing is compensated: every step that ran stays in C4C.
type Chain struct {
	steps []step
	log   zerolog.Logger
}

func NewChain(log zerolog.Logger) *Chain {
	return &Chain{log: log}
}

func (c *Chain) AddStep(name string, onFail entity.InspectionCategory, fn stepFunc) *Chain {
	c.steps = append(c.steps, step{name: name, onFail: onFail, fn: fn})
	return c
}

// Execute returns the category of the step that was rejected, or "" when
// every step succeeded.
func (c *Chain) Execute(ctx context.Context) (entity.InspectionCategory, error) {
	for i, s := range c.steps {
		ok, err := s.fn(ctx)
		if err != nil {
			return "", err
		}
		if !ok {
			c.log.Warn().
				Str("step", s.name).
				Int("completed", i).
				Str("category", string(s.onFail)).
				Msg("[SYNC] step rejected, chain stopped")
			return s.onFail, nil
		}
	}
	return "", nil
}
