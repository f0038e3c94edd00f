package dummytext

import (
	"context"
	"errors"
	"sync"

	"github.com/aredu/arcportal/core/statement"
)

// Service is a canned generator for development and tests. Prime Err to make
// the next call fail.
type Service struct {
	mu      sync.Mutex
	Output  string
	Err     error
	Prompts []string // every prompt received, in order
}

var _ statement.Generator = (*Service)(nil)

var ErrPrimed = errors.New("generator primed to fail")

func NewService(output string) *Service {
	return &Service{Output: output}
}

func (svc *Service) GenerateText(ctx context.Context, prompt string) (string, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	svc.Prompts = append(svc.Prompts, prompt)
	if svc.Err != nil {
		return "", svc.Err
	}
	return svc.Output, nil
}
