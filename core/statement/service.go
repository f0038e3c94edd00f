package statement

import (
	"context"
	"errors"
	"fmt"

	"github.com/aredu/arcportal/core"
	"github.com/aredu/arcportal/core/user"
)

// ErrGenerationFailed is the only error callers see from a model failure;
// provider detail stays in the logs.
var ErrGenerationFailed = errors.New("statement generation failed, please try again")

type (
	Repository interface {
		CreateStatement(ctx context.Context, s Statement) (Statement, error)
		// QueryStatementsByAuthor returns drafts produced by uid, newest first.
		QueryStatementsByAuthor(ctx context.Context, uid string) ([]Statement, error)
	}

	// Generator produces draft prose from a prompt.
	Generator interface {
		GenerateText(ctx context.Context, prompt string) (string, error)
	}

	Service struct {
		repo   Repository
		gen    Generator
		logger core.Logger
	}
)

func NewService(repo Repository, gen Generator, logger core.Logger) *Service {
	return &Service{repo: repo, gen: gen, logger: logger}
}

// Generate produces a statement-of-purpose draft and persists it under the
// requesting staff member's history.
func (svc *Service) Generate(ctx context.Context, actor user.User, req GenerateRequest) (Statement, error) {
	req.StudentName = core.CleanString(req.StudentName)
	req.Course = core.CleanString(req.Course)
	req.University = core.CleanString(req.University)
	req.Country = core.CleanString(req.Country)
	if err := core.Validate.Struct(req); err != nil {
		return Statement{}, err
	}
	if req.University == "" {
		req.University = "university"
	}
	if req.Country == "" {
		req.Country = "abroad"
	}

	content, err := svc.gen.GenerateText(ctx, buildPrompt(req))
	if err != nil {
		svc.logger.Error("statement: generation failed", err)
		return Statement{}, ErrGenerationFailed
	}

	s := Statement{
		StudentName: req.StudentName,
		Course:      req.Course,
		University:  req.University,
		Country:     req.Country,
		Content:     content,
		GeneratedBy: actor.UID,
		Timestamp:   core.Now(),
	}
	return svc.repo.CreateStatement(ctx, s)
}

// History returns the actor's past drafts, newest first.
func (svc *Service) History(ctx context.Context, actor user.User) ([]Statement, error) {
	return svc.repo.QueryStatementsByAuthor(ctx, actor.UID)
}

func buildPrompt(req GenerateRequest) string {
	prompt := fmt.Sprintf(
		"Write a compelling statement of purpose for %s applying to study %s at %s in %s.",
		req.StudentName, req.Course, req.University, req.Country,
	)
	if req.Background != "" {
		prompt += fmt.Sprintf(" Background: %s.", req.Background)
	}
	prompt += " Keep it professional, personal and around 500 words."
	return prompt
}
