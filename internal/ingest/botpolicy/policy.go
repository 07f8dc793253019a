// Package botpolicy classifies hits as bot traffic with an OPA Rego policy.
package botpolicy

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
)

// Query is the rule every policy must define.
const Query = "data.tracking.bot.is_bot"

//go:embed default.rego
var DefaultPolicy string

// Input is the document the policy is evaluated against.
type Input struct {
	UserAgent string `json:"user_agent"`
	ParserBot bool   `json:"parser_bot"`
	Browser   string `json:"browser"`
	Device    string `json:"device"`
	OS        string `json:"os"`
}

func (in Input) toMap() map[string]interface{} {
	return map[string]interface{}{
		"user_agent": in.UserAgent,
		"parser_bot": in.ParserBot,
		"browser":    in.Browser,
		"device":     in.Device,
		"os":         in.OS,
	}
}

// Evaluator holds a prepared bot policy. Safe for concurrent use.
type Evaluator struct {
	prepared rego.PreparedEvalQuery
	source   string
}

// New compiles source and prepares the is_bot query.
func New(ctx context.Context, source string) (*Evaluator, error) {
	compiler, err := ast.CompileModules(map[string]string{"bot.rego": source})
	if err != nil {
		return nil, fmt.Errorf("compile bot policy: %w", err)
	}
	prepared, err := rego.New(
		rego.Query(Query),
		rego.Compiler(compiler),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare bot policy: %w", err)
	}
	return &Evaluator{prepared: prepared, source: source}, nil
}

// NewDefault returns an evaluator for the embedded default policy.
func NewDefault(ctx context.Context) (*Evaluator, error) {
	return New(ctx, DefaultPolicy)
}

// Load reads a policy from path, or uses the default policy when path is empty.
func Load(ctx context.Context, path string) (*Evaluator, error) {
	if path == "" {
		return NewDefault(ctx)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bot policy: %w", err)
	}
	return New(ctx, string(b))
}

// IsBot evaluates the policy. An undefined result is treated as false.
func (e *Evaluator) IsBot(ctx context.Context, in Input) (bool, error) {
	rs, err := e.prepared.Eval(ctx, rego.EvalInput(in.toMap()))
	if err != nil {
		return false, fmt.Errorf("eval bot policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, nil
	}
	v, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("bot policy returned %T, want bool", rs[0].Expressions[0].Value)
	}
	return v, nil
}

// HealthCheck evaluates the loaded policy against a known browser and a known crawler.
func (e *Evaluator) HealthCheck(ctx context.Context) error {
	if _, err := e.IsBot(ctx, Input{UserAgent: "Mozilla/5.0"}); err != nil {
		return err
	}
	_, err := e.IsBot(ctx, Input{UserAgent: "Googlebot/2.1", ParserBot: true})
	return err
}
