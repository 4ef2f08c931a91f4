package decision

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"remitguard/internal/decision/metrics"
)

// defaultRuleTimeout bounds a single rule, including its list lookups.
const defaultRuleTimeout = 2 * time.Second

// Engine runs an ordered rule chain and aggregates the results. Rules run
// sequentially so reason order is reproducible for audit review.
type Engine struct {
	rules       []Rule
	ruleTimeout time.Duration
	metrics     *metrics.Metrics
	tracer      trace.Tracer
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRuleTimeout overrides the per-rule deadline.
func WithRuleTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.ruleTimeout = d
		}
	}
}

// WithEngineMetrics records per-rule latency and outcomes.
func WithEngineMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine builds an engine over rules in the given order. The rule list is
// configuration; callers may pass DefaultRules or their own chain.
func NewEngine(rules []Rule, opts ...EngineOption) *Engine {
	e := &Engine{
		rules:       append([]Rule(nil), rules...),
		ruleTimeout: defaultRuleTimeout,
		tracer:      otel.Tracer("remitguard/internal/decision"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs every rule against input, in order, and aggregates the results.
// A BLOCK from an early rule does not stop later rules. A rule error aborts the
// evaluation and no decision is produced.
func (e *Engine) Evaluate(ctx context.Context, input PrecheckInput) (Decision, []RuleResult, error) {
	ctx, span := e.tracer.Start(ctx, "decision.Evaluate")
	defer span.End()

	results := make([]RuleResult, 0, len(e.rules))
	for _, rule := range e.rules {
		result, err := e.runRule(ctx, rule, input)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "rule failed")
			return Decision{}, nil, fmt.Errorf("rule %s: %w", rule.Name(), err)
		}
		results = append(results, result)
	}

	decision := Aggregate(results)
	span.SetAttributes(attribute.String("decision.status", string(decision.Status)))
	return decision, results, nil
}

func (e *Engine) runRule(ctx context.Context, rule Rule, input PrecheckInput) (RuleResult, error) {
	ctx, span := e.tracer.Start(ctx, "rule."+rule.Name())
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, e.ruleTimeout)
	defer cancel()

	start := time.Now()
	result, err := rule.Evaluate(ctx, input)
	if err != nil {
		span.RecordError(err)
		return RuleResult{}, err
	}
	if result.RuleName == "" {
		result.RuleName = rule.Name()
	}
	if !result.Outcome.IsValid() {
		return RuleResult{}, fmt.Errorf("invalid outcome %q", result.Outcome)
	}

	span.SetAttributes(attribute.String("rule.outcome", string(result.Outcome)))
	e.metrics.ObserveRule(result.RuleName, string(result.Outcome), time.Since(start))
	return result, nil
}

// Aggregate folds rule results into one decision. BLOCK is sticky, REVIEW
// applies only when not already blocked, and reasons keep evaluation order.
func Aggregate(results []RuleResult) Decision {
	decision := Decision{Status: StatusAllow, Reasons: []string{}}
	for _, r := range results {
		if r.Reason != "" {
			decision.Reasons = append(decision.Reasons, r.Reason)
		}
		switch r.Outcome {
		case StatusBlock:
			decision.Status = StatusBlock
		case StatusReview:
			if decision.Status != StatusBlock {
				decision.Status = StatusReview
			}
		}
	}
	return decision
}
