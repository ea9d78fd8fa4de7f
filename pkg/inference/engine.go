// Package inference derives new relationships from existing ones by
// applying transitivity rules over the graph: when a rule's relationship
// type chains a->b->c without a direct a->c edge, the engine creates one.
// Each pass closes chains of length two; applying the rules repeatedly
// closes longer chains.
package inference

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/graphein/backend/pkg/logger"
	"github.com/graphein/backend/pkg/model"
	"github.com/graphein/backend/pkg/store"
)

// Rule names a relationship type whose chains are transitive. Confidence
// scales the certainty of every edge the rule derives.
type Rule struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// DefaultRules returns the built-in rule set: being a kind of something and
// being part of something both carry across chains.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "transitive_is_a", Type: "is_a", Confidence: 1.0},
		{Name: "transitive_part_of", Type: "part_of", Confidence: 1.0},
	}
}

// RuleResult reports one rule application.
type RuleResult struct {
	RuleName string `json:"rule_name"`
	Created  int    `json:"inferences_created"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

// Report summarizes a full pass over the rule set.
type Report struct {
	RulesApplied int          `json:"total_rules_applied"`
	TotalCreated int          `json:"total_inferences_created"`
	RuleResults  []RuleResult `json:"rule_results"`
}

// Engine applies inference rules against a graph store. One rule failing
// does not stop the others; failures are reported per rule.
type Engine struct {
	graph store.GraphStore

	mu    sync.Mutex
	rules []Rule
}

// NewEngine creates an engine over graph. Without explicit rules the
// default rule set is loaded.
func NewEngine(graph store.GraphStore, rules ...Rule) *Engine {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Engine{graph: graph, rules: rules}
}

// Rules returns a copy of the current rule set.
func (e *Engine) Rules() []Rule {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// AddRule appends a rule to the set.
func (e *Engine) AddRule(rule Rule) error {
	if rule.Name == "" || rule.Type == "" {
		return fmt.Errorf("inference: rule needs a name and a relationship type")
	}
	if rule.Confidence <= 0 || rule.Confidence > 1 {
		return fmt.Errorf("inference: rule confidence must be in (0, 1]")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = append(e.rules, rule)
	return nil
}

// RemoveRule drops the named rule, reporting whether it existed.
func (e *Engine) RemoveRule(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	kept := e.rules[:0]
	removed := false
	for _, r := range e.rules {
		if r.Name == name {
			removed = true
			continue
		}
		kept = append(kept, r)
	}
	e.rules = kept
	return removed
}

// Apply runs one rule and returns the number of derived edges created.
// The pass is bounded by the store's find page size.
func (e *Engine) Apply(ctx context.Context, rule Rule) (int, error) {
	rels, err := e.graph.FindRelationships(ctx, store.RelationshipQuery{Type: rule.Type})
	if err != nil {
		return 0, fmt.Errorf("inference: load %s edges: %w", rule.Type, err)
	}

	type edge struct {
		certainty float64
	}
	out := make(map[uuid.UUID]map[uuid.UUID]edge)
	for _, r := range rels {
		if out[r.EntitySourceID] == nil {
			out[r.EntitySourceID] = make(map[uuid.UUID]edge)
		}
		out[r.EntitySourceID][r.EntityTargetID] = edge{certainty: r.Certainty}
	}

	created := 0
	for _, ab := range rels {
		if ab.EntitySourceID == ab.EntityTargetID {
			continue
		}
		for c, bc := range out[ab.EntityTargetID] {
			a := ab.EntitySourceID
			if c == a {
				continue
			}
			if _, exists := out[a][c]; exists {
				continue
			}

			derived := model.NewRelationship(rule.Type, a, c)
			derived.Certainty = min(ab.Certainty, bc.certainty) * rule.Confidence
			derived.Properties = map[string]any{
				"inferred": true,
				"rule":     rule.Name,
			}
			derived.ExtractionMethod = "inference"
			if err := e.graph.CreateRelationship(ctx, derived); err != nil {
				return created, fmt.Errorf("inference: persist derived edge: %w", err)
			}

			if out[a] == nil {
				out[a] = make(map[uuid.UUID]edge)
			}
			out[a][c] = edge{certainty: derived.Certainty}
			created++
		}
	}
	return created, nil
}

// ApplyAll runs every rule in the set and reports per-rule outcomes.
func (e *Engine) ApplyAll(ctx context.Context) Report {
	rules := e.Rules()
	report := Report{RulesApplied: len(rules)}

	for _, rule := range rules {
		created, err := e.Apply(ctx, rule)
		result := RuleResult{RuleName: rule.Name, Created: created, Status: "success"}
		if err != nil {
			logger.Error("[Inference] Rule failed", "rule", rule.Name, "err", err)
			result.Status = "error"
			result.Error = err.Error()
		}
		report.TotalCreated += created
		report.RuleResults = append(report.RuleResults, result)
	}
	return report
}
