package bom

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
)

// DefaultSubAssemblyTokens is the legacy vocabulary: a material line whose
// item group or material type contains one of these is treated as a
// sub-assembly / finished good and exploded recursively.
var DefaultSubAssemblyTokens = []string{"assembly", "sa", "fg", "finished"}

// Classifier decides whether a material line is a sub-assembly. The token
// allow-list is configurable; deployments that outgrow containment matching
// can install a CEL rule evaluated against the line's categorical fields.
type Classifier struct {
	tokens []string
	prog   cel.Program
}

// NewClassifier creates a token-based classifier. A nil or empty token list
// falls back to DefaultSubAssemblyTokens.
func NewClassifier(tokens []string) *Classifier {
	if len(tokens) == 0 {
		tokens = DefaultSubAssemblyTokens
	}
	lowered := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			lowered = append(lowered, t)
		}
	}
	return &Classifier{tokens: lowered}
}

// WithRule compiles a CEL expression and installs it as the primary
// classification rule. The expression sees three string variables:
// material_type, item_group and material_name, and must evaluate to bool.
//
// Example: item_group.contains('Assembly') || material_type == 'FG'
func (c *Classifier) WithRule(expr string) error {
	env, err := cel.NewEnv(
		cel.Variable("material_type", cel.StringType),
		cel.Variable("item_group", cel.StringType),
		cel.Variable("material_name", cel.StringType),
	)
	if err != nil {
		return fmt.Errorf("create cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("compile classification rule: %w", issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return fmt.Errorf("classification rule must return bool, got %v", ast.OutputType())
	}

	prog, err := env.Program(ast)
	if err != nil {
		return fmt.Errorf("build classification program: %w", err)
	}

	c.prog = prog
	return nil
}

// IsSubAssembly reports whether the material line should be exploded
// recursively. A failing CEL evaluation falls back to token matching so a
// bad rule degrades classification instead of blocking a requirement report.
func (c *Classifier) IsSubAssembly(m MaterialLine) bool {
	if c.prog != nil {
		out, _, err := c.prog.Eval(map[string]any{
			"material_type": m.MaterialType,
			"item_group":    m.ItemGroup,
			"material_name": m.Name,
		})
		if err == nil {
			if b, ok := out.Value().(bool); ok {
				return b
			}
		}
	}

	group := strings.ToLower(m.ItemGroup)
	mtype := strings.ToLower(m.MaterialType)
	for _, token := range c.tokens {
		if strings.Contains(group, token) || strings.Contains(mtype, token) {
			return true
		}
	}
	return false
}
