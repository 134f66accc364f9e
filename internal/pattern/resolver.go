package pattern

import (
	"regexp"
	"strings"

	"github.com/n1rna/automate/internal/errs"
)

// expressionPattern matches {name(.name)*}; segments may be names or generated ids
var expressionPattern = regexp.MustCompile(`^\{[\w\-]+(\.[\w\-]+)*\}$`)

// ParseExpression validates a path expression and splits it into segments
func ParseExpression(expression string) ([]string, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, errs.Validation("the path expression is empty")
	}
	if !expressionPattern.MatchString(expression) {
		return nil, errs.Validation("the path expression '%s' is not valid, use the form {name.name}", expression)
	}
	return strings.Split(strings.Trim(expression, "{}"), "."), nil
}

// ResolveElement resolves a schema path expression like {pattern.element.child}.
// A path that does not exist yields nil without an error.
func ResolveElement(p *PatternDefinition, expression string) (*Element, error) {
	segments, err := ParseExpression(expression)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(segments[0], p.Name) {
		return nil, nil
	}

	current := p.Root()
	for _, segment := range segments[1:] {
		current = current.FindElement(segment)
		if current == nil {
			return nil, nil
		}
	}
	return current, nil
}
