// Package templating renders code templates and templated text against draft configuration.
package templating

import (
	"bytes"
	"strings"
	"text/template"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/n1rna/automate/internal/errs"
)

// Engine renders templates with the text/template engine.
//
// Templates may refer to configuration without the leading dot of text/template, so both
// {{Name}} and {{anelement.Parent.Name}} work; they are rewritten to field references before
// parsing.
type Engine struct {
	funcs template.FuncMap
}

// NewEngine creates an engine with the helper functions available to templates
func NewEngine() *Engine {
	title := cases.Title(language.Und, cases.NoLower)
	return &Engine{
		funcs: template.FuncMap{
			"upper":  strings.ToUpper,
			"lower":  strings.ToLower,
			"title":  title.String,
			"camel":  func(s string) string { return lowerFirst(pascal(s)) },
			"pascal": pascal,
			"snake":  func(s string) string { return joinWords(s, "_") },
			"kebab":  func(s string) string { return joinWords(s, "-") },
			"default": func(def, val interface{}) interface{} {
				if val == nil || val == "" {
					return def
				}
				return val
			},
		},
	}
}

// Transform renders template against data. description names the template in errors.
func (e *Engine) Transform(description, text string, data interface{}) (string, error) {
	tmpl, err := template.New(description).Funcs(e.funcs).Parse(e.normalise(text))
	if err != nil {
		return "", errs.Validation("the template '%s' has a syntax error: %s", description, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errs.Validation("the template '%s' could not be transformed: %s", description, err)
	}
	return buf.String(), nil
}

var keywords = map[string]bool{
	"if": true, "else": true, "end": true, "range": true, "with": true, "define": true,
	"template": true, "block": true, "break": true, "continue": true,
	"and": true, "or": true, "not": true, "eq": true, "ne": true, "lt": true, "le": true,
	"gt": true, "ge": true, "len": true, "index": true, "slice": true, "call": true,
	"print": true, "printf": true, "println": true, "html": true, "js": true, "urlquery": true,
	"true": true, "false": true, "nil": true,
}

// normalise prefixes bare references inside actions with a dot
func (e *Engine) normalise(text string) string {
	var out strings.Builder
	for {
		start := strings.Index(text, "{{")
		if start < 0 {
			out.WriteString(text)
			return out.String()
		}
		end := strings.Index(text[start+2:], "}}")
		if end < 0 {
			out.WriteString(text)
			return out.String()
		}
		end += start + 2
		out.WriteString(text[:start+2])
		out.WriteString(e.normaliseAction(text[start+2 : end]))
		out.WriteString("}}")
		text = text[end+2:]
	}
}

func (e *Engine) normaliseAction(action string) string {
	if strings.HasPrefix(strings.TrimLeft(action, "- "), "/*") {
		return action
	}
	var out strings.Builder
	runes := []rune(action)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case r == '"' || r == '`' || r == '\'':
			j := i + 1
			for j < len(runes) && runes[j] != r {
				if runes[j] == '\\' && r != '`' {
					j++
				}
				j++
			}
			if j < len(runes) {
				j++
			}
			out.WriteString(string(runes[i:j]))
			i = j
		case isIdentStart(r) && (i == 0 || isBoundary(runes[i-1])):
			j := i
			for j < len(runes) && (isIdentPart(runes[j]) || runes[j] == '.') {
				j++
			}
			word := string(runes[i:j])
			first := strings.SplitN(word, ".", 2)[0]
			_, isFunc := e.funcs[first]
			if !keywords[first] && !isFunc {
				out.WriteRune('.')
			}
			out.WriteString(word)
			i = j
		default:
			out.WriteRune(r)
			i++
		}
	}
	return out.String()
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isBoundary(r rune) bool {
	return unicode.IsSpace(r) || r == '(' || r == '|' || r == ',' || r == '='
}

func splitWords(s string) []string {
	var words []string
	var current []rune
	runes := []rune(s)
	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = nil
		}
	}
	for i, r := range runes {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))):
			flush()
			current = append(current, r)
		default:
			current = append(current, r)
		}
	}
	flush()
	return words
}

func pascal(s string) string {
	var out strings.Builder
	for _, word := range splitWords(s) {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		out.WriteString(string(runes))
	}
	return out.String()
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

func joinWords(s, sep string) string {
	words := splitWords(s)
	for i, word := range words {
		words[i] = strings.ToLower(word)
	}
	return strings.Join(words, sep)
}
