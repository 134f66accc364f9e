package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// DotEnvParser parses KEY=VALUE files. Comment lines start with '#'.
type DotEnvParser struct{}

// NewDotEnvParser creates a new dotenv parser
func NewDotEnvParser() *DotEnvParser {
	return &DotEnvParser{}
}

// Parse reads assignments from r
func (p *DotEnvParser) Parse(r io.Reader) (map[string]string, error) {
	values := make(map[string]string)

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, value, err := p.parseKeyValue(line, lineNum)
		if err != nil {
			return nil, err
		}
		values[key] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}
	return values, nil
}

// parseKeyValue parses a KEY=VALUE line
func (p *DotEnvParser) parseKeyValue(line string, lineNum int) (string, string, error) {
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("line %d: invalid format, expected KEY=VALUE", lineNum)
	}

	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])

	// Remove surrounding quotes if present
	if len(value) >= 2 {
		if (strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"")) ||
			(strings.HasPrefix(value, "'") && strings.HasSuffix(value, "'")) {
			value = value[1 : len(value)-1]
		}
	}

	if key == "" {
		return "", "", fmt.Errorf("line %d: empty variable name", lineNum)
	}

	return key, value, nil
}
