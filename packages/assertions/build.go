package assertions

import (
	"fmt"
	"strings"
)

// Keys accepted by Build, one per matcher config.
const (
	KeyEqualTo     = "equalTo"
	KeyNotNull     = "notNull"
	KeyNull        = "null"
	KeyGreaterThan = "greaterThan"
	KeyLessThan    = "lessThan"
	KeyContains    = "contains"
	KeySize        = "size"
	KeyMatches     = "matches"
	KeySchema      = "schema"
)

var knownKeys = map[string]bool{
	KeyEqualTo:     true,
	KeyNotNull:     true,
	KeyNull:        true,
	KeyGreaterThan: true,
	KeyLessThan:    true,
	KeyContains:    true,
	KeySize:        true,
	KeyMatches:     true,
	KeySchema:      true,
}

// Build turns a one-key config such as {"equalTo": 2} or {"size": 6} into a
// Matcher. Schema paths resolve against baseDir.
func Build(cfg map[string]any, baseDir string) (Matcher, error) {
	keys := sortedKeys(cfg)
	if len(keys) != 1 {
		return nil, fmt.Errorf("matcher needs exactly one of %s, got [%s]", keyList(), strings.Join(keys, ", "))
	}

	key := keys[0]
	value := cfg[key]
	switch key {
	case KeyEqualTo:
		return EqualTo(value), nil
	case KeyNotNull:
		if b, ok := value.(bool); ok && !b {
			return Null(), nil
		}
		return NotNull(), nil
	case KeyNull:
		if b, ok := value.(bool); ok && !b {
			return NotNull(), nil
		}
		return Null(), nil
	case KeyGreaterThan:
		return GreaterThan(value), nil
	case KeyLessThan:
		return LessThan(value), nil
	case KeyContains:
		return Contains(value), nil
	case KeySize:
		n, ok := toFloat64(value)
		if !ok || n != float64(int(n)) || n < 0 {
			return nil, fmt.Errorf("%s: expected a non-negative integer, got %v", key, value)
		}
		return HasSize(int(n)), nil
	case KeyMatches:
		pattern, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%s: expected a pattern string, got %T", key, value)
		}
		m := MatchesRegex(pattern).(*matchesRegex)
		if m.err != nil {
			return nil, fmt.Errorf("%s: %w", key, m.err)
		}
		return m, nil
	case KeySchema:
		schema, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%s: expected a path or inline schema, got %T", key, value)
		}
		m := MatchesSchemaIn(schema, baseDir).(*matchesSchema)
		if m.err != nil {
			return nil, fmt.Errorf("%s: %w", key, m.err)
		}
		return m, nil
	}
	return nil, fmt.Errorf("unknown matcher %q, expected one of %s", key, keyList())
}

func keyList() string {
	keys := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}
	return "[" + strings.Join(sortStrings(keys), ", ") + "]"
}
