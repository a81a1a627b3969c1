package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// StringArg returns args[key] trimmed, or "" when missing or not a string.
func StringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

// RequiredString returns args[key] or an error naming the missing argument.
func RequiredString(args map[string]interface{}, key string) (string, error) {
	s := StringArg(args, key)
	if s == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return s, nil
}

// BoolArg accepts a JSON boolean or the strings "true" and "false".
func BoolArg(args map[string]interface{}, key string) bool {
	switch v := args[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	default:
		return false
	}
}

// IntArg accepts a JSON number or a numeric string. Missing values yield def.
func IntArg(args map[string]interface{}, key string, def int) (int, error) {
	switch v := args[key].(type) {
	case nil:
		return def, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s must be an integer, got %v", key, v)
		}
		return int(v), nil
	case int:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return def, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be an integer, got %T", key, v)
	}
}
