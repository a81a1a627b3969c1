package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultDelay is the pause between consecutive items of a batch.
const DefaultDelay = 200 * time.Millisecond

// Policy controls pacing of a batch run.
type Policy struct {
	// Delay is waited after each item except the last. Zero disables pacing.
	Delay time.Duration
}

// DefaultPolicy returns a policy with DefaultDelay.
func DefaultPolicy() Policy {
	return Policy{Delay: DefaultDelay}
}

// Func performs the operation for one item.
type Func[T, R any] func(ctx context.Context, item T) (R, error)

// RemoteError is implemented by errors that carry a remote error code,
// such as *feishu.APIError.
type RemoteError interface {
	error
	RemoteCode() int
	RemoteMessage() string
}

// Failure records an item whose operation did not succeed.
type Failure[T any] struct {
	Item T
	// Code is the remote error code, or 0 for local and transport faults.
	Code    int
	Message string
	Err     error
}

// Ledger holds the outcome of a batch. Every processed item appears exactly
// once, either in Successes or in Failures, in input order.
type Ledger[T, R any] struct {
	Successes []R
	Failures  []Failure[T]
}

// Processed returns the number of items that were attempted.
func (l *Ledger[T, R]) Processed() int {
	return len(l.Successes) + len(l.Failures)
}

// Run applies fn to each item sequentially, pausing policy.Delay between
// items. A failing or panicking item is recorded and the batch continues.
// A cancelled context stops the batch before the next item.
func Run[T, R any](ctx context.Context, items []T, fn Func[T, R], policy Policy) *Ledger[T, R] {
	ledger := &Ledger[T, R]{
		Successes: make([]R, 0, len(items)),
		Failures:  []Failure[T]{},
	}

	for i, item := range items {
		res, err := invoke(ctx, item, fn)
		if err != nil {
			ledger.Failures = append(ledger.Failures, newFailure(item, err))
		} else {
			ledger.Successes = append(ledger.Successes, res)
		}

		if i < len(items)-1 && !wait(ctx, policy.Delay) {
			break
		}
	}

	return ledger
}

func invoke[T, R any](ctx context.Context, item T, fn Func[T, R]) (res R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx, item)
}

func newFailure[T any](item T, err error) Failure[T] {
	f := Failure[T]{Item: item, Message: err.Error(), Err: err}
	var remote RemoteError
	if errors.As(err, &remote) {
		f.Code = remote.RemoteCode()
		f.Message = remote.RemoteMessage()
	}
	return f
}

// wait sleeps for d and reports whether the batch may continue.
func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Summary is the serializable view of a ledger.
type Summary struct {
	Total      int              `json:"total"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	Failures   []FailureSummary `json:"failures,omitempty"`
}

// FailureSummary describes one failed item.
type FailureSummary struct {
	Item    string `json:"item"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
}

// Summary builds a Summary, naming failed items with label.
func (l *Ledger[T, R]) Summary(label func(T) string) Summary {
	s := Summary{
		Total:      l.Processed(),
		Successful: len(l.Successes),
		Failed:     len(l.Failures),
	}
	for _, f := range l.Failures {
		s.Failures = append(s.Failures, FailureSummary{Item: label(f.Item), Code: f.Code, Message: f.Message})
	}
	return s
}

// FormatSummary renders s as indented JSON.
func FormatSummary(s Summary) string {
	jsonBytes, _ := json.MarshalIndent(s, "", "  ")
	return string(jsonBytes)
}

// ParseStringOrArray parses a parameter that can be a single string, an array
// of strings, or a string holding a JSON array of strings.
func ParseStringOrArray(param interface{}, paramName string) ([]string, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	switch v := param.(type) {
	case string:
		if v == "" {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		if strings.HasPrefix(v, "[") {
			var arr []interface{}
			if err := json.Unmarshal([]byte(v), &arr); err == nil {
				return ParseStringOrArray(arr, paramName)
			}
		}
		return []string{v}, nil
	case []string:
		if len(v) == 0 {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		items := make([]interface{}, len(v))
		for i, s := range v {
			items[i] = s
		}
		return ParseStringOrArray(items, paramName)
	case []interface{}:
		if len(v) == 0 {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		result := make([]string, 0, len(v))
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", paramName, i)
			}
			if str == "" {
				return nil, fmt.Errorf("%s[%d] cannot be empty", paramName, i)
			}
			result = append(result, str)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
	}
}
