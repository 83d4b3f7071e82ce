// Package validate evaluates declarative field rules against submitted
// form values. It is stateless: a Rules value can be shared and reused
// across requests.
package validate

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Rule checks one field value and returns a human-readable message, or
// "" when the value is acceptable.
type Rule func(field, value string) string

// Rules maps a field name to the rules it must satisfy.
type Rules map[string][]Rule

// Errors maps a field name to the messages produced for it. An empty
// Errors means the input was accepted.
type Errors map[string][]string

// Validate runs every rule against the submitted form and collects the
// failures per field.
func (r Rules) Validate(form url.Values) Errors {
	errs := Errors{}
	for field, rules := range r {
		value := form.Get(field)
		for _, rule := range rules {
			if msg := rule(field, value); msg != "" {
				errs[field] = append(errs[field], msg)
			}
		}
	}
	return errs
}

func (e Errors) Valid() bool {
	return len(e) == 0
}

// First returns the first message for a field, for templates that show
// a single message per input.
func (e Errors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Required fails on empty or whitespace-only values.
func Required() Rule {
	return func(field, value string) string {
		if strings.TrimSpace(value) == "" {
			return fmt.Sprintf("%s is required", field)
		}
		return ""
	}
}

// MaxLength fails when the value is longer than n characters.
func MaxLength(n int) Rule {
	return func(field, value string) string {
		if utf8.RuneCountInString(value) > n {
			return fmt.Sprintf("%s must be at most %d characters", field, n)
		}
		return ""
	}
}
