// SPDX-License-Identifier: MIT

package person

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks the input contract of a population snapshot:
//
//  1. the population is non-empty;
//  2. every record passes its struct tags (ID set, enums in range, sane age);
//  3. preference lists never contain the owner, duplicates or unknown IDs;
//  4. all non-empty embeddings share one dimension.
//
// All violations are collected; the returned error wraps ErrInvalidPopulation.
// Complexity: O(n + Σ|prefs|).
func Validate(pop *Population) error {
	if pop == nil || pop.Len() == 0 {
		return fmt.Errorf("empty population: %w", ErrInvalidPopulation)
	}

	var problems []string
	dim := -1
	for _, p := range pop.people {
		if err := validate.Struct(p); err != nil {
			problems = append(problems, formatValidationError(p.ID, err)...)
		}
		seen := make(map[ID]struct{}, len(p.Preferences))
		for _, q := range p.Preferences {
			switch {
			case q == p.ID:
				problems = append(problems, fmt.Sprintf("%s: lists itself", p.ID))
			case !pop.Has(q):
				problems = append(problems, fmt.Sprintf("%s: lists unknown id %q", p.ID, q))
			}
			if _, dup := seen[q]; dup {
				problems = append(problems, fmt.Sprintf("%s: lists %q twice", p.ID, q))
			}
			seen[q] = struct{}{}
		}
		if len(p.Embedding) == 0 {
			continue
		}
		if dim < 0 {
			dim = len(p.Embedding)
		} else if len(p.Embedding) != dim {
			problems = append(problems,
				fmt.Sprintf("%s: embedding dimension %d, want %d", p.ID, len(p.Embedding), dim))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s: %w", strings.Join(problems, "; "), ErrInvalidPopulation)
	}

	return nil
}

// formatValidationError turns validator field errors into readable messages.
func formatValidationError(id ID, err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{fmt.Sprintf("%s: %v", id, err)}
	}
	out := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			out = append(out, fmt.Sprintf("%s: %s is required", id, field))
		case "oneof":
			out = append(out, fmt.Sprintf("%s: %s must be one of: %s", id, field, e.Param()))
		case "gte", "lte":
			out = append(out, fmt.Sprintf("%s: %s out of range (%s %s)", id, field, e.Tag(), e.Param()))
		default:
			out = append(out, fmt.Sprintf("%s: %s is invalid", id, field))
		}
	}

	return out
}
