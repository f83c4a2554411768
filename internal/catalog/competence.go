package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidCompetence is returned when a period identifier cannot be
// normalized to the canonical YYYYMM form.
var ErrInvalidCompetence = errors.New("invalid competence format")

// NormalizeCompetence converts a reporting-period identifier to the
// canonical "YYYYMM" form. The accepted alternate input form "MM/YYYY" is
// rewritten; an already-canonical value passes through unchanged, so the
// function is idempotent. Anything else is rejected with
// ErrInvalidCompetence.
func NormalizeCompetence(competence string) (string, error) {
	c := strings.TrimSpace(competence)

	if slash := strings.Index(c, "/"); slash >= 0 {
		month, year := c[:slash], c[slash+1:]
		if len(month) != 2 || len(year) != 4 {
			return "", fmt.Errorf("%w: %q", ErrInvalidCompetence, competence)
		}
		c = year + month
	}

	if len(c) != 6 {
		return "", fmt.Errorf("%w: %q", ErrInvalidCompetence, competence)
	}
	if _, err := strconv.Atoi(c); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidCompetence, competence)
	}
	month, err := strconv.Atoi(c[4:])
	if err != nil || month < 1 || month > 12 {
		return "", fmt.Errorf("%w: %q (month out of range)", ErrInvalidCompetence, competence)
	}
	return c, nil
}
