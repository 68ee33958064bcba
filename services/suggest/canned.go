package suggest

import (
	"context"
	"strings"

	"github.com/trezcool/tuition/core"
)

// CannedSuggester answers from fixed rules. Used when no Gemini key is configured.
type CannedSuggester struct{}

var _ core.Suggester = CannedSuggester{}

var rules = []struct {
	keyword    string
	suggestion string
}{
	{"overdue", "Follow up with the guardians of students whose payments are overdue."},
	{"pending", "Send this month's invoices to guardians with pending payments."},
	{"first-time", "Welcome first-time students and check the registration fee is on their invoice."},
	{"transport", "Review transport routes and rates for the students using transport."},
	{"registered", "Assign teachers to the newly registered students' subjects."},
}

func (CannedSuggester) Suggest(_ context.Context, recentUsage, dataPatterns string) ([]string, error) {
	text := strings.ToLower(recentUsage + " " + dataPatterns)
	var out []string
	for _, r := range rules {
		if strings.Contains(text, r.keyword) {
			out = append(out, r.suggestion)
		}
	}
	if len(out) == 0 {
		out = append(out, "Review the price table before the next invoicing cycle.")
	}
	return out, nil
}
