package pricing

import (
	"strconv"
	"strings"

	"github.com/trezcool/tuition/core/student"
)

// Fee is the monthly fee of one student.
type Fee struct {
	Subjects  int     `json:"subjects"`
	Tuition   float64 `json:"tuition"`
	Transport float64 `json:"transport"`
	Total     float64 `json:"total"`
}

// SubjectCount counts the non-empty, trimmed entries of a comma separated subjects field.
func SubjectCount(subjects string) int {
	n := 0
	for _, s := range strings.Split(subjects, ",") {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}

// Resolve computes the monthly fee of s against table.
// An unpriced level or subject-count tier costs nothing.
func Resolve(s student.Student, table Table) Fee {
	fee := Fee{Subjects: SubjectCount(s.Subjects)}
	fee.Tuition, _ = table.Price(s.Level, strconv.Itoa(fee.Subjects))
	fee.Transport = TransportFee(s, table)
	fee.Total = fee.Tuition + fee.Transport
	return fee
}

// TransportFee is the inbound rate inside the limit and the outbound rate anywhere else.
func TransportFee(s student.Student, table Table) float64 {
	if !s.UsesTransport() {
		return 0
	}
	if s.TransportArea == student.AreaInside {
		return table.TransportInbound
	}
	return table.TransportOutbound
}
