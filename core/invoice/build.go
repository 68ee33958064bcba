package invoice

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/pricing"
	"github.com/trezcool/tuition/core/student"
)

var (
	nowFunc       = time.Now // mockable
	newNumberFunc = newNumber
)

// newNumber returns "INV-" followed by the first block of a random uuid.
func newNumber() string {
	id := uuid.NewString()
	return "INV-" + id[:8]
}

// MonthLabel resolves the billed month: the current month name, or the first word of label ("October 2024").
func MonthLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" || strings.EqualFold(label, MonthCurrent) {
		return nowFunc().Month().String()
	}
	return strings.Fields(label)[0]
}

// TransportNote is the transport code & rate printed next to a student using transport.
func TransportNote(s student.Student, table pricing.Table, currency string) string {
	if !s.UsesTransport() {
		return ""
	}
	if s.TransportArea == student.AreaInside {
		return fmt.Sprintf("T(I): %s%.2f", currency, table.TransportInbound)
	}
	return fmt.Sprintf("T(O): %s%.2f", currency, table.TransportOutbound)
}

// NewLine prices one student.
func NewLine(s student.Student, table pricing.Table, currency string) Line {
	fee := pricing.Resolve(s, table)
	return Line{
		StudentID: s.ID,
		Student:   s.Name,
		Subjects:  s.Subjects,
		Note:      TransportNote(s, table, currency),
		Qty:       fee.Subjects,
		Level:     s.Level,
		LevelCode: pricing.LevelCode(s.Level),
		Tuition:   fee.Tuition,
		Transport: fee.Transport,
		Amount:    fee.Total,
	}
}

// Build prices the children of guardian into an invoice.
func Build(guardian student.Guardian, table pricing.Table, opts Options, currency string) Invoice {
	inv := Invoice{
		Number:       newNumberFunc(),
		Date:         nowFunc(),
		Month:        MonthLabel(opts.Month),
		Guardian:     guardian.Name,
		Contact:      guardian.Contact,
		Address:      []string{},
		Currency:     currency,
		Lines:        make([]Line, 0, len(guardian.Children)),
		FlexibleFees: opts.FlexibleFees,
		Notes:        DefaultNotes,
		Discount:     opts.Discount,
		PriceVersion: table.Version,
	}
	if inv.FlexibleFees == nil {
		inv.FlexibleFees = DefaultFlexibleFees()
	}
	if opts.Notes != nil {
		inv.Notes = *opts.Notes
	}
	if len(guardian.Children) > 0 {
		for _, part := range strings.Split(guardian.Children[0].Address, ",") {
			if part = strings.TrimSpace(part); part != "" {
				inv.Address = append(inv.Address, part)
			}
		}
	}

	for _, s := range guardian.Children {
		line := NewLine(s, table, currency)
		inv.Lines = append(inv.Lines, line)
		inv.Subtotal += line.Amount
	}
	for _, f := range inv.FlexibleFees {
		inv.FlexibleTotal += f.Signed()
	}
	inv.GrandTotal = inv.Subtotal + inv.FlexibleTotal - inv.Discount
	return inv
}

// SummarizeByLevel groups the students' fees per level: registered levels first in display order, then the others.
func SummarizeByLevel(students []student.Student, table pricing.Table, currency string) LevelSummary {
	byLevel := make(map[string]*LevelGroup)
	for _, s := range students {
		g, ok := byLevel[s.Level]
		if !ok {
			g = &LevelGroup{Level: s.Level, Lines: []Line{}}
			byLevel[s.Level] = g
		}
		line := NewLine(s, table, currency)
		g.Lines = append(g.Lines, line)
		g.GrandTotal += line.Amount
	}

	summary := LevelSummary{Groups: make([]LevelGroup, 0, len(byLevel)), PriceVersion: table.Version}
	for _, lvl := range levelOrder(byLevel) {
		g := byLevel[lvl]
		summary.Groups = append(summary.Groups, *g)
		summary.GrandTotal += g.GrandTotal
	}
	return summary
}

func levelOrder(groups map[string]*LevelGroup) []string {
	order := make([]string, 0, len(groups))
	for _, lvl := range student.Levels {
		if _, ok := groups[lvl]; ok {
			order = append(order, lvl)
		}
	}
	var extra []string
	for lvl := range groups {
		if !student.IsLevel(lvl) {
			extra = append(extra, lvl)
		}
	}
	sort.Strings(extra)
	return append(order, extra...)
}

// NewOverview computes the dashboard figures.
func NewOverview(students []student.Student, totalTeachers int, table pricing.Table) Overview {
	ov := Overview{
		TotalStudents: len(students),
		TotalTeachers: totalTeachers,
		ByLevel:       make(map[string]int),
		ByStatus:      make(map[string]int),
	}
	for _, s := range students {
		if isPending(s) {
			ov.PendingPayments++
		}
		if s.UsesTransport() {
			ov.Transport++
		}
		if s.FirstTime == core.Yes {
			ov.FirstTime++
		}
		ov.ByLevel[s.Level]++
		ov.ByStatus[s.PaymentStatus]++
		ov.MonthlyRevenue += pricing.Resolve(s, table).Total
	}
	return ov
}

// Patterns summarizes the records in a sentence, for the suggestion service.
func (ov Overview) Patterns() string {
	levels := make([]string, 0, len(ov.ByLevel))
	for lvl, n := range ov.ByLevel {
		levels = append(levels, fmt.Sprintf("%s: %d", lvl, n))
	}
	sort.Strings(levels)
	return fmt.Sprintf(
		"%d students and %d teachers. %d payments pending or overdue. %d students use transport, %d are first-time registrations. Students per level: %s.",
		ov.TotalStudents, ov.TotalTeachers, ov.PendingPayments, ov.Transport, ov.FirstTime, strings.Join(levels, ", "),
	)
}
