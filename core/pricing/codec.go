package pricing

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/trezcool/tuition/core/student"
)

// Wide matrix layout of the Prices sheet: levels are columns, subject-count tiers are rows.
// Transport rates are pinned to the first data row.
const (
	ColTier              = "qtySubjects"
	ColTransportInbound  = "TI"
	ColTransportOutbound = "TO"
)

// Legacy two-column layout, one synthetic key per (level, tier) pair.
const (
	LegacyColItem      = "item"
	LegacyColPrice     = "price"
	legacyItemInbound  = "transportInbound"
	legacyItemOutbound = "transportOutbound"
)

var levelCodeRe = regexp.MustCompile(`^([PS])(\d+)$`)

// Header returns the canonical header of the Prices sheet.
func Header() []string {
	h := []string{ColTier}
	for _, lvl := range student.Levels {
		h = append(h, LevelCode(lvl))
	}
	return append(h, ColTransportInbound, ColTransportOutbound)
}

// LegacyHeader returns the header of the legacy Prices sheet.
func LegacyHeader() []string {
	return []string{LegacyColItem, LegacyColPrice}
}

// LevelCode maps "Primary 4" to "P4" and "Secondary 1" to "S1". Other names are used verbatim.
func LevelCode(level string) string {
	fields := strings.Fields(level)
	if len(fields) == 2 {
		if _, err := strconv.Atoi(fields[1]); err == nil {
			switch fields[0] {
			case "Primary":
				return "P" + fields[1]
			case "Secondary":
				return "S" + fields[1]
			}
		}
	}
	return level
}

// LevelFromCode is the inverse of LevelCode.
func LevelFromCode(code string) string {
	m := levelCodeRe.FindStringSubmatch(code)
	if m == nil {
		return code
	}
	if m[1] == "P" {
		return "Primary " + m[2]
	}
	return "Secondary " + m[2]
}

func parseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// DecodeWide reads a wide matrix grid, header row included.
// Blank or unparsable cells are left unpriced. ok is false when the grid holds no data row.
func DecodeWide(grid [][]string) (table Table, ok bool) {
	table.Levels = make(map[string]map[string]float64)
	if len(grid) < 2 {
		return table, false
	}

	header := grid[0]
	tierCol, inCol, outCol := -1, -1, -1
	for j, h := range header {
		switch strings.TrimSpace(h) {
		case ColTier:
			tierCol = j
		case ColTransportInbound:
			inCol = j
		case ColTransportOutbound:
			outCol = j
		}
	}
	if tierCol < 0 {
		tierCol = 0
	}

	first := grid[1]
	table.TransportInbound, _ = parseAmount(cell(first, inCol))
	table.TransportOutbound, _ = parseAmount(cell(first, outCol))

	for j, h := range header {
		h = strings.TrimSpace(h)
		if j == tierCol || j == inCol || j == outCol || h == "" {
			continue
		}
		level := LevelFromCode(h)
		for _, row := range grid[1:] {
			tier := strings.TrimSpace(cell(row, tierCol))
			if tier == "" {
				continue
			}
			if price, ok := parseAmount(cell(row, j)); ok {
				table.Set(level, tier, price)
			}
		}
	}
	return table, true
}

// ApplyWide writes table into grid and returns the new grid.
// Columns for unseen levels are inserted before the transport columns and rows for unseen tiers are appended,
// so existing cells keep their position. Cells the table does not price are blanked.
func ApplyWide(grid [][]string, table Table) [][]string {
	out := make([][]string, 0, len(grid)+1)
	for _, row := range grid {
		out = append(out, append([]string(nil), row...))
	}
	if len(out) == 0 || indexOf(out[0], ColTier) < 0 {
		out = [][]string{Header()}
	}

	header := out[0]
	if indexOf(header, ColTransportInbound) < 0 {
		header = append(header, ColTransportInbound)
	}
	if indexOf(header, ColTransportOutbound) < 0 {
		header = append(header, ColTransportOutbound)
	}
	out[0] = header

	for _, level := range table.LevelNames() {
		code := LevelCode(level)
		if indexOf(out[0], code) >= 0 {
			continue
		}
		at, width := indexOf(out[0], ColTransportInbound), len(out[0])
		for i := range out {
			out[i] = padRow(out[i], width)
			v := ""
			if i == 0 {
				v = code
			}
			out[i] = insertAt(out[i], at, v)
		}
	}

	header = out[0]
	tierCol := indexOf(header, ColTier)
	rowOf := make(map[string]int)
	for i := 1; i < len(out); i++ {
		out[i] = padRow(out[i], len(header))
		if tier := strings.TrimSpace(out[i][tierCol]); tier != "" {
			if _, ok := rowOf[tier]; !ok {
				rowOf[tier] = i
			}
		}
	}
	for _, tier := range table.Tiers() {
		if _, ok := rowOf[tier]; ok {
			continue
		}
		row := make([]string, len(header))
		row[tierCol] = tier
		out = append(out, row)
		rowOf[tier] = len(out) - 1
	}
	if len(out) == 1 {
		out = append(out, make([]string, len(header)))
	}

	inCol, outCol := indexOf(header, ColTransportInbound), indexOf(header, ColTransportOutbound)
	for i := 1; i < len(out); i++ {
		tier := strings.TrimSpace(out[i][tierCol])
		for j, h := range header {
			switch j {
			case tierCol:
				continue
			case inCol, outCol:
				out[i][j] = ""
				continue
			}
			out[i][j] = ""
			if tier == "" || rowOf[tier] != i {
				continue
			}
			if price, ok := table.Price(LevelFromCode(h), tier); ok {
				out[i][j] = formatAmount(price)
			}
		}
	}
	out[1][inCol] = formatAmount(table.TransportInbound)
	out[1][outCol] = formatAmount(table.TransportOutbound)
	return out
}

func indexOf(row []string, s string) int {
	for i, v := range row {
		if strings.TrimSpace(v) == s {
			return i
		}
	}
	return -1
}

func padRow(row []string, n int) []string {
	for len(row) < n {
		row = append(row, "")
	}
	return row
}

func insertAt(row []string, i int, v string) []string {
	row = append(row, "")
	copy(row[i+1:], row[i:])
	row[i] = v
	return row
}

// DecodeLegacy reads an item,price grid, header row included.
// Items are "transportInbound", "transportOutbound" or "<level>_<n>_<tier>" such as "primary_4_3".
func DecodeLegacy(grid [][]string) (table Table, ok bool) {
	table.Levels = make(map[string]map[string]float64)
	if len(grid) < 2 {
		return table, false
	}
	for _, row := range grid[1:] {
		item := strings.TrimSpace(cell(row, 0))
		price, valid := parseAmount(cell(row, 1))
		if item == "" || !valid {
			continue
		}
		switch item {
		case legacyItemInbound:
			table.TransportInbound = price
			continue
		case legacyItemOutbound:
			table.TransportOutbound = price
			continue
		}
		parts := strings.Split(item, "_")
		if len(parts) < 3 {
			continue
		}
		level := capitalize(parts[0]) + " " + strings.Join(parts[1:len(parts)-1], "_")
		table.Set(level, parts[len(parts)-1], price)
	}
	return table, true
}

// EncodeLegacy renders table as an item,price grid, header row included.
func EncodeLegacy(table Table) [][]string {
	grid := [][]string{LegacyHeader()}
	for _, level := range table.LevelNames() {
		fields := strings.Fields(level)
		if len(fields) < 2 {
			continue
		}
		prefix := strings.ToLower(fields[0]) + "_" + strings.Join(fields[1:], " ") + "_"
		tiers := make([]string, 0, len(table.Levels[level]))
		for tier := range table.Levels[level] {
			tiers = append(tiers, tier)
		}
		sortTiers(tiers)
		for _, tier := range tiers {
			grid = append(grid, []string{prefix + tier, formatAmount(table.Levels[level][tier])})
		}
	}
	return append(grid,
		[]string{legacyItemInbound, formatAmount(table.TransportInbound)},
		[]string{legacyItemOutbound, formatAmount(table.TransportOutbound)},
	)
}

// IsLegacy reports whether grid uses the item,price layout.
func IsLegacy(grid [][]string) bool {
	return len(grid) > 0 && indexOf(grid[0], LegacyColItem) == 0 && indexOf(grid[0], ColTier) < 0
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// Fingerprint is a content version of table: two tables with the same prices share it.
func Fingerprint(table Table) string {
	h := fnv.New64a()
	levels := make([]string, 0, len(table.Levels))
	for lvl := range table.Levels {
		levels = append(levels, lvl)
	}
	sort.Strings(levels)
	for _, lvl := range levels {
		tiers := make([]string, 0, len(table.Levels[lvl]))
		for tier := range table.Levels[lvl] {
			tiers = append(tiers, tier)
		}
		sort.Strings(tiers)
		for _, tier := range tiers {
			fmt.Fprintf(h, "%s\x00%s\x00%s\n", lvl, tier, formatAmount(table.Levels[lvl][tier]))
		}
	}
	fmt.Fprintf(h, "TI\x00%s\nTO\x00%s\n", formatAmount(table.TransportInbound), formatAmount(table.TransportOutbound))
	return strconv.FormatUint(h.Sum64(), 16)
}
