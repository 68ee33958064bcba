// Package sheetrepos implements the record repositories over a spreadsheet.Store.
package sheetrepos

import (
	"github.com/trezcool/tuition/core/pricing"
	"github.com/trezcool/tuition/storage/spreadsheet"
)

// Sheet names
const (
	StudentsSheet = "Students"
	TeachersSheet = "Teachers"
	PricesSheet   = "Prices"
)

const keyColumn = "id"

var (
	StudentsSchema = spreadsheet.Schema{
		Sheet: StudentsSheet,
		Header: []string{
			"id", "name", "level", "subjects", "guardian", "guardianContact", "address",
			"transport", "transportArea", "paymentStatus", "firstTime",
		},
	}
	TeachersSchema = spreadsheet.Schema{
		Sheet:  TeachersSheet,
		Header: []string{"id", "name", "subject", "contact"},
	}
	PricesSchema = spreadsheet.Schema{
		Sheet:  PricesSheet,
		Header: pricing.Header(),
	}
)

// Schemas lists every sheet of the workbook.
func Schemas() []spreadsheet.Schema {
	return []spreadsheet.Schema{StudentsSchema, TeachersSchema, PricesSchema}
}
