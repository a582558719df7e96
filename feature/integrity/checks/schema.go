package checks

import (
	"fmt"
	"sort"

	"integrity-service/core/database"

	"gorm.io/gorm"
)

// SchemaReport is the result of a schema check.
type SchemaReport struct {
	Driver  string                 `json:"driver"`
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	Status         string   `json:"status"` // "ok", "missing_table", "error"
}

// CheckSchema compares the live schema against the expected columns of each table.
func CheckSchema(db *gorm.DB, tables map[string][]string) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &SchemaReport{
		Driver:  db.Dialector.Name(),
		Matched: true,
		Tables:  make(map[string]TableReport, len(tables)),
		Errors:  []string{},
	}

	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		expected := tables[name]
		missing, err := database.MissingColumns(db, name, expected)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", name, err))
			report.Tables[name] = TableReport{MissingColumns: []string{}, Status: "error"}
			report.Matched = false
			continue
		}

		tbl := TableReport{MissingColumns: missing, Status: "ok"}
		switch {
		case len(missing) == len(expected) && len(expected) > 0:
			tbl.Status = "missing_table"
		case len(missing) > 0:
			tbl.Status = "error"
		}
		if tbl.Status != "ok" {
			report.Matched = false
		}
		report.Tables[name] = tbl
	}

	return report, nil
}
