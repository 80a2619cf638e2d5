package checks

import (
	"fmt"
	"reflect"
	"strings"

	"account-audit/core/database"

	"gorm.io/gorm"
)

// Table statuses.
const (
	StatusOK      = "ok"
	StatusWarning = "warning"
	StatusError   = "error"
)

// TableReport strictly types the result of one table schema check.
type TableReport struct {
	Table          string   `json:"table"`
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	Status         string   `json:"status"`
}

// Matched reports whether every expected column is present.
func (r TableReport) Matched() bool {
	return r.Status != StatusError
}

// CheckTable verifies table against the columns declared by the GORM model.
// A missing table or column is an error. A differing declared type is only a
// warning since sqlite applies type affinity, not strict types.
func CheckTable(db *gorm.DB, model any, table string) (TableReport, error) {
	if db == nil {
		return TableReport{}, fmt.Errorf("database connection is nil")
	}

	val := reflect.TypeOf(model)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return TableReport{}, fmt.Errorf("model %T is not a struct", model)
	}

	report := TableReport{
		Table:          table,
		MissingColumns: []string{},
		TypeMismatches: []string{},
		Status:         StatusOK,
	}

	actualCols, err := database.GetTableColumns(db, table)
	if err != nil {
		return report, err
	}
	if len(actualCols) == 0 {
		report.Status = StatusError
	}

	actualMap := make(map[string]database.ColumnInfo)
	for _, col := range actualCols {
		actualMap[col.Field] = col
	}

	for i := 0; i < val.NumField(); i++ {
		gormTag := val.Field(i).Tag.Get("gorm")

		colName := parseGormColumn(gormTag)
		if colName == "" {
			continue
		}
		// GetTableColumns lower-cases field names
		actCol, exists := actualMap[strings.ToLower(colName)]
		if !exists {
			report.MissingColumns = append(report.MissingColumns, colName)
			report.Status = StatusError
			continue
		}

		expType := strings.ToLower(parseGormType(gormTag))
		if expType != "" && !strings.Contains(actCol.Type, expType) {
			report.TypeMismatches = append(report.TypeMismatches,
				fmt.Sprintf("%s: expected %s, got %s", colName, expType, actCol.Type))
			if report.Status == StatusOK {
				report.Status = StatusWarning
			}
		}
	}

	return report, nil
}

// Helpers to parse simple GORM tags
func parseGormColumn(tag string) string {
	return gormTagValue(tag, "column:")
}

func parseGormType(tag string) string {
	return gormTagValue(tag, "type:")
}

func gormTagValue(tag, key string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, key) {
			return strings.TrimPrefix(p, key)
		}
	}
	return ""
}
