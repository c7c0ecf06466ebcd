// Package dataset reads training data in the canonical CSV schema. Column
// headers go through alias resolution, so legacy exports (the misspelled
// hours column, "sales" for department) load without preprocessing. Rows
// fail individually and are counted, never silently dropped from totals.
package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/attrio/turnover/internal/domain/feature"
	"github.com/attrio/turnover/internal/domain/model"
	"github.com/attrio/turnover/pkg/metrics"
)

// Ingestion failure reasons, the keys of IngestReport.FailuresByReason.
const (
	ReasonFieldCount = "field_count"
	ReasonBadNumber  = "bad_number"
	ReasonBadBool    = "bad_bool"
	ReasonMissing    = "missing_value"
)

// IngestReport accounts for every row of an ingestion run.
type IngestReport struct {
	Loaded           int            `json:"loaded"`
	Failed           int            `json:"failed"`
	FailuresByReason map[string]int `json:"failures_by_reason,omitempty"`
}

// columns required beyond the feature set when loading labeled data.
var requiredColumns = append(feature.Names(), feature.ColLeft)

// LoadCSV reads labeled training records from r. The header is resolved
// through the alias table; unresolved columns are dropped. A malformed row
// fails on its own and is counted in the report; the rest of the file
// still loads.
func LoadCSV(ctx context.Context, r io.Reader) ([]model.TrainingRecord, *IngestReport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}

	index, err := resolveHeader(header)
	if err != nil {
		return nil, nil, err
	}

	report := &IngestReport{FailuresByReason: make(map[string]int)}
	var records []model.TrainingRecord

	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			report.fail(ReasonFieldCount)
			continue
		}
		if len(row) != len(header) {
			report.fail(ReasonFieldCount)
			continue
		}

		record, reason := parseRow(row, index)
		if reason != "" {
			report.fail(reason)
			continue
		}

		records = append(records, record)
		report.Loaded++
		metrics.RecordIngestRow("loaded")
	}

	if report.Loaded == 0 {
		return nil, report, ErrEmptyDataset
	}
	return records, report, nil
}

func (r *IngestReport) fail(reason string) {
	r.Failed++
	r.FailuresByReason[reason]++
	metrics.RecordIngestRow("failed")
}

// resolveHeader maps canonical column names to their positions. When a
// column appears under two names the first occurrence wins.
func resolveHeader(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		canonical, ok := feature.ResolveAlias(name)
		if !ok {
			continue
		}
		if _, seen := index[canonical]; !seen {
			index[canonical] = i
		}
	}

	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	return index, nil
}

// parseRow converts one CSV row. An empty reason means success.
func parseRow(row []string, index map[string]int) (model.TrainingRecord, string) {
	var rec model.TrainingRecord

	// Bounded floats may be blank; the preparer imputes them later.
	sat, reason := parseOptionalFloat(row[index[feature.ColSatisfaction]])
	if reason != "" {
		return rec, reason
	}
	eval, reason := parseOptionalFloat(row[index[feature.ColEvaluation]])
	if reason != "" {
		return rec, reason
	}

	projects, reason := parseInt(row[index[feature.ColProjects]])
	if reason != "" {
		return rec, reason
	}
	hours, reason := parseInt(row[index[feature.ColHours]])
	if reason != "" {
		return rec, reason
	}
	tenure, reason := parseInt(row[index[feature.ColTenure]])
	if reason != "" {
		return rec, reason
	}

	accident, reason := parseBool(row[index[feature.ColAccident]])
	if reason != "" {
		return rec, reason
	}
	promotion, reason := parseBool(row[index[feature.ColPromotion]])
	if reason != "" {
		return rec, reason
	}
	left, reason := parseBool(row[index[feature.ColLeft]])
	if reason != "" {
		return rec, reason
	}

	salary := strings.TrimSpace(row[index[feature.ColSalary]])
	department := strings.TrimSpace(row[index[feature.ColDepartment]])
	if salary == "" || department == "" {
		return rec, ReasonMissing
	}

	rec = model.TrainingRecord{
		PerformanceRecord: model.PerformanceRecord{
			SatisfactionLevel:   sat,
			LastEvaluation:      eval,
			NumberProject:       projects,
			AverageMonthlyHours: hours,
			TimeSpendCompany:    tenure,
			WorkAccident:        accident,
			PromotionLast5Years: promotion,
			SalaryTier:          model.SalaryTier(salary),
			Department:          department,
		},
		Left: left,
	}
	return rec, ""
}

// parseOptionalFloat treats blank and NA markers as a gap (NaN).
func parseOptionalFloat(s string) (float64, string) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "na", "nan", "null":
		return math.NaN(), ""
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ReasonBadNumber
	}
	return v, ""
}

func parseInt(s string) (int, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ReasonMissing
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		// Some exports write integer columns as floats.
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, ReasonBadNumber
		}
		return int(f), ""
	}
	return v, ""
}

func parseBool(s string) (bool, string) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return false, ReasonMissing
	case "1", "true", "yes", "y":
		return true, ""
	case "0", "false", "no", "n":
		return false, ""
	default:
		return false, ReasonBadBool
	}
}
