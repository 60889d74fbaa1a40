// Package csvio reads company lists and writes qualification results,
// passing unknown input columns through untouched.
package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sellence/leadfinder/internal/leads"
)

// Result columns appended to the input header on output.
var resultColumns = []string{"has_phone_field", "matched_page", "matched_rule", "error_detail"}

// ReadCompanies loads a company list from a CSV file. urlColumn names the
// website column; company_name and industry/vertical columns are picked up
// when present. The returned header preserves input column order.
func ReadCompanies(path, urlColumn string) ([]leads.Company, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read input csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("input csv is empty")
	}

	header := rows[0]
	urlIdx := -1
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), urlColumn) {
			urlIdx = i
			break
		}
	}
	if urlIdx == -1 {
		return nil, nil, fmt.Errorf("input csv has no %q column", urlColumn)
	}

	companies := make([]leads.Company, 0, len(rows)-1)
	for _, row := range rows[1:] {
		extra := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				extra[col] = row[i]
			}
		}
		companies = append(companies, leads.Company{
			Name:     firstNonEmpty(extra, "company_name", "name", "company"),
			Website:  strings.TrimSpace(extra[header[urlIdx]]),
			Vertical: firstNonEmpty(extra, "vertical", "industry"),
			Extra:    extra,
		})
	}
	return companies, header, nil
}

// WriteResults writes results to path, one row per result in slice order.
// When qualifiedOnly is set, only positive verdicts are written.
func WriteResults(path string, header []string, results []leads.Result, qualifiedOnly bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(append(append([]string(nil), header...), resultColumns...)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, result := range results {
		if qualifiedOnly && !result.Qualified() {
			continue
		}
		if err := w.Write(resultRow(header, result)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

func resultRow(header []string, result leads.Result) []string {
	row := make([]string, 0, len(header)+len(resultColumns))
	for _, col := range header {
		row = append(row, result.Company.Extra[col])
	}
	matchedPage, matchedRule := "", ""
	if result.Detection != nil {
		matchedPage = result.Detection.Page
		matchedRule = strconv.Itoa(int(result.Detection.Rule))
	}
	row = append(row,
		strconv.FormatBool(result.HasPhoneField),
		matchedPage,
		matchedRule,
		result.ErrDetail,
	)
	return row
}

// WriteCompanies exports a discovered company list, used by the discover
// command.
func WriteCompanies(path string, companies []leads.Company) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"company_name", "website", "vertical"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, company := range companies {
		if err := w.Write([]string{company.Name, company.Website, company.Vertical}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

func firstNonEmpty(extra map[string]string, keys ...string) string {
	for _, key := range keys {
		for col, value := range extra {
			if strings.EqualFold(col, key) && strings.TrimSpace(value) != "" {
				return strings.TrimSpace(value)
			}
		}
	}
	return ""
}
