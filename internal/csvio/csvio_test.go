package csvio

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sellence/leadfinder/internal/leads"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestReadCompanies(t *testing.T) {
	t.Parallel()

	path := writeTempCSV(t, "company_name,website,industry,funding\nLemonade,lemonade.com,insurance,$480M\nMystery,,,\n")
	companies, header, err := ReadCompanies(path, "website")
	require.NoError(t, err)
	require.Equal(t, []string{"company_name", "website", "industry", "funding"}, header)
	require.Len(t, companies, 2)

	require.Equal(t, "Lemonade", companies[0].Name)
	require.Equal(t, "lemonade.com", companies[0].Website)
	require.Equal(t, "insurance", companies[0].Vertical)
	require.Equal(t, "$480M", companies[0].Extra["funding"])

	require.Empty(t, companies[1].Website)
}

func TestReadCompaniesCustomColumn(t *testing.T) {
	t.Parallel()

	path := writeTempCSV(t, "Account Name,Company Website\nAcme,acme.example.com\n")
	companies, _, err := ReadCompanies(path, "Company Website")
	require.NoError(t, err)
	require.Equal(t, "acme.example.com", companies[0].Website)
}

func TestReadCompaniesMissingColumn(t *testing.T) {
	t.Parallel()

	path := writeTempCSV(t, "company_name,homepage\nAcme,acme.example.com\n")
	_, _, err := ReadCompanies(path, "website")
	require.Error(t, err)
	require.Contains(t, err.Error(), `"website"`)
}

func TestReadCompaniesEmptyFile(t *testing.T) {
	t.Parallel()

	path := writeTempCSV(t, "")
	_, _, err := ReadCompanies(path, "website")
	require.Error(t, err)
}

func TestWriteResultsShapes(t *testing.T) {
	t.Parallel()

	header := []string{"company_name", "website", "notes"}
	results := []leads.Result{
		{
			Index: 0,
			Company: leads.Company{
				Name:    "Lemonade",
				Website: "lemonade.com",
				Extra:   map[string]string{"company_name": "Lemonade", "website": "lemonade.com", "notes": "hot"},
			},
			HasPhoneField: true,
			Detection:     &leads.Detection{Rule: leads.RuleTelInput, Page: "https://lemonade.com"},
		},
		{
			Index: 1,
			Company: leads.Company{
				Name:    "Unreachable",
				Website: "unreachable.invalid",
				Extra:   map[string]string{"company_name": "Unreachable", "website": "unreachable.invalid"},
			},
			Err:       &leads.FetchError{Kind: leads.FetchErrTimeout},
			ErrDetail: "timeout",
		},
		{
			Index: 2,
			Company: leads.Company{
				Name:  "NoSite",
				Extra: map[string]string{"company_name": "NoSite"},
			},
			Skipped:   true,
			ErrDetail: "missing website",
		},
	}

	dir := t.TempDir()
	qualifiedPath := filepath.Join(dir, "qualified.csv")
	allPath := filepath.Join(dir, "all.csv")
	require.NoError(t, WriteResults(qualifiedPath, header, results, true))
	require.NoError(t, WriteResults(allPath, header, results, false))

	qualified := readAll(t, qualifiedPath)
	require.Len(t, qualified, 2, "header plus the one qualified row")
	require.Equal(t,
		[]string{"company_name", "website", "notes", "has_phone_field", "matched_page", "matched_rule", "error_detail"},
		qualified[0],
	)
	require.Equal(t,
		[]string{"Lemonade", "lemonade.com", "hot", "true", "https://lemonade.com", "1", ""},
		qualified[1],
	)

	all := readAll(t, allPath)
	require.Len(t, all, 4)
	require.Equal(t, "timeout", all[2][6])
	require.Equal(t, "missing website", all[3][6])
	require.Equal(t, "false", all[2][3])
}

func TestWriteCompaniesRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "companies.csv")
	companies := []leads.Company{
		{Name: "Lemonade", Website: "lemonade.com", Vertical: "insurance"},
		{Name: "Chime", Website: "chime.com", Vertical: "finance"},
	}
	require.NoError(t, WriteCompanies(path, companies))

	rows := readAll(t, path)
	require.Equal(t, [][]string{
		{"company_name", "website", "vertical"},
		{"Lemonade", "lemonade.com", "insurance"},
		{"Chime", "chime.com", "finance"},
	}, rows)
}
