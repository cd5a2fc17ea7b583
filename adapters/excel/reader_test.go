package excel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadRevenue_CSV(t *testing.T) {
	path := writeTempCSV(t, "revenue.csv",
		"date,total_revenue\n2025-06-01,1534.50\n2025-06-02,982.00\n")

	observations, err := NewDataReader(path).ReadRevenue()
	require.NoError(t, err)
	require.Len(t, observations, 2)
	assert.Equal(t, "2025-06-01", observations[0].Date.String())
	assert.Equal(t, 1534.50, observations[0].TotalRevenue)
	assert.Equal(t, 982.00, observations[1].TotalRevenue)
}

func TestReadRevenue_BrazilianFormats(t *testing.T) {
	// DD/MM/YYYY dates and comma decimal separators, as POS exports ship.
	path := writeTempCSV(t, "faturamento.csv",
		"data;faturamento\n01/06/2025;1534,50\n")
	// Semicolon-delimited exports are not supported; commas only.
	_, err := NewDataReader(path).ReadRevenue()
	assert.Error(t, err)

	path = writeTempCSV(t, "faturamento2.csv",
		"data,faturamento\n01/06/2025,\"1534,50\"\n")
	observations, err := NewDataReader(path).ReadRevenue()
	require.NoError(t, err)
	require.Len(t, observations, 1)
	assert.Equal(t, "2025-06-01", observations[0].Date.String())
	assert.Equal(t, 1534.50, observations[0].TotalRevenue)
}

func TestReadRevenue_MissingColumn(t *testing.T) {
	path := writeTempCSV(t, "bad.csv", "day,amount\n2025-06-01,10\n")
	_, err := NewDataReader(path).ReadRevenue()
	assert.Error(t, err)
}

func TestReadWeather_CSV(t *testing.T) {
	path := writeTempCSV(t, "weather.csv",
		"date,temp_avg,humidity_avg,precipitation,cloud_cover\n"+
			"2025-06-01,23.5,71,0,40\n"+
			"2025-06-02,19.1,88,12.5,95\n")

	observations, err := NewDataReader(path).ReadWeather()
	require.NoError(t, err)
	require.Len(t, observations, 2)
	assert.Equal(t, 23.5, observations[0].TempAvg)
	assert.Equal(t, 71.0, observations[0].HumidityAvg)
	assert.Equal(t, 12.5, observations[1].Precipitation)
	assert.Equal(t, 95.0, observations[1].CloudCover)
}

func TestReadData_FileNotFound(t *testing.T) {
	_, err := NewDataReader("/nonexistent/export.csv").ReadRevenue()
	assert.Error(t, err)
}
