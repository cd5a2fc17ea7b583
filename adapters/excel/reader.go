// Package excel reads the spreadsheet/CSV exports that feed the store:
// daily revenue from the point-of-sale system and daily weather pulls.
package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"lavanda/domain/core"
	"lavanda/domain/forecast"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadRevenue parses a revenue export with columns (date, total_revenue).
func (r *DataReader) ReadRevenue() ([]forecast.RevenueObservation, error) {
	rows, err := r.rows()
	if err != nil {
		return nil, err
	}
	header, data, err := splitHeader(rows)
	if err != nil {
		return nil, err
	}

	dateCol, err := findColumn(header, "date", "data", "revenue_date")
	if err != nil {
		return nil, err
	}
	revCol, err := findColumn(header, "total_revenue", "revenue", "faturamento", "total")
	if err != nil {
		return nil, err
	}

	var out []forecast.RevenueObservation
	for i, row := range data {
		if len(row) <= dateCol || len(row) <= revCol {
			continue
		}
		date, err := parseDate(row[dateCol])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		total, err := parseNumber(row[revCol])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad revenue %q: %w", i+2, row[revCol], err)
		}
		out = append(out, forecast.RevenueObservation{Date: date, TotalRevenue: total})
	}
	return out, nil
}

// ReadWeather parses a weather export with columns
// (date, temp_avg, humidity_avg, precipitation, cloud_cover).
func (r *DataReader) ReadWeather() ([]forecast.WeatherObservation, error) {
	rows, err := r.rows()
	if err != nil {
		return nil, err
	}
	header, data, err := splitHeader(rows)
	if err != nil {
		return nil, err
	}

	dateCol, err := findColumn(header, "date", "data", "weather_date")
	if err != nil {
		return nil, err
	}
	cols := map[string]int{}
	for name, aliases := range map[string][]string{
		"temp":     {"temp_avg", "temperature", "temperatura"},
		"humidity": {"humidity_avg", "humidity", "umidade"},
		"precip":   {"precipitation", "precip", "chuva"},
		"cloud":    {"cloud_cover", "clouds", "nebulosidade"},
	} {
		idx, err := findColumn(header, aliases...)
		if err != nil {
			return nil, err
		}
		cols[name] = idx
	}

	var out []forecast.WeatherObservation
	for i, row := range data {
		if len(row) <= dateCol {
			continue
		}
		date, err := parseDate(row[dateCol])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		obs := forecast.WeatherObservation{Date: date}
		for name, idx := range cols {
			if len(row) <= idx {
				return nil, fmt.Errorf("row %d: missing %s column", i+2, name)
			}
			v, err := parseNumber(row[idx])
			if err != nil {
				return nil, fmt.Errorf("row %d: bad %s value %q: %w", i+2, name, row[idx], err)
			}
			switch name {
			case "temp":
				obs.TempAvg = v
			case "humidity":
				obs.HumidityAvg = v
			case "precip":
				obs.Precipitation = v
			case "cloud":
				obs.CloudCover = v
			}
		}
		out = append(out, obs)
	}
	return out, nil
}

// rows loads raw cells from Sheet1 of an .xlsx file or the whole .csv.
func (r *DataReader) rows() ([][]string, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		f, err := os.Open(r.filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV file: %w", err)
		}
		defer f.Close()
		reader := csv.NewReader(f)
		reader.FieldsPerRecord = -1
		return reader.ReadAll()
	case "xlsx":
		f, err := excelize.OpenFile(r.filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open Excel file: %w", err)
		}
		defer f.Close()
		return f.GetRows("Sheet1")
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

func splitHeader(rows [][]string) ([]string, [][]string, error) {
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must have a header row and at least one data row")
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return header, rows[1:], nil
}

func findColumn(header []string, aliases ...string) (int, error) {
	for _, alias := range aliases {
		for i, h := range header {
			if h == alias {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("no column named %s in header %v", strings.Join(aliases, "/"), header)
}

// parseDate accepts ISO and the DD/MM/YYYY format common in Brazilian exports.
func parseDate(s string) (core.CalendarDate, error) {
	s = strings.TrimSpace(s)
	if d, err := core.ParseDate(s); err == nil {
		return d, nil
	}
	parts := strings.Split(s, "/")
	if len(parts) == 3 {
		return core.ParseDate(fmt.Sprintf("%s-%02s-%02s", parts[2], parts[1], parts[0]))
	}
	return core.CalendarDate{}, fmt.Errorf("unrecognized date %q", s)
}

// parseNumber accepts both dot and comma decimal separators.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")
	return strconv.ParseFloat(s, 64)
}
