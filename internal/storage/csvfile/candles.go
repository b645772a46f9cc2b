// Package csvfile reads candle history from CSV files, the offline
// counterpart of the live feed. Expected columns:
// timestamp_ms,open,high,low,close,volume with an optional header row.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"tradelab/internal/domain"
)

// ReadCandles decodes all rows from r. Rows failing Candle.Validate
// abort the read; silently skipping bad bars would corrupt a replay.
func ReadCandles(r io.Reader) ([]domain.Candle, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 6

	var candles []domain.Candle
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line++

		// Header row
		if line == 1 {
			if _, err := strconv.ParseInt(record[0], 10, 64); err != nil {
				continue
			}
		}

		c, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		candles = append(candles, c)
	}
	return candles, nil
}

// ReadCandlesFile opens and decodes one CSV file.
func ReadCandlesFile(path string) ([]domain.Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open candle file: %w", err)
	}
	defer f.Close()
	return ReadCandles(f)
}

func parseRow(record []string) (domain.Candle, error) {
	var c domain.Candle
	ts, err := strconv.ParseInt(record[0], 10, 64)
	if err != nil {
		return c, fmt.Errorf("parse timestamp %q: %w", record[0], err)
	}
	c.Timestamp = ts

	fields := []struct {
		name string
		dst  *float64
	}{
		{"open", &c.Open},
		{"high", &c.High},
		{"low", &c.Low},
		{"close", &c.Close},
		{"volume", &c.Volume},
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(record[i+1], 64)
		if err != nil {
			return c, fmt.Errorf("parse %s %q: %w", f.name, record[i+1], err)
		}
		*f.dst = v
	}
	return c, nil
}
