// Package ingest loads external price data into the shapes
// internal/market needs. This is deliberately outside the auction core:
// nothing in internal/market imports this package.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"microgrid/internal/market"
)

// LoadPriceTable reads a weekday×hour price table from CSV. Each row is
// "weekday,hour,price"; a header row is tolerated and skipped if its first
// field does not parse as an integer.
func LoadPriceTable(r io.Reader) ([market.Days][market.HoursPerDay]float64, error) {
	var table [market.Days][market.HoursPerDay]float64

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3

	rows, err := reader.ReadAll()
	if err != nil {
		return table, fmt.Errorf("ingest: read price table: %w", err)
	}

	for i, row := range rows {
		weekday, err := strconv.Atoi(row[0])
		if err != nil {
			if i == 0 {
				continue // header row
			}
			return table, fmt.Errorf("ingest: row %d: weekday: %w", i, err)
		}
		hour, err := strconv.Atoi(row[1])
		if err != nil {
			return table, fmt.Errorf("ingest: row %d: hour: %w", i, err)
		}
		price, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return table, fmt.Errorf("ingest: row %d: price: %w", i, err)
		}
		if weekday < 0 || weekday >= market.Days || hour < 0 || hour >= market.HoursPerDay {
			return table, fmt.Errorf("ingest: row %d: weekday/hour out of range", i)
		}
		table[weekday][hour] = price
	}

	return table, nil
}

// LoadWidePriceTable reads a weekday×hour price table from a "wide" CSV
// where each row is a weekday followed by 24 hourly prices:
// "weekday,h0,h1,...,h23".
func LoadWidePriceTable(r io.Reader) ([market.Days][market.HoursPerDay]float64, error) {
	var table [market.Days][market.HoursPerDay]float64

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = market.HoursPerDay + 1

	rows, err := reader.ReadAll()
	if err != nil {
		return table, fmt.Errorf("ingest: read wide price table: %w", err)
	}

	for i, row := range rows {
		weekday, err := strconv.Atoi(row[0])
		if err != nil {
			if i == 0 {
				continue // header row
			}
			return table, fmt.Errorf("ingest: row %d: weekday: %w", i, err)
		}
		if weekday < 0 || weekday >= market.Days {
			return table, fmt.Errorf("ingest: row %d: weekday out of range", i)
		}
		for h := 0; h < market.HoursPerDay; h++ {
			price, err := strconv.ParseFloat(row[h+1], 64)
			if err != nil {
				return table, fmt.Errorf("ingest: row %d: hour %d price: %w", i, h, err)
			}
			table[weekday][h] = price
		}
	}

	return table, nil
}
