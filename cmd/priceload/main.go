// Command priceload loads a weekday×hour external grid price table from a
// CSV file and reports its coverage. It exists only to give the ingestion
// package a runnable entry point; the auction core never imports it.
package main

import (
	"flag"
	"log"
	"os"

	"microgrid/internal/ingest"
	"microgrid/internal/market"
)

func main() {
	path := flag.String("input", "prices.csv", "CSV file: weekday,hour,price rows")
	wide := flag.Bool("wide", false, "input is wide-format: weekday,h0,h1,...,h23")
	flag.Parse()

	f, err := os.Open(*path)
	if err != nil {
		log.Fatalf("priceload: open %s: %v", *path, err)
	}
	defer f.Close()

	var table [market.Days][market.HoursPerDay]float64
	if *wide {
		table, err = ingest.LoadWidePriceTable(f)
	} else {
		table, err = ingest.LoadPriceTable(f)
	}
	if err != nil {
		log.Fatalf("priceload: %v", err)
	}

	grid := market.NewExternalGrid(table)
	for wd := 0; wd < market.Days; wd++ {
		var sum float64
		for h := 0; h < market.HoursPerDay; h++ {
			sum += grid.Price(market.NewSchedule(wd, h))
		}
		log.Printf("weekday %d: avg price %.2f", wd, sum/market.HoursPerDay)
	}
}
