// Command marketsim runs a multi-day microgrid double-auction simulation
// over a small registry of demo participants and prints a per-slot summary.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"

	"microgrid/internal/forecast"
	"microgrid/internal/market"
	"microgrid/internal/store"
	"microgrid/internal/ws"

	"github.com/gorilla/websocket"
)

func main() {
	days := flag.Int("days", 1, "number of weekdays to simulate (wraps at 7)")
	rounds := flag.Int("rounds", market.MaxRounds, "max rounds per slot")
	essCapacity := flag.Float64("ess-capacity", 50000, "shared ESS capacity (Wh)")
	essFill := flag.Float64("ess-fill", 0.5, "initial ESS fill fraction")
	wsAddr := flag.String("ws", "", "if set, broadcast trades/snapshots over WebSocket on this address (e.g. :8080)")
	flag.Parse()

	prices := demoPriceTable()
	external := market.NewExternalGrid(prices)

	priceForecaster := forecast.NewHoltWintersPriceForecaster()
	ratioForecaster := forecast.OLSRatioForecaster{}
	memory := market.NewMarketMemory(external, priceForecaster, ratioForecaster, *rounds)

	distribution := market.NewDistribution(external)
	ledger := store.New()
	distribution.AddSink(ledger)

	var bridge *ws.Bridge
	if *wsAddr != "" {
		hub := ws.NewHub()
		bridge = ws.NewBridge(hub)
		distribution.AddSink(bridge)
		go serveWebSocket(*wsAddr, hub)
	}

	ess := market.NewESS("ess-shared", *essCapacity, *essFill)
	engine := market.NewAuctionEngine(memory, external, distribution, ess, *rounds)
	engine.Logger = log.Default()

	for _, p := range demoParticipants() {
		engine.Register(p)
	}

	for day := 0; day < *days; day++ {
		daySlots := make([]market.Schedule, market.HoursPerDay)
		for h := 0; h < market.HoursPerDay; h++ {
			daySlots[h] = market.NewSchedule(day, h)
		}
		if err := memory.PrefetchPriceForecasts(context.Background(), daySlots); err != nil {
			log.Printf("prefetch forecasts for day %d: %v", day, err)
		}

		for hour := 0; hour < market.HoursPerDay; hour++ {
			s := market.NewSchedule(day, hour)
			engine.Handle(s)

			view := memory.View(s)
			log.Printf("%s round=%d last=%v trades=%d amount=%.2f price=%.2f ratio=%.2f",
				s, view.RoundNumber, view.Last, len(view.TradeList),
				view.Amount[view.RoundNumber-1], view.Prices[view.RoundNumber-1],
				view.SupplyDemandRatio[view.RoundNumber-1])

			if bridge != nil {
				bridge.BroadcastSnapshot(s, view)
			}
		}
	}

	log.Printf("total market volume: %.2f Wh", ledger.TotalByMode(market.Market))
	log.Printf("total routed to storage: %.2f Wh", ledger.TotalByMode(market.ToESS))
	log.Printf("total sourced from external grid: %.2f Wh", ledger.TotalByMode(market.FromExternal))
}

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// serveWebSocket runs a minimal broadcast-only WebSocket endpoint at
// addr/ws: every connection is registered with hub and fed trades/snapshots
// until the client disconnects. There is no command channel back into the
// simulation, so the read loop exists only to detect that disconnect.
func serveWebSocket(addr string, hub *ws.Hub) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := wsUpgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("ws: upgrade error: %v", err)
			return
		}
		client := ws.NewClient(hub, conn)
		hub.Register(client)
		go client.WritePump()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		hub.Unregister(client)
	})
	log.Printf("serving WebSocket on %s/ws", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("ws: server error: %v", err)
	}
}

// demoPriceTable builds a weekday×hour price table that is flat apart from
// a cheap overnight band (hours 0-5) and an evening peak (hours 17-20),
// standing in for a loaded history in this minimal runnable demo.
func demoPriceTable() [market.Days][market.HoursPerDay]float64 {
	var table [market.Days][market.HoursPerDay]float64
	for wd := 0; wd < market.Days; wd++ {
		for h := 0; h < market.HoursPerDay; h++ {
			base := 40.0
			switch {
			case h >= 17 && h <= 20:
				base = 90
			case h >= 0 && h <= 5:
				base = 20
			}
			table[wd][h] = base
		}
	}
	return table
}

// demoParticipants builds a small fixed registry: one solar producer, one
// household consumer, one shiftable-load consumer.
func demoParticipants() []*market.Participant {
	solar := &market.FixedDevice{
		ID:            "solar-1",
		SupplyProfile: flatSupplyProfile(12, 6, 18),
		DeviceMode:    market.Immediate,
		Role:          market.Producer,
	}
	producer := market.NewParticipant("household-a", []market.Device{solar})

	heater := &market.FixedDevice{
		ID:            "heater-1",
		DemandProfile: flatDemandProfile(2),
		DeviceMode:    market.Immediate,
		Role:          market.Consumer,
	}
	consumer := market.NewParticipant("household-b", []market.Device{heater})

	dishwasher := &market.FixedDevice{
		ID:            "dishwasher-1",
		DemandProfile: flatDemandProfile(1.5),
		DeviceMode:    market.Shiftable,
		Role:          market.Consumer,
	}
	shiftable := market.NewParticipant("household-c", []market.Device{dishwasher})

	return []*market.Participant{producer, consumer, shiftable}
}

func flatSupplyProfile(amount float64, fromHour, toHour int) map[market.Schedule]float64 {
	profile := make(map[market.Schedule]float64)
	for wd := 0; wd < market.Days; wd++ {
		for h := fromHour; h <= toHour; h++ {
			profile[market.NewSchedule(wd, h)] = amount
		}
	}
	return profile
}

func flatDemandProfile(amount float64) map[market.Schedule]float64 {
	profile := make(map[market.Schedule]float64)
	for wd := 0; wd < market.Days; wd++ {
		for h := 0; h < market.HoursPerDay; h++ {
			profile[market.NewSchedule(wd, h)] = amount
		}
	}
	return profile
}
