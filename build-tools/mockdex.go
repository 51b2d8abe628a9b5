//go:build ignore

// Run: go run ./build-tools/mockdex.go -addr :9999 -chain solana -pairs 25
// Fake DexScreener-style search endpoint for local scanner runs.

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"time"
)

func main() {
	var (
		addr  = flag.String("addr", ":9999", "listen address")
		chain = flag.String("chain", "solana", "chain id to report")
		pairs = flag.Int("pairs", 25, "pairs per response")
	)
	flag.Parse()

	names := []string{"PEPE KING", "DOGE MOON", "CAT WIF HAT", "INU ROCKET", "MOON PUMP"}

	http.HandleFunc("/latest/dex/search", func(w http.ResponseWriter, r *http.Request) {
		out := map[string]any{"schemaVersion": "1.0.0"}
		list := make([]map[string]any, 0, *pairs)
		for i := 0; i < *pairs; i++ {
			name := names[rand.Intn(len(names))]
			addr := fmt.Sprintf("%x", rand.Int63())
			list = append(list, map[string]any{
				"chainId":     *chain,
				"dexId":       "raydium",
				"url":         "https://dexscreener.com/solana/" + addr,
				"pairAddress": addr + "p",
				"baseToken":   map[string]any{"address": addr, "name": name, "symbol": "MEME"},
				"priceUsd":    fmt.Sprintf("%f", rand.Float64()/1000),
				"txns": map[string]any{
					"m5": map[string]int{"buys": rand.Intn(60), "sells": rand.Intn(20)},
					"h1": map[string]int{"buys": rand.Intn(400), "sells": rand.Intn(200)},
				},
				"volume":        map[string]float64{"m5": rand.Float64() * 5000, "h1": rand.Float64() * 40000},
				"priceChange":   map[string]float64{"m5": rand.Float64()*40 - 10, "h1": rand.Float64()*120 - 30},
				"liquidity":     map[string]float64{"usd": 5000 + rand.Float64()*300000},
				"fdv":           rand.Float64() * 8000000,
				"pairCreatedAt": time.Now().Add(-time.Duration(rand.Intn(120)) * time.Minute).UnixMilli(),
			})
		}
		out["pairs"] = list
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	})

	fmt.Println("mockdex listening on", *addr)
	if err := http.ListenAndServe(*addr, nil); err != nil {
		panic(err)
	}
}
