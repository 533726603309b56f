// Command sim-server is a local stand-in for the journey-simulation service.
// It accepts simulate-journey posts, echoes the step back, and can inject
// failures for testing the engine's pass/fail handling.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"time"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	errorRate := flag.Float64("error-rate", 0, "fraction of step requests answered with 500 (0..1)")
	delay := flag.Duration("delay", 0, "artificial processing delay per request")
	flag.Parse()

	http.HandleFunc("/api/journey-simulation/simulate-journey", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		var payload struct {
			EventType     string `json:"eventType"`
			CorrelationID string `json:"correlationId"`
			Journey       struct {
				Steps []struct {
					StepName string `json:"stepName"`
				} `json:"steps"`
			} `json:"journey"`
		}
		json.Unmarshal(body, &payload)

		if *delay > 0 {
			time.Sleep(*delay)
		}

		w.Header().Set("Content-Type", "application/json")

		if payload.EventType == "journey_completed" {
			log.Printf("completion event correlation=%s", payload.CorrelationID)
			fmt.Fprint(w, `{"status":"recorded"}`)
			return
		}

		step := "unknown"
		if len(payload.Journey.Steps) > 0 {
			step = payload.Journey.Steps[0].StepName
		}

		if *errorRate > 0 && rand.Float64() < *errorRate {
			log.Printf("step %-24s correlation=%s -> injected failure", step, r.Header.Get("x-correlation-id"))
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintf(w, `{"status":"error","message":"injected failure at %s"}`, step)
			return
		}

		log.Printf("step %-24s correlation=%s", step, r.Header.Get("x-correlation-id"))
		fmt.Fprintf(w, `{"status":"completed","stepName":%q}`, step)
	})

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "healthy")
	})

	server := &http.Server{
		Addr:              *addr,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	log.Printf("journey simulation stub listening on %s (error rate %.0f%%)", *addr, *errorRate*100)
	if err := server.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
