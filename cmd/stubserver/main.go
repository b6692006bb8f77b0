// Command stubserver is a local stand-in for the booking backend and the
// address search API, with deterministic fixture data. It exists for offline
// development and end-to-end exercising of the client; it is not the product
// backend.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/homecyclehelp/booking-client/internal/config"
	"github.com/homecyclehelp/booking-client/pkg/logging"
)

type fixtureAddress struct {
	ID      string
	Label   string
	Lat     float64
	Lon     float64
	Covered bool
}

var fixtureAddresses = []fixtureAddress{
	{"75102_6928", "10 Rue de la Paix 75002 Paris", 48.869, 2.331, true},
	{"75108_4932", "25 Avenue des Champs-Élysées 75008 Paris", 48.870, 2.305, true},
	{"69382_7242", "10 Rue de la Paix 69003 Lyon", 45.764, 4.835, false},
	{"31555_2860", "5 Place du Capitole 31000 Toulouse", 43.604, 1.443, false},
}

// takenSlotID always answers "slot taken" so the retry path can be exercised.
const takenSlotID = 13

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	r := newRouter()

	addr := ":" + cfg.StubPort
	logger.Info("stub server listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Error("stub server stopped", "error", err)
	}
}

func newRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// BAN-compatible address search.
	r.Get("/search/", handleSearch)

	r.Route("/api", func(api chi.Router) {
		api.Get("/types-intervention", handleTypes)
		api.Post("/zones/check", handleZoneCheck)
		api.Get("/interventions/available/{providerID}", handleAvailable)
		api.Post("/interventions/{slotID}/book", handleBook)
	})
	return r
}

func handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("q"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 5
	}

	features := make([]map[string]interface{}, 0, limit)
	for _, a := range fixtureAddresses {
		if len(features) == limit {
			break
		}
		if q != "" && !strings.Contains(strings.ToLower(a.Label), q) {
			continue
		}
		features = append(features, map[string]interface{}{
			"geometry":   map[string]interface{}{"coordinates": []float64{a.Lon, a.Lat}},
			"properties": map[string]interface{}{"id": a.ID, "label": a.Label},
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"features": features})
}

func handleTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, []map[string]interface{}{
		{"id": 1, "nom": "Révision complète", "prix_depart": 49.9},
		{"id": 2, "nom": "Crevaison", "prix_depart": 19.0},
		{"id": 3, "nom": "Réglage dérailleur", "prix_depart": 25.0},
	})
}

func handleZoneCheck(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	for _, a := range fixtureAddresses {
		if near(a.Lat, body.Latitude) && near(a.Lon, body.Longitude) && a.Covered {
			writeJSON(w, http.StatusOK, map[string]interface{}{"covered": true, "technicien_id": 42})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"covered": false})
}

func near(a, b float64) bool {
	d := a - b
	return d < 0.01 && d > -0.01
}

func handleAvailable(w http.ResponseWriter, r *http.Request) {
	if _, err := strconv.Atoi(chi.URLParam(r, "providerID")); err != nil {
		http.Error(w, "invalid provider id", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("typeId") == "" {
		http.Error(w, "typeId is required", http.StatusBadRequest)
		return
	}

	// Two morning/afternoon slots per day over the next three days, ids
	// stable per day offset. Includes takenSlotID on day two.
	base := time.Now().AddDate(0, 0, 1).Truncate(24 * time.Hour)
	slots := make([]map[string]interface{}, 0, 6)
	id := 10
	for day := 0; day < 3; day++ {
		for _, hour := range []int{9, 14} {
			start := base.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour)
			slots = append(slots, map[string]interface{}{
				"id":    id,
				"debut": start.UTC().Format(time.RFC3339),
			})
			id++
		}
	}
	writeJSON(w, http.StatusOK, slots)
}

func handleBook(w http.ResponseWriter, r *http.Request) {
	slotID, err := strconv.Atoi(chi.URLParam(r, "slotID"))
	if err != nil {
		http.Error(w, "invalid slot id", http.StatusBadRequest)
		return
	}
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "expected multipart form", http.StatusBadRequest)
		return
	}
	for _, field := range []string{"clientId", "adresse"} {
		if r.FormValue(field) == "" {
			http.Error(w, fmt.Sprintf("%s is required", field), http.StatusBadRequest)
			return
		}
	}
	if flag := r.FormValue("electrique"); flag != "0" && flag != "1" {
		http.Error(w, "electrique must be 0 or 1", http.StatusBadRequest)
		return
	}
	if slotID == takenSlotID {
		http.Error(w, "slot taken", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"id": slotID, "status": "reserved"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
