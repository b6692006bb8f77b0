// Command bookctl drives the booking workflow from a terminal: pick an
// intervention type, find a covered address, choose a slot and submit the
// reservation.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/homecyclehelp/booking-client/internal/auth"
	"github.com/homecyclehelp/booking-client/internal/backend"
	"github.com/homecyclehelp/booking-client/internal/booking"
	"github.com/homecyclehelp/booking-client/internal/config"
	"github.com/homecyclehelp/booking-client/internal/geocode"
	"github.com/homecyclehelp/booking-client/internal/observability/metrics"
	"github.com/homecyclehelp/booking-client/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	tokenFlag := flag.String("token", "", "session token (defaults to HCH_TOKEN)")
	checkOnly := flag.Bool("check", false, "only verify address coverage, no booking")
	flag.Parse()

	cfg := config.Load()
	logger := logging.NewText(cfg.LogLevel, os.Stderr)
	ctx := context.Background()

	var cache geocode.SuggestionCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		cache = geocode.NewRedisSuggestionCache(rdb, cfg.SuggestionTTL, logger)
	}

	resolver := geocode.NewClient(cfg.AddressAPIBaseURL, cache, logger)
	api := backend.NewClient(backend.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
		Logger:  logger,
	})
	m := metrics.NewBookingMetrics(nil)
	in := bufio.NewScanner(os.Stdin)

	if *checkOnly {
		checker := booking.NewAvailabilityChecker(resolver, api, m, logger)
		fmt.Print("Adresse à vérifier : ")
		if !in.Scan() {
			return
		}
		_, msg, err := checker.Verify(ctx, strings.TrimSpace(in.Text()))
		if err != nil {
			logger.Debug("availability check error", "error", err)
		}
		fmt.Println(msg)
		return
	}

	token := *tokenFlag
	if token == "" {
		token = os.Getenv("HCH_TOKEN")
	}
	identity, err := auth.DecodeSession(token)
	if err != nil {
		fmt.Println("Vous devez être connecté pour faire une demande d'intervention à domicile.")
		fmt.Println("Connectez-vous puis relancez avec --token ou HCH_TOKEN.")
		os.Exit(1)
	}

	w, err := booking.NewWorkflow(booking.Config{
		Resolver: resolver,
		API:      api,
		Identity: identity,
		Token:    token,
		Metrics:  m,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("workflow init failed", "error", err)
		os.Exit(1)
	}
	if err := w.Start(ctx); err != nil {
		logger.Error("loading intervention types failed", "error", err)
		os.Exit(1)
	}

	fmt.Println("Nouvelle demande d'intervention")
	selectType(in, w)

	for {
		if !enterAddress(ctx, in, w) {
			return
		}
		if err := w.CheckAvailability(ctx); err != nil {
			if errors.Is(err, booking.ErrSuperseded) {
				continue
			}
			fmt.Println(w.StatusMessage())
			continue
		}
		if w.State() == booking.StateNotCovered {
			fmt.Println(w.StatusMessage())
			continue
		}
		break
	}

	groups := w.SlotGroups()
	if len(groups) == 0 {
		fmt.Println(w.StatusMessage())
		return
	}
	fmt.Println("Créneaux disponibles :")
	for _, g := range groups {
		fmt.Printf("  %s\n", g.Date)
		for _, s := range g.Slots {
			fmt.Printf("    [%d] %s\n", s.ID, s.Start.Format("15h04"))
		}
	}

	for {
		id := promptInt(in, "Numéro du créneau : ")
		if err := w.SelectSlot(id); err != nil {
			fmt.Println("Créneau inconnu, réessayez.")
			continue
		}
		break
	}

	brand := prompt(in, "Marque du vélo : ")
	model := prompt(in, "Modèle du vélo : ")
	electric := strings.EqualFold(prompt(in, "Vélo électrique ? (o/n) : "), "o")
	comment := prompt(in, "Commentaire : ")
	if err := w.SetBikeDetails(brand, model, electric, comment); err != nil {
		logger.Error("details rejected", "error", err)
		os.Exit(1)
	}

	if path := prompt(in, "Photo du vélo (chemin, facultatif) : "); path != "" {
		if err := attachPhoto(w, path); err != nil {
			fmt.Printf("Photo refusée : %v\n", err)
		}
	}

	for {
		if err := w.Submit(ctx); err != nil {
			fmt.Println(w.StatusMessage())
			if strings.EqualFold(prompt(in, "Réessayer ? (o/n) : "), "o") {
				continue
			}
			os.Exit(1)
		}
		break
	}
	fmt.Println(w.StatusMessage())
}

func selectType(in *bufio.Scanner, w *booking.Workflow) {
	fmt.Println("Type d'intervention :")
	for _, t := range w.Types() {
		fmt.Printf("  [%d] %s – %.2f€\n", t.ID, t.Name, t.StartingPrice)
	}
	for {
		id := promptInt(in, "Votre choix : ")
		if err := w.SelectType(id); err != nil {
			fmt.Println("Type inconnu, réessayez.")
			continue
		}
		return
	}
}

// enterAddress runs the autocomplete loop: typed text shows candidates, a
// number adopts one, an empty line keeps the current text.
func enterAddress(ctx context.Context, in *bufio.Scanner, w *booking.Workflow) bool {
	for {
		fmt.Print("Adresse (ou numéro d'une suggestion, vide pour valider) : ")
		if !in.Scan() {
			return false
		}
		line := strings.TrimSpace(in.Text())

		if line == "" {
			if strings.TrimSpace(w.Query()) == "" {
				fmt.Println(booking.MsgEnterAddress)
				continue
			}
			return true
		}

		if n, err := strconv.Atoi(line); err == nil {
			suggestions := w.Suggestions()
			if n >= 1 && n <= len(suggestions) {
				w.SelectSuggestion(suggestions[n-1])
				fmt.Printf("Adresse : %s\n", w.Query())
				return true
			}
			fmt.Println("Numéro hors liste.")
			continue
		}

		suggestions := w.UpdateQuery(ctx, line)
		for i, s := range suggestions {
			fmt.Printf("  [%d] %s\n", i+1, s.Label)
		}
	}
}

func attachPhoto(w *booking.Workflow, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	contentType := contentTypeFor(path, data)
	return w.AttachPhoto(backend.Photo{
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	})
}

func contentTypeFor(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	}
	return http.DetectContentType(data)
}

func prompt(in *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}

func promptInt(in *bufio.Scanner, label string) int {
	for {
		raw := prompt(in, label)
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
		fmt.Println("Entrez un nombre.")
	}
}
