// fake-upstream imita o endpoint de ranking para rodar o gateway localmente.
//
// Personagens fixos (nome case-insensitive):
//
//	luna123   overall no mundo 30; legion só com reboot_index=0
//	rebootkid overall no mundo 45; legion com reboot_index=1
//	solo      overall sem nenhuma linha de legion
//	flaky     sempre 503
//
// Qualquer outro nome devolve `ranks` vazio. FAKE_LATENCY atrasa cada resposta.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
)

type row map[string]any

type character struct {
	overall row
	// legion por reboot_index
	legion map[string]row
}

var characters = map[string]character{
	"luna123": {
		overall: row{"CharacterID": 99, "CharacterName": "Luna123", "WorldID": 30, "Level": 275, "Exp": 123456789,
			"JobName": "Bishop", "Rank": 1200, "Gap": 4, "StartRank": 1190, "CharacterImgURL": "https://example.invalid/luna123.png"},
		legion: map[string]row{"0": {"Rank": 42, "Gap": 9, "LegionLevel": 9000, "RaidPower": 123456, "TierID": 5, "Score": 500}},
	},
	"rebootkid": {
		overall: row{"CharacterID": 7, "CharacterName": "RebootKid", "WorldID": 45, "Level": 260, "JobName": "Hero", "Rank": 88},
		legion:  map[string]row{"1": {"Rank": 3, "Gap": 1, "LegionLevel": 8000, "Score": 300}},
	},
	"solo": {
		overall: row{"CharacterID": 12, "CharacterName": "Solo", "WorldID": 1, "Level": 200, "JobName": "Archer", "Rank": 5000,
			"LegionLevel": 1500, "RaidPower": 10, "TierID": 1, "Score": 20},
	},
}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}
	var latency time.Duration
	if v := os.Getenv("FAKE_LATENCY"); v != "" {
		if latency, err = time.ParseDuration(v); err != nil {
			logger.Fatal("invalid FAKE_LATENCY", zap.Error(err))
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/maplestory/no-auth/ranking/v2/na", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		name := strings.ToLower(strings.TrimSpace(q.Get("character_name")))
		logger.Info("ranking request",
			zap.String("type", q.Get("type")),
			zap.String("id", q.Get("id")),
			zap.String("reboot_index", q.Get("reboot_index")),
			zap.String("character_name", name),
		)
		if latency > 0 {
			time.Sleep(latency)
		}
		if name == "flaky" {
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}

		ranks := []row{}
		if c, ok := characters[name]; ok {
			switch q.Get("type") {
			case "overall":
				ranks = append(ranks, c.overall)
			case "legion":
				if l, ok := c.legion[q.Get("reboot_index")]; ok {
					ranks = append(ranks, l)
				}
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"totalCount": len(ranks), "ranks": ranks})
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("fake ranking listening", zap.String("addr", addr),
		zap.String("url", "http://localhost"+addr+"/api/maplestory/no-auth/ranking/v2/na"))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
