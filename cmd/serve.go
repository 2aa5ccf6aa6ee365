package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/shopper-cli/internal/consolidate"
	"github.com/sells-group/shopper-cli/internal/model"
	"github.com/sells-group/shopper-cli/internal/recipe"
	"github.com/sells-group/shopper-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(st),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(st store.Store) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/match", handleMatch(st))
	r.Post("/consolidate", handleConsolidate())

	return r
}

type matchRequest struct {
	Ingredients  []string `json:"ingredients"`
	MealContext  string   `json:"meal_context,omitempty"`
	Allergies    []string `json:"allergies,omitempty"`
	Dietary      []string `json:"dietary,omitempty"`
	Organic      bool     `json:"organic,omitempty"`
	Budget       bool     `json:"budget,omitempty"`
	Alternatives int      `json:"alternatives,omitempty"`
}

func handleMatch(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req matchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if len(req.Ingredients) == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "ingredients are required"})
			return
		}

		flags := matchFlags{
			organic:      req.Organic,
			budget:       req.Budget,
			alternatives: req.Alternatives,
			allergies:    req.Allergies,
			dietary:      req.Dietary,
			mealContext:  req.MealContext,
		}

		ings := make([]model.ScaledIngredient, 0, len(req.Ingredients))
		for _, line := range req.Ingredients {
			ing := recipe.ParseIngredient(line)
			if ing.Name == "" {
				continue
			}
			ings = append(ings, model.ScaledIngredient{
				Ingredient:     ing,
				ScaleFactor:    1,
				ScaledQuantity: ing.Quantity,
			})
		}

		m, err := initMatcher(flags, st)
		if err != nil {
			zap.L().Error("matcher init failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "configuration error"})
			return
		}

		matches, err := m.MatchAll(r.Context(), ings, req.MealContext)
		if err != nil {
			zap.L().Error("match request failed", zap.Error(err))
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "matching failed"})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
	}
}

type consolidateRequest struct {
	Recipes []struct {
		Title       string   `json:"title"`
		Servings    int      `json:"servings,omitempty"`
		Ingredients []string `json:"ingredients"`
	} `json:"recipes"`
	TargetServings int `json:"target_servings,omitempty"`
}

func handleConsolidate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req consolidateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if len(req.Recipes) == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "recipes are required"})
			return
		}

		var entries []consolidate.Entry
		for _, rec := range req.Recipes {
			factor := consolidate.ScaleFactor(rec.Servings, req.TargetServings)
			for _, line := range rec.Ingredients {
				ing := recipe.ParseIngredient(line)
				if ing.Name == "" {
					continue
				}
				entries = append(entries, consolidate.Entry{
					Ingredient: consolidate.ScaleIngredient(ing, factor),
					Source:     rec.Title,
				})
			}
		}

		lex, err := initLexicon()
		if err != nil {
			zap.L().Error("lexicon init failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "configuration error"})
			return
		}
		lines := consolidate.Consolidate(lex, entries)
		writeJSON(w, http.StatusOK, map[string]any{"items": lines})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
