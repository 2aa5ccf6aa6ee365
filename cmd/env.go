package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/pflag"

	"github.com/sells-group/shopper-cli/internal/dietary"
	"github.com/sells-group/shopper-cli/internal/lexicon"
	"github.com/sells-group/shopper-cli/internal/matcher"
	"github.com/sells-group/shopper-cli/internal/store"
	"github.com/sells-group/shopper-cli/pkg/storefront"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "shopper.db"
		}
		return store.NewSQLite(path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initStorefront() storefront.Client {
	opts := []storefront.Option{storefront.WithRateLimit(cfg.Storefront.RateLimit)}
	if cfg.Storefront.BaseURL != "" {
		opts = append(opts, storefront.WithBaseURL(cfg.Storefront.BaseURL))
	}
	return storefront.NewClient(opts...)
}

// matchFlags are the per-run preference overrides shared by match and plan.
type matchFlags struct {
	organic          bool
	noOrganic        bool
	budget           bool
	organicThreshold float64
	alternatives     int
	allergies        []string
	dietary          []string
	mealContext      string
	output           string
}

func registerMatchFlags(f *matchFlags, flags *pflag.FlagSet) {
	flags.BoolVar(&f.organic, "organic", false, "prefer organic products when price-competitive")
	flags.BoolVar(&f.noOrganic, "no-organic", false, "disable organic preference regardless of config")
	flags.BoolVar(&f.budget, "budget", false, "reward low unit prices")
	flags.Float64Var(&f.organicThreshold, "organic-threshold", 0, "max DKK above the cheapest non-organic option (default from config)")
	flags.IntVar(&f.alternatives, "alternatives", 0, "alternatives to keep per ingredient (default from config)")
	flags.StringSliceVar(&f.allergies, "allergies", nil, "allergies to screen for (e.g. lactose,gluten,nuts)")
	flags.StringSliceVar(&f.dietary, "dietary", nil, "dietary restrictions (e.g. vegan,vegetarian)")
	flags.StringVar(&f.mealContext, "context", "", "meal context for ambiguous ingredients (e.g. 'pasta med kylling')")
	flags.StringVar(&f.output, "output", "table", "output format: table, json or csv")
}

// matcherOptions merges config defaults with per-run flag overrides.
func matcherOptions(f matchFlags) matcher.Options {
	opts := matcher.Options{
		PreferOrganic:     cfg.Matcher.PreferOrganic,
		SmartOrganic:      cfg.Matcher.SmartOrganic,
		PreferBudget:      cfg.Matcher.PreferBudget || f.budget,
		OrganicThreshold:  cfg.Matcher.OrganicThreshold,
		SmartOrganicBonus: cfg.Matcher.SmartOrganicBonus,
		SmartOrganicMalus: cfg.Matcher.SmartOrganicMalus,
		MaxAlternatives:   cfg.Matcher.MaxAlternatives,
		Concurrency:       cfg.Matcher.Concurrency,
	}
	if f.organic {
		opts.SmartOrganic = true
	}
	if f.noOrganic {
		opts.PreferOrganic = false
		opts.SmartOrganic = false
	}
	if f.organicThreshold > 0 {
		opts.OrganicThreshold = f.organicThreshold
	}
	if f.alternatives > 0 {
		opts.MaxAlternatives = f.alternatives
	}
	return opts
}

// constraintsFor merges the standing household constraints with per-run
// flag additions.
func constraintsFor(f matchFlags) dietary.Constraints {
	return dietary.Constraints{
		Allergies: append(append([]string{}, cfg.Dietary.Allergies...), f.allergies...),
		Dietary:   append(append([]string{}, cfg.Dietary.Dietary...), f.dietary...),
	}
}

// initLexicon returns the built-in tables with the configured override
// file merged on top.
func initLexicon() (*lexicon.Lexicon, error) {
	lex := lexicon.Default()
	if cfg.Lexicon.Path != "" {
		if err := lex.ApplyOverrides(cfg.Lexicon.Path); err != nil {
			return nil, err
		}
	}
	return lex, nil
}

// initMatcher wires the full matching stack. The store is optional; when
// st is nil the matcher skips preference bonuses and price recording.
func initMatcher(f matchFlags, st store.Store) (*matcher.Matcher, error) {
	lex, err := initLexicon()
	if err != nil {
		return nil, err
	}
	var prefs matcher.PreferenceStore
	var prices matcher.PriceRecorder
	if st != nil {
		prefs = st
		prices = st
	}
	return matcher.New(initStorefront(), prefs, prices, lex, constraintsFor(f), matcherOptions(f)), nil
}
