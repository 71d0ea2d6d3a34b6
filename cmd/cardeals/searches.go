package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"cardeals/internal/config"
	"cardeals/internal/database"
	"cardeals/internal/kafka"
	"cardeals/internal/listing"
)

type searchAdmin interface {
	CreateSearch(userID *uint, name string, params listing.SearchParams, maxPages int) (*database.SavedSearch, error)
	ListSearches() ([]*database.SavedSearch, error)
	GetSearchByID(id uint) (*database.SavedSearch, error)
	ToggleSearch(id uint) error
	DeleteSearch(id uint) error
}

type searchCreatedPublisher interface {
	PublishSearchCreated(ctx context.Context, event kafka.SearchCreatedEvent) error
}

func newSearchesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "searches",
		Short: "Manage saved searches run by the scraper service",
	}

	var (
		params   listing.SearchParams
		name     string
		maxPages int
		publish  bool
	)
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Save a search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(func(cfg config.Config, db *database.DB) error {
				var pub searchCreatedPublisher
				if publish {
					producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, commandLogger(cfg))
					defer producer.Close()
					pub = producer
				}
				return addSearch(cmd.Context(), db, pub, cmd.OutOrStdout(), name, params, maxPages)
			})
		},
	}
	f := addCmd.Flags()
	f.StringVar(&name, "name", "", "Search name (default: brand and model)")
	f.StringVar(&params.Brand, "brand", "", "Car brand")
	f.StringVar(&params.Model, "model", "", "Car model")
	f.IntVar(&params.YearStart, "year-start", 0, "Minimum year")
	f.IntVar(&params.PriceMax, "price-max", 0, "Maximum price in EUR")
	f.IntVar(&params.KmMax, "km-max", 0, "Maximum kilometers")
	f.StringVar(&params.EngineType, "engine-type", "", "Engine type")
	f.StringVar(&params.GearboxType, "gearbox-type", "", "Gearbox type")
	f.IntVar(&maxPages, "max-pages", 10, "Maximum pages per run")
	f.BoolVar(&publish, "publish", false, "Announce the search to the scraper service")
	_ = addCmd.MarkFlagRequired("brand")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(func(_ config.Config, db *database.DB) error {
				return listSearches(db, cmd.OutOrStdout())
			})
		},
	}

	toggleCmd := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Pause or resume a saved search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withStore(func(_ config.Config, db *database.DB) error {
				return toggleSearch(db, cmd.OutOrStdout(), id)
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withStore(func(_ config.Config, db *database.DB) error {
				return deleteSearch(db, cmd.OutOrStdout(), id)
			})
		},
	}

	cmd.AddCommand(addCmd, listCmd, toggleCmd, deleteCmd)
	return cmd
}

func withStore(fn func(cfg config.Config, db *database.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	return fn(cfg, db)
}

func parseID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid search id %q", arg)
	}
	return uint(id), nil
}

func addSearch(ctx context.Context, db searchAdmin, pub searchCreatedPublisher, out io.Writer, name string, params listing.SearchParams, maxPages int) error {
	search, err := db.CreateSearch(nil, name, params, maxPages)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✅ Saved search %d: %s\n", search.ID, search.Name)

	if pub == nil {
		return nil
	}
	return pub.PublishSearchCreated(ctx, kafka.SearchCreatedEvent{
		SearchID:  search.ID,
		Name:      search.Name,
		Params:    search.Params(),
		MaxPages:  search.MaxPages,
		CreatedAt: search.CreatedAt,
	})
}

func listSearches(db searchAdmin, out io.Writer) error {
	searches, err := db.ListSearches()
	if err != nil {
		return err
	}
	if len(searches) == 0 {
		fmt.Fprintln(out, "No saved searches")
		return nil
	}
	for _, s := range searches {
		state := "active"
		if !s.IsActive {
			state = "paused"
		}
		fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", s.ID, state, s.Name, describe(s.Params()))
	}
	return nil
}

func describe(p listing.SearchParams) string {
	text := p.Brand
	if p.Model != "" {
		text += " " + p.Model
	}
	if p.YearStart > 0 {
		text += fmt.Sprintf(", from %d", p.YearStart)
	}
	if p.PriceMax > 0 {
		text += fmt.Sprintf(", up to %d EUR", p.PriceMax)
	}
	if p.KmMax > 0 {
		text += fmt.Sprintf(", up to %d km", p.KmMax)
	}
	if p.EngineType != "" {
		text += ", " + p.EngineType
	}
	if p.GearboxType != "" {
		text += ", " + p.GearboxType
	}
	return text
}

func toggleSearch(db searchAdmin, out io.Writer, id uint) error {
	search, err := db.GetSearchByID(id)
	if err != nil {
		return err
	}
	if search == nil {
		return fmt.Errorf("search %d not found", id)
	}
	if err := db.ToggleSearch(id); err != nil {
		return err
	}
	state := "paused"
	if !search.IsActive {
		state = "active"
	}
	fmt.Fprintf(out, "%s is now %s\n", search.Name, state)
	return nil
}

func deleteSearch(db searchAdmin, out io.Writer, id uint) error {
	search, err := db.GetSearchByID(id)
	if err != nil {
		return err
	}
	if search == nil {
		return fmt.Errorf("search %d not found", id)
	}
	if err := db.DeleteSearch(id); err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted search %d: %s\n", id, search.Name)
	return nil
}
