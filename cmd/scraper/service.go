package main

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"cardeals/internal/database"
	"cardeals/internal/kafka"
	"cardeals/internal/listing"
	"cardeals/internal/scraper"
)

type searchStore interface {
	GetActiveSearches() ([]*database.SavedSearch, error)
	GetSearchByID(id uint) (*database.SavedSearch, error)
	GetUserByID(id uint) (*database.User, error)
	KnownLinks(searchURL string) (map[string]bool, error)
	SyncCrawl(searchURL string, records []listing.Record, at time.Time) (database.SyncStats, error)
}

type listingPublisher interface {
	PublishNewListings(ctx context.Context, event kafka.NewListingsEvent) error
}

type ScraperService struct {
	db       searchStore
	scraper  scraper.Scraper
	producer listingPublisher
	log      logrus.FieldLogger

	interval time.Duration
	// pause separates consecutive searches of one session.
	pause time.Duration
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time

	activeSearches map[uint]*database.SavedSearch
	searchesMutex  sync.RWMutex

	// runMutex keeps crawls strictly sequential across the ticker and
	// event-triggered runs.
	runMutex sync.Mutex
	// ctx bounds runs started by events. Set before consuming.
	ctx context.Context
	wg  sync.WaitGroup
}

func NewScraperService(db searchStore, s scraper.Scraper, producer listingPublisher, interval time.Duration, log logrus.FieldLogger) *ScraperService {
	return &ScraperService{
		db:             db,
		scraper:        s,
		producer:       producer,
		log:            log.WithField("component", "scraper_service"),
		interval:       interval,
		pause:          3 * time.Second,
		sleep:          sleepContext,
		now:            time.Now,
		activeSearches: make(map[uint]*database.SavedSearch),
		ctx:            context.Background(),
	}
}

func (s *ScraperService) loadExistingSearches() error {
	s.log.Info("Loading existing searches from database...")

	searches, err := s.db.GetActiveSearches()
	if err != nil {
		return err
	}

	s.searchesMutex.Lock()
	defer s.searchesMutex.Unlock()

	for _, search := range searches {
		s.activeSearches[search.ID] = search
		s.log.Debugf("Loaded search: ID=%d, Name='%s'", search.ID, search.Name)
	}

	s.log.Infof("Loaded %d active searches for monitoring", len(searches))
	return nil
}

// startPeriodicScraping runs one session right away and then one per tick
// until ctx is done.
func (s *ScraperService) startPeriodicScraping(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("Starting initial scraping...")
	s.scrapeAllSearches(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Stopping periodic scraper due to shutdown signal...")
			return
		case <-ticker.C:
			s.log.Info("Starting scheduled scraping session...")
			s.scrapeAllSearches(ctx)
		}
	}
}

func (s *ScraperService) snapshot() []*database.SavedSearch {
	s.searchesMutex.RLock()
	defer s.searchesMutex.RUnlock()

	searches := make([]*database.SavedSearch, 0, len(s.activeSearches))
	for _, search := range s.activeSearches {
		searches = append(searches, search)
	}
	sort.Slice(searches, func(i, j int) bool { return searches[i].ID < searches[j].ID })
	return searches
}

func (s *ScraperService) scrapeAllSearches(ctx context.Context) {
	startTime := time.Now()
	searches := s.snapshot()

	if len(searches) == 0 {
		s.log.Info("No active searches to scrape")
		return
	}

	s.log.Infof("Starting scraping session: %d searches to process", len(searches))

	successCount := 0
	errorCount := 0

	for i, search := range searches {
		if ctx.Err() != nil {
			break
		}
		log := s.log.WithFields(logrus.Fields{"search_id": search.ID, "progress": fmt.Sprintf("%d/%d", i+1, len(searches))})

		if err := s.scrapeSearch(ctx, search); err != nil {
			log.WithError(err).Error("Error scraping search")
			errorCount++
		} else {
			log.Info("✅ Successfully scraped search")
			successCount++
		}

		if i < len(searches)-1 {
			if err := s.sleep(ctx, s.pause); err != nil {
				break
			}
		}
	}

	s.log.WithFields(logrus.Fields{
		"duration": time.Since(startTime).Round(time.Second),
		"success":  successCount,
		"errors":   errorCount,
		"total":    len(searches),
	}).Info("Scraping session completed")
}

func (s *ScraperService) scrapeSearch(ctx context.Context, search *database.SavedSearch) error {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()

	params := search.Params()
	searchURL := scraper.BuildSearchURL(params)

	known, err := s.db.KnownLinks(searchURL)
	if err != nil {
		return err
	}

	result, err := s.scraper.Crawl(ctx, params, search.MaxPages)
	if err != nil {
		return fmt.Errorf("failed to scrape mobile.bg: %w", err)
	}

	stats, err := s.db.SyncCrawl(result.SearchURL, result.Records, s.now())
	if err != nil {
		return fmt.Errorf("failed to store crawl: %w", err)
	}
	s.log.Infof("Search %d: %d listings, %d new, %d removed", search.ID, stats.Upserted, len(stats.New), stats.Removed)

	if len(known) == 0 {
		s.log.Infof("First crawl of search %d seeded the store, no notification", search.ID)
		return nil
	}
	if len(stats.New) == 0 || s.producer == nil {
		return nil
	}

	event := kafka.NewListingsEvent{
		SearchID:   search.ID,
		ChatID:     s.ownerChat(search),
		SearchName: search.Name,
		SearchURL:  result.SearchURL,
		Listings:   stats.New,
		FoundAt:    s.now(),
	}
	if err := s.producer.PublishNewListings(ctx, event); err != nil {
		return fmt.Errorf("failed to publish new listings: %w", err)
	}
	return nil
}

func (s *ScraperService) ownerChat(search *database.SavedSearch) int64 {
	if search.UserID == nil {
		return 0
	}
	user, err := s.db.GetUserByID(*search.UserID)
	if err != nil || user == nil {
		return 0
	}
	return user.TelegramID
}

func (s *ScraperService) HandleSearchCreated(event kafka.SearchCreatedEvent) error {
	s.log.WithFields(logrus.Fields{"search_id": event.SearchID, "name": event.Name}).Info("🆕 Received search_created event")

	search, err := s.db.GetSearchByID(event.SearchID)
	if err != nil {
		return err
	}
	if search == nil {
		s.log.Warnf("Search %d no longer exists", event.SearchID)
		return nil
	}

	s.searchesMutex.Lock()
	s.activeSearches[search.ID] = search
	searchCount := len(s.activeSearches)
	s.searchesMutex.Unlock()

	s.log.Infof("Added search %d to active monitoring, total %d", search.ID, searchCount)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.scrapeSearch(s.ctx, search); err != nil {
			s.log.WithError(err).Errorf("Error in immediate scraping of search %d", search.ID)
		}
	}()

	return nil
}

func (s *ScraperService) HandleScrapeRequest(event kafka.ScrapeRequestEvent) error {
	s.log.Info("Received scrape_request event - triggering manual scraping")

	if event.SearchID == 0 {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.scrapeAllSearches(s.ctx)
		}()
		return nil
	}

	search, err := s.db.GetSearchByID(event.SearchID)
	if err != nil {
		return err
	}
	if search == nil {
		return fmt.Errorf("search %d not found", event.SearchID)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.scrapeSearch(s.ctx, search); err != nil {
			s.log.WithError(err).Errorf("Error in manual scraping of search %d", search.ID)
		}
	}()
	return nil
}

func (s *ScraperService) HandleNewListings(event kafka.NewListingsEvent) error {
	s.log.Debugf("Received new_listings event (SearchID=%d) - ignoring (for notification service)", event.SearchID)
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
