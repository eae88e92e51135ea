// Package service assembles the storefront homepage from the catalog, the running campaign
// and the viewer's history, and drives campaign countdowns for streaming clients.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"storefront-merchandising-service/internal/clock"
	"storefront-merchandising-service/internal/countdown"
	"storefront-merchandising-service/internal/domain"
	"storefront-merchandising-service/internal/merch"
	"storefront-merchandising-service/internal/store"
)

var (
	ErrUnknownSection = errors.New("service: unknown section")
	ErrInvalidViewer  = errors.New("service: invalid viewer id")
)

const (
	DefaultPoolLimit       = 500
	DefaultCountdownTick   = time.Second
	DefaultCampaignRefresh = 30 * time.Second
)

// Homepage is one rendered homepage: every section plus the running campaign, if any.
type Homepage struct {
	Sections  merch.SectionMap    `json:"sections"`
	Campaign  *domain.Campaign    `json:"campaign,omitempty"`
	Countdown *countdown.Snapshot `json:"countdown,omitempty"`
}

// SectionResult is a single curated section together with the strategy that produced it.
type SectionResult struct {
	Section  merch.SectionName `json:"section"`
	Products []domain.Product  `json:"products"`
	Strategy string            `json:"strategy,omitempty"`
	Step     int               `json:"step"`
}

// Service is safe for concurrent use as long as the curator's random source is.
type Service struct {
	catalog   store.CatalogProvider
	campaigns store.CampaignProvider
	history   store.HistoryStore
	curator   *merch.Curator

	clock     clock.Clock
	newTicker clock.TickerFactory
	logger    *log.Logger
	poolLimit int
	tick      time.Duration
	refresh   time.Duration
}

// Option configures a Service.
type Option func(*Service)

func WithClock(c clock.Clock) Option { return func(s *Service) { s.clock = c } }

func WithLogger(l *log.Logger) Option { return func(s *Service) { s.logger = l } }

// WithPoolLimit caps how many catalog products are curated per request.
func WithPoolLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.poolLimit = n
		}
	}
}

// WithCountdown sets the countdown tick and how often WatchCountdown re-reads the active campaign.
func WithCountdown(tick, refresh time.Duration) Option {
	return func(s *Service) {
		if tick > 0 {
			s.tick = tick
		}
		if refresh > 0 {
			s.refresh = refresh
		}
	}
}

// WithTickerFactory replaces time.Ticker for both countdown ticks and campaign refreshes.
func WithTickerFactory(f clock.TickerFactory) Option {
	return func(s *Service) { s.newTicker = f }
}

func New(catalog store.CatalogProvider, campaigns store.CampaignProvider, history store.HistoryStore, curator *merch.Curator, opts ...Option) *Service {
	s := &Service{
		catalog:   catalog,
		campaigns: campaigns,
		history:   history,
		curator:   curator,
		clock:     clock.Real{},
		newTicker: clock.NewTicker,
		logger:    log.Default(),
		poolLimit: DefaultPoolLimit,
		tick:      DefaultCountdownTick,
		refresh:   DefaultCampaignRefresh,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeViewerID validates a viewer id and returns its canonical form.
// The empty string is an anonymous viewer and passes through unchanged.
func NormalizeViewerID(viewerID string) (string, error) {
	if viewerID == "" {
		return "", nil
	}
	id, err := uuid.Parse(viewerID)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidViewer, viewerID)
	}
	return id.String(), nil
}

// Homepage curates every section. Pool, campaign and history are fetched concurrently;
// an anonymous viewer gets an empty recently-viewed section.
func (s *Service) Homepage(ctx context.Context, viewerID string) (*Homepage, error) {
	viewerID, err := NormalizeViewerID(viewerID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var (
		pool     []domain.Product
		campaign *domain.Campaign
		history  []domain.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pool, err = s.catalog.ListProductPool(gctx, s.poolLimit)
		return err
	})
	g.Go(func() error {
		var err error
		campaign, err = s.activeCampaign(gctx, now)
		return err
	})
	if viewerID != "" {
		g.Go(func() error {
			var err error
			history, err = s.history.Recent(gctx, viewerID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("service: Homepage failed: %w", err)
	}

	page := &Homepage{
		Sections: s.curator.CurateHomepage(pool, campaign).WithRecentlyViewed(history),
		Campaign: campaign,
	}
	if cd := countdown.ForCampaign(campaign, now); cd != nil {
		snap := cd.Snapshot()
		page.Countdown = &snap
	}
	return page, nil
}

// Section curates a single section. The recently-viewed section comes straight from the viewer's history.
func (s *Service) Section(ctx context.Context, name, viewerID string) (*SectionResult, error) {
	section, ok := merch.ParseSection(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, name)
	}
	viewerID, err := NormalizeViewerID(viewerID)
	if err != nil {
		return nil, err
	}

	if section == merch.SectionRecentlyViewed {
		products, err := s.RecentlyViewed(ctx, viewerID)
		if err != nil {
			return nil, err
		}
		return &SectionResult{Section: section, Products: products, Step: -1}, nil
	}

	var (
		pool     []domain.Product
		campaign *domain.Campaign
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pool, err = s.catalog.ListProductPool(gctx, s.poolLimit)
		return err
	})
	g.Go(func() error {
		var err error
		campaign, err = s.activeCampaign(gctx, s.clock.Now())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("service: Section failed: %w", err)
	}

	res, _ := s.curator.Section(pool, campaign, section)
	return &SectionResult{Section: section, Products: res.Products, Strategy: res.Strategy, Step: res.Step}, nil
}

// RecentlyViewed returns the viewer's history. Anonymous viewers have none.
func (s *Service) RecentlyViewed(ctx context.Context, viewerID string) ([]domain.Product, error) {
	viewerID, err := NormalizeViewerID(viewerID)
	if err != nil {
		return nil, err
	}
	if viewerID == "" {
		return []domain.Product{}, nil
	}
	products, err := s.history.Recent(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("service: RecentlyViewed failed: %w", err)
	}
	return products, nil
}

// RecordView adds the product to the front of the viewer's history and returns the new history.
func (s *Service) RecordView(ctx context.Context, viewerID string, productID int64) ([]domain.Product, error) {
	viewerID, err := NormalizeViewerID(viewerID)
	if err != nil {
		return nil, err
	}
	if viewerID == "" {
		return nil, fmt.Errorf("%w: viewer id is required", ErrInvalidViewer)
	}
	product, err := s.catalog.GetProductByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("service: RecordView failed: %w", err)
	}
	updated, err := s.history.Record(ctx, viewerID, *product)
	if err != nil {
		return nil, fmt.Errorf("service: RecordView failed: %w", err)
	}
	return updated, nil
}

// ActiveCountdown returns the countdown of the running campaign, or store.ErrNoActiveCampaign.
func (s *Service) ActiveCountdown(ctx context.Context) (countdown.Snapshot, error) {
	now := s.clock.Now()
	campaign, err := s.campaigns.GetActiveCampaign(ctx, now)
	if err != nil {
		if errors.Is(err, store.ErrNoActiveCampaign) {
			return countdown.Snapshot{}, err
		}
		return countdown.Snapshot{}, fmt.Errorf("service: ActiveCountdown failed: %w", err)
	}
	return countdown.ForCampaign(campaign, now).Snapshot(), nil
}

// activeCampaign maps "no campaign" to nil.
func (s *Service) activeCampaign(ctx context.Context, now time.Time) (*domain.Campaign, error) {
	campaign, err := s.campaigns.GetActiveCampaign(ctx, now)
	if errors.Is(err, store.ErrNoActiveCampaign) {
		return nil, nil
	}
	return campaign, err
}
