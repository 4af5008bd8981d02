package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/brad-luo/web-tools/internal/config"
	"github.com/brad-luo/web-tools/internal/models"
	"github.com/brad-luo/web-tools/internal/pkg/ulid"
)

const (
	calendarCachePrefix = "webtools:calendar:"
	maxConcurrentFeeds  = 4
)

// FeedCache stores raw feed bodies.
type FeedCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// CalendarSources lists the configured feeds.
type CalendarSources interface {
	Calendars(ctx context.Context) (*models.CalendarConfig, error)
}

// CalendarService aggregates iCalendar feeds.
type CalendarService interface {
	// Events returns the events of one source, or of every configured source
	// when sourceID is empty. A failing feed is reported in Errors.
	Events(ctx context.Context, sourceID string) (*models.CalendarEvents, error)
}

type calendarService struct {
	sources  CalendarSources
	cache    FeedCache
	client   *http.Client
	ttl      time.Duration
	maxBytes int64
	logger   *slog.Logger
}

// NewCalendarService creates a calendar aggregator. cache may be nil.
func NewCalendarService(cfg config.CalendarConfig, sources CalendarSources, cache FeedCache, logger *slog.Logger) CalendarService {
	return NewCalendarServiceWithClient(cfg, sources, cache, logger, &http.Client{Timeout: cfg.FetchTimeout})
}

// NewCalendarServiceWithClient creates a calendar aggregator with a custom HTTP client.
// This is primarily used for testing.
func NewCalendarServiceWithClient(cfg config.CalendarConfig, sources CalendarSources, cache FeedCache, logger *slog.Logger, client *http.Client) CalendarService {
	if logger == nil {
		logger = slog.Default()
	}
	maxBytes := cfg.MaxFeedBytes
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return &calendarService{
		sources:  sources,
		cache:    cache,
		client:   client,
		ttl:      cfg.CacheTTL,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// NormalizeFeedURL rewrites webcal:// subscriptions to https://.
func NormalizeFeedURL(raw string) string {
	if rest, ok := strings.CutPrefix(raw, "webcal://"); ok {
		return "https://" + rest
	}
	return raw
}

func (s *calendarService) Events(ctx context.Context, sourceID string) (*models.CalendarEvents, error) {
	cfg, err := s.sources.Calendars(ctx)
	if err != nil {
		return nil, err
	}

	sources := cfg.DefaultCalendars
	if sourceID != "" {
		sources = nil
		for _, src := range cfg.DefaultCalendars {
			if src.ID == sourceID {
				sources = []models.CalendarSource{src}
				break
			}
		}
		if sources == nil {
			return nil, ErrNotFound
		}
	}

	results := make([][]models.CalendarEvent, len(sources))
	failures := make([]error, len(sources))

	var g errgroup.Group
	g.SetLimit(maxConcurrentFeeds)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			results[i], failures[i] = s.loadSource(ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	out := &models.CalendarEvents{Events: []models.CalendarEvent{}, Errors: []models.FeedError{}}
	for i, src := range sources {
		if failures[i] != nil {
			s.logger.Warn("calendar feed failed",
				slog.String("source", src.ID),
				slog.String("error", failures[i].Error()),
			)
			out.Errors = append(out.Errors, models.FeedError{SourceID: src.ID, Message: failures[i].Error()})
			continue
		}
		out.Events = append(out.Events, results[i]...)
	}

	sort.SliceStable(out.Events, func(a, b int) bool {
		return out.Events[a].Start.Before(out.Events[b].Start)
	})
	return out, nil
}

func (s *calendarService) loadSource(ctx context.Context, src models.CalendarSource) ([]models.CalendarEvent, error) {
	feedURL := NormalizeFeedURL(src.URL)

	body, err := s.cachedFeed(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	cal, err := ics.ParseCalendar(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return flattenEvents(cal, src), nil
}

func (s *calendarService) cachedFeed(ctx context.Context, feedURL string) (string, error) {
	key := calendarCachePrefix + feedURL

	if s.cache != nil {
		body, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			calendarFetchesTotal.WithLabelValues("cache", "hit").Inc()
			return body, nil
		case !errors.Is(err, redis.Nil):
			s.logger.Warn("calendar cache read failed", slog.String("error", err.Error()))
		}
	}

	body, err := s.fetch(ctx, feedURL)
	if err != nil {
		calendarFetchesTotal.WithLabelValues("remote", "error").Inc()
		return "", err
	}
	calendarFetchesTotal.WithLabelValues("remote", "ok").Inc()

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.Set(ctx, key, body, s.ttl); err != nil {
			s.logger.Warn("calendar cache write failed", slog.String("error", err.Error()))
		}
	}
	return body, nil
}

func (s *calendarService) fetch(ctx context.Context, feedURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read feed: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("feed exceeds %d bytes", s.maxBytes)
	}
	return string(data), nil
}

func propValue(e *ics.VEvent, p ics.ComponentProperty) string {
	if prop := e.GetProperty(p); prop != nil {
		return prop.Value
	}
	return ""
}

func flattenEvents(cal *ics.Calendar, src models.CalendarSource) []models.CalendarEvent {
	var events []models.CalendarEvent
	for _, e := range cal.Events() {
		start, err := e.GetStartAt()
		if err != nil {
			continue
		}
		end, err := e.GetEndAt()
		if err != nil || end.Before(start) {
			end = start
		}

		uid := e.Id()
		if uid == "" {
			uid = ulid.New()
		}

		title := propValue(e, ics.ComponentPropertySummary)
		if title == "" {
			title = "Untitled Event"
		}

		events = append(events, models.CalendarEvent{
			ID:            src.ID + ":" + uid,
			Title:         title,
			Start:         start,
			End:           end,
			Description:   propValue(e, ics.ComponentPropertyDescription),
			Location:      propValue(e, ics.ComponentPropertyLocation),
			CalendarName:  src.Name,
			CalendarColor: src.Color,
		})
	}
	return events
}

// Compile-time check to ensure calendarService implements CalendarService.
var _ CalendarService = (*calendarService)(nil)
