package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brad-luo/web-tools/internal/config"
	"github.com/brad-luo/web-tools/internal/database"
	"github.com/brad-luo/web-tools/internal/models"
)

const teamFeed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//web-tools//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:late@example.com\r\n" +
	"DTSTAMP:20260301T000000Z\r\n" +
	"DTSTART:20260305T150000Z\r\n" +
	"DTEND:20260305T160000Z\r\n" +
	"SUMMARY:Retro\r\n" +
	"LOCATION:Room 2\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:early@example.com\r\n" +
	"DTSTAMP:20260301T000000Z\r\n" +
	"DTSTART:20260304T090000Z\r\n" +
	"DTEND:20260304T093000Z\r\n" +
	"SUMMARY:Standup\r\n" +
	"DESCRIPTION:Daily sync\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

const personalFeed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//web-tools//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:dentist@example.com\r\n" +
	"DTSTAMP:20260301T000000Z\r\n" +
	"DTSTART:20260304T120000Z\r\n" +
	"DTEND:20260304T130000Z\r\n" +
	"SUMMARY:Dentist\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

type staticSources struct {
	cfg *models.CalendarConfig
}

func (s staticSources) Calendars(ctx context.Context) (*models.CalendarConfig, error) {
	return s.cfg, nil
}

func newFeedServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/calendar")
		switch r.URL.Path {
		case "/team.ics":
			w.Write([]byte(teamFeed))
		case "/personal.ics":
			w.Write([]byte(personalFeed))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestCalendar(t *testing.T, serverURL string, cache FeedCache) CalendarService {
	t.Helper()
	sources := staticSources{cfg: &models.CalendarConfig{DefaultCalendars: []models.CalendarSource{
		{ID: "team", Name: "Team", URL: serverURL + "/team.ics", Color: "#3B82F6"},
		{ID: "personal", Name: "Personal", URL: serverURL + "/personal.ics", Color: "#10B981"},
		{ID: "broken", Name: "Broken", URL: serverURL + "/missing.ics", Color: "#EF4444"},
	}}}
	cfg := config.CalendarConfig{CacheTTL: 10 * time.Minute, FetchTimeout: 5 * time.Second}
	return NewCalendarServiceWithClient(cfg, sources, cache, discardLogger(), http.DefaultClient)
}

func TestNormalizeFeedURL(t *testing.T) {
	assert.Equal(t, "https://p1.icloud.com/published/2/abc", NormalizeFeedURL("webcal://p1.icloud.com/published/2/abc"))
	assert.Equal(t, "https://example.com/a.ics", NormalizeFeedURL("https://example.com/a.ics"))
}

func TestCalendarEvents_MergesAndSorts(t *testing.T) {
	var hits atomic.Int32
	server := newFeedServer(t, &hits)
	svc := newTestCalendar(t, server.URL, nil)

	got, err := svc.Events(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, got.Events, 3)
	assert.Equal(t, "Standup", got.Events[0].Title)
	assert.Equal(t, "Daily sync", got.Events[0].Description)
	assert.Equal(t, "Dentist", got.Events[1].Title)
	assert.Equal(t, "Personal", got.Events[1].CalendarName)
	assert.Equal(t, "Retro", got.Events[2].Title)
	assert.Equal(t, "Room 2", got.Events[2].Location)
	assert.Equal(t, "team:late@example.com", got.Events[2].ID)
	assert.Equal(t, time.Date(2026, 3, 5, 16, 0, 0, 0, time.UTC), got.Events[2].End.UTC())

	require.Len(t, got.Errors, 1)
	assert.Equal(t, "broken", got.Errors[0].SourceID)
}

func TestCalendarEvents_SingleSource(t *testing.T) {
	var hits atomic.Int32
	server := newFeedServer(t, &hits)
	svc := newTestCalendar(t, server.URL, nil)

	got, err := svc.Events(context.Background(), "personal")
	require.NoError(t, err)
	require.Len(t, got.Events, 1)
	assert.Equal(t, "#10B981", got.Events[0].CalendarColor)
	assert.Empty(t, got.Errors)

	_, err = svc.Events(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCalendarEvents_CachesFeeds(t *testing.T) {
	var hits atomic.Int32
	server := newFeedServer(t, &hits)

	mr := miniredis.RunT(t)
	cache := database.NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	svc := newTestCalendar(t, server.URL, cache)
	ctx := context.Background()

	_, err := svc.Events(ctx, "team")
	require.NoError(t, err)
	_, err = svc.Events(ctx, "team")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	mr.FastForward(11 * time.Minute)
	_, err = svc.Events(ctx, "team")
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestCalendarEvents_CacheDownFallsBackToRemote(t *testing.T) {
	var hits atomic.Int32
	server := newFeedServer(t, &hits)

	mr := miniredis.RunT(t)
	cache := database.NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	mr.Close()
	svc := newTestCalendar(t, server.URL, cache)

	got, err := svc.Events(context.Background(), "team")
	require.NoError(t, err)
	assert.Len(t, got.Events, 2)
}

func TestCalendarEvents_FeedTooLarge(t *testing.T) {
	var hits atomic.Int32
	server := newFeedServer(t, &hits)
	sources := staticSources{cfg: &models.CalendarConfig{DefaultCalendars: []models.CalendarSource{
		{ID: "team", Name: "Team", URL: server.URL + "/team.ics"},
	}}}
	svc := NewCalendarServiceWithClient(config.CalendarConfig{MaxFeedBytes: 64}, sources, nil, discardLogger(), http.DefaultClient)

	got, err := svc.Events(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got.Events)
	require.Len(t, got.Errors, 1)
	assert.Contains(t, got.Errors[0].Message, "exceeds")
}
