package usecase

import (
	"context"
	"fmt"
	"strings"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/domain/repository"
	xhttp "FxPulse/pkg/http"
	applogger "FxPulse/pkg/logger"
	xutil "FxPulse/pkg/util"
)

// CalendarEntry is one row of the economic calendar feed.
type CalendarEntry struct {
	Title   string `json:"title" validate:"required,max=255"`
	Country string `json:"country" validate:"required,alpha,max=8"`
	Date    string `json:"date" validate:"required"`
	Impact  string `json:"impact" validate:"oneof=high medium low"`
}

// CalendarSync imports the external calendar into the news store.
type CalendarSync struct {
	client *xhttp.Client
	url    string
	news   repository.NewsStore
	gate   *NewsGate
	log    *applogger.Logger
}

func NewCalendarSync(client *xhttp.Client, url string, news repository.NewsStore, gate *NewsGate, log *applogger.Logger) *CalendarSync {
	return &CalendarSync{client: client, url: url, news: news, gate: gate, log: log}
}

// Enabled reports whether a feed URL is configured.
func (c *CalendarSync) Enabled() bool { return c.url != "" }

// Run fetches the feed and upserts it. Entries with an unreadable date or an
// impact outside High/Medium/Low are skipped.
func (c *CalendarSync) Run(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	var entries []CalendarEntry
	if err := c.client.GetJSON(ctx, c.url, nil, &entries); err != nil {
		return fmt.Errorf("fetch calendar: %w", err)
	}

	events := make([]models.NewsEvent, 0, len(entries))
	skipped := 0
	for _, e := range entries {
		ev, err := toNewsEvent(e)
		if err != nil {
			c.log.Debug("calendar entry skipped", applogger.String("title", e.Title), applogger.Error(err))
			skipped++
			continue
		}
		events = append(events, ev)
	}

	n, err := c.news.Upsert(ctx, events)
	if err != nil {
		return fmt.Errorf("store calendar: %w", err)
	}
	if c.gate != nil {
		c.gate.Invalidate()
	}
	c.log.Info("calendar synced",
		applogger.Int("fetched", len(entries)),
		applogger.Int64("stored", n),
		applogger.Int("skipped", skipped),
	)
	return nil
}

func toNewsEvent(e CalendarEntry) (models.NewsEvent, error) {
	e.Title = strings.TrimSpace(e.Title)
	e.Country = strings.ToUpper(strings.TrimSpace(e.Country))
	e.Date = strings.TrimSpace(e.Date)
	e.Impact = strings.ToLower(strings.TrimSpace(e.Impact))
	if verr := xhttp.ValidateStruct(&e); verr != nil {
		return models.NewsEvent{}, verr
	}
	ts, ok := xutil.ParseTime(e.Date)
	if !ok {
		return models.NewsEvent{}, fmt.Errorf("unreadable date %q", e.Date)
	}
	impact := map[string]models.Impact{
		"high":   models.ImpactHigh,
		"medium": models.ImpactMedium,
		"low":    models.ImpactLow,
	}[e.Impact]
	return models.NewsEvent{Title: e.Title, Currency: e.Country, Impact: impact, Timestamp: ts.UTC()}, nil
}
