package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/unfold"
)

// Ensure the decorators implement their interfaces.
var (
	_ unfold.PageOpener  = (*LoggingOpener)(nil)
	_ unfold.PageSession = (*LoggingSession)(nil)
	_ unfold.Element     = (*LoggingElement)(nil)
)

// LoggingOpener wraps a PageOpener with logging.
type LoggingOpener struct {
	next   unfold.PageOpener
	logger *slog.Logger
}

// NewLoggingOpener creates a new LoggingOpener.
func NewLoggingOpener(next unfold.PageOpener, logger *slog.Logger) *LoggingOpener {
	return &LoggingOpener{next: next, logger: logger}
}

// Open logs the page being opened and wraps the session so that its queries
// and captures are logged too.
func (o *LoggingOpener) Open(ctx context.Context, url string) (session unfold.PageSession, err error) {
	defer func(begin time.Time) {
		o.logger.Info("open",
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())

	session, err = o.next.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	return &LoggingSession{next: session, url: url, logger: o.logger}, nil
}

// LoggingSession wraps a PageSession with debug logging.
type LoggingSession struct {
	next   unfold.PageSession
	url    string
	logger *slog.Logger
}

// NewLoggingSession creates a new LoggingSession.
func NewLoggingSession(next unfold.PageSession, url string, logger *slog.Logger) *LoggingSession {
	return &LoggingSession{next: next, url: url, logger: logger}
}

// Query delegates to the wrapped session and wraps the returned elements so
// that clicks are logged. Queries are polled many times per step, so they are
// logged at debug level.
func (s *LoggingSession) Query(ctx context.Context, selector string) (elements []unfold.Element, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("query",
			"url", s.url,
			"selector", selector,
			"count", len(elements),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())

	elements, err = s.next.Query(ctx, selector)
	if err != nil {
		return nil, err
	}
	for i, el := range elements {
		elements[i] = &LoggingElement{next: el, url: s.url, selector: selector, logger: s.logger}
	}
	return elements, nil
}

// URL delegates to the wrapped session.
func (s *LoggingSession) URL(ctx context.Context) (string, error) {
	return s.next.URL(ctx)
}

// HTML logs the size of the captured document.
func (s *LoggingSession) HTML(ctx context.Context) (html string, err error) {
	defer func(begin time.Time) {
		s.logger.Info("capture",
			"url", s.url,
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.HTML(ctx)
}

// Close delegates to the wrapped session.
func (s *LoggingSession) Close() error {
	return s.next.Close()
}

// LoggingElement wraps an Element with logging of clicks.
type LoggingElement struct {
	next     unfold.Element
	url      string
	selector string
	logger   *slog.Logger
}

// State delegates to the wrapped element.
func (e *LoggingElement) State(ctx context.Context) (unfold.ElementState, error) {
	return e.next.State(ctx)
}

// Click delegates to the wrapped element and logs the click.
func (e *LoggingElement) Click(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		e.logger.Info("click",
			"url", e.url,
			"selector", e.selector,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Click(ctx)
}
