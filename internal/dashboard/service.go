package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/claimsight/claimsight/internal/dataset"
	"github.com/claimsight/claimsight/internal/export"
	"github.com/claimsight/claimsight/internal/render"
)

// Cache is the subset of the versioned Redis cache the service relies on.
type Cache interface {
	BuildKey(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error
	FetchBytes(ctx context.Context, key string, loader func(context.Context) ([]byte, error)) ([]byte, error)
}

// WidgetPayload is the JSON form of one widget: its state and derived spec.
type WidgetPayload struct {
	Widget   Widget      `json:"widget"`
	State    ViewState   `json:"state"`
	Spec     render.Spec `json:"spec"`
	Years    []string    `json:"years,omitempty"`
	Modes    []string    `json:"modes,omitempty"`
	Variants []string    `json:"variants,omitempty"`
	Query    string      `json:"query"`
}

// Service builds request-scoped controllers over a shared store and caches
// derived payloads and raster exports. The store may be swapped while
// serving; each controller keeps the store it was built with.
type Service struct {
	store  atomic.Pointer[dataset.Store]
	cache  Cache
	logger *slog.Logger
}

// NewService wires the store with an optional cache.
func NewService(store *dataset.Store, cache Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{cache: cache, logger: logger}
	s.store.Store(store)
	return s
}

// Store returns the dataset being served.
func (s *Service) Store() *dataset.Store { return s.store.Load() }

// Replace swaps the served dataset and reports whether its checksum changed.
// Cached entries are keyed by cache version, not checksum, so callers bump
// the cache alongside.
func (s *Service) Replace(store *dataset.Store) bool {
	if store == nil {
		return false
	}
	old := s.store.Swap(store)
	return old == nil || old.Checksum() != store.Checksum()
}

// Controller builds a fresh controller with state restored from q.
func (s *Service) Controller(q url.Values, renderer Renderer) *Controller {
	c := NewController(s.Store(), renderer, s.logger)
	if q != nil {
		c.Apply(q)
	}
	return c
}

// Widget returns the payload for one widget under the state in q.
func (s *Service) Widget(ctx context.Context, id string, q url.Values) (WidgetPayload, error) {
	c := s.Controller(q, nil)
	w, ok := c.Catalog().Lookup(id)
	if !ok {
		return WidgetPayload{}, fmt.Errorf("%w: %s", ErrUnknownWidget, id)
	}
	load := func(context.Context) (interface{}, error) { return s.payload(c, w) }
	var out WidgetPayload
	if s.cache == nil {
		v, err := load(ctx)
		if err != nil {
			return WidgetPayload{}, err
		}
		out = v.(WidgetPayload)
	} else {
		key, err := s.cache.BuildKey(ctx, "widget", id, datasetTag(c.Store()), stateToken(c, id))
		if err != nil {
			return WidgetPayload{}, err
		}
		if err := s.cache.FetchJSON(ctx, key, &out, load); err != nil {
			return WidgetPayload{}, err
		}
	}
	// The cached entry is shared by every dashboard with this widget state.
	out.Query = c.Encode().Encode()
	return out, nil
}

// WidgetPNG rasterises one widget under the state in q.
func (s *Service) WidgetPNG(ctx context.Context, id string, q url.Values) ([]byte, error) {
	c := s.Controller(q, nil)
	spec, err := c.Spec(id)
	if err != nil {
		return nil, err
	}
	load := func(context.Context) ([]byte, error) { return export.PNG(spec, render.Size{}) }
	if s.cache == nil {
		return load(ctx)
	}
	key, err := s.cache.BuildKey(ctx, "png", id, datasetTag(c.Store()), stateToken(c, id))
	if err != nil {
		return nil, err
	}
	return s.cache.FetchBytes(ctx, key, load)
}

// Warm renders the default-state PNG of every widget into the cache. Widgets
// without a raster form or without data are skipped.
func (s *Service) Warm(ctx context.Context) (int, error) {
	warmed := 0
	for _, w := range DefaultCatalog() {
		if err := ctx.Err(); err != nil {
			return warmed, err
		}
		if _, err := s.WidgetPNG(ctx, w.ID, nil); err != nil {
			if errors.Is(err, export.ErrUnsupportedKind) || errors.Is(err, export.ErrNothingToDraw) {
				s.logger.Debug("warmup: skip widget", slog.String("widget", w.ID), slog.Any("error", err))
				continue
			}
			return warmed, fmt.Errorf("warm %s: %w", w.ID, err)
		}
		warmed++
	}
	return warmed, nil
}

func (s *Service) payload(c *Controller, w Widget) (WidgetPayload, error) {
	spec, err := c.Spec(w.ID)
	if err != nil {
		return WidgetPayload{}, err
	}
	st, _ := c.State(w.ID)
	p := WidgetPayload{
		Widget:   w,
		State:    st,
		Spec:     spec,
		Variants: c.Store().Variants(w.Domain),
	}
	if w.Shape == ShapeTrend {
		p.Years = c.Store().Years(w.Domain, dataset.ModeMoM)
		for _, m := range c.Store().Modes(w.Domain) {
			p.Modes = append(p.Modes, string(m))
		}
	}
	return p, nil
}

// datasetTag scopes cache keys to the store that produced the entry. A cache
// version can be published before every server has swapped its store.
func datasetTag(store *dataset.Store) string {
	sum := store.Checksum()
	if len(sum) > datasetTagLen {
		sum = sum[:datasetTagLen]
	}
	return sum
}

const datasetTagLen = 16

// stateToken is the normalised query for the parts of state that affect one
// widget. Invalid parameters have already been dropped by Apply.
func stateToken(c *Controller, id string) string {
	full := c.Encode()
	scoped := url.Values{}
	for k, v := range full {
		if k == ParamTheme || strings.HasPrefix(k, id+".") {
			scoped[k] = v
		}
	}
	if len(scoped) == 0 {
		return "default"
	}
	return scoped.Encode()
}
