// Package catalog es el cliente HTTP del catálogo externo (TMDB v3).
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"mediacore/internal/logging"
	"mediacore/internal/metrics"
	"mediacore/internal/models"

	"github.com/avast/retry-go/v4"
	"github.com/goccy/go-json"
	"github.com/sourcegraph/conc"
)

var (
	// ErrNotFound: el catálogo respondió 404. No se reintenta.
	ErrNotFound = errors.New("catalog: not found")
	// ErrTransient: red caída, timeout o status no 2xx distinto de 404.
	ErrTransient = errors.New("catalog: upstream unavailable")
)

// StatusError es una respuesta no 2xx del catálogo.
type StatusError struct {
	Path   string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog: GET %s -> %d", e.Path, e.Status)
}

func (e *StatusError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return ErrNotFound
	}
	return ErrTransient
}

// DecodeError es un body que no se pudo parsear. Tampoco se reintenta.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("catalog: decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() []error { return []error{e.Err, ErrTransient} }

type Resource string

const (
	ResDetails      Resource = "details"
	ResVideos       Resource = "videos"
	ResCredits      Resource = "credits"
	ResKeywords     Resource = "keywords"
	ResMovieCredits Resource = "movie_credits"
	ResTVCredits    Resource = "tv_credits"
)

type Config struct {
	BaseURL    string
	APIKey     string
	Language   string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	HTTPClient *http.Client
}

type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, http: hc}
}

// ================== BUNDLES ==================

// Bundle junta los cuatro sub-recursos de un item. Un sub-recurso que falló
// queda nil y su error en Failures.
type Bundle struct {
	Details  *Details
	Videos   *Videos
	Credits  *Credits
	Keywords *Keywords
	Failures map[Resource]error
}

// Complete: los cuatro sub-recursos llegaron.
func (b *Bundle) Complete() bool {
	return len(b.Failures) == 0
}

// NotFound: el request principal (details) devolvió 404.
func (b *Bundle) NotFound() bool {
	return errors.Is(b.Failures[ResDetails], ErrNotFound)
}

// Err resume las fallas en un solo error (nil si el bundle está completo).
func (b *Bundle) Err() error {
	if b.Complete() {
		return nil
	}
	var errs []error
	for _, res := range []Resource{ResDetails, ResVideos, ResCredits, ResKeywords} {
		if err, ok := b.Failures[res]; ok {
			errs = append(errs, fmt.Errorf("%s: %w", res, err))
		}
	}
	return errors.Join(errs...)
}

// FetchItemBundle pide details, videos, credits y keywords en paralelo.
// Ninguna falla cancela a las demás.
func (c *Client) FetchItemBundle(ctx context.Context, kind models.MediaKind, id int) *Bundle {
	b := &Bundle{Failures: map[Resource]error{}}
	base := fmt.Sprintf("/%s/%d", kind, id)

	var mu sync.Mutex
	fail := func(res Resource, err error) {
		mu.Lock()
		b.Failures[res] = err
		mu.Unlock()
	}

	var wg conc.WaitGroup
	wg.Go(func() {
		var d Details
		if err := c.getJSON(ctx, ResDetails, base, nil, &d); err != nil {
			fail(ResDetails, err)
			return
		}
		b.Details = &d
	})
	wg.Go(func() {
		var v Videos
		if err := c.getJSON(ctx, ResVideos, base+"/videos", nil, &v); err != nil {
			fail(ResVideos, err)
			return
		}
		b.Videos = &v
	})
	wg.Go(func() {
		var cr Credits
		if err := c.getJSON(ctx, ResCredits, base+"/credits", nil, &cr); err != nil {
			fail(ResCredits, err)
			return
		}
		b.Credits = &cr
	})
	wg.Go(func() {
		var k Keywords
		if err := c.getJSON(ctx, ResKeywords, base+"/keywords", nil, &k); err != nil {
			fail(ResKeywords, err)
			return
		}
		b.Keywords = &k
	})
	wg.Wait()

	return b
}

type PersonBundle struct {
	Details      *PersonDetails
	MovieCredits *PersonCredits
	TVCredits    *PersonCredits
	Failures     map[Resource]error
}

func (b *PersonBundle) Complete() bool { return len(b.Failures) == 0 }

func (b *PersonBundle) NotFound() bool {
	return errors.Is(b.Failures[ResDetails], ErrNotFound)
}

func (b *PersonBundle) Err() error {
	if b.Complete() {
		return nil
	}
	var errs []error
	for _, res := range []Resource{ResDetails, ResMovieCredits, ResTVCredits} {
		if err, ok := b.Failures[res]; ok {
			errs = append(errs, fmt.Errorf("%s: %w", res, err))
		}
	}
	return errors.Join(errs...)
}

// FetchPersonBundle pide /person/{id} y sus filmografías en paralelo.
func (c *Client) FetchPersonBundle(ctx context.Context, id int) *PersonBundle {
	b := &PersonBundle{Failures: map[Resource]error{}}
	base := fmt.Sprintf("/person/%d", id)

	var mu sync.Mutex
	fail := func(res Resource, err error) {
		mu.Lock()
		b.Failures[res] = err
		mu.Unlock()
	}

	var wg conc.WaitGroup
	wg.Go(func() {
		var d PersonDetails
		if err := c.getJSON(ctx, ResDetails, base, nil, &d); err != nil {
			fail(ResDetails, err)
			return
		}
		b.Details = &d
	})
	wg.Go(func() {
		var mc PersonCredits
		if err := c.getJSON(ctx, ResMovieCredits, base+"/movie_credits", nil, &mc); err != nil {
			fail(ResMovieCredits, err)
			return
		}
		b.MovieCredits = &mc
	})
	wg.Go(func() {
		var tc PersonCredits
		if err := c.getJSON(ctx, ResTVCredits, base+"/tv_credits", nil, &tc); err != nil {
			fail(ResTVCredits, err)
			return
		}
		b.TVCredits = &tc
	})
	wg.Wait()

	return b
}

// ================== LISTAS ==================

// Category devuelve /{kind}/{category} (popular, top_rated, ...).
func (c *Client) Category(ctx context.Context, kind models.MediaKind, category string, page int) (*ListPage, error) {
	var out ListPage
	err := c.getJSON(ctx, "category", fmt.Sprintf("/%s/%s", kind, url.PathEscape(category)), pageQuery(page), &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Trending devuelve /trending/{kind}/{window}; window es day o week.
func (c *Client) Trending(ctx context.Context, kind models.MediaKind, window string, page int) (*ListPage, error) {
	var out ListPage
	err := c.getJSON(ctx, "trending", fmt.Sprintf("/trending/%s/%s", kind, url.PathEscape(window)), pageQuery(page), &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Search usa /search/multi (películas, series y personas).
func (c *Client) Search(ctx context.Context, query string, page int) (*ListPage, error) {
	q := pageQuery(page)
	q.Set("query", query)
	q.Set("include_adult", "false")

	var out ListPage
	if err := c.getJSON(ctx, "search", "/search/multi", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func pageQuery(page int) url.Values {
	if page < 1 {
		page = 1
	}
	return url.Values{"page": {strconv.Itoa(page)}}
}

// ================== HTTP ==================

// getJSON hace el GET con la política de reintentos: intentos fijos con
// espera constante; 404 y bodies inválidos cortan en el primer intento.
func (c *Client) getJSON(ctx context.Context, res Resource, path string, q url.Values, dest any) error {
	attempt := 0
	err := retry.Do(
		func() error {
			attempt++
			return c.get(ctx, path, q, dest)
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.cfg.MaxRetries)),
		retry.Delay(c.cfg.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var de *DecodeError
			return !errors.Is(err, ErrNotFound) && !errors.As(err, &de)
		}),
		retry.OnRetry(func(n uint, err error) {
			logging.Ctx(ctx).Debug().Str("path", path).Uint("attempt", n+1).Err(err).Msg("[catalog] reintentando")
		}),
	)

	switch {
	case err == nil:
		metrics.CatalogRequests.WithLabelValues(string(res), "ok").Inc()
	case errors.Is(err, ErrNotFound):
		metrics.CatalogRequests.WithLabelValues(string(res), "not_found").Inc()
	default:
		metrics.CatalogRequests.WithLabelValues(string(res), "error").Inc()
		logging.Ctx(ctx).Warn().Str("path", path).Int("attempts", attempt).Err(err).Msg("[catalog] request falló")
	}
	return err
}

func (c *Client) get(ctx context.Context, path string, q url.Values, dest any) error {
	if q == nil {
		q = url.Values{}
	}
	q.Set("api_key", c.cfg.APIKey)
	if c.cfg.Language != "" {
		q.Set("language", c.cfg.Language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Path: path, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &DecodeError{Path: path, Err: err}
	}
	return nil
}
