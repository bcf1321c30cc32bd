package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/tonhe/funnel/internal/credential"
	"github.com/tonhe/funnel/internal/funnel"
	"github.com/tonhe/funnel/internal/logging"
)

// maxBody bounds how much of a response is read.
const maxBody = 1 << 20

// FetchError reports a failed funnel request: a non-success status, an
// unreadable body or a transport failure.
type FetchError struct {
	Status     int
	StatusText string
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusText != "":
		return "failed to fetch funnel data: " + e.StatusText
	case e.Err != nil:
		return "failed to fetch funnel data: " + e.Err.Error()
	default:
		return "failed to fetch funnel data"
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// HTTPSource posts the configured steps to the analytics funnel endpoint.
// The bearer token is resolved from Tokens on every request so that a
// rotated credential takes effect without a restart. Tokens are never part of
// the source itself.
type HTTPSource struct {
	Endpoint   string
	SiteID     string
	Steps      []string
	Credential string
	Tokens     credential.TokenSource
	Client     *http.Client
}

// NewHTTPSource returns a source with a client using the given timeout.
func NewHTTPSource(endpoint, siteID string, steps []string, cred string, tokens credential.TokenSource, timeout time.Duration) *HTTPSource {
	if len(steps) == 0 {
		steps = DefaultSteps
	}
	return &HTTPSource{
		Endpoint:   endpoint,
		SiteID:     siteID,
		Steps:      steps,
		Credential: cred,
		Tokens:     tokens,
		Client:     &http.Client{Timeout: timeout},
	}
}

// FetchSteps performs one POST and reshapes the response into steps.
func (s *HTTPSource) FetchSteps(ctx context.Context, interval string) (funnel.Funnel, error) {
	if err := ValidateInterval(interval); err != nil {
		return nil, err
	}

	req, err := s.newRequest(ctx, interval)
	if err != nil {
		return nil, err
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	defer resp.Body.Close()

	logging.Get(ctx).Debug().
		Str("interval", interval).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("funnel request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Status: resp.StatusCode, StatusText: statusText(resp)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &FetchError{Status: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}
	return ParseSteps(body)
}

func (s *HTTPSource) newRequest(ctx context.Context, interval string) (*http.Request, error) {
	u, err := url.Parse(s.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing endpoint: %w", err)
	}
	q := u.Query()
	q.Set("interval", interval)
	q.Set("siteId", s.SiteID)
	u.RawQuery = q.Encode()

	steps := s.Steps
	if len(steps) == 0 {
		steps = DefaultSteps
	}
	body, err := sjson.SetBytes([]byte(`{}`), "steps", steps)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if s.Tokens != nil {
		token, err := s.Tokens.Token(s.Credential)
		switch {
		case err == nil:
			req.Header.Set("Authorization", "Bearer "+token)
		case errors.Is(err, credential.ErrNotFound) && s.Credential == "":
			// anonymous request
		default:
			return nil, fmt.Errorf("resolving credential %q: %w", s.Credential, err)
		}
	}
	return req, nil
}

// statusText prefers the reason phrase sent by the server, falling back to
// the standard text for the code.
func statusText(resp *http.Response) string {
	code := fmt.Sprintf("%d ", resp.StatusCode)
	if len(resp.Status) > len(code) && resp.Status[:len(code)] == code {
		return resp.Status[len(code):]
	}
	if t := http.StatusText(resp.StatusCode); t != "" {
		return t
	}
	return resp.Status
}

// ParseSteps reshapes an analytics response, an object mapping arbitrary keys
// to numeric values, into a funnel. Entries keep the document's key order and
// are labelled by their original position ("Step 1", "Step 2", ...). A key
// repeated in the document keeps its first position and its last value.
// Values that are not finite and strictly positive are dropped, so a dropped
// entry leaves a gap in the numbering.
func ParseSteps(body []byte) (funnel.Funnel, error) {
	if !gjson.ValidBytes(body) {
		return nil, &FetchError{Err: fmt.Errorf("unexpected response body")}
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil, &FetchError{Err: fmt.Errorf("unexpected response body")}
	}

	var keys []string
	values := make(map[string]gjson.Result)
	doc.ForEach(func(key, value gjson.Result) bool {
		if _, seen := values[key.String()]; !seen {
			keys = append(keys, key.String())
		}
		values[key.String()] = value
		return true
	})

	f := funnel.Funnel{}
	for i, key := range keys {
		v := coerce(values[key])
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			continue
		}
		f = append(f, funnel.Step{Label: fmt.Sprintf("Step %d", i+1), Value: v})
	}
	return f, nil
}

// coerce converts a JSON value to a number the way a loosely typed client
// would: strings are trimmed and parsed, an empty string or null is 0, true
// is 1, and a one-element array stands for its element. Anything else is NaN.
func coerce(v gjson.Result) float64 {
	switch v.Type {
	case gjson.Number:
		return v.Num
	case gjson.True:
		return 1
	case gjson.False, gjson.Null:
		return 0
	case gjson.String:
		return parseNumber(v.Str)
	}
	if !v.IsArray() {
		return math.NaN()
	}
	elems := v.Array()
	switch len(elems) {
	case 0:
		return 0
	case 1:
		// A lone element is read through its text, so true and false
		// are not numbers here.
		if e := elems[0]; e.Type != gjson.True && e.Type != gjson.False && !e.IsObject() {
			return coerce(e)
		}
	}
	return math.NaN()
}

// parseNumber parses trimmed decimal or 0x/0o/0b-prefixed integer text.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	if len(s) > 2 && s[0] == '0' && strings.ContainsRune("xXoObB", rune(s[1])) {
		if v, err := strconv.ParseUint(s, 0, 64); err == nil {
			return float64(v)
		}
	}
	return math.NaN()
}
