// Package fetch retrieves job postings from URLs and reduces them to clean
// text for requirement extraction.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; CVAgent/1.0)"

// Posting holds the processed content of a fetched job posting.
type Posting struct {
	URL        string
	Title      string
	Text       string
	StatusCode int
}

// Error represents an error during posting retrieval.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// JobPosting fetches a job posting URL and extracts its description text,
// using board-specific selectors when the host is a known job board.
func JobPosting(ctx context.Context, urlStr string, opts *Options) (*Posting, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}

	client := &http.Client{Timeout: opts.Timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", opts.UserAgent)
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{URL: urlStr, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to read response body", Cause: err}
	}

	board := detectBoard(parsed.Host)
	title, text, err := extractPosting(string(body), board)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to parse HTML", Cause: err}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &Error{URL: urlStr, Message: "no posting text found"}
	}

	return &Posting{
		URL:        urlStr,
		Title:      title,
		Text:       text,
		StatusCode: resp.StatusCode,
	}, nil
}

// board identifies a known job board whose markup we have selectors for.
type board string

const (
	boardGreenhouse board = "greenhouse"
	boardLever      board = "lever"
	boardWorkday    board = "workday"
	boardGeneric    board = "generic"
)

func detectBoard(host string) board {
	host = strings.ToLower(host)
	switch {
	case strings.Contains(host, "greenhouse.io"):
		return boardGreenhouse
	case strings.Contains(host, "lever.co"):
		return boardLever
	case strings.Contains(host, "workday.com"), strings.Contains(host, "myworkdayjobs.com"):
		return boardWorkday
	default:
		return boardGeneric
	}
}

func contentSelectors(b board) []string {
	switch b {
	case boardGreenhouse:
		return []string{".job__description", ".job-description__content", "#content"}
	case boardLever:
		return []string{".posting-description", ".posting-page", ".content"}
	case boardWorkday:
		return []string{"[data-automation-id='jobDescription']", ".job-description"}
	default:
		return []string{
			".job-description",
			"#job-description",
			".job-details",
			"[data-testid='job-description']",
			"main",
			"article",
			".content",
			"#content",
		}
	}
}

// noiseSelector matches elements that pollute posting text on every board:
// application forms, legal disclosures, share widgets, cookie banners.
const noiseSelector = "nav, footer, header, script, style, noscript, form, " +
	".application-form, .apply-section, .posting-apply, .post-apply, " +
	".voluntary-disclosure, .eeo-statement, .legal-disclosure, " +
	".social-share, .share-buttons, .cookie-banner, .cookie-consent, .sidebar"

func extractPosting(html string, b board) (title, text string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", err
	}

	title = strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	doc.Find(noiseSelector).Remove()

	var content *goquery.Selection
	for _, selector := range contentSelectors(b) {
		if selection := doc.Find(selector); selection.Length() > 0 {
			content = selection.First()
			break
		}
	}
	if content == nil {
		content = doc.Find("body")
	}

	return title, cleanWhitespace(content.Text()), nil
}

// cleanWhitespace collapses blank lines and trims each remaining one.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
