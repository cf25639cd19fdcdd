package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"cambio/internal/core"
	"cambio/internal/report"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client exports ledger entries and month summaries to a Google spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	entriesSheet  string
	summarySheet  string

	// Row cache: consecutive appends reuse the last known row count instead
	// of re-reading column A on every call.
	mu                 sync.Mutex
	cachedRowCount     int
	cacheExpiresAt     time.Time
	cacheValidDuration time.Duration
}

// Ensure interface conformance
var (
	_ report.EntryWriter   = (*Client)(nil)
	_ report.EntryDeleter  = (*Client)(nil)
	_ report.SummaryWriter = (*Client)(nil)
)

const defaultCacheValidDuration = 5 * time.Minute

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional sheet names: GOOGLE_ENTRIES_SHEET_NAME (default "Entries"),
// GOOGLE_SUMMARY_SHEET_NAME (default "Summary"). Names are prefixed with the
// current year so each year gets its own pair of sheets.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	entriesBase := strings.TrimSpace(os.Getenv("GOOGLE_ENTRIES_SHEET_NAME"))
	if entriesBase == "" {
		entriesBase = "Entries"
	}
	summaryBase := strings.TrimSpace(os.Getenv("GOOGLE_SUMMARY_SHEET_NAME"))
	if summaryBase == "" {
		summaryBase = "Summary"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	currentYear := time.Now().Year()
	return &Client{
		svc:                svc,
		spreadsheetID:      spreadsheetID,
		entriesSheet:       yearPrefixedName(entriesBase, currentYear),
		summarySheet:       yearPrefixedName(summaryBase, currentYear),
		cacheValidDuration: defaultCacheValidDuration,
	}, nil
}

// newSheetsService initializes a Sheets service. An OAuth token stored by
// cmd/oauth-init takes precedence (GOOGLE_OAUTH_CLIENT_JSON or
// GOOGLE_OAUTH_CLIENT_FILE plus GOOGLE_OAUTH_TOKEN_FILE), otherwise Service
// Account credentials from GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS are used.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	if httpClient, err := oauthHTTPClient(ctx); err != nil {
		return nil, err
	} else if httpClient != nil {
		slog.InfoContext(ctx, "Using stored OAuth token")
		service, err := gsheet.NewService(ctx, goption.WithHTTPClient(httpClient))
		if err != nil {
			return nil, fmt.Errorf("create sheets service: %w", err)
		}
		return service, nil
	}

	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline service account credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading service account credentials from file", "path", serviceAccountFile)
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// oauthHTTPClient builds an HTTP client from an OAuth client config and a
// stored token. Returns (nil, nil) when OAuth is not configured so the
// caller falls through to service account credentials. A configured client
// with a missing or unreadable token is an error: the operator meant to use
// OAuth, pointing them at cmd/oauth-init beats silently switching modes.
func oauthHTTPClient(ctx context.Context) (*nethttp.Client, error) {
	clientJSON := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"))
	clientFile := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"))
	if clientJSON == "" && clientFile == "" {
		return nil, nil
	}

	var raw []byte
	var err error
	if clientJSON != "" {
		raw = []byte(clientJSON)
	} else {
		raw, err = os.ReadFile(clientFile)
		if err != nil {
			return nil, fmt.Errorf("read oauth client file: %w", err)
		}
	}

	cfg, err := goauth.ConfigFromJSON(raw, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client config: %w", err)
	}

	tokenFile := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_TOKEN_FILE"))
	if tokenFile == "" {
		tokenFile = "token.json"
	}
	tokenRaw, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth token file %s (run oauth-init first): %w", tokenFile, err)
	}

	tok := &oauth2.Token{}
	if err := json.Unmarshal(tokenRaw, tok); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	return cfg.Client(ctx, tok), nil
}

// Append writes the entry to the next free row of the entries sheet and
// returns a range reference like "2026 Entries!A12:F12".
func (c *Client) Append(ctx context.Context, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	nextRow, err := c.nextRowNumber(ctx)
	if err != nil {
		return "", err
	}

	// Columns A:F are Date, Description, Value, Currency, Kind, Category.
	rng := fmt.Sprintf("%s!A%d:F%d", c.entriesSheet, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{{
		e.Date.Format("2006-01-02"),
		e.Description,
		e.Amount.Value,
		e.Amount.Currency,
		string(e.Kind),
		e.Category,
	}}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		c.invalidateRowCache()
		return "", fmt.Errorf("update %s: %w", rng, err)
	}
	return rng, nil
}

// DeleteEntry clears the first sheet row matching the entry's date,
// description, value and currency. A missing row is not an error: entries
// deleted before their export ran have nothing to clear.
func (c *Client) DeleteEntry(ctx context.Context, e core.Entry) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:F", c.entriesSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s: %w", rng, err)
	}

	date := e.Date.Format("2006-01-02")
	rowNum := 0
	for i, row := range resp.Values {
		if rowMatchesEntry(toStrings(row), date, e.Description, e.Amount.Value, e.Amount.Currency) {
			rowNum = i + 1
			break
		}
	}
	if rowNum == 0 {
		slog.WarnContext(ctx, "Entry row not found in sheet, nothing to clear",
			"sheet", c.entriesSheet, "date", date, "description", e.Description)
		return nil
	}

	clearRange := fmt.Sprintf("%s!A%d:F%d", c.entriesSheet, rowNum, rowNum)
	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", clearRange, err)
	}
	c.invalidateRowCache()
	return nil
}

// WriteMonthSummary writes the overview to the summary sheet, one fixed row
// per month (row 2 = January) so repeated writes overwrite in place.
func (c *Client) WriteMonthSummary(ctx context.Context, ov core.MonthOverview) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if ov.Month < 1 || ov.Month > 12 {
		return fmt.Errorf("invalid month: %d", ov.Month)
	}

	rowNum := ov.Month + 1
	rng := fmt.Sprintf("%s!A%d:F%d", c.summarySheet, rowNum, rowNum)
	vr := &gsheet.ValueRange{Values: [][]any{{
		report.MonthName(ov.Month),
		ov.Income.Value,
		ov.Expense.Value,
		ov.Balance.Value,
		ov.Display,
		ov.Unconverted,
	}}}

	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

// nextRowNumber returns the 1-based row to write next, serving consecutive
// appends from the cache while it is fresh.
func (c *Client) nextRowNumber(ctx context.Context) (int, error) {
	c.mu.Lock()
	if time.Now().Before(c.cacheExpiresAt) && c.cachedRowCount > 0 {
		c.cachedRowCount++
		n := c.cachedRowCount
		c.mu.Unlock()
		return n, nil
	}
	c.mu.Unlock()

	rng := fmt.Sprintf("%s!A:A", c.entriesSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", rng, err)
	}
	next := len(resp.Values) + 1

	c.mu.Lock()
	c.cachedRowCount = next
	c.cacheExpiresAt = time.Now().Add(c.cacheValidDuration)
	c.mu.Unlock()
	return next, nil
}

func (c *Client) invalidateRowCache() {
	c.mu.Lock()
	c.cachedRowCount = 0
	c.cacheExpiresAt = time.Time{}
	c.mu.Unlock()
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
