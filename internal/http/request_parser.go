package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"lifeadmin/internal/core"
	"lifeadmin/internal/groceries"
	"lifeadmin/internal/views"
)

const (
	maxBodyBytes   = 1 << 20
	maxImportBytes = 10 << 20
)

var errBadJSON = errors.New("invalid JSON body")

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", errBadJSON, err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", errBadJSON, err)
	}
	return nil
}

// readRaw returns the request body up to limit bytes.
func readRaw(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadJSON, err)
	}
	return body, nil
}

// queryString returns a trimmed, sanitized query value.
func queryString(q url.Values, key string) string {
	return sanitizeInput(q.Get(key))
}

// queryBool parses 1/0/true/false. Absent or unparsable values give nil.
func queryBool(q url.Values, key string) *bool {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}

func queryFlag(q url.Values, key string) bool {
	b := queryBool(q, key)
	return b != nil && *b
}

// ParseMonthParam returns the month query as YYYY-MM, defaulting to the month
// of now when absent or malformed.
func ParseMonthParam(q url.Values, now time.Time) string {
	v := strings.TrimSpace(q.Get("month"))
	if t, err := time.Parse("2006-01", v); err == nil {
		return core.MonthKey(t)
	}
	return core.MonthKey(now)
}

// ParseAdminQuery maps list controls from the query string. archived and week
// override the session for this request only.
func ParseAdminQuery(q url.Values, sess views.Session) (views.AdminQuery, views.Session) {
	aq := views.AdminQuery{
		Query:    queryString(q, "q"),
		Category: core.Category(queryString(q, "category")),
		Sort:     core.SortMode(queryString(q, "sort")),
	}
	if b := queryBool(q, "archived"); b != nil {
		sess.ShowArchived = b
	}
	if b := queryBool(q, "week"); b != nil {
		sess.FocusWeek = b
	}
	return aq, sess
}

func ParseShoppingQuery(q url.Values) views.ShoppingQuery {
	return views.ShoppingQuery{
		NextOnly:       queryFlag(q, "nextOnly"),
		EssentialsOnly: queryFlag(q, "essentialsOnly"),
		Sort:           views.ShoppingSort(queryString(q, "sort")),
	}
}

func ParseGroceryQuery(q url.Values) (groceries.SortMode, groceries.Category) {
	mode := groceries.SortMode(queryString(q, "sort"))
	if mode == "" {
		mode = groceries.SortRecent
	}
	return mode, groceries.Category(queryString(q, "category"))
}
