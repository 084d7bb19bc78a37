package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"lifeadmin/internal/core"
	"lifeadmin/internal/groceries"
	"lifeadmin/internal/views"
)

func TestParseMonthParam(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		query url.Values
		want  string
	}{
		{"valid month", url.Values{"month": {"2024-11"}}, "2024-11"},
		{"absent", url.Values{}, "2025-03"},
		{"malformed", url.Values{"month": {"2024-13"}}, "2025-03"},
		{"wrong shape", url.Values{"month": {"11/2024"}}, "2025-03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseMonthParam(tt.query, now); got != tt.want {
				t.Errorf("ParseMonthParam() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseAdminQuery(t *testing.T) {
	base := views.Session{ShowArchived: core.Ptr(false)}
	q := url.Values{
		"q":        {"  passport\x00 "},
		"category": {"renewal"},
		"sort":     {"nameAZ"},
		"archived": {"1"},
		"week":     {"bogus"},
	}
	aq, sess := ParseAdminQuery(q, base)

	if aq.Query != "passport" {
		t.Errorf("Query = %q, want passport", aq.Query)
	}
	if aq.Category != core.Category("renewal") || aq.Sort != core.SortMode("nameAZ") {
		t.Errorf("Category/Sort = %q/%q", aq.Category, aq.Sort)
	}
	if sess.ShowArchived == nil || !*sess.ShowArchived {
		t.Error("archived=1 should override the session")
	}
	if sess.FocusWeek != nil {
		t.Error("unparsable week should leave the session untouched")
	}
	if *base.ShowArchived {
		t.Error("the caller's session was modified")
	}
}

func TestParseShoppingAndGroceryQuery(t *testing.T) {
	sq := ParseShoppingQuery(url.Values{"nextOnly": {"true"}, "sort": {"costLow"}})
	if !sq.NextOnly || sq.EssentialsOnly || sq.Sort != views.ShoppingSort("costLow") {
		t.Errorf("ParseShoppingQuery() = %+v", sq)
	}

	mode, cat := ParseGroceryQuery(url.Values{})
	if mode != groceries.SortRecent || cat != "" {
		t.Errorf("ParseGroceryQuery() defaults = %q/%q", mode, cat)
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
		var v struct{ Name string }
		if err := decodeJSON(httptest.NewRecorder(), r, &v); err != nil || v.Name != "x" {
			t.Errorf("decodeJSON() = %v, name %q", err, v.Name)
		}
	})

	t.Run("empty body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("  "))
		v := struct{ Name string }{Name: "kept"}
		if err := decodeJSON(httptest.NewRecorder(), r, &v); err != nil || v.Name != "kept" {
			t.Errorf("decodeJSON() = %v, name %q", err, v.Name)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
		var v struct{ Name string }
		if err := decodeJSON(httptest.NewRecorder(), r, &v); !errors.Is(err, errBadJSON) {
			t.Errorf("decodeJSON() error = %v, want errBadJSON", err)
		}
	})

	t.Run("oversized body", func(t *testing.T) {
		big := `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
		var v struct{ Name string }
		if err := decodeJSON(httptest.NewRecorder(), r, &v); !errors.Is(err, errBadJSON) {
			t.Errorf("decodeJSON() error = %v, want errBadJSON", err)
		}
	})
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  a\x01b\tc\n "); got != "ab\tc" {
		t.Errorf("sanitizeInput() = %q", got)
	}
}
