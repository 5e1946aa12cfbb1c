package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOptional_TriState(t *testing.T) {
	type patch struct {
		Description OptionalString `json:"description"`
	}

	cases := []struct {
		name        string
		body        string
		wantPresent bool
		wantValue   *string
	}{
		{name: "absent", body: `{}`},
		{name: "null", body: `{"description": null}`, wantPresent: true},
		{name: "empty", body: `{"description": ""}`, wantPresent: true, wantValue: ptr("")},
		{name: "value", body: `{"description": "hi"}`, wantPresent: true, wantValue: ptr("hi")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var p patch
			if err := json.Unmarshal([]byte(tc.body), &p); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if p.Description.Present != tc.wantPresent {
				t.Fatalf("present = %v, want %v", p.Description.Present, tc.wantPresent)
			}
			switch {
			case tc.wantValue == nil && p.Description.Value != nil:
				t.Fatalf("value = %q, want nil", *p.Description.Value)
			case tc.wantValue != nil && (p.Description.Value == nil || *p.Description.Value != *tc.wantValue):
				t.Fatalf("value = %v, want %q", p.Description.Value, *tc.wantValue)
			}
		})
	}

	var p patch
	if err := json.Unmarshal([]byte(`{"description": 42}`), &p); err == nil {
		t.Fatal("expected type error for non-string description")
	}
}

func TestUserIDContext(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetUserID(r); got != "" {
		t.Fatalf("anonymous user = %q", got)
	}
	if got := GetUserID(WithUserID(r, "u-1")); got != "u-1" {
		t.Fatalf("user = %q, want u-1", got)
	}
}

func TestRespondErrorWithExtras(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorWithExtras(rec, http.StatusConflict, "stale", map[string]interface{}{"expected_version": 3})

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("content type = %q", ct)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["detail"] != "stale" || body["expected_version"] != float64(3) || body["title"] != "Conflict" {
		t.Fatalf("body = %v", body)
	}
}

func ptr(s string) *string { return &s }
