package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/users/login" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"role":"premium_user"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	role, err := client.Login(context.Background(), "priya_s", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if role != "premium_user" {
		t.Fatalf("unexpected role: %s", role)
	}
}

func TestLoginUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	if _, err := client.Login(context.Background(), "priya_s", "wrong"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestGetProfileNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	if _, err := client.GetProfile(context.Background(), "ghost", "priya_s"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestSearchEncodesQueryAndDecodesPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("gender") != "Female" {
			t.Fatalf("gender param missing, got %q", q.Get("gender"))
		}
		if q.Get("ageMin") != "28" || q.Get("ageMax") != "35" {
			t.Fatalf("age params wrong: %s-%s", q.Get("ageMin"), q.Get("ageMax"))
		}
		if q.Get("page") != "2" || q.Get("pageSize") != "20" {
			t.Fatalf("paging params wrong: page=%s pageSize=%s", q.Get("page"), q.Get("pageSize"))
		}
		if q.Has("keyword") {
			t.Fatalf("empty keyword should be omitted")
		}
		if r.Header.Get("X-Requester-Username") != "priya_s" {
			t.Fatalf("requester header missing")
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"users":[{"username":"arjun_k","sex":"Male"}],"total":41,"page":2}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	page, err := client.Search(context.Background(), SearchQuery{
		Gender:    "Female",
		AgeMin:    28,
		AgeMax:    35,
		Page:      2,
		PageSize:  20,
		Requester: "priya_s",
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if page.Total != 41 {
		t.Fatalf("unexpected total: %d", page.Total)
	}
	if len(page.Users) != 1 || page.Users[0].Username != "arjun_k" {
		t.Fatalf("unexpected users: %+v", page.Users)
	}
}
