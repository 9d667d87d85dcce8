package usecase

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/technest/backend/internal/domain"
)

func TestNewMatchingService(t *testing.T) {
	t.Run("uses default edit distance when zero", func(t *testing.T) {
		svc := NewMatchingService(MatchConfig{}, zerolog.Nop())
		if svc.fuzzyEditDistance != 1 {
			t.Errorf("fuzzyEditDistance = %v, want 1 (default)", svc.fuzzyEditDistance)
		}
	})

	t.Run("keeps provided edit distance", func(t *testing.T) {
		svc := NewMatchingService(MatchConfig{FuzzyEditDistance: 2, EnableFuzzyMatching: true}, zerolog.Nop())
		if svc.fuzzyEditDistance != 2 || !svc.enableFuzzyMatching {
			t.Errorf("service = %+v, want fuzzy distance 2 enabled", svc)
		}
	})
}

func TestRankMatches(t *testing.T) {
	svc := NewMatchingService(MatchConfig{}, zerolog.Nop())
	ctx := context.Background()

	devices := []domain.Device{
		{Slug: "pixel-9-pro", ModelName: "Pixel 9 Pro", Brand: "Google"},
		{Slug: "galaxy-s24", ModelName: "Galaxy S24", Brand: "Samsung"},
		{Slug: "pixel-9", ModelName: "Pixel 9", Brand: "Google", ImageURL: "https://img/pixel9.png"},
	}

	t.Run("exact model ranks first", func(t *testing.T) {
		results, err := svc.RankMatches(ctx, "pixel 9", devices)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 3 {
			t.Fatalf("len(results) = %d, want 3", len(results))
		}
		if results[0].Slug != "pixel-9" {
			t.Errorf("first = %s, want pixel-9", results[0].Slug)
		}
		if results[0].Type != "device" || results[0].Title != "Pixel 9" || results[0].ImageURL != "https://img/pixel9.png" {
			t.Errorf("result = %+v", results[0])
		}
		if results[1].Slug != "pixel-9-pro" {
			t.Errorf("second = %s, want pixel-9-pro", results[1].Slug)
		}
		if results[2].Score != 0 {
			t.Errorf("unrelated device score = %v, want 0", results[2].Score)
		}
	})

	t.Run("empty input returns empty slice", func(t *testing.T) {
		results, err := svc.RankMatches(ctx, "pixel", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if results == nil || len(results) != 0 {
			t.Errorf("results = %v, want empty non-nil slice", results)
		}
	})

	t.Run("equal scores keep input order", func(t *testing.T) {
		same := []domain.Device{
			{Slug: "first", ModelName: "Phone X"},
			{Slug: "second", ModelName: "Phone X"},
		}
		results, err := svc.RankMatches(ctx, "phone x", same)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if results[0].Slug != "first" || results[1].Slug != "second" {
			t.Errorf("order = %s, %s", results[0].Slug, results[1].Slug)
		}
	})

	t.Run("honours cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := svc.RankMatches(cctx, "pixel", devices); err == nil {
			t.Error("expected context error")
		}
	})
}

func TestCalculateMatchScore(t *testing.T) {
	exact := NewMatchingService(MatchConfig{}, zerolog.Nop())
	fuzzy := NewMatchingService(MatchConfig{EnableFuzzyMatching: true}, zerolog.Nop())

	t.Run("identical name scores 100", func(t *testing.T) {
		if got := exact.calculateMatchScore("Pixel 9", "Pixel 9", ""); got != 100 {
			t.Errorf("score = %v, want 100", got)
		}
	})

	t.Run("no overlap scores 0", func(t *testing.T) {
		if got := exact.calculateMatchScore("iphone", "Galaxy S24", "Samsung"); got != 0 {
			t.Errorf("score = %v, want 0", got)
		}
	})

	t.Run("noise only query scores 0", func(t *testing.T) {
		if got := exact.calculateMatchScore("best vs the", "Galaxy S24", ""); got != 0 {
			t.Errorf("score = %v, want 0", got)
		}
	})

	t.Run("brand bonus applies", func(t *testing.T) {
		without := exact.calculateMatchScore("s24 phone", "Galaxy S24", "")
		with := exact.calculateMatchScore("samsung s24 phone", "Galaxy S24", "Samsung")
		if with <= without {
			t.Errorf("with brand = %v, without = %v; want brand bonus", with, without)
		}
	})

	t.Run("fuzzy matching rewards typos", func(t *testing.T) {
		plain := exact.calculateMatchScore("pixl 9", "Pixel 9", "")
		typo := fuzzy.calculateMatchScore("pixl 9", "Pixel 9", "")
		if typo <= plain {
			t.Errorf("fuzzy = %v, exact = %v; want fuzzy higher", typo, plain)
		}
	})

	t.Run("score stays within bounds", func(t *testing.T) {
		got := fuzzy.calculateMatchScore("google pixel 9", "Pixel 9", "Google")
		if got < 0 || got > 100 {
			t.Errorf("score = %v, want [0,100]", got)
		}
	})
}

func TestFuzzyTokenMatch(t *testing.T) {
	testCases := []struct {
		a, b string
		want bool
	}{
		{"pixel", "pixel", true},
		{"pixl", "pixel", true},
		{"galaxy", "galaxi", true},
		{"s24", "s23", false}, // short tokens must match exactly
		{"pixel", "pixels2", false},
		{"iphone", "galaxy", false},
	}

	for _, tc := range testCases {
		if got := fuzzyTokenMatch(tc.a, tc.b, 1); got != tc.want {
			t.Errorf("fuzzyTokenMatch(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestLevenshteinDistance(t *testing.T) {
	testCases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"pixel", "pixle", 2},
		{"galaxy", "galaxy", 0},
		{"naïve", "naive", 1},
	}

	for _, tc := range testCases {
		if got := levenshteinDistance(tc.a, tc.b); got != tc.want {
			t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestTokenSetHelpers(t *testing.T) {
	a := []string{"pixel", "9", "pro"}
	b := []string{"pixel", "9", "9"}

	if n := findIntersection(a, b); n != 2 {
		t.Errorf("findIntersection = %d, want 2", n)
	}
	if got := findUnion(a, b); got != 3 {
		t.Errorf("findUnion = %d, want 3", got)
	}
}
