package middleware_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/persistence/middleware"
	"github.com/aretw0/waypoint/pkg/ports"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlying := memory.NewHost()
	mw, err := middleware.NewPIIMiddleware([]string{"token", "^email$"})
	if err != nil {
		t.Fatalf("NewPIIMiddleware failed: %v", err)
	}
	secure := mw(underlying)
	ctx := context.Background()

	if err := secure.PushState(ctx, domain.HistoryState{Key: 1}, "/reset?email=a%40b.c&tab=1&access_token=xyz#top"); err != nil {
		t.Fatalf("PushState failed: %v", err)
	}
	_, url, err := underlying.Current(ctx)
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if want := "/reset?email=redacted&tab=1&access_token=redacted#top"; url != want {
		t.Errorf("Expected %s, got %s", want, url)
	}

	if err := secure.ReplaceState(ctx, domain.HistoryState{Key: 1}, "/reset?tab=2"); err != nil {
		t.Fatalf("ReplaceState failed: %v", err)
	}
	if _, url, _ := underlying.Current(ctx); url != "/reset?tab=2" {
		t.Errorf("Expected unmatched url to pass unchanged, got %s", url)
	}
}

func TestPIIMiddleware_Contract(t *testing.T) {
	mw, err := middleware.NewPIIMiddleware([]string{"token"})
	if err != nil {
		t.Fatal(err)
	}
	ports.RunHostContract(t, func(t *testing.T) ports.Host {
		return mw(memory.NewHost())
	})
}

func TestPIIMiddleware_InvalidPattern(t *testing.T) {
	if _, err := middleware.NewPIIMiddleware([]string{"("}); err == nil {
		t.Error("Expected an error for an invalid pattern")
	}
}

func TestMaskQuery(t *testing.T) {
	patterns := []*regexp.Regexp{regexp.MustCompile("secret")}
	tests := []struct {
		in, want string
	}{
		{"/", "/"},
		{"/a?", "/a?"},
		{"/a?secret", "/a?secret=redacted"},
		{"/a?x=1#secret=2", "/a?x=1#secret=2"},
		{"/a?my%20secret=1&b=2", "/a?my%20secret=redacted&b=2"},
	}
	for _, tt := range tests {
		if got := middleware.MaskQuery(tt.in, patterns); got != tt.want {
			t.Errorf("MaskQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWrap_Order(t *testing.T) {
	underlying := memory.NewHost()
	pii, _ := middleware.NewPIIMiddleware([]string{"token"})
	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	if err != nil {
		t.Fatal(err)
	}
	host := middleware.Wrap(underlying, pii, enc)
	ctx := context.Background()

	if err := host.PushState(ctx, domain.HistoryState{Key: 1}, "/a?token=1"); err != nil {
		t.Fatal(err)
	}
	_, url, err := host.Current(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if url != "/a?token=redacted" {
		t.Errorf("Expected masking before encryption, got %s", url)
	}
}
