package dsl_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/dsl"
)

func TestBuilder_SimpleTable(t *testing.T) {
	routes, err := dsl.New().
		Add("/").Page("home").
		Add("/users/:id").Page("user").
		Add("/settings").Page("settings").View("settings", "home").
		Add("/admin").Page("admin").RedirectTo("/login").
		Add("/login").Page("login").
		NotFound("not-found").
		Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	var paths []string
	for _, r := range routes {
		paths = append(paths, r.Path)
	}
	if got := strings.Join(paths, " "); got != "/ /users/:id /settings /admin /login *" {
		t.Fatalf("Expected declaration order, got %s", got)
	}

	settings := routes[2]
	if settings.TargetView() != "settings" || len(settings.Options.Views) != 2 {
		t.Errorf("Expected candidate views [settings home], got %v", settings.Options)
	}

	admin := routes[3]
	if admin.Guard == nil {
		t.Fatal("Expected /admin to be guarded")
	}
	res, err := admin.Guard(context.Background(), "/admin")
	if err != nil {
		t.Fatalf("Guard failed: %v", err)
	}
	if res.Allowed() || res.Redirect() != "/login" {
		t.Errorf("Expected redirect to /login, got %+v", res)
	}
}

func TestBuilder_AddReturnsExisting(t *testing.T) {
	b := dsl.New()
	b.Add("/").Page("first")
	b.Add("/").Page("second")

	routes, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if len(routes) != 1 || routes[0].Page != "second" {
		t.Errorf("Expected a single route with the last page, got %+v", routes)
	}
}

func TestBuilder_Validation(t *testing.T) {
	tests := []struct {
		name  string
		build func() ([]domain.Route, error)
		want  string
	}{
		{
			name:  "redirect to unknown path",
			build: dsl.New().Add("/admin").RedirectTo("/login").Build,
			want:  "redirects to unknown path '/login'",
		},
		{
			name:  "relative path",
			build: dsl.New().Add("inbox").Page("inbox").Build,
			want:  "must start with '/'",
		},
		{
			name:  "unnamed parameter",
			build: dsl.New().Add("/users/:").Page("user").Build,
			want:  "unnamed parameter",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestBuilder_DrivesRouter(t *testing.T) {
	allowed := false
	routes, err := dsl.New().
		Add("/").Page("home").
		Add("/private").Page("private").Deny().
		Add("/billing").Page("billing").Guard(func(ctx context.Context, path string) (domain.GuardResult, error) {
			if allowed {
				return domain.Allow(), nil
			}
			return domain.RedirectTo("/"), nil
		}).
		Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	router, err := waypoint.New("", waypoint.WithRoutes(routes...))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	ctx := context.Background()
	view := memory.NewView("/", memory.AsDefault())
	if err := router.MountView(ctx, "home", view); err != nil {
		t.Fatalf("MountView failed: %v", err)
	}

	if res := router.Navigate(ctx, "/private"); res.Status != domain.StatusRedirected || res.Redirect != "/" {
		t.Errorf("Expected /private to fall back to /, got %s %s", res.Status, res.Redirect)
	}
	if res := router.Navigate(ctx, "/billing"); res.Status != domain.StatusRedirected {
		t.Errorf("Expected /billing to redirect, got %s", res.Status)
	}

	allowed = true
	if res := router.Navigate(ctx, "/billing"); res.Status != domain.StatusCommitted {
		t.Errorf("Expected /billing to commit, got %s", res.Status)
	}
	if view.Page() != "billing" {
		t.Errorf("Expected view to show billing, got %v", view.Page())
	}
}
