package validator

import (
	"strings"
	"testing"

	"github.com/aretw0/waypoint/internal/dto"
)

func TestValidateRoutes(t *testing.T) {
	// Scenario A: valid table with a pattern target
	valid := &dto.RouteFile{
		Routes: []dto.RouteDefinition{
			{Path: "/", Page: "home"},
			{Path: "/users/:id", Page: "user"},
			{Path: "/me", Page: "me", Guard: "redirect:/users/42?tab=profile"},
			{Path: "/vip", Page: "vip", Guard: "members"},
			{Path: "*", Page: "not-found"},
		},
	}
	known := func(name string) bool { return name == "members" }

	if err := ValidateRoutes(valid, known); err != nil {
		t.Errorf("Scenario A (Valid) failed: %v", err)
	}

	// Scenario B: redirect into the not-found route is not a real target
	broken := &dto.RouteFile{
		Routes: []dto.RouteDefinition{
			{Path: "/", Page: "home", Guard: "redirect:/ghost"},
			{Path: "*", Page: "not-found"},
		},
	}
	err := ValidateRoutes(broken, known)
	if err == nil {
		t.Fatal("Scenario B (Broken) should have failed, but got nil")
	}
	if !strings.Contains(err.Error(), "unknown path '/ghost'") {
		t.Errorf("Expected dangling redirect error, got: %v", err)
	}

	// Scenario C: unnamed parameter
	unnamed := &dto.RouteFile{Routes: []dto.RouteDefinition{{Path: "/users/:", Page: "user"}}}
	if err := ValidateRoutes(unnamed, nil); err == nil || !strings.Contains(err.Error(), "unnamed parameter") {
		t.Errorf("Expected unnamed parameter error, got: %v", err)
	}
}
