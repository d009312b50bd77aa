/*
Package waypoint is a client-side navigation engine: it maps paths to pages, shows them in named views,
and keeps an application history consistent with a host's native session history.

The host (a browser bridge, a Redis-backed session, a test double) owns the native history stack and reports
back/forward gestures. Waypoint records one entry per navigation, stores only the entry key in the host, and
re-displays pages when the user moves through history.

# Concept

Routes map a literal path or a pattern with ":name" segments to an opaque page. A route may carry a guard that
allows, denies (redirecting to the fallback path) or redirects elsewhere. Before-navigate callbacks can veto a
navigation; after-navigate callbacks observe committed ones.

Programmatic navigations are serialised: while one is in flight, new requests are parked and only the most
recent one runs afterwards. Browser back gestures are serialised on their own track.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/waypoint"
		"github.com/aretw0/waypoint/pkg/adapters/memory"
		"github.com/aretw0/waypoint/pkg/domain"
	)

	func main() {
		router, err := waypoint.New("", waypoint.WithRoutes(
			domain.Route{Path: "/", Page: "home"},
			domain.Route{Path: "/users/:id", Page: "user"},
		))
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		home := memory.NewView("/", memory.AsDefault())
		if err := router.MountView(ctx, "home", home); err != nil {
			log.Fatal(err)
		}

		res := router.Navigate(ctx, "/users/42")
		log.Println(res.Status, home.Page())

		router.Back(ctx, "")
		log.Println(home.Page())
	}

Route files (YAML or JSON) can be loaded with New; see package config for the format.
*/
package waypoint
