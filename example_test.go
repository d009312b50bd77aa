package waypoint_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/routing"
)

// ExampleNew_library demonstrates using Waypoint purely as a Go library,
// declaring routes in code and driving a headless view.
func ExampleNew_library() {
	router, err := waypoint.New("", waypoint.WithRoutes(
		domain.Route{Path: "/", Page: "Home"},
		domain.Route{Path: "/users/:id", Page: "User"},
		domain.Route{Path: "/admin", Page: "Admin", Guard: func(ctx context.Context, path string) (domain.GuardResult, error) {
			return domain.RedirectTo("/login"), nil
		}},
		domain.Route{Path: "/login", Page: "Login"},
	))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	home := memory.NewView("/", memory.AsDefault())
	if err := router.MountView(ctx, "home", home); err != nil {
		log.Fatal(err)
	}

	router.SubscribeToAfterNavigate(func(newPath, previousPath string) {
		fmt.Printf("after: %s <- %s\n", newPath, previousPath)
	})

	res := router.Navigate(ctx, "/users/42")
	fmt.Println(res.Status, home.Page())
	fmt.Println(router.PathParams([]routing.Lookup{{Key: "id", Type: routing.TypeInteger}}))

	res = router.Navigate(ctx, "/admin")
	fmt.Println(res.Status, res.Redirect, home.Page())

	router.Back(ctx, "")
	fmt.Println(home.Page())

	// Output:
	// after: /users/42 <- /
	// committed User
	// map[id:42]
	// after: /login <- /users/42
	// redirected /login Login
	// after: /users/42 <- /login
	// User
}
