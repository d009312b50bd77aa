/*
Package dsl provides a fluent builder for declaring Waypoint route tables in Go.

It is the programmatic counterpart of a routes.yaml file: the same checks run
on Build (duplicate patterns, unnamed parameters, redirects to unknown paths),
while guards can be arbitrary Go functions instead of names bound elsewhere.

Example usage:

	routes, err := dsl.New().
		Add("/").Page("home").
		Add("/users/:id").Page("user").
		Add("/settings").Page("settings").View("settings").
		Add("/admin").Page("admin").RedirectTo("/login").
		Add("/login").Page("login").
		NotFound("not-found").
		Build()
	if err != nil {
		log.Fatal(err)
	}

	router, err := waypoint.New("", waypoint.WithRoutes(routes...))
*/
package dsl
