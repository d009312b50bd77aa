/*
Package ports defines the driven ports (interfaces) of the Waypoint engine.

These interfaces decouple the navigation core from the environment it runs in,
so the same engine drives a browser (WASM), an HTTP session, or a test fake.

# Key Interfaces

  - Host: The session-history primitive (push/replace/back/forward and gesture notifications).
  - View: A named container that can be told which page to display.
*/
package ports
