/*
Package domain contains the core domain models of the Waypoint navigation engine.

It defines the entities shared by the history store, the route table, the view
registry and the engine itself. This package is kept pure and free of I/O, so
adapters (browser hosts, HTTP, MCP) can depend on it without pulling in the runtime.

# Key Entities

  - Entry: One recorded navigation, mirrored by a minimal HistoryState in the host.
  - Route: Maps a path pattern to an opaque page, with an optional Guard and target view.
  - ViewDescriptor: Introspection snapshot of a named view.
  - Result: The outcome of a navigation attempt. Navigation never returns errors to callers.
*/
package domain
