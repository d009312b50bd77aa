/*
Package observability provides tools for monitoring the Waypoint navigation engine.

It turns engine hooks into Prometheus metrics and structured log lines, and
combines several hook sets into one.
*/
package observability
