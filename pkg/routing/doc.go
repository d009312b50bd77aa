// Package routing resolves concrete paths to route descriptors.
//
// Resolution strips the query and fragment, tries literal patterns first and then
// patterns with ":name" segments, in registration order. Routes that target a view
// which is not registered are skipped.
package routing
