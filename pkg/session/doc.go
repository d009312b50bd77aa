/*
Package session keeps one navigation router per client.

A Manager creates routers through a Factory, indexes them by ID and serializes
operations on the same session, optionally across replicas with a distributed
locker. Each session fans its navigations out to subscribers, which the HTTP
adapter streams as server-sent events.
*/
package session
