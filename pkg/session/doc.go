/*
Package session keeps one Planner per browser session.

Each visitor of the web interface gets an independent lifecycle: a request
pending in one tab never blocks another visitor. Sessions live only in memory
and are evicted after a period of inactivity, unless a request is still
pending for them.
*/
package session
