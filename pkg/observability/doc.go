/*
Package observability turns controller lifecycle events into metrics and logs.

Metrics are kept in a private Prometheus registry so several controllers (or
tests) never collide on the default one. Hooks from several sources can be
combined with Chain.
*/
package observability
