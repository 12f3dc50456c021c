/*
Package http serves the single-page web interface.

Every browser session gets its own Planner (see package session), identified
by a cookie. The page is rendered server-side from render.Screen; while a
request is pending the page listens on /events (Server-Sent Events) and
reloads once the state settles. The same screen is available as JSON on
/state for scripted clients.

Routes:

	GET  /         HTML page
	POST /submit   start a request (form field or JSON "url")
	POST /reset    clear the last outcome
	GET  /state    current screen as JSON
	GET  /events   screen updates as SSE
	GET  /health   liveness
	GET  /info     build and session info
	GET  /metrics  Prometheus metrics, when configured
*/
package http
