// Package fixture serves the itinerary generation HTTP contract from files on
// disk, for local development and demos without the real backend.
//
// Each file in the fixture directory is named after a video ID
// (dQw4w9WgXcQ.yaml, 9bZkp7q19f0.json, ...) and holds one of:
//
//   - an itinerary, served with status 200;
//   - a body with an "error" field, also served with status 200;
//   - a "status" (and optional "detail"), served with that status.
//
// Itinerary fixtures are checked against the embedded OpenAPI document when
// loaded, so a typo in a fixture fails fast instead of at request time.
package fixture
