// Package runtime implements the request controller: a four-state lifecycle
// (Idle, Pending, Success, Failed) around a single outbound generation call.
package runtime
