/*
Package ports defines the driven ports (interfaces) of tripreel.

These interfaces decouple the request controller from the transport used to
reach the generation service, so the controller can be exercised with a fake
and the HTTP adapter can be verified against a shared contract.

# Key Interfaces

  - Generator: performs one round trip to the generation service.
*/
package ports
