/*
Package domain contains the core models of tripreel.

It defines the itinerary value returned by the generation service and the
request lifecycle state owned by the controller. This package is kept pure and
free of I/O, following the same hexagonal split as the rest of the module.

# Key Entities

  - Itinerary: the root travel plan (title, summary, ordered days).
  - Day / Activity: ordered sub-entities; sequence order is presentation order.
  - State: a snapshot of the request lifecycle (Idle, Pending, Success, Failed).
  - LifecycleHooks: callbacks fired when a submission starts and resolves.
*/
package domain
