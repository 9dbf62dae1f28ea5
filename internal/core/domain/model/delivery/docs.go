// Package delivery holds the DeliveryLocation aggregate: the geocoding state
// of an order's drop-off address.
//
// A location starts either Resolved (the customer dropped a map pin at
// checkout) or Pending (address only). Pending locations are worked off by
// the background resolver, which retries with linear backoff until the
// attempt ceiling moves them to Failed. An operator can always override the
// coordinates, which moves the location to ManuallyCorrected.
//
//	Pending ──> Resolved
//	   │
//	   └──> Failed ──> ManuallyCorrected
//
// Resolved and ManuallyCorrected are terminal for the resolver and are the
// only states in which an order may go out for delivery.
package delivery
