// Package risk holds the value objects produced by the risk assessment of a
// cash-on-delivery order: the coarse Level, the immutable Snapshot of the
// inputs captured at evaluation time, and the admin Decision that gates the
// order's move to the kitchen queue.
package risk
