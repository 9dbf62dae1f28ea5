// Package kernel provides core domain primitives shared by every aggregate of
// the fulfillment service.
//
// The package includes:
//   - UUID: A value object for unique identifiers with validation and comparison capabilities
//   - GeoPoint: A validated latitude/longitude pair with great-circle distance
//
// These primitives are immutable and safe for concurrent use. Their zero values
// are invalid and fail Validate, so aggregates can detect fields that were never
// set through a constructor.
package kernel
