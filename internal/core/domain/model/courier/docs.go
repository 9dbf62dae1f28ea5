// Package courier provides domain entities and business logic for courier
// management in the fulfillment service. It implements the Courier aggregate
// root and the Assignment entity that binds a courier to an order.
//
// The package includes:
//   - Courier: identity, contact, vehicle and availability of a rider
//   - Assignment: one courier carrying one order, with assignment history
//   - VehicleType and Availability enums
//
// Key business rules:
//   - A courier can only take an assignment while Available and becomes Busy
//   - Releasing an assignment makes the courier Available again
//   - A Busy courier cannot be taken offline by an operator
//   - An order has at most one active assignment; reassignment releases the
//     previous one and keeps it as history
package courier
