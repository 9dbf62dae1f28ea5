// Package services provides domain services that orchestrate business operations
// across multiple domain entities in the fulfillment system. It implements
// business rules that don't naturally belong to a single aggregate root.
//
// The package includes:
//   - FeeCalculator: delivery distance, radius eligibility and fee policy
//   - RiskEngine: COD fraud-risk scoring and the COD amount limit
//   - CourierDispatcher: binding a locked courier to an order, including reassignment
//
// Services are stateless values configured at construction; all tunables are
// passed in from configuration.
package services
