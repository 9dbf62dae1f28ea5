// Package order implements the Order aggregate and its lifecycle state machine.
//
// The package includes:
//   - Order: the aggregate root holding pricing, payment method, risk data and timestamps
//   - Status: a closed enum with an explicit transition table
//   - Item: a line of the order as priced at checkout
//   - StatusChanged: the domain event recorded for every applied transition
//
// Key business rules:
//   - Online orders start in PendingPayment, COD orders in WaitingConfirmation
//   - Transitions follow the table in status.go; states are never skipped
//   - A COD order enters Queueing only after an approve risk decision
//   - OnDelivery requires an active courier assignment and a dispatchable location
//   - Cancellation is legal from every non-terminal state and always carries a reason
//   - Orders are never deleted; cancelled orders are retained
package order
