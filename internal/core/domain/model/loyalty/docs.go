// Package loyalty implements the points ledger.
//
// The ledger is append-only. An Account carries a cached balance that always
// equals the signed sum of its transactions: Earned and Bonus add, Redeemed
// and Expired subtract. Transactions store the magnitude; the sign comes
// from the type.
//
// Earning is keyed by the order id so settling the same completed order
// twice yields one Earned row. Redemption is capped by the balance and by a
// share of the order subtotal, both expressed through Policy.
package loyalty
