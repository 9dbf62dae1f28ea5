package servers

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

// Error is the body of every non-2xx response.
type Error struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Item struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type NewOrder struct {
	CustomerID    openapi_types.UUID `json:"customer_id"`
	PaymentMethod string             `json:"payment_method"`
	Items         []Item             `json:"items"`
	Address       string             `json:"address"`
	Pin           *Point             `json:"pin,omitempty"`
	RedeemPoints  int64              `json:"redeem_points,omitempty"`
}

type PlacedOrder struct {
	ID                   openapi_types.UUID `json:"id"`
	Status               string             `json:"status"`
	Subtotal             decimal.Decimal    `json:"subtotal"`
	DeliveryFee          decimal.Decimal    `json:"delivery_fee"`
	Discount             decimal.Decimal    `json:"discount"`
	Total                decimal.Decimal    `json:"total"`
	PointsRedeemed       int64              `json:"points_redeemed"`
	DistanceKm           *float64           `json:"distance_km,omitempty"`
	GeocodeStatus        string             `json:"geocode_status"`
	RiskLevel            *string            `json:"risk_level,omitempty"`
	ConfirmationDeadline *time.Time         `json:"confirmation_deadline,omitempty"`
}

type OrderSummary struct {
	ID            openapi_types.UUID `json:"id"`
	CustomerID    openapi_types.UUID `json:"customer_id"`
	PaymentMethod string             `json:"payment_method"`
	Status        string             `json:"status"`
	Total         decimal.Decimal    `json:"total"`
	PlacedAt      time.Time          `json:"placed_at"`
}

type Risk struct {
	Level               string    `json:"level"`
	Score               float64   `json:"score"`
	TrustScore          int       `json:"trust_score"`
	RecentCancellations int       `json:"recent_cancellations"`
	DistanceKm          float64   `json:"distance_km"`
	IsVerified          bool      `json:"is_verified"`
	FraudFlagged        bool      `json:"fraud_flagged"`
	OverLimit           bool      `json:"over_limit"`
	EvaluatedAt         time.Time `json:"evaluated_at"`
}

type Decision struct {
	Action               string    `json:"action"`
	Actor                string    `json:"actor"`
	Reason               string    `json:"reason,omitempty"`
	IsFraud              bool      `json:"is_fraud"`
	HighRiskAcknowledged bool      `json:"high_risk_acknowledged"`
	DecidedAt            time.Time `json:"decided_at"`
}

type Location struct {
	Status        string     `json:"status"`
	Lat           *float64   `json:"lat,omitempty"`
	Lng           *float64   `json:"lng,omitempty"`
	Attempts      int        `json:"attempts"`
	LastError     string     `json:"last_error,omitempty"`
	NextAttemptAt *time.Time `json:"next_attempt_at,omitempty"`
}

type ActiveCourier struct {
	CourierID   openapi_types.UUID `json:"courier_id"`
	Name        string             `json:"name"`
	VehicleType string             `json:"vehicle_type"`
	AssignedAt  time.Time          `json:"assigned_at"`
}

type OrderDetail struct {
	OrderSummary
	Items                []Item               `json:"items"`
	Address              string               `json:"address"`
	Subtotal             decimal.Decimal      `json:"subtotal"`
	DeliveryFee          decimal.Decimal      `json:"delivery_fee"`
	Discount             decimal.Decimal      `json:"discount"`
	CODAmountLimit       decimal.Decimal      `json:"cod_amount_limit"`
	ConfirmationDeadline *time.Time           `json:"confirmation_deadline,omitempty"`
	Timestamps           map[string]time.Time `json:"timestamps"`
	CancellationReason   string               `json:"cancellation_reason,omitempty"`
	Risk                 *Risk                `json:"risk,omitempty"`
	Decision             *Decision            `json:"decision,omitempty"`
	Location             *Location            `json:"location,omitempty"`
	Courier              *ActiveCourier       `json:"courier,omitempty"`
}

type StatusChange struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Actor   string `json:"actor,omitempty"`
}

type Transition struct {
	ID           openapi_types.UUID `json:"id"`
	From         string             `json:"from"`
	To           string             `json:"to"`
	PointsEarned *int64             `json:"points_earned,omitempty"`
}

type CourierChoice struct {
	CourierID *openapi_types.UUID `json:"courier_id,omitempty"`
}

type Assignment struct {
	OrderID           openapi_types.UUID  `json:"order_id"`
	CourierID         openapi_types.UUID  `json:"courier_id"`
	AssignmentID      openapi_types.UUID  `json:"assignment_id"`
	ReleasedCourierID *openapi_types.UUID `json:"released_courier_id,omitempty"`
	Unchanged         bool                `json:"unchanged"`
}

type PendingCODOrder struct {
	ID                   openapi_types.UUID `json:"id"`
	CustomerID           openapi_types.UUID `json:"customer_id"`
	Address              string             `json:"address"`
	Total                decimal.Decimal    `json:"total"`
	CODAmountLimit       decimal.Decimal    `json:"cod_amount_limit"`
	PlacedAt             time.Time          `json:"placed_at"`
	ConfirmationDeadline time.Time          `json:"confirmation_deadline"`
	MinutesRemaining     int                `json:"minutes_remaining"`
	GeocodeStatus        string             `json:"geocode_status,omitempty"`
	Risk                 *Risk              `json:"risk,omitempty"`
}

type CODDecision struct {
	Action              string `json:"action"`
	Actor               string `json:"actor,omitempty"`
	Reason              string `json:"reason,omitempty"`
	IsFraud             bool   `json:"is_fraud,omitempty"`
	AcknowledgeHighRisk bool   `json:"acknowledge_high_risk,omitempty"`
}

type DecisionOutcome struct {
	OrderID   openapi_types.UUID `json:"order_id"`
	Action    string             `json:"action"`
	Status    string             `json:"status"`
	RiskLevel string             `json:"risk_level"`
	Rejection *Error             `json:"rejection,omitempty"`
}

type FailedGeocodeJob struct {
	OrderID     openapi_types.UUID `json:"order_id"`
	OrderStatus string             `json:"order_status"`
	Address     string             `json:"address"`
	Attempts    int                `json:"attempts"`
	LastError   string             `json:"last_error,omitempty"`
	FailedAt    time.Time          `json:"failed_at"`
}

type ManualLocation struct {
	OrderID openapi_types.UUID `json:"order_id"`
	Lat     float64            `json:"lat"`
	Lng     float64            `json:"lng"`
}

type LocationUpdate struct {
	OrderID     openapi_types.UUID `json:"order_id"`
	Status      string             `json:"status"`
	DistanceKm  float64            `json:"distance_km"`
	Changed     bool               `json:"changed"`
	RiskUpdated bool               `json:"risk_updated"`
}

type CustomerProfile struct {
	TrustScore int  `json:"trust_score"`
	IsVerified bool `json:"is_verified"`
}

type Customer struct {
	ID           openapi_types.UUID `json:"id"`
	TrustScore   int                `json:"trust_score"`
	IsVerified   bool               `json:"is_verified"`
	FraudFlagged bool               `json:"fraud_flagged"`
	FraudReason  string             `json:"fraud_reason,omitempty"`
}

type NewCourier struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	VehicleType string `json:"vehicle_type"`
}

type Courier struct {
	ID            openapi_types.UUID  `json:"id"`
	Name          string              `json:"name"`
	Phone         string              `json:"phone"`
	VehicleType   string              `json:"vehicle_type"`
	Availability  string              `json:"availability"`
	ActiveOrderID *openapi_types.UUID `json:"active_order_id,omitempty"`
}

type CourierAvailability struct {
	Availability string `json:"availability"`
}

type Redemption struct {
	AccountID openapi_types.UUID  `json:"account_id"`
	Points    int64               `json:"points"`
	Subtotal  decimal.Decimal     `json:"subtotal"`
	OrderID   *openapi_types.UUID `json:"order_id,omitempty"`
}

type Bonus struct {
	AccountID openapi_types.UUID `json:"account_id"`
	Points    int64              `json:"points"`
	Reason    string             `json:"reason"`
}

type LedgerOutcome struct {
	TransactionID openapi_types.UUID `json:"transaction_id"`
	Points        int64              `json:"points"`
	Discount      decimal.Decimal    `json:"discount"`
	Balance       int64              `json:"balance"`
}

type LedgerEntry struct {
	ID        openapi_types.UUID  `json:"id"`
	Type      string              `json:"type"`
	Points    int64               `json:"points"`
	OrderRef  *openapi_types.UUID `json:"order_ref,omitempty"`
	Reason    string              `json:"reason,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

type LoyaltyAccount struct {
	AccountID openapi_types.UUID `json:"account_id"`
	Balance   int64              `json:"balance"`
	UpdatedAt *time.Time         `json:"updated_at,omitempty"`
	History   []LedgerEntry      `json:"history"`
}

// GetLoyaltyAccountParams holds the query parameters of GetLoyaltyAccount.
type GetLoyaltyAccountParams struct {
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}
