package http

import (
	"time"

	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/generated/servers"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

func apiID(id kernel.UUID) openapi_types.UUID {
	return id.Bytes()
}

func apiIDPtr(id *kernel.UUID) *openapi_types.UUID {
	if id == nil {
		return nil
	}
	v := id.Bytes()
	return &v
}

func domainID(id openapi_types.UUID) (kernel.UUID, error) {
	return kernel.UUIDFromBytes(id[:])
}

func domainIDPtr(id *openapi_types.UUID) (*kernel.UUID, error) {
	if id == nil {
		return nil, nil
	}
	v, err := domainID(*id)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func apiItems(items []order.Item) []servers.Item {
	out := make([]servers.Item, len(items))
	for i, item := range items {
		out[i] = servers.Item{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}
	return out
}

func apiRisk(r *queries.RiskView) *servers.Risk {
	if r == nil {
		return nil
	}
	return &servers.Risk{
		Level:               r.Level.String(),
		Score:               r.Score,
		TrustScore:          r.TrustScore,
		RecentCancellations: r.RecentCancellations,
		DistanceKm:          r.DistanceKm,
		IsVerified:          r.IsVerified,
		FraudFlagged:        r.FraudFlagged,
		OverLimit:           r.OverLimit,
		EvaluatedAt:         r.EvaluatedAt,
	}
}

func apiDecision(d *queries.DecisionView) *servers.Decision {
	if d == nil {
		return nil
	}
	return &servers.Decision{
		Action:               string(d.Action),
		Actor:                d.Actor,
		Reason:               d.Reason,
		IsFraud:              d.IsFraud,
		HighRiskAcknowledged: d.HighRiskAcknowledged,
		DecidedAt:            d.DecidedAt,
	}
}

func apiLocation(l *queries.LocationView) *servers.Location {
	if l == nil {
		return nil
	}
	return &servers.Location{
		Status:        string(l.Status),
		Lat:           l.Lat,
		Lng:           l.Lng,
		Attempts:      l.Attempts,
		LastError:     l.LastError,
		NextAttemptAt: l.NextAttemptAt,
	}
}

func apiCourier(a *queries.AssignmentView) *servers.ActiveCourier {
	if a == nil {
		return nil
	}
	return &servers.ActiveCourier{
		CourierID:   apiID(a.CourierID),
		Name:        a.CourierName,
		VehicleType: string(a.VehicleType),
		AssignedAt:  a.AssignedAt,
	}
}

func apiOrderDetail(o queries.GetOrderQueryResponse) servers.OrderDetail {
	timestamps := make(map[string]time.Time)
	for name, at := range map[string]*time.Time{
		"confirmed_at":        o.ConfirmedAt,
		"packed_at":           o.PackedAt,
		"out_for_delivery_at": o.OutForDeliveryAt,
		"delivered_at":        o.DeliveredAt,
		"payment_received_at": o.PaymentReceivedAt,
		"cancelled_at":        o.CancelledAt,
	} {
		if at != nil {
			timestamps[name] = *at
		}
	}

	return servers.OrderDetail{
		OrderSummary: servers.OrderSummary{
			ID:            apiID(o.ID),
			CustomerID:    apiID(o.CustomerID),
			PaymentMethod: string(o.PaymentMethod),
			Status:        o.Status.String(),
			Total:         o.Total,
			PlacedAt:      o.PlacedAt,
		},
		Items:                apiItems(o.Items),
		Address:              o.Address,
		Subtotal:             o.Subtotal,
		DeliveryFee:          o.DeliveryFee,
		Discount:             o.Discount,
		CODAmountLimit:       o.CODAmountLimit,
		ConfirmationDeadline: o.ConfirmationDeadline,
		Timestamps:           timestamps,
		CancellationReason:   o.CancellationReason,
		Risk:                 apiRisk(o.Risk),
		Decision:             apiDecision(o.Decision),
		Location:             apiLocation(o.Location),
		Courier:              apiCourier(o.Courier),
	}
}
