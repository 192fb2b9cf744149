package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSimulatedOrder_Validate(t *testing.T) {
	limit := decimal.NewFromInt(100)

	t.Run("Valid Market Order", func(t *testing.T) {
		order := SimulatedOrder{Side: SideBuy, Kind: OrderKindMarket, Quantity: decimal.NewFromInt(1)}
		if err := order.Validate(); err != nil {
			t.Errorf("Expected valid, got %v", err)
		}
	})

	t.Run("Valid Limit Order", func(t *testing.T) {
		order := SimulatedOrder{Side: SideSell, Kind: OrderKindLimit, LimitPrice: &limit, Quantity: decimal.NewFromInt(2)}
		if err := order.Validate(); err != nil {
			t.Errorf("Expected valid, got %v", err)
		}
	})

	t.Run("Reject Non-Positive Quantity", func(t *testing.T) {
		order := SimulatedOrder{Side: SideBuy, Kind: OrderKindMarket, Quantity: decimal.Zero}
		err := order.Validate()
		if !errors.Is(err, ErrInvalidOrder) {
			t.Errorf("Expected ErrInvalidOrder, got %v", err)
		}
	})

	t.Run("Reject Limit Without Price", func(t *testing.T) {
		order := SimulatedOrder{Side: SideBuy, Kind: OrderKindLimit, Quantity: decimal.NewFromInt(1)}
		if order.Validate() == nil {
			t.Error("Limit order without limit price should be rejected")
		}
	})

	t.Run("Reject Negative Delay", func(t *testing.T) {
		order := SimulatedOrder{Side: SideBuy, Kind: OrderKindMarket, Quantity: decimal.NewFromInt(1), SimulatedDelaySeconds: -1}
		if order.Validate() == nil {
			t.Error("Negative simulated delay should be rejected")
		}
	})

	t.Run("Reject Unknown Side", func(t *testing.T) {
		order := SimulatedOrder{Side: "HOLD", Kind: OrderKindMarket, Quantity: decimal.NewFromInt(1)}
		err := order.Validate()
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != "side" {
			t.Errorf("Expected side validation error, got %v", err)
		}
	})
}
