package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveFrontierType(t *testing.T) {
	assert.Equal(t, FrontierPointSolar, DeriveFrontierType(100, 0))
	assert.Equal(t, FrontierPointBattery, DeriveFrontierType(0, 200))
	assert.Equal(t, FrontierPointHybrid, DeriveFrontierType(100, 200))
	assert.Equal(t, FrontierPointSolar, DeriveFrontierType(0, 0))
}

func TestNewFrontierPointDerivesType(t *testing.T) {
	p := NewFrontierPoint("hybrid-100kW-200kWh", 100, 200, 100, ScenarioFinancials{})
	assert.Equal(t, FrontierPointHybrid, p.Type)
	assert.False(t, p.IsOptimal)
}

func TestIncentiveBreakdownTotal(t *testing.T) {
	b := IncentiveBreakdown{
		UtilitySolarRebate:   1000,
		UtilityBatteryRebate: 500,
		FederalCredit:        2000,
		TaxShield:            750,
	}
	assert.InDelta(t, 4250, b.Total(), 1e-9)
}
