package usecase

import (
	"github.com/fekuna/omnipos-retail-service/internal/model"
	"github.com/fekuna/omnipos-retail-service/internal/sale/dto"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeMetrics sums revenue (net totals) and cost (unit cost snapshots) of sales.
// Margin is markup over cost and is 0 when there is no cost.
func ComputeMetrics(sales []model.Sale) dto.Metrics {
	m := dto.Metrics{
		Count:   len(sales),
		Revenue: decimal.Zero,
		Cost:    decimal.Zero,
		Profit:  decimal.Zero,
		Margin:  decimal.Zero,
		Sales:   make([]dto.SaleProfit, 0, len(sales)),
	}
	for i := range sales {
		s := &sales[i]
		cost := s.Cost()
		m.Revenue = m.Revenue.Add(s.NetTotal)
		m.Cost = m.Cost.Add(cost)
		m.Sales = append(m.Sales, dto.SaleProfit{
			SaleID: s.ID,
			Code:   s.Code,
			Net:    s.NetTotal,
			Cost:   cost,
			Profit: s.NetTotal.Sub(cost),
		})
	}
	m.Profit = m.Revenue.Sub(m.Cost)
	if m.Cost.IsPositive() {
		m.Margin = m.Profit.Div(m.Cost).Mul(hundred).Round(1)
	}
	return m
}
