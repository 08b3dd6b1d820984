// Package position implements the flat/long/short state machine that
// turns a signal stream into a list of closed round-trip trades and a
// per-row equity curve.
package position

import (
	"github.com/shopspring/decimal"

	"github.com/tickframe/backtest/internal/position/commission"
	"github.com/tickframe/backtest/internal/types"
)

// State is one of the three positions the machine can hold.
type State int

const (
	Flat State = iota
	Long
	Short
)

// Machine drives the §4.3 transition table over a row stream, accumulating
// closed trades and a per-row equity sample.
type Machine struct {
	pointValue float64
	commission commission.Model

	state      State
	entryPrice float64
	entryTime  int64

	realizedPnL float64
	trades      []types.Trade
	equityCurve []float64
}

// New builds a Machine with the given point value multiplier and
// commission model.
func New(pointValue float64, model commission.Model) *Machine {
	return &Machine{
		pointValue: pointValue,
		commission: model,
		state:      Flat,
	}
}

// Step feeds one (timestamp, reference_price, signal) row into the
// machine, appending an equity sample and, if the row closes a leg,
// a trade.
func (m *Machine) Step(timestampUs int64, referencePrice float64, signal types.Signal) {
	switch m.state {
	case Flat:
		switch signal {
		case types.SignalLong:
			m.open(Long, timestampUs, referencePrice)
		case types.SignalShort:
			m.open(Short, timestampUs, referencePrice)
		}
	case Long:
		switch signal {
		case types.SignalShort:
			m.close(timestampUs, referencePrice)
			m.open(Short, timestampUs, referencePrice)
		case types.SignalFlat:
			m.close(timestampUs, referencePrice)
		}
	case Short:
		switch signal {
		case types.SignalLong:
			m.close(timestampUs, referencePrice)
			m.open(Long, timestampUs, referencePrice)
		case types.SignalFlat:
			m.close(timestampUs, referencePrice)
		}
	}

	m.equityCurve = append(m.equityCurve, m.markToMarket(referencePrice))
}

// Finish closes any open position at the final reference price and
// timestamp, then returns the accumulated trades and equity curve.
func (m *Machine) Finish(lastTimestampUs int64, lastReferencePrice float64) ([]types.Trade, []float64) {
	if m.state != Flat {
		m.close(lastTimestampUs, lastReferencePrice)
		if n := len(m.equityCurve); n > 0 {
			m.equityCurve[n-1] = m.realizedPnL
		}
	}
	return m.trades, m.equityCurve
}

func (m *Machine) open(side State, timestampUs int64, price float64) {
	m.state = side
	m.entryPrice = price
	m.entryTime = timestampUs
}

func (m *Machine) close(timestampUs int64, price float64) {
	gross := m.grossPnL(m.state, m.entryPrice, price)
	fee := m.commission.Calculate(1)
	net := gross - fee

	side := types.SideLong
	if m.state == Short {
		side = types.SideShort
	}

	m.trades = append(m.trades, types.Trade{
		Side:       side,
		EntryTime:  m.entryTime,
		EntryPrice: m.entryPrice,
		ExitTime:   timestampUs,
		ExitPrice:  price,
		GrossPnL:   gross,
		Commission: fee,
		NetPnL:     net,
	})

	m.realizedPnL += net
	m.state = Flat
}

// grossPnL computes (exit-entry)*point_value for a long, or the negation
// for a short, using decimal arithmetic for the price-delta multiply.
func (m *Machine) grossPnL(side State, entryPrice, exitPrice float64) float64 {
	delta := decimal.NewFromFloat(exitPrice).Sub(decimal.NewFromFloat(entryPrice))
	if side == Short {
		delta = delta.Neg()
	}
	gross, _ := delta.Mul(decimal.NewFromFloat(m.pointValue)).Float64()
	return gross
}

// markToMarket returns cumulative realized net P&L plus, if a leg is
// currently open, its unrealized P&L at the given price.
func (m *Machine) markToMarket(price float64) float64 {
	if m.state == Flat {
		return m.realizedPnL
	}
	unrealized := m.grossPnL(m.state, m.entryPrice, price)
	return m.realizedPnL + unrealized
}

// State reports the machine's current position.
func (m *Machine) State() State {
	return m.state
}
