package service

import (
	"sort"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// MaxSimulationMonths bounds the payoff simulation to 30 years.
const MaxSimulationMonths = 360

type simulatedDebt struct {
	balance decimal.Decimal
	rate    decimal.Decimal
	minimum decimal.Decimal
}

// SimulatePayoff runs a month by month payoff of the given debts. Each month
// accrues interest, pays minimums, then spends extra on debts in strategy
// order. The debts passed in are not modified.
func SimulatePayoff(debts []*domain.Debt, extra decimal.Decimal, strategy domain.DebtStrategy) (*domain.DebtSimulation, error) {
	if !strategy.Valid() {
		return nil, domain.ErrDebtStrategyInvalid
	}
	if extra.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	sim := make([]*simulatedDebt, 0, len(debts))
	for _, d := range debts {
		sim = append(sim, &simulatedDebt{
			balance: d.CurrentAmount,
			rate:    d.InterestRate.Div(hundred),
			minimum: d.MinPayment,
		})
	}

	result := &domain.DebtSimulation{
		Strategy:      strategy,
		TotalInterest: decimal.Zero,
		History:       make([]domain.DebtHistoryPoint, 0),
	}

	months := 0
	for anyOutstanding(sim) && months < MaxSimulationMonths {
		months++

		for _, d := range sim {
			if !d.balance.IsPositive() {
				continue
			}
			interest := d.balance.Mul(d.rate).Round(2)
			result.TotalInterest = result.TotalInterest.Add(interest)
			d.balance = d.balance.Add(interest)
			d.balance = d.balance.Sub(decimal.Min(d.balance, d.minimum))
		}

		sortForStrategy(sim, strategy)

		budget := extra
		for _, d := range sim {
			if !budget.IsPositive() {
				break
			}
			if !d.balance.IsPositive() {
				continue
			}
			payment := decimal.Min(d.balance, budget)
			d.balance = d.balance.Sub(payment)
			budget = budget.Sub(payment)
		}

		if months == 1 || months%3 == 0 {
			result.History = append(result.History, domain.DebtHistoryPoint{
				Month:   months,
				Balance: decimal.Max(decimal.Zero, totalBalance(sim)),
			})
		}
	}

	result.Months = months
	result.Converged = !anyOutstanding(sim)
	if result.Converged && len(sim) > 0 {
		n := len(result.History)
		if n == 0 || result.History[n-1].Balance.IsPositive() {
			result.History = append(result.History, domain.DebtHistoryPoint{Month: months, Balance: decimal.Zero})
		}
	}
	return result, nil
}

// sortForStrategy orders outstanding debts first: avalanche by highest rate,
// snowball by lowest balance. Ties keep their current order.
func sortForStrategy(debts []*simulatedDebt, strategy domain.DebtStrategy) {
	sort.SliceStable(debts, func(i, j int) bool {
		a, b := debts[i], debts[j]
		aOpen, bOpen := a.balance.IsPositive(), b.balance.IsPositive()
		if aOpen != bOpen {
			return aOpen
		}
		if !aOpen {
			return false
		}
		if strategy == domain.StrategyAvalanche {
			return a.rate.GreaterThan(b.rate)
		}
		return a.balance.LessThan(b.balance)
	})
}

func anyOutstanding(debts []*simulatedDebt) bool {
	for _, d := range debts {
		if d.balance.IsPositive() {
			return true
		}
	}
	return false
}

func totalBalance(debts []*simulatedDebt) decimal.Decimal {
	total := decimal.Zero
	for _, d := range debts {
		total = total.Add(d.balance)
	}
	return total
}
