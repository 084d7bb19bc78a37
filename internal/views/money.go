package views

import (
	"github.com/shopspring/decimal"

	"lifeadmin/internal/core"
)

// BudgetSpent sums spend transactions booked against budgetID in monthKey.
// Any stored "spent" figure is ignored.
func BudgetSpent(txns []core.Transaction, budgetID, monthKey string) float64 {
	var amounts []float64
	for _, tx := range txns {
		if tx.Type != core.TxnSpend || tx.BudgetID == nil || *tx.BudgetID != budgetID {
			continue
		}
		if core.MonthKeyOfISO(tx.DateISO) != monthKey {
			continue
		}
		amounts = append(amounts, tx.Amount)
	}
	return core.SumAmounts(amounts...)
}

func sub(a, b float64) float64 {
	f, _ := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Round(2).Float64()
	return f
}

// BudgetProgress is one budget for one month.
type BudgetProgress struct {
	Budget    core.Budget `json:"budget"`
	Spent     float64     `json:"spent"`
	Remaining float64     `json:"remaining"`
	Pct       int         `json:"pct"`
	Over      bool        `json:"over"`
	Display   string      `json:"display"`
}

func Budget(b core.Budget, txns []core.Transaction, monthKey, currency string) BudgetProgress {
	spent := BudgetSpent(txns, b.ID, monthKey)
	return BudgetProgress{
		Budget:    b,
		Spent:     spent,
		Remaining: sub(b.MonthlyLimit, spent),
		Pct:       core.Percent(spent, b.MonthlyLimit),
		Over:      spent > b.MonthlyLimit,
		Display:   core.FormatMoney(spent, currency) + " / " + core.FormatMoney(b.MonthlyLimit, currency),
	}
}

// FundProgress is a savings goal with its completion. Remaining never goes
// below zero; Current may exceed Target.
type FundProgress struct {
	Fund      core.Fund `json:"fund"`
	Remaining float64   `json:"remaining"`
	Pct       int       `json:"pct"`
	Display   string    `json:"display"`
}

func Fund(f core.Fund, currency string) FundProgress {
	return FundProgress{
		Fund:      f,
		Remaining: max(0, sub(f.Target, f.Current)),
		Pct:       core.Percent(f.Current, f.Target),
		Display:   core.FormatMoney(f.Current, currency) + " / " + core.FormatMoney(f.Target, currency),
	}
}

// MonthTotals aggregates one month of transactions.
type MonthTotals struct {
	MonthKey    string  `json:"monthKey"`
	Income      float64 `json:"income"`
	Spent       float64 `json:"spent"`
	Deposits    float64 `json:"deposits"`
	Withdrawals float64 `json:"withdrawals"`
	Budgeted    float64 `json:"budgeted"`
	Net         float64 `json:"net"`
}

func Totals(m core.Money, monthKey string) MonthTotals {
	by := map[core.TxnType][]float64{}
	for _, tx := range m.Txns {
		if core.MonthKeyOfISO(tx.DateISO) == monthKey {
			by[tx.Type] = append(by[tx.Type], tx.Amount)
		}
	}
	limits := make([]float64, 0, len(m.Budgets))
	for _, b := range m.Budgets {
		limits = append(limits, b.MonthlyLimit)
	}
	t := MonthTotals{
		MonthKey:    monthKey,
		Income:      core.SumAmounts(by[core.TxnIncome]...),
		Spent:       core.SumAmounts(by[core.TxnSpend]...),
		Deposits:    core.SumAmounts(by[core.TxnDeposit]...),
		Withdrawals: core.SumAmounts(by[core.TxnWithdraw]...),
		Budgeted:    core.SumAmounts(limits...),
	}
	t.Net = sub(t.Income, t.Spent)
	return t
}

// MoneyView is the money screen for one month.
type MoneyView struct {
	Hidden     bool               `json:"hidden"`
	Currency   string             `json:"currency"`
	Funds      []FundProgress     `json:"funds"`
	Budgets    []BudgetProgress   `json:"budgets"`
	Totals     MonthTotals        `json:"totals"`
	TotalSaved float64            `json:"totalSaved"`
	Txns       []core.Transaction `json:"txns"`
	PaydayISO  *string            `json:"paydayISO"`
}

// BuildMoney derives the money screen. With HideMoney set only the flag and
// currency are returned.
func BuildMoney(m core.Money, set core.Settings, monthKey string) MoneyView {
	v := MoneyView{Hidden: set.HideMoney, Currency: set.Currency}
	if set.HideMoney {
		return v
	}
	v.Funds = make([]FundProgress, 0, len(m.Funds))
	saved := make([]float64, 0, len(m.Funds))
	for _, f := range m.Funds {
		v.Funds = append(v.Funds, Fund(f, set.Currency))
		saved = append(saved, f.Current)
	}
	v.Budgets = make([]BudgetProgress, 0, len(m.Budgets))
	for _, b := range m.Budgets {
		v.Budgets = append(v.Budgets, Budget(b, m.Txns, monthKey, set.Currency))
	}
	v.Totals = Totals(m, monthKey)
	v.TotalSaved = core.SumAmounts(saved...)
	v.Txns = make([]core.Transaction, 0, len(m.Txns))
	for _, tx := range m.Txns {
		if core.MonthKeyOfISO(tx.DateISO) == monthKey {
			v.Txns = append(v.Txns, tx)
		}
	}
	v.PaydayISO = m.PaydayISO
	return v
}
