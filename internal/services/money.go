package services

import (
	"context"
	"fmt"
	"strings"

	"lifeadmin/internal/core"
)

// FundInput is the editable part of a savings fund.
type FundInput struct {
	Name        string        `json:"name"`
	Priority    core.Priority `json:"priority"`
	Target      float64       `json:"target"`
	Current     float64       `json:"current"`
	MonthlyGoal float64       `json:"monthlyGoal"`
	TargetDate  *string       `json:"targetDate"`
	Notes       string        `json:"notes"`
}

func (in FundInput) fund() core.Fund {
	if in.Priority == "" {
		in.Priority = core.PriorityNormal
	}
	if in.TargetDate != nil && strings.TrimSpace(*in.TargetDate) == "" {
		in.TargetDate = nil
	}
	return core.Fund{
		Name:        strings.TrimSpace(in.Name),
		Priority:    in.Priority,
		Target:      in.Target,
		Current:     in.Current,
		MonthlyGoal: in.MonthlyGoal,
		TargetDate:  in.TargetDate,
		Notes:       strings.TrimSpace(in.Notes),
	}
}

func (in FundInput) Validate() error { return invalid("fund", in.fund().Validate()) }

func findFund(st *core.Store, id string) int {
	for i := range st.Money.Funds {
		if st.Money.Funds[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) AddFund(ctx context.Context, in FundInput) (core.Fund, error) {
	if err := in.Validate(); err != nil {
		return core.Fund{}, err
	}
	f := in.fund()
	f.ID = s.m.NewID()
	f.CreatedAtISO = s.nowISO()
	f.UpdatedAtISO = f.CreatedAtISO
	_, err := s.update(ctx, "fund.add", func(st *core.Store) error {
		st.Money.Funds = append(st.Money.Funds, f)
		return nil
	})
	return f, err
}

// UpdateFund replaces a fund's fields. Raising Current logs a saving win for
// the difference.
func (s *Service) UpdateFund(ctx context.Context, id string, in FundInput) (core.Fund, error) {
	if err := in.Validate(); err != nil {
		return core.Fund{}, err
	}
	var out core.Fund
	_, err := s.update(ctx, "fund.update", func(st *core.Store) error {
		i := findFund(st, id)
		if i < 0 {
			return notFound("fund", id)
		}
		prev := st.Money.Funds[i]
		f := in.fund()
		f.ID, f.CreatedAtISO, f.UpdatedAtISO = prev.ID, prev.CreatedAtISO, s.nowISO()
		st.Money.Funds[i] = f
		if delta := core.SumAmounts(f.Current, -prev.Current); delta > 0 {
			s.appendWin(st, core.WinSaving, savedLabel(delta, f.Name, st.Settings.Currency), delta, map[string]any{"fundId": f.ID})
		}
		out = f
		return nil
	})
	return out, err
}

func (s *Service) DeleteFund(ctx context.Context, id string) error {
	_, err := s.update(ctx, "fund.delete", func(st *core.Store) error {
		i := findFund(st, id)
		if i < 0 {
			return notFound("fund", id)
		}
		st.Money.Funds = append(st.Money.Funds[:i], st.Money.Funds[i+1:]...)
		return nil
	})
	return err
}

func savedLabel(amount float64, fund, currency string) string {
	return fmt.Sprintf("Saved %s to %s", core.FormatMoney(amount, currency), fund)
}

// ContributeToFund adds amount to a fund, books a deposit against it and logs
// a saving win.
func (s *Service) ContributeToFund(ctx context.Context, id string, amount float64) (core.Fund, error) {
	if !(amount > 0) {
		return core.Fund{}, invalid("amount", core.ErrNonPositive)
	}
	var out core.Fund
	_, err := s.update(ctx, "fund.contribute", func(st *core.Store) error {
		i := findFund(st, id)
		if i < 0 {
			return notFound("fund", id)
		}
		f := &st.Money.Funds[i]
		now := s.now()
		f.Current = core.SumAmounts(f.Current, amount)
		f.UpdatedAtISO = core.Timestamp(now)
		fundID := f.ID
		st.Money.Txns = append(st.Money.Txns, core.Transaction{
			ID:           s.m.NewID(),
			Type:         core.TxnDeposit,
			Label:        "Contribution: " + f.Name,
			Amount:       amount,
			DateISO:      core.TodayISO(now),
			FundID:       &fundID,
			CreatedAtISO: core.Timestamp(now),
		})
		s.appendWin(st, core.WinSaving, savedLabel(amount, f.Name, st.Settings.Currency), amount, map[string]any{"fundId": fundID})
		out = *f
		return nil
	})
	return out, err
}

// BudgetInput is the editable part of a monthly budget.
type BudgetInput struct {
	Name         string        `json:"name"`
	Priority     core.Priority `json:"priority"`
	MonthlyLimit float64       `json:"monthlyLimit"`
	Notes        string        `json:"notes"`
}

func (in BudgetInput) budget() core.Budget {
	if in.Priority == "" {
		in.Priority = core.PriorityNormal
	}
	return core.Budget{
		Name:         strings.TrimSpace(in.Name),
		Priority:     in.Priority,
		MonthlyLimit: in.MonthlyLimit,
		Notes:        strings.TrimSpace(in.Notes),
	}
}

func (in BudgetInput) Validate() error { return invalid("budget", in.budget().Validate()) }

func (s *Service) AddBudget(ctx context.Context, in BudgetInput) (core.Budget, error) {
	if err := in.Validate(); err != nil {
		return core.Budget{}, err
	}
	b := in.budget()
	b.ID = s.m.NewID()
	b.CreatedAtISO = s.nowISO()
	b.UpdatedAtISO = b.CreatedAtISO
	_, err := s.update(ctx, "budget.add", func(st *core.Store) error {
		st.Money.Budgets = append(st.Money.Budgets, b)
		return nil
	})
	return b, err
}

// DeleteBudget removes a budget. Transactions keep their budgetId so history
// is not rewritten.
func (s *Service) DeleteBudget(ctx context.Context, id string) error {
	_, err := s.update(ctx, "budget.delete", func(st *core.Store) error {
		for i := range st.Money.Budgets {
			if st.Money.Budgets[i].ID == id {
				st.Money.Budgets = append(st.Money.Budgets[:i], st.Money.Budgets[i+1:]...)
				return nil
			}
		}
		return notFound("budget", id)
	})
	return err
}

// TxnInput is a new money transaction. An empty date means today.
type TxnInput struct {
	Type     core.TxnType `json:"type"`
	Label    string       `json:"label"`
	Amount   float64      `json:"amount"`
	DateISO  string       `json:"dateISO"`
	FundID   *string      `json:"fundId"`
	BudgetID *string      `json:"budgetId"`
}

func (in TxnInput) txn(today string) core.Transaction {
	date := strings.TrimSpace(in.DateISO)
	if date == "" {
		date = today
	}
	return core.Transaction{
		Type:     in.Type,
		Label:    strings.TrimSpace(in.Label),
		Amount:   in.Amount,
		DateISO:  date,
		FundID:   in.FundID,
		BudgetID: in.BudgetID,
	}
}

func (in TxnInput) Validate() error {
	// The date check needs a concrete value; any valid date stands in for today.
	return invalid("transaction", in.txn("2000-01-01").Validate())
}

// AddTransaction books a transaction. Referenced funds and budgets must exist.
func (s *Service) AddTransaction(ctx context.Context, in TxnInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	now := s.now()
	tx := in.txn(core.TodayISO(now))
	tx.ID = s.m.NewID()
	tx.CreatedAtISO = core.Timestamp(now)
	_, err := s.update(ctx, "txn.add", func(st *core.Store) error {
		if tx.FundID != nil && findFund(st, *tx.FundID) < 0 {
			return notFound("fund", *tx.FundID)
		}
		if tx.BudgetID != nil && !hasBudget(st, *tx.BudgetID) {
			return notFound("budget", *tx.BudgetID)
		}
		st.Money.Txns = append(st.Money.Txns, tx)
		return nil
	})
	return tx, err
}

func hasBudget(st *core.Store, id string) bool {
	for _, b := range st.Money.Budgets {
		if b.ID == id {
			return true
		}
	}
	return false
}

func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	_, err := s.update(ctx, "txn.delete", func(st *core.Store) error {
		for i := range st.Money.Txns {
			if st.Money.Txns[i].ID == id {
				st.Money.Txns = append(st.Money.Txns[:i], st.Money.Txns[i+1:]...)
				return nil
			}
		}
		return notFound("transaction", id)
	})
	return err
}

// SetPayday stores the next payday. nil clears it.
func (s *Service) SetPayday(ctx context.Context, dateISO *string) error {
	if dateISO != nil && !core.IsISODate(*dateISO) {
		return invalid("paydayISO", core.ErrInvalidDate)
	}
	_, err := s.update(ctx, "money.payday", func(st *core.Store) error {
		st.Money.PaydayISO = dateISO
		return nil
	})
	return err
}
