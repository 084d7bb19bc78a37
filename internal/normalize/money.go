package normalize

import (
	"lifeadmin/internal/core"
)

// Fund normalizes a savings goal. A name is required.
func Fund(raw any, o Options) Result[core.Fund] {
	o = o.withDefaults()
	m, ok := asMap(raw)
	if !ok {
		return drop[core.Fund]("not an object")
	}
	name := text(m["name"])
	if name == "" {
		return drop[core.Fund]("missing name")
	}
	f := core.Fund{
		ID:           text(m["id"]),
		Name:         name,
		Priority:     priority(m["priority"]),
		Target:       nonNegative(m["target"]),
		Current:      nonNegative(m["current"]),
		MonthlyGoal:  nonNegative(m["monthlyGoal"]),
		TargetDate:   optDate(m["targetDate"]),
		Notes:        text(m["notes"]),
		CreatedAtISO: timestamp(m["createdAtISO"], o),
		UpdatedAtISO: timestamp(m["updatedAtISO"], o),
	}
	if f.ID == "" {
		f.ID = o.NewID()
	}
	return keep(f)
}

// Budget normalizes a monthly cap. Stored "spent" snapshots are discarded;
// spending is always derived from transactions.
func Budget(raw any, o Options) Result[core.Budget] {
	o = o.withDefaults()
	m, ok := asMap(raw)
	if !ok {
		return drop[core.Budget]("not an object")
	}
	name := text(m["name"])
	if name == "" {
		return drop[core.Budget]("missing name")
	}
	limit := m["monthlyLimit"]
	if limit == nil {
		limit = m["limit"]
	}
	b := core.Budget{
		ID:           text(m["id"]),
		Name:         name,
		Priority:     priority(m["priority"]),
		MonthlyLimit: nonNegative(limit),
		Notes:        text(m["notes"]),
		CreatedAtISO: timestamp(m["createdAtISO"], o),
		UpdatedAtISO: timestamp(m["updatedAtISO"], o),
	}
	if b.ID == "" {
		b.ID = o.NewID()
	}
	return keep(b)
}

// Transaction normalizes a money movement. A transaction without a valid
// type, date, label or positive amount is meaningless and is dropped.
// A missing date defaults to today.
func Transaction(raw any, o Options) Result[core.Transaction] {
	o = o.withDefaults()
	m, ok := asMap(raw)
	if !ok {
		return drop[core.Transaction]("not an object")
	}
	typ := core.TxnType(text(m["type"]))
	if !typ.IsValid() {
		return drop[core.Transaction]("invalid type")
	}
	date := text(m["dateISO"])
	if date == "" {
		date = today(o)
	}
	if !core.IsISODate(date) {
		return drop[core.Transaction]("invalid date")
	}
	amount, ok := num(m["amount"])
	if !ok || amount <= 0 {
		return drop[core.Transaction]("amount must be positive")
	}
	label := text(m["label"])
	if label == "" {
		return drop[core.Transaction]("missing label")
	}
	t := core.Transaction{
		ID:           text(m["id"]),
		Type:         typ,
		Label:        label,
		Amount:       amount,
		DateISO:      date,
		FundID:       optID(m["fundId"]),
		BudgetID:     optID(m["budgetId"]),
		CreatedAtISO: timestamp(m["createdAtISO"], o),
	}
	if t.ID == "" {
		t.ID = o.NewID()
	}
	return keep(t)
}

// Money normalizes the money section: funds, budgets, transactions and payday.
func Money(raw any, o Options) core.Money {
	o = o.withDefaults()
	m, _ := asMap(raw)
	return core.Money{
		Funds:     collect(m["funds"], o, Fund, func(f *core.Fund) *string { return &f.ID }),
		Budgets:   collect(m["budgets"], o, Budget, func(b *core.Budget) *string { return &b.ID }),
		Txns:      collect(m["txns"], o, Transaction, func(t *core.Transaction) *string { return &t.ID }),
		PaydayISO: optDate(m["paydayISO"]),
	}
}

// collect runs fn over a raw list, keeping valid records with unique ids.
func collect[T any](raw any, o Options, fn func(any, Options) Result[T], id func(*T) *string) []T {
	list, _ := asSlice(raw)
	out := make([]T, 0, len(list))
	seen := idSet{}
	for _, r := range list {
		res := fn(r, o)
		if res.Dropped {
			continue
		}
		p := id(&res.Value)
		*p = seen.claim(*p, o)
		out = append(out, res.Value)
	}
	return out
}
