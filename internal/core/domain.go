package core

import (
	"errors"
	"strings"
)

// SchemaVersion is the version stamped on every persisted Store document.
const SchemaVersion = 2

// Category groups life admin items.
type Category string

const (
	CategoryRenewal Category = "renewal"
	CategoryAccount Category = "account"
	CategoryVehicle Category = "vehicle"
	CategoryInfo    Category = "info"
	CategoryMoney   Category = "money"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryRenewal, CategoryAccount, CategoryVehicle, CategoryInfo, CategoryMoney:
		return true
	}
	return false
}

// ReminderProfile names the nudge schedule used for an item.
type ReminderProfile string

const (
	ProfileGentle  ReminderProfile = "gentle"
	ProfileCareful ReminderProfile = "careful"
	ProfileTight   ReminderProfile = "tight"
)

func (p ReminderProfile) IsValid() bool {
	return p == ProfileGentle || p == ProfileCareful || p == ProfileTight
}

type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool { return p == PriorityNormal || p == PriorityHigh }

// Recurrence defines how an item's due date advances when marked done.
type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
	RecurrenceYearly  Recurrence = "yearly"
	RecurrenceCustom  Recurrence = "custom"
)

func (r Recurrence) IsValid() bool {
	switch r {
	case RecurrenceNone, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly, RecurrenceCustom:
		return true
	}
	return false
}

// TxnType encodes the direction of a money transaction. Amounts are always positive.
type TxnType string

const (
	TxnDeposit  TxnType = "deposit"
	TxnWithdraw TxnType = "withdraw"
	TxnSpend    TxnType = "spend"
	TxnIncome   TxnType = "income"
)

func (t TxnType) IsValid() bool {
	switch t {
	case TxnDeposit, TxnWithdraw, TxnSpend, TxnIncome:
		return true
	}
	return false
}

// SkillLevel is one of "ns" (not started) or "l1".."l5".
type SkillLevel string

const (
	LevelNotStarted SkillLevel = "ns"
	Level1          SkillLevel = "l1"
	Level2          SkillLevel = "l2"
	Level3          SkillLevel = "l3"
	Level4          SkillLevel = "l4"
	Level5          SkillLevel = "l5"
)

// SkillLevels lists the levels in ascending order.
var SkillLevels = []SkillLevel{LevelNotStarted, Level1, Level2, Level3, Level4, Level5}

func (l SkillLevel) IsValid() bool { return l.Score() >= 0 }

// Score returns the level index (0 for ns, 5 for l5) or -1 when unknown.
func (l SkillLevel) Score() int {
	for i, v := range SkillLevels {
		if v == l {
			return i
		}
	}
	return -1
}

// Label returns the human label of a level.
func (l SkillLevel) Label() string {
	switch l {
	case LevelNotStarted:
		return "Not started"
	case Level1, Level2, Level3, Level4, Level5:
		return "Level " + strings.TrimPrefix(string(l), "l")
	}
	return string(l)
}

// SortMode is the admin list ordering preference.
type SortMode string

const (
	SortDueSoonest    SortMode = "dueSoonest"
	SortDueLatest     SortMode = "dueLatest"
	SortCreatedOldest SortMode = "createdOldest"
	SortCreatedNewest SortMode = "createdNewest"
	SortNameAZ        SortMode = "nameAZ"
	SortNameZA        SortMode = "nameZA"
)

func (s SortMode) IsValid() bool {
	switch s {
	case SortDueSoonest, SortDueLatest, SortCreatedOldest, SortCreatedNewest, SortNameAZ, SortNameZA:
		return true
	}
	return false
}

type NotificationLevel string

const (
	NotifyOff    NotificationLevel = "off"
	NotifyUrgent NotificationLevel = "urgent"
	NotifyAll    NotificationLevel = "all"
)

func (n NotificationLevel) IsValid() bool {
	return n == NotifyOff || n == NotifyUrgent || n == NotifyAll
}

type CloudStatus string

const (
	CloudLocalOnly CloudStatus = "local-only"
	CloudReady     CloudStatus = "ready"
	CloudError     CloudStatus = "error"
)

func (c CloudStatus) IsValid() bool {
	return c == CloudLocalOnly || c == CloudReady || c == CloudError
}

// Win types recorded by actions.
const (
	WinSkill  = "skill"
	WinPlan   = "plan"
	WinOwned  = "owned"
	WinSaving = "saving"
	WinOther  = "other"
)

// MaxWinEvents bounds the win log; older events are evicted first.
const MaxWinEvents = 600

// Domain validation errors
var (
	ErrEmptyName         = errors.New("name cannot be empty")
	ErrEmptyLabel        = errors.New("label cannot be empty")
	ErrInvalidDate       = errors.New("date must be YYYY-MM-DD")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrInvalidProfile    = errors.New("invalid reminder profile")
	ErrInvalidPriority   = errors.New("invalid priority")
	ErrInvalidRecurrence = errors.New("invalid recurrence")
	ErrInvalidCustomDays = errors.New("custom recurrence needs a whole number of days above zero")
	ErrUnexpectedDays    = errors.New("custom days only apply to custom recurrence")
	ErrNegativeAmount    = errors.New("amount cannot be negative")
	ErrNonPositive       = errors.New("amount must be greater than zero")
	ErrInvalidTxnType    = errors.New("invalid transaction type")
	ErrInvalidLevel      = errors.New("invalid skill level")
)

// AdminItem is a renewal, account, vehicle, info or money reminder.
type AdminItem struct {
	ID              string          `json:"id"`
	Category        Category        `json:"category"`
	Name            string          `json:"name"`
	Details         string          `json:"details"`
	DueDateISO      *string         `json:"dueDateISO"`
	ReminderProfile ReminderProfile `json:"reminderProfile"`
	Priority        Priority        `json:"priority"`
	Archived        bool            `json:"archived"`
	Recurrence      Recurrence      `json:"recurrence"`
	CustomDays      *int            `json:"customDays"`
	CreatedAtISO    string          `json:"createdAtISO"`
	UpdatedAtISO    string          `json:"updatedAtISO"`
	DoneCount       int             `json:"doneCount"`
}

// Validate checks user supplied item fields. customDays must be set exactly
// when the recurrence is custom.
func (a AdminItem) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if !a.Category.IsValid() {
		return ErrInvalidCategory
	}
	if a.DueDateISO != nil && !IsISODate(*a.DueDateISO) {
		return ErrInvalidDate
	}
	if !a.ReminderProfile.IsValid() {
		return ErrInvalidProfile
	}
	if !a.Priority.IsValid() {
		return ErrInvalidPriority
	}
	if !a.Recurrence.IsValid() {
		return ErrInvalidRecurrence
	}
	if a.Recurrence == RecurrenceCustom {
		if a.CustomDays == nil || *a.CustomDays <= 0 {
			return ErrInvalidCustomDays
		}
	} else if a.CustomDays != nil {
		return ErrUnexpectedDays
	}
	return nil
}

// Fund is a savings goal. Current may exceed Target.
type Fund struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Priority     Priority `json:"priority"`
	Target       float64  `json:"target"`
	Current      float64  `json:"current"`
	MonthlyGoal  float64  `json:"monthlyGoal"`
	TargetDate   *string  `json:"targetDate"`
	Notes        string   `json:"notes"`
	CreatedAtISO string   `json:"createdAtISO"`
	UpdatedAtISO string   `json:"updatedAtISO"`
}

func (f Fund) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrEmptyName
	}
	if f.Target < 0 || f.Current < 0 || f.MonthlyGoal < 0 {
		return ErrNegativeAmount
	}
	if f.TargetDate != nil && !IsISODate(*f.TargetDate) {
		return ErrInvalidDate
	}
	if !f.Priority.IsValid() {
		return ErrInvalidPriority
	}
	return nil
}

// Budget is a monthly spending cap. Spent is always derived from transactions.
type Budget struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Priority     Priority `json:"priority"`
	MonthlyLimit float64  `json:"monthlyLimit"`
	Notes        string   `json:"notes"`
	CreatedAtISO string   `json:"createdAtISO"`
	UpdatedAtISO string   `json:"updatedAtISO"`
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if b.MonthlyLimit < 0 {
		return ErrNegativeAmount
	}
	if !b.Priority.IsValid() {
		return ErrInvalidPriority
	}
	return nil
}

// Transaction moves money. Direction is carried by Type, never by sign.
type Transaction struct {
	ID           string  `json:"id"`
	Type         TxnType `json:"type"`
	Label        string  `json:"label"`
	Amount       float64 `json:"amount"`
	DateISO      string  `json:"dateISO"`
	FundID       *string `json:"fundId"`
	BudgetID     *string `json:"budgetId"`
	CreatedAtISO string  `json:"createdAtISO"`
}

func (t Transaction) Validate() error {
	if !t.Type.IsValid() {
		return ErrInvalidTxnType
	}
	if strings.TrimSpace(t.Label) == "" {
		return ErrEmptyLabel
	}
	if !(t.Amount > 0) {
		return ErrNonPositive
	}
	if !IsISODate(t.DateISO) {
		return ErrInvalidDate
	}
	return nil
}

// RoomItem is a furnishing entry in a room's essentials or extras list.
type RoomItem struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Planned      bool     `json:"planned"`
	Owned        bool     `json:"owned"`
	NextToBuy    bool     `json:"nextToBuy"`
	Priority     Priority `json:"priority"`
	Cost         float64  `json:"cost"`
	Notes        string   `json:"notes"`
	CreatedAtISO string   `json:"createdAtISO"`
	UpdatedAtISO string   `json:"updatedAtISO"`
}

func (r RoomItem) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if r.Cost < 0 {
		return ErrNegativeAmount
	}
	if !r.Priority.IsValid() {
		return ErrInvalidPriority
	}
	return nil
}

type HomeRoom struct {
	Title      string     `json:"title"`
	Notes      string     `json:"notes"`
	Essentials []RoomItem `json:"essentials"`
	Extras     []RoomItem `json:"extras"`
}

type Home struct {
	Version int                 `json:"version"`
	Rooms   map[string]HomeRoom `json:"rooms"`
}

type Skill struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Level        SkillLevel `json:"level"`
	Notes        string     `json:"notes"`
	CreatedAtISO string     `json:"createdAtISO"`
	UpdatedAtISO string     `json:"updatedAtISO"`
}

func (s Skill) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if !s.Level.IsValid() {
		return ErrInvalidLevel
	}
	return nil
}

type SkillCategory struct {
	Category string  `json:"category"`
	Items    []Skill `json:"items"`
}

type Skills struct {
	Categories map[string]SkillCategory `json:"categories"`
}

// WinEvent is one entry of the append-only wins log.
type WinEvent struct {
	ID    string         `json:"id,omitempty"`
	TS    int64          `json:"ts"`
	Type  string         `json:"type"`
	Label string         `json:"label"`
	Delta float64        `json:"delta"`
	Meta  map[string]any `json:"meta,omitempty"`
}

type Wins struct {
	Version int        `json:"version"`
	Events  []WinEvent `json:"events"`
}

type Money struct {
	Funds     []Fund        `json:"funds"`
	Budgets   []Budget      `json:"budgets"`
	Txns      []Transaction `json:"txns"`
	PaydayISO *string       `json:"paydayISO"`
}

type LifeAdmin struct {
	Items []AdminItem `json:"items"`
}

type NotificationSettings struct {
	Enabled     bool              `json:"enabled"`
	Level       NotificationLevel `json:"level"`
	QuietFrom   string            `json:"quietFrom"`
	QuietTo     string            `json:"quietTo"`
	LastNudgeAt int64             `json:"lastNudgeAt"`
}

type VaultSettings struct {
	AutoLockEnabled bool `json:"autoLockEnabled"`
	IdleMinutes     int  `json:"idleMinutes"`
}

type CloudSettings struct {
	Enabled    bool        `json:"enabled"`
	UserID     string      `json:"userId"`
	Status     CloudStatus `json:"status"`
	LastSyncAt int64       `json:"lastSyncAt"`
}

// Settings are persisted user preferences. Ephemeral UI state lives elsewhere.
type Settings struct {
	CalmModeAuto        bool                 `json:"calmModeAuto"`
	CalmThreshold       float64              `json:"calmThreshold"`
	FocusWeekDefault    bool                 `json:"focusWeekDefault"`
	ShowArchivedDefault bool                 `json:"showArchivedDefault"`
	DefaultSort         SortMode             `json:"defaultSort"`
	HideMoney           bool                 `json:"hideMoney"`
	Currency            string               `json:"currency"`
	Notifications       NotificationSettings `json:"notifications"`
	Vault               VaultSettings        `json:"vault"`
	Cloud               CloudSettings        `json:"cloud"`
}

// Store is the single versioned document holding every entity.
type Store struct {
	Version   int       `json:"version"`
	UpdatedAt int64     `json:"updatedAt"`
	LifeAdmin LifeAdmin `json:"lifeAdmin"`
	Home      Home      `json:"home"`
	Skills    Skills    `json:"skills"`
	Money     Money     `json:"money"`
	Wins      Wins      `json:"wins"`
	Settings  Settings  `json:"settings"`
}

// FindItem returns the index of the admin item with the given id, or -1.
func (s *Store) FindItem(id string) int {
	for i := range s.LifeAdmin.Items {
		if s.LifeAdmin.Items[i].ID == id {
			return i
		}
	}
	return -1
}
