package model

import "time"

// User represents an account in the system. TimeZone is an IANA zone name
// and anchors every "today" computation for the user.
type User struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	DisplayName  *string   `json:"displayName,omitempty"`
	TimeZone     string    `json:"timeZone"`
	Status       string    `json:"status"`
	CreationTime time.Time `json:"creationTime"`
}

// HealthEntry is the single health record for a (user, date) pair.
type HealthEntry struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Date         Date      `json:"date"`
	Water        int       `json:"water"`
	Steps        int       `json:"steps"`
	Calories     *int      `json:"calories,omitempty"`
	Meals        []string  `json:"meals,omitempty"`
	MealTypes    []string  `json:"mealTypes,omitempty"`
	Cycle        *string   `json:"cycle,omitempty"`
	PeriodDay    *int      `json:"periodDay,omitempty"`
	Bath         bool      `json:"bath"`
	FaceWash     bool      `json:"faceWash"`
	Notes        *string   `json:"notes,omitempty"`
	CreationTime time.Time `json:"creationTime"`
	UpdateTime   time.Time `json:"updateTime"`
}

// Conventional task status values. Stores treat the field as an opaque
// string and may carry others.
const (
	TaskStatusOngoing   = "ongoing"
	TaskStatusCompleted = "completed"
	TaskStatusPending   = "pending"
	TaskStatusOverdue   = "overdue"
)

// Task is a user task or assignment. Tasks without a DueTime never appear
// in any daily summary.
type Task struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	Title        string     `json:"title"`
	Description  *string    `json:"description,omitempty"`
	Type         string     `json:"type"`
	Status       string     `json:"status"`
	DueTime      *time.Time `json:"dueTime,omitempty"`
	Priority     *string    `json:"priority,omitempty"`
	Subject      *string    `json:"subject,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	CreationTime time.Time  `json:"creationTime"`
	UpdateTime   time.Time  `json:"updateTime"`
}

// JournalEntry is a dated piece of writing. EntryTime is a full timestamp
// placing the entry within a day.
type JournalEntry struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	EntryTime    time.Time `json:"entryTime"`
	Mood         *string   `json:"mood,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	Private      bool      `json:"private"`
	CreationTime time.Time `json:"creationTime"`
	UpdateTime   time.Time `json:"updateTime"`
}

// Expense is a single spend on a calendar date.
type Expense struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Amount        float64   `json:"amount"`
	Category      string    `json:"category"`
	Date          Date      `json:"date"`
	Description   string    `json:"description"`
	PaymentMethod *string   `json:"paymentMethod,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	CreationTime  time.Time `json:"creationTime"`
	UpdateTime    time.Time `json:"updateTime"`
}

// DailySummary is the composed view for one (user, date) pair. It is never
// persisted; every call recomputes it from the domain stores, and it holds
// no references back into store state.
//
// Invariant: TasksCompleted + TasksPending == len(Tasks).
type DailySummary struct {
	Date           Date            `json:"date"`
	UserID         string          `json:"userId"`
	Health         *HealthEntry    `json:"health,omitempty"`
	Tasks          []*Task         `json:"tasks"`
	JournalEntries []*JournalEntry `json:"journalEntries"`
	TotalExpenses  float64         `json:"totalExpenses"`
	WaterIntake    int             `json:"waterIntake"`
	Steps          int             `json:"steps"`
	TasksCompleted int             `json:"tasksCompleted"`
	TasksPending   int             `json:"tasksPending"`
}

// HealthStats aggregates health entries over an inclusive date range.
type HealthStats struct {
	Period      string   `json:"period"`
	AvgWater    float64  `json:"avgWater"`
	AvgSteps    float64  `json:"avgSteps"`
	AvgCalories *float64 `json:"avgCalories,omitempty"`
	TotalDays   int      `json:"totalDays"`
	Streak      int      `json:"streak"`
}

// Typed partial updates. Nil fields are left unchanged; stores apply only
// what is set.

type HealthEntryPatch struct {
	Water     *int      `json:"water,omitempty"`
	Steps     *int      `json:"steps,omitempty"`
	Calories  *int      `json:"calories,omitempty"`
	Meals     *[]string `json:"meals,omitempty"`
	MealTypes *[]string `json:"mealTypes,omitempty"`
	Cycle     *string   `json:"cycle,omitempty"`
	PeriodDay *int      `json:"periodDay,omitempty"`
	Bath      *bool     `json:"bath,omitempty"`
	FaceWash  *bool     `json:"faceWash,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
}

type TaskPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Type        *string    `json:"type,omitempty"`
	Status      *string    `json:"status,omitempty"`
	DueTime     *time.Time `json:"dueTime,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Subject     *string    `json:"subject,omitempty"`
	Tags        *[]string  `json:"tags,omitempty"`
}

type JournalEntryPatch struct {
	Title     *string    `json:"title,omitempty"`
	Content   *string    `json:"content,omitempty"`
	EntryTime *time.Time `json:"entryTime,omitempty"`
	Mood      *string    `json:"mood,omitempty"`
	Tags      *[]string  `json:"tags,omitempty"`
	Private   *bool      `json:"private,omitempty"`
}

type ExpensePatch struct {
	Amount        *float64  `json:"amount,omitempty"`
	Category      *string   `json:"category,omitempty"`
	Date          *Date     `json:"date,omitempty"`
	Description   *string   `json:"description,omitempty"`
	PaymentMethod *string   `json:"paymentMethod,omitempty"`
	Tags          *[]string `json:"tags,omitempty"`
}
