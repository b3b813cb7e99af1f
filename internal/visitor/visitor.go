package visitor

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Status is the lifecycle state of a visit.
type Status string

const (
	StatusScheduled  Status = "Scheduled"
	StatusCheckedIn  Status = "CheckedIn"
	StatusCheckedOut Status = "CheckedOut"
	StatusCancelled  Status = "Cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCheckedIn, StatusCheckedOut, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusCheckedOut || s == StatusCancelled
}

// Visitor is a registered visit to the facility.
type Visitor struct {
	ID             int64      `json:"id" gorm:"primaryKey"`
	FullName       string     `json:"fullName" gorm:"column:full_name;not null"`
	Company        string     `json:"company,omitempty"`
	ContactNumber  string     `json:"contactNumber" gorm:"column:contact_number;not null"`
	Email          string     `json:"email,omitempty"`
	Purpose        string     `json:"purpose" gorm:"not null"`
	HostEmployeeID int64      `json:"hostEmployeeId" gorm:"column:host_employee_id;index;not null"`
	VisitDate      time.Time  `json:"visitDate" gorm:"column:visit_date;index;not null"`
	IDNumber       string     `json:"idNumber,omitempty" gorm:"column:id_number"`
	Status         Status     `json:"status" gorm:"index;default:'Scheduled'"`
	PassNumber     string     `json:"passNumber" gorm:"column:pass_number;uniqueIndex;not null"`
	GateNumber     string     `json:"gateNumber,omitempty" gorm:"column:gate_number"`
	CheckInTime    *time.Time `json:"checkInTime,omitempty" gorm:"column:check_in_time"`
	CheckOutTime   *time.Time `json:"checkOutTime,omitempty" gorm:"column:check_out_time"`
	Remarks        string     `json:"remarks,omitempty"`
	ApprovedBy     *int64     `json:"approvedBy,omitempty" gorm:"column:approved_by"`
	CreatedBy      int64      `json:"createdBy" gorm:"column:created_by;not null"`
	CreatedAt      time.Time  `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" gorm:"column:updated_at"`

	// User summaries attached by the repository after the row is loaded.
	Host     *UserRef `json:"host,omitempty" gorm:"-"`
	Creator  *UserRef `json:"creator,omitempty" gorm:"-"`
	Approver *UserRef `json:"approver,omitempty" gorm:"-"`
}

func (Visitor) TableName() string {
	return "visitors"
}

// UserRef is the trimmed user summary embedded in visitor responses.
type UserRef struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
}

// GeneratePassNumber builds a pass identifier unique enough for a single
// facility. The repository still enforces uniqueness and the service retries
// on collision.
func GeneratePassNumber() string {
	return fmt.Sprintf("VMS-%d-%04d", time.Now().UnixMilli(), rand.Intn(10000))
}

// DayStats is the aggregate snapshot for the dashboard.
type DayStats struct {
	TotalToday      int64 `json:"totalToday"`
	CurrentlyInside int64 `json:"currentlyInside"`
	ScheduledToday  int64 `json:"scheduledToday"`
	CheckedOutToday int64 `json:"checkedOutToday"`
}

// Repository is the data access contract for visitors.
type Repository interface {
	Create(ctx context.Context, v *Visitor) error
	GetByID(ctx context.Context, id int64) (*Visitor, error)
	List(ctx context.Context, q ListQuery) ([]*Visitor, int64, error)
	// Transition performs a compare-and-swap status update: the row is
	// modified only when its current status equals from. It returns the
	// number of rows changed.
	Transition(ctx context.Context, id int64, from Status, updates map[string]interface{}) (int64, error)
	// TransitionFromAny is Transition with a set of acceptable source states.
	TransitionFromAny(ctx context.Context, id int64, from []Status, updates map[string]interface{}) (int64, error)
	Exists(ctx context.Context, id int64) (bool, error)
	DayStats(ctx context.Context, dayStart, dayEnd time.Time) (*DayStats, error)
	CurrentlyCheckedIn(ctx context.Context) ([]*Visitor, error)
}
