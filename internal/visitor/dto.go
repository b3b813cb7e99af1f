package visitor

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	internalerrors "github.com/gatehouse/visitor-management/internal"
	"github.com/gatehouse/visitor-management/internal/core/common/validation"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

type CreateVisitorDTO struct {
	FullName       string    `json:"fullName"`
	Company        string    `json:"company"`
	ContactNumber  string    `json:"contactNumber"`
	Email          string    `json:"email"`
	Purpose        string    `json:"purpose"`
	HostEmployeeID int64     `json:"hostEmployeeId"`
	VisitDate      time.Time `json:"visitDate"`
	IDNumber       string    `json:"idNumber"`
	Remarks        string    `json:"remarks"`
}

func (d CreateVisitorDTO) Validate() *internalerrors.AppError {
	v := validation.NewValidator()
	v.Field("fullName", d.FullName).Required().MaxLength(200)
	v.Field("contactNumber", d.ContactNumber).Required().MaxLength(50)
	v.Field("purpose", d.Purpose).Required().MaxLength(500)
	v.Field("idNumber", d.IDNumber).MaxLength(100)
	v.Field("remarks", d.Remarks).MaxLength(1000)
	if d.Email != "" {
		v.Field("email", d.Email).Email()
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	if d.HostEmployeeID <= 0 {
		return internalerrors.NewValidationError("hostEmployeeId is required", internalerrors.ErrCodeValidationFailed)
	}
	if d.VisitDate.IsZero() {
		return internalerrors.NewValidationError("visitDate is required", internalerrors.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateVisitorDTO is a partial update of visit details. Status changes go
// through the dedicated transition endpoints instead.
type UpdateVisitorDTO struct {
	FullName       *string    `json:"fullName,omitempty"`
	Company        *string    `json:"company,omitempty"`
	ContactNumber  *string    `json:"contactNumber,omitempty"`
	Email          *string    `json:"email,omitempty"`
	Purpose        *string    `json:"purpose,omitempty"`
	HostEmployeeID *int64     `json:"hostEmployeeId,omitempty"`
	VisitDate      *time.Time `json:"visitDate,omitempty"`
	IDNumber       *string    `json:"idNumber,omitempty"`
	Remarks        *string    `json:"remarks,omitempty"`
}

func (d UpdateVisitorDTO) Validate() *internalerrors.AppError {
	v := validation.NewValidator()
	if d.FullName != nil {
		v.Field("fullName", *d.FullName).Required().MaxLength(200)
	}
	if d.ContactNumber != nil {
		v.Field("contactNumber", *d.ContactNumber).Required().MaxLength(50)
	}
	if d.Purpose != nil {
		v.Field("purpose", *d.Purpose).Required().MaxLength(500)
	}
	if d.Email != nil && *d.Email != "" {
		v.Field("email", *d.Email).Email()
	}
	if d.IDNumber != nil {
		v.Field("idNumber", *d.IDNumber).MaxLength(100)
	}
	if d.Remarks != nil {
		v.Field("remarks", *d.Remarks).MaxLength(1000)
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	if d.HostEmployeeID != nil && *d.HostEmployeeID <= 0 {
		return internalerrors.NewValidationError("hostEmployeeId must be positive", internalerrors.ErrCodeValidationFailed)
	}
	return nil
}

func (d UpdateVisitorDTO) Updates() map[string]interface{} {
	updates := map[string]interface{}{}
	if d.FullName != nil {
		updates["full_name"] = *d.FullName
	}
	if d.Company != nil {
		updates["company"] = *d.Company
	}
	if d.ContactNumber != nil {
		updates["contact_number"] = *d.ContactNumber
	}
	if d.Email != nil {
		updates["email"] = *d.Email
	}
	if d.Purpose != nil {
		updates["purpose"] = *d.Purpose
	}
	if d.HostEmployeeID != nil {
		updates["host_employee_id"] = *d.HostEmployeeID
	}
	if d.VisitDate != nil {
		updates["visit_date"] = *d.VisitDate
	}
	if d.IDNumber != nil {
		updates["id_number"] = *d.IDNumber
	}
	if d.Remarks != nil {
		updates["remarks"] = *d.Remarks
	}
	return updates
}

type CheckInDTO struct {
	GateNumber string `json:"gateNumber"`
}

func (d CheckInDTO) Validate() *internalerrors.AppError {
	v := validation.NewValidator()
	v.Field("gateNumber", d.GateNumber).Required().MaxLength(20)
	return v.Validate()
}

// ListQuery carries the filter, sort and pagination parameters of the
// visitor listing.
type ListQuery struct {
	Search         string
	Status         Status
	HostEmployeeID int64
	Company        string
	DateFrom       time.Time
	DateTo         time.Time
	Page           int
	Limit          int
	SortBy         string
	SortOrder      string
}

var sortableColumns = map[string]string{
	"visitDate":   "visit_date",
	"createdAt":   "created_at",
	"fullName":    "full_name",
	"status":      "status",
	"checkInTime": "check_in_time",
}

// ParseListQuery reads listing parameters from the request query string,
// applying defaults and bounds.
func ParseListQuery(values url.Values) (ListQuery, *internalerrors.AppError) {
	q := ListQuery{
		Search:    strings.TrimSpace(values.Get("search")),
		Status:    Status(values.Get("status")),
		Company:   strings.TrimSpace(values.Get("company")),
		Page:      defaultPage,
		Limit:     defaultLimit,
		SortBy:    "visitDate",
		SortOrder: "desc",
	}

	if q.Status != "" && !q.Status.Valid() {
		return q, internalerrors.NewValidationError("Invalid status filter", internalerrors.ErrCodeValidationFailed)
	}
	if raw := values.Get("hostEmployeeId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return q, internalerrors.NewValidationError("Invalid hostEmployeeId filter", internalerrors.ErrCodeValidationFailed)
		}
		q.HostEmployeeID = id
	}
	if raw := values.Get("dateFrom"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return q, internalerrors.NewValidationError("Invalid dateFrom", internalerrors.ErrCodeValidationFailed)
		}
		q.DateFrom = t
	}
	if raw := values.Get("dateTo"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return q, internalerrors.NewValidationError("Invalid dateTo", internalerrors.ErrCodeValidationFailed)
		}
		q.DateTo = t
	}
	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return q, internalerrors.NewValidationError("Invalid page", internalerrors.ErrCodeValidationFailed)
		}
		q.Page = page
	}
	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return q, internalerrors.NewValidationError("Invalid limit", internalerrors.ErrCodeValidationFailed)
		}
		if limit > maxLimit {
			limit = maxLimit
		}
		q.Limit = limit
	}
	if raw := values.Get("sortBy"); raw != "" {
		if _, ok := sortableColumns[raw]; !ok {
			return q, internalerrors.NewValidationError("Invalid sortBy", internalerrors.ErrCodeValidationFailed)
		}
		q.SortBy = raw
	}
	if raw := strings.ToLower(values.Get("sortOrder")); raw != "" {
		if raw != "asc" && raw != "desc" {
			return q, internalerrors.NewValidationError("Invalid sortOrder", internalerrors.ErrCodeValidationFailed)
		}
		q.SortOrder = raw
	}
	return q, nil
}

// OrderClause maps the query's sort parameters to a SQL order expression.
func (q ListQuery) OrderClause() string {
	col, ok := sortableColumns[q.SortBy]
	if !ok {
		col = "visit_date"
	}
	dir := "DESC"
	if q.SortOrder == "asc" {
		dir = "ASC"
	}
	return col + " " + dir
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
