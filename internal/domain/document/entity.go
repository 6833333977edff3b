package document

import (
	"time"
)

type OutboxStatus string

const (
	OutboxPending    OutboxStatus = "pending"
	OutboxProcessing OutboxStatus = "processing"
	OutboxSent       OutboxStatus = "sent"
	OutboxFailed     OutboxStatus = "failed"
)

// OutboxEvent is a document-generation call recorded in the same transaction
// as the approval that caused it and delivered afterwards.
type OutboxEvent struct {
	ID             string
	LeaveRequestID string
	Payload        WebhookPayload
	Status         OutboxStatus
	Attempts       int
	LastError      *string
	DocumentURL    *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	SentAt         *time.Time
}

// WebhookPayload is the JSON body posted to the document script.
type WebhookPayload struct {
	RequestID             string `json:"request_id"`
	EmployeeID            string `json:"employee_id"`
	EmployeeName          string `json:"employee_name"`
	NIP                   string `json:"nip"`
	LeaveType             string `json:"type"`
	StartDate             string `json:"start_date"`
	EndDate               string `json:"end_date"`
	WorkingDays           int    `json:"workingdays"`
	Reason                string `json:"reason"`
	Address               string `json:"address,omitempty"`
	LeaveYear             int    `json:"leave_year"`
	UsedN2Year            int    `json:"used_n2_year"`
	UsedCarryOverDays     int    `json:"used_carry_over_days"`
	UsedCurrentYearDays   int    `json:"used_current_year_days"`
	SupervisorID          string `json:"supervisor_id"`
	SupervisorName        string `json:"supervisor_name"`
	AuthorizedOfficerID   string `json:"authorized_officer_id"`
	AuthorizedOfficerName string `json:"authorized_officer_name"`
	ApprovedAt            string `json:"approved_at"`
}

// WebhookResult is what the document script answers with.
type WebhookResult struct {
	Success     bool   `json:"success"`
	DocumentURL string `json:"url,omitempty"`
	Message     string `json:"message,omitempty"`
}

type DispatchSummary struct {
	Claimed int
	Sent    int
	Failed  int
}
