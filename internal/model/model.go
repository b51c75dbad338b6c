// Package model defines the core domain types shared across the sync pipeline.
package model

import "time"

// Lead is a prospective customer record. Leads are created and updated by
// external systems; the pipeline consumes them read-only. LeadID is the
// externally assigned, immutable idempotency key for sync operations.
type Lead struct {
	LeadID    string `json:"lead_id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`

	DateOfBirth   string `json:"date_of_birth,omitempty"`
	AddressLine1  string `json:"address_line1,omitempty"`
	AddressLine2  string `json:"address_line2,omitempty"`
	City          string `json:"city,omitempty"`
	StateProvince string `json:"state_province,omitempty"`
	PostalCode    string `json:"postal_code,omitempty"`
	Country       string `json:"country,omitempty"`
	CountryCode   string `json:"country_code,omitempty"`

	VehicleType      string  `json:"vehicle_type,omitempty"`
	CurrentCredit    string  `json:"current_credit,omitempty"`
	EmploymentStatus string  `json:"employment_status,omitempty"`
	JobTitle         string  `json:"job_title,omitempty"`
	CompanyName      string  `json:"company_name,omitempty"`
	MonthlySalaryMin float64 `json:"monthly_salary_min,omitempty"`
	MonthlySalaryMax float64 `json:"monthly_salary_max,omitempty"`

	EmploymentLength    string `json:"employment_length,omitempty"`
	LengthAtCompany     string `json:"length_at_company,omitempty"`
	LengthAtHomeAddress string `json:"length_at_home_address,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
}

// SalesAgent is one roster entry. The roster is loaded once from
// configuration at startup and is immutable afterwards.
type SalesAgent struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Specialization     string   `json:"specialization,omitempty"`
	Expertise          string   `json:"expertise,omitempty"`
	ExperienceYears    int      `json:"experience_years,omitempty"`
	Location           string   `json:"location,omitempty"`
	Territory          string   `json:"territory,omitempty"`
	CurrentWorkload    int      `json:"current_workload,omitempty"`
	SuccessRate        int      `json:"success_rate,omitempty"`
	VehicleTypes       []string `json:"vehicle_types,omitempty"`
	CommunicationStyle string   `json:"communication_style,omitempty"`
	Language           string   `json:"language,omitempty"`
}

// AlternativeAgent is a runner-up candidate in a match verdict.
type AlternativeAgent struct {
	AgentID   string `json:"agent_id"`
	AgentName string `json:"agent_name"`
	Reason    string `json:"reason"`
}

// AgentMatch is the parsed verdict of one agent-matching LLM call.
// ConfidenceScore is a 0-10 integer supplied by the model; it is advisory
// and not independently validated.
type AgentMatch struct {
	SelectedAgentID   string             `json:"selected_agent_id"`
	SelectedAgentName string             `json:"selected_agent_name"`
	ConfidenceScore   int                `json:"confidence_score"`
	Reasoning         string             `json:"reasoning"`
	PrimaryLanguage   string             `json:"primary_language,omitempty"`
	AlternativeAgents []AlternativeAgent `json:"alternative_agents,omitempty"`
}

// SyncResult is the outcome of syncing a single lead to the CRM.
// A lead counts as synced when its person record exists (created now or
// previously); a failed task creation is carried in TaskError instead of
// failing the lead.
type SyncResult struct {
	LeadID         string         `json:"lead_id"`
	PersonResponse map[string]any `json:"person,omitempty"`
	PersonCreated  bool           `json:"person_created"`
	PersonID       string         `json:"person_id,omitempty"`
	TaskResponse   map[string]any `json:"task,omitempty"`
	TaskError      string         `json:"task_error,omitempty"`
	Match          *AgentMatch    `json:"sales_agent_match,omitempty"`
}

// OutcomeStatus is the per-lead status inside a batch result.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailed  OutcomeStatus = "failed"
)

// LeadOutcome records how one lead fared within a batch.
type LeadOutcome struct {
	LeadID string        `json:"lead_id"`
	Status OutcomeStatus `json:"status"`
	Detail string        `json:"detail,omitempty"`
	Result *SyncResult   `json:"result,omitempty"`
}

// BatchResult aggregates a batch sync run. Success+Failed always equals
// Total on completion.
type BatchResult struct {
	BatchID string        `json:"batch_id"`
	Total   int           `json:"total"`
	Success int           `json:"success"`
	Failed  int           `json:"failed"`
	Results []LeadOutcome `json:"results"`
}

// EmailMessage is one normalized mailbox record as returned by the email
// collaborator.
type EmailMessage struct {
	Subject        string    `json:"subject"`
	Body           string    `json:"body"`
	Sender         string    `json:"sender"`
	ReceivedAt     time.Time `json:"received_at"`
	HasAttachments bool      `json:"has_attachments"`
}
