package twentycrm

// Fixed REST resource paths on the Twenty CRM API.
const (
	PeopleEndpoint = "rest/people"
	TasksEndpoint  = "rest/tasks"
)

// StatusBacklog is the task status every synced task is created with.
const StatusBacklog = "BACKLOG"

// Name is the person name structure. The CRM rejects empty required name
// fields, so callers substitute a sentinel before building this.
type Name struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Emails is the person email structure. AdditionalEmails serializes as null
// when absent, matching the CRM's expected shape.
type Emails struct {
	PrimaryEmail     string   `json:"primaryEmail"`
	AdditionalEmails []string `json:"additionalEmails"`
}

// Link is a social-profile link block. The CRM schema requires the shape to
// be present even when empty, so the zero value marshals to an empty-but-
// well-formed structure as long as SecondaryLinks is non-nil.
type Link struct {
	PrimaryLinkLabel string           `json:"primaryLinkLabel"`
	PrimaryLinkURL   string           `json:"primaryLinkUrl"`
	SecondaryLinks   []map[string]any `json:"secondaryLinks"`
}

// EmptyLink returns a Link that marshals to the empty shape the CRM expects.
func EmptyLink() Link {
	return Link{SecondaryLinks: []map[string]any{}}
}

// Phones is the person phone block. Calling and country codes are pointers
// so an unknown value serializes as an explicit JSON null rather than being
// omitted.
type Phones struct {
	PrimaryPhoneNumber      string   `json:"primaryPhoneNumber"`
	PrimaryPhoneCallingCode *string  `json:"primaryPhoneCallingCode"`
	PrimaryPhoneCountryCode *string  `json:"primaryPhoneCountryCode"`
	AdditionalPhones        []string `json:"additionalPhones"`
}

// PersonCreate is the request body for creating a person.
type PersonCreate struct {
	Name         Name    `json:"name"`
	Emails       Emails  `json:"emails"`
	LinkedinLink Link    `json:"linkedinLink"`
	XLink        Link    `json:"xLink"`
	Phones       *Phones `json:"phones,omitempty"`
}

// TaskBody carries the markdown document for a task.
type TaskBody struct {
	Markdown string `json:"markdown"`
}

// TaskCreate is the request body for creating a task. The CRM's task create
// call has no working person-link field, so tasks are created unlinked and
// the association limitation is handled by the caller.
type TaskCreate struct {
	Title    string    `json:"title"`
	Status   string    `json:"status"`
	BodyV2   *TaskBody `json:"bodyV2,omitempty"`
	Salesrep string    `json:"salesrep,omitempty"`
}
