package provider

// Participant is a sender, recipient or attendee.
type Participant struct {
	Name   string `json:"name,omitempty"`
	Email  string `json:"email"`
	Status string `json:"status,omitempty"`
}

// Display returns the name, falling back to the address.
func (p Participant) Display() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Email
}

type Attachment struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	IsInline    bool   `json:"is_inline,omitempty"`
}

type EmailMessage struct {
	ID          string        `json:"id"`
	Object      string        `json:"object,omitempty"`
	GrantID     string        `json:"grant_id,omitempty"`
	ThreadID    string        `json:"thread_id"`
	Subject     string        `json:"subject"`
	Snippet     string        `json:"snippet"`
	Body        string        `json:"body"`
	Starred     bool          `json:"starred"`
	Unread      bool          `json:"unread"`
	Folders     []string      `json:"folders"`
	From        []Participant `json:"from"`
	To          []Participant `json:"to"`
	CC          []Participant `json:"cc,omitempty"`
	BCC         []Participant `json:"bcc,omitempty"`
	ReplyTo     []Participant `json:"reply_to,omitempty"`
	Attachments []Attachment  `json:"attachments,omitempty"`
	// Date is seconds since the Unix epoch.
	Date int64 `json:"date"`
}

// Sender is the display name of the first From entry.
func (m EmailMessage) Sender() string {
	if len(m.From) > 0 {
		return m.From[0].Display()
	}
	return "Unknown Sender"
}

// Recipient is the display name of the first To entry.
func (m EmailMessage) Recipient() string {
	if len(m.To) > 0 {
		return m.To[0].Display()
	}
	return "Unknown Recipient"
}

type Person struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type When struct {
	Object        string `json:"object,omitempty"`
	StartTime     int64  `json:"start_time"`
	EndTime       int64  `json:"end_time"`
	StartTimezone string `json:"start_timezone,omitempty"`
	EndTimezone   string `json:"end_timezone,omitempty"`
}

type ConferencingDetails struct {
	URL         string `json:"url,omitempty"`
	MeetingCode string `json:"meeting_code,omitempty"`
}

type Conferencing struct {
	Provider string              `json:"provider"`
	Details  ConferencingDetails `json:"details"`
}

type Reminders struct {
	UseDefault bool  `json:"use_default"`
	Overrides  []any `json:"overrides,omitempty"`
}

type CalendarEvent struct {
	ID               string        `json:"id"`
	Object           string        `json:"object,omitempty"`
	GrantID          string        `json:"grant_id,omitempty"`
	CalendarID       string        `json:"calendar_id"`
	ICalUID          string        `json:"ical_uid,omitempty"`
	Title            string        `json:"title"`
	Organizer        Person        `json:"organizer"`
	Creator          Person        `json:"creator"`
	Participants     []Participant `json:"participants"`
	HideParticipants bool          `json:"hide_participants,omitempty"`
	When             When          `json:"when"`
	Conferencing     *Conferencing `json:"conferencing,omitempty"`
	Reminders        *Reminders    `json:"reminders,omitempty"`
	Status           string        `json:"status"`
	Visibility       string        `json:"visibility"`
	HTMLLink         string        `json:"html_link"`
	Busy             bool          `json:"busy"`
	ReadOnly         bool          `json:"read_only"`
	CreatedAt        int64         `json:"created_at,omitempty"`
	UpdatedAt        int64         `json:"updated_at,omitempty"`
}

// Page is the provider's list envelope.
type Page[T any] struct {
	RequestID  string `json:"request_id"`
	Data       []T    `json:"data"`
	NextCursor string `json:"next_cursor,omitempty"`
}
