package api

// UploadResponse is the response from POST /api/upload.
type UploadResponse struct {
	Text      string `json:"text"`
	Filename  string `json:"filename"`
	FileType  string `json:"file_type"`
	SavedPath string `json:"saved_path,omitempty"`
	Error     string `json:"error,omitempty"`
}

// KeyInsight is one category of insights as returned by the service.
type KeyInsight struct {
	Category string   `json:"category"`
	Content  []string `json:"content"`
}

// InsightsResponse is the response from the get/update key insights
// endpoints.
type InsightsResponse struct {
	Insights []KeyInsight `json:"insights"`
	Error    string       `json:"error,omitempty"`
}

// MailDraftResponse is the response from the get/update mail draft
// endpoints.
type MailDraftResponse struct {
	Subject   string `json:"subject"`
	Greeting  string `json:"greeting"`
	Body      string `json:"body"`
	Closing   string `json:"closing"`
	Signature string `json:"signature"`
	Error     string `json:"error,omitempty"`
}

// SuggestedChanges is the request body of both update endpoints.
type SuggestedChanges struct {
	SuggestedChanges string `json:"suggested_changes"`
}

// SendEmailRequest is the request body of POST /api/send-email.
type SendEmailRequest struct {
	To        string `json:"to"`
	FromEmail string `json:"from_email"`
	Subject   string `json:"subject"`
	Content   string `json:"content"`
}

// SendEmailResponse is the response from POST /api/send-email.
type SendEmailResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ErrorResponse is the error body returned by the service.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
