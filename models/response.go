package models

// Response is the standard API envelope. User-facing messages are
// bilingual: Message in English, MessageAr in Arabic.
type Response struct {
	Status    int         `json:"status"`
	Message   string      `json:"message"`
	MessageAr string      `json:"messageAr,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// PaginatedResponse wraps list endpoints that support paging
type PaginatedResponse struct {
	Status    int         `json:"status"`
	Message   string      `json:"message"`
	MessageAr string      `json:"messageAr,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Page      int         `json:"page"`
	Limit     int         `json:"limit"`
	Total     int64       `json:"total"`
}
