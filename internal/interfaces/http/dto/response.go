package dto

// Response is the envelope every endpoint answers with
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorInfo represents error details. Details lists the offending fields of
// a validation failure.
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail is one offending field
type ValidationDetail struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Meta represents pagination metadata
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// ListData is the list payload shape: {"<entity>s": [...], "total": N}
type ListData map[string]interface{}

// NewListData builds the list payload for the given collection key
func NewListData(key string, items interface{}, total int64) ListData {
	return ListData{key: items, "total": total}
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewSuccessResponseWithMeta creates a success response with pagination meta
func NewSuccessResponseWithMeta(data interface{}, total int64, page, pageSize int) Response {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages,
		},
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithRequestID creates an error response tagged with the request id
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	resp := NewErrorResponse(code, message)
	resp.Error.RequestID = requestID
	return resp
}

// NewValidationErrorResponse creates a validation error response with field details
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	resp := NewErrorResponseWithRequestID(ErrCodeValidation, message, requestID)
	resp.Error.Details = details
	return resp
}

// ListRequest carries the pagination parameters shared by list endpoints.
// Skip/Limit are accepted as an alternative to Page/Size.
type ListRequest struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Size  int `form:"size" binding:"omitempty,min=1,max=100"`
	Skip  int `form:"skip" binding:"omitempty,min=0"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// Resolve returns the page and page size, defaulting to 1 and 20
func (r ListRequest) Resolve() (page, size int) {
	page, size = r.Page, r.Size
	if size == 0 {
		size = r.Limit
	}
	if size == 0 {
		size = 20
	}
	if page == 0 && r.Skip > 0 {
		page = r.Skip/size + 1
	}
	if page == 0 {
		page = 1
	}
	return page, size
}
