package model

// Response is the envelope of every JSON API response.
type Response struct {
	Data    any     `json:"data,omitempty"`
	Error   *string `json:"error,omitempty"`
	Message string  `json:"message"`
}

// ErrorResponse builds an error envelope carrying msg.
func ErrorResponse(msg string) Response {
	return Response{Error: &msg, Message: "Error"}
}
