package api

import (
	"encoding/json"
	"net/http"
)

// Error is a generic error structure that is used to send error responses to the client.
type Error struct {
	Code    string      `json:"code,required"`
	Message string      `json:"message,required"`
	Data    interface{} `json:"data,omitempty"`
}

// Response is a generic response structure that is used to send responses to the client.
type Response struct {
	Status string      `json:"status,required"`
	Data   interface{} `json:"data,omitempty"`
	Error  *Error      `json:"error,omitempty"`
}

// Error message
func (e *Error) Error() string {
	return e.Message
}

// Set data to response
func (rsp *Response) SetData(data interface{}) {
	rsp.Data = data
	rsp.Error = nil
}

// Set error to response
func (rsp *Response) SetError(code string, message string, data ...interface{}) {
	rsp.Data = nil
	rsp.Error = &Error{
		Code:    code,
		Message: message,
	}
	if len(data) > 0 {
		rsp.Error.Data = data[0]
	}
}

// Send success response to client
func (rsp *Response) Ok(w http.ResponseWriter) {
	rsp.write(w, http.StatusOK, "ok", nil)
}

// Send error response to client
func (rsp *Response) BadRequest(w http.ResponseWriter) {
	rsp.write(w, http.StatusBadRequest, "error", &Error{
		Code:    "bad_request",
		Message: "Bad request",
	})
}

// Send error response to client
func (rsp *Response) InternalServerError(w http.ResponseWriter) {
	rsp.write(w, http.StatusInternalServerError, "error", &Error{
		Code:    "internal_server_error",
		Message: "Internal server error",
	})
}

// Send error response to client
func (rsp *Response) NotFound(w http.ResponseWriter) {
	rsp.write(w, http.StatusNotFound, "error", &Error{
		Code:    "not_found",
		Message: "Not found",
	})
}

// Send error response to client
func (rsp *Response) Unauthorized(w http.ResponseWriter) {
	rsp.write(w, http.StatusUnauthorized, "error", &Error{
		Code:    "unauthorized",
		Message: "Unauthorized",
	})
}

// Send error response to client
func (rsp *Response) Forbidden(w http.ResponseWriter) {
	rsp.write(w, http.StatusForbidden, "error", &Error{
		Code:    "forbidden",
		Message: "Forbidden",
	})
}

func (rsp *Response) write(w http.ResponseWriter, statusCode int, status string, fallback *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	rsp.Status = status
	if status != "ok" && rsp.Error == nil {
		rsp.Error = fallback
	}
	_ = json.NewEncoder(w).Encode(rsp)
}
