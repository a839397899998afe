// Package web defines common components for a web application.
package web

import "github.com/go-playground/validator/v10"

// Response holds the common response envelope for all APIs.
type Response struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Error wraps a given err into the common response envelope.
func Error(err error) Response {
	return Response{Error: err.Error()}
}

// GetErrorMsg returns a human readable message for a failed binding validation.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " is required"
	case "email":
		return " must be a valid email address"
	case "min":
		return " must be greater or equal to " + fe.Param()
	case "max":
		return " must be less or equal to " + fe.Param()
	case "currency":
		return " is not supported"
	case "transactiontype":
		return " must be either deposit or withdrawal"
	case "accounttype":
		return " must be either personal or business"
	}

	return " is invalid"
}
