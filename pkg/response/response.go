package response

import (
	"encoding/json"
	"net/http"
)

type APIResponse struct {
	Status     string      `json:"status"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := APIResponse{
		Status: "success",
		Data:   data,
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// JSONMessage is JSON plus a human-readable message alongside the data.
func JSONMessage(w http.ResponseWriter, status int, msg string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := APIResponse{
		Status:  "success",
		Message: msg,
		Data:    data,
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// Paginated wraps a list payload with pagination metadata.
func Paginated(w http.ResponseWriter, status int, data interface{}, p Pagination) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := APIResponse{
		Status:     "success",
		Data:       data,
		Pagination: &p,
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func Error(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := APIResponse{
		Status:  "error",
		Message: msg,
	}
	_ = json.NewEncoder(w).Encode(resp)
}
