package models

import (
	"encoding/json"
	"net/http"
)

// Problem is an RFC 7807-style error response. Used by the panic recoverer;
// regular API errors go through the {status,message} envelope below.
type Problem struct {
	Type     string      `json:"type,omitempty"`
	Title    string      `json:"title"`
	Status   int         `json:"status"`
	Detail   string      `json:"detail,omitempty"`
	Instance string      `json:"instance,omitempty"`
	Extra    interface{} `json:"extra,omitempty"`
}

func WriteProblem(w http.ResponseWriter, status int, title, detail string, extra any) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Problem{
		Title:  title,
		Status: status,
		Detail: detail,
		Extra:  extra,
	})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Envelope is the {status, message, ...} body every mutation answers with.
type Envelope map[string]any

func WriteSuccess(w http.ResponseWriter, status int, message string, extra Envelope) {
	body := Envelope{"status": "success", "message": message}
	for k, v := range extra {
		body[k] = v
	}
	WriteJSON(w, status, body)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{"status": "error", "message": message})
}
