package logging

import (
	"encoding/json"
	"log"
	"time"
)

const Service = "web-mobile-api"

type Fields struct {
	RequestID  string `json:"request_id,omitempty"`
	UserID     uint   `json:"user_id,omitempty"`
	OrderID    uint   `json:"order_id,omitempty"`
	ProductID  uint   `json:"product_id,omitempty"`
	Step       string `json:"step,omitempty"`
	Status     string `json:"status,omitempty"`
	Attempt    int    `json:"attempt,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

type record struct {
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
	Fields
}

func Log(fields Fields) {
	data, err := json.Marshal(record{
		Service:   Service,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Fields:    fields,
	})
	if err != nil {
		log.Printf("{\"service\":%q,\"status\":\"log_error\",\"error\":%q}", Service, err.Error())
		return
	}
	log.Print(string(data))
}

// Err is Log with the error field filled in.
func Err(fields Fields, err error) {
	if err != nil {
		fields.Error = err.Error()
	}
	Log(fields)
}
