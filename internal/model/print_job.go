// internal/model/print_job.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// PrintJob is one dispatched print attempt, recorded for the job
// history view. Jobs are recorded whether or not they succeeded.
type PrintJob struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrderNumber    int64     `json:"order_number" db:"order_number"`
	ConnectionType string    `json:"connection_type" db:"connection_type"`
	ByteCount      int       `json:"byte_count" db:"byte_count"`
	Success        bool      `json:"success" db:"success"`
	Message        string    `json:"message" db:"message"`
	ErrorCode      string    `json:"error_code,omitempty" db:"error_code"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
