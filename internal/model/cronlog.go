package model

import "time"

// CronLog is a heartbeat row written by the scheduled endpoint
type CronLog struct {
	ID        int       `json:"id" db:"id"`
	Info      string    `json:"info" db:"info"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
