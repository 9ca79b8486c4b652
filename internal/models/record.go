package models

import "gorm.io/gorm"

// SignalRecord is one archived signal row in the local database.
type SignalRecord struct {
	gorm.Model
	IngestID string  `gorm:"uniqueIndex" json:"ingest_id"`
	Action   string  `json:"action"`
	Kind     string  `json:"kind"`
	Ticker   string  `json:"ticker"`
	Price    float64 `json:"price"`
	SL       float64 `json:"sl"`
	TP1      float64 `json:"tp1"`
	TP2      float64 `json:"tp2"`
	TP3      float64 `json:"tp3"`
	Result   string  `json:"result,omitempty"`
	Comment  string  `json:"comment,omitempty"`
	Date     string  `json:"date"`
	Time     string  `json:"time"`
}
