package archive

import (
	"fmt"

	"signal-dashboard-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Archive is a best-effort local mirror of every ingested signal. It lets
// the dashboard show past trades even when the external sink is down, but
// never blocks or fails an ingest.
type Archive struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open creates the archive database and migrates its schema.
func Open(dsn string, logger *zap.Logger) (*Archive, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	if err := db.AutoMigrate(&models.SignalRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate archive schema: %w", err)
	}

	return &Archive{db: db, logger: logger}, nil
}

// Record stores one ingested signal. Errors are logged, never returned:
// the archive is not on the ingest path's contract.
func (a *Archive) Record(s models.Signal, id string) {
	rec := models.SignalRecord{
		IngestID: id,
		Action:   s.Action,
		Kind:     string(s.Kind()),
		Ticker:   s.Ticker,
		Price:    float64(s.Price),
		SL:       float64(s.SL),
		TP1:      float64(s.TP1),
		TP2:      float64(s.TP2),
		TP3:      float64(s.TP3),
		Result:   s.Result,
		Comment:  s.Comment,
		Date:     s.Date,
		Time:     s.Time,
	}

	if err := a.db.Create(&rec).Error; err != nil {
		a.logger.Error("Failed to archive signal",
			zap.String("ticker", s.Ticker),
			zap.String("id", id),
			zap.Error(err),
		)
		return
	}
	a.logger.Debug("Archived signal", zap.Uint("record_id", rec.ID))
}

// Recent returns the n most recently archived signals, newest first.
func (a *Archive) Recent(n int) ([]models.SignalRecord, error) {
	var records []models.SignalRecord
	if err := a.db.Order("id desc").Limit(n).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}
	return records, nil
}
