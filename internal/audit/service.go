package audit

import (
	"encoding/json"
	"fmt"

	"lokanta-backend/internal/database"
	"lokanta-backend/internal/logger"
	"lokanta-backend/internal/models"

	"go.uber.org/zap"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// WriteLog: İşlem kaydını düşer; kayıt başarısız olsa bile asıl işlem
// etkilenmez, sadece loglanır.
func WriteLog(opts LogOptions) error {
	// PostgreSQL jsonb boş string kabul etmez, "null" JSON kullanılır
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	log := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := database.DB.Create(&log).Error; err != nil {
		logger.L().Warn("audit log kaydedilemedi",
			zap.String("entity_type", opts.EntityType),
			zap.Uint("entity_id", opts.EntityID),
			zap.Error(err))
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}
	return nil
}
