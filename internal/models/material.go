package models

import "time"

// Material: Reçetelerde kullanılan ham madde (süt, kahve çekirdeği, kömür vs.)
type Material struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null;unique"`
	CreatedAt time.Time
}
