package models

import (
	"strings"
	"time"

	xutil "FxPulse/pkg/util"

	"gorm.io/datatypes"
)

// SettingsID is the primary key of the single settings row.
const SettingsID uint = 1

const (
	DefaultMinConfidence       = 90
	DefaultAvoidHighImpactNews = true
)

// Settings is the operator configuration. Exactly one row exists once it has
// been read.
type Settings struct {
	ID                  uint                        `gorm:"primaryKey" json:"id"`
	TelegramToken       string                      `gorm:"type:varchar(255)" json:"telegramToken"`
	TelegramGroupID     string                      `gorm:"column:telegram_group_id;type:varchar(64)" json:"telegramGroupId"`
	MinConfidence       int                         `gorm:"not null" json:"minConfidence"`
	AutoTrading         bool                        `gorm:"not null" json:"autoTrading"`
	AvoidHighImpactNews bool                        `gorm:"not null" json:"avoidHighImpactNews"`
	CustomPairs         datatypes.JSONSlice[string] `json:"customPairs"`
	UpdatedAt           time.Time                   `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Settings) TableName() string { return "settings" }

// DefaultSettings returns the row created on first access.
func DefaultSettings() Settings {
	return Settings{
		ID:                  SettingsID,
		MinConfidence:       DefaultMinConfidence,
		AvoidHighImpactNews: DefaultAvoidHighImpactNews,
		CustomPairs:         datatypes.JSONSlice[string]{},
	}
}

// NotificationsEnabled reports whether both Telegram credentials are present.
func (s *Settings) NotificationsEnabled() bool {
	return strings.TrimSpace(s.TelegramToken) != "" && strings.TrimSpace(s.TelegramGroupID) != ""
}

// SettingsPatch is a partial update. Nil fields are left unchanged.
type SettingsPatch struct {
	TelegramToken       *string   `json:"telegramToken"`
	TelegramGroupID     *string   `json:"telegramGroupId"`
	MinConfidence       *int      `json:"minConfidence" validate:"omitempty,gte=0,lte=100"`
	AutoTrading         *bool     `json:"autoTrading"`
	AvoidHighImpactNews *bool     `json:"avoidHighImpactNews"`
	CustomPairs         *[]string `json:"customPairs" validate:"omitempty,max=50,dive,min=3,max=32"`
}

// Apply copies the set fields of p onto s.
func (p *SettingsPatch) Apply(s *Settings) {
	if p.TelegramToken != nil {
		s.TelegramToken = strings.TrimSpace(*p.TelegramToken)
	}
	if p.TelegramGroupID != nil {
		s.TelegramGroupID = strings.TrimSpace(*p.TelegramGroupID)
	}
	if p.MinConfidence != nil {
		s.MinConfidence = *p.MinConfidence
	}
	if p.AutoTrading != nil {
		s.AutoTrading = *p.AutoTrading
	}
	if p.AvoidHighImpactNews != nil {
		s.AvoidHighImpactNews = *p.AvoidHighImpactNews
	}
	if p.CustomPairs != nil {
		s.CustomPairs = datatypes.JSONSlice[string](xutil.NormalizeList(*p.CustomPairs))
	}
}
