package db

import (
	"context"
	"time"
)

// Translation row statuses, matching GlotPress semantics: "current" is the
// accepted translation for an original within a set.
const (
	StatusCurrent      = "current"
	StatusWaiting      = "waiting"
	StatusUntranslated = "untranslated"
)

type projectModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"size:255;not null"`
	Slug      string `gorm:"size:255;not null;uniqueIndex"`
	CreatedAt time.Time
}

func (projectModel) TableName() string { return "glossa.projects" }

type translationSetModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	ProjectID int64  `gorm:"not null;index"`
	Name      string `gorm:"size:255;not null"`
	Locale    string `gorm:"size:16;not null"`
	CreatedAt time.Time
}

func (translationSetModel) TableName() string { return "glossa.translation_sets" }

type originalModel struct {
	ID                int64  `gorm:"primaryKey;autoIncrement"`
	ProjectID         int64  `gorm:"not null;index"`
	Singular          string `gorm:"type:text;not null"`
	TranslatorComment string `gorm:"type:text"`
	CreatedAt         time.Time
}

func (originalModel) TableName() string { return "glossa.originals" }

type translationModel struct {
	ID               int64  `gorm:"primaryKey;autoIncrement"`
	OriginalID       int64  `gorm:"not null;index:idx_translation_original_set"`
	TranslationSetID int64  `gorm:"not null;index:idx_translation_original_set"`
	Translation0     string `gorm:"type:text;not null"`
	Status           string `gorm:"size:32;not null;index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (translationModel) TableName() string { return "glossa.translations" }

type runLogModel struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	LogUUID    string `gorm:"size:36;not null;uniqueIndex"`
	Title      string `gorm:"size:512;not null"`
	Errors     []byte `gorm:"type:jsonb;not null"`
	APICalls   []byte `gorm:"type:jsonb;not null"`
	Metadata   []byte `gorm:"type:jsonb;not null"`
	TokensUsed int64  `gorm:"not null;index"`
	CreatedAt  time.Time
}

func (runLogModel) TableName() string { return "glossa.run_logs" }

type statsModel struct {
	ID                  int64 `gorm:"primaryKey"`
	TranslationsStarted int64 `gorm:"not null"`
	TokensUsed          int64 `gorm:"not null"`
	LastReset           time.Time
	LastUpdated         time.Time
}

func (statsModel) TableName() string { return "glossa.stats" }

type settingsModel struct {
	ID          int64  `gorm:"primaryKey"`
	OpenAIKey   string `gorm:"size:255"`
	OpenAIModel string `gorm:"size:128;not null"`
	UpdatedAt   time.Time
}

func (settingsModel) TableName() string { return "glossa.settings" }

func (p *Pool) autoMigrate(ctx context.Context) error {
	if _, err := p.Exec(ctx, `CREATE SCHEMA IF NOT EXISTS glossa`); err != nil {
		return err
	}
	return p.gdb.WithContext(ctx).AutoMigrate(
		&projectModel{},
		&translationSetModel{},
		&originalModel{},
		&translationModel{},
		&runLogModel{},
		&statsModel{},
		&settingsModel{},
	)
}
