// Package storage holds the relational persistence layer: sessions, leads,
// inbound dedup marks, the durable job queue, media assets and tenants.
// All repositories share one gorm connection; JSON documents are stored as
// serialized text columns so the same schema works on SQLite and Postgres.
package storage

import (
	"time"

	"gorm.io/gorm"
)

// SessionModel is the per-chat conversation state row.
type SessionModel struct {
	TenantID  string    `gorm:"primaryKey;size:64"`
	ChatID    string    `gorm:"primaryKey;size:128"`
	LeadID    string    `gorm:"size:64;index"`
	BotType   string    `gorm:"size:32"`
	Step      string    `gorm:"size:32"`
	Language  string    `gorm:"size:8"`
	Data      string    `gorm:"type:text"`
	UpdatedAt time.Time `gorm:"index"`
}

func (SessionModel) TableName() string { return "sessions" }

// LeadModel is a finalized lead. LeadSeq is the autoincrement primary key,
// which gives operators a short monotonic number to refer to.
type LeadModel struct {
	LeadSeq   int64     `gorm:"primaryKey;autoIncrement"`
	TenantID  string    `gorm:"size:64;index:idx_leads_tenant_created;uniqueIndex:idx_leads_tenant_lead"`
	LeadID    string    `gorm:"size:64;uniqueIndex:idx_leads_tenant_lead"`
	ChatID    string    `gorm:"size:128"`
	Payload   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"index:idx_leads_tenant_created"`
}

func (LeadModel) TableName() string { return "leads" }

// InboundModel marks a provider message as seen for dedup.
type InboundModel struct {
	TenantID  string `gorm:"primaryKey;size:64"`
	Provider  string `gorm:"primaryKey;size:32"`
	MessageID string `gorm:"primaryKey;size:128"`
	ChatID    string `gorm:"size:128;index"`
	CreatedAt time.Time
}

func (InboundModel) TableName() string { return "inbound_messages" }

// JobModel is one durable queue row.
type JobModel struct {
	ID             string `gorm:"primaryKey;size:64"`
	TenantID       string `gorm:"size:64;index"`
	JobType        string `gorm:"size:48;index:idx_jobs_claim"`
	Payload        string `gorm:"type:text"`
	IdempotencyKey string `gorm:"size:128;uniqueIndex:idx_jobs_idem,where:idempotency_key <> ''"`
	Status         string `gorm:"size:16;index:idx_jobs_claim"`
	Priority       int
	Attempts       int
	MaxAttempts    int
	RunAt          time.Time `gorm:"index:idx_jobs_claim"`
	CreatedAt      time.Time
	UpdatedAt      time.Time `gorm:"index"`
	LastError      string    `gorm:"type:text"`
}

func (JobModel) TableName() string { return "jobs" }

// MediaModel is a stored media asset row.
type MediaModel struct {
	ID          string `gorm:"primaryKey;size:64"`
	TenantID    string `gorm:"size:64;index:idx_media_tenant_lead"`
	LeadID      string `gorm:"size:64;index:idx_media_tenant_lead"`
	ChatID      string `gorm:"size:128"`
	Kind        string `gorm:"size:16"`
	ContentType string `gorm:"size:64"`
	SizeBytes   int64
	Width       int
	Height      int
	StorageKey  string `gorm:"size:256"`
	CreatedAt   time.Time
	ExpiresAt   time.Time `gorm:"index"`
}

func (MediaModel) TableName() string { return "media_assets" }

// TenantModel is a tenant row; Config is a JSON document.
type TenantModel struct {
	TenantID    string `gorm:"primaryKey;size:64"`
	DisplayName string `gorm:"size:128"`
	IsActive    bool
	Config      string `gorm:"type:text"`
	CreatedAt   time.Time
}

func (TenantModel) TableName() string { return "tenants" }

// ChannelBindingModel links a provider account to a tenant. Credentials are
// stored as an encrypted-values JSON document.
type ChannelBindingModel struct {
	ID                int64  `gorm:"primaryKey;autoIncrement"`
	TenantID          string `gorm:"size:64;uniqueIndex:idx_bindings_tenant_provider"`
	Provider          string `gorm:"size:32;uniqueIndex:idx_bindings_tenant_provider;index:idx_bindings_account"`
	ProviderAccountID string `gorm:"size:128;index:idx_bindings_account"`
	Credentials       string `gorm:"type:text"`
	Config            string `gorm:"type:text"`
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (ChannelBindingModel) TableName() string { return "channel_bindings" }

// AutoMigrate creates or updates every table the service uses.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&SessionModel{},
		&LeadModel{},
		&InboundModel{},
		&JobModel{},
		&MediaModel{},
		&TenantModel{},
		&ChannelBindingModel{},
	)
}
