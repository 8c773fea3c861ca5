package tasks

import (
	"encoding/json"
	"time"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Status is the lifecycle state of a background task
type Status string

const (
	StatusPending Status = "PENDING"
	StatusStarted Status = "STARTED"
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// TaskTypeConsume identifies file consumption tasks
const TaskTypeConsume = "consume_file"

// Task tracks a queued background job, primarily file consumption. The
// frontend polls unacknowledged tasks and acknowledges them to dismiss.
type Task struct {
	shared.BaseAggregateRoot
	TaskID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	TaskType     string     `gorm:"type:varchar(64);not null"`
	TaskFileName string     `gorm:"type:varchar(1024)"`
	Status       Status     `gorm:"type:varchar(16);not null;default:'PENDING'"`
	Result       string     `gorm:"type:text"`
	Acknowledged bool       `gorm:"not null;default:false"`
	OwnerID      *uuid.UUID `gorm:"type:uuid;index"`
	DateDone     *time.Time `gorm:""`
	// Overrides carries the upload's metadata overrides as JSON
	Overrides string `gorm:"type:text;not null;default:'{}'"`
	// RelatedDocumentID points at the document a successful consume produced
	RelatedDocumentID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Task) TableName() string {
	return "tasks"
}

// ConsumeOverrides are upload-provided values that take precedence over
// anything derived during consumption.
type ConsumeOverrides struct {
	Title           string      `json:"title,omitempty"`
	Created         *time.Time  `json:"created,omitempty"`
	CorrespondentID *uuid.UUID  `json:"correspondent_id,omitempty"`
	DocumentTypeID  *uuid.UUID  `json:"document_type_id,omitempty"`
	StoragePathID   *uuid.UUID  `json:"storage_path_id,omitempty"`
	TagIDs          []uuid.UUID `json:"tag_ids,omitempty"`
	ASN             *int64      `json:"archive_serial_number,omitempty"`
}

// SetOverrides stores the overrides on the task
func (t *Task) SetOverrides(overrides ConsumeOverrides) error {
	data, err := json.Marshal(overrides)
	if err != nil {
		return err
	}
	t.Overrides = string(data)
	return nil
}

// GetOverrides decodes the stored overrides
func (t *Task) GetOverrides() (ConsumeOverrides, error) {
	var overrides ConsumeOverrides
	if t.Overrides == "" {
		return overrides, nil
	}
	err := json.Unmarshal([]byte(t.Overrides), &overrides)
	return overrides, err
}

// NewConsumeTask queues a consumption task for an uploaded file
func NewConsumeTask(filename string, ownerID *uuid.UUID) *Task {
	return &Task{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TaskID:            uuid.New(),
		TaskType:          TaskTypeConsume,
		TaskFileName:      filename,
		Status:            StatusPending,
		OwnerID:           ownerID,
		Overrides:         "{}",
	}
}

// IncomingKey is the storage key the uploaded file waits under until a
// worker consumes it.
func (t *Task) IncomingKey() string {
	return "incoming/" + t.TaskID.String()
}

// Start marks the task as picked up by a worker
func (t *Task) Start() error {
	if t.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", "Task is not pending")
	}
	t.Status = StatusStarted
	t.IncrementVersion()
	return nil
}

// Succeed records a successful completion
func (t *Task) Succeed(result string, documentID *uuid.UUID) {
	now := time.Now()
	t.Status = StatusSuccess
	t.Result = result
	t.DateDone = &now
	t.RelatedDocumentID = documentID
	t.IncrementVersion()
}

// Fail records a failed completion with the error text as result
func (t *Task) Fail(result string) {
	now := time.Now()
	t.Status = StatusFailure
	t.Result = result
	t.DateDone = &now
	t.IncrementVersion()
}

// Acknowledge dismisses the task from the frontend's pending list
func (t *Task) Acknowledge() {
	t.Acknowledged = true
	t.IncrementVersion()
}

// Finished reports whether the task reached a terminal state
func (t *Task) Finished() bool {
	return t.Status == StatusSuccess || t.Status == StatusFailure
}
