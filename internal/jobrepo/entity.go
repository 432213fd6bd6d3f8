// Package jobrepo persists job and step executions through gorm.
package jobrepo

import (
	"time"

	"github.com/tigerroll/vacationspots/internal/core/model"
)

// JobExecutionRecord is the persistence shape of a JobExecution.
type JobExecutionRecord struct {
	ID               string                 `gorm:"column:id;primaryKey"`
	JobName          string                 `gorm:"column:job_name;index"`
	StartTime        time.Time              `gorm:"column:start_time"`
	EndTime          *time.Time             `gorm:"column:end_time"`
	Status           string                 `gorm:"column:status"`
	ExitStatus       string                 `gorm:"column:exit_status"`
	CreateTime       time.Time              `gorm:"column:create_time"`
	LastUpdated      time.Time              `gorm:"column:last_updated"`
	Parameters       model.JobParameters    `gorm:"column:job_parameters;type:text"`
	Failures         model.FailureList      `gorm:"column:failure_exceptions;type:text"`
	ExecutionContext model.ExecutionContext `gorm:"column:execution_context;type:text"`
	CurrentStepName  string                 `gorm:"column:current_step_name"`
}

// TableName maps the record onto batch_job_execution.
func (JobExecutionRecord) TableName() string { return "batch_job_execution" }

// StepExecutionRecord is the persistence shape of a StepExecution.
type StepExecutionRecord struct {
	ID               string                 `gorm:"column:id;primaryKey"`
	JobExecutionID   string                 `gorm:"column:job_execution_id;index"`
	StepName         string                 `gorm:"column:step_name"`
	StartTime        time.Time              `gorm:"column:start_time"`
	EndTime          *time.Time             `gorm:"column:end_time"`
	Status           string                 `gorm:"column:status"`
	ExitStatus       string                 `gorm:"column:exit_status"`
	ReadCount        int                    `gorm:"column:read_count"`
	WriteCount       int                    `gorm:"column:write_count"`
	FilterCount      int                    `gorm:"column:filter_count"`
	CommitCount      int                    `gorm:"column:commit_count"`
	RollbackCount    int                    `gorm:"column:rollback_count"`
	Failures         model.FailureList      `gorm:"column:failure_exceptions;type:text"`
	ExecutionContext model.ExecutionContext `gorm:"column:execution_context;type:text"`
	LastUpdated      time.Time              `gorm:"column:last_updated"`
}

// TableName maps the record onto batch_step_execution.
func (StepExecutionRecord) TableName() string { return "batch_step_execution" }

func toJobExecutionRecord(je *model.JobExecution) *JobExecutionRecord {
	return &JobExecutionRecord{
		ID:               je.ID,
		JobName:          je.JobName,
		StartTime:        je.StartTime,
		EndTime:          je.EndTime,
		Status:           string(je.Status),
		ExitStatus:       string(je.ExitStatus),
		CreateTime:       je.CreateTime,
		LastUpdated:      je.LastUpdated,
		Parameters:       je.Parameters,
		Failures:         je.Failures,
		ExecutionContext: je.ExecutionContext,
		CurrentStepName:  je.CurrentStepName,
	}
}

func fromJobExecutionRecord(r *JobExecutionRecord) *model.JobExecution {
	return &model.JobExecution{
		ID:               r.ID,
		JobName:          r.JobName,
		StartTime:        r.StartTime,
		EndTime:          r.EndTime,
		Status:           model.JobStatus(r.Status),
		ExitStatus:       model.ExitStatus(r.ExitStatus),
		CreateTime:       r.CreateTime,
		LastUpdated:      r.LastUpdated,
		Parameters:       r.Parameters,
		Failures:         r.Failures,
		ExecutionContext: r.ExecutionContext,
		CurrentStepName:  r.CurrentStepName,
		StepExecutions:   make([]*model.StepExecution, 0),
	}
}

func toStepExecutionRecord(se *model.StepExecution) *StepExecutionRecord {
	jobExecutionID := se.JobExecutionID
	if jobExecutionID == "" && se.JobExecution != nil {
		jobExecutionID = se.JobExecution.ID
	}
	return &StepExecutionRecord{
		ID:               se.ID,
		JobExecutionID:   jobExecutionID,
		StepName:         se.StepName,
		StartTime:        se.StartTime,
		EndTime:          se.EndTime,
		Status:           string(se.Status),
		ExitStatus:       string(se.ExitStatus),
		ReadCount:        se.ReadCount,
		WriteCount:       se.WriteCount,
		FilterCount:      se.FilterCount,
		CommitCount:      se.CommitCount,
		RollbackCount:    se.RollbackCount,
		Failures:         se.Failures,
		ExecutionContext: se.ExecutionContext,
		LastUpdated:      time.Now(),
	}
}

func fromStepExecutionRecord(r *StepExecutionRecord, parent *model.JobExecution) *model.StepExecution {
	return &model.StepExecution{
		ID:               r.ID,
		StepName:         r.StepName,
		JobExecution:     parent,
		JobExecutionID:   r.JobExecutionID,
		StartTime:        r.StartTime,
		EndTime:          r.EndTime,
		Status:           model.JobStatus(r.Status),
		ExitStatus:       model.ExitStatus(r.ExitStatus),
		ReadCount:        r.ReadCount,
		WriteCount:       r.WriteCount,
		FilterCount:      r.FilterCount,
		CommitCount:      r.CommitCount,
		RollbackCount:    r.RollbackCount,
		Failures:         r.Failures,
		ExecutionContext: r.ExecutionContext,
	}
}
