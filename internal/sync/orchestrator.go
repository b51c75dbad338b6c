// Package sync drives the lead-to-CRM pipeline: per-lead sync with
// duplicate reconciliation, batch sync with partial-failure bookkeeping, and
// mailbox-to-lead extraction.
package sync

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/carnance/leadsync/internal/crm"
	"github.com/carnance/leadsync/internal/leadstore"
	"github.com/carnance/leadsync/internal/model"
	"github.com/carnance/leadsync/internal/resilience"
	"github.com/carnance/leadsync/pkg/twentycrm"
)

// defaultBatchLimit caps a batch fetch when the caller does not specify one.
const defaultBatchLimit = 1000

// AgentMatcher selects a sales agent for a lead. Matching is best-effort
// inside the pipeline; errors are logged and the sync proceeds unmatched.
type AgentMatcher interface {
	Match(ctx context.Context, lead model.Lead, version string) (*model.AgentMatch, error)
}

// Orchestrator runs lead syncs against the CRM. Each lead is processed
// strictly sequentially: match, person upsert, task create.
type Orchestrator struct {
	leads   leadstore.Source
	gateway twentycrm.Client
	builder *crm.Builder
	matcher AgentMatcher
	retry   resilience.RetryConfig
}

func NewOrchestrator(leads leadstore.Source, gateway twentycrm.Client, builder *crm.Builder, matcher AgentMatcher, retry resilience.RetryConfig) *Orchestrator {
	return &Orchestrator{
		leads:   leads,
		gateway: gateway,
		builder: builder,
		matcher: matcher,
		retry:   retry,
	}
}

// SyncLead syncs one lead: optional agent match, person upsert with
// duplicate reconciliation, then task creation. A duplicate person and a
// failed task creation are both non-fatal; any other person-creation failure
// fails the lead.
func (o *Orchestrator) SyncLead(ctx context.Context, lead model.Lead, matchAgent bool) (*model.SyncResult, error) {
	result := &model.SyncResult{LeadID: lead.LeadID}

	if matchAgent && o.matcher != nil {
		match, err := o.matcher.Match(ctx, lead, "")
		if err != nil {
			zap.L().Warn("agent matching failed, syncing without assignment",
				zap.String("lead_id", lead.LeadID),
				zap.Error(err))
		} else {
			result.Match = match
		}
	}

	person := o.builder.Person(lead)
	resp, err := resilience.DoVal(ctx, o.withRetryLogging("create_person"), func(ctx context.Context) (twentycrm.Response, error) {
		return o.gateway.CreateRecord(ctx, twentycrm.PeopleEndpoint, person, twentycrm.Upsert())
	})
	switch {
	case err == nil:
		result.PersonResponse = resp
		result.PersonCreated = true
		result.PersonID = twentycrm.ExtractPersonID(resp)
		if result.PersonID == "" {
			zap.L().Info("no person id in create response, task will be unlinked",
				zap.String("lead_id", lead.LeadID))
		}
	case isDuplicatePerson(err):
		zap.L().Info("person already exists, continuing with task creation",
			zap.String("lead_id", lead.LeadID))
		result.PersonCreated = false
	default:
		return nil, eris.Wrapf(err, "sync: create person for lead %s", lead.LeadID)
	}

	task := o.builder.Task(ctx, lead, result.Match)
	taskResp, err := o.gateway.CreateRecord(ctx, twentycrm.TasksEndpoint, task, nil)
	if err != nil {
		// The person exists either way, so the lead still counts as synced.
		zap.L().Error("task creation failed",
			zap.String("lead_id", lead.LeadID),
			zap.Error(err))
		result.TaskError = err.Error()
		return result, nil
	}
	result.TaskResponse = taskResp

	return result, nil
}

// SyncAll fetches leads from the source and syncs each one in order. One
// lead's failure never aborts the batch; it is recorded and processing moves
// on. Success+Failed always equals Total.
func (o *Orchestrator) SyncAll(ctx context.Context, skip, limit int, matchAgent bool) (*model.BatchResult, error) {
	if limit <= 0 {
		limit = defaultBatchLimit
	}

	leads, err := o.leads.List(ctx, skip, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sync: list leads")
	}

	batch := &model.BatchResult{
		BatchID: uuid.New().String(),
		Total:   len(leads),
	}
	if len(leads) == 0 {
		return batch, nil
	}

	zap.L().Info("starting batch sync",
		zap.String("batch_id", batch.BatchID),
		zap.Int("total", batch.Total))

	for _, lead := range leads {
		result, err := o.SyncLead(ctx, lead, matchAgent)
		if err != nil {
			batch.Failed++
			batch.Results = append(batch.Results, model.LeadOutcome{
				LeadID: lead.LeadID,
				Status: model.OutcomeFailed,
				Detail: err.Error(),
			})
			continue
		}
		batch.Success++
		batch.Results = append(batch.Results, model.LeadOutcome{
			LeadID: lead.LeadID,
			Status: model.OutcomeSuccess,
			Result: result,
		})
	}

	zap.L().Info("batch sync complete",
		zap.String("batch_id", batch.BatchID),
		zap.Int("success", batch.Success),
		zap.Int("failed", batch.Failed))

	return batch, nil
}

// SyncByLeadID loads one lead from the source and syncs it.
func (o *Orchestrator) SyncByLeadID(ctx context.Context, leadID string, matchAgent bool) (*model.SyncResult, error) {
	lead, err := o.leads.GetByLeadID(ctx, leadID)
	if err != nil {
		return nil, eris.Wrapf(err, "sync: load lead %s", leadID)
	}
	if lead == nil {
		return nil, eris.Errorf("sync: lead %s not found", leadID)
	}
	return o.SyncLead(ctx, *lead, matchAgent)
}

// withRetryLogging copies the configured retry policy, restricting it to
// transient failures and logging each attempt.
func (o *Orchestrator) withRetryLogging(operation string) resilience.RetryConfig {
	cfg := o.retry
	cfg.ShouldRetry = isRetryable
	cfg.OnRetry = resilience.RetryLogger("twentycrm", operation)
	return cfg
}

// isRetryable treats transport failures and transient HTTP statuses as
// retryable. CRM 4xx rejections, duplicates included, are not retried.
func isRetryable(err error) bool {
	var apiErr *twentycrm.APIError
	if errors.As(err, &apiErr) {
		return resilience.IsTransientHTTPStatus(apiErr.StatusCode)
	}
	return resilience.IsTransient(err)
}

// isDuplicatePerson classifies a person-create failure as the CRM's
// duplicate-entry 400.
func isDuplicatePerson(err error) bool {
	var apiErr *twentycrm.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return twentycrm.IsDuplicateConflict(apiErr.StatusCode, apiErr.Body)
}
