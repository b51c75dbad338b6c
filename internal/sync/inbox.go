package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/carnance/leadsync/internal/leadstore"
	"github.com/carnance/leadsync/internal/llm"
	"github.com/carnance/leadsync/internal/mailbox"
	"github.com/carnance/leadsync/internal/model"
	"github.com/carnance/leadsync/internal/prompt"
)

// CategoryExtraction is the prompt-library category for mailbox lead
// extraction.
const CategoryExtraction = "lead_extraction"

// Inbox turns recent unread mailbox messages into leads and feeds them
// through the sync pipeline. store is optional; when set, extracted leads
// are persisted before syncing.
type Inbox struct {
	orchestrator *Orchestrator
	mail         mailbox.Client
	llm          llm.Client
	prompts      *prompt.Library
	store        leadstore.Store
}

func NewInbox(orchestrator *Orchestrator, mail mailbox.Client, client llm.Client, prompts *prompt.Library, store leadstore.Store) *Inbox {
	return &Inbox{
		orchestrator: orchestrator,
		mail:         mail,
		llm:          client,
		prompts:      prompts,
		store:        store,
	}
}

// Sync fetches up to maxCount unread messages from the recency window,
// extracts a lead from each, and syncs them. A malformed message is recorded
// as failed and never aborts the rest.
func (i *Inbox) Sync(ctx context.Context, maxCount int, window time.Duration, matchAgent bool) (*model.BatchResult, error) {
	messages, err := i.mail.GetRecent(ctx, maxCount, window)
	if err != nil {
		return nil, eris.Wrap(err, "inbox: fetch messages")
	}

	batch := &model.BatchResult{
		BatchID: uuid.New().String(),
		Total:   len(messages),
	}
	if len(messages) == 0 {
		return batch, nil
	}

	zap.L().Info("starting inbox sync",
		zap.String("batch_id", batch.BatchID),
		zap.Int("messages", batch.Total))

	for _, msg := range messages {
		lead, err := i.extractLead(ctx, msg)
		if err != nil {
			zap.L().Warn("lead extraction failed for message",
				zap.String("subject", msg.Subject),
				zap.String("sender", msg.Sender),
				zap.Error(err))
			batch.Failed++
			batch.Results = append(batch.Results, model.LeadOutcome{
				Status: model.OutcomeFailed,
				Detail: err.Error(),
			})
			continue
		}

		if i.store != nil {
			if err := i.store.Insert(ctx, lead); err != nil {
				zap.L().Warn("failed to persist extracted lead",
					zap.String("lead_id", lead.LeadID),
					zap.Error(err))
			}
		}

		result, err := i.orchestrator.SyncLead(ctx, lead, matchAgent)
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

	return batch, nil
}

// extractLead asks the LLM to pull structured lead fields out of one
// message. Leads without an explicit id get a synthetic one derived from the
// batch, keeping re-runs of the same inbox from colliding in the store.
func (i *Inbox) extractLead(ctx context.Context, msg model.EmailMessage) (model.Lead, error) {
	p, err := i.prompts.Get(CategoryExtraction, "")
	if err != nil {
		return model.Lead{}, eris.Wrap(err, "inbox: load prompt")
	}

	user := prompt.Format(p.UserTemplate, map[string]string{
		"subject":     msg.Subject,
		"sender":      msg.Sender,
		"body":        msg.Body,
		"received_at": msg.ReceivedAt.Format(time.RFC3339),
	})

	resp, err := i.llm.Complete(ctx, []llm.Message{
		llm.System(p.System),
		llm.User(user),
	})
	if err != nil {
		return model.Lead{}, eris.Wrap(err, "inbox: completion failed")
	}

	var lead model.Lead
	if err := json.Unmarshal([]byte(cleanJSON(resp)), &lead); err != nil {
		zap.L().Error("extracted lead is not valid JSON",
			zap.String("subject", msg.Subject),
			zap.String("raw_response", resp))
		return model.Lead{}, eris.Wrap(err, "inbox: parse extracted lead")
	}

	if lead.LeadID == "" {
		lead.LeadID = fmt.Sprintf("email-%s", uuid.New().String()[:8])
	}
	if lead.Email == "" {
		lead.Email = msg.Sender
	}
	return lead, nil
}

// cleanJSON strips markdown fences and extracts the JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
