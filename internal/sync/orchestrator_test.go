package sync

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carnance/leadsync/internal/crm"
	"github.com/carnance/leadsync/internal/model"
	"github.com/carnance/leadsync/internal/resilience"
	"github.com/carnance/leadsync/pkg/twentycrm"
)

// fakeGateway scripts CRM responses per endpoint. Each create call pops the
// next scripted step for its endpoint.
type fakeGateway struct {
	personSteps []gatewayStep
	taskSteps   []gatewayStep

	personCalls []createCall
	taskCalls   []createCall
}

type gatewayStep struct {
	resp twentycrm.Response
	err  error
}

type createCall struct {
	body  any
	query url.Values
}

func (f *fakeGateway) CreateRecord(_ context.Context, endpoint string, body any, query url.Values) (twentycrm.Response, error) {
	switch endpoint {
	case twentycrm.PeopleEndpoint:
		f.personCalls = append(f.personCalls, createCall{body, query})
		return f.pop(&f.personSteps)
	case twentycrm.TasksEndpoint:
		f.taskCalls = append(f.taskCalls, createCall{body, query})
		return f.pop(&f.taskSteps)
	}
	return nil, errors.New("unexpected endpoint " + endpoint)
}

func (f *fakeGateway) pop(steps *[]gatewayStep) (twentycrm.Response, error) {
	if len(*steps) == 0 {
		return twentycrm.Response{"id": "default-id"}, nil
	}
	step := (*steps)[0]
	*steps = (*steps)[1:]
	return step.resp, step.err
}

func (f *fakeGateway) GetRecord(context.Context, string, string) (twentycrm.Response, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeGateway) UpdateRecord(context.Context, string, string, any) (twentycrm.Response, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeGateway) DeleteRecord(context.Context, string, string) error {
	return errors.New("not implemented")
}

type fakeSource struct {
	leads []model.Lead
	err   error
}

func (f *fakeSource) List(_ context.Context, skip, limit int) ([]model.Lead, error) {
	if f.err != nil {
		return nil, f.err
	}
	if skip >= len(f.leads) {
		return nil, nil
	}
	end := skip + limit
	if end > len(f.leads) {
		end = len(f.leads)
	}
	return f.leads[skip:end], nil
}

func (f *fakeSource) GetByLeadID(_ context.Context, leadID string) (*model.Lead, error) {
	for _, l := range f.leads {
		if l.LeadID == leadID {
			return &l, nil
		}
	}
	return nil, nil
}

type fakeMatcher struct {
	match *model.AgentMatch
	err   error
	calls int
}

func (f *fakeMatcher) Match(context.Context, model.Lead, string) (*model.AgentMatch, error) {
	f.calls++
	return f.match, f.err
}

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{MaxAttempts: 2, InitialBackoff: 1, MaxBackoff: 1, Multiplier: 1}
}

func newTestOrchestrator(gw *fakeGateway, src *fakeSource, m AgentMatcher) *Orchestrator {
	return NewOrchestrator(src, gw, crm.NewBuilder(nil), m, fastRetry())
}

func duplicateErr() error {
	return &twentycrm.APIError{StatusCode: 400, Body: `{"error":"Duplicate entry was detected"}`}
}

func TestSyncLeadHappyPath(t *testing.T) {
	gw := &fakeGateway{
		personSteps: []gatewayStep{{resp: twentycrm.Response{"id": "person-1"}}},
		taskSteps:   []gatewayStep{{resp: twentycrm.Response{"id": "task-1"}}},
	}
	matcher := &fakeMatcher{match: &model.AgentMatch{SelectedAgentID: "a1", SelectedAgentName: "Sarah Chen"}}
	o := newTestOrchestrator(gw, &fakeSource{}, matcher)

	result, err := o.SyncLead(context.Background(), model.Lead{LeadID: "L-1", FirstName: "Ana"}, true)
	require.NoError(t, err)

	assert.True(t, result.PersonCreated)
	assert.Equal(t, "person-1", result.PersonID)
	assert.Empty(t, result.TaskError)
	require.NotNil(t, result.Match)
	assert.Equal(t, "a1", result.Match.SelectedAgentID)

	// Person create carries the upsert flag.
	require.Len(t, gw.personCalls, 1)
	assert.Equal(t, "true", gw.personCalls[0].query.Get("upsert"))

	// Task payload carries the assignment.
	require.Len(t, gw.taskCalls, 1)
	task, ok := gw.taskCalls[0].body.(twentycrm.TaskCreate)
	require.True(t, ok)
	assert.Equal(t, "Sarah Chen", task.Salesrep)
	assert.Equal(t, twentycrm.StatusBacklog, task.Status)
}

func TestSyncLeadDuplicatePerson(t *testing.T) {
	gw := &fakeGateway{
		personSteps: []gatewayStep{{err: duplicateErr()}},
		taskSteps:   []gatewayStep{{resp: twentycrm.Response{"id": "task-1"}}},
	}
	o := newTestOrchestrator(gw, &fakeSource{}, nil)

	result, err := o.SyncLead(context.Background(), model.Lead{LeadID: "L-1"}, false)
	require.NoError(t, err)

	assert.False(t, result.PersonCreated)
	assert.Empty(t, result.PersonID)
	// Task step still attempted.
	assert.Len(t, gw.taskCalls, 1)
	assert.NotNil(t, result.TaskResponse)
}

func TestSyncLeadIdempotentDuplicate(t *testing.T) {
	gw := &fakeGateway{
		personSteps: []gatewayStep{{err: duplicateErr()}, {err: duplicateErr()}},
	}
	o := newTestOrchestrator(gw, &fakeSource{}, nil)

	for i := 0; i < 2; i++ {
		result, err := o.SyncLead(context.Background(), model.Lead{LeadID: "L-1"}, false)
		require.NoError(t, err)
		assert.False(t, result.PersonCreated)
	}
	assert.Len(t, gw.taskCalls, 2)
}

func TestSyncLeadHardRejection(t *testing.T) {
	gw := &fakeGateway{
		personSteps: []gatewayStep{{err: &twentycrm.APIError{StatusCode: 400, Body: `{"error":"emails is invalid"}`}}},
	}
	o := newTestOrchestrator(gw, &fakeSource{}, nil)

	_, err := o.SyncLead(context.Background(), model.Lead{LeadID: "L-1"}, false)
	require.Error(t, err)
	// Non-duplicate 400s fail the lead before the task step.
	assert.Empty(t, gw.taskCalls)
}

func TestSyncLeadRetriesTransientPersonCreate(t *testing.T) {
	gw := &fakeGateway{
		personSteps: []gatewayStep{
			{err: &twentycrm.APIError{StatusCode: 503, Body: "unavailable"}},
			{resp: twentycrm.Response{"id": "person-1"}},
		},
		taskSteps: []gatewayStep{{resp: twentycrm.Response{"id": "task-1"}}},
	}
	o := newTestOrchestrator(gw, &fakeSource{}, nil)

	result, err := o.SyncLead(context.Background(), model.Lead{LeadID: "L-1"}, false)
	require.NoError(t, err)
	assert.True(t, result.PersonCreated)
	assert.Len(t, gw.personCalls, 2)
}

func TestSyncLeadTaskFailureNonFatal(t *testing.T) {
	gw := &fakeGateway{
		personSteps: []gatewayStep{{resp: twentycrm.Response{"id": "person-1"}}},
		taskSteps:   []gatewayStep{{err: &twentycrm.APIError{StatusCode: 500, Body: "boom"}}},
	}
	o := newTestOrchestrator(gw, &fakeSource{}, nil)

	result, err := o.SyncLead(context.Background(), model.Lead{LeadID: "L-1"}, false)
	require.NoError(t, err)
	assert.True(t, result.PersonCreated)
	assert.Contains(t, result.TaskError, "500")
	assert.Nil(t, result.TaskResponse)
}

func TestSyncLeadMatchFailureBestEffort(t *testing.T) {
	gw := &fakeGateway{
		personSteps: []gatewayStep{{resp: twentycrm.Response{"id": "person-1"}}},
		taskSteps:   []gatewayStep{{resp: twentycrm.Response{"id": "task-1"}}},
	}
	matcher := &fakeMatcher{err: errors.New("roster is empty")}
	o := newTestOrchestrator(gw, &fakeSource{}, matcher)

	result, err := o.SyncLead(context.Background(), model.Lead{LeadID: "L-1"}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, matcher.calls)
	assert.Nil(t, result.Match)
	assert.True(t, result.PersonCreated)
	assert.Empty(t, result.TaskError)
}

func TestSyncLeadPersonIDShapes(t *testing.T) {
	tests := []struct {
		name string
		resp twentycrm.Response
		want string
	}{
		{"top-level id", twentycrm.Response{"id": "p1"}, "p1"},
		{"personId", twentycrm.Response{"personId": "p2"}, "p2"},
		{"nested data.id", twentycrm.Response{"data": map[string]any{"id": "p3"}}, "p3"},
		{"no id anywhere", twentycrm.Response{"ok": true}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{personSteps: []gatewayStep{{resp: tt.resp}}}
			o := newTestOrchestrator(gw, &fakeSource{}, nil)

			result, err := o.SyncLead(context.Background(), model.Lead{LeadID: "L-1"}, false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.PersonID)
			assert.True(t, result.PersonCreated)
		})
	}
}

func TestSyncAll(t *testing.T) {
	src := &fakeSource{leads: []model.Lead{
		{LeadID: "L-1"}, {LeadID: "L-2"}, {LeadID: "L-3"},
	}}
	gw := &fakeGateway{
		personSteps: []gatewayStep{
			{resp: twentycrm.Response{"id": "p1"}},
			{err: &twentycrm.APIError{StatusCode: 422, Body: "rejected"}},
			{err: duplicateErr()},
		},
	}
	o := newTestOrchestrator(gw, src, nil)

	batch, err := o.SyncAll(context.Background(), 0, 0, false)
	require.NoError(t, err)

	assert.Equal(t, 3, batch.Total)
	assert.Equal(t, 2, batch.Success)
	assert.Equal(t, 1, batch.Failed)
	assert.Equal(t, batch.Total, batch.Success+batch.Failed)
	assert.NotEmpty(t, batch.BatchID)

	require.Len(t, batch.Results, 3)
	assert.Equal(t, model.OutcomeSuccess, batch.Results[0].Status)
	assert.Equal(t, model.OutcomeFailed, batch.Results[1].Status)
	assert.Contains(t, batch.Results[1].Detail, "422")
	// The failed lead did not stop the duplicate lead behind it.
	assert.Equal(t, model.OutcomeSuccess, batch.Results[2].Status)
	assert.False(t, batch.Results[2].Result.PersonCreated)
}

func TestSyncAllEmpty(t *testing.T) {
	o := newTestOrchestrator(&fakeGateway{}, &fakeSource{}, nil)

	batch, err := o.SyncAll(context.Background(), 0, 0, false)
	require.NoError(t, err)
	assert.Zero(t, batch.Total)
	assert.Zero(t, batch.Success)
	assert.Zero(t, batch.Failed)
	assert.Empty(t, batch.Results)
}

func TestSyncAllSourceError(t *testing.T) {
	o := newTestOrchestrator(&fakeGateway{}, &fakeSource{err: errors.New("connection refused")}, nil)
	_, err := o.SyncAll(context.Background(), 0, 0, false)
	require.Error(t, err)
}

func TestSyncByLeadID(t *testing.T) {
	src := &fakeSource{leads: []model.Lead{{LeadID: "L-7", FirstName: "Ana"}}}
	gw := &fakeGateway{
		personSteps: []gatewayStep{{resp: twentycrm.Response{"id": "p1"}}},
	}
	o := newTestOrchestrator(gw, src, nil)

	result, err := o.SyncByLeadID(context.Background(), "L-7", false)
	require.NoError(t, err)
	assert.Equal(t, "L-7", result.LeadID)

	_, err = o.SyncByLeadID(context.Background(), "L-404", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
