package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/carnance/leadsync/internal/crm"
	"github.com/carnance/leadsync/internal/leadstore"
	"github.com/carnance/leadsync/internal/llm"
	"github.com/carnance/leadsync/internal/mailbox"
	"github.com/carnance/leadsync/internal/matcher"
	"github.com/carnance/leadsync/internal/prompt"
	"github.com/carnance/leadsync/internal/resilience"
	syncpkg "github.com/carnance/leadsync/internal/sync"
	"github.com/carnance/leadsync/internal/translate"
	"github.com/carnance/leadsync/pkg/twentycrm"
)

// syncEnv holds the initialized collaborators the sync/match/serve commands
// share. Callers should defer env.Close().
type syncEnv struct {
	Source       leadstore.Source
	Store        leadstore.Store // nil for read-only sources
	Gateway      twentycrm.Client
	LLM          llm.Client
	Prompts      *prompt.Library
	Matcher      *matcher.Matcher
	Orchestrator *syncpkg.Orchestrator
}

func (e *syncEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initSource builds the configured lead backend.
func initSource(ctx context.Context) (leadstore.Source, leadstore.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		st, err := leadstore.NewPostgres(ctx, cfg.Store.DatabaseURL, &leadstore.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
		if err != nil {
			return nil, nil, err
		}
		return st, st, nil
	case "sqlite":
		st, err := leadstore.NewSQLite(cfg.Store.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return st, st, nil
	case "notion":
		if cfg.Notion.Token == "" || cfg.Notion.LeadDB == "" {
			return nil, nil, eris.New("notion driver requires notion.token and notion.lead_db")
		}
		return leadstore.NewNotion(cfg.Notion.Token, cfg.Notion.LeadDB), nil, nil
	default:
		return nil, nil, eris.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

// initLLM builds the configured completion client.
func initLLM() (llm.Client, error) {
	switch cfg.LLM.Provider {
	case "openai":
		opts := []llm.OpenAIOption{
			llm.WithOpenAIModel(cfg.LLM.Model),
			llm.WithOpenAITemperature(cfg.LLM.Temperature),
			llm.WithOpenAIMaxTokens(cfg.LLM.MaxTokens),
			llm.WithOpenAITimeout(time.Duration(cfg.LLM.TimeoutSecs) * time.Second),
		}
		if cfg.LLM.BaseURL != "" {
			opts = append(opts, llm.WithOpenAIBaseURL(cfg.LLM.BaseURL))
		}
		return llm.NewOpenAI(cfg.LLM.Key, opts...), nil
	case "anthropic":
		opts := []llm.AnthropicOption{
			llm.WithAnthropicMaxTokens(int64(cfg.LLM.MaxTokens)),
			llm.WithAnthropicTemperature(cfg.LLM.Temperature),
		}
		if cfg.LLM.Model != "" {
			opts = append(opts, llm.WithAnthropicModel(cfg.LLM.Model))
		}
		return llm.NewAnthropic(cfg.LLM.Key, opts...), nil
	default:
		return nil, eris.Errorf("unsupported llm provider %q", cfg.LLM.Provider)
	}
}

// initSync wires the full pipeline: store, CRM gateway, LLM, prompts,
// matcher, translator, and orchestrator.
func initSync(ctx context.Context) (*syncEnv, error) {
	if cfg.CRM.BaseURL == "" {
		return nil, eris.New("crm.base_url is required")
	}
	if cfg.CRM.BearerToken() == "" {
		return nil, eris.New("crm credentials are required (crm.token or crm.api_key)")
	}

	source, store, err := initSource(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "init lead source")
	}
	if store != nil {
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, eris.Wrap(err, "migrate store")
		}
	}

	crmOpts := []twentycrm.Option{
		twentycrm.WithTimeout(time.Duration(cfg.CRM.TimeoutSecs) * time.Second),
	}
	if cfg.CRM.RateLimit > 0 {
		crmOpts = append(crmOpts, twentycrm.WithRateLimit(cfg.CRM.RateLimit))
	}
	gateway := twentycrm.NewClient(cfg.CRM.BaseURL, cfg.CRM.BearerToken(), crmOpts...)

	client, err := initLLM()
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, err
	}

	prompts, err := prompt.Load(cfg.LLM.PromptsFile, cfg.LLM.PromptVersions)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, eris.Wrap(err, "load prompt library")
	}

	roster := cfg.Roster()
	if len(roster) == 0 {
		zap.L().Warn("no sales agents configured, agent matching will fail")
	}

	m := matcher.New(client, prompts, roster)
	builder := crm.NewBuilder(translate.NewLLMTranslator(client))

	retry := resilience.RetryConfig{
		MaxAttempts:    cfg.Sync.MaxAttempts,
		InitialBackoff: time.Duration(cfg.Sync.InitialBackoffMS) * time.Millisecond,
		MaxBackoff:     time.Duration(cfg.Sync.MaxBackoffSecs) * time.Second,
	}

	return &syncEnv{
		Source:       source,
		Store:        store,
		Gateway:      gateway,
		LLM:          client,
		Prompts:      prompts,
		Matcher:      m,
		Orchestrator: syncpkg.NewOrchestrator(source, gateway, builder, m, retry),
	}, nil
}

// initInbox extends a sync environment with the Graph mailbox client.
func initInbox(env *syncEnv) (*syncpkg.Inbox, error) {
	e := cfg.Email
	if e.TenantID == "" || e.ClientID == "" || e.ClientSecret == "" || e.Mailbox == "" {
		return nil, eris.New("inbox sync requires email.tenant_id, client_id, client_secret, and mailbox")
	}

	graph := mailbox.NewGraph(e.TenantID, e.ClientID, e.ClientSecret, e.Mailbox)
	return syncpkg.NewInbox(env.Orchestrator, graph, env.LLM, env.Prompts, env.Store), nil
}
