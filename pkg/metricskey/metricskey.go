package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	// StatsModelsCreated is base for counter metric for models created by the factory
	StatsModelsCreated = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_models_created",
		Help:         "stats_models_created provides total model instances created by the factory",
		RequiredTags: []string{"provider", "model"},
	}

	StatsModelCacheHits = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_model_cache_hits",
		Help:         "stats_model_cache_hits provides total model instances returned from the factory cache",
		RequiredTags: []string{"provider", "model"},
	}

	StatsModelsClassified = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_models_classified",
		Help:         "stats_models_classified provides total model names classified by family",
		RequiredTags: []string{"family"},
	}

	StatsSyncRuns = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_sync_runs",
		Help:         "stats_sync_runs provides total model registry sync runs",
		RequiredTags: []string{"provider"},
	}

	StatsChatPrompts = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_chat_prompts",
		Help:         "stats_chat_prompts provides total prompts sent from the chat loop",
		RequiredTags: []string{"model"},
	}

	StatsChatFailures = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_chat_failures",
		Help:         "stats_chat_failures provides total failed prompts in the chat loop",
		RequiredTags: []string{"model"},
	}
)

// Perf
var (
	PerfChatPrompt = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_chat_prompt",
		Help:         "perf_chat_prompt provides duration of a chat prompt round trip",
		RequiredTags: []string{"model"},
	}

	PerfSyncRun = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_sync_run",
		Help:         "perf_sync_run provides duration of a model registry sync",
		RequiredTags: []string{"provider"},
	}
)

// Metrics returns slice of metrics from this repo
// keep sorted by name
var Metrics = []*metrics.Describe{
	&PerfChatPrompt,
	&PerfSyncRun,
	&StatsChatFailures,
	&StatsChatPrompts,
	&StatsModelCacheHits,
	&StatsModelsClassified,
	&StatsModelsCreated,
	&StatsSyncRuns,
}
