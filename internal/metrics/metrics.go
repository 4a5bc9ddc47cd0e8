package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScreenTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "learning_screen_transitions_total",
		Help: "Engine transitions by destination screen",
	}, []string{"screen"})

	QuizCompletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "learning_quiz_completions_total",
		Help: "Completed quizzes by outcome",
	}, []string{"passed"})

	FetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "learning_fetch_failures_total",
		Help: "Failed content fetches by kind",
	}, []string{"kind"})

	StaleResults = promauto.NewCounter(prometheus.CounterOpts{
		Name: "learning_stale_results_total",
		Help: "Fetch results discarded because navigation moved on",
	})

	RewardHookFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "learning_reward_hook_failures_total",
		Help: "Reward hook calls that returned an error",
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "learning_active_sessions",
		Help: "Learner sessions currently held in memory",
	})

	RewardDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "learning_reward_deliveries_total",
		Help: "Reward jobs processed by the worker pool",
	}, []string{"status"})

	ContentCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "learning_content_cache_total",
		Help: "Content cache lookups by result",
	}, []string{"result"})
)
