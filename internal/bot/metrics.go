package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	updatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "houseme",
		Subsystem: "bot",
		Name:      "updates_total",
		Help:      "Telegram updates processed, by kind and outcome.",
	}, []string{"kind", "outcome"})

	updateDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "houseme",
		Subsystem: "bot",
		Name:      "update_duration_seconds",
		Help:      "Time spent processing one update.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind"})

	searchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "houseme",
		Subsystem: "bot",
		Name:      "searches_total",
		Help:      "Listing searches, by search kind and result status.",
	}, []string{"kind", "status"})

	favoritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "houseme",
		Subsystem: "bot",
		Name:      "favorite_changes_total",
		Help:      "Favorite additions and removals that changed the stored set.",
	}, []string{"op"})

	usersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "houseme",
		Subsystem: "bot",
		Name:      "users_created_total",
		Help:      "User records created on /start.",
	})

	referralsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "houseme",
		Subsystem: "bot",
		Name:      "referrals_total",
		Help:      "Referral bonuses credited.",
	})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "houseme",
		Subsystem: "bot",
		Name:      "active_session_workers",
		Help:      "Per-user session workers currently alive.",
	})
)
