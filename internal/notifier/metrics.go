package notifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_events_processed_total",
		Help: "The total number of successfully processed events per family",
	}, []string{"family"})
	eventsRetried = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_event_retries_total",
		Help: "The total number of retry attempts per family",
	}, []string{"family"})
	eventsDeadLettered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifier_events_dead_lettered_total",
		Help: "The total number of events handed to the dead letter queue",
	})
	malformedMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifier_malformed_messages_total",
		Help: "The total number of messages skipped because their payload was not JSON",
	})
	emailsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifier_emails_sent_total",
		Help: "The total number of emails dispatched to the relay",
	})
	emailsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifier_email_failures_total",
		Help: "The total number of failed email dispatch attempts",
	})
	campaignNotifications = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifier_campaign_notifications_total",
		Help: "The total number of synthetic promotional events processed",
	})
)
