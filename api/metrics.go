package main

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tasklist_http_requests_total",
		Help: "HTTP requests processed, by method and status code.",
	}, []string{"method", "status"})

	accountsRegisteredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tasklist_accounts_registered_total",
		Help: "Accounts created through registration.",
	})

	accountsConfirmedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tasklist_accounts_confirmed_total",
		Help: "Accounts that completed email confirmation.",
	})

	tasksCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tasklist_tasks_created_total",
		Help: "Tasks created.",
	})
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		accountsRegisteredTotal,
		accountsConfirmedTotal,
		tasksCreatedTotal,
	)
}
