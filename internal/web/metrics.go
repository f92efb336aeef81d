package web

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	listsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "superlists_lists_created_total",
		Help: "Lists created.",
	})
	itemsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "superlists_items_created_total",
		Help: "Items added to lists.",
	})
	listsShared = promauto.NewCounter(prometheus.CounterOpts{
		Name: "superlists_lists_shared_total",
		Help: "Successful share operations.",
	})
	logins = promauto.NewCounter(prometheus.CounterOpts{
		Name: "superlists_logins_total",
		Help: "Successful token redemptions.",
	})
)
