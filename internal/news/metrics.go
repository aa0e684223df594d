package news

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var FetchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "autopilot_news_fetches_total",
		Help: "News API fetches, by outcome",
	},
	[]string{"outcome"},
)
