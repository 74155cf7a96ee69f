// Package metrics объявляет метрики Prometheus книжного магазина.
// Метрики регистрируются в реестре по умолчанию при импорте пакета.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bookstore"

// HTTPRequestDuration измеряет длительность обработки HTTP-запросов.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests by route pattern, method and status code.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"route", "method", "status"},
)

// SearchRequestsTotal считает количество выполненных поисков по каталогу.
var SearchRequestsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_requests_total",
		Help:      "Total number of catalogue searches served.",
	},
)

// LoginAttemptsTotal считает попытки входа.
// Метка result: "success", "rejected" или "error".
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts by result.",
	},
	[]string{"result"},
)

// UsersRegisteredTotal считает количество зарегистрированных пользователей.
var UsersRegisteredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of users registered.",
	},
)

// OrdersPlacedTotal считает количество оформленных заказов.
var OrdersPlacedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_placed_total",
		Help:      "Total number of orders placed.",
	},
)

// OrderRevenueTotal накапливает сумму saleprice*quantity оформленных заказов.
var OrderRevenueTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_revenue_total",
		Help:      "Sum of sale price times quantity over placed orders.",
	},
)
