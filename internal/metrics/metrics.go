// Package metrics defines the Prometheus metrics exported on /metrics.
// They register with the default registry on package load.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "clientdesk"

// AuthorizationDenied counts requests refused by the authorization policy.
// Label:
//   - operation: the policy operation, e.g. "client.view"
var AuthorizationDenied = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_denied_total",
		Help:      "Total number of operations denied by the authorization policy.",
	},
	[]string{"operation"},
)

// ClientsReassigned counts clients moved to a successor when their manager is deleted.
var ClientsReassigned = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clients_reassigned_total",
		Help:      "Total number of clients moved to a successor manager.",
	},
)

// ManagersDeleted counts committed manager deletions.
var ManagersDeleted = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "managers_deleted_total",
		Help:      "Total number of managers deleted after reassignment.",
	},
)
