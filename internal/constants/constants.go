// Package constants holds the tunable limits shared across packages.
package constants

import "time"

// GlobalEventCapacity bounds the snapshot's global event log.
const GlobalEventCapacity = 100

// CallHistoryCapacity bounds the tool call-history log. The analytics
// engine recomputes over the full log on every change, so this also caps
// recompute cost.
const CallHistoryCapacity = 100

// TransactionCapacity bounds the economy slice's transaction log.
const TransactionCapacity = 50

// ModificationCapacity bounds the self-improvement modification history.
const ModificationCapacity = 50

// LessonCapacity bounds the self-improvement lesson log.
const LessonCapacity = 50

// DaemonTaskCapacity bounds the daemon task log.
const DaemonTaskCapacity = 50

// PredictionCapacity bounds the prediction log.
const PredictionCapacity = 50

// ViolationCapacity bounds the safety violation log.
const ViolationCapacity = 50

// PhiHistoryWindow is the sliding-window length for the phi time series.
const PhiHistoryWindow = 50

// KernelLoadWindow is the sliding-window length for the kernel load series.
const KernelLoadWindow = 60

// MaxInsights caps the derived insight list.
const MaxInsights = 4

// MaxCommonInputs caps the distinct recent inputs kept per usage pattern.
const MaxCommonInputs = 5

// MaxFavoriteTools caps the favorite-tool keys kept in the learning state.
const MaxFavoriteTools = 5

// WarningMinUseCount is the minimum sample size before a low success rate
// is surfaced as a warning insight.
const WarningMinUseCount = 3

// WarningSuccessRate is the success-rate threshold below which a pattern
// earns a warning insight.
const WarningSuccessRate = 0.5

// ToolCallNamespace prefixes every tool identifier sent to the execute
// endpoint, as in "mcp__<server>__<tool>".
const ToolCallNamespace = "mcp"

// ExecuteTimeout caps a single tool execution round trip.
const ExecuteTimeout = 2 * time.Minute

// PersistTimeout caps one remote persistence request.
const PersistTimeout = 10 * time.Second

// StreamInitialBackoff is the first reconnect delay after a dropped
// stream connection.
const StreamInitialBackoff = time.Second

// StreamMaxBackoff caps the reconnect delay.
const StreamMaxBackoff = 30 * time.Second

// ChangeBusBuffer is the per-subscriber channel buffer on the change bus.
const ChangeBusBuffer = 256
