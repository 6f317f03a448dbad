// Package metrics - Prometheus-compatible metrics exporter
package metrics

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// PrometheusMetrics implements ChainMetrics with Prometheus-compatible export.
//
// Thread-safe implementation using sync.RWMutex for concurrent access.
type PrometheusMetrics struct {
	mu sync.RWMutex

	// Per-method RPC metrics
	rpcMetrics map[string]*methodStats

	// Transaction operation metrics
	discoverStats     *operationStats
	dispatchStats      *operationStats
	submitStats *operationStats

	// Global counters
	totalRPCCalls      int64
	successfulRPCCalls int64
	failedRPCCalls     int64
	lastSuccessfulCall time.Time
}

// methodStats tracks statistics for a single RPC method.
type methodStats struct {
	totalCalls         int64
	successfulCalls    int64
	failedCalls        int64
	totalDuration      time.Duration
	minDuration        time.Duration
	maxDuration        time.Duration
	lastSuccessfulCall time.Time
	lastFailedCall     time.Time
}

// operationStats tracks statistics for adapter operations (discover, dispatch, submit).
type operationStats struct {
	totalCalls      int64
	successfulCalls int64
	failedCalls     int64
	totalDuration   time.Duration
}

// NewPrometheusMetrics creates a new Prometheus-compatible metrics recorder.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		rpcMetrics:     make(map[string]*methodStats),
		discoverStats:     &operationStats{},
		dispatchStats:      &operationStats{},
		submitStats: &operationStats{},
	}
}

// RecordRPCCall records a single RPC call with its duration and success status.
//
// Thread-safe: YES
func (p *PrometheusMetrics) RecordRPCCall(method string, duration time.Duration, success bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Update global counters
	p.totalRPCCalls++
	if success {
		p.successfulRPCCalls++
		p.lastSuccessfulCall = time.Now()
	} else {
		p.failedRPCCalls++
	}

	// Get or create method stats
	stats, exists := p.rpcMetrics[method]
	if !exists {
		stats = &methodStats{
			minDuration: duration, // Initialize with first duration
			maxDuration: duration,
		}
		p.rpcMetrics[method] = stats
	}

	// Update method stats
	stats.totalCalls++
	stats.totalDuration += duration

	if success {
		stats.successfulCalls++
		stats.lastSuccessfulCall = time.Now()
	} else {
		stats.failedCalls++
		stats.lastFailedCall = time.Now()
	}

	// Update min/max duration
	if duration < stats.minDuration || stats.minDuration == 0 {
		stats.minDuration = duration
	}
	if duration > stats.maxDuration {
		stats.maxDuration = duration
	}
}

// RecordDiscover records an RFE discovery (GetRequest) call.
func (p *PrometheusMetrics) RecordDiscover(chainID string, duration time.Duration, success bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.discoverStats.totalCalls++
	p.discoverStats.totalDuration += duration
	if success {
		p.discoverStats.successfulCalls++
	} else {
		p.discoverStats.failedCalls++
	}
}

// RecordDispatch records a relay dispatch (RelayVAAv1/RelayModular) call.
func (p *PrometheusMetrics) RecordDispatch(chainID string, duration time.Duration, success bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.dispatchStats.totalCalls++
	p.dispatchStats.totalDuration += duration
	if success {
		p.dispatchStats.successfulCalls++
	} else {
		p.dispatchStats.failedCalls++
	}
}

// RecordSubmit records a destination-chain submission outcome.
func (p *PrometheusMetrics) RecordSubmit(chainID string, duration time.Duration, success bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.submitStats.totalCalls++
	p.submitStats.totalDuration += duration
	if success {
		p.submitStats.successfulCalls++
	} else {
		p.submitStats.failedCalls++
	}
}

// GetMetrics returns aggregated metrics for all recorded operations.
func (p *PrometheusMetrics) GetMetrics() *AggregatedMetrics {
	p.mu.RLock()
	defer p.mu.RUnlock()

	// Calculate RPC metrics
	var totalRPCDuration time.Duration
	for _, stats := range p.rpcMetrics {
		totalRPCDuration += stats.totalDuration
	}

	rpcSuccessRate := 0.0
	if p.totalRPCCalls > 0 {
		rpcSuccessRate = float64(p.successfulRPCCalls) / float64(p.totalRPCCalls)
	}

	avgRPCDuration := time.Duration(0)
	if p.totalRPCCalls > 0 {
		avgRPCDuration = totalRPCDuration / time.Duration(p.totalRPCCalls)
	}

	// Calculate discover metrics
	discoverSuccessRate := 0.0
	if p.discoverStats.totalCalls > 0 {
		discoverSuccessRate = float64(p.discoverStats.successfulCalls) / float64(p.discoverStats.totalCalls)
	}
	avgDiscoverDuration := time.Duration(0)
	if p.discoverStats.totalCalls > 0 {
		avgDiscoverDuration = p.discoverStats.totalDuration / time.Duration(p.discoverStats.totalCalls)
	}

	// Calculate dispatch metrics
	dispatchSuccessRate := 0.0
	if p.dispatchStats.totalCalls > 0 {
		dispatchSuccessRate = float64(p.dispatchStats.successfulCalls) / float64(p.dispatchStats.totalCalls)
	}
	avgDispatchDuration := time.Duration(0)
	if p.dispatchStats.totalCalls > 0 {
		avgDispatchDuration = p.dispatchStats.totalDuration / time.Duration(p.dispatchStats.totalCalls)
	}

	// Calculate submit metrics
	submitSuccessRate := 0.0
	if p.submitStats.totalCalls > 0 {
		submitSuccessRate = float64(p.submitStats.successfulCalls) / float64(p.submitStats.totalCalls)
	}
	avgSubmitDuration := time.Duration(0)
	if p.submitStats.totalCalls > 0 {
		avgSubmitDuration = p.submitStats.totalDuration / time.Duration(p.submitStats.totalCalls)
	}

	return &AggregatedMetrics{
		TotalRPCCalls:        p.totalRPCCalls,
		SuccessfulRPCCalls:   p.successfulRPCCalls,
		FailedRPCCalls:       p.failedRPCCalls,
		RPCSuccessRate:       rpcSuccessRate,
		AvgRPCDuration:       avgRPCDuration,
		LastSuccessfulCall:   p.lastSuccessfulCall,
		TotalDiscovers:          p.discoverStats.totalCalls,
		SuccessfulDiscovers:     p.discoverStats.successfulCalls,
		FailedDiscovers:         p.discoverStats.failedCalls,
		DiscoverSuccessRate:     discoverSuccessRate,
		AvgDiscoverDuration:     avgDiscoverDuration,
		TotalDispatches:           p.dispatchStats.totalCalls,
		SuccessfulDispatches:      p.dispatchStats.successfulCalls,
		FailedDispatches:          p.dispatchStats.failedCalls,
		DispatchSuccessRate:      dispatchSuccessRate,
		AvgDispatchDuration:      avgDispatchDuration,
		TotalSubmits:      p.submitStats.totalCalls,
		SuccessfulSubmits: p.submitStats.successfulCalls,
		FailedSubmits:     p.submitStats.failedCalls,
		SubmitSuccessRate: submitSuccessRate,
		AvgSubmitDuration: avgSubmitDuration,
	}
}

// GetRPCMetrics returns aggregated metrics for a specific RPC method.
func (p *PrometheusMetrics) GetRPCMetrics(method string) *MethodMetrics {
	p.mu.RLock()
	defer p.mu.RUnlock()

	stats, exists := p.rpcMetrics[method]
	if !exists {
		return nil
	}

	successRate := 0.0
	if stats.totalCalls > 0 {
		successRate = float64(stats.successfulCalls) / float64(stats.totalCalls)
	}

	avgDuration := time.Duration(0)
	if stats.totalCalls > 0 {
		avgDuration = stats.totalDuration / time.Duration(stats.totalCalls)
	}

	return &MethodMetrics{
		Method:             method,
		TotalCalls:         stats.totalCalls,
		SuccessfulCalls:    stats.successfulCalls,
		FailedCalls:        stats.failedCalls,
		SuccessRate:        successRate,
		AvgDuration:        avgDuration,
		MinDuration:        stats.minDuration,
		MaxDuration:        stats.maxDuration,
		LastSuccessfulCall: stats.lastSuccessfulCall,
		LastFailedCall:     stats.lastFailedCall,
	}
}

// GetHealthStatus checks if the chain adapter is healthy based on metrics.
//
// Degraded criteria:
//   - Success rate < 90%
//   - Average response time > 5 seconds
//   - No successful call in last 5 minutes
func (p *PrometheusMetrics) GetHealthStatus() HealthStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	status := HealthStatus{
		CheckedAt: time.Now(),
	}

	// Calculate success rate
	successRate := 0.0
	if p.totalRPCCalls > 0 {
		successRate = float64(p.successfulRPCCalls) / float64(p.totalRPCCalls)
	}

	// Calculate average duration
	var totalDuration time.Duration
	for _, stats := range p.rpcMetrics {
		totalDuration += stats.totalDuration
	}
	avgDuration := time.Duration(0)
	if p.totalRPCCalls > 0 {
		avgDuration = totalDuration / time.Duration(p.totalRPCCalls)
	}

	// Check degradation conditions
	status.LowSuccessRate = successRate < 0.90 && p.totalRPCCalls > 0
	status.HighLatency = avgDuration > 5*time.Second
	status.NoRecentSuccess = !p.lastSuccessfulCall.IsZero() &&
		time.Since(p.lastSuccessfulCall) > 5*time.Minute

	// Determine status
	if p.totalRPCCalls == 0 {
		status.Status = "OK"
		status.Message = "No RPC calls recorded yet"
		return status
	}

	if status.LowSuccessRate || status.HighLatency || status.NoRecentSuccess {
		status.Status = "Degraded"
		messages := []string{}
		if status.LowSuccessRate {
			messages = append(messages, fmt.Sprintf("low success rate (%.1f%%)", successRate*100))
		}
		if status.HighLatency {
			messages = append(messages, fmt.Sprintf("high latency (%v)", avgDuration))
		}
		if status.NoRecentSuccess {
			messages = append(messages, fmt.Sprintf("no recent success (%v ago)", time.Since(p.lastSuccessfulCall)))
		}
		status.Message = strings.Join(messages, ", ")
		return status
	}

	status.Status = "OK"
	status.Message = fmt.Sprintf("Success rate: %.1f%%, Avg latency: %v", successRate*100, avgDuration)
	return status
}

// Export returns metrics in Prometheus text format.
//
// Example output:
//
//	# HELP executor_adapter_rpc_calls_total Total number of RPC calls
//	# TYPE executor_adapter_rpc_calls_total counter
//	executor_adapter_rpc_calls_total{method="eth_getTransactionCount",status="success"} 42
func (p *PrometheusMetrics) Export() string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var sb strings.Builder

	// RPC calls total
	sb.WriteString("# HELP executor_adapter_rpc_calls_total Total number of RPC calls\n")
	sb.WriteString("# TYPE executor_adapter_rpc_calls_total counter\n")
	for method, stats := range p.rpcMetrics {
		sb.WriteString(fmt.Sprintf("executor_adapter_rpc_calls_total{method=\"%s\",status=\"success\"} %d\n",
			method, stats.successfulCalls))
		sb.WriteString(fmt.Sprintf("executor_adapter_rpc_calls_total{method=\"%s\",status=\"failure\"} %d\n",
			method, stats.failedCalls))
	}
	sb.WriteString("\n")

	// RPC duration
	sb.WriteString("# HELP executor_adapter_rpc_duration_seconds RPC call duration in seconds\n")
	sb.WriteString("# TYPE executor_adapter_rpc_duration_seconds summary\n")
	for method, stats := range p.rpcMetrics {
		if stats.totalCalls > 0 {
			avgSec := stats.totalDuration.Seconds() / float64(stats.totalCalls)
			sb.WriteString(fmt.Sprintf("executor_adapter_rpc_duration_seconds{method=\"%s\",quantile=\"avg\"} %.6f\n",
				method, avgSec))
			sb.WriteString(fmt.Sprintf("executor_adapter_rpc_duration_seconds{method=\"%s\",quantile=\"min\"} %.6f\n",
				method, stats.minDuration.Seconds()))
			sb.WriteString(fmt.Sprintf("executor_adapter_rpc_duration_seconds{method=\"%s\",quantile=\"max\"} %.6f\n",
				method, stats.maxDuration.Seconds()))
		}
	}
	sb.WriteString("\n")

	// Transaction operations
	sb.WriteString("# HELP executor_adapter_operations_total Total number of transaction operations\n")
	sb.WriteString("# TYPE executor_adapter_operations_total counter\n")
	sb.WriteString(fmt.Sprintf("executor_adapter_operations_total{operation=\"discover\",status=\"success\"} %d\n",
		p.discoverStats.successfulCalls))
	sb.WriteString(fmt.Sprintf("executor_adapter_operations_total{operation=\"discover\",status=\"failure\"} %d\n",
		p.discoverStats.failedCalls))
	sb.WriteString(fmt.Sprintf("executor_adapter_operations_total{operation=\"dispatch\",status=\"success\"} %d\n",
		p.dispatchStats.successfulCalls))
	sb.WriteString(fmt.Sprintf("executor_adapter_operations_total{operation=\"dispatch\",status=\"failure\"} %d\n",
		p.dispatchStats.failedCalls))
	sb.WriteString(fmt.Sprintf("executor_adapter_operations_total{operation=\"submit\",status=\"success\"} %d\n",
		p.submitStats.successfulCalls))
	sb.WriteString(fmt.Sprintf("executor_adapter_operations_total{operation=\"submit\",status=\"failure\"} %d\n",
		p.submitStats.failedCalls))
	sb.WriteString("\n")

	// Health status
	health := p.getHealthStatusInternal()
	healthValue := 0.0
	if health.Status == "OK" {
		healthValue = 1.0
	} else if health.Status == "Degraded" {
		healthValue = 0.5
	}
	sb.WriteString("# HELP executor_adapter_health_status Health status (1=OK, 0.5=Degraded, 0=Down)\n")
	sb.WriteString("# TYPE executor_adapter_health_status gauge\n")
	sb.WriteString(fmt.Sprintf("executor_adapter_health_status %.1f\n", healthValue))

	return sb.String()
}

// getHealthStatusInternal is an internal helper that assumes lock is already held.
func (p *PrometheusMetrics) getHealthStatusInternal() HealthStatus {
	status := HealthStatus{
		CheckedAt: time.Now(),
	}

	successRate := 0.0
	if p.totalRPCCalls > 0 {
		successRate = float64(p.successfulRPCCalls) / float64(p.totalRPCCalls)
	}

	var totalDuration time.Duration
	for _, stats := range p.rpcMetrics {
		totalDuration += stats.totalDuration
	}
	avgDuration := time.Duration(0)
	if p.totalRPCCalls > 0 {
		avgDuration = totalDuration / time.Duration(p.totalRPCCalls)
	}

	status.LowSuccessRate = successRate < 0.90 && p.totalRPCCalls > 0
	status.HighLatency = avgDuration > 5*time.Second
	status.NoRecentSuccess = !p.lastSuccessfulCall.IsZero() &&
		time.Since(p.lastSuccessfulCall) > 5*time.Minute

	if p.totalRPCCalls == 0 {
		status.Status = "OK"
		status.Message = "No RPC calls recorded yet"
		return status
	}

	if status.LowSuccessRate || status.HighLatency || status.NoRecentSuccess {
		status.Status = "Degraded"
		messages := []string{}
		if status.LowSuccessRate {
			messages = append(messages, fmt.Sprintf("low success rate (%.1f%%)", successRate*100))
		}
		if status.HighLatency {
			messages = append(messages, fmt.Sprintf("high latency (%v)", avgDuration))
		}
		if status.NoRecentSuccess {
			messages = append(messages, fmt.Sprintf("no recent success (%v ago)", time.Since(p.lastSuccessfulCall)))
		}
		status.Message = strings.Join(messages, ", ")
		return status
	}

	status.Status = "OK"
	status.Message = fmt.Sprintf("Success rate: %.1f%%, Avg latency: %v", successRate*100, avgDuration)
	return status
}

// Reset clears all recorded metrics.
func (p *PrometheusMetrics) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.rpcMetrics = make(map[string]*methodStats)
	p.discoverStats = &operationStats{}
	p.dispatchStats = &operationStats{}
	p.submitStats = &operationStats{}
	p.totalRPCCalls = 0
	p.successfulRPCCalls = 0
	p.failedRPCCalls = 0
	p.lastSuccessfulCall = time.Time{}
}

// Ensure PrometheusMetrics implements ChainMetrics
var _ ChainMetrics = (*PrometheusMetrics)(nil)
