package resilience

import (
	"context"

	"go.uber.org/zap"

	"admindash/pkg/logger"
)

// ServiceResilience обеспечивает отказоустойчивость вызовов одного сервиса:
// общий Circuit Breaker и повторы для операций, где они допустимы.
type ServiceResilience struct {
	serviceName    string
	circuitBreaker *CircuitBreaker
	retry          *Retry
}

// NewServiceResilience создает обертку отказоустойчивости для сервиса.
func NewServiceResilience(serviceName string, breaker CircuitBreakerConfig, retry RetryConfig) *ServiceResilience {
	return &ServiceResilience{
		serviceName:    serviceName,
		circuitBreaker: NewCircuitBreaker(serviceName, breaker),
		retry:          NewRetry(serviceName, retry),
	}
}

// Execute выполняет операцию под защитой Circuit Breaker без повторов.
func (r *ServiceResilience) Execute(ctx context.Context, operationName string, operation func() error) error {
	logger.Log(ctx).Debug(ctx, "executing operation with circuit breaker",
		zap.String("service", r.serviceName),
		zap.String("operation", operationName))

	return r.circuitBreaker.Execute(ctx, operation)
}

// ExecuteWithRetry выполняет операцию с повторами под защитой Circuit Breaker.
// Каждая попытка учитывается Circuit Breaker отдельно.
func (r *ServiceResilience) ExecuteWithRetry(ctx context.Context, operationName string, operation func() error) error {
	logger.Log(ctx).Debug(ctx, "executing operation with resilience",
		zap.String("service", r.serviceName),
		zap.String("operation", operationName))

	return r.retry.Execute(ctx, func() error {
		return r.circuitBreaker.Execute(ctx, operation)
	})
}

// State возвращает состояние Circuit Breaker сервиса.
func (r *ServiceResilience) State() CircuitState {
	return r.circuitBreaker.GetState()
}
