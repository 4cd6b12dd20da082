package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"admindash/internal/dashboard/app/dto"
	"admindash/internal/dashboard/domain/entities"
	"admindash/internal/dashboard/ports/services"
	"admindash/pkg/logger"
)

// Пути API клиентов.
const (
	CustomersListPath   = "/customers/list"
	CustomersSinglePath = "/customers/single"
	CustomersBulkPath   = "/customers/bulk"
)

// Константы для логирования.
const (
	LogServiceListCustomers   = "customer service: list customers"
	LogServiceAddCustomer     = "customer service: add customer"
	LogServiceAddCustomerBulk = "customer service: add customers in bulk"

	ErrorListCustomersFailed = "failed to list customers"
	ErrorAddCustomerFailed   = "failed to add customer"
	ErrorAddCustomersFailed  = "failed to add customers"
)

// CustomerServiceImpl реализует интерфейс CustomerService.
type CustomerServiceImpl struct {
	api Requester
}

// NewCustomerService создает сервис клиентов.
func NewCustomerService(api Requester) services.CustomerService {
	return &CustomerServiceImpl{api: api}
}

// List возвращает всех клиентов.
func (s *CustomerServiceImpl) List(ctx context.Context) ([]entities.Customer, error) {
	log := logger.Log(ctx)
	log.Debug(ctx, LogServiceListCustomers)

	customers := []entities.Customer{}
	if err := s.api.Do(ctx, http.MethodGet, CustomersListPath, nil, &customers); err != nil {
		log.Error(ctx, ErrorListCustomersFailed, zap.Error(err))
		return nil, err
	}
	return customers, nil
}

func (s *CustomerServiceImpl) Add(ctx context.Context, customer entities.Customer) (json.RawMessage, error) {
	log := logger.Log(ctx).With(zap.String("name", customer.Name))
	log.Info(ctx, LogServiceAddCustomer)

	if err := customer.Validate(); err != nil {
		return nil, err
	}

	var out json.RawMessage
	if err := s.api.Do(ctx, http.MethodPost, CustomersSinglePath, customer, &out); err != nil {
		log.Error(ctx, ErrorAddCustomerFailed, zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (s *CustomerServiceImpl) AddBulk(ctx context.Context, customers []entities.Customer) (json.RawMessage, error) {
	log := logger.Log(ctx).With(zap.Int("count", len(customers)))
	log.Info(ctx, LogServiceAddCustomerBulk)

	if len(customers) == 0 {
		return nil, fmt.Errorf("%w: customers list is empty", entities.ErrValidation)
	}
	for i, customer := range customers {
		if err := customer.Validate(); err != nil {
			return nil, fmt.Errorf("customers[%d]: %w", i, err)
		}
	}

	var out json.RawMessage
	body := dto.CustomersBulkRequest{Customers: customers}
	if err := s.api.Do(ctx, http.MethodPost, CustomersBulkPath, body, &out); err != nil {
		log.Error(ctx, ErrorAddCustomersFailed, zap.Error(err))
		return nil, err
	}
	return out, nil
}
