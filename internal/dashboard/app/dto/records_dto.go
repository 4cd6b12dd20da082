package dto

import "admindash/internal/dashboard/domain/entities"

// UsersBulkRequest - тело POST /users/bulk.
type UsersBulkRequest struct {
	Users []entities.User `json:"users"`
}

// CustomersBulkRequest - тело POST /customers/bulk.
type CustomersBulkRequest struct {
	Customers []entities.Customer `json:"customers"`
}
