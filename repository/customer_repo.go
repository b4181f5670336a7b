package repository

import (
	"context"
	"fieldfuze-dispatch/dal"
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/utils/logger"
)

type CustomerRepository struct {
	db     dal.DatabaseClientInterface
	config *models.Config
	logger logger.Logger
}

func NewCustomerRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *CustomerRepository {
	return &CustomerRepository{
		db:     db,
		config: cfg,
		logger: log,
	}
}

// GetCustomers batch-reads customers by ID. Customers of other companies are
// dropped; missing IDs are simply absent from the result.
func (r *CustomerRepository) GetCustomers(ctx context.Context, orgID string, customerIDs []string) (map[string]*models.Customer, error) {
	result := make(map[string]*models.Customer, len(customerIDs))
	if len(customerIDs) == 0 {
		return result, nil
	}

	keys := make([]string, 0, len(customerIDs))
	seen := make(map[string]struct{}, len(customerIDs))
	for _, id := range customerIDs {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, id)
	}
	if len(keys) == 0 {
		return result, nil
	}

	var customers []*models.Customer
	if err := r.db.BatchGetItems(ctx, r.config.TableName(CustomersTable), "customerID", keys, &customers); err != nil {
		r.logger.Errorf("Failed to read customers: %v", err)
		return nil, storageError("failed to read customers", err)
	}

	for _, c := range customers {
		if c.OrgID != orgID {
			continue
		}
		result[c.CustomerID] = c
	}
	return result, nil
}
