package memstore

import (
	"fmt"

	"github.com/beanbar/orderdesk/internal/core/domain"
)

// Seed populates the store with staff accounts and a spread of orders
// across the lifecycle so a freshly started dashboard has something to
// show. Passwords are development-only.
func (s *Store) Seed() error {
	staff := []struct {
		username, password, email, role string
	}{
		{"admin", "admin123", "admin@beanbar.test", domain.RoleAdmin},
		{"maria", "manager123", "maria@beanbar.test", domain.RoleManager},
		{"jonas", "barista123", "jonas@beanbar.test", domain.RoleEmployee},
	}
	for _, u := range staff {
		if _, err := s.CreateUser(u.username, u.password, u.email, u.role); err != nil {
			return fmt.Errorf("seed user %s: %w", u.username, err)
		}
	}

	seeds := []struct {
		status   domain.OrderStatus
		customer string
		notes    string
		items    []domain.OrderItem
	}{
		{domain.StatusPending, "Alice Nguyen", "oat milk", []domain.OrderItem{
			{ProductID: "prd_latte", Name: "Latte", Quantity: 2, UnitPrice: 4.50},
			{ProductID: "prd_croissant", Name: "Croissant", Quantity: 1, UnitPrice: 3.20},
		}},
		{domain.StatusPending, "Ben Okafor", "", []domain.OrderItem{
			{ProductID: "prd_espresso", Name: "Espresso", Quantity: 1, UnitPrice: 2.80},
		}},
		{domain.StatusConfirmed, "Carla Reyes", "extra hot", []domain.OrderItem{
			{ProductID: "prd_cappuccino", Name: "Cappuccino", Quantity: 1, UnitPrice: 4.20},
			{ProductID: "prd_muffin", Name: "Blueberry Muffin", Quantity: 2, UnitPrice: 3.50},
		}},
		{domain.StatusPreparing, "Diego Fontaine", "", []domain.OrderItem{
			{ProductID: "prd_flatwhite", Name: "Flat White", Quantity: 2, UnitPrice: 4.00},
		}},
		{domain.StatusReady, "Emma Lindqvist", "to go", []domain.OrderItem{
			{ProductID: "prd_mocha", Name: "Mocha", Quantity: 1, UnitPrice: 4.80},
		}},
		{domain.StatusCompleted, "Farid Haddad", "", []domain.OrderItem{
			{ProductID: "prd_americano", Name: "Americano", Quantity: 3, UnitPrice: 3.00},
		}},
	}

	for i, seed := range seeds {
		var total float64
		items := make([]domain.OrderItem, len(seed.items))
		for j, item := range seed.items {
			item.ID = fmt.Sprintf("itm_%03d", i*10+j)
			items[j] = item
			total += float64(item.Quantity) * item.UnitPrice
		}
		s.CreateOrder(domain.Order{
			Status:      seed.status,
			TotalAmount: total,
			Notes:       seed.notes,
			Customer: &domain.Customer{
				ID:   fmt.Sprintf("cus_%03d", i),
				Name: seed.customer,
			},
			Items: items,
		})
	}

	return nil
}
