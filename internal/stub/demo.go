package stub

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/beanbar/orderdesk/internal/core/domain"
	"github.com/beanbar/orderdesk/internal/stub/hub"
	"github.com/beanbar/orderdesk/internal/stub/memstore"
	"github.com/beanbar/orderdesk/internal/stub/metrics"
)

var demoMenu = []struct {
	product string
	name    string
	price   float64
}{
	{"prd_latte", "Latte", 4.50},
	{"prd_espresso", "Espresso", 2.80},
	{"prd_cappuccino", "Cappuccino", 4.20},
	{"prd_flatwhite", "Flat White", 4.00},
	{"prd_mocha", "Mocha", 4.80},
	{"prd_croissant", "Croissant", 3.20},
	{"prd_muffin", "Blueberry Muffin", 3.50},
}

var demoCustomers = []string{
	"Walk-in", "Grace Park", "Hugo Meier", "Ines Duarte", "Jack Thornton", "Keiko Tanaka",
}

// RunDemo generates background order traffic until ctx is cancelled:
// each tick it either creates a new order or advances a random active
// one, publishing the matching event. Gives the dashboard live data to
// show during development.
func RunDemo(ctx context.Context, store *memstore.Store, eventHub *hub.Hub, interval time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("demo order generator running")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if rand.Intn(2) == 0 {
				demoCreate(store, eventHub)
			} else if !demoAdvance(store, eventHub) {
				demoCreate(store, eventHub)
			}
		}
	}
}

func demoCreate(store *memstore.Store, eventHub *hub.Hub) {
	count := 1 + rand.Intn(3)
	items := make([]domain.OrderItem, count)
	var total float64
	for i := range items {
		pick := demoMenu[rand.Intn(len(demoMenu))]
		qty := 1 + rand.Intn(2)
		items[i] = domain.OrderItem{
			ID:        fmt.Sprintf("itm_demo_%d", rand.Int63()),
			ProductID: pick.product,
			Name:      pick.name,
			Quantity:  qty,
			UnitPrice: pick.price,
		}
		total += float64(qty) * pick.price
	}

	order := store.CreateOrder(domain.Order{
		Status:      domain.StatusPending,
		TotalAmount: total,
		Customer:    &domain.Customer{Name: demoCustomers[rand.Intn(len(demoCustomers))]},
		Items:       items,
	})

	metrics.OrdersCreatedTotal.WithLabelValues("demo").Inc()
	eventHub.Publish(domain.OrderEvent{
		Type:        domain.EventOrderCreated,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Timestamp:   time.Now().UTC(),
	})
}

// demoAdvance moves one random non-terminal order a step forward and
// reports whether it found one.
func demoAdvance(store *memstore.Store, eventHub *hub.Hub) bool {
	orders, _ := store.ListOrders("", 1, 50)
	active := orders[:0:0]
	for _, o := range orders {
		if !o.Status.Terminal() {
			active = append(active, o)
		}
	}
	if len(active) == 0 {
		return false
	}

	pick := active[rand.Intn(len(active))]
	next := pick.Status.NextStatuses()
	target := next[rand.Intn(len(next))]

	updated, err := store.UpdateOrder(pick.ID, &target, nil)
	if err != nil {
		return false
	}

	metrics.StatusTransitionsTotal.WithLabelValues(string(pick.Status), string(updated.Status)).Inc()
	eventType := domain.EventOrderUpdated
	if updated.Status == domain.StatusCancelled {
		eventType = domain.EventOrderCancelled
	}
	eventHub.Publish(domain.OrderEvent{
		Type:        eventType,
		OrderID:     updated.ID,
		OrderNumber: updated.OrderNumber,
		Status:      updated.Status,
		TotalAmount: updated.TotalAmount,
		Timestamp:   time.Now().UTC(),
	})
	return true
}
