package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/beanbar/orderdesk/internal/core/domain"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.sess.Loading && !m.sess.Authenticated() {
		return "\n  " + m.spinner.View() + " restoring session...\n"
	}
	if !m.sess.Authenticated() {
		return "\n" + m.login.view(m.styles, m.spinner.View()) + "\n"
	}

	var b strings.Builder
	b.WriteString(m.headerView() + "\n")
	b.WriteString(m.filterView() + "\n\n")
	b.WriteString(m.tableView())
	b.WriteString(m.footerView())
	return b.String()
}

func (m Model) headerView() string {
	identity := ""
	if m.sess.User != nil {
		identity = fmt.Sprintf("%s (%s)", m.sess.User.Username, m.sess.User.Role)
	}
	left := m.styles.Title.Render(" orderdesk ")
	right := m.styles.Identity.Render(identity + " ")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) filterView() string {
	pills := make([]string, len(statusFilters))
	for i, f := range statusFilters {
		label := string(f)
		if label == "" {
			label = "ALL"
		}
		if i == m.filterIdx {
			pills[i] = m.styles.PillActive.Render(label)
		} else {
			pills[i] = m.styles.Pill.Render(label)
		}
	}
	return " " + strings.Join(pills, " ")
}

func (m Model) tableView() string {
	if m.fetchErr != nil {
		return fmt.Sprintf("  %s\n  %s\n\n",
			m.styles.Error.Render("could not load orders: "+m.fetchErr.Error()),
			m.styles.Muted.Render("press r to retry"))
	}
	if m.loading && m.page == nil {
		return "  " + m.spinner.View() + " loading orders...\n\n"
	}
	if m.page == nil || len(m.page.Orders) == 0 {
		return "  " + m.styles.Muted.Render("no orders") + "\n\n"
	}

	var b strings.Builder
	header := fmt.Sprintf("  %-12s %-10s %5s %9s  %-20s", "ORDER", "STATUS", "ITEMS", "TOTAL", "CUSTOMER")
	b.WriteString(m.styles.HeaderRow.Render(header) + "\n")

	for i, o := range m.page.Orders {
		customer := "walk-in"
		if o.Customer != nil && o.Customer.Name != "" {
			customer = o.Customer.Name
		}
		row := fmt.Sprintf("  %-12s %-10s %5d %8.2f€  %-20s",
			o.OrderNumber, o.Status, len(o.Items), o.TotalAmount, customer)
		if i == m.cursor {
			b.WriteString(m.styles.SelectedRow.Render(row))
		} else {
			b.WriteString(m.styles.StatusStyle(o.Status).Render(row))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n  " + m.styles.Muted.Render(fmt.Sprintf("page %d/%d · %d orders",
		m.page.Meta.Page, max(m.page.Meta.TotalPages, 1), m.page.Meta.Total)) + "\n\n")
	return b.String()
}

func (m Model) footerView() string {
	var b strings.Builder
	for _, t := range m.toasts {
		b.WriteString("  " + m.styles.Toast.Render(t.text) + "\n")
	}
	b.WriteString(m.styles.Help.Render("  " + strings.Join(m.helpEntries(), " · ")))
	return b.String()
}

// helpEntries lists the actions legal for the selected order, so the
// help bar always matches what the server would accept.
func (m Model) helpEntries() []string {
	entries := []string{"j/k move", "tab filter", "h/l page", "r refresh"}
	if order := m.selected(); order != nil {
		for i, next := range forwardStatuses(order.Status) {
			entries = append(entries, fmt.Sprintf("%d %s", i+1, strings.ToLower(string(next))))
		}
		if order.Status.CanTransitionTo(domain.StatusCancelled) {
			entries = append(entries, "x cancel")
		}
	}
	entries = append(entries, "C-o log out", "q quit")
	return entries
}

// eventText renders a stream event as toast copy.
func eventText(e domain.OrderEvent) string {
	switch e.Type {
	case domain.EventOrderCreated:
		return fmt.Sprintf("new order %s · %.2f€", e.OrderNumber, e.TotalAmount)
	case domain.EventOrderCancelled:
		return fmt.Sprintf("order %s cancelled", e.OrderNumber)
	default:
		return fmt.Sprintf("order %s → %s", e.OrderNumber, e.Status)
	}
}

func loginErrText(err error) string {
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return "invalid username or password"
	}
	return "login failed: " + err.Error()
}

func actionErrText(msg actionResultMsg) string {
	switch {
	case errors.Is(msg.err, domain.ErrInvalidTransition):
		return fmt.Sprintf("%s: transition no longer valid", msg.orderNumber)
	case errors.Is(msg.err, domain.ErrForbidden):
		return "not allowed for your role"
	case errors.Is(msg.err, domain.ErrOrderNotFound):
		return fmt.Sprintf("%s: order not found", msg.orderNumber)
	default:
		return fmt.Sprintf("%s: %s", msg.orderNumber, msg.err)
	}
}
