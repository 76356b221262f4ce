package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/beanbar/orderdesk/internal/core/domain"
	"github.com/beanbar/orderdesk/internal/core/ports"
	"github.com/beanbar/orderdesk/internal/core/session"
	"github.com/beanbar/orderdesk/internal/ordercache"
)

// statusFilters is the pill cycle order: all orders first, then the
// lifecycle in progression order.
var statusFilters = []domain.OrderStatus{
	"",
	domain.StatusPending,
	domain.StatusConfirmed,
	domain.StatusPreparing,
	domain.StatusReady,
	domain.StatusCompleted,
	domain.StatusCancelled,
}

const (
	pageLimit     = 20
	toastLifetime = 4 * time.Second
	requestWindow = 10 * time.Second
)

// toast is one transient stream notification shown above the help bar.
type toast struct {
	id   int
	text string
}

// Model is the top-level bubbletea model for the order dashboard.
// Session state arrives as SessionMsg, cache invalidations as
// CacheInvalidatedMsg and stream events as OrderEventMsg; the cmd
// wiring lives in cmd/orderdesk.
type Model struct {
	orders  ports.OrderAPI
	session *session.Manager
	cache   *ordercache.Cache
	keys    KeyMap
	styles  Styles
	log     zerolog.Logger

	width  int
	height int

	sess    session.State
	login   loginForm
	spinner spinner.Model

	// Order table state.
	filterIdx int
	pageNum   int
	page      *ports.OrderPage
	cursor    int
	loading   bool
	fetchErr  error

	toasts   []toast
	toastSeq int
	acting   bool // an order mutation is in flight
}

// NewModel wires the dashboard to its collaborators. The initial
// session snapshot is read synchronously so the first frame shows the
// bootstrap state instead of a flash of the login form.
func NewModel(orders ports.OrderAPI, sess *session.Manager, cache *ordercache.Cache, log zerolog.Logger) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		orders:  orders,
		session: sess,
		cache:   cache,
		keys:    DefaultKeyMap,
		styles:  DefaultStyles,
		log:     log,
		sess:    sess.State(),
		login:   newLoginForm(),
		spinner: sp,
		pageNum: 1,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case SessionMsg:
		return m.handleSession(msg)

	case CacheInvalidatedMsg:
		if m.sess.Authenticated() {
			return m.fetch()
		}
		return m, nil

	case OrderEventMsg:
		return m.pushToast(eventText(msg.Event))

	case toastExpireMsg:
		for i, t := range m.toasts {
			if t.id == msg.id {
				m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
				break
			}
		}
		return m, nil

	case ordersLoadedMsg:
		return m.handleOrdersLoaded(msg)

	case loginResultMsg:
		if msg.err != nil {
			m.login.fail(loginErrText(msg.err))
		}
		// Success arrives separately as a SessionMsg.
		return m, nil

	case actionResultMsg:
		m.acting = false
		if msg.err != nil {
			return m.pushToast(m.styles.Error.Render(actionErrText(msg)))
		}
		// The cached pages no longer reflect the mutation; refetch
		// immediately instead of waiting for a stream event.
		m.cache.Invalidate()
		return m.fetch()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleSession(msg SessionMsg) (tea.Model, tea.Cmd) {
	wasAuthed := m.sess.Authenticated()
	m.sess = msg.State

	if !wasAuthed && m.sess.Authenticated() {
		// Fresh session: reset view state and load the first page.
		m.login = newLoginForm()
		m.filterIdx = 0
		m.pageNum = 1
		m.cursor = 0
		m.page = nil
		m.fetchErr = nil
		return m.fetch()
	}
	if wasAuthed && !m.sess.Authenticated() {
		// Logged out (voluntarily or forced): back to the form.
		m.login = newLoginForm()
		m.page = nil
		m.toasts = nil
		return m, textinput.Blink
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.sess.Loading && !m.sess.Authenticated() {
		return m, nil
	}

	if !m.sess.Authenticated() {
		submit, cmd := m.login.update(msg)
		if submit {
			return m, tea.Batch(cmd, m.submitLogin())
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.page != nil && m.cursor < len(m.page.Orders)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.PrevPage):
		if m.pageNum > 1 {
			m.pageNum--
			m.cursor = 0
			return m.fetch()
		}
		return m, nil

	case key.Matches(msg, m.keys.NextPage):
		if m.page != nil && m.pageNum < m.page.Meta.TotalPages {
			m.pageNum++
			m.cursor = 0
			return m.fetch()
		}
		return m, nil

	case key.Matches(msg, m.keys.FilterNext):
		m.filterIdx = (m.filterIdx + 1) % len(statusFilters)
		m.pageNum = 1
		m.cursor = 0
		return m.fetch()

	case key.Matches(msg, m.keys.FilterPrev):
		m.filterIdx = (m.filterIdx + len(statusFilters) - 1) % len(statusFilters)
		m.pageNum = 1
		m.cursor = 0
		return m.fetch()

	case key.Matches(msg, m.keys.Refresh):
		m.cache.Invalidate()
		return m, nil

	case key.Matches(msg, m.keys.Logout):
		return m, m.submitLogout()

	case key.Matches(msg, m.keys.Advance1):
		return m.advance(0)
	case key.Matches(msg, m.keys.Advance2):
		return m.advance(1)
	case key.Matches(msg, m.keys.Advance3):
		return m.advance(2)

	case key.Matches(msg, m.keys.Cancel):
		order := m.selected()
		if order == nil || !order.Status.CanTransitionTo(domain.StatusCancelled) || m.acting {
			return m, nil
		}
		m.acting = true
		return m, m.submitCancel(order.ID, order.OrderNumber)
	}

	return m, nil
}

// advance applies the nth legal next status of the selected order.
// Cancellation is reachable only through the dedicated cancel key, so
// it is excluded from the numbered actions.
func (m Model) advance(n int) (tea.Model, tea.Cmd) {
	order := m.selected()
	if order == nil || m.acting {
		return m, nil
	}
	actions := forwardStatuses(order.Status)
	if n >= len(actions) {
		return m, nil
	}
	m.acting = true
	return m, m.submitUpdate(order.ID, order.OrderNumber, actions[n])
}

// selected returns the order under the cursor, or nil.
func (m Model) selected() *domain.Order {
	if m.page == nil || m.cursor < 0 || m.cursor >= len(m.page.Orders) {
		return nil
	}
	return &m.page.Orders[m.cursor]
}

// forwardStatuses is NextStatuses minus CANCELLED.
func forwardStatuses(s domain.OrderStatus) []domain.OrderStatus {
	var out []domain.OrderStatus
	for _, next := range s.NextStatuses() {
		if next != domain.StatusCancelled {
			out = append(out, next)
		}
	}
	return out
}

// listInput is the current view's query, also the cache key.
func (m Model) listInput() ports.ListOrdersInput {
	return ports.ListOrdersInput{
		Status: string(statusFilters[m.filterIdx]),
		Page:   m.pageNum,
		Limit:  pageLimit,
	}
}

// fetch loads the current page, serving from the cache when possible.
func (m Model) fetch() (tea.Model, tea.Cmd) {
	in := m.listInput()
	if page, ok := m.cache.Get(in); ok {
		m.page = page
		m.fetchErr = nil
		m.loading = false
		m.clampCursor()
		return m, nil
	}

	m.loading = true
	m.fetchErr = nil
	orders, cache := m.orders, m.cache
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestWindow)
		defer cancel()
		page, err := orders.ListOrders(ctx, in)
		if err == nil {
			cache.Put(in, page)
		}
		return ordersLoadedMsg{in: in, page: page, err: err}
	}
}

func (m Model) handleOrdersLoaded(msg ordersLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.in != m.listInput() {
		// The filter or page moved on while this fetch was in flight.
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		m.fetchErr = msg.err
		return m, nil
	}
	m.page = msg.page
	m.fetchErr = nil
	m.clampCursor()
	return m, nil
}

func (m *Model) clampCursor() {
	if m.page == nil || len(m.page.Orders) == 0 {
		m.cursor = 0
		return
	}
	if m.cursor >= len(m.page.Orders) {
		m.cursor = len(m.page.Orders) - 1
	}
}

func (m Model) submitLogin() tea.Cmd {
	sess := m.session
	username := m.login.username.Value()
	password := m.login.password.Value()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestWindow)
		defer cancel()
		return loginResultMsg{err: sess.Login(ctx, username, password)}
	}
}

func (m Model) submitLogout() tea.Cmd {
	sess := m.session
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestWindow)
		defer cancel()
		sess.Logout(ctx)
		return nil
	}
}

func (m Model) submitUpdate(id, number string, status domain.OrderStatus) tea.Cmd {
	orders := m.orders
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestWindow)
		defer cancel()
		_, err := orders.UpdateOrder(ctx, id, ports.UpdateOrderInput{Status: &status})
		return actionResultMsg{orderNumber: number, err: err}
	}
}

func (m Model) submitCancel(id, number string) tea.Cmd {
	orders := m.orders
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestWindow)
		defer cancel()
		_, err := orders.CancelOrder(ctx, id)
		return actionResultMsg{orderNumber: number, err: err}
	}
}

func (m Model) pushToast(text string) (tea.Model, tea.Cmd) {
	m.toastSeq++
	id := m.toastSeq
	m.toasts = append(m.toasts, toast{id: id, text: text})
	if len(m.toasts) > 3 {
		m.toasts = m.toasts[len(m.toasts)-3:]
	}
	return m, tea.Tick(toastLifetime, func(time.Time) tea.Msg {
		return toastExpireMsg{id: id}
	})
}
