package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"bloxstore/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc"
)

var (
	ErrMissingCheckoutFields = errors.New("missing required checkout fields")
	ErrEmptyCart             = errors.New("cart is empty")
	ErrCheckoutStep          = errors.New("checkout is not at the expected step")
	ErrNoSummary             = errors.New("no order summary to copy")
)

// CheckoutStep is the position of the checkout dialog.
type CheckoutStep string

const (
	StepClosed   CheckoutStep = "CLOSED"
	StepDetails  CheckoutStep = "DETAILS"
	StepPlatform CheckoutStep = "PLATFORM"
)

// CheckoutDetails is what the shopper enters before orders are placed.
type CheckoutDetails struct {
	RobloxUsername string `json:"robloxUsername" validate:"required"`
	Country        string `json:"country" validate:"required"`
	Email          string `json:"email" validate:"required"`
	Notes          string `json:"notes"`
}

func (d CheckoutDetails) trimmed() CheckoutDetails {
	return CheckoutDetails{
		RobloxUsername: strings.TrimSpace(d.RobloxUsername),
		Country:        strings.TrimSpace(d.Country),
		Email:          strings.TrimSpace(d.Email),
		Notes:          strings.TrimSpace(d.Notes),
	}
}

// OrderSummary is the record of one submitted checkout.
type OrderSummary struct {
	OrderIDs []string          `json:"orderIds"`
	Items    []models.CartItem `json:"items"`
	Total    decimal.Decimal   `json:"total"`
	Details  CheckoutDetails   `json:"details"`
}

// Text renders the summary the shopper copies to the payment chat. The output
// depends only on the summary and lang.
func (s OrderSummary) Text(lang Language) string {
	labels := summaryLabels[LangEnglish]
	if l, ok := summaryLabels[lang]; ok {
		labels = l
	}

	var b strings.Builder
	b.WriteString(labels.title)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s: %s\n", labels.orders, strings.Join(s.OrderIDs, ", "))
	fmt.Fprintf(&b, "%s: %s\n", labels.roblox, s.Details.RobloxUsername)
	fmt.Fprintf(&b, "%s: %s\n", labels.country, s.Details.Country)
	fmt.Fprintf(&b, "%s: %s\n", labels.email, s.Details.Email)
	notes := s.Details.Notes
	if notes == "" {
		notes = Message(lang, MsgNoNotes)
	}
	fmt.Fprintf(&b, "%s: %s\n\n", labels.notes, notes)
	b.WriteString(labels.items)
	b.WriteString(":\n")
	for _, item := range s.Items {
		price := Message(lang, MsgCustomPrice)
		if !item.HasCustomPrice() {
			price = item.Price.String() + " R$"
		}
		fmt.Fprintf(&b, "- %s (%s)\n", item.Name, price)
	}
	total := Message(lang, MsgTotalLater)
	if s.Total.IsPositive() {
		total = s.Total.String() + " R$"
	}
	fmt.Fprintf(&b, "\n%s: %s", labels.total, total)
	return b.String()
}

type summaryText struct {
	title, orders, roblox, country, email, notes, items, total string
}

var summaryLabels = map[Language]summaryText{
	LangArabic: {
		title:   "طلب شراء جديد",
		orders:  "أرقام الطلبات",
		roblox:  "اسم المستخدم في روبلوكس",
		country: "الدولة",
		email:   "البريد الإلكتروني",
		notes:   "ملاحظات",
		items:   "المنتجات",
		total:   "الإجمالي",
	},
	LangEnglish: {
		title:   "New purchase order",
		orders:  "Order IDs",
		roblox:  "Roblox username",
		country: "Country",
		email:   "Email",
		notes:   "Notes",
		items:   "Items",
		total:   "Total",
	},
}

// NewOrderID returns an id of the form ORD-XXXXXXXXX.
func NewOrderID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD-" + strings.ToUpper(hex[:9])
}

// OrderCreator persists orders.
type OrderCreator interface {
	CreateOrder(ctx context.Context, order *models.Order) error
}

// Clipboard receives the copied summary.
type Clipboard interface {
	WriteText(text string) error
}

// SubmissionResult is the outcome of persisting one order.
type SubmissionResult struct {
	OrderID string `json:"orderId"`
	Err     error  `json:"-"`
}

// CheckoutService drives the checkout dialog: details entry, order placement and
// the payment instructions step.
type CheckoutService struct {
	store    *Store
	orders   OrderCreator
	validate *validator.Validate
	newID    func() string
	now      func() time.Time

	mu      sync.Mutex
	step    CheckoutStep
	details CheckoutDetails
	summary *OrderSummary

	submissions conc.WaitGroup
	inflight    atomic.Int64
	resultsMu   sync.Mutex
	results     []SubmissionResult
}

// NewCheckoutService creates a CheckoutService placing orders through orders.
func NewCheckoutService(store *Store, orders OrderCreator) *CheckoutService {
	return &CheckoutService{
		store:    store,
		orders:   orders,
		validate: validator.New(),
		newID:    NewOrderID,
		now:      time.Now,
		step:     StepClosed,
	}
}

// Open shows the details step, pre-filling the email of the signed-in shopper.
func (c *CheckoutService) Open() CheckoutDetails {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.step = StepDetails
	c.summary = nil
	c.details = CheckoutDetails{Email: c.store.Session().Email}
	return c.details
}

// Step returns the current step.
func (c *CheckoutService) Step() CheckoutStep {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Details returns the details entered so far.
func (c *CheckoutService) Details() CheckoutDetails {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.details
}

// Submit validates the details and places one order per cart line. The cart is
// cleared and the dialog moves to the payment step before the orders are persisted;
// persistence failures are only logged. Missing details or an empty cart queue a
// notice and change nothing.
func (c *CheckoutService) Submit(ctx context.Context, details CheckoutDetails) (*OrderSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepDetails {
		return nil, ErrCheckoutStep
	}
	details = details.trimmed()
	c.details = details

	session := c.store.Session()
	if session.Email != "" {
		details.Email = session.Email
	}
	if err := c.validate.Struct(details); err != nil {
		c.store.Notify(MsgCheckoutMissingFields, NoticeError, false)
		return nil, fmt.Errorf("%w: %v", ErrMissingCheckoutFields, err)
	}

	items := c.store.Cart()
	if len(items) == 0 {
		c.store.Notify(MsgCheckoutMissingFields, NoticeError, false)
		return nil, ErrEmptyCart
	}

	userName := session.Username
	if userName == "" {
		userName = "Guest"
	}
	var userID *string
	if session.IsAuthenticated() {
		id := session.UserID
		userID = &id
	}

	now := c.now()
	orders := make([]*models.Order, 0, len(items))
	summary := &OrderSummary{
		Items:   items,
		Total:   models.CartTotal(items),
		Details: details,
	}
	for _, item := range items {
		o := &models.Order{
			ID:             c.newID(),
			UserID:         userID,
			UserName:       userName,
			UserEmail:      details.Email,
			ProductID:      item.ID,
			ProductName:    item.Name,
			ProductPrice:   item.Price,
			PaymentMethod:  models.PaymentRoblox,
			Status:         models.StatusPendingPayment,
			RobloxUsername: details.RobloxUsername,
			Country:        details.Country,
			Notes:          details.Notes,
			CreatedAt:      now,
		}
		orders = append(orders, o)
		summary.OrderIDs = append(summary.OrderIDs, o.ID)
	}

	c.store.ClearCart()
	c.summary = summary
	c.step = StepPlatform

	bg := context.WithoutCancel(ctx)
	for _, o := range orders {
		c.submit(bg, o)
	}
	return summary, nil
}

func (c *CheckoutService) submit(ctx context.Context, o *models.Order) {
	c.inflight.Add(1)
	c.submissions.Go(func() {
		defer c.inflight.Add(-1)
		err := c.orders.CreateOrder(ctx, o)
		if err != nil {
			log.Printf("checkout: failed to persist order %s: %v", o.ID, err)
		}
		c.resultsMu.Lock()
		c.results = append(c.results, SubmissionResult{OrderID: o.ID, Err: err})
		c.resultsMu.Unlock()
	})
}

// InFlight returns the number of orders still being persisted.
func (c *CheckoutService) InFlight() int {
	return int(c.inflight.Load())
}

// Wait blocks until every submitted order has been persisted or has failed, and
// returns the outcomes so far.
func (c *CheckoutService) Wait() []SubmissionResult {
	c.submissions.Wait()
	c.resultsMu.Lock()
	defer c.resultsMu.Unlock()
	return append([]SubmissionResult{}, c.results...)
}

// Summary returns the summary of the last submitted checkout.
func (c *CheckoutService) Summary() (*OrderSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summary, c.summary != nil
}

// Copy writes the summary text to cb. A clipboard failure is logged and reported as false.
func (c *CheckoutService) Copy(cb Clipboard) (bool, error) {
	c.mu.Lock()
	summary := c.summary
	step := c.step
	c.mu.Unlock()

	if step != StepPlatform || summary == nil {
		return false, ErrNoSummary
	}
	if err := cb.WriteText(summary.Text(c.store.Language())); err != nil {
		log.Printf("checkout: copy to clipboard failed: %v", err)
		return false, nil
	}
	return true, nil
}

// Close dismisses the dialog from any step.
func (c *CheckoutService) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.step = StepClosed
	c.details = CheckoutDetails{}
}
