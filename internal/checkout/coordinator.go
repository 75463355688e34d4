package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kevin-vien/web-mobile-tranning/internal/logging"
	"github.com/kevin-vien/web-mobile-tranning/internal/metrics"
	"github.com/kevin-vien/web-mobile-tranning/internal/models"
	"github.com/kevin-vien/web-mobile-tranning/internal/repository"
)

const MaxIdempotencyKeyLen = 255

// MaxQuantity caps a single line and the combined quantity of one product in
// an order. It fits in a 32-bit int, so converting a decoded quantity to int
// is safe on every platform, and the total stays well inside decimal(12,2)
// for realistic prices.
const MaxQuantity = math.MaxInt32

type Item struct {
	ProductID uint
	Quantity  int
	UnitPrice decimal.Decimal
}

type Request struct {
	UserID         uint
	Email          string
	Items          []Item
	PaymentMethod  models.PaymentMethod
	IdempotencyKey string
	RequestID      string
}

type Result struct {
	Order    *models.Order
	Replayed bool
}

// Notifier is told about every newly committed order. It must not block.
type Notifier interface {
	OrderPlaced(order models.Order, email string)
}

// Invalidator drops cached product state after stock changed.
type Invalidator interface {
	InvalidateProducts(ctx context.Context, ids ...uint)
}

type Options struct {
	MaxAttempts   int
	LockTimeout   time.Duration
	ClampQuantity bool
	RetryBackoff  time.Duration
}

type Coordinator struct {
	db          *gorm.DB
	orders      *repository.OrderRepository
	opts        Options
	notifier    Notifier
	invalidator Invalidator
	metrics     *metrics.Metrics
}

func NewCoordinator(db *gorm.DB, opts Options) *Coordinator {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 50 * time.Millisecond
	}
	return &Coordinator{db: db, orders: repository.NewOrderRepository(db), opts: opts}
}

func (c *Coordinator) WithNotifier(n Notifier) *Coordinator {
	c.notifier = n
	return c
}

func (c *Coordinator) WithInvalidator(i Invalidator) *Coordinator {
	c.invalidator = i
	return c
}

func (c *Coordinator) WithMetrics(m *metrics.Metrics) *Coordinator {
	c.metrics = m
	return c
}

var errKeyTaken = errors.New("idempotency key claimed concurrently")

// PlaceOrder validates the request, then in one transaction locks every
// product in ascending id order, checks and decrements stock, and writes the
// order with its lines. Notification happens after commit and never affects
// the result.
func (c *Coordinator) PlaceOrder(ctx context.Context, req Request) (*Result, error) {
	started := time.Now()

	items, verr := c.normalize(req)
	if verr != nil {
		c.metrics.ObserveCheckout(string(verr.Kind))
		return nil, verr
	}

	var (
		res *Result
		err error
	)
	for attempt := 1; attempt <= c.opts.MaxAttempts; attempt++ {
		res, err = c.attempt(ctx, req, items)
		if err == nil || !retryable(err) || attempt == c.opts.MaxAttempts {
			break
		}

		logging.Err(logging.Fields{RequestID: req.RequestID, UserID: req.UserID, Step: "checkout", Status: "retry", Attempt: attempt}, err)
		select {
		case <-ctx.Done():
			err = ctx.Err()
		case <-time.After(time.Duration(attempt) * c.opts.RetryBackoff):
			continue
		}
		break
	}

	if errors.Is(err, errKeyTaken) {
		res, err = c.replay(ctx, req)
	}

	if err != nil {
		cerr := classify(err)
		c.metrics.ObserveCheckout(string(cerr.Kind))
		fields := logging.Fields{RequestID: req.RequestID, UserID: req.UserID, ProductID: cerr.ProductID, Step: "checkout", Status: string(cerr.Kind), DurationMS: time.Since(started).Milliseconds()}
		if cerr.Kind == KindInternal {
			logging.Err(fields, err)
		} else {
			logging.Log(fields)
		}
		return nil, cerr
	}

	fields := logging.Fields{RequestID: req.RequestID, UserID: req.UserID, OrderID: res.Order.ID, Step: "checkout", DurationMS: time.Since(started).Milliseconds()}
	if res.Replayed {
		c.metrics.ObserveCheckout("replayed")
		fields.Status = "replayed"
		logging.Log(fields)
		return res, nil
	}

	c.metrics.ObserveCheckout("created")
	fields.Status = "committed"
	logging.Log(fields)

	if c.invalidator != nil {
		c.invalidator.InvalidateProducts(ctx, productIDs(items)...)
	}
	if c.notifier != nil {
		c.notifier.OrderPlaced(*res.Order, req.Email)
	}
	return res, nil
}

func (c *Coordinator) normalize(req Request) ([]Item, *Error) {
	if req.UserID == 0 {
		return nil, invalid("user is required")
	}
	if len(req.Items) == 0 {
		return nil, invalid("no items")
	}
	if !req.PaymentMethod.Valid() {
		return nil, invalid("payment_method must be COD or ONLINE")
	}
	if len(req.IdempotencyKey) > MaxIdempotencyKeyLen {
		return nil, invalid("idempotency key longer than %d characters", MaxIdempotencyKeyLen)
	}

	items := make([]Item, len(req.Items))
	combined := make(map[uint]int, len(req.Items))
	for i, it := range req.Items {
		if it.ProductID == 0 {
			return nil, invalid("items[%d]: product_id is required", i)
		}
		if it.Quantity <= 0 {
			if !c.opts.ClampQuantity {
				return nil, invalid("items[%d]: quantity must be positive", i)
			}
			it.Quantity = 1
		}
		if it.Quantity > MaxQuantity {
			return nil, invalid("items[%d]: quantity must be at most %d", i, MaxQuantity)
		}
		if combined[it.ProductID] > MaxQuantity-it.Quantity {
			return nil, invalid("items[%d]: combined quantity for product %d exceeds %d", i, it.ProductID, MaxQuantity)
		}
		combined[it.ProductID] += it.Quantity
		if it.UnitPrice.IsNegative() {
			return nil, invalid("items[%d]: price must not be negative", i)
		}
		items[i] = it
	}
	return items, nil
}

func (c *Coordinator) attempt(ctx context.Context, req Request, items []Item) (*Result, error) {
	var res *Result
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" && c.opts.LockTimeout > 0 {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", c.opts.LockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}

		if req.IdempotencyKey != "" {
			orderID, ok, err := c.orders.FindIdempotent(tx, req.UserID, req.IdempotencyKey)
			if err != nil {
				return err
			}
			if ok {
				order, err := c.orders.GetTx(tx, orderID)
				if err != nil {
					return err
				}
				res = &Result{Order: order, Replayed: true}
				return nil
			}
		}

		wanted := requestedByProduct(items)
		for _, id := range sortedKeys(wanted) {
			product, err := repository.LockForUpdate(tx, id)
			if errors.Is(err, repository.ErrNotFound) {
				return &Error{Kind: KindProductNotFound, ProductID: id}
			}
			if err != nil {
				return err
			}
			if product.Stock < wanted[id] {
				return &Error{Kind: KindInsufficientStock, ProductID: id, Available: product.Stock, Requested: wanted[id]}
			}
		}
		for _, id := range sortedKeys(wanted) {
			if err := repository.DecrementStock(tx, id, wanted[id]); err != nil {
				return err
			}
		}

		lines := make([]models.OrderDetail, 0, len(items))
		for _, it := range items {
			lines = append(lines, models.OrderDetail{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Price:     it.UnitPrice,
			})
		}
		order := models.Order{
			UserID:        req.UserID,
			TotalPrice:    models.SumLines(lines),
			PaymentMethod: req.PaymentMethod,
			Status:        models.StatusPending,
			Details:       lines,
		}
		if err := c.orders.Create(tx, &order); err != nil {
			return err
		}

		if req.IdempotencyKey != "" {
			err := c.orders.SaveIdempotent(tx, req.UserID, req.IdempotencyKey, order.ID)
			if errors.Is(err, repository.ErrDuplicate) {
				return errKeyTaken
			}
			if err != nil {
				return err
			}
		}

		res = &Result{Order: &order}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// replay returns the order another request committed under the same key.
func (c *Coordinator) replay(ctx context.Context, req Request) (*Result, error) {
	orderID, ok, err := c.orders.FindIdempotent(c.db.WithContext(ctx), req.UserID, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errKeyTaken
	}
	order, err := c.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &Result{Order: order, Replayed: true}, nil
}

// requestedByProduct sums quantities per product so a product listed twice is
// locked once and checked against the combined amount.
func requestedByProduct(items []Item) map[uint]int {
	wanted := make(map[uint]int, len(items))
	for _, it := range items {
		wanted[it.ProductID] += it.Quantity
	}
	return wanted
}

func sortedKeys(m map[uint]int) []uint {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func productIDs(items []Item) []uint {
	return sortedKeys(requestedByProduct(items))
}

// Postgres SQLSTATEs the coordinator reacts to.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
)

func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
}

func classify(err error) *Error {
	if cerr, ok := AsError(err); ok {
		return cerr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeLockNotAvailable, codeQueryCanceled:
			return internal("lock wait timeout", err)
		case codeSerializationFailure, codeDeadlockDetected:
			return internal("too much contention, retry later", err)
		}
	}
	if errors.Is(err, repository.ErrNotEnough) {
		return internal("stock changed under lock", err)
	}
	return internal("checkout failed", err)
}
