package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/ghuser/invoiceledger/pkg/cache"
	"github.com/ghuser/invoiceledger/pkg/logger"
	"github.com/ghuser/invoiceledger/pkg/telemetry"
	invoicedomain "github.com/ghuser/invoiceledger/services/invoice/domain"
	"github.com/ghuser/invoiceledger/services/invoice/domain/models"
	"github.com/ghuser/invoiceledger/services/invoice/domain/repositories"
	domainsvcs "github.com/ghuser/invoiceledger/services/invoice/domain/services"
)

// InvoiceCache is the read-model cache consulted by GetInvoice.
// *cache.InvoiceCache satisfies it.
//
// Delete bumps the invoice's generation. SetIfUnchanged returns cache.ErrStale
// instead of writing when the generation moved past gen, so a fill that read
// the store before a concurrent mutation cannot reinstate the old value.
type InvoiceCache interface {
	Get(ctx context.Context, invoiceID int64) (*cache.CachedInvoice, error)
	Generation(ctx context.Context, invoiceID int64) (int64, error)
	SetIfUnchanged(ctx context.Context, inv *cache.CachedInvoice, gen int64) error
	Delete(ctx context.Context, invoiceID int64) error
}

// Renderer produces a printable document for an invoice.
type Renderer interface {
	Render(inv *models.Invoice) ([]byte, error)
}

// DemoCustomer owns the invoice created by SeedDemo.
const DemoCustomer = "John Doe"

var demoItems = []struct {
	name     string
	price    string
	quantity int
}{
	{"Widget A", "19.99", 2},
	{"Widget B", "29.99", 1},
	{"Service Fee", "10.00", 1},
}

// InvoiceService keeps each invoice's stored total consistent with its items
// across create, add-item and delete operations.
// Event publishing is handled by the repository layer (outbox pattern).
// Reads are served from the Redis cache when one is attached.
type InvoiceService struct {
	repo     repositories.InvoiceRepository
	cache    InvoiceCache
	renderer Renderer
	log      logger.Logger
	metrics  serviceMetrics
}

type serviceMetrics struct {
	created     metric.Int64Counter
	itemsAdded  metric.Int64Counter
	deleted     metric.Int64Counter
	drift       metric.Int64Counter
	cacheHits   metric.Int64Counter
	cacheMisses metric.Int64Counter
}

// NewInvoiceService returns an InvoiceService. invoiceCache may be nil.
func NewInvoiceService(repo repositories.InvoiceRepository, invoiceCache InvoiceCache, renderer Renderer, log logger.Logger) *InvoiceService {
	m := telemetry.Meter("github.com/ghuser/invoiceledger/services/invoice")
	return &InvoiceService{
		repo:     repo,
		cache:    invoiceCache,
		renderer: renderer,
		log:      log,
		metrics: serviceMetrics{
			created:     counter(m, "invoices_created", "Invoices created"),
			itemsAdded:  counter(m, "invoice_items_added", "Items added to invoices"),
			deleted:     counter(m, "invoices_deleted", "Invoices deleted"),
			drift:       counter(m, "invoice_total_drift", "Stored totals found out of sync with their items"),
			cacheHits:   counter(m, "invoice_cache_hits", "Invoice reads served from cache"),
			cacheMisses: counter(m, "invoice_cache_misses", "Invoice reads that fell through to the store"),
		},
	}
}

func counter(m metric.Meter, name, desc string) metric.Int64Counter {
	c, err := m.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		return noop.Int64Counter{}
	}
	return c
}

// ListInvoices returns every invoice with its items, ordered by id.
// An empty store is reported as ErrNoInvoices.
func (s *InvoiceService) ListInvoices(ctx context.Context) ([]*models.Invoice, error) {
	invoices, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	if len(invoices) == 0 {
		return nil, invoicedomain.ErrNoInvoices
	}
	return invoices, nil
}

// ListInvoiceIDs returns one page of invoice ids: up to limit ids greater
// than afterID, ascending.
func (s *InvoiceService) ListInvoiceIDs(ctx context.Context, afterID int64, limit int) ([]int64, error) {
	ids, err := s.repo.ListIDs(ctx, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list invoice ids: %w", err)
	}
	return ids, nil
}

// GetInvoice retrieves an invoice using a read-through cache:
//  1. Check the cache first.
//  2. On a miss (or cache error), note the cache generation and query the store.
//  3. Write the store result back unless the invoice was evicted meanwhile.
func (s *InvoiceService) GetInvoice(ctx context.Context, id int64) (*models.Invoice, error) {
	fillGen := int64(-1)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		switch {
		case err == nil:
			inv, convErr := fromCachedInvoice(cached)
			if convErr == nil {
				convErr = domainsvcs.CheckTotal(inv)
			}
			if convErr == nil {
				s.metrics.cacheHits.Add(ctx, 1)
				return inv, nil
			}
			s.log.WarnContext(ctx, "discarding corrupt cache entry", "invoice_id", id, "error", convErr)
		case !errors.Is(err, cache.ErrMiss):
			s.log.WarnContext(ctx, "invoice cache read failed", "invoice_id", id, "error", err)
		}
		s.metrics.cacheMisses.Add(ctx, 1)
		if gen, err := s.cache.Generation(ctx, id); err == nil {
			fillGen = gen
		} else {
			s.log.WarnContext(ctx, "invoice cache generation read failed", "invoice_id", id, "error", err)
		}
	}

	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if fillGen >= 0 {
		s.storeInCache(ctx, inv, fillGen)
	}
	return inv, nil
}

// CreateInvoice persists a new empty invoice for customerName with a zero total.
func (s *InvoiceService) CreateInvoice(ctx context.Context, customerName string) (*models.Invoice, error) {
	name, err := models.NewCustomerName(customerName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", invoicedomain.ErrInvalidCustomerName, err)
	}

	inv := models.NewInvoice(name)
	if err := domainsvcs.ValidateInvoiceForCreation(inv); err != nil {
		return nil, fmt.Errorf("%w: %w", invoicedomain.ErrInvalidCustomerName, err)
	}

	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	s.metrics.created.Add(ctx, 1)
	s.log.InfoContext(ctx, "invoice created", "invoice_id", inv.ID)
	return inv, nil
}

// AddItem attaches a new item to invoiceID and returns the invoice with its
// recomputed total. The invoice's existence is checked before the item is
// validated; a non-positive quantity becomes models.DefaultQuantity.
func (s *InvoiceService) AddItem(ctx context.Context, invoiceID int64, name string, price decimal.Decimal, quantity int) (*models.Invoice, error) {
	exists, err := s.repo.Exists(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("check invoice: %w", err)
	}
	if !exists {
		return nil, invoicedomain.ErrInvoiceNotFound
	}

	itemName, err := models.NewItemName(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", invoicedomain.ErrInvalidItem, err)
	}
	item, err := models.NewInvoiceItem(invoiceID, itemName, price, quantity)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", invoicedomain.ErrInvalidItem, err)
	}
	if err := domainsvcs.ValidateItemForAddition(invoiceID, item); err != nil {
		return nil, fmt.Errorf("%w: %w", invoicedomain.ErrInvalidItem, err)
	}

	inv, err := s.repo.AddItem(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}
	s.metrics.itemsAdded.Add(ctx, 1)
	s.evictFromCache(ctx, invoiceID)
	s.log.InfoContext(ctx, "invoice item added",
		"invoice_id", invoiceID, "item_id", item.ID, "total_amount", inv.TotalAmount.String())
	return inv, nil
}

// DeleteInvoice removes the invoice and all of its items.
// Returns ErrInvoiceNotFound if no matching invoice exists.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id int64) error {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check invoice: %w", err)
	}
	if !exists {
		return invoicedomain.ErrInvoiceNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	s.metrics.deleted.Add(ctx, 1)
	s.evictFromCache(ctx, id)
	s.log.InfoContext(ctx, "invoice deleted", "invoice_id", id)
	return nil
}

// RecomputeTotal re-derives the stored total of id from its items and reports
// whether the stored value had drifted.
func (s *InvoiceService) RecomputeTotal(ctx context.Context, id int64) (*models.Invoice, bool, error) {
	inv, drifted, err := s.repo.RecomputeTotal(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("recompute total: %w", err)
	}
	if drifted {
		s.metrics.drift.Add(ctx, 1)
		s.evictFromCache(ctx, id)
		s.log.WarnContext(ctx, "invoice total drift repaired",
			"invoice_id", id, "total_amount", inv.TotalAmount.String())
	}
	return inv, drifted, nil
}

// SeedDemo creates the demo invoice when the store holds no invoices and
// reports whether it did.
func (s *InvoiceService) SeedDemo(ctx context.Context) (bool, error) {
	ids, err := s.repo.ListIDs(ctx, 0, 1)
	if err != nil {
		return false, fmt.Errorf("seed demo: %w", err)
	}
	if len(ids) > 0 {
		return false, nil
	}

	inv, err := s.CreateInvoice(ctx, DemoCustomer)
	if err != nil {
		return false, fmt.Errorf("seed demo: %w", err)
	}
	for _, it := range demoItems {
		if _, err := s.AddItem(ctx, inv.ID, it.name, decimal.RequireFromString(it.price), it.quantity); err != nil {
			return false, fmt.Errorf("seed demo item %q: %w", it.name, err)
		}
	}
	s.log.InfoContext(ctx, "demo invoice seeded", "invoice_id", inv.ID)
	return true, nil
}

// RenderPDF writes a PDF rendition of invoice id to w.
func (s *InvoiceService) RenderPDF(ctx context.Context, id int64, w io.Writer) error {
	inv, err := s.GetInvoice(ctx, id)
	if err != nil {
		return err
	}
	doc, err := s.renderer.Render(inv)
	if err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if _, err := w.Write(doc); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// WarmCache loads invoice id from the store into the cache. An invoice that no
// longer exists is evicted instead. A fill overtaken by a newer eviction is
// dropped; that mutation's own event warms the entry again. No-op without a cache.
func (s *InvoiceService) WarmCache(ctx context.Context, id int64) error {
	if s.cache == nil {
		return nil
	}
	gen, err := s.cache.Generation(ctx, id)
	if err != nil {
		return fmt.Errorf("warm cache: %w", err)
	}
	inv, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, invoicedomain.ErrInvoiceNotFound) {
		return s.EvictCache(ctx, id)
	}
	if err != nil {
		return fmt.Errorf("warm cache: %w", err)
	}
	err = s.cache.SetIfUnchanged(ctx, toCachedInvoice(inv), gen)
	if err != nil && !errors.Is(err, cache.ErrStale) {
		return fmt.Errorf("warm cache: %w", err)
	}
	return nil
}

// EvictCache drops invoice id from the cache. No-op without a cache.
func (s *InvoiceService) EvictCache(ctx context.Context, id int64) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		return fmt.Errorf("evict cache: %w", err)
	}
	return nil
}

// storeInCache is best-effort: a failed or stale write only costs a later miss.
func (s *InvoiceService) storeInCache(ctx context.Context, inv *models.Invoice, gen int64) {
	err := s.cache.SetIfUnchanged(ctx, toCachedInvoice(inv), gen)
	switch {
	case errors.Is(err, cache.ErrStale):
		s.log.DebugContext(ctx, "invoice cache fill superseded", "invoice_id", inv.ID)
	case err != nil:
		s.log.WarnContext(ctx, "invoice cache write failed", "invoice_id", inv.ID, "error", err)
	}
}

func (s *InvoiceService) evictFromCache(ctx context.Context, id int64) {
	if err := s.EvictCache(ctx, id); err != nil {
		s.log.WarnContext(ctx, "invoice cache evict failed", "invoice_id", id, "error", err)
	}
}
