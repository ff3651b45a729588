package catalog

import (
	"context"
	"strings"

	"github.com/rogerio-castellano/stock-ledger/internal/alerts"
	appErrors "github.com/rogerio-castellano/stock-ledger/internal/errors"
	"github.com/rogerio-castellano/stock-ledger/internal/logger"
	"github.com/rogerio-castellano/stock-ledger/internal/models"
	"github.com/rogerio-castellano/stock-ledger/internal/remote"
	"github.com/rogerio-castellano/stock-ledger/internal/repo"
)

// RemoteCatalog is the remote product service.
type RemoteCatalog interface {
	Login(ctx context.Context, email, password string) (models.Session, error)
	Register(ctx context.Context, email, password string) (string, error)
	CreateProduct(ctx context.Context, in remote.CreateProductRequest) (models.RemoteProduct, error)
	ListProducts(ctx context.Context) ([]models.RemoteProduct, error)
}

// Observer receives mutation outcomes and raised alerts.
type Observer interface {
	ObserveMutation(operation string, err error)
	ObserveAlert()
}

type nopObserver struct{}

func (nopObserver) ObserveMutation(string, error) {}
func (nopObserver) ObserveAlert()                 {}

// Service coordinates the ledger with the remote catalog and low-stock alerts.
type Service struct {
	ledger   repo.Ledger
	remote   RemoteCatalog
	notifier alerts.Notifier
	observer Observer
	log      *logger.Logger
}

type Option func(*Service)

// WithRemote enables remote-backed product creation, login and refresh.
func WithRemote(rc RemoteCatalog) Option {
	return func(s *Service) { s.remote = rc }
}

func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

func NewService(ledger repo.Ledger, notifier alerts.Notifier, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		ledger:   ledger,
		notifier: notifier,
		observer: nopObserver{},
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) RemoteEnabled() bool {
	return s.remote != nil
}

var errRemoteDisabled = appErrors.RemoteError("remote catalog is not configured")

// Login authenticates a user against the remote catalog.
func (s *Service) Login(ctx context.Context, email, password string) (models.Session, error) {
	if s.remote == nil {
		return models.Session{}, errRemoteDisabled
	}
	session, err := s.remote.Login(ctx, email, password)
	if err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("remote login failed")
		return models.Session{}, err
	}
	return session, nil
}

// Register creates an account on the remote catalog. The ledger keeps no
// credentials of its own.
func (s *Service) Register(ctx context.Context, email, password string) (string, error) {
	if s.remote == nil {
		return "", errRemoteDisabled
	}
	msg, err := s.remote.Register(ctx, email, password)
	if err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("remote registration failed")
		return "", err
	}
	s.log.Info().Str("email", email).Msg("account registered")
	return msg, nil
}

// CreateProduct adds a product. With a remote catalog configured the product is
// created remotely first and adopted locally under the remote identifier; on
// any remote failure the ledger is left untouched.
func (s *Service) CreateProduct(ctx context.Context, details models.ProductDetails, stock int) (p models.Product, err error) {
	defer func() { s.observer.ObserveMutation("create_product", err) }()

	if strings.TrimSpace(details.Name) == "" {
		return models.Product{}, appErrors.FieldValidationError("name", "name is required")
	}
	if stock < 0 {
		return models.Product{}, appErrors.FieldValidationError("stock", "initial stock cannot be negative")
	}

	if s.remote == nil {
		p, err = s.ledger.AddProduct(details, stock)
	} else {
		p, err = s.createRemote(ctx, details, stock)
	}
	if err != nil {
		return models.Product{}, err
	}

	s.log.Info().Str("product_id", p.ID).Str("product", p.Name).Int("stock", p.Stock).Msg("product created")
	s.checkLowStock(ctx, p)
	return p, nil
}

func (s *Service) createRemote(ctx context.Context, details models.ProductDetails, stock int) (models.Product, error) {
	if code := strings.TrimSpace(details.Barcode); code != "" {
		if _, err := s.ledger.GetByBarcode(code); err == nil {
			return models.Product{}, appErrors.FieldValidationError("barcode", "barcode already assigned").WithDetail(code)
		}
	}

	rp, err := s.remote.CreateProduct(ctx, remote.CreateProductRequest{
		Name:      strings.TrimSpace(details.Name),
		Category:  strings.TrimSpace(details.Category),
		Brand:     strings.TrimSpace(details.Brand),
		Warehouse: strings.TrimSpace(details.Warehouse),
		Barcode:   strings.TrimSpace(details.Barcode),
		Stock:     stock,
	})
	if err != nil {
		if _, ok := appErrors.IsAppError(err); !ok {
			err = appErrors.RemoteError("failed to create product remotely").WithError(err)
		}
		s.log.Error().Err(err).Str("product", details.Name).Msg("remote product creation failed")
		return models.Product{}, err
	}

	p, err := s.ledger.AdoptRemote(rp)
	if err != nil {
		s.log.Error().Err(err).Str("remote_id", rp.ID).Msg("could not adopt remote product")
		return models.Product{}, err
	}
	return p, nil
}

// Refresh merges the remote catalog listing into the ledger.
func (s *Service) Refresh(ctx context.Context) (res repo.MergeResult, err error) {
	defer func() { s.observer.ObserveMutation("refresh", err) }()

	if s.remote == nil {
		return repo.MergeResult{}, errRemoteDisabled
	}
	items, err := s.remote.ListProducts(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("remote listing failed")
		return repo.MergeResult{}, err
	}
	res, err = s.ledger.Merge(items)
	if err != nil {
		s.log.Error().Err(err).Int("items", len(items)).Msg("remote listing rejected")
		return repo.MergeResult{}, err
	}
	s.log.Info().Int("added", res.Added).Int("updated", res.Updated).Int("moved", res.Moved).Msg("catalog refreshed")
	return res, nil
}

// UpdateStock sets a product's stock to newStock.
func (s *Service) UpdateStock(ctx context.Context, id string, newStock int) (p models.Product, err error) {
	defer func() { s.observer.ObserveMutation("update_stock", err) }()

	p, err = s.ledger.UpdateStock(id, newStock)
	if err != nil {
		return models.Product{}, err
	}
	s.checkLowStock(ctx, p)
	return p, nil
}

// AdjustStock changes a product's stock by delta.
func (s *Service) AdjustStock(ctx context.Context, id string, delta int) (p models.Product, err error) {
	defer func() { s.observer.ObserveMutation("adjust_stock", err) }()

	p, err = s.ledger.AdjustStock(id, delta)
	if err != nil {
		return models.Product{}, err
	}
	s.checkLowStock(ctx, p)
	return p, nil
}

// Retire resets a product's stock to zero. It raises no alert.
func (s *Service) Retire(ctx context.Context, id string) (p models.Product, err error) {
	defer func() { s.observer.ObserveMutation("retire", err) }()

	p, err = s.ledger.ResetStock(id)
	if err != nil {
		return models.Product{}, err
	}
	s.log.Info().Str("product_id", p.ID).Str("product", p.Name).Msg("product retired")
	return p, nil
}

func (s *Service) UpdateDetails(ctx context.Context, id string, details models.ProductDetails) (p models.Product, err error) {
	defer func() { s.observer.ObserveMutation("update_details", err) }()

	return s.ledger.UpdateDetails(id, details)
}

// checkLowStock notifies when p is below the threshold. The mutation has
// already been applied, so notifier failures are only logged.
func (s *Service) checkLowStock(ctx context.Context, p models.Product) {
	if !p.IsLowStock() || s.notifier == nil {
		return
	}
	s.observer.ObserveAlert()
	if err := s.notifier.LowStock(ctx, p); err != nil {
		s.log.Error().Err(err).Str("product_id", p.ID).Msg("failed to deliver low-stock alert")
	}
}
