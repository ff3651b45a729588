package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/rogerio-castellano/stock-ledger/internal/alerts"
	appErrors "github.com/rogerio-castellano/stock-ledger/internal/errors"
	"github.com/rogerio-castellano/stock-ledger/internal/logger"
	"github.com/rogerio-castellano/stock-ledger/internal/models"
	"github.com/rogerio-castellano/stock-ledger/internal/remote"
	"github.com/rogerio-castellano/stock-ledger/internal/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRemote struct {
	mock.Mock
}

func (m *MockRemote) Login(ctx context.Context, email, password string) (models.Session, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(models.Session), args.Error(1)
}

func (m *MockRemote) Register(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *MockRemote) CreateProduct(ctx context.Context, in remote.CreateProductRequest) (models.RemoteProduct, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(models.RemoteProduct), args.Error(1)
}

func (m *MockRemote) ListProducts(ctx context.Context) ([]models.RemoteProduct, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RemoteProduct), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) LowStock(ctx context.Context, p models.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockNotifier) Recent(ctx context.Context, n int) ([]alerts.Alert, error) {
	args := m.Called(ctx, n)
	return args.Get(0).([]alerts.Alert), args.Error(1)
}

func riceDetails() models.ProductDetails {
	return models.ProductDetails{Name: "Rice", Category: "Food", Brand: "Acme", Warehouse: "W1", Barcode: "779"}
}

func TestService_CreateProduct_LocalOnly(t *testing.T) {
	t.Run("Success - low initial stock raises an alert", func(t *testing.T) {
		// Arrange
		ledger := repo.NewInMemoryLedger()
		notifier := new(MockNotifier)
		svc := NewService(ledger, notifier, logger.Nop())
		notifier.On("LowStock", mock.Anything, mock.MatchedBy(func(p models.Product) bool { return p.Name == "Rice" })).Return(nil).Once()

		// Act
		p, err := svc.CreateProduct(context.Background(), riceDetails(), 3)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 3, p.Stock)
		assert.Len(t, ledger.ListProducts(), 1)
		notifier.AssertExpectations(t)
	})

	t.Run("Fail - validation happens before anything else", func(t *testing.T) {
		ledger := repo.NewInMemoryLedger()
		svc := NewService(ledger, nil, logger.Nop())

		_, err := svc.CreateProduct(context.Background(), models.ProductDetails{Name: " "}, 1)

		assert.True(t, appErrors.IsValidation(err))
		assert.Empty(t, ledger.ListProducts())
	})
}

func TestService_CreateProduct_Remote(t *testing.T) {
	t.Run("Success - adopts remote identifier", func(t *testing.T) {
		// Arrange
		ledger := repo.NewInMemoryLedger()
		rc := new(MockRemote)
		svc := NewService(ledger, nil, logger.Nop(), WithRemote(rc))
		rc.On("CreateProduct", mock.Anything, remote.CreateProductRequest{
			Name: "Rice", Category: "Food", Brand: "Acme", Warehouse: "W1", Barcode: "779", Stock: 12,
		}).Return(models.RemoteProduct{ID: "101", Name: "Rice", Category: "Food", Brand: "Acme", Warehouse: "W1", Barcode: "779", Stock: 12}, nil)

		// Act
		p, err := svc.CreateProduct(context.Background(), riceDetails(), 12)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "101", p.ID)
		stored, err := ledger.GetProduct("101")
		require.NoError(t, err)
		assert.Equal(t, 12, stored.Stock)
		rc.AssertExpectations(t)
	})

	t.Run("Fail - remote error leaves ledger unchanged", func(t *testing.T) {
		ledger := repo.NewInMemoryLedger()
		rc := new(MockRemote)
		svc := NewService(ledger, nil, logger.Nop(), WithRemote(rc))
		rc.On("CreateProduct", mock.Anything, mock.Anything).
			Return(models.RemoteProduct{}, appErrors.RemoteError("The barcode has already been taken."))

		_, err := svc.CreateProduct(context.Background(), riceDetails(), 12)

		assert.True(t, appErrors.IsRemote(err))
		assert.Contains(t, err.Error(), "already been taken")
		assert.Empty(t, ledger.ListProducts())
	})

	t.Run("Fail - non app error is wrapped as remote", func(t *testing.T) {
		ledger := repo.NewInMemoryLedger()
		rc := new(MockRemote)
		svc := NewService(ledger, nil, logger.Nop(), WithRemote(rc))
		rc.On("CreateProduct", mock.Anything, mock.Anything).Return(models.RemoteProduct{}, errors.New("eof"))

		_, err := svc.CreateProduct(context.Background(), riceDetails(), 1)

		assert.True(t, appErrors.IsRemote(err))
		assert.Empty(t, ledger.ListProducts())
	})

	t.Run("Fail - local barcode conflict skips the remote call", func(t *testing.T) {
		ledger := repo.NewInMemoryLedger()
		_, err := ledger.AddProduct(riceDetails(), 1)
		require.NoError(t, err)
		rc := new(MockRemote)
		svc := NewService(ledger, nil, logger.Nop(), WithRemote(rc))

		_, err = svc.CreateProduct(context.Background(), riceDetails(), 1)

		assert.True(t, appErrors.IsValidation(err))
		rc.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
	})
}

func TestService_Refresh(t *testing.T) {
	t.Run("Success - merges listing", func(t *testing.T) {
		ledger := repo.NewInMemoryLedger()
		rc := new(MockRemote)
		svc := NewService(ledger, nil, logger.Nop(), WithRemote(rc))
		rc.On("ListProducts", mock.Anything).Return([]models.RemoteProduct{{ID: "1", Name: "Rice", Stock: 4}}, nil)

		res, err := svc.Refresh(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, res.Added)
		assert.Len(t, ledger.ListProducts(), 1)
	})

	t.Run("Fail - listing error", func(t *testing.T) {
		ledger := repo.NewInMemoryLedger()
		rc := new(MockRemote)
		svc := NewService(ledger, nil, logger.Nop(), WithRemote(rc))
		rc.On("ListProducts", mock.Anything).Return(nil, appErrors.RemoteError("timeout"))

		_, err := svc.Refresh(context.Background())

		assert.True(t, appErrors.IsRemote(err))
		assert.Empty(t, ledger.ListProducts())
	})

	t.Run("Fail - remote not configured", func(t *testing.T) {
		svc := NewService(repo.NewInMemoryLedger(), nil, logger.Nop())

		_, err := svc.Refresh(context.Background())

		assert.True(t, appErrors.IsRemote(err))
	})
}

func TestService_StockChanges(t *testing.T) {
	ledger := repo.NewInMemoryLedger()
	notifier := new(MockNotifier)
	svc := NewService(ledger, notifier, logger.Nop())
	p, err := ledger.AddProduct(riceDetails(), 10)
	require.NoError(t, err)

	t.Run("Success - no alert at the threshold", func(t *testing.T) {
		got, err := svc.UpdateStock(context.Background(), p.ID, models.LowStockThreshold)

		require.NoError(t, err)
		assert.Equal(t, 5, got.Stock)
		notifier.AssertNotCalled(t, "LowStock", mock.Anything, mock.Anything)
	})

	t.Run("Success - alert below the threshold even if delivery fails", func(t *testing.T) {
		notifier.On("LowStock", mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()

		got, err := svc.AdjustStock(context.Background(), p.ID, -1)

		require.NoError(t, err)
		assert.Equal(t, 4, got.Stock)
		notifier.AssertExpectations(t)
	})

	t.Run("Success - retire raises no alert", func(t *testing.T) {
		got, err := svc.Retire(context.Background(), p.ID)

		require.NoError(t, err)
		assert.Equal(t, 0, got.Stock)
		notifier.AssertNumberOfCalls(t, "LowStock", 1)
	})

	t.Run("Fail - unknown product", func(t *testing.T) {
		_, err := svc.UpdateStock(context.Background(), "missing", 1)

		assert.True(t, appErrors.IsNotFound(err))
	})
}

func TestService_Login(t *testing.T) {
	rc := new(MockRemote)
	svc := NewService(repo.NewInMemoryLedger(), nil, logger.Nop(), WithRemote(rc))
	session := models.Session{Token: "t", User: models.User{ID: "1", Role: models.RoleAdmin}}
	rc.On("Login", mock.Anything, "ada@example.com", "pw").Return(session, nil)
	rc.On("Login", mock.Anything, "ada@example.com", "bad").Return(models.Session{}, appErrors.RemoteError("Invalid credentials"))

	got, err := svc.Login(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, session, got)

	_, err = svc.Login(context.Background(), "ada@example.com", "bad")
	assert.True(t, appErrors.IsRemote(err))
}

func TestService_Register(t *testing.T) {
	t.Run("Success - passes through to the remote", func(t *testing.T) {
		rc := new(MockRemote)
		svc := NewService(repo.NewInMemoryLedger(), nil, logger.Nop(), WithRemote(rc))
		rc.On("Register", mock.Anything, "new@example.com", "secret123").Return("User registered", nil)

		msg, err := svc.Register(context.Background(), "new@example.com", "secret123")

		require.NoError(t, err)
		assert.Equal(t, "User registered", msg)
		rc.AssertExpectations(t)
	})

	t.Run("Fail - remote rejection is returned", func(t *testing.T) {
		rc := new(MockRemote)
		svc := NewService(repo.NewInMemoryLedger(), nil, logger.Nop(), WithRemote(rc))
		rc.On("Register", mock.Anything, "taken@example.com", "secret123").
			Return("", appErrors.RemoteError("The email has already been taken."))

		_, err := svc.Register(context.Background(), "taken@example.com", "secret123")

		assert.True(t, appErrors.IsRemote(err))
	})

	t.Run("Fail - no remote configured", func(t *testing.T) {
		svc := NewService(repo.NewInMemoryLedger(), nil, logger.Nop())

		_, err := svc.Register(context.Background(), "new@example.com", "secret123")

		assert.True(t, appErrors.IsRemote(err))
	})
}
