package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	appErrors "github.com/rogerio-castellano/stock-ledger/internal/errors"
	"github.com/rogerio-castellano/stock-ledger/internal/models"
)

const maxResponseBytes = 4 << 20

// Client talks to the remote catalog service over JSON/HTTP.
type Client struct {
	baseURL    string
	token      string
	unitID     int
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type tokenKey struct{}

// ContextWithToken attaches a per-request bearer credential that takes
// precedence over the client's own token.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// WithToken returns a copy of the client that sends token as a bearer credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// WithUnitID returns a copy of the client that sends unitID on product
// creation when the request carries none.
func (c *Client) WithUnitID(unitID int) *Client {
	cp := *c
	cp.unitID = unitID
	return &cp
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return appErrors.InternalError("failed to encode request").WithError(err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return appErrors.InternalError("failed to build request").WithError(err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token := c.token
	if t := tokenFrom(ctx); t != "" {
		token = t
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return appErrors.RemoteError("catalog service unreachable").WithError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return appErrors.RemoteError("failed to read catalog service response").WithError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorResponse
		if json.Unmarshal(raw, &e) != nil || strings.TrimSpace(e.Message) == "" {
			e.Message = http.StatusText(resp.StatusCode)
		}
		return appErrors.RemoteError(e.Message).WithDetail(fmt.Sprintf("%s %s returned %d", method, path, resp.StatusCode))
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return appErrors.RemoteError("unexpected catalog service response").WithError(err)
	}
	return nil
}

// Login authenticates against the remote service.
func (c *Client) Login(ctx context.Context, email, password string) (models.Session, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/api/login", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return models.Session{}, err
	}
	if resp.Token == "" {
		return models.Session{}, appErrors.RemoteError("login response carried no token")
	}

	role := strings.ToLower(strings.TrimSpace(resp.User.Role.Name))
	if role != models.RoleAdmin && role != models.RoleClient {
		return models.Session{}, appErrors.UnauthorizedError("role is not allowed to use the ledger").WithDetail(resp.User.Role.Name)
	}
	return models.Session{
		Token: resp.Token,
		User: models.User{
			ID:    string(resp.User.ID),
			Name:  resp.User.Name,
			Email: resp.User.Email,
			Role:  role,
		},
	}, nil
}

// Register creates an account on the remote service and returns its
// confirmation message.
func (c *Client) Register(ctx context.Context, email, password string) (string, error) {
	var resp registerResponse
	if err := c.do(ctx, http.MethodPost, "/api/register", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// CreateProduct registers a product remotely. The returned product carries the
// identifier assigned by the service; echoed fields missing from the response
// fall back to the request values.
func (c *Client) CreateProduct(ctx context.Context, in CreateProductRequest) (models.RemoteProduct, error) {
	if in.UnitID == 0 {
		in.UnitID = c.unitID
	}
	var resp productPayload
	if err := c.do(ctx, http.MethodPost, "/api/products", in, &resp); err != nil {
		return models.RemoteProduct{}, err
	}
	if resp.ID == "" {
		return models.RemoteProduct{}, appErrors.RemoteError("created product has no identifier")
	}

	rp := resp.toModel()
	if rp.Name == "" {
		rp.Name = in.Name
	}
	if !rp.Has(models.RemoteCategory) {
		rp.Category = in.Category
	}
	if !rp.Has(models.RemoteBrand) {
		rp.Brand = in.Brand
	}
	if !rp.Has(models.RemoteWarehouse) {
		rp.Warehouse = in.Warehouse
	}
	if !rp.Has(models.RemoteBarcode) {
		rp.Barcode = in.Barcode
	}
	if !rp.Has(models.RemoteStock) {
		rp.Stock = in.Stock
	}
	rp.Omitted = 0
	return rp, nil
}

// ListProducts fetches the remote catalog. Both a bare array and a
// {"data": [...]} envelope are accepted.
func (c *Client) ListProducts(ctx context.Context) ([]models.RemoteProduct, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, &raw); err != nil {
		return nil, err
	}

	var items []productPayload
	if err := json.Unmarshal(raw, &items); err != nil {
		var envelope struct {
			Data []productPayload `json:"data"`
		}
		if envErr := json.Unmarshal(raw, &envelope); envErr != nil {
			return nil, appErrors.RemoteError("unexpected product listing").WithError(errors.Join(err, envErr))
		}
		items = envelope.Data
	}

	products := make([]models.RemoteProduct, 0, len(items))
	for _, item := range items {
		products = append(products, item.toModel())
	}
	return products, nil
}
