package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/config"
	pkgerrors "github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/errors"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/logger"
)

var errBaseURLRequired = errors.New("backend base URL is required")

// Client talks to the remote POS backend. Every method returns typed results;
// callers never see raw response maps.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *logger.Logger
}

// NewClient validates the configuration and builds the backend wrapper.
func NewClient(cfg config.BackendConfig, logg *logger.Logger) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    baseURL,
		token:      strings.TrimSpace(cfg.Token),
		logger:     logg,
	}, nil
}

// Health probes the backend. Used by the connectivity monitor.
func (c *Client) Health(ctx context.Context) error {
	var out envelope[any]
	return c.call(ctx, http.MethodGet, "/health", nil, &out)
}

// GetCatalog fetches the full sellable catalog for a branch.
func (c *Client) GetCatalog(ctx context.Context, branchID int) ([]CatalogUnitWire, error) {
	var out envelope[[]CatalogUnitWire]
	path := fmt.Sprintf("/productos/catalogo/%d", branchID)
	if err := c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// SubmitSale records a sale and returns the backend-assigned folio.
func (c *Client) SubmitSale(ctx context.Context, req SaleRequest) (string, error) {
	var out envelope[string]
	if err := c.call(ctx, http.MethodPost, "/ventas/registrar", req, &out); err != nil {
		return "", err
	}
	return out.Data, nil
}

// ExistShift asks whether the cashier already has an open shift at the branch.
func (c *Client) ExistShift(ctx context.Context, cashierID, branchID int) (*ExistShiftResult, error) {
	var out envelope[ExistShiftResult]
	path := fmt.Sprintf("/turnos/existe?usuario=%d&sucursal=%d", cashierID, branchID)
	if err := c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// OpenShift creates a new shift for the cashier/branch.
func (c *Client) OpenShift(ctx context.Context, req OpenShiftRequest) (*OpenShiftResult, error) {
	var out envelope[OpenShiftResult]
	if err := c.call(ctx, http.MethodPost, "/turnos/abrir", req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// CloseShift closes the shift; the backend computes the reconciliation.
func (c *Client) CloseShift(ctx context.Context, req CloseShiftRequest) (*CloseShiftResult, error) {
	var out envelope[CloseShiftResult]
	if err := c.call(ctx, http.MethodPost, "/turnos/cerrar", req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// RecordMovement registers a shift-scoped deposit, withdrawal, or expense.
func (c *Client) RecordMovement(ctx context.Context, req MovementRequest) error {
	var out envelope[any]
	return c.call(ctx, http.MethodPost, "/turnos/movimientos", req, &out)
}

func (c *Client) call(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "backend unreachable")
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusInternalServerError {
		return pkgerrors.New(pkgerrors.CodeNetwork, fmt.Sprintf("backend returned %d", resp.StatusCode))
	}

	decoded, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "read response")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return c.decodeFailure(resp.StatusCode, decoded)
	}

	if err := json.Unmarshal(decoded, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode response")
	}

	if fail := failureFromEnvelope(decoded); fail != nil {
		return fail
	}
	return nil
}

// decodeFailure maps a non-2xx body onto the error taxonomy.
func (c *Client) decodeFailure(status int, body []byte) error {
	var env envelope[json.RawMessage]
	message := fmt.Sprintf("backend returned %d", status)
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		message = env.Message
	}
	switch status {
	case http.StatusNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	case http.StatusConflict:
		return pkgerrors.New(pkgerrors.CodeConflict, message)
	case http.StatusUnprocessableEntity:
		return pkgerrors.New(pkgerrors.CodeStateConflict, message)
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, message)
	}
}

// failureFromEnvelope catches 200-with-success:false responses, which the
// backend uses for business rejections.
func failureFromEnvelope(body []byte) error {
	var env envelope[json.RawMessage]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil
	}
	if env.Success {
		return nil
	}
	message := env.Message
	if message == "" {
		message = "backend rejected the request"
	}
	return pkgerrors.New(pkgerrors.CodeValidation, message)
}
