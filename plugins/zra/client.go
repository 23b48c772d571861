package zra

import (
	"context"
	"fmt"
	"net/http"

	"github.com/chimbuka/mabuku/domain"
	mabukuhttp "github.com/chimbuka/mabuku/pkg/http"
)

// Config configures the ZRA smart invoice client.
type Config struct {
	HTTPClientConfig *mabukuhttp.HTTPClientConfig `mapstructure:",squash"`
	TPIN             string                       `mapstructure:"tpin"`
}

// Client talks to the ZRA smart invoice API.
type Client struct {
	httpClient *mabukuhttp.HTTPClient
	tpin       string
}

func NewClient(config *Config) (*Client, error) {
	httpClient, err := mabukuhttp.NewHTTPClient(config.HTTPClientConfig)
	if err != nil {
		return nil, fmt.Errorf("initializing ZRA client: %w", err)
	}
	return &Client{httpClient: httpClient, tpin: config.TPIN}, nil
}

type submitInvoiceRequest struct {
	TPIN         string                `json:"tpin"`
	Number       string                `json:"invoice_number"`
	CustomerName string                `json:"customer_name"`
	CustomerTPIN string                `json:"customer_tpin,omitempty"`
	Currency     string                `json:"currency"`
	Lines        []*domain.InvoiceLine `json:"lines"`
	Subtotal     int64                 `json:"subtotal"`
	VATTotal     int64                 `json:"vat_total"`
	Total        int64                 `json:"total"`
}

type submitInvoiceResponse struct {
	Reference string `json:"reference"`
}

// SubmitInvoice registers an issued invoice and returns the fiscal
// reference assigned by ZRA.
func (c *Client) SubmitInvoice(ctx context.Context, invoice *domain.Invoice) (string, error) {
	req := &submitInvoiceRequest{
		TPIN:         c.tpin,
		Number:       invoice.Number,
		CustomerName: invoice.CustomerName,
		CustomerTPIN: invoice.CustomerTPIN,
		Currency:     invoice.Currency,
		Lines:        invoice.Lines,
		Subtotal:     invoice.Subtotal,
		VATTotal:     invoice.VATTotal,
		Total:        invoice.Total,
	}

	var res submitInvoiceResponse
	if err := c.httpClient.Do(ctx, http.MethodPost, "/invoices", req, &res); err != nil {
		return "", err
	}
	if res.Reference == "" {
		return "", fmt.Errorf("ZRA returned an empty reference for invoice %s", invoice.Number)
	}

	return res.Reference, nil
}

type classifyItemResponse struct {
	VATClass string `json:"vat_class"`
}

// ClassifyItem looks up the VAT class for an item description.
func (c *Client) ClassifyItem(ctx context.Context, description string) (string, error) {
	var res classifyItemResponse
	if err := c.httpClient.Do(ctx, http.MethodPost, "/classify", map[string]string{
		"description": description,
	}, &res); err != nil {
		return "", err
	}

	switch res.VATClass {
	case domain.VATClassStandard, domain.VATClassZero, domain.VATClassExempt:
		return res.VATClass, nil
	}
	return "", fmt.Errorf("unknown VAT class %q", res.VATClass)
}
