// Package airtable implements repository.ContactRepository on top of the
// Airtable REST API.
package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/paylink-sync/internal/config"
	"github.com/wekeepgrowing/paylink-sync/internal/domain/entity"
	"github.com/wekeepgrowing/paylink-sync/internal/domain/repository"
	apperrors "github.com/wekeepgrowing/paylink-sync/pkg/errors"
)

const recordsPath = "/v0/{base}/{table}"

type listResponse struct {
	Records []record `json:"records"`
	Offset  string   `json:"offset"`
}

type updateRequest struct {
	Fields map[string]interface{} `json:"fields"`
}

// Client talks to one Airtable table.
type Client struct {
	http    *resty.Client
	baseID  string
	tableID string
	logger  *zap.Logger
}

var _ repository.ContactRepository = (*Client)(nil)

// NewClient creates a client for the configured contacts table.
func NewClient(cfg config.AirtableConfig, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout).
		SetLogger(logger.Sugar())

	return &Client{
		http:    httpClient,
		baseID:  cfg.BaseID,
		tableID: cfg.TableID,
		logger:  logger.With(zap.String("component", "airtable")),
	}
}

// FetchEligibleContacts reads every page of the table and keeps the
// contacts whose PROCESS is "new" and whose paylink is empty.
func (c *Client) FetchEligibleContacts(ctx context.Context) ([]entity.Contact, error) {
	records, err := c.listRecords(ctx)
	if err != nil {
		apperrors.LogError(c.logger, err, "Failed to fetch contacts")
		return nil, err
	}

	c.logger.Info("Fetched records", zap.Int("count", len(records)))

	contacts := make([]entity.Contact, 0, len(records))
	for _, r := range records {
		contact, err := r.toContact()
		if err != nil {
			c.logger.Warn("Skipping unreadable record",
				zap.String("record_id", r.ID),
				zap.Error(err))
			continue
		}
		if contact.IsEligible() {
			contacts = append(contacts, contact)
		}
	}

	c.logger.Info("Found eligible contacts", zap.Int("count", len(contacts)))
	return contacts, nil
}

func (c *Client) listRecords(ctx context.Context) ([]record, error) {
	var (
		records []record
		offset  string
	)

	for {
		var page listResponse
		req := c.http.R().
			SetContext(ctx).
			SetPathParams(c.pathParams()).
			SetResult(&page)
		if offset != "" {
			req.SetQueryParam("offset", offset)
		}

		resp, err := req.Get(recordsPath)
		if err != nil {
			return nil, apperrors.NewAppError(apperrors.ErrUpstream, "airtable list records", err)
		}
		if resp.IsError() {
			return nil, statusError("airtable list records", resp)
		}

		records = append(records, page.Records...)
		if page.Offset == "" {
			return records, nil
		}
		offset = page.Offset
	}
}

// UpdateContact PATCHes the write-back fields onto record id. Fields not
// named in the update are left untouched by Airtable.
func (c *Client) UpdateContact(ctx context.Context, id string, update entity.ContactUpdate) error {
	fields := map[string]interface{}{
		FieldPaymentLink:    update.PaymentLinkURL,
		FieldProcess:        update.Process,
		FieldPortalLogin:    update.PortalLoginURL,
		FieldStripeCustomer: update.CustomerID,
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(c.pathParams()).
		SetPathParam("id", id).
		SetBody(updateRequest{Fields: fields}).
		Patch(recordsPath + "/{id}")
	if err != nil {
		err = apperrors.NewAppError(apperrors.ErrUpstream, "airtable update record", err)
		apperrors.LogError(c.logger, err, "Failed to update record", zap.String("record_id", id))
		return err
	}
	if resp.IsError() {
		err = statusError("airtable update record", resp)
		apperrors.LogError(c.logger, err, "Failed to update record",
			zap.String("record_id", id),
			zap.ByteString("response", resp.Body()))
		return err
	}

	c.logger.Info("Updated record",
		zap.String("record_id", id),
		zap.Any("fields", fields))
	return nil
}

func (c *Client) pathParams() map[string]string {
	return map[string]string{"base": c.baseID, "table": c.tableID}
}

func statusError(op string, resp *resty.Response) error {
	msg := fmt.Sprintf("%s: %d %s", op, resp.StatusCode(), http.StatusText(resp.StatusCode()))
	var body struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(resp.Body(), &body) == nil && len(body.Error) > 0 {
		msg += ": " + string(body.Error)
	}
	return apperrors.NewAppError(apperrors.CodeFromHTTPStatus(resp.StatusCode()), msg, nil)
}
