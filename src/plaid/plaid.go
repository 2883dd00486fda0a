package plaid

import (
	"context"
	"log"
	"strconv"

	"github.com/plaid/plaid-go/v41/plaid"
)

// Client wraps the Plaid API client behind the handful of calls this
// server makes. It is built once in main and passed by handle.
type Client struct {
	api *plaid.APIClient
}

func NewClient(clientID, secret, env string) *Client {
	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", clientID)
	configuration.AddDefaultHeader("PLAID-SECRET", secret)

	switch env {
	case "sandbox":
		configuration.UseEnvironment(plaid.Sandbox)
	case "production":
		configuration.UseEnvironment(plaid.Production)
	default:
		log.Fatalf("Invalid Plaid environment: %s", env)
	}

	return &Client{api: plaid.NewAPIClient(configuration)}
}

// API exposes the underlying client for webhook signature verification.
func (c *Client) API() *plaid.APIClient {
	return c.api
}

func (c *Client) CreateLinkToken(ctx context.Context, userID int64) (string, error) {
	user := plaid.LinkTokenCreateRequestUser{
		ClientUserId: strconv.FormatInt(userID, 10),
	}
	request := plaid.NewLinkTokenCreateRequest(
		"Cash Snapshot",
		"en",
		[]plaid.CountryCode{plaid.COUNTRYCODE_US},
	)
	request.SetUser(user)
	request.SetProducts([]plaid.Products{plaid.PRODUCTS_TRANSACTIONS})

	resp, _, err := c.api.PlaidApi.LinkTokenCreate(ctx).LinkTokenCreateRequest(*request).Execute()
	if err != nil {
		return "", classify("link token create", err)
	}
	return resp.GetLinkToken(), nil
}

func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (accessToken, itemID string, err error) {
	request := plaid.NewItemPublicTokenExchangeRequest(publicToken)
	resp, _, err := c.api.PlaidApi.ItemPublicTokenExchange(ctx).ItemPublicTokenExchangeRequest(*request).Execute()
	if err != nil {
		return "", "", classify("public token exchange", err)
	}
	return resp.GetAccessToken(), resp.GetItemId(), nil
}

// GetInstitution looks up the institution behind an access token.
// Institution details are optional; failures return empty strings.
func (c *Client) GetInstitution(ctx context.Context, accessToken string) (id, name string) {
	itemReq := plaid.NewItemGetRequest(accessToken)
	itemResp, _, err := c.api.PlaidApi.ItemGet(ctx).ItemGetRequest(*itemReq).Execute()
	if err != nil {
		log.Printf("WARN: Failed to fetch item details: %v", err)
		return "", ""
	}

	if !itemResp.GetItem().InstitutionId.IsSet() {
		return "", ""
	}
	id = *itemResp.GetItem().InstitutionId.Get()

	instReq := plaid.NewInstitutionsGetByIdRequest(id, []plaid.CountryCode{
		plaid.COUNTRYCODE_US,
		plaid.COUNTRYCODE_GB,
	})
	instResp, _, err := c.api.PlaidApi.InstitutionsGetById(ctx).InstitutionsGetByIdRequest(*instReq).Execute()
	if err != nil {
		log.Printf("WARN: Failed to fetch institution %s: %v", id, err)
		return id, ""
	}

	institution := instResp.GetInstitution()
	return id, institution.GetName()
}
