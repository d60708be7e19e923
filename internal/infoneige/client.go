// Package infoneige talks to the city's InfoNeige web service and
// ingests its planification records into the local stores.
package infoneige

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// DefaultEndpoint is the city's production InfoNeige SOAP endpoint.
const DefaultEndpoint = "https://servicesenligne2.ville.montreal.qc.ca/api/infoneige/InfoneigeWebService"

const soapNS = "http://ws.webservice.infoneige.am.ville.montreal.qc.ca/"

// statusNoNewData is returned by the service when no planification
// changed since fromDate.
const statusNoNewData = 8

// Planification is one snow-removal planning record from the service.
// Date fields keep the service's zone-less ISO format.
type Planification struct {
	MunID             int    `xml:"munid"`
	CoteRueID         int64  `xml:"coteRueId"`
	EtatDeneig        int    `xml:"etatDeneig"`
	DateDebutPlanif   string `xml:"dateDebutPlanif"`
	DateFinPlanif     string `xml:"dateFinPlanif"`
	DateDebutReplanif string `xml:"dateDebutReplanif"`
	DateFinReplanif   string `xml:"dateFinReplanif"`
	DateMaj           string `xml:"dateMaj"`
}

// Client is a minimal SOAP client for the InfoNeige service.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates an InfoNeige client. An empty endpoint means the
// production service.
func NewClient(token, endpoint string, logger zerolog.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint:   endpoint,
		token:      token,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger.With().Str("component", "infoneige").Logger(),
	}
}

type requestEnvelope struct {
	XMLName xml.Name `xml:"soapenv:Envelope"`
	EnvNS   string   `xml:"xmlns:soapenv,attr"`
	WsNS    string   `xml:"xmlns:ws,attr"`
	Body    struct {
		Request struct {
			Params struct {
				FromDate    string `xml:"fromDate"`
				TokenString string `xml:"tokenString"`
			} `xml:"getPlanificationsForDate"`
		} `xml:"ws:GetPlanificationsForDate"`
	} `xml:"soapenv:Body"`
}

type responseEnvelope struct {
	Body struct {
		Response struct {
			Return struct {
				ResponseStatus int    `xml:"responseStatus"`
				ResponseDesc   string `xml:"responseDesc"`
				Planifications struct {
					Planification []Planification `xml:"planification"`
				} `xml:"planifications"`
			} `xml:"return"`
		} `xml:"GetPlanificationsForDateResponse"`
	} `xml:"Body"`
}

// GetPlanificationsForDate returns every planification changed since
// fromDate. A "no new data" response yields an empty slice, not an
// error.
func (c *Client) GetPlanificationsForDate(ctx context.Context, fromDate time.Time) ([]Planification, error) {
	var env requestEnvelope
	env.EnvNS = "http://schemas.xmlsoap.org/soap/envelope/"
	env.WsNS = soapNS
	env.Body.Request.Params.FromDate = fromDate.Format("2006-01-02T15:04:05")
	env.Body.Request.Params.TokenString = c.token

	payload, err := xml.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		bytes.NewReader(append([]byte(xml.Header), payload...)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", soapNS+"GetPlanificationsForDate")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("infoneige request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read infoneige response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("infoneige returned status %d", resp.StatusCode)
	}

	var out responseEnvelope
	if err := xml.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode infoneige response: %w", err)
	}

	ret := out.Body.Response.Return
	switch ret.ResponseStatus {
	case 0:
	case statusNoNewData:
		c.logger.Info().Time("from", fromDate).Msg("no new planifications")
		return nil, nil
	default:
		return nil, fmt.Errorf("infoneige returned status %d: %s", ret.ResponseStatus, ret.ResponseDesc)
	}

	c.logger.Info().Int("count", len(ret.Planifications.Planification)).Msg("fetched planifications")
	return ret.Planifications.Planification, nil
}
