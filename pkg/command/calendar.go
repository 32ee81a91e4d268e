package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"unimind-be/pkg/assistant"

	"golang.org/x/oauth2"
)

// CalendarWriter issues exactly one external event-creation request with a
// granted credential.
type CalendarWriter interface {
	CreateEvent(ctx context.Context, token *oauth2.Token, details *assistant.EventDetails) (string, error)
}

type calendarDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type calendarEventBody struct {
	Summary     string           `json:"summary"`
	Description string           `json:"description,omitempty"`
	Start       calendarDateTime `json:"start"`
	End         calendarDateTime `json:"end"`
}

// GoogleCalendarClient writes events to the provider's event-creation
// resource with a bearer credential.
type GoogleCalendarClient struct {
	eventsURL  string
	timeZone   string
	oauthConf  *oauth2.Config
	httpClient *http.Client
}

func NewGoogleCalendarClient(eventsURL, timeZone string, conf *oauth2.Config) *GoogleCalendarClient {
	return &GoogleCalendarClient{
		eventsURL: eventsURL,
		timeZone:  timeZone,
		oauthConf: conf,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Exchange trades the one-shot authorization code for a token.
func (c *GoogleCalendarClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return c.oauthConf.Exchange(ctx, code)
}

// ConsentURL builds the provider consent page URL. State carries the session
// id so the callback can find the pending command.
func (c *GoogleCalendarClient) ConsentURL(state string) string {
	return c.oauthConf.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (c *GoogleCalendarClient) CreateEvent(ctx context.Context, token *oauth2.Token, details *assistant.EventDetails) (string, error) {
	body := calendarEventBody{
		Summary:     details.Title,
		Description: details.Description,
		Start:       calendarDateTime{DateTime: details.StartTime, TimeZone: c.timeZone},
		End:         calendarDateTime{DateTime: details.EndTime, TimeZone: c.timeZone},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.eventsURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	token.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("calendar write returned status %d", resp.StatusCode)
	}

	return details.Title, nil
}
