package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/oszuidwest/zwfm-ffpath/internal/config"
	"github.com/oszuidwest/zwfm-ffpath/internal/util"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	graphBaseURL     = "https://graph.microsoft.com/v1.0"
	graphScope       = "https://graph.microsoft.com/.default"
	tokenURLTemplate = "https://login.microsoftonline.com/%s/oauth2/v2.0/token" //nolint:gosec // URL template, not a credential

	// HTTP client timeout.
	graphHTTPTimeout = 30 * time.Second
)

// GraphClient sends emails via Microsoft Graph API.
type GraphClient struct {
	fromAddress string
	httpClient  *http.Client
}

// NewGraphClient creates a new email client from the config snapshot.
func NewGraphClient(snap *config.Snapshot) (*GraphClient, error) {
	if !snap.HasGraph() {
		return nil, fmt.Errorf("email notifications not fully configured")
	}

	conf := &clientcredentials.Config{
		ClientID:     snap.GraphClientID,
		ClientSecret: snap.GraphClientSecret,
		TokenURL:     fmt.Sprintf(tokenURLTemplate, snap.GraphTenantID),
		Scopes:       []string{graphScope},
	}

	// Configure base HTTP client with timeout to prevent indefinite hangs
	baseClient := &http.Client{Timeout: graphHTTPTimeout}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, baseClient)

	return &GraphClient{
		fromAddress: snap.GraphFromAddress,
		httpClient:  conf.Client(ctx),
	}, nil
}

type graphMailRequest struct {
	Message graphMessage `json:"message"`
}

type graphMessage struct {
	Subject      string           `json:"subject"`
	Body         graphBody        `json:"body"`
	ToRecipients []graphRecipient `json:"toRecipients"`
}

type graphBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type graphRecipient struct {
	EmailAddress graphEmailAddress `json:"emailAddress"`
}

type graphEmailAddress struct {
	Address string `json:"address"`
}

// SendMail sends an email to the specified recipients.
func (c *GraphClient) SendMail(recipients []string, subject, body string) error {
	msg := graphMailRequest{
		Message: graphMessage{
			Subject: subject,
			Body:    graphBody{ContentType: "Text", Content: body},
		},
	}
	for _, r := range recipients {
		msg.Message.ToRecipients = append(msg.Message.ToRecipients,
			graphRecipient{EmailAddress: graphEmailAddress{Address: r}})
	}

	jsonData, err := json.Marshal(msg)
	if err != nil {
		return util.WrapError("marshal mail request", err)
	}

	url := fmt.Sprintf("%s/users/%s/sendMail", graphBaseURL, c.fromAddress)
	resp, err := c.httpClient.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return util.WrapError("send Graph request", err)
	}
	defer util.SafeCloseFunc(resp.Body, "Graph response body")()

	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("graph sendMail returned status %d", resp.StatusCode)
	}

	return nil
}

// ParseRecipients splits a comma-separated recipient list, dropping empties.
func ParseRecipients(recipients string) []string {
	var out []string
	for _, r := range strings.Split(recipients, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

// sendErrorEmail sends a resolver failure alert via Microsoft Graph.
func sendErrorEmail(snap *config.Snapshot, message string) error {
	client, err := NewGraphClient(snap)
	if err != nil {
		return util.WrapError("create Graph client", err)
	}

	recipients := ParseRecipients(snap.GraphRecipients)
	if len(recipients) == 0 {
		return fmt.Errorf("no valid recipients")
	}

	subject := "[ALERT] FFmpeg path resolver failure"
	body := fmt.Sprintf(
		"The FFmpeg path resolver reported a failure.\n\n"+
			"Message: %s\n"+
			"Time:    %s\n",
		message, util.HumanTime(),
	)

	if err := client.SendMail(recipients, subject, body); err != nil {
		return util.WrapError("send email via Graph", err)
	}

	return nil
}
