package ipc

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"resty.dev/v3"
)

// Client talks to a running apiary over its control socket.
type Client struct {
	r *resty.Client
}

// NewClient creates a client for the socket at path, SocketPath() when empty.
func NewClient(path string) *Client {
	if path == "" {
		path = SocketPath()
	}
	return newClient("http://apiary", &http.Client{
		Transport: &http.Transport{
			DialContext: func(_ context.Context, _, _ string) (net.Conn, error) {
				return net.Dial("unix", path)
			},
		},
	})
}

func newClient(baseURL string, hc *http.Client) *Client {
	client := resty.NewWithClient(hc)
	client.SetBaseURL(baseURL)
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("Accept", "application/json")
	client.SetHeader("User-Agent", "apiary")
	return &Client{r: client}
}

// SendCommand posts cmd to /command.
func (c *Client) SendCommand(cmd Command) (*Response, error) {
	result := Response{}

	response, err := c.r.R().SetBody(cmd).SetResult(&result).Post("/command")
	if err != nil {
		return nil, err
	}

	if response.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("error sending command: %s", response.Status())
	}

	return &result, nil
}

// FetchStatus reads /status.
func (c *Client) FetchStatus() (*StatusResponse, error) {
	result := StatusResponse{}

	response, err := c.r.R().SetResult(&result).Get("/status")
	if err != nil {
		return nil, err
	}

	if response.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("error fetching status: %s", response.Status())
	}

	return &result, nil
}

// Play, Pause and Toggle post to the matching route.
func (c *Client) Play() error   { return c.post("/play") }
func (c *Client) Pause() error  { return c.post("/pause") }
func (c *Client) Toggle() error { return c.post("/toggle") }

func (c *Client) post(path string) error {
	response, err := c.r.R().Post(path)
	if err != nil {
		return err
	}
	if response.StatusCode() != http.StatusOK {
		return fmt.Errorf("error posting %s: %s", path, response.Status())
	}
	return nil
}

// SendCommand sends cmd to the default socket.
func SendCommand(cmd Command) (*Response, error) {
	return NewClient("").SendCommand(cmd)
}

// FetchStatus reads the status from the default socket.
func FetchStatus() (*StatusResponse, error) {
	return NewClient("").FetchStatus()
}
