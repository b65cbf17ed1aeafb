package client

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/coder/websocket"
	"github.com/juju/errors"
)

// Event is a catalog change pushed by the server.
type Event struct {
	Type         string `json:"type"`
	Entity       string `json:"entity"`
	Action       string `json:"action"`
	ID           string `json:"id"`
	RestaurantID string `json:"restaurant_id"`
}

// Watch streams catalog changes to fn until ctx is done or the connection
// drops. An empty restaurantID watches every restaurant. Cancellation is not
// reported as an error.
func (c *Client) Watch(ctx context.Context, restaurantID string, fn func(Event)) error {
	u, err := url.Parse(c.baseURL + "/ws")
	if err != nil {
		return errors.Annotate(err, "watch url")
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	if restaurantID != "" {
		u.RawQuery = url.Values{"restaurant": {restaurantID}}.Encode()
	}

	conn, _, err := websocket.Dial(ctx, u.String(), nil)
	if err != nil {
		return errors.Annotate(err, "dial")
	}
	defer conn.CloseNow()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil || websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			return errors.Annotate(err, "read")
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		if strings.TrimSpace(ev.Type) == "" {
			continue
		}
		fn(ev)
	}
}
