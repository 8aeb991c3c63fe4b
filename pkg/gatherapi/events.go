package gatherapi

import (
	"context"
	"fmt"
	"strconv"
)

// RSVP statuses accepted by the events endpoint.
const (
	RSVPGoing    = "going"
	RSVPMaybe    = "maybe"
	RSVPNotGoing = "not_going"
)

// ListEvents fetches one page of upcoming events. Pages start at 1.
func (c *Client) ListEvents(ctx context.Context, page int) (*ListEventsResponse, error) {
	if page < 1 {
		page = 1
	}

	var resp ListEventsResponse
	if err := c.getJSON(ctx, "/events?page="+strconv.Itoa(page), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RSVP records the authenticated account's attendance for an event.
func (c *Client) RSVP(ctx context.Context, eventID int64, status string) (*MessageResponse, error) {
	switch status {
	case RSVPGoing, RSVPMaybe, RSVPNotGoing:
	default:
		return nil, fmt.Errorf("invalid rsvp status %q", status)
	}

	var resp MessageResponse
	path := fmt.Sprintf("/events/%d/rsvp", eventID)
	if err := c.postForm(ctx, path, map[string]string{
		"status": status,
	}, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
