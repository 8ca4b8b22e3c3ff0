package uiautomator2

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Element is a server-side element reference.
type Element struct {
	id     string
	client *Client
}

// ID returns the element ID.
func (e *Element) ID() string {
	return e.id
}

// FindElement finds a single element. A missing element is reported as a
// *ServerError for which IsNoSuchElement is true.
func (c *Client) FindElement(strategy, selector string) (*Element, error) {
	return c.FindElementContext(context.Background(), strategy, selector)
}

// FindElementContext is FindElement abandoned when ctx ends.
func (c *Client) FindElementContext(ctx context.Context, strategy, selector string) (*Element, error) {
	data, err := c.requestContext(ctx, "POST", c.sessionPath("/element"), FindElementRequest{Strategy: strategy, Selector: selector})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Value struct {
			ELEMENT string `json:"ELEMENT"`
		} `json:"value"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse element response: %w", err)
	}
	// Some server builds answer 200 with an empty reference instead of 404.
	if resp.Value.ELEMENT == "" {
		return nil, &ServerError{
			StatusCode: http.StatusNotFound,
			Type:       ErrTypeNoSuchElement,
			Message:    fmt.Sprintf("%s=%s", strategy, selector),
		}
	}
	return &Element{id: resp.Value.ELEMENT, client: c}, nil
}

func (e *Element) path(suffix string) string {
	return e.client.sessionPath("/element/" + e.id + suffix)
}

// Click taps the element.
func (e *Element) Click() error {
	_, err := e.client.request("POST", e.path("/click"), nil)
	return err
}

// Attribute returns an element attribute as the server renders it.
func (e *Element) Attribute(name string) (string, error) {
	return e.client.getString(context.Background(), e.path("/attribute/" + name))
}

// IsClickable checks if the element accepts clicks.
func (e *Element) IsClickable() (bool, error) {
	attr, err := e.Attribute("clickable")
	if err != nil {
		return false, err
	}
	return attr == "true", nil
}
