package tools

import (
	"context"
	"encoding/json"

	"github.com/localhive/localhive/internal/places"
	"github.com/localhive/localhive/internal/schema"
)

// PlacesTool exposes the places-search backend to the model.
type PlacesTool struct {
	client *places.Client
}

// NewPlacesTool wraps the shared places client.
func NewPlacesTool(client *places.Client) *PlacesTool {
	return &PlacesTool{client: client}
}

func (t *PlacesTool) Name() string { return string(ToolPlaces) }
func (t *PlacesTool) Description() string {
	return "Get places as per search, longitude and latitude and radius by foursquare"
}
func (t *PlacesTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "The query to search for, e.g. 'coffee', 'automobile', 'groceries near petrol pump'"
			},
			"ll": {
				"type": "string",
				"description": "The latitude and longitude of the place to search for, e.g. '24.977006,67.211599'"
			},
			"radius": {
				"type": "number",
				"description": "The radius within the place to search for in meters, e.g. '2000'"
			}
		},
		"required": ["query", "ll", "radius"]
	}`)
}

func (t *PlacesTool) Execute(ctx context.Context, params map[string]any) schema.ToolResult {
	query, _ := params["query"].(string)
	ll, _ := params["ll"].(string)
	radius, _ := toFloat(params["radius"])

	result, err := t.client.Search(ctx, places.SearchParams{
		Query:  query,
		LL:     ll,
		Radius: int(radius),
	})
	if err != nil {
		return schema.Fail("Failed to fetch Foursquare information")
	}

	return schema.OK(result.Raw)
}
