package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/localhive/localhive/internal/schema"
)

const defaultPokeAPIBase = "https://pokeapi.co/api/v2"

// PokemonTool looks up a species on the PokeAPI and returns a normalized
// projection of its attributes.
type PokemonTool struct {
	apiBase    string
	httpClient *http.Client
}

// NewPokemonTool creates a PokemonTool against the public PokeAPI.
func NewPokemonTool() *PokemonTool {
	return &PokemonTool{
		apiBase:    defaultPokeAPIBase,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *PokemonTool) Name() string        { return string(ToolPokemon) }
func (t *PokemonTool) Description() string { return "Get information about a Pokemon" }
func (t *PokemonTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"pokemon_name": {
				"type": "string",
				"description": "The name of the Pokemon to get information about"
			}
		},
		"required": ["pokemon_name"]
	}`)
}

// pokeAPIBody is the subset of the PokeAPI species response we project.
type pokeAPIBody struct {
	Name   string `json:"name"`
	ID     int    `json:"id"`
	Height int    `json:"height"`
	Weight int    `json:"weight"`
	Types  []struct {
		Type struct {
			Name string `json:"name"`
		} `json:"type"`
	} `json:"types"`
	Abilities []struct {
		Ability struct {
			Name string `json:"name"`
		} `json:"ability"`
	} `json:"abilities"`
	Stats []struct {
		BaseStat int `json:"base_stat"`
		Stat     struct {
			Name string `json:"name"`
		} `json:"stat"`
	} `json:"stats"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
	} `json:"sprites"`
}

// PokemonInfo is the normalized projection returned on success.
type PokemonInfo struct {
	Name      string     `json:"name"`
	ID        int        `json:"id"`
	Height    int        `json:"height"`
	Weight    int        `json:"weight"`
	Types     []string   `json:"types"`
	Abilities []string   `json:"abilities"`
	Stats     []StatPair `json:"stats"`
	Sprite    string     `json:"sprite"`
}

type StatPair struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func (t *PokemonTool) Execute(ctx context.Context, params map[string]any) schema.ToolResult {
	name, _ := params["pokemon_name"].(string)
	if name == "" {
		return schema.Fail("pokemon_name is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/pokemon/%s", t.apiBase, strings.ToLower(name)), nil)
	if err != nil {
		return schema.Fail("Failed to fetch Pokemon information")
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return schema.Fail("Failed to fetch Pokemon information")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return schema.Fail("Failed to fetch Pokemon information")
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return schema.Fail("Failed to fetch Pokemon information")
	}

	var body pokeAPIBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return schema.Fail("Failed to fetch Pokemon information")
	}

	info := PokemonInfo{
		Name:   body.Name,
		ID:     body.ID,
		Height: body.Height,
		Weight: body.Weight,
		Sprite: body.Sprites.FrontDefault,
	}
	for _, tp := range body.Types {
		info.Types = append(info.Types, tp.Type.Name)
	}
	for _, ab := range body.Abilities {
		info.Abilities = append(info.Abilities, ab.Ability.Name)
	}
	for _, st := range body.Stats {
		info.Stats = append(info.Stats, StatPair{Name: st.Stat.Name, Value: st.BaseStat})
	}

	return schema.OK(info)
}
