package mcp

import "github.com/sanonone/kektorindex/pkg/core"

// --- Tool Arguments ---

type StoreDocumentArgs struct {
	Collection string         `json:"collection,omitempty" jsonschema:"the collection to store into; created on first use. Defaults to the server default collection"`
	ID         string         `json:"id,omitempty" jsonschema:"document id; a random UUID is assigned when empty. Reusing an id replaces the document"`
	Text       string         `json:"text" jsonschema:"the text to embed and store"`
	Metadata   map[string]any `json:"metadata,omitempty" jsonschema:"metadata used by search filters"`
}

type StoreDocumentResult struct {
	ID         string `json:"id"`
	Collection string `json:"collection"`
	Status     string `json:"status"`
}

type SearchArgs struct {
	Collection string         `json:"collection,omitempty" jsonschema:"the collection to search"`
	Query      string         `json:"query" jsonschema:"the natural-language query"`
	Limit      int            `json:"limit,omitempty" jsonschema:"maximum number of results (default 5)"`
	Filter     map[string]any `json:"filter,omitempty" jsonschema:"metadata filter, e.g. {\"and\":[{\"lang\":\"it\"},{\"field\":\"year\",\"op\":\"gte\",\"value\":2020}]}"`
	MinScore   *float64       `json:"min_score,omitempty" jsonschema:"drop results scoring below this value"`
}

type SearchHit struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Text     string         `json:"text,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type SearchResult struct {
	Results []SearchHit `json:"results"`
	Count   int         `json:"count"`
}

type DeleteDocumentArgs struct {
	Collection string `json:"collection,omitempty" jsonschema:"the collection holding the document"`
	ID         string `json:"id" jsonschema:"id of the document to delete"`
}

type DeleteDocumentResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type CollectionInfoArgs struct {
	Collection string `json:"collection,omitempty" jsonschema:"collection name; all collections when empty"`
}

type CollectionInfoResult struct {
	Collections []core.Info `json:"collections"`
}
