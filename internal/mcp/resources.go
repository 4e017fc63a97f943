package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/yosida95/uritemplate/v3"
)

const (
	collectionsURI = "kektorindex://collections"
	collectionURI  = "kektorindex://collections/{name}"
)

var collectionTemplate = uritemplate.MustNew(collectionURI)

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         collectionsURI,
		Name:        "collections",
		Description: "All collections with their parameters and sizes",
		MIMEType:    "application/json",
	}, s.handleCollectionsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: collectionURI,
		Name:        "collection",
		Description: "Parameters and size of one collection",
		MIMEType:    "application/json",
	}, s.handleCollectionResource)
}

func (s *Server) handleCollectionsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, s.db.Info())
}

func (s *Server) handleCollectionResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := collectionNameFromURI(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	col, ok := s.db.Collection(name)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResource(req.Params.URI, col.Info())
}

// collectionNameFromURI extracts {name}, or "" when uri does not match.
func collectionNameFromURI(uri string) string {
	values := collectionTemplate.Match(uri)
	if values == nil {
		return ""
	}
	return values.Get("name").String()
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
