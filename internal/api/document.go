package api

import (
	"context"
	"fmt"
)

// CreateDocumentRequest is the body for creating a shared document.
type CreateDocumentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ListDocuments fetches one page of a team's shared documents. The backend
// wraps the list in a page envelope; callers depend on the Content field
// being present.
func (c *Client) ListDocuments(ctx context.Context, teamID int64) (*Page[Document], error) {
	var page Page[Document]
	if err := c.get(ctx, fmt.Sprintf("/team/%d/documents", teamID), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreateDocument adds a shared document and returns the server's record.
func (c *Client) CreateDocument(ctx context.Context, teamID int64, req CreateDocumentRequest) (*Document, error) {
	var created Document
	if err := c.post(ctx, fmt.Sprintf("/team/%d/documents", teamID), nil, req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
