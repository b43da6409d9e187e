package api

import (
	"context"
	"net/url"
	"strconv"
)

// CreateCategoryRequest is the POST /category body.
type CreateCategoryRequest struct {
	TeamID              int64        `json:"teamId"`
	CreateParticipantID int64        `json:"createParticipantId"`
	CategoryName        string       `json:"categoryName"`
	CategoryType        CategoryType `json:"categoryType"`
	Color               string       `json:"color"`
}

// EditCategoryRequest is the PUT /category body.
type EditCategoryRequest struct {
	CategoryID          int64        `json:"categoryId"`
	TeamID              int64        `json:"teamId"`
	UpdateParticipantID int64        `json:"updateParticipantId"`
	CategoryName        string       `json:"categoryName"`
	CategoryType        CategoryType `json:"categoryType"`
	Color               string       `json:"color"`
}

// DeleteCategoryRequest is the DELETE /category body. Reassignment of the
// deleted category's schedules is explicit: IsMoved selects between moving
// them to NewCategoryID and cascading deletion.
type DeleteCategoryRequest struct {
	CategoryID    int64 `json:"categoryId"`
	TeamID        int64 `json:"teamId"`
	ParticipantID int64 `json:"participantId"`
	IsMoved       bool  `json:"isMoved"`
	NewCategoryID int64 `json:"newCategoryId"`
}

// ListCategories fetches a team's schedule categories.
func (c *Client) ListCategories(ctx context.Context, teamID int64) ([]Category, error) {
	q := url.Values{"teamId": {strconv.FormatInt(teamID, 10)}}
	var page Page[Category]
	if err := c.get(ctx, "/category", q, &page); err != nil {
		return nil, err
	}
	return page.Content, nil
}

// CreateCategory adds a category and returns the server's representation.
func (c *Client) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error) {
	q := url.Values{"teamId": {strconv.FormatInt(req.TeamID, 10)}}
	var created Category
	if err := c.post(ctx, "/category", q, req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// EditCategory updates a category and returns the server's representation.
func (c *Client) EditCategory(ctx context.Context, req EditCategoryRequest) (*Category, error) {
	q := url.Values{"teamId": {strconv.FormatInt(req.TeamID, 10)}}
	var updated Category
	if err := c.put(ctx, "/category", q, req, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteCategory removes a category, carrying the reassignment intent in
// the request body.
func (c *Client) DeleteCategory(ctx context.Context, req DeleteCategoryRequest) error {
	return c.delete(ctx, "/category", req, nil)
}
