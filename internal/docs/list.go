// Package docs is the shared document list view. One page's worth of
// documents is fetched from the backend; search and pagination operate only
// over that fetched page, never triggering another fetch.
package docs

import (
	"context"
	"strings"

	"github.com/moimhq/moim/internal/api"
	"github.com/moimhq/moim/internal/report"
)

// PageSize is the number of documents shown per page.
const PageSize = 10

// ListView is the document list state for one team.
type ListView struct {
	client   *api.Client
	teamID   int64
	reporter *report.Reporter

	documents []api.Document
	filtered  []api.Document
	term      string
}

func NewListView(client *api.Client, teamID int64, reporter *report.Reporter) *ListView {
	return &ListView{client: client, teamID: teamID, reporter: reporter}
}

// Load fetches the team's documents. A response without a content array is
// logged and leaves the list empty; there is no retry.
func (l *ListView) Load(ctx context.Context) error {
	page, err := l.client.ListDocuments(ctx, l.teamID)
	if err != nil {
		l.reporter.Silent("load documents", err)
		return err
	}
	if page.Content == nil {
		l.reporter.Silent("load documents", report.Domain("response is missing the content array"))
		l.documents = nil
		l.filtered = nil
		return nil
	}
	l.documents = page.Content
	l.applyFilter()
	return nil
}

// SetFilter narrows the list to documents whose title or content contains
// term, case-insensitively, within the fetched page only.
func (l *ListView) SetFilter(term string) {
	l.term = term
	l.applyFilter()
}

func (l *ListView) applyFilter() {
	if l.term == "" {
		l.filtered = l.documents
		return
	}
	needle := strings.ToLower(l.term)
	filtered := make([]api.Document, 0, len(l.documents))
	for _, d := range l.documents {
		if strings.Contains(strings.ToLower(d.Title), needle) ||
			strings.Contains(strings.ToLower(d.Content), needle) {
			filtered = append(filtered, d)
		}
	}
	l.filtered = filtered
}

// TotalPages reports how many pages the filtered set spans.
func (l *ListView) TotalPages() int {
	return (len(l.filtered) + PageSize - 1) / PageSize
}

// Page returns the n-th page (0-based) of the filtered set.
func (l *ListView) Page(n int) []api.Document {
	start := n * PageSize
	if start < 0 || start >= len(l.filtered) {
		return nil
	}
	end := start + PageSize
	if end > len(l.filtered) {
		end = len(l.filtered)
	}
	return l.filtered[start:end]
}

// Documents returns the full fetched page, unfiltered.
func (l *ListView) Documents() []api.Document { return l.documents }

// Create adds a document and returns the server's record. List state is
// untouched; the new document shows up on the next load.
func (l *ListView) Create(ctx context.Context, title, content string) (*api.Document, error) {
	doc, err := l.client.CreateDocument(ctx, l.teamID, api.CreateDocumentRequest{
		Title:   title,
		Content: content,
	})
	if err != nil {
		l.reporter.Silent("create document", err)
		return nil, err
	}
	return doc, nil
}
