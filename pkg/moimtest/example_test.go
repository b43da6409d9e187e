package moimtest_test

import (
	"context"
	"fmt"
	"net/http"

	"github.com/moimhq/moim/internal/api"
	"github.com/moimhq/moim/pkg/moimtest"
)

// Example demonstrates how to use the fake backend with the API client.
func Example() {
	server := moimtest.NewServer()
	defer server.Close()

	// Pre-populate a team's categories.
	server.SeedCategory(1, api.Category{CategoryName: "planning", CategoryType: api.CategorySchedule})
	server.SeedCategory(1, api.Category{CategoryName: "retro", CategoryType: api.CategorySchedule})

	client, err := api.NewClient(server.URL, http.DefaultClient)
	if err != nil {
		panic(err)
	}

	categories, err := client.ListCategories(context.Background(), 1)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Found %d categories\n", len(categories))
	// Output: Found 2 categories
}

// Example_requestLog shows how tests assert on the recorded wire traffic.
func Example_requestLog() {
	server := moimtest.NewServer()
	defer server.Close()

	client, err := api.NewClient(server.URL, http.DefaultClient)
	if err != nil {
		panic(err)
	}
	if _, err := client.ListDocuments(context.Background(), 7); err != nil {
		panic(err)
	}

	for _, r := range server.Requests() {
		fmt.Printf("%s %s\n", r.Method, r.Path)
	}
	// Output: GET /team/7/documents
}
