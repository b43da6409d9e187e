// Package moimtest provides a fake Moim backend for testing.
//
// The fake server implements the subset of the Moim REST API the client
// consumes, plus an in-process STOMP broker over WebSocket for realtime
// document sessions, allowing tests to run without a real backend.
//
// # Supported Operations
//
//   - Sign In: POST /sign-in
//   - Categories: GET/POST/PUT/DELETE /category
//   - Calendar: GET /team/{teamId}/schedules/calendar
//   - Schedules: POST/PUT /team/{teamId}/schedules/simple,
//     DELETE /team/{teamId}/schedules/simple/{scheduleId}
//   - Documents: GET/POST /team/{teamId}/documents
//   - Profile: GET /my-page, GET /team/list, GET /member/participants,
//     POST /member/participant (multipart), POST /member/password,
//     DELETE /team/{teamId}/participant
//   - Realtime: STOMP broker on /ws with per-document topics
//     /topic/docs.{documentId}
//
// # Basic Usage
//
//	server := moimtest.NewServer()
//	defer server.Close()
//
//	server.SetUser(api.User{ID: 1, Name: "mina", Email: "mina@moim.test"})
//	cat := server.SeedCategory(7, api.Category{CategoryName: "planning"})
//
//	client := api.NewClient(server.URL, http.DefaultClient)
//
// Every REST call is recorded and available through Requests, so tests can
// assert on the exact method, path and body the client put on the wire.
// Endpoints that delete state can be forced to fail with FailDeleteCategory
// and FailDeleteSchedule to exercise error handling.
//
// The broker stamps each broadcast with a per-document sequence number and
// fans it out to every subscriber of that document's topic. PushDocument
// injects a broadcast from the test itself, standing in for another editor.
package moimtest
