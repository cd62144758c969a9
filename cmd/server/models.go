package main

import (
	"time"

	"github.com/liamcoop/bpmnconstraints/store"
)

// CompileResponse is a compiled model plus its constraints rendered in
// both output formats.
type CompileResponse struct {
	*store.Model
	store.Export
}

// ModelSummary is one entry of the model listing.
type ModelSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Digest      string    `json:"digest"`
	Constraints int       `json:"constraints"`
	CreatedAt   time.Time `json:"created_at"`
}

type ModelsListResponse struct {
	Models []ModelSummary `json:"models"`
}

type HealthResponse struct {
	Status   string           `json:"status"`
	Error    string           `json:"error,omitempty"`
	Counters map[string]int64 `json:"counters,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
