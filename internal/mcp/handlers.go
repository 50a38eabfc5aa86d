package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/wordscraper/internal/config"
	"github.com/hpungsan/wordscraper/internal/errors"
	"github.com/hpungsan/wordscraper/internal/ledger"
	"github.com/hpungsan/wordscraper/internal/tally"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	eng    *tally.Engine
	writer *ledger.Writer
	cfg    *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(eng *tally.Engine, writer *ledger.Writer, cfg *config.Config) *Handlers {
	return &Handlers{eng: eng, writer: writer, cfg: cfg}
}

// Request types for each tool

// IngestRequest represents the arguments for tally_ingest.
type IngestRequest struct {
	Document string `json:"document"`
	Content  string `json:"content,omitempty"`
	Deleted  bool   `json:"deleted,omitempty"`
}

// LedgerRequest represents the arguments for tally_ledger.
type LedgerRequest struct {
	Day string `json:"day,omitempty"`
}

// wordRow is one entry in snapshot results.
type wordRow struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

func snapshotRows(snap tally.FrequencyMap) []wordRow {
	rows := make([]wordRow, 0, len(snap))
	for _, e := range snap.Sorted() {
		rows = append(rows, wordRow{Word: e.Word, Count: e.Count})
	}
	return rows
}

// Handler implementations

// HandleIngest handles the tally_ingest tool call.
func (h *Handlers) HandleIngest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IngestRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Document == "" {
		return errorResult(errors.NewInvalidRequest("document is required")), nil
	}

	if input.Deleted {
		h.eng.OnDocumentDeleted(input.Document)
	} else {
		h.eng.OnContentChanged(input.Document, input.Content)
	}

	day, snap := h.eng.Snapshot()
	total := 0
	for _, c := range snap {
		total += c
	}
	return successResult(map[string]any{
		"day":      day,
		"distinct": len(snap),
		"total":    total,
	})
}

// HandleSnapshot handles the tally_snapshot tool call.
func (h *Handlers) HandleSnapshot(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	day, snap := h.eng.Snapshot()
	return successResult(map[string]any{
		"day":     day,
		"session": h.eng.SessionID(),
		"words":   snapshotRows(snap),
	})
}

// HandleReset handles the tally_reset tool call.
func (h *Handlers) HandleReset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := h.eng.Reset(); err != nil {
		return errorResult(err), nil
	}
	day, _ := h.eng.Snapshot()
	return successResult(map[string]any{"day": day, "reset": true})
}

// HandleExport handles the tally_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !h.cfg.EnableJSONExport {
		return errorResult(errors.NewInvalidRequest("json export is disabled; set enable_json_export in config.json")), nil
	}
	if err := h.eng.Export(); err != nil {
		return errorResult(err), nil
	}
	day, snap := h.eng.Snapshot()
	return successResult(map[string]any{
		"day":   day,
		"path":  h.writer.ExportPathFor(day),
		"words": len(snap),
	})
}

// HandleLedger handles the tally_ledger tool call.
func (h *Handlers) HandleLedger(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LedgerRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	day := input.Day
	if day == "" {
		day = tally.LocalDay(time.Now())
	} else if _, perr := time.Parse(tally.DayFormat, day); perr != nil {
		return errorResult(errors.NewInvalidRequest("day must be YYYY-MM-DD")), nil
	}

	path, err := h.writer.OpenOrCreate(day)
	if err != nil {
		return errorResult(err), nil
	}
	snap, err := h.writer.ReadDay(day)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{
		"day":   day,
		"path":  path,
		"words": snapshotRows(snap),
	})
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if sErr, ok := err.(*errors.ScraperError); ok {
		errorObj := map[string]any{
			"code":    sErr.Code,
			"message": sErr.Message,
			"status":  sErr.Status,
		}
		if sErr.Code != errors.ErrInternal && sErr.Details != nil {
			errorObj["details"] = sErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
