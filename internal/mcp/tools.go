package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool definitions for the tally surface.

var ingestToolDef = mcp.NewTool("tally_ingest",
	mcp.WithDescription("Feed a document's full current text into today's word tally. "+
		"The engine diffs it against the last snapshot of the same document, so "+
		"repeated calls only count what changed. Pass deleted=true to drop the "+
		"document's baseline without affecting the tally."),
	mcp.WithString("document",
		mcp.Required(),
		mcp.Description("Stable identity for the document (a relative path or any consistent key)."),
	),
	mcp.WithString("content",
		mcp.Description("The document's full current text. Ignored when deleted=true."),
	),
	mcp.WithBoolean("deleted",
		mcp.Description("Treat this notification as a document deletion."),
	),
)

var snapshotToolDef = mcp.NewTool("tally_snapshot",
	mcp.WithDescription("Return the current day's word frequencies, highest count first."),
)

var resetToolDef = mcp.NewTool("tally_reset",
	mcp.WithDescription("Clear today's tally and rewrite the ledger file as empty. "+
		"Document baselines are kept, so only future edits count."),
)

var exportToolDef = mcp.NewTool("tally_export",
	mcp.WithDescription("Write today's tally as a sentiment-annotated JSON file next to the ledger. "+
		"Requires enable_json_export in the configuration."),
)

var ledgerToolDef = mcp.NewTool("tally_ledger",
	mcp.WithDescription("Open or create a day's ledger file and return its path and contents."),
	mcp.WithString("day",
		mcp.Description("Day in YYYY-MM-DD form. Defaults to the current day."),
	),
)
