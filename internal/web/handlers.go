package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hpungsan/wordscraper/internal/errors"
	"github.com/hpungsan/wordscraper/internal/tally"
)

// TallySource is the read-only view of the engine the status page needs.
type TallySource interface {
	Snapshot() (day string, freqs tally.FrequencyMap)
	SessionID() string
}

// LedgerReader reads a past day's ledger from disk.
type LedgerReader interface {
	ReadDay(day string) (tally.FrequencyMap, error)
}

// Handlers contains HTTP route handlers for the status page.
type Handlers struct {
	src      TallySource
	ledgers  LedgerReader
	renderer *Renderer
}

// HandleIndex handles GET / — today's tally rendered as HTML.
func (h *Handlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	day, snap := h.src.Snapshot()

	total := 0
	var md strings.Builder
	fmt.Fprintf(&md, "# WordScraper — %s\n\n", day)
	for _, e := range snap.Sorted() {
		fmt.Fprintf(&md, "- **%s**: %d\n", e.Word, e.Count)
		total += e.Count
	}
	if len(snap) == 0 {
		md.WriteString("_Nothing tallied yet today._\n")
	}

	h.renderer.renderPage(w, "index", IndexPageData{
		PageData:     PageData{Title: "WordScraper", Version: h.renderer.version},
		Day:          day,
		Session:      h.src.SessionID(),
		Distinct:     len(snap),
		Total:        total,
		RenderedHTML: renderMarkdown(md.String()),
	})
}

// HandleDay handles GET /ledger/{day} — a past day's ledger from disk.
func (h *Handlers) HandleDay(w http.ResponseWriter, r *http.Request) {
	day := r.PathValue("day")
	if _, err := time.Parse(tally.DayFormat, day); err != nil {
		h.renderer.renderError(w, errors.NewInvalidRequest("day must be YYYY-MM-DD"))
		return
	}

	snap, err := h.ledgers.ReadDay(day)
	if err != nil {
		h.renderer.renderError(w, err)
		return
	}

	total := 0
	var md strings.Builder
	fmt.Fprintf(&md, "# WordScraper — %s\n\n", day)
	for _, e := range snap.Sorted() {
		fmt.Fprintf(&md, "- **%s**: %d\n", e.Word, e.Count)
		total += e.Count
	}
	if len(snap) == 0 {
		md.WriteString("_No ledger entries for this day._\n")
	}

	h.renderer.renderPage(w, "index", IndexPageData{
		PageData:     PageData{Title: "WordScraper", Version: h.renderer.version},
		Day:          day,
		Distinct:     len(snap),
		Total:        total,
		RenderedHTML: renderMarkdown(md.String()),
	})
}

// tallyResponse is the JSON shape of GET /tally.json.
type tallyResponse struct {
	Day     string `json:"day"`
	Session string `json:"session,omitempty"`
	Words   []struct {
		Word  string `json:"word"`
		Count int    `json:"count"`
	} `json:"words"`
}

// HandleTallyJSON handles GET /tally.json — the raw snapshot.
func (h *Handlers) HandleTallyJSON(w http.ResponseWriter, r *http.Request) {
	day, snap := h.src.Snapshot()

	resp := tallyResponse{Day: day, Session: h.src.SessionID()}
	for _, e := range snap.Sorted() {
		resp.Words = append(resp.Words, struct {
			Word  string `json:"word"`
			Count int    `json:"count"`
		}{Word: e.Word, Count: e.Count})
	}
	if resp.Words == nil {
		resp.Words = []struct {
			Word  string `json:"word"`
			Count int    `json:"count"`
		}{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
