// Package handlers provides HTTP request handlers for the API endpoints.
// It defines the routing logic, response formatting, and error handling mechanisms.
package handlers

import (
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"unicode/utf8"
)

const (
	IssueTrackerURL = "https://github.com/pro-grammer-SD/MagicalManim/issues/new"

	// Only the tail of the session log goes into a report.
	reportLogTail = 2000
)

type ReportResponse struct {
	URL string `json:"url"`
}

// ReportHandler returns a prefilled issue URL carrying the end of the
// session log. The front end opens it in a browser.
func (a *API) ReportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	logs, err := tailFile(a.sessionLog, reportLogTail)
	if err != nil {
		log.Printf("Report: cannot read session log: %v", err)
	}
	writeJSON(w, http.StatusOK, ReportResponse{URL: BugReportURL(logs)})
}

func BugReportURL(logs string) string {
	query := url.Values{
		"title": {"Bug Report"},
		"body":  {"Bug Report\nLogs:\n" + logs},
	}
	return IssueTrackerURL + "?" + query.Encode()
}

// tailFile reads at most n trailing bytes of path, starting on a rune
// boundary. A missing file reads as empty.
func tailFile(path string, n int64) (string, error) {
	if path == "" {
		return "", nil
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	offset := max(info.Size()-n, 0)

	data, err := io.ReadAll(io.NewSectionReader(f, offset, info.Size()-offset))
	if err != nil {
		return "", err
	}
	for len(data) > 0 && !utf8.RuneStart(data[0]) {
		data = data[1:]
	}
	return string(data), nil
}
