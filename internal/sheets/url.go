package sheets

import (
	"errors"
	"regexp"
)

// ErrInvalidSheetURL is returned when no spreadsheet ID can be extracted.
var ErrInvalidSheetURL = errors.New("invalid spreadsheet URL")

// Accepted forms: a full editor URL, a ?id= query parameter, or a bare ID.
var spreadsheetIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`),
	regexp.MustCompile(`[?&]id=([a-zA-Z0-9-_]+)`),
	regexp.MustCompile(`^([a-zA-Z0-9-_]+)$`),
}

// ExtractSpreadsheetID pulls the spreadsheet ID out of a URL or returns the
// input when it already is a bare ID.
func ExtractSpreadsheetID(url string) (string, error) {
	for _, p := range spreadsheetIDPatterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return m[1], nil
		}
	}
	return "", ErrInvalidSheetURL
}
