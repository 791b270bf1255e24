package sheets

import (
	"context"
	"fmt"
	"log"
	"os"

	"stockroom/internal/reports"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// ReportExporter writes replenishment reports into a Google spreadsheet so
// purchasing can work from a shared document.
type ReportExporter struct {
	sheetsService *sheetsapi.Service
}

// NewReportExporter builds the Sheets client from GOOGLE_SHEETS_CREDENTIALS_JSON,
// falling back to a local credentials file for development.
func NewReportExporter() (*ReportExporter, error) {
	ctx := context.Background()

	var credentials *google.Credentials
	var err error

	if credentialsJSON := os.Getenv("GOOGLE_SHEETS_CREDENTIALS_JSON"); credentialsJSON != "" {
		credentials, err = google.CredentialsFromJSON(ctx, []byte(credentialsJSON), sheetsapi.SpreadsheetsScope)
	} else {
		credentialsFile := "configs/google-credentials.json"
		b, readErr := os.ReadFile(credentialsFile)
		if readErr != nil {
			return nil, fmt.Errorf("cannot read Google credentials file: %v", readErr)
		}
		credentials, err = google.CredentialsFromJSON(ctx, b, sheetsapi.SpreadsheetsScope)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot load Google credentials: %v", err)
	}

	client := oauth2.NewClient(ctx, credentials.TokenSource)
	sheetsService, err := sheetsapi.New(client)
	if err != nil {
		return nil, fmt.Errorf("cannot create Google Sheets client: %v", err)
	}

	return &ReportExporter{sheetsService: sheetsService}, nil
}

// Export overwrites the sheet starting at A1 with a header row followed by one
// row per report line.
func (e *ReportExporter) Export(spreadsheetID string, report *reports.ReplenishmentReport) error {
	values := [][]interface{}{
		{"Class", "SKU", "Name", "Quantity", "Reorder Level", "Status", "Suggested Order"},
	}
	for _, line := range report.Lines {
		values = append(values, []interface{}{
			string(line.Class),
			line.SKU,
			line.Name,
			line.Quantity,
			line.ReorderLevel,
			string(line.Status),
			line.SuggestedOrder,
		})
	}

	valueRange := &sheetsapi.ValueRange{Values: values}
	writeRange := fmt.Sprintf("A1:G%d", len(values))

	_, err := e.sheetsService.Spreadsheets.Values.
		Update(spreadsheetID, writeRange, valueRange).
		ValueInputOption("RAW").
		Do()
	if err != nil {
		return fmt.Errorf("cannot write report to spreadsheet: %v", err)
	}

	log.Printf("Exported %d replenishment lines to spreadsheet %s", len(report.Lines), spreadsheetID)
	return nil
}
