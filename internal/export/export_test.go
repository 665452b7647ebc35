package export_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"

	"regintel/internal/domain"
	"regintel/internal/export"
)

func sampleState() *domain.SFDRState {
	article := domain.Article8
	text := "sustainable investment means..."
	definition, _ := domain.NewDefinitionField(true, &text, 0.9, nil)
	dnsh, _ := domain.NewDNSHField(true, domain.DNSHCoveragePartial, 0.7, nil)
	ratio := 0.64
	pai, _ := domain.NewPAIField(&ratio, 0.8, nil)

	return &domain.SFDRState{
		ID:             uuid.New(),
		FundISIN:       "LU0123456789",
		DocVersion:     "2024-01",
		ClaimedArticle: &article,
		Definition:     definition,
		DNSH:           dnsh,
		PAI:            pai,
		MissingFields:  []string{},
		Confidence:     0.825,
		Documents:      []uuid.UUID{uuid.New()},
		CreatedAt:      time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
}

func TestWriteJSON_RecordShape(t *testing.T) {
	state := sampleState()
	record := &export.Record{
		State: state,
		Metadata: export.Metadata{
			DocumentID:   state.Documents[0],
			ISIN:         state.FundISIN,
			DocumentType: "prospectus",
			Worker:       "openai",
		},
	}

	var buf bytes.Buffer
	err := export.WriteJSON(&buf, record)
	assert.NoError(t, err)

	var decoded map[string]any
	err = json.Unmarshal(buf.Bytes(), &decoded)
	assert.NoError(t, err)

	stateObj := decoded["state"].(map[string]any)
	assert.Equal(t, "LU0123456789", stateObj["fund_isin"])
	assert.Equal(t, "8", stateObj["claimed_article"])
	assert.Equal(t, 0.825, stateObj["confidence"])
	assert.NotNil(t, stateObj["sustainable_investment_definition"])
	assert.NotNil(t, stateObj["dnsh"])
	assert.NotNil(t, stateObj["pai"])

	meta := decoded["metadata"].(map[string]any)
	assert.Equal(t, "prospectus", meta["document_type"])
	assert.Equal(t, "openai", meta["worker"])
}

func TestWriteJSON_NilFieldsStayExplicit(t *testing.T) {
	state := sampleState()
	state.ClaimedArticle = nil
	state.Definition = nil
	state.PAI = nil
	state.MissingFields = []string{domain.FieldClaimedArticle, domain.FieldDefinition, domain.FieldPAI}

	var buf bytes.Buffer
	err := export.WriteJSON(&buf, &export.Record{State: state})
	assert.NoError(t, err)

	var decoded map[string]any
	err = json.Unmarshal(buf.Bytes(), &decoded)
	assert.NoError(t, err)

	stateObj := decoded["state"].(map[string]any)
	assert.Nil(t, stateObj["claimed_article"])
	assert.Nil(t, stateObj["sustainable_investment_definition"])
	assert.Nil(t, stateObj["pai"])

	missing := stateObj["missing_fields"].([]any)
	assert.Len(t, missing, 3)
}

func TestWriteSummaryXLSX_RowsMatchStates(t *testing.T) {
	states := []domain.SFDRState{*sampleState()}

	var buf bytes.Buffer
	err := export.WriteSummaryXLSX(&buf, states)
	assert.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	assert.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("States", "B1")
	assert.NoError(t, err)
	assert.Equal(t, "Fund ISIN", header)

	isin, err := f.GetCellValue("States", "B2")
	assert.NoError(t, err)
	assert.Equal(t, "LU0123456789", isin)

	article, err := f.GetCellValue("States", "D2")
	assert.NoError(t, err)
	assert.Equal(t, "8", article)

	coverage, err := f.GetCellValue("States", "G2")
	assert.NoError(t, err)
	assert.Equal(t, "partial", coverage)
}

func TestWriteSummaryXLSX_EmptyStates(t *testing.T) {
	var buf bytes.Buffer
	err := export.WriteSummaryXLSX(&buf, nil)
	assert.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	assert.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("States")
	assert.NoError(t, err)
	assert.Len(t, rows, 1)
}
