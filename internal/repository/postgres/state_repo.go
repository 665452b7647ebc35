package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"regintel/internal/domain"
	"regintel/internal/port"
)

type stateRepo struct {
	db *sqlx.DB
}

// NewStateRepo creates a new PostgreSQL-backed StateRepository.
func NewStateRepo(db *sqlx.DB) port.StateRepository {
	return &stateRepo{db: db}
}

// stateRow flattens an SFDRState for storage: nested fields are kept as
// JSON documents, mirroring their export shape.
type stateRow struct {
	ID             uuid.UUID       `db:"id"`
	FundISIN       string          `db:"fund_isin"`
	DocVersion     string          `db:"doc_version"`
	ClaimedArticle *string         `db:"claimed_article"`
	Definition     []byte          `db:"sustainable_investment_definition"`
	DNSH           []byte          `db:"dnsh"`
	PAI            []byte          `db:"pai"`
	MissingFields  json.RawMessage `db:"missing_fields"`
	Confidence     float64         `db:"confidence"`
	Documents      json.RawMessage `db:"documents"`
	CreatedAt      time.Time       `db:"created_at"`
}

func marshalNullable(v any, isNil bool) ([]byte, error) {
	if isNil {
		return nil, nil
	}
	return json.Marshal(v)
}

func toRow(state *domain.SFDRState) (*stateRow, error) {
	definition, err := marshalNullable(state.Definition, state.Definition == nil)
	if err != nil {
		return nil, fmt.Errorf("marshaling definition: %w", err)
	}
	dnsh, err := marshalNullable(state.DNSH, state.DNSH == nil)
	if err != nil {
		return nil, fmt.Errorf("marshaling dnsh: %w", err)
	}
	pai, err := marshalNullable(state.PAI, state.PAI == nil)
	if err != nil {
		return nil, fmt.Errorf("marshaling pai: %w", err)
	}
	missing, err := json.Marshal(state.MissingFields)
	if err != nil {
		return nil, fmt.Errorf("marshaling missing_fields: %w", err)
	}
	documents, err := json.Marshal(state.Documents)
	if err != nil {
		return nil, fmt.Errorf("marshaling documents: %w", err)
	}

	var article *string
	if state.ClaimedArticle != nil {
		s := string(*state.ClaimedArticle)
		article = &s
	}

	return &stateRow{
		ID:             state.ID,
		FundISIN:       state.FundISIN,
		DocVersion:     state.DocVersion,
		ClaimedArticle: article,
		Definition:     definition,
		DNSH:           dnsh,
		PAI:            pai,
		MissingFields:  missing,
		Confidence:     state.Confidence,
		Documents:      documents,
		CreatedAt:      state.CreatedAt,
	}, nil
}

func fromRow(row *stateRow) (*domain.SFDRState, error) {
	state := &domain.SFDRState{
		ID:         row.ID,
		FundISIN:   row.FundISIN,
		DocVersion: row.DocVersion,
		Confidence: row.Confidence,
		CreatedAt:  row.CreatedAt,
	}

	if row.ClaimedArticle != nil {
		a := domain.Article(*row.ClaimedArticle)
		state.ClaimedArticle = &a
	}
	if len(row.Definition) > 0 {
		if err := json.Unmarshal(row.Definition, &state.Definition); err != nil {
			return nil, fmt.Errorf("unmarshaling definition: %w", err)
		}
	}
	if len(row.DNSH) > 0 {
		if err := json.Unmarshal(row.DNSH, &state.DNSH); err != nil {
			return nil, fmt.Errorf("unmarshaling dnsh: %w", err)
		}
	}
	if len(row.PAI) > 0 {
		if err := json.Unmarshal(row.PAI, &state.PAI); err != nil {
			return nil, fmt.Errorf("unmarshaling pai: %w", err)
		}
	}
	if err := json.Unmarshal(row.MissingFields, &state.MissingFields); err != nil {
		return nil, fmt.Errorf("unmarshaling missing_fields: %w", err)
	}
	if err := json.Unmarshal(row.Documents, &state.Documents); err != nil {
		return nil, fmt.Errorf("unmarshaling documents: %w", err)
	}
	return state, nil
}

func (r *stateRepo) Create(ctx context.Context, state *domain.SFDRState) error {
	row, err := toRow(state)
	if err != nil {
		return fmt.Errorf("stateRepo.Create: %w", err)
	}

	query := `INSERT INTO sfdr_states (
		id, fund_isin, doc_version, claimed_article,
		sustainable_investment_definition, dnsh, pai,
		missing_fields, confidence, documents, created_at
	) VALUES (
		:id, :fund_isin, :doc_version, :claimed_article,
		:sustainable_investment_definition, :dnsh, :pai,
		:missing_fields, :confidence, :documents, :created_at
	)`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return domain.ErrStateAlreadyExists
		}
		return fmt.Errorf("stateRepo.Create: %w", err)
	}
	return nil
}

func (r *stateRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.SFDRState, error) {
	var row stateRow
	err := r.db.GetContext(ctx, &row,
		"SELECT * FROM sfdr_states WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrStateNotFound
		}
		return nil, fmt.Errorf("stateRepo.GetByID: %w", err)
	}
	return fromRow(&row)
}

func (r *stateRepo) ListByISIN(ctx context.Context, isin string) ([]domain.SFDRState, error) {
	var rows []stateRow
	err := r.db.SelectContext(ctx, &rows,
		"SELECT * FROM sfdr_states WHERE fund_isin = $1 ORDER BY created_at DESC", isin)
	if err != nil {
		return nil, fmt.Errorf("stateRepo.ListByISIN: %w", err)
	}

	states := make([]domain.SFDRState, 0, len(rows))
	for i := range rows {
		state, err := fromRow(&rows[i])
		if err != nil {
			return nil, fmt.Errorf("stateRepo.ListByISIN: %w", err)
		}
		states = append(states, *state)
	}
	return states, nil
}
