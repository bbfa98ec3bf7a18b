package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Blackfireoff/Incident-Factory/internal/core/domain"
)

// EventRepository reads incident data. Every query is a fixed SELECT
// template with bound parameters; the schema belongs to the upstream
// incident system and is never created or altered here.
type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// CountByTypeAndClassification runs the parametrized aggregate query behind
// filtered-count answers, grouped by (type, classification), ordered count
// descending with the classification label as tie-break.
func (r *EventRepository) CountByTypeAndClassification(
	ctx context.Context,
	typeFilter string,
	classifications []string,
	ouPatterns []string,
) (int, []domain.TypeCount, error) {
	var (
		join   string
		wheres []string
		args   []any
	)

	if len(ouPatterns) > 0 {
		join = "INNER JOIN organizational_unit ou ON e.organizational_unit_id = ou.unit_id"
		ors := make([]string, len(ouPatterns))
		for i, p := range ouPatterns {
			args = append(args, p)
			ors[i] = fmt.Sprintf("ou.name ILIKE $%d", len(args))
		}
		wheres = append(wheres, "("+strings.Join(ors, " OR ")+")")
	}
	if typeFilter != "" {
		args = append(args, typeFilter)
		wheres = append(wheres, fmt.Sprintf("e.type = $%d", len(args)))
	}
	if len(classifications) > 0 {
		placeholders := make([]string, len(classifications))
		for i, c := range classifications {
			args = append(args, c)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		wheres = append(wheres, fmt.Sprintf("e.classification IN (%s)", strings.Join(placeholders, ", ")))
	}

	whereSQL := "TRUE"
	if len(wheres) > 0 {
		whereSQL = strings.Join(wheres, " AND ")
	}

	query := fmt.Sprintf(`
SELECT e.type, e.classification, COUNT(*) AS count
FROM event e
%s
WHERE %s
GROUP BY e.type, e.classification
ORDER BY count DESC, e.classification ASC
`, join, whereSQL)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, nil, fmt.Errorf("count incidents: %w", err)
	}
	defer rows.Close()

	var (
		out   []domain.TypeCount
		total int
	)
	for rows.Next() {
		var (
			typ, cls sql.NullString
			count    int
		)
		if err := rows.Scan(&typ, &cls, &count); err != nil {
			return 0, nil, fmt.Errorf("scan count row: %w", err)
		}
		total += count
		out = append(out, domain.TypeCount{
			Type:           typ.String,
			Classification: cls.String,
			Count:          count,
		})
	}
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("iterate count rows: %w", err)
	}
	return total, out, nil
}

// TopClassifications returns the most frequent classifications, optionally
// restricted to organizational units whose name matches one of the given
// patterns.
func (r *EventRepository) TopClassifications(ctx context.Context, limit int, ouPatterns []string) ([]domain.StatRow, error) {
	var (
		query string
		args  []any
	)

	if len(ouPatterns) > 0 {
		ors := make([]string, len(ouPatterns))
		for i, p := range ouPatterns {
			args = append(args, p)
			ors[i] = fmt.Sprintf("ou.name ILIKE $%d", len(args))
		}
		args = append(args, limit)
		query = fmt.Sprintf(`
SELECT e.classification, COUNT(*) AS count
FROM event e
INNER JOIN organizational_unit ou ON e.organizational_unit_id = ou.unit_id
WHERE %s
GROUP BY e.classification
ORDER BY count DESC, e.classification ASC
LIMIT $%d
`, strings.Join(ors, " OR "), len(args))
	} else {
		args = append(args, limit)
		query = `
SELECT e.classification, COUNT(*) AS count
FROM event e
GROUP BY e.classification
ORDER BY count DESC, e.classification ASC
LIMIT $1
`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("top classifications: %w", err)
	}
	defer rows.Close()

	var out []domain.StatRow
	for rows.Next() {
		var (
			label sql.NullString
			count int
		)
		if err := rows.Scan(&label, &count); err != nil {
			return nil, fmt.Errorf("scan stat row: %w", err)
		}
		out = append(out, domain.StatRow{Label: label.String, Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stat rows: %w", err)
	}
	return out, nil
}

// listEventDocumentsQuery aggregates every related row into JSON inside the
// database, so one scan per event yields the full search document.
const listEventDocumentsQuery = `
SELECT
	e.event_id,
	e.type,
	e.classification,
	e.description,
	e.start_datetime,
	e.end_datetime,
	json_build_object(
		'unit_id', ou.unit_id,
		'name', ou.name,
		'location', ou.location,
		'identifier', ou.identifier
	) AS organizational_unit,
	json_build_object(
		'person_id', p_decl.person_id,
		'name', p_decl.name,
		'family_name', p_decl.family_name,
		'matricule', p_decl.matricule
	) AS declared_by,
	COALESCE(
		(
			SELECT json_agg(json_build_object(
				'risk_id', r.risk_id,
				'name', r.name,
				'gravity', r.gravity,
				'probability', r.probability
			))
			FROM event_risk er
			JOIN risk r ON er.risk_id = r.risk_id
			WHERE er.event_id = e.event_id
		),
		'[]'::json
	) AS risks,
	COALESCE(
		(
			SELECT json_agg(json_build_object(
				'measure_id', cm.measure_id,
				'name', cm.name,
				'description', cm.description,
				'cost', cm.cost,
				'owner_name', p_owner.name || ' ' || p_owner.family_name
			))
			FROM event_corrective_measure ecm
			JOIN corrective_measure cm ON ecm.measure_id = cm.measure_id
			LEFT JOIN person p_owner ON cm.owner_id = p_owner.person_id
			WHERE ecm.event_id = e.event_id
		),
		'[]'::json
	) AS corrective_measures,
	COALESCE(
		(
			SELECT json_agg(json_build_object(
				'person_id', p_emp.person_id,
				'name', p_emp.name,
				'family_name', p_emp.family_name,
				'matricule', p_emp.matricule,
				'involvement_type', ee.involvement_type
			))
			FROM event_employee ee
			JOIN person p_emp ON ee.person_id = p_emp.person_id
			WHERE ee.event_id = e.event_id
		),
		'[]'::json
	) AS involved_employees
FROM event e
LEFT JOIN organizational_unit ou ON e.organizational_unit_id = ou.unit_id
LEFT JOIN person p_decl ON e.declared_by_id = p_decl.person_id
ORDER BY e.event_id
`

func (r *EventRepository) ListEventDocuments(ctx context.Context) ([]domain.EventDocument, error) {
	rows, err := r.db.QueryContext(ctx, listEventDocumentsQuery)
	if err != nil {
		return nil, fmt.Errorf("list event documents: %w", err)
	}
	defer rows.Close()

	var out []domain.EventDocument
	for rows.Next() {
		doc, err := scanEventDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event documents: %w", err)
	}
	return out, nil
}

func scanEventDocument(rows *sql.Rows) (domain.EventDocument, error) {
	var (
		doc        domain.EventDocument
		typ        sql.NullString
		cls        sql.NullString
		desc       sql.NullString
		start, end sql.NullTime
		orgUnit    []byte
		declaredBy []byte
		risks      []byte
		measures   []byte
		employees  []byte
	)
	err := rows.Scan(
		&doc.EventID, &typ, &cls, &desc, &start, &end,
		&orgUnit, &declaredBy, &risks, &measures, &employees,
	)
	if err != nil {
		return domain.EventDocument{}, fmt.Errorf("scan event document: %w", err)
	}

	doc.Type = typ.String
	doc.Classification = cls.String
	doc.Description = desc.String
	if start.Valid {
		doc.StartDatetime = start.Time.Format("2006-01-02T15:04:05")
	}
	if end.Valid {
		doc.EndDatetime = end.Time.Format("2006-01-02T15:04:05")
	}

	for _, field := range []struct {
		raw []byte
		out any
	}{
		{orgUnit, &doc.OrganizationalUnit},
		{declaredBy, &doc.DeclaredBy},
		{risks, &doc.Risks},
		{measures, &doc.CorrectiveMeasures},
		{employees, &doc.InvolvedEmployees},
	} {
		if len(field.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(field.raw, field.out); err != nil {
			return domain.EventDocument{}, fmt.Errorf("unmarshal event document field: %w", err)
		}
	}
	return doc, nil
}
