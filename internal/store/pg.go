package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"magnate/internal/econ"
)

// Store persists the business catalog and session snapshots in Postgres. The
// simulation itself never touches the database; hosts load the catalog once
// at startup and write snapshots on save.
type Store struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func New(db *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, log: logger}
}

// SeedDefaults inserts the built-in catalog when the templates table is
// empty. Idempotent across restarts.
func (s *Store) SeedDefaults(ctx context.Context) error {
	var count int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(1) FROM magnate.templates`).Scan(&count); err != nil {
		return fmt.Errorf("count templates: %w", err)
	}
	if count > 0 {
		return nil
	}

	catalog := econ.DefaultCatalog(s.log)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, t := range catalog.Templates() {
		_, err := tx.Exec(ctx, `
			INSERT INTO magnate.templates (id, name, icon, category, base_income_micros, base_risk, base_workers, price_micros, base_upgrade_cost_micros, can_go_dark)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, t.ID, t.Name, t.Icon, string(t.Category), t.BaseIncomeMicros, t.BaseRisk, t.BaseWorkers, t.PriceMicros, t.BaseUpgradeCostMicros, t.CanGoDark)
		if err != nil {
			return fmt.Errorf("seed template %q: %w", t.Name, err)
		}
		for _, p := range t.Projects {
			_, err := tx.Exec(ctx, `
				INSERT INTO magnate.template_projects (template_id, name, cost_micros, duration_hours, reward_multiplier)
				VALUES ($1, $2, $3, $4, $5)
			`, t.ID, p.Name, p.CostMicros, p.DurationHours, p.RewardMultiplier)
			if err != nil {
				return fmt.Errorf("seed project %q: %w", p.Name, err)
			}
		}
	}

	for _, r := range catalog.Rules() {
		fields := make([]string, 0, len(r.Fields))
		for _, f := range r.Fields {
			fields = append(fields, string(f))
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO magnate.synergy_rules (name, first_business, second_business, required_level, bonus, fields)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, r.Name, r.FirstBusiness, r.SecondBusiness, r.RequiredLevel, r.Bonus, fields)
		if err != nil {
			return fmt.Errorf("seed synergy rule %q: %w", r.Name, err)
		}
	}

	for templateName, byFeature := range catalog.FeatureIncome() {
		for feature, mult := range byFeature {
			_, err := tx.Exec(ctx, `
				INSERT INTO magnate.feature_income (template_name, feature, multiplier)
				VALUES ($1, $2, $3)
			`, templateName, feature, mult)
			if err != nil {
				return fmt.Errorf("seed feature income %s/%s: %w", templateName, feature, err)
			}
		}
	}

	return tx.Commit(ctx)
}

// LoadCatalog reads the full catalog. Rule validation happens in
// econ.NewCatalog, so rows referencing unknown templates are dropped there,
// not here.
func (s *Store) LoadCatalog(ctx context.Context) (*econ.Catalog, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, icon, category, base_income_micros, base_risk, base_workers, price_micros, base_upgrade_cost_micros, can_go_dark
		FROM magnate.templates
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	defer rows.Close()

	var templates []econ.Template
	byID := make(map[int64]int)
	for rows.Next() {
		var t econ.Template
		var category string
		if err := rows.Scan(&t.ID, &t.Name, &t.Icon, &category, &t.BaseIncomeMicros, &t.BaseRisk, &t.BaseWorkers, &t.PriceMicros, &t.BaseUpgradeCostMicros, &t.CanGoDark); err != nil {
			return nil, err
		}
		t.Category = econ.Category(category)
		byID[t.ID] = len(templates)
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	projRows, err := s.db.Query(ctx, `
		SELECT template_id, name, cost_micros, duration_hours, reward_multiplier
		FROM magnate.template_projects
		ORDER BY template_id, name
	`)
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}
	defer projRows.Close()

	for projRows.Next() {
		var templateID int64
		var p econ.ProjectSpec
		if err := projRows.Scan(&templateID, &p.Name, &p.CostMicros, &p.DurationHours, &p.RewardMultiplier); err != nil {
			return nil, err
		}
		idx, ok := byID[templateID]
		if !ok {
			s.log.Warn("project row references unknown template, skipped", "template_id", templateID, "project", p.Name)
			continue
		}
		templates[idx].Projects = append(templates[idx].Projects, p)
	}
	if err := projRows.Err(); err != nil {
		return nil, err
	}

	ruleRows, err := s.db.Query(ctx, `
		SELECT name, first_business, second_business, required_level, bonus, fields
		FROM magnate.synergy_rules
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("load synergy rules: %w", err)
	}
	defer ruleRows.Close()

	var rules []econ.SynergyRule
	for ruleRows.Next() {
		var r econ.SynergyRule
		var fields []string
		if err := ruleRows.Scan(&r.Name, &r.FirstBusiness, &r.SecondBusiness, &r.RequiredLevel, &r.Bonus, &fields); err != nil {
			return nil, err
		}
		for _, f := range fields {
			r.Fields = append(r.Fields, econ.SynergyField(f))
		}
		rules = append(rules, r)
	}
	if err := ruleRows.Err(); err != nil {
		return nil, err
	}

	featRows, err := s.db.Query(ctx, `
		SELECT template_name, feature, multiplier
		FROM magnate.feature_income
	`)
	if err != nil {
		return nil, fmt.Errorf("load feature income: %w", err)
	}
	defer featRows.Close()

	featureIncome := make(map[string]map[string]float64)
	for featRows.Next() {
		var templateName, feature string
		var mult float64
		if err := featRows.Scan(&templateName, &feature, &mult); err != nil {
			return nil, err
		}
		if featureIncome[templateName] == nil {
			featureIncome[templateName] = make(map[string]float64)
		}
		featureIncome[templateName][feature] = mult
	}
	if err := featRows.Err(); err != nil {
		return nil, err
	}

	return econ.NewCatalog(templates, rules, featureIncome, s.log), nil
}

// SaveSnapshot upserts one save slot as jsonb.
func (s *Store) SaveSnapshot(ctx context.Context, slot string, snap econ.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO magnate.saves (slot, snapshot, saved_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (slot) DO UPDATE SET snapshot = EXCLUDED.snapshot, saved_at = EXCLUDED.saved_at
	`, slot, raw, snap.SavedAt)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads one save slot. The second return reports whether the
// slot exists.
func (s *Store) LoadSnapshot(ctx context.Context, slot string) (econ.Snapshot, bool, error) {
	var raw []byte
	var savedAt time.Time
	err := s.db.QueryRow(ctx, `
		SELECT snapshot, saved_at
		FROM magnate.saves
		WHERE slot = $1
	`, slot).Scan(&raw, &savedAt)
	if err == pgx.ErrNoRows {
		return econ.Snapshot{}, false, nil
	}
	if err != nil {
		return econ.Snapshot{}, false, fmt.Errorf("load snapshot: %w", err)
	}

	var snap econ.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return econ.Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.SavedAt.IsZero() {
		snap.SavedAt = savedAt
	}
	return snap, true, nil
}
