package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/technest/backend/internal/domain"
)

const deviceColumns = `id, slug, model_name, COALESCE(brand, ''), COALESCE(image_url, ''),
  camera_score, battery_score, performance_score, value_score, created_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// GetBySlug returns the device with the given slug
func (s *Store) GetBySlug(ctx context.Context, slug string) (*domain.Device, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+deviceColumns+` FROM devices WHERE slug = ?`), slug)

	device, err := scanDevice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get device: %v", domain.ErrStoreUnavailable, err)
	}
	return device, nil
}

// GetSpecs returns the spec rows of a device joined with their definitions
func (s *Store) GetSpecs(ctx context.Context, deviceID int64) ([]domain.Spec, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
SELECT ds.device_id, ds.spec_key, ds.raw_value,
  COALESCE(sd.display_label, ''), COALESCE(sd.category, ''), COALESCE(sd.unit, ''), sd.higher_is_better
FROM device_specs ds
LEFT JOIN spec_definitions sd ON sd.spec_key = ds.spec_key
WHERE ds.device_id = ?
ORDER BY ds.spec_key`), deviceID)
	if err != nil {
		return nil, fmt.Errorf("%w: get specs: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	specs := []domain.Spec{}
	for rows.Next() {
		var (
			spec   domain.Spec
			higher sql.NullBool
		)
		if err := rows.Scan(&spec.DeviceID, &spec.SpecKey, &spec.RawValue,
			&spec.DisplayLabel, &spec.Category, &spec.Unit, &higher); err != nil {
			return nil, fmt.Errorf("%w: scan spec: %v", domain.ErrStoreUnavailable, err)
		}
		if higher.Valid {
			v := higher.Bool
			spec.HigherIsBetter = &v
		}
		specs = append(specs, spec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: get specs: %v", domain.ErrStoreUnavailable, err)
	}
	return specs, nil
}

// SearchByName returns devices whose model name contains query, case-insensitively
func (s *Store) SearchByName(ctx context.Context, query string, limit int) ([]domain.Device, error) {
	if limit <= 0 {
		limit = 10
	}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(query))) + "%"

	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT `+deviceColumns+`
FROM devices
WHERE LOWER(model_name) LIKE ? ESCAPE '\'
ORDER BY model_name, id
LIMIT ?`), pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: search devices: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	devices := []domain.Device{}
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan device: %v", domain.ErrStoreUnavailable, err)
		}
		devices = append(devices, *device)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: search devices: %v", domain.ErrStoreUnavailable, err)
	}
	return devices, nil
}

// UpsertDevice inserts or updates a device by slug and replaces its specs.
// Spec definitions carried on the rows are upserted as well. device.ID is set on return.
func (s *Store) UpsertDevice(ctx context.Context, device *domain.Device, specs []domain.Spec) (err error) {
	if device == nil || device.Slug == "" || device.ModelName == "" {
		return domain.ErrInvalidRequest
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", domain.ErrStoreUnavailable, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	createdAt := device.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var id int64
	err = tx.QueryRowContext(ctx, s.rebind(`
INSERT INTO devices (slug, model_name, brand, image_url, camera_score, battery_score, performance_score, value_score, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (slug) DO UPDATE SET
  model_name = excluded.model_name,
  brand = excluded.brand,
  image_url = excluded.image_url,
  camera_score = excluded.camera_score,
  battery_score = excluded.battery_score,
  performance_score = excluded.performance_score,
  value_score = excluded.value_score
RETURNING id`),
		device.Slug, device.ModelName, nullString(device.Brand), nullString(device.ImageURL),
		device.Scores.Camera, device.Scores.Battery, device.Scores.Performance, device.Scores.Value,
		createdAt.Format(time.RFC3339Nano),
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("%w: upsert device %q: %v", domain.ErrStoreUnavailable, device.Slug, err)
	}

	if _, err = tx.ExecContext(ctx, s.rebind(`DELETE FROM device_specs WHERE device_id = ?`), id); err != nil {
		return fmt.Errorf("%w: clear specs: %v", domain.ErrStoreUnavailable, err)
	}

	for _, spec := range specs {
		if spec.SpecKey == "" {
			continue
		}
		if hasDefinition(spec) {
			var higher any
			if spec.HigherIsBetter != nil {
				higher = *spec.HigherIsBetter
			}
			_, err = tx.ExecContext(ctx, s.rebind(`
INSERT INTO spec_definitions (spec_key, display_label, category, unit, higher_is_better)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (spec_key) DO UPDATE SET
  display_label = excluded.display_label,
  category = excluded.category,
  unit = excluded.unit,
  higher_is_better = excluded.higher_is_better`),
				spec.SpecKey, nullString(spec.DisplayLabel), nullString(spec.Category), nullString(spec.Unit), higher)
			if err != nil {
				return fmt.Errorf("%w: upsert spec definition %q: %v", domain.ErrStoreUnavailable, spec.SpecKey, err)
			}
		}

		_, err = tx.ExecContext(ctx, s.rebind(`
INSERT INTO device_specs (device_id, spec_key, raw_value) VALUES (?, ?, ?)
ON CONFLICT (device_id, spec_key) DO UPDATE SET raw_value = excluded.raw_value`),
			id, spec.SpecKey, spec.RawValue)
		if err != nil {
			return fmt.Errorf("%w: insert spec %q: %v", domain.ErrStoreUnavailable, spec.SpecKey, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", domain.ErrStoreUnavailable, err)
	}
	device.ID = id
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(row rowScanner) (*domain.Device, error) {
	var (
		device    domain.Device
		createdAt sql.NullString
	)
	err := row.Scan(&device.ID, &device.Slug, &device.ModelName, &device.Brand, &device.ImageURL,
		&device.Scores.Camera, &device.Scores.Battery, &device.Scores.Performance, &device.Scores.Value,
		&createdAt)
	if err != nil {
		return nil, err
	}
	device.CreatedAt = parseTimestamp(createdAt.String)
	return &device, nil
}

// parseTimestamp accepts RFC 3339 and the SQL "YYYY-MM-DD HH:MM:SS" form
func parseTimestamp(value string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func hasDefinition(spec domain.Spec) bool {
	return spec.DisplayLabel != "" || spec.Category != "" || spec.Unit != "" || spec.HigherIsBetter != nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
