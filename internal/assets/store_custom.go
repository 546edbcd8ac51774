package assets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const customDateLayout = "2006-01-02"

// DefineField creates a custom metadata field. Names are unique.
func (s *Store) DefineField(ctx context.Context, name string, fieldType FieldType) (*CustomField, error) {
	ctx = ensureContext(ctx)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, wrap(ErrInvalidInput, "define field", "name is required", nil)
	}
	if _, ok := ParseFieldType(string(fieldType)); !ok {
		return nil, wrap(ErrInvalidInput, "define field", fmt.Sprintf("unknown field type %q", fieldType), nil)
	}
	res, err := s.execWithRetry(ctx, "INSERT INTO custom_fields (name, type) VALUES (?, ?)", name, string(fieldType))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, wrap(ErrConflict, "define field", fmt.Sprintf("field %q already exists", name), nil)
		}
		return nil, fmt.Errorf("insert custom field: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("custom field id: %w", err)
	}
	return &CustomField{ID: id, Name: name, Type: fieldType}, nil
}

// Fields lists custom field definitions by name.
func (s *Store) Fields(ctx context.Context) ([]CustomField, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), "SELECT id, name, type FROM custom_fields ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list custom fields: %w", err)
	}
	defer rows.Close()

	var out []CustomField
	for rows.Next() {
		var (
			f   CustomField
			typ string
		)
		if err := rows.Scan(&f.ID, &f.Name, &typ); err != nil {
			return nil, err
		}
		f.Type = FieldType(typ)
		out = append(out, f)
	}
	return out, rows.Err()
}

// DeleteField removes a field definition and every value recorded for it.
func (s *Store) DeleteField(ctx context.Context, fieldID int64) error {
	res, err := s.execWithRetry(ctx, "DELETE FROM custom_fields WHERE id = ?", fieldID)
	if err != nil {
		return fmt.Errorf("delete custom field %d: %w", fieldID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return wrap(ErrNotFound, "delete field", fmt.Sprintf("field %d", fieldID), nil)
	}
	return nil
}

func (s *Store) fieldByID(ctx context.Context, fieldID int64) (*CustomField, error) {
	var (
		f   CustomField
		typ string
	)
	err := s.db.QueryRowContext(ctx, "SELECT id, name, type FROM custom_fields WHERE id = ?", fieldID).Scan(&f.ID, &f.Name, &typ)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, wrap(ErrNotFound, "custom field", fmt.Sprintf("field %d", fieldID), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("load custom field: %w", err)
	}
	f.Type = FieldType(typ)
	return &f, nil
}

// normalizeCustomValue checks raw against the field type and returns the
// canonical stored form.
func normalizeCustomValue(fieldType FieldType, raw string) (string, error) {
	value := strings.TrimSpace(raw)
	switch fieldType {
	case FieldText:
		return raw, nil
	case FieldNumber:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return "", fmt.Errorf("%q is not a number", raw)
		}
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	case FieldDate:
		t, err := time.Parse(customDateLayout, value)
		if err != nil {
			return "", fmt.Errorf("%q is not a date (YYYY-MM-DD)", raw)
		}
		return t.Format(customDateLayout), nil
	case FieldBoolean:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return "", fmt.Errorf("%q is not a boolean", raw)
		}
		return strconv.FormatBool(b), nil
	default:
		return "", fmt.Errorf("unknown field type %q", fieldType)
	}
}

// SetCustomValue records an asset's value for a field. A nil value stores
// NULL; other values must parse as the field's type.
func (s *Store) SetCustomValue(ctx context.Context, assetID, fieldID int64, value *string) error {
	const op = "set custom value"
	ctx = ensureContext(ctx)
	field, err := s.fieldByID(ctx, fieldID)
	if err != nil {
		return err
	}
	if _, err := s.GetAsset(ctx, assetID); err != nil {
		return err
	}
	var stored any
	if value != nil {
		normalized, err := normalizeCustomValue(field.Type, *value)
		if err != nil {
			return wrap(ErrInvalidInput, op, field.Name, err)
		}
		stored = normalized
	}
	_, err = s.execWithRetry(ctx,
		`INSERT INTO asset_custom_values (asset_id, field_id, value) VALUES (?, ?, ?)
		 ON CONFLICT(asset_id, field_id) DO UPDATE SET value = excluded.value`,
		assetID, fieldID, stored,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CustomValues lists every custom value recorded for an asset.
func (s *Store) CustomValues(ctx context.Context, assetID int64) ([]CustomValue, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT f.id, f.name, f.type, v.value
		 FROM asset_custom_values v JOIN custom_fields f ON f.id = v.field_id
		 WHERE v.asset_id = ? ORDER BY f.name`, assetID)
	if err != nil {
		return nil, fmt.Errorf("list custom values: %w", err)
	}
	defer rows.Close()

	var out []CustomValue
	for rows.Next() {
		var (
			cv    CustomValue
			typ   string
			value sql.NullString
		)
		if err := rows.Scan(&cv.FieldID, &cv.FieldName, &typ, &value); err != nil {
			return nil, err
		}
		cv.FieldType = FieldType(typ)
		cv.Value = stringPtr(value)
		out = append(out, cv)
	}
	return out, rows.Err()
}
