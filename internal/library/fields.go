package library

import (
	"context"

	"assetvault/internal/assets"
	"assetvault/internal/requestctx"
)

// DefineField creates a custom field.
func (s *Service) DefineField(ctx context.Context, name string, fieldType assets.FieldType) (*assets.CustomField, error) {
	ctx, _ = s.begin(ctx, "define field")
	return s.store.DefineField(ctx, name, fieldType)
}

// Fields lists custom field definitions.
func (s *Service) Fields(ctx context.Context) ([]assets.CustomField, error) {
	ctx, _ = s.begin(ctx, "list fields")
	return s.store.Fields(ctx)
}

// DeleteField removes a field definition and every value stored for it.
func (s *Service) DeleteField(ctx context.Context, fieldID int64) error {
	ctx, _ = s.begin(ctx, "delete field")
	return s.store.DeleteField(ctx, fieldID)
}

// SetCustomValue stores a value for one field on one asset; nil removes it.
func (s *Service) SetCustomValue(ctx context.Context, assetID, fieldID int64, value *string) error {
	ctx, _ = s.begin(requestctx.WithAssetID(ctx, assetID), "set custom value")
	return s.store.SetCustomValue(ctx, assetID, fieldID, value)
}

// CustomValues returns the custom values recorded for an asset.
func (s *Service) CustomValues(ctx context.Context, assetID int64) ([]assets.CustomValue, error) {
	ctx, _ = s.begin(requestctx.WithAssetID(ctx, assetID), "custom values")
	return s.store.CustomValues(ctx, assetID)
}
