package assets_test

import (
	"context"
	"errors"
	"testing"

	"assetvault/internal/assets"
	"assetvault/internal/testsupport"
)

func TestDefineAndListFields(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if _, err := store.DefineField(ctx, "region", assets.FieldText); err != nil {
		t.Fatalf("DefineField failed: %v", err)
	}
	if _, err := store.DefineField(ctx, "budget", assets.FieldNumber); err != nil {
		t.Fatalf("DefineField failed: %v", err)
	}
	if _, err := store.DefineField(ctx, "region", assets.FieldDate); !errors.Is(err, assets.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate name, got %v", err)
	}
	if _, err := store.DefineField(ctx, "colour", "rgb"); !errors.Is(err, assets.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown type, got %v", err)
	}

	fields, err := store.Fields(ctx)
	if err != nil {
		t.Fatalf("Fields failed: %v", err)
	}
	if len(fields) != 2 || fields[0].Name != "budget" || fields[1].Type != assets.FieldText {
		t.Fatalf("unexpected fields: %+v", fields)
	}
}

func TestSetCustomValueValidatesType(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	asset := testsupport.NewAsset(t, store, "a.png")

	number, _ := store.DefineField(ctx, "budget", assets.FieldNumber)
	date, _ := store.DefineField(ctx, "launch", assets.FieldDate)
	flag, _ := store.DefineField(ctx, "approved", assets.FieldBoolean)

	tests := []struct {
		field *assets.CustomField
		value string
		ok    bool
	}{
		{number, "12.50", true},
		{number, "lots", false},
		{date, "2024-02-29", true},
		{date, "29/02/2024", false},
		{flag, "TRUE", true},
		{flag, "maybe", false},
	}
	for _, tt := range tests {
		err := store.SetCustomValue(ctx, asset.ID, tt.field.ID, ptr(tt.value))
		if tt.ok && err != nil {
			t.Fatalf("%s=%q: unexpected error %v", tt.field.Name, tt.value, err)
		}
		if !tt.ok && !errors.Is(err, assets.ErrInvalidInput) {
			t.Fatalf("%s=%q: expected ErrInvalidInput, got %v", tt.field.Name, tt.value, err)
		}
	}

	values, err := store.CustomValues(ctx, asset.ID)
	if err != nil {
		t.Fatalf("CustomValues failed: %v", err)
	}
	got := make(map[string]string)
	for _, v := range values {
		got[v.FieldName] = *v.Value
	}
	want := map[string]string{"budget": "12.5", "launch": "2024-02-29", "approved": "true"}
	for name, value := range want {
		if got[name] != value {
			t.Fatalf("%s = %q, want %q", name, got[name], value)
		}
	}

	if err := store.SetCustomValue(ctx, 999, number.ID, ptr("1")); !errors.Is(err, assets.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing asset, got %v", err)
	}
	if err := store.SetCustomValue(ctx, asset.ID, 999, ptr("1")); !errors.Is(err, assets.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing field, got %v", err)
	}
}

func TestCustomValuesCascade(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	asset := testsupport.NewAsset(t, store, "a.png")
	field, err := store.DefineField(ctx, "region", assets.FieldText)
	if err != nil {
		t.Fatalf("DefineField failed: %v", err)
	}
	if err := store.SetCustomValue(ctx, asset.ID, field.ID, ptr("EMEA")); err != nil {
		t.Fatalf("SetCustomValue failed: %v", err)
	}
	if err := store.SetCustomValue(ctx, asset.ID, field.ID, nil); err != nil {
		t.Fatalf("SetCustomValue nil failed: %v", err)
	}
	values, _ := store.CustomValues(ctx, asset.ID)
	if len(values) != 1 || values[0].Value != nil {
		t.Fatalf("expected one NULL value after upsert, got %+v", values)
	}

	if _, err := store.Delete(ctx, asset.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	values, err = store.CustomValues(ctx, asset.ID)
	if err != nil {
		t.Fatalf("CustomValues failed: %v", err)
	}
	if len(values) != 0 {
		t.Fatalf("expected values removed with asset, got %+v", values)
	}

	other := testsupport.NewAsset(t, store, "b.png")
	if err := store.SetCustomValue(ctx, other.ID, field.ID, ptr("APAC")); err != nil {
		t.Fatalf("SetCustomValue failed: %v", err)
	}
	if err := store.DeleteField(ctx, field.ID); err != nil {
		t.Fatalf("DeleteField failed: %v", err)
	}
	if values, _ := store.CustomValues(ctx, other.ID); len(values) != 0 {
		t.Fatalf("expected values removed with field, got %+v", values)
	}
	if err := store.DeleteField(ctx, field.ID); !errors.Is(err, assets.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
