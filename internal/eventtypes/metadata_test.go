package eventtypes

import (
	"encoding/json"
	"testing"

	"github.com/openmeet/backend/internal/models"
)

func TestDecodeMetadata(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     json.RawMessage
		wantErr bool
		check   func(t *testing.T, meta *models.EventTypeMetadata)
	}{
		{
			name: "nil blob decodes to empty metadata",
			raw:  nil,
			check: func(t *testing.T, meta *models.EventTypeMetadata) {
				if meta == nil {
					t.Fatal("expected non-nil metadata")
				}
			},
		},
		{
			name: "json null decodes to empty metadata",
			raw:  json.RawMessage(`null`),
		},
		{
			name: "empty object",
			raw:  json.RawMessage(`{}`),
		},
		{
			name: "valid metadata",
			raw:  json.RawMessage(`{"multipleDuration":[15,30,60],"requiresConfirmationThreshold":{"time":30,"unit":"minutes"}}`),
			check: func(t *testing.T, meta *models.EventTypeMetadata) {
				if len(meta.MultipleDuration) != 3 {
					t.Errorf("MultipleDuration = %v, want 3 entries", meta.MultipleDuration)
				}
				if meta.RequiresConfirmationThreshold == nil || meta.RequiresConfirmationThreshold.Unit != "minutes" {
					t.Errorf("threshold = %+v", meta.RequiresConfirmationThreshold)
				}
			},
		},
		{
			name:    "malformed json",
			raw:     json.RawMessage(`{`),
			wantErr: true,
		},
		{
			name:    "wrong type",
			raw:     json.RawMessage(`{"multipleDuration":"15"}`),
			wantErr: true,
		},
		{
			name:    "zero duration rejected",
			raw:     json.RawMessage(`{"multipleDuration":[15,0]}`),
			wantErr: true,
		},
		{
			name:    "duration over a day rejected",
			raw:     json.RawMessage(`{"multipleDuration":[1441]}`),
			wantErr: true,
		},
		{
			name:    "unknown threshold unit rejected",
			raw:     json.RawMessage(`{"requiresConfirmationThreshold":{"time":10,"unit":"days"}}`),
			wantErr: true,
		},
		{
			name:    "zero threshold time rejected",
			raw:     json.RawMessage(`{"requiresConfirmationThreshold":{"time":0,"unit":"hours"}}`),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			meta, err := DecodeMetadata(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", meta)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeMetadata: %v", err)
			}
			if tt.check != nil {
				tt.check(t, meta)
			}
		})
	}
}

func TestSortForDisplay(t *testing.T) {
	t.Parallel()

	evts := []models.EventType{
		{ID: 3, Position: 0},
		{ID: 1, Position: 5},
		{ID: 4, Position: 5},
		{ID: 2, Position: 9},
	}
	SortForDisplay(evts)

	wantIDs := []int64{2, 1, 4, 3}
	for i, want := range wantIDs {
		if evts[i].ID != want {
			t.Fatalf("order = %v, want ids %v", evts, wantIDs)
		}
	}
}
