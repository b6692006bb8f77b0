package backend

import (
	"encoding/json"
	"testing"
)

func TestSlotUnmarshal_TimestampVariants(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantDay string
	}{
		{"rfc3339", `{"id":1,"debut":"2025-06-01T09:00:00Z"}`, "2025-06-01"},
		{"no seconds", `{"id":2,"debut":"2025-06-01T14:00Z"}`, "2025-06-01"},
		{"offset preserved", `{"id":3,"debut":"2025-06-02T00:30:00+02:00"}`, "2025-06-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Slot
			if err := json.Unmarshal([]byte(tt.payload), &s); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := s.Start.Format("2006-01-02"); got != tt.wantDay {
				t.Fatalf("day = %s, want %s", got, tt.wantDay)
			}
		})
	}
}

func TestSlotUnmarshal_BadTimestamp(t *testing.T) {
	var s Slot
	if err := json.Unmarshal([]byte(`{"id":1,"debut":"demain matin"}`), &s); err == nil {
		t.Fatal("expected error for unparseable start")
	}
}
