package domain

import (
	"testing"
	"time"
)

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusSeen, StatusBought, StatusSoldout} {
		if !ValidStatus(s) {
			t.Fatalf("статус %q должен быть валидным", s)
		}
	}
	if ValidStatus("reserved") {
		t.Fatalf("неизвестный статус не должен проходить")
	}
}

func TestVocabularies(t *testing.T) {
	if !ValidCharacter("AngelBlue") || ValidCharacter("Totoro") {
		t.Fatalf("словарь персонажей нарушен")
	}
	if !ValidArea("Ikebukuro") || ValidArea("Osaka") {
		t.Fatalf("словарь районов нарушен")
	}
	if !ValidSlot("night") || ValidSlot("dawn") {
		t.Fatalf("словарь слотов нарушен")
	}
	if !ValidStickerType("TileSeal") || ValidStickerType("Foil") {
		t.Fatalf("словарь наклеек нарушен")
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	cases := []struct {
		offset time.Duration
		want   string
	}{
		{-30 * time.Second, "just now"},
		{-5 * time.Minute, "5m ago"},
		{-3 * time.Hour, "3h ago"},
	}
	for _, tc := range cases {
		ts := now.Add(tc.offset)
		if got := RelativeTime(&ts, now); got != tc.want {
			t.Fatalf("ожидали %q, получили %q", tc.want, got)
		}
	}
	old := now.Add(-48 * time.Hour)
	if got := RelativeTime(&old, now); got != "3/12 15:00" {
		t.Fatalf("старые события форматируются датой: %q", got)
	}
	if got := RelativeTime(nil, now); got != "" {
		t.Fatalf("nil время даёт пустую строку: %q", got)
	}
}
