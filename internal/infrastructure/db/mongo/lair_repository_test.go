package mongo

import (
	"testing"
	"time"

	"github.com/lairbnb/lairs-api/internal/core/domain"
)

func TestLairDocument_Conversion(t *testing.T) {
	lair := &domain.Lair{
		ID:          domain.NewIdentity(),
		OwnerID:     domain.NewIdentity(),
		Title:       "Cave",
		Description: "Damp",
		Image:       "cave.png",
		Location:    domain.Coordinates{Lat: 1, Lon: 2},
		CreatedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	doc := toLairDocument(lair)
	if doc.ID != lair.ID.String() || doc.OwnerID != lair.OwnerID.String() {
		t.Fatalf("ids not stored as strings: %+v", doc)
	}

	back, err := doc.toDomain()
	if err != nil {
		t.Fatalf("toDomain: %v", err)
	}
	if *back != *lair {
		t.Fatalf("expected %+v, got %+v", lair, back)
	}
}

func TestLairDocument_RejectsCorruptIDs(t *testing.T) {
	doc := lairDocument{ID: "not-a-uuid", OwnerID: domain.NewIdentity().String()}
	if _, err := doc.toDomain(); err == nil {
		t.Fatalf("expected error for corrupt id")
	}

	doc = lairDocument{ID: domain.NewIdentity().String(), OwnerID: ""}
	if _, err := doc.toDomain(); err == nil {
		t.Fatalf("expected error for corrupt owner")
	}
}
