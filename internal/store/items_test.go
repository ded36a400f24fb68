package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
)

func testUserID(t *testing.T, database *sql.DB, email string) int64 {
	t.Helper()
	u, err := CreateUser(context.Background(), database, "Test User", email, "hash", model.RoleUser)
	if err != nil {
		t.Fatalf("creating test user: %v", err)
	}
	return u.ID
}

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	userID := testUserID(t, database, "maja@example.com")

	item, err := CreateItem(ctx, database, "Umbrella", "Black, wooden handle", "Library", userID)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.Name != "Umbrella" {
		t.Errorf("expected name 'Umbrella', got %q", item.Name)
	}
	if item.Status != model.ItemStatusAvailable {
		t.Errorf("expected status 'available', got %q", item.Status)
	}
	if item.Location != "Library" {
		t.Errorf("expected location 'Library', got %q", item.Location)
	}

	missing, err := GetItem(ctx, database, item.ID+1)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing item")
	}
}

func TestListItemsSearchAndStatus(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	userID := testUserID(t, database, "maja@example.com")

	CreateItem(ctx, database, "Red Umbrella", "", "Library", userID)
	keys, _ := CreateItem(ctx, database, "Keys", "on a red strap", "Parking lot", userID)
	CreateItem(ctx, database, "Notebook", "", "Cafeteria", userID)
	SetItemStatus(ctx, database, keys.ID, model.ItemStatusClaimed)

	all, err := ListItems(ctx, database, "", "")
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 items, got %d", len(all))
	}
	// Newest first.
	if all[0].Name != "Notebook" {
		t.Errorf("expected newest item first, got %q", all[0].Name)
	}
	if all[0].CreatorName != "Test User" {
		t.Errorf("expected creator name joined in, got %q", all[0].CreatorName)
	}

	red, _ := ListItems(ctx, database, "red", "")
	if len(red) != 2 {
		t.Errorf("expected 2 items matching 'red', got %d", len(red))
	}

	claimed, _ := ListItems(ctx, database, "", model.ItemStatusClaimed)
	if len(claimed) != 1 {
		t.Errorf("expected 1 claimed item, got %d", len(claimed))
	}

	both, _ := ListItems(ctx, database, "red", model.ItemStatusClaimed)
	if len(both) != 1 || both[0].ID != keys.ID {
		t.Errorf("expected only the claimed red item, got %v", both)
	}
}

func TestMarkItemClaimedConditional(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	userID := testUserID(t, database, "maja@example.com")

	item, _ := CreateItem(ctx, database, "Wallet", "", "", userID)

	flipped, err := MarkItemClaimed(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("MarkItemClaimed: %v", err)
	}
	if !flipped {
		t.Fatal("expected first flip to succeed")
	}

	// Already claimed: the conditional write must refuse.
	flipped, err = MarkItemClaimed(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("MarkItemClaimed: %v", err)
	}
	if flipped {
		t.Error("expected second flip to be refused")
	}

	// Missing item: also refused.
	flipped, _ = MarkItemClaimed(ctx, database, item.ID+1)
	if flipped {
		t.Error("expected flip of missing item to be refused")
	}
}

func TestReleaseItemsWithoutClaims(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	userID := testUserID(t, database, "maja@example.com")

	orphaned, _ := CreateItem(ctx, database, "Orphaned", "", "", userID)
	held, _ := CreateItem(ctx, database, "Held", "", "", userID)
	SetItemStatus(ctx, database, orphaned.ID, model.ItemStatusClaimed)
	SetItemStatus(ctx, database, held.ID, model.ItemStatusClaimed)
	CreateClaim(ctx, database, held.ID, model.Identity{UserID: userID, Name: "Test User", Email: "maja@example.com"})

	n, err := ReleaseItemsWithoutClaims(ctx, database)
	if err != nil {
		t.Fatalf("ReleaseItemsWithoutClaims: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 item released, got %d", n)
	}

	got, _ := GetItem(ctx, database, orphaned.ID)
	if got.Status != model.ItemStatusAvailable {
		t.Errorf("expected orphaned item released, got %q", got.Status)
	}
	got, _ = GetItem(ctx, database, held.ID)
	if got.Status != model.ItemStatusClaimed {
		t.Errorf("expected held item untouched, got %q", got.Status)
	}
}

func TestItemImage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	userID := testUserID(t, database, "maja@example.com")

	item, _ := CreateItem(ctx, database, "Photo Item", "", "", userID)
	imageData := []byte("fake image data")
	SetItemImage(ctx, database, item.ID, imageData, "image/jpeg")

	data, mime, err := GetItemImage(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItemImage: %v", err)
	}
	if string(data) != "fake image data" {
		t.Errorf("expected image data, got %q", string(data))
	}
	if mime != "image/jpeg" {
		t.Errorf("expected mime 'image/jpeg', got %q", mime)
	}
}
