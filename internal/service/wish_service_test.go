package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"eventsite/internal/domains"
)

func newWishFixture(settings domains.MicrositeSettings) (*WishService, *mockWishes, domains.SiteRef) {
	ref := domains.SiteRef{
		Kind: domains.SiteKindSite, ID: uuid.New(), UserID: uuid.New(),
		Slug: "our-day", Status: domains.MicrositeStatusPublished, Settings: settings,
	}
	wishes := &mockWishes{}
	scope := &mockScope{refs: map[uuid.UUID]domains.SiteRef{ref.ID: ref}}
	return NewWishService(wishes, scope), wishes, ref
}

func seedWishes(t *testing.T, w *mockWishes, ref domains.SiteRef, n int, status domains.WishStatus) []domains.Wish {
	t.Helper()
	out := make([]domains.Wish, 0, n)
	for i := 0; i < n; i++ {
		wish, err := w.SaveWish(context.Background(), domains.WishToSave{Ref: ref, Name: "Guest", Message: "Congrats", Status: status})
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, wish)
	}
	return out
}

func TestToggleHighlightCap(t *testing.T) {
	svc, wishes, ref := newWishFixture(domains.DefaultSettings())
	seeded := seedWishes(t, wishes, ref, 4, domains.WishStatusApproved)
	ctx := context.Background()

	for _, w := range seeded[:3] {
		got, err := svc.ToggleHighlight(ctx, ref.UserID, ref.ID, w.ID)
		if err != nil {
			t.Fatalf("failed to highlight: %v", err)
		}
		if !got.IsHighlighted {
			t.Error("wish should be highlighted")
		}
	}

	_, err := svc.ToggleHighlight(ctx, ref.UserID, ref.ID, seeded[3].ID)
	if !errors.Is(err, ErrHighlightLimit) {
		t.Fatalf("expected ErrHighlightLimit, got %v", err)
	}
	if err.Error() != "Maximum of 3 highlighted wishes reached" {
		t.Errorf("message = %q", err.Error())
	}

	got, err := svc.ToggleHighlight(ctx, ref.UserID, ref.ID, seeded[0].ID)
	if err != nil {
		t.Fatalf("removing a highlight should always work: %v", err)
	}
	if got.IsHighlighted {
		t.Error("wish should no longer be highlighted")
	}
	if _, err := svc.ToggleHighlight(ctx, ref.UserID, ref.ID, seeded[3].ID); err != nil {
		t.Errorf("highlight after freeing a slot: %v", err)
	}
}

func TestModerateWish(t *testing.T) {
	svc, wishes, ref := newWishFixture(domains.DefaultSettings())
	w := seedWishes(t, wishes, ref, 1, domains.WishStatusPending)[0]
	ctx := context.Background()

	if _, err := svc.ModerateWish(ctx, ref.UserID, ref.ID, w.ID, "hidden"); err == nil {
		t.Error("invalid status should be rejected")
	}
	got, err := svc.ModerateWish(ctx, ref.UserID, ref.ID, w.ID, domains.WishStatusApproved)
	if err != nil {
		t.Fatalf("failed to moderate: %v", err)
	}
	if got.Status != domains.WishStatusApproved {
		t.Errorf("status = %s", got.Status)
	}
	if _, err := svc.ModerateWish(ctx, uuid.New(), ref.ID, w.ID, domains.WishStatusRejected); !errors.Is(err, ErrSiteNotFound) {
		t.Errorf("expected ErrSiteNotFound for another user, got %v", err)
	}
	if err := svc.DeleteWish(ctx, ref.UserID, ref.ID, uuid.New()); !errors.Is(err, ErrWishNotFound) {
		t.Errorf("expected ErrWishNotFound, got %v", err)
	}
}

func TestListPublicWishes(t *testing.T) {
	svc, wishes, ref := newWishFixture(domains.DefaultSettings())
	seedWishes(t, wishes, ref, 2, domains.WishStatusApproved)
	seedWishes(t, wishes, ref, 1, domains.WishStatusPending)

	page, err := svc.ListPublicWishes(context.Background(), domains.SiteKindSite, "our-day", 0, 0)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("total = %d, want 2", page.Total)
	}
	if _, err := svc.ListPublicWishes(context.Background(), domains.SiteKindMicrosite, "our-day", 1, 10); !errors.Is(err, ErrSiteNotPublished) {
		t.Errorf("expected ErrSiteNotPublished, got %v", err)
	}

	settings := domains.DefaultSettings()
	settings.EnableWishes = false
	svc, wishes, ref = newWishFixture(settings)
	seedWishes(t, wishes, ref, 2, domains.WishStatusApproved)
	page, err = svc.ListPublicWishes(context.Background(), domains.SiteKindSite, "our-day", 1, 10)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if page.Total != 0 || page.Items == nil {
		t.Errorf("disabled wishes should give an empty page, got %+v", page)
	}
}
