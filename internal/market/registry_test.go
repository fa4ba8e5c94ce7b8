package market

import (
	"strings"
	"testing"
)

func TestIdentifyByNameAndUUID(t *testing.T) {
	r := NewRegistry(nil)
	s := r.Create("General Goods", "alice")
	r.Create("Smithy", "bob")

	got, err := r.Identify("general goods")
	if err != nil || got != s {
		t.Fatalf("identify by name: got %v err %v", got, err)
	}
	got, err = r.Identify(strings.ToUpper(s.ID().String()))
	if err != nil || got != s {
		t.Fatalf("identify by uuid: got %v err %v", got, err)
	}
}

func TestIdentifyUnknownTokenIsEmptyResult(t *testing.T) {
	r := NewRegistry(nil)
	r.Create("Smithy", "")
	got, err := r.Identify("bakery")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no match, got %v", got)
	}
}

func TestIdentifyAmbiguousAndCompound(t *testing.T) {
	r := NewRegistry(nil)
	a := r.Create("Smithy", "alice")
	b := r.Create("Smithy", "bob")

	if _, err := r.Identify("smithy"); err != ErrAmbiguousStore {
		t.Fatalf("expected ambiguity error, got %v", err)
	}

	got, err := r.Identify("Smithy~" + a.ID().String())
	if err != nil || got != a {
		t.Fatalf("compound a: got %v err %v", got, err)
	}
	got, err = r.Identify("smithy~" + b.ID().String())
	if err != nil || got != b {
		t.Fatalf("compound b: got %v err %v", got, err)
	}

	// Compound form with a mismatching half matches nothing.
	got, err = r.Identify("Bakery~" + a.ID().String())
	if err != nil || got != nil {
		t.Fatalf("expected no match for mismatching compound, got %v err %v", got, err)
	}
}

func TestGlobalDefaultMasksPerWorld(t *testing.T) {
	r := NewRegistry(nil)
	perWorld := r.Create("Overworld Depot", "")
	global := r.Create("Hub", "")

	r.SetDefault(WorldOf("overworld"), perWorld)
	if got := r.ResolveDefault(WorldOf("overworld")); got != perWorld {
		t.Fatalf("per-world default: got %v", got)
	}
	if got := r.ResolveDefault(WorldOf("nether")); got != nil {
		t.Fatalf("expected no default for other world, got %v", got)
	}

	r.SetDefault(GlobalKey(), global)
	for _, w := range []string{"overworld", "nether", "the_end"} {
		if got := r.ResolveDefault(WorldOf(w)); got != global {
			t.Fatalf("global default should mask %s, got %v", w, got)
		}
	}
}

func TestSetDefaultNotifiesSink(t *testing.T) {
	sink := &recordingSink{}
	r := NewRegistry(sink)
	s := r.Create("Hub", "")
	r.SetDefault(WorldOf("overworld"), s)
	r.SetDefault(GlobalKey(), s)

	if len(sink.calls) != 2 {
		t.Fatalf("expected 2 sink calls, got %d", len(sink.calls))
	}
	if sink.calls[0].key != WorldOf("overworld") || sink.calls[0].storeID != s.ID().String() {
		t.Fatalf("unexpected first call: %+v", sink.calls[0])
	}
	if !sink.calls[1].key.IsGlobal() {
		t.Fatalf("expected global key in second call")
	}
}

type sinkCall struct {
	key     WorldKey
	storeID string
}

type recordingSink struct{ calls []sinkCall }

func (r *recordingSink) SaveDefault(key WorldKey, storeID string) error {
	r.calls = append(r.calls, sinkCall{key: key, storeID: storeID})
	return nil
}

func TestRemoveClearsDefaults(t *testing.T) {
	r := NewRegistry(nil)
	a := r.Create("A", "")
	b := r.Create("B", "")
	r.SetDefault(WorldOf("overworld"), a)
	r.SetDefault(GlobalKey(), a)
	r.SetDefault(WorldOf("nether"), b)

	r.Remove(a)

	if got, _ := r.Identify("A"); got != nil {
		t.Fatalf("expected store gone from registry")
	}
	if got := r.ResolveDefault(WorldOf("overworld")); got != nil {
		t.Fatalf("expected default entries for removed store cleared, got %v", got)
	}
	if got := r.ResolveDefault(WorldOf("nether")); got != b {
		t.Fatalf("expected unrelated default kept, got %v", got)
	}
	if n := len(r.Stores()); n != 1 {
		t.Fatalf("stores: got %d want 1", n)
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	r := NewRegistry(nil)
	a := r.Create("A", "alice")
	a.AddItemWithPrices("PLANK", 64, 256, dec("1.5"), dec("0.5"))
	a.AddFunds(dec("12.75"))
	a.SetInfiniteStock(true)
	b := r.Create("B", "")
	b.SetInfiniteFunds(true)
	r.SetDefault(GlobalKey(), a)
	r.SetDefault(WorldOf("nether"), b)

	fresh := NewRegistry(nil)
	fresh.Restore(r.Snapshot())

	stores := fresh.Stores()
	if len(stores) != 2 {
		t.Fatalf("stores: got %d want 2", len(stores))
	}
	ra := stores[0]
	if ra.ID() != a.ID() || ra.Name() != "A" || ra.Owner() != "alice" {
		t.Fatalf("store identity lost: %v %s %s", ra.ID(), ra.Name(), ra.Owner())
	}
	if !ra.Balance().Equal(dec("12.75")) || !ra.InfiniteStock() {
		t.Fatalf("store attributes lost: balance=%s", ra.Balance())
	}
	e, ok := ra.Entry("PLANK")
	if !ok || e.Quantity != 64 || e.MaxQuantity != 256 || !e.BuyPrice.Equal(dec("1.5")) {
		t.Fatalf("catalog lost: %+v ok=%v", e, ok)
	}
	if got := fresh.ResolveDefault(WorldOf("anything")); got == nil || got.ID() != a.ID() {
		t.Fatalf("global default lost")
	}
}
