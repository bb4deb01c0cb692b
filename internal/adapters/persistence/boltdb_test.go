package persistence

import (
	"path/filepath"
	"testing"

	boltdb "github.com/andrew-solarstorm/bolt-db"

	"github.com/spreadlabs/spread-engine/internal/domain"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spread-engine-test.db")
	db := boltdb.NewBoltDatabase(path)
	if db == nil {
		t.Fatalf("failed to open test database at %s", path)
	}
	s := &Storage{db: db, dbPath: path}
	t.Cleanup(func() { s.Stop() })
	return s
}

func TestInstanceIDStable(t *testing.T) {
	raw := []byte(`{"orders":{},"amms":{}}`)
	a := InstanceID(raw)
	b := InstanceID(raw)
	if a != b {
		t.Errorf("same bytes produced different ids: %s vs %s", a, b)
	}
	if len(a) != 16 {
		t.Errorf("id length = %d, want 16", len(a))
	}
	if c := InstanceID([]byte(`{"orders":{},"amms":{"1":{}}}`)); c == a {
		t.Error("different bytes produced the same id")
	}
}

func TestInstanceRoundTrip(t *testing.T) {
	s := newTestStorage(t)

	raw := []byte(`{"orders":{"0":{"sell_token":"A","buy_token":"C","sell_amount":"1000","buy_amount":"900","allow_partial_fill":false,"is_sell_order":true}},"amms":{"1":{"reserves":{"A":"10000","C":"10000"}}}}`)
	id := InstanceID(raw)

	if err := s.SaveInstance(id, raw); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	doc, err := s.LoadInstance(id)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if doc == nil {
		t.Fatal("stored instance not found")
	}
	if len(doc.Orders) != 1 || len(doc.Amms) != 1 {
		t.Fatalf("got %d orders, %d amms", len(doc.Orders), len(doc.Amms))
	}
	if doc.Orders["0"].SellToken != "A" || doc.Amms["1"].Reserves["C"] != "10000" {
		t.Error("document fields did not survive the round trip")
	}

	ids, err := s.ListInstanceIDs()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != id {
		t.Errorf("listed ids = %v, want [%s]", ids, id)
	}
}

func TestLoadUnknownInstance(t *testing.T) {
	s := newTestStorage(t)
	doc, err := s.LoadInstance("0000000000000000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc != nil {
		t.Error("unknown id should yield nil document")
	}
}

func TestSolutionRoundTrip(t *testing.T) {
	s := newTestStorage(t)

	in := &domain.ResultDoc{
		Amms: map[string]domain.AmmResultDoc{
			"1": {
				SellToken:      "C",
				BuyToken:       "A",
				ExecSellAmount: "909",
				ExecBuyAmount:  "1000",
			},
		},
		Orders: map[string]domain.OrderResultDoc{
			"0": {
				OrderDoc: domain.OrderDoc{
					SellToken:   "A",
					BuyToken:    "C",
					SellAmount:  "1000",
					BuyAmount:   "900",
					IsSellOrder: true,
				},
				ExecSellAmount: "1000",
				ExecBuyAmount:  "909",
				Status:         "solved",
			},
		},
	}

	if err := s.SaveSolution("abc123", in); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	out, err := s.LoadSolution("abc123")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if out == nil {
		t.Fatal("stored solution not found")
	}
	if out.Orders["0"].Status != "solved" || out.Orders["0"].ExecBuyAmount != "909" {
		t.Error("order result did not survive the round trip")
	}
	if out.Amms["1"].SellToken != "C" {
		t.Error("amm result did not survive the round trip")
	}

	// unsolved id
	missing, err := s.LoadSolution("ffffffffffffffff")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Error("unknown id should yield nil solution")
	}
}
