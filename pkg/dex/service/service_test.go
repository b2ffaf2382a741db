package service

import (
	"context"
	"errors"
	"testing"

	"github.com/pekdex/dexcore/config"
	"github.com/pekdex/dexcore/pkg/dex/model"
	"github.com/shopspring/decimal"
)

type fakeOrderRepo struct {
	orders []*model.Order
}

func (r *fakeOrderRepo) Insert(ctx context.Context, order *model.Order) (int64, error) {
	order.ID = int64(len(r.orders) + 1)
	r.orders = append(r.orders, order)
	return order.ID, nil
}

func (r *fakeOrderRepo) Import(ctx context.Context, order *model.Order) (bool, error) {
	r.orders = append(r.orders, order)
	return true, nil
}

func (r *fakeOrderRepo) SyncIDSequence(ctx context.Context) error {
	return nil
}

func (r *fakeOrderRepo) ListPendingPairs(ctx context.Context) ([]model.Pair, error) {
	return nil, nil
}

func (r *fakeOrderRepo) ListPending(ctx context.Context, base, quote string, side model.OrderSide) ([]*model.Order, error) {
	return nil, nil
}

func (r *fakeOrderRepo) ApplyFill(ctx context.Context, orderID int64, newQuantity decimal.Decimal, status model.OrderStatus) error {
	return nil
}

func (r *fakeOrderRepo) ListAll(ctx context.Context, account string) ([]*model.Order, error) {
	if account == "" {
		return r.orders, nil
	}
	var out []*model.Order
	for _, o := range r.orders {
		if o.Account == account {
			out = append(out, o)
		}
	}
	return out, nil
}

type fakeConfigRepo struct {
	cfg *model.BackupConfig
}

func (r *fakeConfigRepo) Save(ctx context.Context, cfg *model.BackupConfig) error {
	r.cfg = cfg
	return nil
}

func (r *fakeConfigRepo) Load(ctx context.Context) (*model.BackupConfig, error) {
	return r.cfg, nil
}

func (r *fakeConfigRepo) Erase(ctx context.Context) error {
	r.cfg = nil
	return nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestDex(orders *fakeOrderRepo, configs *fakeConfigRepo) *Dex {
	routes := config.NewAccountRoutes(map[string]string{
		"SWAP.HBD": "peakecoin",
	}, "peakecoin.matic")
	return NewDex(orders, configs, routes, nil, nil, nil, 0)
}

func validInput() CreateOrderInput {
	return CreateOrderInput{
		Account:  "alice",
		Base:     "pek",
		Quote:    "swap.hive",
		Quantity: dec("5"),
		Price:    dec("9.5"),
		Side:     "BUY",
	}
}

func TestCreateOrderNormalizesFields(t *testing.T) {
	orders := &fakeOrderRepo{}
	d := newTestDex(orders, &fakeConfigRepo{})

	id, err := d.CreateOrder(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if id != 1 {
		t.Errorf("expected id 1, got %d", id)
	}

	o := orders.orders[0]
	if o.Base != "PEK" || o.Quote != "SWAP.HIVE" {
		t.Errorf("pair not uppercased: %s:%s", o.Base, o.Quote)
	}
	if o.Side != model.OrderSideBuy {
		t.Errorf("side not normalized: %s", o.Side)
	}
	if o.Status != model.OrderStatusPending {
		t.Errorf("new orders must start pending, got %s", o.Status)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	d := newTestDex(&fakeOrderRepo{}, &fakeConfigRepo{})

	cases := []struct {
		name   string
		mutate func(*CreateOrderInput)
		want   error
	}{
		{"missing base", func(in *CreateOrderInput) { in.Base = " " }, ErrMissingField},
		{"missing quote", func(in *CreateOrderInput) { in.Quote = "" }, ErrMissingField},
		{"bad side", func(in *CreateOrderInput) { in.Side = "hold" }, ErrInvalidSide},
		{"zero quantity", func(in *CreateOrderInput) { in.Quantity = decimal.Zero }, ErrInvalidQuantity},
		{"negative quantity", func(in *CreateOrderInput) { in.Quantity = dec("-1") }, ErrInvalidQuantity},
		{"zero price", func(in *CreateOrderInput) { in.Price = decimal.Zero }, ErrInvalidPrice},
	}

	for _, tc := range cases {
		in := validInput()
		tc.mutate(&in)
		if _, err := d.CreateOrder(context.Background(), in); !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestCreateOrderRoutesEmptyAccount(t *testing.T) {
	orders := &fakeOrderRepo{}
	d := newTestDex(orders, &fakeConfigRepo{})

	in := validInput()
	in.Account = ""
	in.Quote = "SWAP.HBD"
	if _, err := d.CreateOrder(context.Background(), in); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if orders.orders[0].Account != "peakecoin" {
		t.Errorf("expected routed account peakecoin, got %s", orders.orders[0].Account)
	}

	in = validInput()
	in.Account = ""
	in.Quote = "SWAP.LTC"
	if _, err := d.CreateOrder(context.Background(), in); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if orders.orders[1].Account != "peakecoin.matic" {
		t.Errorf("unmapped quote must use the default account, got %s", orders.orders[1].Account)
	}
}

func TestListOrdersFiltersByAccount(t *testing.T) {
	orders := &fakeOrderRepo{}
	d := newTestDex(orders, &fakeConfigRepo{})

	in := validInput()
	if _, err := d.CreateOrder(context.Background(), in); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	in.Account = "bob"
	if _, err := d.CreateOrder(context.Background(), in); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	got, err := d.ListOrders(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(got) != 1 || got[0].Account != "alice" {
		t.Errorf("expected only alice's order, got %d orders", len(got))
	}
}

func TestBackupConfigRoundTrip(t *testing.T) {
	configs := &fakeConfigRepo{}
	d := newTestDex(&fakeOrderRepo{}, configs)

	if err := d.SetBackupConfig(context.Background(), "backup.example.com", "u", ""); !errors.Is(err, ErrMissingField) {
		t.Fatalf("blank password must be rejected, got %v", err)
	}

	if err := d.SetBackupConfig(context.Background(), "backup.example.com", "u", "secret"); err != nil {
		t.Fatalf("SetBackupConfig: %v", err)
	}

	cfg, err := d.GetBackupConfig(context.Background())
	if err != nil {
		t.Fatalf("GetBackupConfig: %v", err)
	}
	if cfg.Host != "backup.example.com" || cfg.User != "u" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Password != "" {
		t.Errorf("password must never be returned")
	}

	if err := d.EraseBackupConfig(context.Background()); err != nil {
		t.Fatalf("EraseBackupConfig: %v", err)
	}
	cfg, err = d.GetBackupConfig(context.Background())
	if err != nil {
		t.Fatalf("GetBackupConfig after erase: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil config after erase, got %+v", cfg)
	}
}

func TestBackupOpsWithoutBackupReturnError(t *testing.T) {
	d := newTestDex(&fakeOrderRepo{}, &fakeConfigRepo{})
	ctx := context.Background()

	if err := d.BackupNow(ctx); !errors.Is(err, ErrBackupUnavailable) {
		t.Errorf("BackupNow without backup: expected ErrBackupUnavailable, got %v", err)
	}
	if _, err := d.ImportFromBackup(ctx); !errors.Is(err, ErrBackupUnavailable) {
		t.Errorf("ImportFromBackup without backup: expected ErrBackupUnavailable, got %v", err)
	}
	if err := d.EraseBackup(ctx); !errors.Is(err, ErrBackupUnavailable) {
		t.Errorf("EraseBackup without backup: expected ErrBackupUnavailable, got %v", err)
	}
}

func TestValidateAccountWithoutValidatorFailsClosed(t *testing.T) {
	d := newTestDex(&fakeOrderRepo{}, &fakeConfigRepo{})
	if d.ValidateAccount(context.Background(), "anyone") {
		t.Errorf("missing validator must fail closed")
	}
}
