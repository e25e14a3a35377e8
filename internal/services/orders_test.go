package services_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/stride/internal/models"
	"github.com/example/stride/internal/services"
)

func seedAddress(t *testing.T, db *gorm.DB, userID uuid.UUID) *models.Address {
	t.Helper()
	address := &models.Address{
		UserID:  userID,
		Name:    "Test User",
		HouseNo: "42B",
		AreaPin: "560001",
		State:   "Karnataka",
		Phone:   "9999999999",
	}
	require.NoError(t, db.Create(address).Error)
	return address
}

func seedProduct(t *testing.T, db *gorm.DB, name string, sellingPrice float64, returnable bool) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:         name,
		Brand:        "Nike",
		Category:     "running",
		CurrentPrice: sellingPrice * 1.2,
		SellingPrice: sellingPrice,
		ImageURLs:    []string{"https://cdn.example.com/" + name + ".jpg"},
		Sizes:        []string{"US8", "US9", "US10"},
		Features: models.ProductFeatures{
			CashOnDelivery:  true,
			SevenDayReturns: returnable,
		},
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func seedCart(t *testing.T, db *gorm.DB, userID uuid.UUID, entries ...models.CartItem) *models.Cart {
	t.Helper()
	cart := &models.Cart{}
	require.NoError(t, db.Where(models.Cart{UserID: userID}).FirstOrCreate(cart).Error)
	for i := range entries {
		entries[i].CartID = cart.ID
		require.NoError(t, db.Create(&entries[i]).Error)
	}
	return cart
}

func cartItemCount(t *testing.T, db *gorm.DB, cartID uuid.UUID) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("cart_id = ?", cartID).Count(&count).Error)
	return count
}

func TestPlaceOrderSnapshotsCartAndClearsIt(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewOrderService(db, 7, 7)

	user := seedUser(t, db, "buyer@example.com")
	seedAddress(t, db, user.ID)
	shoeA := seedProduct(t, db, "Shoe A", 999.00, true)
	cart := seedCart(t, db, user.ID,
		models.CartItem{ProductID: shoeA.ID, Quantity: 2, Size: "US9"},
	)

	order, err := svc.PlaceOrder(user.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusOrdered, order.Status)
	assert.InDelta(t, 1998.00, order.TotalAmount, 0.001)
	require.Len(t, order.Items, 1)

	item := order.Items[0]
	assert.Equal(t, shoeA.ID, item.ProductID)
	assert.Equal(t, "Shoe A", item.Name)
	assert.Equal(t, "Nike", item.Brand)
	assert.Equal(t, "US9", item.Size)
	assert.Equal(t, 2, item.Quantity)
	assert.InDelta(t, 999.00, item.SellingPrice, 0.001)
	assert.True(t, item.Features.SevenDayReturns)
	assert.False(t, item.ReturnRequested)

	wantDelivery := time.Now().AddDate(0, 0, 7)
	assert.Equal(t, wantDelivery.Format("2006-01-02"), order.DeliveryDate.Format("2006-01-02"))

	assert.Equal(t, "42B", order.ShippingAddress.HouseNo)
	assert.Equal(t, "560001", order.ShippingAddress.AreaPin)

	assert.Zero(t, cartItemCount(t, db, cart.ID), "cart must be emptied")

	var cartAfter models.Cart
	require.NoError(t, db.First(&cartAfter, "user_id = ?", user.ID).Error,
		"cart record itself survives placement")
}

func TestPlaceOrderMultipleItemsTotal(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewOrderService(db, 7, 7)

	user := seedUser(t, db, "buyer@example.com")
	seedAddress(t, db, user.ID)
	a := seedProduct(t, db, "Shoe A", 999.00, true)
	b := seedProduct(t, db, "Shoe B", 1250.50, false)
	seedCart(t, db, user.ID,
		models.CartItem{ProductID: a.ID, Quantity: 2, Size: "US9"},
		models.CartItem{ProductID: b.ID, Quantity: 1, Size: "US10"},
	)

	order, err := svc.PlaceOrder(user.ID, nil)
	require.NoError(t, err)
	assert.InDelta(t, 999.00*2+1250.50, order.TotalAmount, 0.001)
	assert.Len(t, order.Items, 2)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewOrderService(db, 7, 7)

	user := seedUser(t, db, "buyer@example.com")
	seedAddress(t, db, user.ID)

	// No cart at all.
	_, err := svc.PlaceOrder(user.ID, nil)
	assert.ErrorIs(t, err, services.ErrEmptyCart)

	// A cart with zero items behaves the same.
	seedCart(t, db, user.ID)
	_, err = svc.PlaceOrder(user.ID, nil)
	assert.ErrorIs(t, err, services.ErrEmptyCart)
}

func TestPlaceOrderAddressResolution(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewOrderService(db, 7, 7)

	user := seedUser(t, db, "buyer@example.com")
	product := seedProduct(t, db, "Shoe A", 999.00, true)
	seedCart(t, db, user.ID, models.CartItem{ProductID: product.ID, Quantity: 1, Size: "US8"})

	// No stored address.
	_, err := svc.PlaceOrder(user.ID, nil)
	assert.ErrorIs(t, err, services.ErrAddressNotFound)

	// An address owned by somebody else does not resolve.
	other := seedUser(t, db, "other@example.com")
	foreign := seedAddress(t, db, other.ID)
	_, err = svc.PlaceOrder(user.ID, &foreign.ID)
	assert.ErrorIs(t, err, services.ErrAddressNotFound)

	// An explicit own address does.
	own := seedAddress(t, db, user.ID)
	order, err := svc.PlaceOrder(user.ID, &own.ID)
	require.NoError(t, err)
	assert.Equal(t, own.HouseNo, order.ShippingAddress.HouseNo)
}

func TestOrderItemsFrozenAgainstCatalogEdits(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewOrderService(db, 7, 7)

	user := seedUser(t, db, "buyer@example.com")
	seedAddress(t, db, user.ID)
	product := seedProduct(t, db, "Shoe A", 999.00, true)
	seedCart(t, db, user.ID, models.CartItem{ProductID: product.ID, Quantity: 1, Size: "US8"})

	order, err := svc.PlaceOrder(user.ID, nil)
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{"selling_price": 1.00, "name": "Renamed"}).Error)

	reloaded, err := svc.Get(user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shoe A", reloaded.Items[0].Name)
	assert.InDelta(t, 999.00, reloaded.Items[0].SellingPrice, 0.001)
	assert.InDelta(t, 999.00, reloaded.TotalAmount, 0.001)
}

func placeTestOrder(t *testing.T, db *gorm.DB, svc *services.OrderService, userID uuid.UUID, returnable bool) *models.Order {
	t.Helper()
	product := seedProduct(t, db, "Shoe-"+uuid.NewString()[:8], 500.00, returnable)
	seedCart(t, db, userID, models.CartItem{ProductID: product.ID, Quantity: 1, Size: "US9"})
	order, err := svc.PlaceOrder(userID, nil)
	require.NoError(t, err)
	return order
}

func setOrderStatus(t *testing.T, db *gorm.DB, orderID uuid.UUID, status string) {
	t.Helper()
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", orderID).Update("status", status).Error)
}

func TestCancelOnlyFromOrdered(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewOrderService(db, 7, 7)

	user := seedUser(t, db, "buyer@example.com")
	seedAddress(t, db, user.ID)

	order := placeTestOrder(t, db, svc, user.ID, true)
	cancelled, err := svc.Cancel(user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancellationDate)

	// Cancelling again is an illegal transition.
	_, err = svc.Cancel(user.ID, order.ID)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	for _, status := range []string{
		models.OrderStatusShipping,
		models.OrderStatusOutForDelivery,
		models.OrderStatusDelivered,
		models.OrderStatusReturnRequested,
		models.OrderStatusReturned,
	} {
		other := placeTestOrder(t, db, svc, user.ID, true)
		setOrderStatus(t, db, other.ID, status)

		_, err := svc.Cancel(user.ID, other.ID)
		assert.ErrorIs(t, err, services.ErrInvalidTransition, "status %q", status)

		reloaded, err := svc.Get(user.ID, other.ID)
		require.NoError(t, err)
		assert.Equal(t, status, reloaded.Status, "status must be unchanged")
	}

	_, err = svc.Cancel(user.ID, uuid.New())
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
}

func TestRequestReturnHappyPath(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewOrderService(db, 7, 7)

	user := seedUser(t, db, "buyer@example.com")
	seedAddress(t, db, user.ID)

	order := placeTestOrder(t, db, svc, user.ID, true)
	setOrderStatus(t, db, order.ID, models.OrderStatusDelivered)

	now := order.DeliveryDate.Add(48 * time.Hour)
	updated, err := svc.RequestReturn(user.ID, order.ID, order.Items[0].ProductID, now)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusReturnRequested, updated.Status)
	require.NotNil(t, updated.ReturnRequestDate)
	assert.True(t, updated.Items[0].ReturnRequested)

	// A second request for the same item is rejected.
	_, err = svc.RequestReturn(user.ID, order.ID, order.Items[0].ProductID, now)
	assert.ErrorIs(t, err, services.ErrReturnAlreadyOpen)
}

func TestRequestReturnGuards(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewOrderService(db, 7, 7)

	user := seedUser(t, db, "buyer@example.com")
	seedAddress(t, db, user.ID)

	// Not delivered yet.
	pending := placeTestOrder(t, db, svc, user.ID, true)
	_, err := svc.RequestReturn(user.ID, pending.ID, pending.Items[0].ProductID, time.Now())
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	// Product without the returns feature.
	noFlag := placeTestOrder(t, db, svc, user.ID, false)
	setOrderStatus(t, db, noFlag.ID, models.OrderStatusDelivered)
	_, err = svc.RequestReturn(user.ID, noFlag.ID, noFlag.Items[0].ProductID, time.Now())
	assert.ErrorIs(t, err, services.ErrReturnNotEligible)

	// Outside the window.
	late := placeTestOrder(t, db, svc, user.ID, true)
	setOrderStatus(t, db, late.ID, models.OrderStatusDelivered)
	afterWindow := late.DeliveryDate.Add(8 * 24 * time.Hour)
	_, err = svc.RequestReturn(user.ID, late.ID, late.Items[0].ProductID, afterWindow)
	assert.ErrorIs(t, err, services.ErrReturnWindowClosed)

	reloaded, err := svc.Get(user.ID, late.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.Items[0].ReturnRequested, "rejected request must not flag the item")
	assert.Nil(t, reloaded.ReturnRequestDate)

	// Unknown line item.
	delivered := placeTestOrder(t, db, svc, user.ID, true)
	setOrderStatus(t, db, delivered.ID, models.OrderStatusDelivered)
	_, err = svc.RequestReturn(user.ID, delivered.ID, uuid.New(), time.Now())
	assert.ErrorIs(t, err, services.ErrItemNotFound)
}

func TestRequestReturnSecondItemKeepsStatus(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewOrderService(db, 7, 7)

	user := seedUser(t, db, "buyer@example.com")
	seedAddress(t, db, user.ID)
	a := seedProduct(t, db, "Shoe A", 800, true)
	b := seedProduct(t, db, "Shoe B", 900, true)
	seedCart(t, db, user.ID,
		models.CartItem{ProductID: a.ID, Quantity: 1, Size: "US8"},
		models.CartItem{ProductID: b.ID, Quantity: 1, Size: "US9"},
	)

	order, err := svc.PlaceOrder(user.ID, nil)
	require.NoError(t, err)
	setOrderStatus(t, db, order.ID, models.OrderStatusDelivered)

	now := order.DeliveryDate.Add(time.Hour)
	first, err := svc.RequestReturn(user.ID, order.ID, a.ID, now)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusReturnRequested, first.Status)

	second, err := svc.RequestReturn(user.ID, order.ID, b.ID, now)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusReturnRequested, second.Status)

	for _, item := range second.Items {
		assert.True(t, item.ReturnRequested)
	}
}

func TestAdvanceStatusFollowsFulfillmentChain(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewOrderService(db, 7, 7)

	user := seedUser(t, db, "buyer@example.com")
	seedAddress(t, db, user.ID)
	order := placeTestOrder(t, db, svc, user.ID, true)

	// Skipping a step is illegal.
	err := svc.AdvanceStatus(order.ID, models.OrderStatusDelivered)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	for _, status := range []string{
		models.OrderStatusShipping,
		models.OrderStatusOutForDelivery,
		models.OrderStatusDelivered,
	} {
		require.NoError(t, svc.AdvanceStatus(order.ID, status))
		reloaded, err := svc.Get(user.ID, order.ID)
		require.NoError(t, err)
		assert.Equal(t, status, reloaded.Status)
	}

	// Returned is only reachable from Return Requested.
	err = svc.AdvanceStatus(order.ID, models.OrderStatusReturned)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	_, err = svc.RequestReturn(user.ID, order.ID, order.Items[0].ProductID, order.DeliveryDate.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, svc.AdvanceStatus(order.ID, models.OrderStatusReturned))

	// Unknown target status.
	err = svc.AdvanceStatus(order.ID, "Teleported")
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	err = svc.AdvanceStatus(uuid.New(), models.OrderStatusShipping)
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
}
