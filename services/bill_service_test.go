package services_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ryanadhitama/dinein-app/models"
	"github.com/ryanadhitama/dinein-app/services"
	"github.com/ryanadhitama/dinein-app/utils"
)

func TestBillRequestCancelRoundTrip(t *testing.T) {
	db := setupSessionTestDB(t)
	table := seedTable(t, db, 1, "A1")
	session := openSession(t, db, table.ID, "device-1")
	svc := services.NewBillService(db)

	requested, err := svc.RequestClose(session.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.BillStatusRequesting, requested.BillStatus)

	reopened, err := svc.CancelCloseRequest(session.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.BillStatusOpen, reopened.BillStatus)

	// Round trip: request kedua harus sukses lagi.
	again, err := svc.RequestClose(session.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.BillStatusRequesting, again.BillStatus)
}

func TestBillRequestWhileRequesting(t *testing.T) {
	db := setupSessionTestDB(t)
	table := seedTable(t, db, 1, "A1")
	session := openSession(t, db, table.ID, "device-1")
	svc := services.NewBillService(db)

	_, err := svc.RequestClose(session.ID)
	assert.NoError(t, err)

	_, err = svc.RequestClose(session.ID)
	assert.ErrorIs(t, err, utils.ErrAlreadyRequesting)
}

func TestBillCancelWithoutRequest(t *testing.T) {
	db := setupSessionTestDB(t)
	table := seedTable(t, db, 1, "A1")
	session := openSession(t, db, table.ID, "device-1")
	svc := services.NewBillService(db)

	_, err := svc.CancelCloseRequest(session.ID)
	assert.ErrorIs(t, err, utils.ErrNotRequesting)
}

func TestStaffCloseRequiresRequest(t *testing.T) {
	db := setupSessionTestDB(t)
	table := seedTable(t, db, 1, "A1")
	session := openSession(t, db, table.ID, "device-1")
	svc := services.NewBillService(db)

	// Bill masih open: staff belum boleh menutup.
	_, err := svc.StaffClose(session.ID)
	assert.ErrorIs(t, err, utils.ErrNotRequesting)
}

func TestStaffCloseTerminalEffects(t *testing.T) {
	db := setupSessionTestDB(t)
	table := seedTable(t, db, 1, "A1")
	menu := seedMenu(t, db, "Nasi Goreng", 10)
	session := openSession(t, db, table.ID, "device-1")
	billSvc := services.NewBillService(db)
	cartSvc := services.NewCartService(db)
	generalSvc := services.NewGeneralCartService(db)
	sessionSvc := services.NewSessionService(db)

	_, err := cartSvc.AddItem(session.ID, menu.ID, 1, nil, "")
	assert.NoError(t, err)
	_, err = generalSvc.AddItem(1, table.ID, menu.ID, 1, nil, "")
	assert.NoError(t, err)

	_, err = billSvc.RequestClose(session.ID)
	assert.NoError(t, err)
	closed, err := billSvc.StaffClose(session.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.SessionStatusClosed, closed.Status)
	assert.Equal(t, models.BillStatusClosed, closed.BillStatus)
	assert.NotNil(t, closed.ClosedAt)

	// Kedua cart dibersihkan.
	var sessionCart, generalCart int64
	db.Model(&models.SessionCartItem{}).Where("session_id = ?", session.ID).Count(&sessionCart)
	db.Model(&models.GeneralCartItem{}).Where("table_id = ?", table.ID).Count(&generalCart)
	assert.Equal(t, int64(0), sessionCart)
	assert.Equal(t, int64(0), generalCart)

	// Close irreversible.
	_, err = billSvc.CancelCloseRequest(session.ID)
	assert.ErrorIs(t, err, utils.ErrSessionClosed)
	_, err = billSvc.RequestClose(session.ID)
	assert.ErrorIs(t, err, utils.ErrSessionClosed)
	_, err = billSvc.StaffClose(session.ID)
	assert.ErrorIs(t, err, utils.ErrSessionClosed)

	// Meja dan device bebas: device lain langsung bisa claim.
	fresh, _, err := sessionSvc.CreateOrReconnect(uuid.NewString(), 1, table.ID, "device-2")
	assert.NoError(t, err)
	assert.NotEqual(t, session.ID, fresh.ID)

	// Riwayat sesi tetap tersimpan.
	history, err := sessionSvc.ListByTable(table.ID)
	assert.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestOrdersSurviveClose(t *testing.T) {
	db := setupSessionTestDB(t)
	table := seedTable(t, db, 1, "A1")
	menu := seedMenu(t, db, "Nasi Goreng", 10)
	session := openSession(t, db, table.ID, "device-1")
	billSvc := services.NewBillService(db)
	cartSvc := services.NewCartService(db)
	orderSvc := services.NewOrderService(db)

	_, err := cartSvc.AddItem(session.ID, menu.ID, 2, nil, "")
	assert.NoError(t, err)
	order, err := orderSvc.SubmitOrder(session.ID)
	assert.NoError(t, err)

	_, err = billSvc.RequestClose(session.ID)
	assert.NoError(t, err)
	_, err = billSvc.StaffClose(session.ID)
	assert.NoError(t, err)

	// Order durable: masih bisa dibaca dan masih terasosiasi ke sesi lama.
	orders, err := orderSvc.ListBySession(session.ID)
	assert.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)
	assert.Equal(t, float64(20), orders[0].Total)
}
