package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apppayment "github.com/as-ga/saleor/internal/application/payment"
	"github.com/as-ga/saleor/internal/domain/order"
	"github.com/as-ga/saleor/internal/domain/payment"
	"github.com/as-ga/saleor/internal/infrastructure/persistence"
	"github.com/as-ga/saleor/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type transactionTestEnv struct {
	db      *gorm.DB
	router  *gin.Engine
	handler *TransactionHandler
}

// setupTransactionEnv builds the update endpoint against an in-memory
// SQLite database. The requestor is injected per request via a header-free
// test middleware so tests can exercise ownership without real tokens.
func setupTransactionEnv(t *testing.T, requestor payment.Requestor) *transactionTestEnv {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	for _, ddl := range []string{
		`CREATE TABLE transaction_items (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			modified_at DATETIME NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			order_id TEXT NOT NULL,
			app_id TEXT,
			user_id TEXT,
			psp_reference TEXT UNIQUE,
			status TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL DEFAULT '',
			currency TEXT NOT NULL,
			authorized_value NUMERIC NOT NULL DEFAULT 0,
			charged_value NUMERIC NOT NULL DEFAULT 0,
			voided_value NUMERIC NOT NULL DEFAULT 0,
			refunded_value NUMERIC NOT NULL DEFAULT 0,
			available_actions TEXT NOT NULL DEFAULT '',
			external_url TEXT NOT NULL DEFAULT '',
			metadata TEXT,
			private_metadata TEXT
		)`,
		`CREATE TABLE transaction_events (
			id TEXT PRIMARY KEY,
			transaction_id TEXT NOT NULL,
			status TEXT NOT NULL,
			psp_reference TEXT UNIQUE,
			name TEXT NOT NULL DEFAULT '',
			external_url TEXT NOT NULL DEFAULT '',
			amount_value NUMERIC NOT NULL DEFAULT 0,
			currency TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			modified_at DATETIME NOT NULL
		)`,
		`CREATE TABLE orders (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			modified_at DATETIME NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			number TEXT NOT NULL UNIQUE,
			currency TEXT NOT NULL,
			total_authorized_amount NUMERIC NOT NULL DEFAULT 0,
			total_charged_amount NUMERIC NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE order_events (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			modified_at DATETIME NOT NULL,
			order_id TEXT NOT NULL,
			type TEXT NOT NULL,
			parameters TEXT,
			app_id TEXT,
			user_id TEXT
		)`,
	} {
		require.NoError(t, db.Exec(ddl).Error)
	}

	scope := persistence.NewGormPaymentTransactionScope(db)
	service := apppayment.NewTransactionUpdateService(scope, zap.NewNop())
	h := NewTransactionHandler(service, persistence.NewGormTransactionRepository(db), zap.NewNop())

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.RequestorKey, requestor)
		c.Next()
	})
	router.POST("/api/v1/transactions/:id/update", h.Update)

	return &transactionTestEnv{db: db, router: router, handler: h}
}

func (env *transactionTestEnv) storeOrder(t *testing.T) *order.Order {
	o, err := order.NewOrder("ORD-"+uuid.NewString()[:8], "USD")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormOrderRepository(env.db).Save(context.Background(), o))
	return o
}

func (env *transactionTestEnv) storeTransaction(t *testing.T, orderID uuid.UUID, requestor payment.Requestor) *payment.TransactionItem {
	tx, err := payment.NewTransactionItem(orderID, "USD", requestor)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormTransactionRepository(env.db).Save(context.Background(), tx))
	return tx
}

func (env *transactionTestEnv) post(t *testing.T, id string, body any) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/api/v1/transactions/"+id+"/update", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decimalFromString(t *testing.T, v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	require.NoError(t, err)
	return d
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) *apppayment.TransactionUpdateResult {
	var envelope struct {
		Success bool                                `json:"success"`
		Data    *apppayment.TransactionUpdateResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Data)
	return envelope.Data
}

func TestTransactionHandler_Update(t *testing.T) {
	appID := uuid.New()
	requestor := payment.AppRequestor(appID)
	env := setupTransactionEnv(t, requestor)
	o := env.storeOrder(t)
	tx := env.storeTransaction(t, o.ID, requestor)

	status := "Authorized"
	body := TransactionUpdateRequest{
		Transaction: &apppayment.TransactionUpdateInput{
			Status: &status,
			AmountAuthorized: &apppayment.MoneyInput{
				Amount:   decimalFromString(t, "25.50"),
				Currency: "USD",
			},
		},
	}

	w := env.post(t, tx.ID.String(), body)

	assert.Equal(t, http.StatusOK, w.Code)
	result := decodeResult(t, w)
	require.NotNil(t, result.Transaction)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "Authorized", result.Transaction.Status)
	assert.True(t, result.Transaction.AuthorizedAmount.Equal(decimalFromString(t, "25.50")))
}

func TestTransactionHandler_Update_RecordsEvent(t *testing.T) {
	requestor := payment.AppRequestor(uuid.New())
	env := setupTransactionEnv(t, requestor)
	o := env.storeOrder(t)
	tx := env.storeTransaction(t, o.ID, requestor)

	ref := "psp-ref-001"
	body := TransactionUpdateRequest{
		TransactionEvent: &apppayment.TransactionEventInput{
			Status:       "Success",
			PSPReference: &ref,
			Name:         "Capture confirmed",
		},
	}

	w := env.post(t, tx.ID.String(), body)

	assert.Equal(t, http.StatusOK, w.Code)
	result := decodeResult(t, w)
	require.NotNil(t, result.Transaction)
	require.Len(t, result.Transaction.Events, 1)
	// Statuses are parsed case-insensitively and rendered canonical
	assert.Equal(t, "SUCCESS", result.Transaction.Events[0].Status)
}

func TestTransactionHandler_Update_NotFoundInResultEnvelope(t *testing.T) {
	requestor := payment.AppRequestor(uuid.New())
	env := setupTransactionEnv(t, requestor)

	w := env.post(t, uuid.NewString(), TransactionUpdateRequest{})

	// Missing transactions surface inside the result, not as HTTP 404
	assert.Equal(t, http.StatusOK, w.Code)
	result := decodeResult(t, w)
	assert.Nil(t, result.Transaction)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, payment.TransactionErrorGraphQLError, result.Errors[0].Code)
	assert.Equal(t, "id", result.Errors[0].Field)
}

func TestTransactionHandler_Update_ForeignAppForbidden(t *testing.T) {
	caller := payment.AppRequestor(uuid.New())
	env := setupTransactionEnv(t, caller)
	o := env.storeOrder(t)
	owner := payment.AppRequestor(uuid.New())
	tx := env.storeTransaction(t, o.ID, owner)

	status := "Charged"
	w := env.post(t, tx.ID.String(), TransactionUpdateRequest{
		Transaction: &apppayment.TransactionUpdateInput{Status: &status},
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_FORBIDDEN")

	// No side effects on the stored transaction
	stored, err := persistence.NewGormTransactionRepository(env.db).FindByID(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Status)
}

func TestTransactionHandler_Update_UserCannotTouchAppOwned(t *testing.T) {
	caller := payment.UserRequestor(uuid.New())
	env := setupTransactionEnv(t, caller)
	o := env.storeOrder(t)
	tx := env.storeTransaction(t, o.ID, payment.AppRequestor(uuid.New()))

	status := "Charged"
	w := env.post(t, tx.ID.String(), TransactionUpdateRequest{
		Transaction: &apppayment.TransactionUpdateInput{Status: &status},
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTransactionHandler_Update_InvalidID(t *testing.T) {
	requestor := payment.AppRequestor(uuid.New())
	env := setupTransactionEnv(t, requestor)

	w := env.post(t, "not-a-uuid", TransactionUpdateRequest{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransactionHandler_Update_MalformedBody(t *testing.T) {
	requestor := payment.AppRequestor(uuid.New())
	env := setupTransactionEnv(t, requestor)
	o := env.storeOrder(t)
	tx := env.storeTransaction(t, o.ID, requestor)

	req := httptest.NewRequest("POST", "/api/v1/transactions/"+tx.ID.String()+"/update",
		bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_INVALID_JSON")
}

func TestTransactionHandler_Update_Unauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	env := setupTransactionEnv(t, payment.AppRequestor(uuid.New()))

	// Route without the requestor-injecting middleware
	router := gin.New()
	router.POST("/api/v1/transactions/:id/update", env.handler.Update)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/transactions/"+uuid.NewString()+"/update",
		bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTransactionHandler_Update_CurrencyMismatchInResult(t *testing.T) {
	requestor := payment.AppRequestor(uuid.New())
	env := setupTransactionEnv(t, requestor)
	o := env.storeOrder(t)
	tx := env.storeTransaction(t, o.ID, requestor)

	body := TransactionUpdateRequest{
		Transaction: &apppayment.TransactionUpdateInput{
			AmountCharged: &apppayment.MoneyInput{
				Amount:   decimalFromString(t, "10"),
				Currency: "EUR",
			},
		},
	}

	w := env.post(t, tx.ID.String(), body)

	assert.Equal(t, http.StatusOK, w.Code)
	result := decodeResult(t, w)
	assert.Nil(t, result.Transaction)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, payment.TransactionErrorIncorrectCurrency, result.Errors[0].Code)
}
