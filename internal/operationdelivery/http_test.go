package operationdelivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/bankapp/account-core/internal/domain"
	"github.com/bankapp/account-core/internal/middleware"
	"github.com/bankapp/account-core/pkg/currencypkg"
	"github.com/bankapp/account-core/pkg/errorspkg"
	"github.com/bankapp/account-core/pkg/randompkg"
	"github.com/bankapp/account-core/pkg/tokenpkg"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestRouter(t *testing.T, service Service) (*gin.Engine, tokenpkg.Maker) {
	t.Helper()

	tokenMaker, err := tokenpkg.NewJWTMaker(randompkg.String(32))
	require.NoError(t, err)

	handler := NewHandler(service)

	router := gin.New()
	authRoutes := router.Group("/").Use(middleware.AuthMiddleware(tokenMaker))

	authRoutes.GET("/balance", handler.Inquire)
	authRoutes.GET("/accounts/:id/balance", handler.InquireAccount)
	authRoutes.POST("/deposits", handler.Deposit)
	authRoutes.POST("/accounts/:id/deposits", handler.DepositAccount)
	authRoutes.POST("/withdrawals", handler.Withdraw)
	authRoutes.POST("/accounts/:id/withdrawals", handler.WithdrawAccount)

	return router, tokenMaker
}

func TestInquireAccount(t *testing.T) {
	userID := randompkg.Int64Between(1, 100)
	username := randompkg.Owner()

	snapshot := domain.AccountSnapshot{
		AccountID:     17,
		AccountNumber: randompkg.AccountNumber(),
		AccountType:   "savings",
		Balance:       decimal.RequireFromString("100.00"),
		Currency:      currencypkg.USD,
		Status:        domain.StatusActive,
	}

	testCases := []struct {
		name           string
		path           string
		setupAuth      func(t *testing.T, r *http.Request, tokenMaker tokenpkg.Maker)
		buildStubs     func(service *MockService)
		wantStatusCode int
	}{
		{
			name: "OKByID",
			path: "/accounts/17/balance",
			setupAuth: func(t *testing.T, r *http.Request, tokenMaker tokenpkg.Maker) {
				err := middleware.AddAuthorization(r, tokenMaker, middleware.AuthTypeBearer, userID, username, time.Minute)
				require.NoError(t, err)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Inquire(gomock.Any(), gomock.Eq(userID), gomock.Eq(domain.ByID(17)), gomock.Any()).
					Times(1).
					Return(snapshot, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "OKByOwner",
			path: "/balance",
			setupAuth: func(t *testing.T, r *http.Request, tokenMaker tokenpkg.Maker) {
				err := middleware.AddAuthorization(r, tokenMaker, middleware.AuthTypeBearer, userID, username, time.Minute)
				require.NoError(t, err)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Inquire(gomock.Any(), gomock.Eq(userID), gomock.Eq(domain.ByOwner()), gomock.Any()).
					Times(1).
					Return(snapshot, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:      "NoAuthorization",
			path:      "/accounts/17/balance",
			setupAuth: func(t *testing.T, r *http.Request, tokenMaker tokenpkg.Maker) {},
			buildStubs: func(service *MockService) {
				service.EXPECT().Inquire(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name: "InvalidAccountID",
			path: "/accounts/0/balance",
			setupAuth: func(t *testing.T, r *http.Request, tokenMaker tokenpkg.Maker) {
				err := middleware.AddAuthorization(r, tokenMaker, middleware.AuthTypeBearer, userID, username, time.Minute)
				require.NoError(t, err)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Inquire(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "NotFound",
			path: "/accounts/17/balance",
			setupAuth: func(t *testing.T, r *http.Request, tokenMaker tokenpkg.Maker) {
				err := middleware.AddAuthorization(r, tokenMaker, middleware.AuthTypeBearer, userID, username, time.Minute)
				require.NoError(t, err)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Inquire(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.AccountSnapshot{}, domain.ErrAccountNotFound)
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "Unauthorized",
			path: "/accounts/17/balance",
			setupAuth: func(t *testing.T, r *http.Request, tokenMaker tokenpkg.Maker) {
				err := middleware.AddAuthorization(r, tokenMaker, middleware.AuthTypeBearer, userID, username, time.Minute)
				require.NoError(t, err)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Inquire(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.AccountSnapshot{}, domain.ErrUnauthorizedAccess)
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name: "ForbiddenStatus",
			path: "/accounts/17/balance",
			setupAuth: func(t *testing.T, r *http.Request, tokenMaker tokenpkg.Maker) {
				err := middleware.AddAuthorization(r, tokenMaker, middleware.AuthTypeBearer, userID, username, time.Minute)
				require.NoError(t, err)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Inquire(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.AccountSnapshot{}, domain.ErrAccountNotActive)
			},
			wantStatusCode: http.StatusForbidden,
		},
		{
			name: "InternalError",
			path: "/balance",
			setupAuth: func(t *testing.T, r *http.Request, tokenMaker tokenpkg.Maker) {
				err := middleware.AddAuthorization(r, tokenMaker, middleware.AuthTypeBearer, userID, username, time.Minute)
				require.NoError(t, err)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Inquire(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.AccountSnapshot{}, errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			router, tokenMaker := newTestRouter(t, service)

			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, tc.path, nil)
			tc.setupAuth(t, request, tokenMaker)

			router.ServeHTTP(recorder, request)
			require.Equal(t, tc.wantStatusCode, recorder.Code)
		})
	}
}

func TestDepositAndWithdraw(t *testing.T) {
	userID := randompkg.Int64Between(1, 100)
	username := randompkg.Owner()
	amount := decimal.RequireFromString("50.25")

	receipt := domain.TransactionReceipt{
		Message:         "Deposit completed successfully.",
		AccountID:       17,
		AccountNumber:   randompkg.AccountNumber(),
		NewBalance:      decimal.RequireFromString("150.25"),
		Currency:        currencypkg.USD,
		AmountDeposited: &amount,
		TransactionID:   "txn_dep_test",
		Timestamp:       time.Now().UTC(),
	}

	testCases := []struct {
		name           string
		path           string
		body           gin.H
		buildStubs     func(service *MockService)
		wantStatusCode int
	}{
		{
			name: "DepositOKByOwner",
			path: "/deposits",
			body: gin.H{"amount": "50.25"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Deposit(gomock.Any(), gomock.Eq(userID), gomock.Eq(domain.ByOwner()), gomock.Eq("50.25"), gomock.Any()).
					Times(1).
					Return(receipt, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "DepositOKByID",
			path: "/accounts/17/deposits",
			body: gin.H{"amount": "50.25"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Deposit(gomock.Any(), gomock.Eq(userID), gomock.Eq(domain.ByID(17)), gomock.Eq("50.25"), gomock.Any()).
					Times(1).
					Return(receipt, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "MissingAmount",
			path: "/deposits",
			body: gin.H{},
			buildStubs: func(service *MockService) {
				service.EXPECT().Deposit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "DepositInvalidAmount",
			path: "/deposits",
			body: gin.H{"amount": "0"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Deposit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq("0"), gomock.Any()).
					Times(1).
					Return(domain.TransactionReceipt{}, domain.ErrInvalidInput)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "WithdrawInsufficientFunds",
			path: "/withdrawals",
			body: gin.H{"amount": "150.00"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Withdraw(gomock.Any(), gomock.Eq(userID), gomock.Eq(domain.ByOwner()), gomock.Eq("150.00"), gomock.Any()).
					Times(1).
					Return(domain.TransactionReceipt{}, domain.ErrInsufficientBalance)
			},
			wantStatusCode: http.StatusConflict,
		},
		{
			name: "WithdrawForbiddenStatus",
			path: "/accounts/17/withdrawals",
			body: gin.H{"amount": "10.00"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Withdraw(gomock.Any(), gomock.Eq(userID), gomock.Eq(domain.ByID(17)), gomock.Eq("10.00"), gomock.Any()).
					Times(1).
					Return(domain.TransactionReceipt{}, domain.ErrAccountNotActive)
			},
			wantStatusCode: http.StatusForbidden,
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			router, tokenMaker := newTestRouter(t, service)

			body, err := json.Marshal(tc.body)
			require.NoError(t, err)

			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodPost, tc.path, bytes.NewReader(body))
			request.Header.Set("Content-Type", "application/json")

			err = middleware.AddAuthorization(request, tokenMaker, middleware.AuthTypeBearer, userID, username, time.Minute)
			require.NoError(t, err)

			router.ServeHTTP(recorder, request)
			require.Equal(t, tc.wantStatusCode, recorder.Code)

			if tc.wantStatusCode == http.StatusOK {
				var res struct {
					Data struct {
						Transaction domain.TransactionReceipt `json:"transaction"`
					} `json:"data"`
				}

				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&res))
				require.Equal(t, receipt.TransactionID, res.Data.Transaction.TransactionID)
				require.Equal(t, receipt.AccountID, res.Data.Transaction.AccountID)
				require.True(t, receipt.NewBalance.Equal(res.Data.Transaction.NewBalance))
			}
		})
	}
}
