package billing

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/barterskills/barterskills-server-go/internal/features/user"
	"github.com/barterskills/barterskills-server-go/internal/middleware"
	"github.com/barterskills/barterskills-server-go/pkg/email"
	"github.com/barterskills/barterskills-server-go/pkg/metrics"
	"github.com/barterskills/barterskills-server-go/pkg/razorpay"
	"github.com/barterskills/barterskills-server-go/pkg/response"
	"github.com/barterskills/barterskills-server-go/pkg/types"
)

// Handler processes premium purchase requests.
type Handler struct {
	db      *gorm.DB
	logger  *slog.Logger
	gateway *razorpay.Client
	email   *email.Client
}

// NewHandler constructs a billing handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, gateway *razorpay.Client, emailClient *email.Client) *Handler {
	return &Handler{db: db, logger: logger, gateway: gateway, email: emailClient}
}

type createOrderRequest struct {
	Plan types.PlanType `json:"plan" binding:"required"`
}

type createOrderResponse struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"keyId"`
	Plan     string `json:"plan"`
}

// CreateOrder opens a gateway order for a premium plan purchase.
func (h *Handler) CreateOrder(c *gin.Context) {
	currentUser, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "plan is required", err)
		return
	}

	price, err := PlanPrice(req.Plan)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Plan must be monthly or yearly.", err)
		return
	}

	userID := currentUser.ID.String()
	receipt := fmt.Sprintf("rcpt_%d_%s", time.Now().Unix(), userID[:8])

	order, err := h.gateway.CreateOrder(c.Request.Context(), razorpay.CreateOrderInput{
		Amount:   price.Paise(),
		Currency: "INR",
		Receipt:  receipt,
		Notes: map[string]string{
			"plan":   string(req.Plan),
			"userId": userID,
		},
	})
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadGateway, "failed to create payment order", err)
		return
	}

	response.Created(c, createOrderResponse{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyID:    h.gateway.KeyID(),
		Plan:     string(req.Plan),
	}, "Order created.")
}

type verifyRequest struct {
	OrderID   string `json:"razorpayOrderId" binding:"required"`
	PaymentID string `json:"razorpayPaymentId" binding:"required"`
	Signature string `json:"razorpaySignature" binding:"required"`
}

type verifyResponse struct {
	Plan             string    `json:"plan"`
	PremiumExpiresAt time.Time `json:"premiumExpiresAt"`
}

// VerifyPayment checks the checkout signature and activates premium. Nothing
// is mutated when the signature does not match.
func (h *Handler) VerifyPayment(c *gin.Context) {
	currentUser, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "orderId, paymentId and signature are required", err)
		return
	}

	if !h.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Payment verification failed.", ErrSignatureMismatch)
		return
	}

	order, err := h.gateway.FetchOrder(c.Request.Context(), req.OrderID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadGateway, "failed to fetch payment order", err)
		return
	}

	plan := types.PlanType(order.Notes["plan"])
	if !plan.Valid() {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Order is not a premium purchase.", ErrOrderNotRecognized)
		return
	}

	expiresAt := time.Now().Add(plan.Duration())

	db := h.db.WithContext(c.Request.Context())
	if err := user.ActivatePremium(db, currentUser.ID, expiresAt); err != nil {
		h.respondError(c, err, "failed to activate premium")
		return
	}

	metrics.RecordPremiumActivation(string(plan))
	h.logger.Info("premium activated",
		slog.String("userId", currentUser.ID.String()),
		slog.String("plan", string(plan)),
		slog.Time("expiresAt", expiresAt),
	)

	go func(to, name string) {
		if err := h.email.SendPremiumActivated(to, name, string(plan), expiresAt); err != nil {
			h.logger.Warn("failed to send premium activation email", slog.String("error", err.Error()))
		}
	}(currentUser.Email, currentUser.FullName)

	response.Success(c, http.StatusOK, verifyResponse{
		Plan:             string(plan),
		PremiumExpiresAt: expiresAt,
	}, "Premium activated.", nil)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	if errors.Is(err, user.ErrUserNotFound) {
		status = http.StatusNotFound
		message = "User not found."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
