// internal/services/wallet_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agrichain/agrichain-backend/internal/config"
	"github.com/agrichain/agrichain-backend/internal/models"
	"github.com/agrichain/agrichain-backend/internal/utils"
)

// ErrAlreadyCredited marks a payment intent whose credit has already been
// applied to the wallet.
var ErrAlreadyCredited = errors.New("payment already credited")

// InsufficientFundsError carries the amounts so callers can surface
// how much was needed against how much was available.
type InsufficientFundsError struct {
	Need float64
	Have float64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds (need $%.2f, have $%.2f)", e.Need, e.Have)
}

type WalletService struct {
	db  *gorm.DB
	cfg *config.Config
}

type TopUpRequest struct {
	Amount float64 `json:"amount" validate:"required,min=0.01"`
}

type TopUpIntentResponse struct {
	ClientSecret string `json:"client_secret"`
	PaymentID    string `json:"payment_id"`
	Status       string `json:"status"`
}

type ConfirmTopUpRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

type WalletSummary struct {
	Balance      float64                    `json:"balance"`
	Transactions []models.WalletTransaction `json:"transactions,omitempty"`
}

func NewWalletService(db *gorm.DB, cfg *config.Config) *WalletService {
	stripe.Key = cfg.Payment.StripeSecretKey

	return &WalletService{
		db:  db,
		cfg: cfg,
	}
}

// Debit locks the user's row, checks funds, decrements the balance and
// writes the ledger entry. Must run inside the caller's transaction so the
// ledger row and balance update commit together with the business change.
func (s *WalletService) Debit(tx *gorm.DB, userID uuid.UUID, amount float64, reference, description string) error {
	var user models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, "id = ?", userID).Error; err != nil {
		return fmt.Errorf("failed to lock wallet: %w", err)
	}

	if user.WalletBalance < amount {
		return &InsufficientFundsError{Need: amount, Have: user.WalletBalance}
	}

	newBalance := user.WalletBalance - amount
	if err := tx.Model(&user).Update("wallet_balance", newBalance).Error; err != nil {
		return fmt.Errorf("failed to update wallet balance: %w", err)
	}

	entry := &models.WalletTransaction{
		UserID:       userID,
		Direction:    models.WalletDebit,
		Amount:       amount,
		BalanceAfter: newBalance,
		Reference:    reference,
		Description:  description,
	}
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record wallet debit: %w", err)
	}

	return nil
}

// Credit locks the user's row, increments the balance and writes the ledger
// entry. Same transactional contract as Debit.
func (s *WalletService) Credit(tx *gorm.DB, userID uuid.UUID, amount float64, reference, description string) error {
	var user models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, "id = ?", userID).Error; err != nil {
		return fmt.Errorf("failed to lock wallet: %w", err)
	}

	newBalance := user.WalletBalance + amount
	if err := tx.Model(&user).Update("wallet_balance", newBalance).Error; err != nil {
		return fmt.Errorf("failed to update wallet balance: %w", err)
	}

	entry := &models.WalletTransaction{
		UserID:       userID,
		Direction:    models.WalletCredit,
		Amount:       amount,
		BalanceAfter: newBalance,
		Reference:    reference,
		Description:  description,
	}
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record wallet credit: %w", err)
	}

	return nil
}

func (s *WalletService) GetBalance(userID uuid.UUID) (float64, error) {
	var user models.User
	if err := s.db.Select("wallet_balance").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, errors.New("user not found")
		}
		return 0, fmt.Errorf("failed to load wallet: %w", err)
	}
	return user.WalletBalance, nil
}

func (s *WalletService) GetHistory(userID uuid.UUID, params utils.PaginationParams) (*utils.PaginationResult, error) {
	var transactions []models.WalletTransaction
	var total int64

	query := s.db.Model(&models.WalletTransaction{}).Where("user_id = ?", userID)
	query.Count(&total)

	err := utils.ApplyPagination(query.Order("created_at DESC"), params).Find(&transactions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet history: %w", err)
	}

	result := utils.CreatePaginationResult(transactions, total, params)
	return &result, nil
}

// CreateTopUpIntent starts a Stripe payment for adding funds. The wallet is
// only credited on confirmation, after Stripe reports success.
func (s *WalletService) CreateTopUpIntent(userID uuid.UUID, req *TopUpRequest) (*TopUpIntentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if req.Amount > s.cfg.Payment.MaxTopUpAmount {
		return nil, fmt.Errorf("top-up amount exceeds the maximum of $%.2f", s.cfg.Payment.MaxTopUpAmount)
	}

	amountInCents := int64(req.Amount * 100)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String("usd"),
	}
	params.AddMetadata("user_id", userID.String())
	params.AddMetadata("purpose", "wallet_topup")

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &TopUpIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Status:       string(pi.Status),
	}, nil
}

func (s *WalletService) ConfirmTopUp(userID uuid.UUID, req *ConfirmTopUpRequest) (float64, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return 0, fmt.Errorf("validation failed: %w", err)
	}

	pi, err := paymentintent.Get(req.PaymentIntentID, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get payment intent: %w", err)
	}

	if pi.Metadata["user_id"] != userID.String() {
		return 0, errors.New("payment intent does not belong to this user")
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return 0, fmt.Errorf("payment not completed (status: %s)", pi.Status)
	}

	amount := float64(pi.Amount) / 100

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.creditTopUp(tx, userID, pi.ID, amount)
	})
	if err != nil {
		return 0, err
	}

	return s.GetBalance(userID)
}

// creditTopUp applies a confirmed payment to the wallet at most once. The
// wallet row lock is taken before the idempotency check so concurrent
// confirms of the same intent serialize and the loser sees the winner's
// ledger entry.
func (s *WalletService) creditTopUp(tx *gorm.DB, userID uuid.UUID, intentID string, amount float64) error {
	var user models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, "id = ?", userID).Error; err != nil {
		return fmt.Errorf("failed to lock wallet: %w", err)
	}

	var existing int64
	if err := tx.Model(&models.WalletTransaction{}).
		Where("user_id = ? AND reference = ?", userID, intentID).
		Count(&existing).Error; err != nil {
		return fmt.Errorf("failed to check prior credits: %w", err)
	}
	if existing > 0 {
		return ErrAlreadyCredited
	}

	return s.Credit(tx, userID, amount, intentID, "Wallet top-up")
}
