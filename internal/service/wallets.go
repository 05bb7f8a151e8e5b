package service

import (
	"context"

	apperrors "evently/internal/errors"
	"evently/internal/models"

	"github.com/google/uuid"
)

const statementLimit = 50

type WalletService struct {
	stores Stores
}

func NewWalletService(stores Stores) *WalletService {
	return &WalletService{stores: stores}
}

// GetWallet returns the balance and most recent ledger rows of the user's wallet.
func (s *WalletService) GetWallet(ctx context.Context, userID uuid.UUID) (*models.WalletResponse, error) {
	wallet, err := s.stores.Wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, internalError(err)
	}
	if wallet == nil {
		return nil, apperrors.NotFound(apperrors.MsgWalletNotFound)
	}

	txs, err := s.stores.Wallets.ListTransactions(ctx, wallet.ID, statementLimit)
	if err != nil {
		return nil, internalError(err)
	}
	if txs == nil {
		txs = []models.WalletTransaction{}
	}

	return &models.WalletResponse{
		WalletID:     wallet.ID,
		Balance:      wallet.Balance,
		Transactions: txs,
	}, nil
}
