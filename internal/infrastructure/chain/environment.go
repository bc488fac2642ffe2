// Package chain submits signed transactions to a JSON-RPC node and waits for
// their receipts.
package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"mintbench/internal/domain"
	"mintbench/internal/infrastructure/ethrpc"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Node is the JSON-RPC surface the environment needs.
type Node interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonce(ctx context.Context, account common.Address) (uint64, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethrpc.CallMsg) (uint64, error)
	SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) (domain.Receipt, bool, error)
}

type Config struct {
	PrivateKey         string
	PollInterval       time.Duration
	ConfirmTimeout     time.Duration
	GasLimitMultiplier float64
}

// Environment signs transactions from a single funded account. Nonces are
// tracked locally since submissions are strictly sequential.
type Environment struct {
	node      Node
	key       *ecdsa.PrivateKey
	from      common.Address
	signer    types.Signer
	nonce     uint64
	cfg       Config
	keySource func() (*ecdsa.PrivateKey, error)
}

func NewEnvironment(ctx context.Context, node Node, cfg Config) (*Environment, error) {
	if node == nil {
		return nil, errors.New("rpc node is required")
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(cfg.PrivateKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.GasLimitMultiplier < 1 {
		cfg.GasLimitMultiplier = 1
	}

	chainID, err := node.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain id: %w", err)
	}
	from := crypto.PubkeyToAddress(key.PublicKey)
	nonce, err := node.PendingNonce(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("pending nonce: %w", err)
	}

	slog.Info("execution environment ready",
		"chain_id", chainID.String(),
		"from", from.Hex(),
		"nonce", nonce,
	)

	return &Environment{
		node:      node,
		key:       key,
		from:      from,
		signer:    types.LatestSignerForChainID(chainID),
		nonce:     nonce,
		cfg:       cfg,
		keySource: crypto.GenerateKey,
	}, nil
}

func (e *Environment) From() common.Address {
	return e.from
}

// Submit signs and broadcasts a transaction. A nil target deploys data as
// contract creation code.
func (e *Environment) Submit(ctx context.Context, to *common.Address, data []byte) (common.Hash, error) {
	gasLimit, err := e.node.EstimateGas(ctx, ethrpc.CallMsg{From: e.from, To: to, Data: data})
	if err != nil {
		return common.Hash{}, fmt.Errorf("estimate gas: %w", err)
	}
	gasLimit = uint64(float64(gasLimit) * e.cfg.GasLimitMultiplier)

	gasPrice, err := e.node.GasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("gas price: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    e.nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       to,
		Value:    new(big.Int),
		Data:     data,
	})
	signed, err := types.SignTx(tx, e.signer, e.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign transaction: %w", err)
	}
	raw, err := signed.MarshalBinary()
	if err != nil {
		return common.Hash{}, fmt.Errorf("encode transaction: %w", err)
	}

	hash, err := e.node.SendRawTransaction(ctx, raw)
	if err != nil {
		return common.Hash{}, fmt.Errorf("send transaction: %w", err)
	}
	e.nonce++

	slog.Debug("transaction submitted",
		"hash", hash.Hex(),
		"nonce", signed.Nonce(),
		"gas_limit", gasLimit,
	)
	return hash, nil
}

// Await polls for the receipt of hash until it is mined or the configured
// confirmation timeout elapses. Reverted transactions return ErrReverted
// together with their receipt.
func (e *Environment) Await(ctx context.Context, hash common.Hash) (domain.Receipt, error) {
	if e.cfg.ConfirmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.ConfirmTimeout)
		defer cancel()
	}

	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for {
		receipt, ok, err := e.node.TransactionReceipt(ctx, hash)
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return domain.Receipt{}, fmt.Errorf("receipt %s: %w", hash.Hex(), err)
		}
		if ok {
			if !receipt.Succeeded() {
				return receipt, fmt.Errorf("%w: %s", domain.ErrReverted, hash.Hex())
			}
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return domain.Receipt{}, &domain.ConfirmationTimeoutError{
					TxHash:  hash.Hex(),
					Timeout: e.cfg.ConfirmTimeout,
				}
			}
			return domain.Receipt{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// FreshAddress returns the address of a newly generated key that has never
// held any tokens.
func (e *Environment) FreshAddress() (common.Address, error) {
	key, err := e.keySource()
	if err != nil {
		return common.Address{}, fmt.Errorf("generate key: %w", err)
	}
	return crypto.PubkeyToAddress(key.PublicKey), nil
}
