package ethrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"mintbench/internal/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

type Client struct {
	url        string
	httpClient *http.Client
	idCounter  uint64
}

type Config struct {
	URL string
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("rpc url is required")
	}
	return &Client{
		url:        cfg.URL,
		httpClient: &http.Client{},
	}, nil
}

func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	var result string
	if err := c.call(ctx, "eth_chainId", []any{}, &result); err != nil {
		return nil, err
	}
	return parseHexBig(result)
}

func (c *Client) PendingNonce(ctx context.Context, account common.Address) (uint64, error) {
	var result string
	if err := c.call(ctx, "eth_getTransactionCount", []any{account, "pending"}, &result); err != nil {
		return 0, err
	}
	return parseHexUint(result)
}

func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	var result string
	if err := c.call(ctx, "eth_gasPrice", []any{}, &result); err != nil {
		return nil, err
	}
	return parseHexBig(result)
}

// CallMsg is the subset of a transaction needed for gas estimation.
type CallMsg struct {
	From common.Address
	To   *common.Address
	Data []byte
}

func (c *Client) EstimateGas(ctx context.Context, msg CallMsg) (uint64, error) {
	arg := map[string]any{
		"from": msg.From,
		"data": hexutil.Bytes(msg.Data),
	}
	if msg.To != nil {
		arg["to"] = *msg.To
	}
	var result string
	if err := c.call(ctx, "eth_estimateGas", []any{arg}, &result); err != nil {
		return 0, err
	}
	return parseHexUint(result)
}

func (c *Client) SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	var result string
	if err := c.call(ctx, "eth_sendRawTransaction", []any{hexutil.Encode(raw)}, &result); err != nil {
		return common.Hash{}, err
	}
	return common.HexToHash(result), nil
}

// TransactionReceipt returns the receipt for hash, or false while it is pending.
func (c *Client) TransactionReceipt(ctx context.Context, hash common.Hash) (domain.Receipt, bool, error) {
	var result *rpcReceipt
	if err := c.call(ctx, "eth_getTransactionReceipt", []any{hash}, &result); err != nil {
		if errors.Is(err, errEmptyResult) {
			return domain.Receipt{}, false, nil
		}
		return domain.Receipt{}, false, err
	}
	if result == nil {
		return domain.Receipt{}, false, nil
	}

	blockNumber, err := parseHexUint(result.BlockNumber)
	if err != nil {
		return domain.Receipt{}, false, fmt.Errorf("receipt block number: %w", err)
	}
	status, err := parseHexUint(result.Status)
	if err != nil {
		return domain.Receipt{}, false, fmt.Errorf("receipt status: %w", err)
	}
	gasUsed, err := parseHexUint(result.GasUsed)
	if err != nil {
		return domain.Receipt{}, false, &domain.InvalidMetricError{Field: "gas_used", Value: result.GasUsed}
	}
	var cumulative uint64
	if result.CumulativeGasUsed != "" {
		if cumulative, err = parseHexUint(result.CumulativeGasUsed); err != nil {
			return domain.Receipt{}, false, fmt.Errorf("receipt cumulative gas: %w", err)
		}
	}

	receipt := domain.Receipt{
		TxHash:            common.HexToHash(result.TxHash),
		BlockNumber:       blockNumber,
		Status:            status,
		GasUsed:           gasUsed,
		CumulativeGasUsed: cumulative,
		EffectiveGasPrice: result.EffectiveGasPrice,
	}
	if result.ContractAddress != nil {
		receipt.ContractAddress = common.HexToAddress(*result.ContractAddress)
	}
	return receipt, true, nil
}

type rpcReceipt struct {
	TxHash            string  `json:"transactionHash"`
	BlockNumber       string  `json:"blockNumber"`
	Status            string  `json:"status"`
	GasUsed           string  `json:"gasUsed"`
	CumulativeGasUsed string  `json:"cumulativeGasUsed"`
	ContractAddress   *string `json:"contractAddress"`
	EffectiveGasPrice string  `json:"effectiveGasPrice"`
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error is a JSON-RPC level failure returned by the node.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

var errEmptyResult = errors.New("rpc result is empty")

func (c *Client) call(ctx context.Context, method string, params []any, result any) error {
	id := atomic.AddUint64(&c.idCounter, 1)
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("rpc status %d", resp.StatusCode)
	}

	var decoded rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return err
	}
	if decoded.Error != nil {
		return &Error{Code: decoded.Error.Code, Message: decoded.Error.Message}
	}
	if result == nil {
		return nil
	}
	if len(decoded.Result) == 0 {
		return errEmptyResult
	}
	return json.Unmarshal(decoded.Result, result)
}

func parseHexUint(value string) (uint64, error) {
	trimmed := strings.TrimPrefix(value, "0x")
	if trimmed == "" {
		return 0, errors.New("empty hex value")
	}
	return strconv.ParseUint(trimmed, 16, 64)
}

func parseHexBig(value string) (*big.Int, error) {
	trimmed := strings.TrimPrefix(value, "0x")
	if trimmed == "" {
		return nil, errors.New("empty hex value")
	}
	parsed, ok := new(big.Int).SetString(trimmed, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex value %q", value)
	}
	return parsed, nil
}
