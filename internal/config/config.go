package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"mintbench/internal/domain"
)

// DefaultPrivateKey is the first funded account of a local hardhat node.
const DefaultPrivateKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

const (
	defaultVariants      = "Standard721:erc721,Azuki721:erc721a,Standard1155:erc1155"
	defaultRelativePairs = "Standard1155:Standard721,Standard1155:Azuki721,Azuki721:Standard721"
)

type Pair struct {
	Candidate string
	Baseline  string
}

type Config struct {
	RPCURL             string
	PrivateKey         string
	ArtifactsDir       string
	Variants           []domain.VariantSpec
	RelativePairs      []Pair
	MaxTrials          uint64
	ShowRelativeCost   bool
	ShowUSDCost        bool
	GasPriceGwei       *big.Rat
	EtherPrice         *big.Rat
	FiatSymbol         string
	ConfirmTimeout     time.Duration
	PollInterval       time.Duration
	GasLimitMultiplier float64
	OutputFormat       string
	LogLevel           string
	LogFile            string
	LogMaxSizeMB       int
	LogMaxBackups      int
	OtelEndpoint       string
	KafkaBrokers       []string
	KafkaTopic         string
}

type EnvSource interface {
	Lookup(key string) (string, bool)
}

type EnvMap map[string]string

func (e EnvMap) Lookup(key string) (string, bool) {
	value, ok := e[key]
	return value, ok
}

func FromEnviron() EnvSource {
	env := make(EnvMap)
	for _, entry := range os.Environ() {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		env[parts[0]] = parts[1]
	}
	return env
}

func Load(source EnvSource) (Config, error) {
	if source == nil {
		return Config{}, errors.New("env source is required")
	}

	maxTrials, err := parseUintEnv(source, "MAX_TRIALS", 5)
	if err != nil {
		return Config{}, err
	}
	if maxTrials == 0 {
		return Config{}, errors.New("MAX_TRIALS must be positive")
	}
	showRelative, err := parseBoolEnv(source, "SHOW_RELATIVE_COST", false)
	if err != nil {
		return Config{}, err
	}
	showUSD, err := parseBoolEnv(source, "SHOW_USD_COST", true)
	if err != nil {
		return Config{}, err
	}
	gasPrice, err := parseDecimalEnv(source, "GAS_PRICE_GWEI", "100")
	if err != nil {
		return Config{}, err
	}
	etherPrice, err := parseDecimalEnv(source, "ETHER_PRICE", "3500")
	if err != nil {
		return Config{}, err
	}
	confirmTimeout, err := parseDurationEnv(source, "CONFIRMATION_TIMEOUT", 2*time.Minute)
	if err != nil {
		return Config{}, err
	}
	pollInterval, err := parseDurationEnv(source, "POLL_INTERVAL", 250*time.Millisecond)
	if err != nil {
		return Config{}, err
	}

	gasMultiplier := 1.2
	if raw, ok := source.Lookup("GAS_LIMIT_MULTIPLIER"); ok && strings.TrimSpace(raw) != "" {
		gasMultiplier, err = strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid GAS_LIMIT_MULTIPLIER: %w", err)
		}
		if gasMultiplier < 1 {
			return Config{}, errors.New("GAS_LIMIT_MULTIPLIER must be at least 1")
		}
	}

	variants, err := ParseVariants(lookupDefault(source, "VARIANTS", defaultVariants))
	if err != nil {
		return Config{}, err
	}
	pairs, err := ParsePairs(lookupDefault(source, "RELATIVE_PAIRS", defaultRelativePairs))
	if err != nil {
		return Config{}, err
	}

	logMaxSize, err := parseUintEnv(source, "LOG_MAX_SIZE_MB", 100)
	if err != nil {
		return Config{}, err
	}
	logMaxBackups, err := parseUintEnv(source, "LOG_MAX_BACKUPS", 3)
	if err != nil {
		return Config{}, err
	}

	otelEndpoint, _ := source.Lookup("OTEL_EXPORTER_OTLP_ENDPOINT")
	logFile, _ := source.Lookup("LOG_FILE")

	var kafkaBrokers []string
	if raw, ok := source.Lookup("KAFKA_BROKERS"); ok {
		kafkaBrokers = splitList(raw)
	}

	return Config{
		RPCURL:             lookupDefault(source, "RPC_URL", "http://127.0.0.1:8545/"),
		PrivateKey:         lookupDefault(source, "PRIVATE_KEY", DefaultPrivateKey),
		ArtifactsDir:       lookupDefault(source, "ARTIFACTS_DIR", "artifacts/contracts"),
		Variants:           variants,
		RelativePairs:      pairs,
		MaxTrials:          maxTrials,
		ShowRelativeCost:   showRelative,
		ShowUSDCost:        showUSD,
		GasPriceGwei:       gasPrice,
		EtherPrice:         etherPrice,
		FiatSymbol:         lookupDefault(source, "FIAT_SYMBOL", "USD"),
		ConfirmTimeout:     confirmTimeout,
		PollInterval:       pollInterval,
		GasLimitMultiplier: gasMultiplier,
		OutputFormat:       lookupDefault(source, "OUTPUT_FORMAT", "text"),
		LogLevel:           lookupDefault(source, "LOG_LEVEL", "info"),
		LogFile:            strings.TrimSpace(logFile),
		LogMaxSizeMB:       int(logMaxSize),
		LogMaxBackups:      int(logMaxBackups),
		OtelEndpoint:       strings.TrimSpace(otelEndpoint),
		KafkaBrokers:       kafkaBrokers,
		KafkaTopic:         lookupDefault(source, "KAFKA_TOPIC", "mintbench-trials"),
	}, nil
}

// ParseVariants parses "Name:kind,Name:kind" preserving declaration order.
func ParseVariants(raw string) ([]domain.VariantSpec, error) {
	items := splitList(raw)
	if len(items) == 0 {
		return nil, errors.New("VARIANTS is required")
	}
	specs := make([]domain.VariantSpec, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		name, rawKind, ok := strings.Cut(item, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid variant %q, want Name:kind", item)
		}
		kind, err := domain.ParseVariantKind(rawKind)
		if err != nil {
			return nil, fmt.Errorf("variant %s: %w", name, err)
		}
		if seen[name] {
			return nil, fmt.Errorf("variant %s declared twice", name)
		}
		seen[name] = true
		specs = append(specs, domain.VariantSpec{Name: name, Kind: kind})
	}
	return specs, nil
}

// ParsePairs parses "candidate:baseline,..." pairs.
func ParsePairs(raw string) ([]Pair, error) {
	items := splitList(raw)
	pairs := make([]Pair, 0, len(items))
	for _, item := range items {
		candidate, baseline, ok := strings.Cut(item, ":")
		candidate, baseline = strings.TrimSpace(candidate), strings.TrimSpace(baseline)
		if !ok || candidate == "" || baseline == "" {
			return nil, fmt.Errorf("invalid relative pair %q, want candidate:baseline", item)
		}
		pairs = append(pairs, Pair{Candidate: candidate, Baseline: baseline})
	}
	return pairs, nil
}

// ParseDecimal parses a non-negative decimal such as "100" or "0.25".
func ParseDecimal(key, raw string) (*big.Rat, error) {
	value, ok := new(big.Rat).SetString(strings.TrimSpace(raw))
	if !ok {
		return nil, fmt.Errorf("invalid %s: %q is not a decimal", key, raw)
	}
	if value.Sign() < 0 {
		return nil, &domain.InvalidMetricError{Field: key, Value: raw}
	}
	return value, nil
}

func lookupDefault(source EnvSource, key, defaultValue string) string {
	raw, ok := source.Lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return defaultValue
	}
	return strings.TrimSpace(raw)
}

func parseUintEnv(source EnvSource, key string, defaultValue uint64) (uint64, error) {
	raw, ok := source.Lookup(key)
	if !ok || raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func parseBoolEnv(source EnvSource, key string, defaultValue bool) (bool, error) {
	raw, ok := source.Lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func parseDecimalEnv(source EnvSource, key, defaultValue string) (*big.Rat, error) {
	return ParseDecimal(key, lookupDefault(source, key, defaultValue))
}

func parseDurationEnv(source EnvSource, key string, defaultValue time.Duration) (time.Duration, error) {
	raw, ok := source.Lookup(key)
	if !ok || raw == "" {
		return defaultValue, nil
	}
	duration, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return duration, nil
}

func splitList(raw string) []string {
	var values []string
	for _, item := range strings.Split(raw, ",") {
		value := strings.TrimSpace(item)
		if value == "" {
			continue
		}
		values = append(values, value)
	}
	return values
}
