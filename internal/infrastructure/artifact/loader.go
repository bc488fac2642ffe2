// Package artifact reads compiled hardhat contract artifacts.
package artifact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mintbench/internal/domain"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var ErrNotFound = errors.New("artifact not found")

type Loader struct {
	dir string
}

func NewLoader(dir string) (*Loader, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("artifacts dir is required")
	}
	return &Loader{dir: dir}, nil
}

type hardhatArtifact struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     string          `json:"bytecode"`
}

// Load resolves <dir>/<name>.sol/<name>.json, falling back to <dir>/<name>.json.
func (l *Loader) Load(name string) (domain.Artifact, error) {
	candidates := []string{
		filepath.Join(l.dir, name+".sol", name+".json"),
		filepath.Join(l.dir, name+".json"),
	}

	var raw []byte
	var path string
	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if err == nil {
			raw, path = data, candidate
			break
		}
		if !errors.Is(err, os.ErrNotExist) {
			return domain.Artifact{}, err
		}
	}
	if raw == nil {
		return domain.Artifact{}, fmt.Errorf("%w: %s in %s", ErrNotFound, name, l.dir)
	}

	var decoded hardhatArtifact
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return domain.Artifact{}, fmt.Errorf("decode %s: %w", path, err)
	}
	parsed, err := abi.JSON(bytes.NewReader(decoded.ABI))
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("parse abi %s: %w", path, err)
	}
	bytecode, err := hexutil.Decode(decoded.Bytecode)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("decode bytecode %s: %w", path, err)
	}
	if len(bytecode) == 0 {
		return domain.Artifact{}, fmt.Errorf("%s has no bytecode", path)
	}

	return domain.Artifact{Name: name, ABI: parsed, Bytecode: bytecode}, nil
}
