package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const mintABI = `[{"type":"function","name":"mint","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"id","type":"uint256"},{"name":"amount","type":"uint256"},{"name":"data","type":"bytes"}],"outputs":[]}]`

func writeArtifact(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLoadHardhatLayout(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, filepath.Join(dir, "Standard1155.sol", "Standard1155.json"),
		`{"contractName":"Standard1155","abi":`+mintABI+`,"bytecode":"0x6080604052"}`)

	loader, err := NewLoader(dir)
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}
	art, err := loader.Load("Standard1155")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := art.ABI.Methods["mint"]; !ok {
		t.Error("expected mint method in abi")
	}
	if len(art.Bytecode) != 5 {
		t.Errorf("bytecode length = %d, want 5", len(art.Bytecode))
	}
}

func TestLoadFlatLayout(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, filepath.Join(dir, "Azuki721.json"), `{"abi":[],"bytecode":"0x60"}`)

	loader, _ := NewLoader(dir)
	if _, err := loader.Load("Azuki721"); err != nil {
		t.Fatalf("load: %v", err)
	}
}

func TestLoadMissing(t *testing.T) {
	loader, _ := NewLoader(t.TempDir())
	_, err := loader.Load("Standard721")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestLoadEmptyBytecode(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, filepath.Join(dir, "IMintable.json"), `{"abi":[],"bytecode":"0x"}`)

	loader, _ := NewLoader(dir)
	if _, err := loader.Load("IMintable"); err == nil {
		t.Error("expected error for interface artifact without bytecode")
	}
}
