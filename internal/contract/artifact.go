package contract

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"
)

// Artifact is a compiled contract ready for deployment.
type Artifact struct {
	Name     string
	ABI      abi.ABI
	Bytecode []byte
}

// ArtifactPath returns the Hardhat layout path for a contract:
// <dir>/contracts/<Name>.sol/<Name>.json.
func ArtifactPath(dir, name string) string {
	return filepath.Join(dir, "contracts", name+".sol", name+".json")
}

// LoadArtifact loads the ABI and deployment bytecode from a Hardhat or
// Foundry artifact JSON file.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read artifact file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("artifact file is empty: %s", path)
	}

	var raw struct {
		ContractName string          `json:"contractName"`
		ABI          json.RawMessage `json:"abi"`
		Bytecode     json.RawMessage `json:"bytecode"`
		// Foundry only: signature -> 4-byte selector hex.
		MethodIdentifiers map[string]string `json:"methodIdentifiers"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid artifact JSON: %w", err)
	}

	if len(raw.ABI) < 2 || raw.ABI[0] != '[' {
		return nil, fmt.Errorf("artifact has no valid \"abi\" array: %s", path)
	}
	parsed, err := abi.JSON(strings.NewReader(string(raw.ABI)))
	if err != nil {
		return nil, fmt.Errorf("parsing artifact ABI: %w", err)
	}

	for sig, sel := range raw.MethodIdentifiers {
		if want := Selector(sig); !strings.EqualFold(strings.TrimPrefix(sel, "0x"), want) {
			return nil, fmt.Errorf("artifact selector for %s is %s, want %s: %s", sig, sel, want, path)
		}
	}

	if len(raw.Bytecode) == 0 {
		return nil, fmt.Errorf("artifact has no bytecode, cannot deploy an interface or abstract contract: %s", path)
	}
	bcHex, err := extractBytecodeHex(raw.Bytecode)
	if err != nil {
		return nil, fmt.Errorf("extracting bytecode from artifact: %w", err)
	}
	if bcHex == "" || bcHex == "0x" {
		return nil, fmt.Errorf("artifact bytecode is empty, cannot deploy an interface or abstract contract: %s", path)
	}
	if strings.Contains(bcHex, "__$") {
		return nil, fmt.Errorf("artifact bytecode has unlinked library placeholders: %s", path)
	}
	if !strings.HasPrefix(bcHex, "0x") {
		bcHex = "0x" + bcHex
	}
	code, err := hexutil.Decode(bcHex)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode hex in artifact: %w", err)
	}

	name := raw.ContractName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &Artifact{Name: name, ABI: parsed, Bytecode: code}, nil
}

// Selector returns the 4-byte function selector of a canonical signature
// such as "transfer(address,uint256)", as lowercase hex without 0x.
func Selector(sig string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(sig))
	return hex.EncodeToString(h.Sum(nil)[:4])
}

// LoadBuiltinArtifact loads the artifact for a built-in contract from dir and
// checks that its interface matches the embedded ABI.
func LoadBuiltinArtifact(dir, id string) (*Artifact, error) {
	b, ok := GetBuiltin(id)
	if !ok {
		return nil, fmt.Errorf("unknown builtin %q", id)
	}
	art, err := LoadArtifact(ArtifactPath(dir, b.ArtifactName))
	if err != nil {
		return nil, err
	}
	if err := checkCompatible(b, art.ABI); err != nil {
		return nil, fmt.Errorf("%s: %w", b.ArtifactName, err)
	}
	return art, nil
}

// checkCompatible fails when the artifact lacks a method of the built-in ABI or
// declares a different constructor signature.
func checkCompatible(b BuiltinKind, got abi.ABI) error {
	for name, m := range b.ABI.Methods {
		gm, ok := got.Methods[name]
		if !ok {
			return fmt.Errorf("artifact ABI has no method %s", m.Sig)
		}
		if gm.Sig != m.Sig {
			return fmt.Errorf("artifact method %s differs from expected %s", gm.Sig, m.Sig)
		}
	}
	want, have := argTypes(b.ABI.Constructor.Inputs), argTypes(got.Constructor.Inputs)
	if want != have {
		return fmt.Errorf("artifact constructor (%s) differs from expected (%s)", have, want)
	}
	return nil
}

func argTypes(args abi.Arguments) string {
	types := make([]string, len(args))
	for i, a := range args {
		types[i] = a.Type.String()
	}
	return strings.Join(types, ",")
}

// extractBytecodeHex handles the two common artifact formats:
//   - Hardhat:  "bytecode": "0x608060..."          (JSON string)
//   - Foundry:  "bytecode": {"object": "0x608060..."} (JSON object)
func extractBytecodeHex(raw json.RawMessage) (string, error) {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return strings.TrimSpace(str), nil
	}

	var obj struct {
		Object string `json:"object"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Object != "" {
		return strings.TrimSpace(obj.Object), nil
	}

	return "", fmt.Errorf("bytecode field is neither a hex string nor a {\"object\":\"0x...\"} object")
}
