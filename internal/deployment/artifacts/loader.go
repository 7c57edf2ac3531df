package artifacts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/plan"
	"github.com/pengolincoin/pengolin-deploy/internal/infra/filesystem"
)

// BundleFileName is the single-file format written by the compiler.
const BundleFileName = "contracts.json"

type (
	// Contract is a compiled contract ready to be deployed.
	Contract struct {
		Name     plan.ContractName
		ABI      abi.ABI
		RawABI   string
		Bytecode []byte
	}

	// rawArtifact matches both the bundle entries and Hardhat artifact files.
	rawArtifact struct {
		ContractName string          `json:"contractName"`
		ABI          json.RawMessage `json:"abi"`
		Bytecode     string          `json:"bytecode"`
	}

	Loader struct {
		reader filesystem.Reader
	}
)

var ErrMissingContract = errors.New("compiled contract not found")

func NewLoader(reader filesystem.Reader) *Loader {
	return &Loader{reader: reader}
}

// Load reads compiled contracts from path and returns those named in required.
// path is either a contracts.json bundle, a directory holding one, or a
// Hardhat artifacts directory (artifacts/contracts/<X>.sol/<X>.json).
func (l *Loader) Load(path string, required []plan.ContractName) (map[plan.ContractName]Contract, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("artifacts path '%s' is not accessible: %w", path, err)
	}

	var raw map[string]rawArtifact
	switch {
	case !info.IsDir():
		raw, err = l.readBundle(path)
	case fileExists(filepath.Join(path, BundleFileName)):
		raw, err = l.readBundle(filepath.Join(path, BundleFileName))
	default:
		raw, err = l.readHardhat(path, required)
	}
	if err != nil {
		return nil, err
	}

	return parseContracts(raw, required)
}

func (l *Loader) readBundle(path string) (map[string]rawArtifact, error) {
	var raw map[string]rawArtifact
	if err := l.reader.ReadJSON(path, &raw); err != nil {
		return nil, fmt.Errorf("failed to read contracts bundle: %w", err)
	}
	return raw, nil
}

func (l *Loader) readHardhat(dir string, required []plan.ContractName) (map[string]rawArtifact, error) {
	wanted := make(map[string]struct{}, len(required))
	for _, name := range required {
		wanted[string(name)+".json"] = struct{}{}
	}

	raw := make(map[string]rawArtifact)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "build-info" {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := wanted[d.Name()]; !ok {
			return nil
		}

		var artifact rawArtifact
		if err := l.reader.ReadJSON(path, &artifact); err != nil {
			return err
		}

		name := strings.TrimSuffix(d.Name(), ".json")
		if artifact.ContractName != "" && artifact.ContractName != name {
			return nil
		}
		if _, dup := raw[name]; dup {
			return fmt.Errorf("contract %s is defined by more than one artifact", name)
		}
		raw[name] = artifact

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan hardhat artifacts in '%s': %w", dir, err)
	}

	return raw, nil
}

func parseContracts(raw map[string]rawArtifact, required []plan.ContractName) (map[plan.ContractName]Contract, error) {
	contracts := make(map[plan.ContractName]Contract, len(required))

	var errs []error
	for _, name := range required {
		artifact, ok := raw[string(name)]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingContract, name))
			continue
		}

		contract, err := parseContract(name, artifact)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		contracts[name] = contract
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return contracts, nil
}

func parseContract(name plan.ContractName, artifact rawArtifact) (Contract, error) {
	parsedABI, err := abi.JSON(strings.NewReader(string(artifact.ABI)))
	if err != nil {
		return Contract{}, fmt.Errorf("failed to parse ABI for %s: %w", name, err)
	}

	bytecodeHex := strings.TrimPrefix(strings.TrimSpace(artifact.Bytecode), "0x")
	if bytecodeHex == "" {
		return Contract{}, fmt.Errorf("contract %s has no bytecode (abstract contract or interface?)", name)
	}
	if strings.Contains(bytecodeHex, "__") {
		return Contract{}, fmt.Errorf("contract %s has unlinked library references", name)
	}

	return Contract{
		Name:     name,
		ABI:      parsedABI,
		RawABI:   string(artifact.ABI),
		Bytecode: common.Hex2Bytes(bytecodeHex),
	}, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
